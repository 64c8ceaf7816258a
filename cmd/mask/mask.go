package mask

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/zdqhub/zdq/cmd/internal/cmdutil"
	"github.com/zdqhub/zdq/report"
	"github.com/zdqhub/zdq/validate"
)

func Command() *cobra.Command {
	var f cmdutil.ClassificationFlags
	cmd := &cobra.Command{
		Use:   "mask",
		Short: "Validate masked counterparts of classified schemas.",
	}
	f.Register(cmd)

	parity := &cobra.Command{
		Use:   "parity",
		Short: "Check masking metadata agrees with the schema and its masked views.",
		Long: `Runs five parity checks on one schema: MD Tables, MD Columns, Data Set,
Views and Tags. Each check passes when its source and target counts are equal.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdutil.RunValidation(cmd, "masking parity", func(ctx context.Context, e cmdutil.Env, opts []validate.Opt) (report.Report, error) {
				p, err := f.Params()
				if err != nil {
					return report.Report{}, err
				}
				return validate.RunMaskingValidation(ctx, e.Conn, e.Config, p, opts...)
			})
		},
	}

	columns := &cobra.Command{
		Use:   "columns",
		Short: "Check every classified column exists in the masked database.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdutil.RunValidation(cmd, "masked columns", func(ctx context.Context, e cmdutil.Env, opts []validate.Opt) (report.Report, error) {
				p, err := f.Params()
				if err != nil {
					return report.Report{}, err
				}
				return validate.RunMaskingExistence(ctx, e.Conn, e.Config, p, opts...)
			})
		},
	}

	cmd.AddCommand(parity, columns)
	return cmd
}
