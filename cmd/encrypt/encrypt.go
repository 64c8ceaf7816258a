package encrypt

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
		Use:   "encrypt",
		Short: "Validate encrypted counterparts of classified schemas.",
	}
	f.Register(cmd)

	columns := &cobra.Command{
		Use:   "columns",
		Short: "Check every classified column exists in the encrypted database.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdutil.RunValidation(cmd, "encrypted columns", func(ctx context.Context, e cmdutil.Env, opts []validate.Opt) (report.Report, error) {
				p, err := f.Params()
				if err != nil {
					return report.Report{}, err
				}
				return validate.RunEncryptionColumnValidation(ctx, e.Conn, e.Config, p, opts...)
			})
		},
	}

	tables := &cobra.Command{
		Use:   "tables",
		Short: "Check every table with classified columns exists in the encrypted database.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdutil.RunValidation(cmd, "encrypted tables", func(ctx context.Context, e cmdutil.Env, opts []validate.Opt) (report.Report, error) {
				p, err := f.Params()
				if err != nil {
					return report.Report{}, err
				}
				return validate.RunEncryptionTableValidation(ctx, e.Conn, e.Config, p, opts...)
			})
		},
	}

	cmd.AddCommand(columns, tables)
	return cmd
}
