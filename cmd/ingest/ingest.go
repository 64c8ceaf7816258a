package ingest

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/zdqhub/zdq/catalog"
	"github.com/zdqhub/zdq/cmd/internal/cmdutil"
	"github.com/zdqhub/zdq/config"
	"github.com/zdqhub/zdq/reconcile"
	"github.com/zdqhub/zdq/report"
	"github.com/zdqhub/zdq/resolve"
	"github.com/zdqhub/zdq/validate"
)

type ingestFlags struct {
	env       string
	loadGroup string
	loadType  string
	dbType    string
	database  string
	schema    string
	pairing   pairingFlag
}

func Command() *cobra.Command {
	var f ingestFlags
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Validate ingested tables against the control catalog and data lake.",
	}
	cmd.PersistentFlags().StringVar(&f.env, "env", "", "environment: DEV, QA, UAT or PROD")
	cmd.PersistentFlags().StringVar(
		&f.loadGroup,
		"load-group",
		"",
		"load group to validate; defaults to the first load group in the control catalog",
	)
	cmd.PersistentFlags().StringVar(&f.loadType, "load-type", "", "load type to validate")

	count := &cobra.Command{
		Use:   "count",
		Short: "Compare source and warehouse row counts recorded in the control catalog.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdutil.RunValidation(cmd, "row counts", func(ctx context.Context, e cmdutil.Env, opts []validate.Opt) (report.Report, error) {
				env, loadGroup, err := f.scope(ctx, e, selection{"source db type", f.dbType})
				if err != nil {
					return report.Report{}, err
				}
				return validate.RunCountValidation(ctx, e.Conn, e.Config, validate.IngestionParams{
					Env:          env,
					LoadGroup:    loadGroup,
					LoadType:     f.loadType,
					SourceDBType: f.dbType,
				}, append(opts, validate.WithPairing(f.pairing.Pairing))...)
			})
		},
	}
	count.Flags().StringVar(&f.dbType, "db-type", "", "source system db type tag in the control catalog")
	count.Flags().Var(&f.pairing, "pairing", "how source and target tables are paired: position or name")

	data := &cobra.Command{
		Use:   "data",
		Short: "Compare each loaded table against its raw view in the data lake.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdutil.RunValidation(cmd, "row diff", func(ctx context.Context, e cmdutil.Env, opts []validate.Opt) (report.Report, error) {
				p, err := f.tableParams(ctx, e)
				if err != nil {
					return report.Report{}, err
				}
				return validate.RunDataValidation(ctx, e.Conn, e.Config, p, opts...)
			})
		},
	}

	duplicate := &cobra.Command{
		Use:   "duplicate",
		Short: "Count duplicate rows in each loaded table.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdutil.RunValidation(cmd, "duplicates", func(ctx context.Context, e cmdutil.Env, opts []validate.Opt) (report.Report, error) {
				p, err := f.tableParams(ctx, e)
				if err != nil {
					return report.Report{}, err
				}
				return validate.RunDuplicateValidation(ctx, e.Conn, e.Config, p, opts...)
			})
		},
	}
	for _, c := range []*cobra.Command{data, duplicate} {
		c.Flags().StringVar(&f.database, "database", "", "database holding the loaded tables")
		c.Flags().StringVar(&f.schema, "schema", "", "schema holding the loaded tables")
	}

	cmd.AddCommand(count, data, duplicate)
	return cmd
}

// pairingFlag parses --pairing. The zero value pairs by position.
type pairingFlag struct {
	reconcile.Pairing
}

var _ pflag.Value = (*pairingFlag)(nil)

func (p *pairingFlag) Set(s string) error {
	switch s {
	case reconcile.PairByPosition.String():
		p.Pairing = reconcile.PairByPosition
	case reconcile.PairByName.String():
		p.Pairing = reconcile.PairByName
	default:
		return errors.Newf("unknown pairing %q (expected position or name)", s)
	}
	return nil
}

func (p *pairingFlag) Type() string {
	return "pairing"
}

type selection struct {
	name  string
	value string
}

// scope parses the environment and picks the load group, defaulting to the
// first one the control catalog knows about. The load type and the given
// selections are checked before the catalog is queried.
func (f ingestFlags) scope(
	ctx context.Context, e cmdutil.Env, required ...selection,
) (config.Environment, string, error) {
	if f.env == "" {
		return "", "", &validate.MissingParameterError{Param: "environment"}
	}
	env, err := config.ParseEnvironment(f.env)
	if err != nil {
		return "", "", err
	}
	for _, s := range append([]selection{{"load type", f.loadType}}, required...) {
		if s.value == "" {
			return "", "", &validate.MissingParameterError{Param: s.name}
		}
	}
	if f.loadGroup != "" {
		return env, f.loadGroup, nil
	}
	var session resolve.Session
	groups := catalog.New(e.Conn, e.Config, e.Logger).LoadGroups(ctx, env)
	loadGroup := session.LoadGroup(groups)
	if loadGroup != "" {
		e.Logger.Info().Str("load_group", loadGroup).Msgf("defaulting to first load group")
	}
	return env, loadGroup, nil
}

func (f ingestFlags) tableParams(ctx context.Context, e cmdutil.Env) (validate.TableParams, error) {
	env, loadGroup, err := f.scope(ctx, e, selection{"database", f.database}, selection{"schema", f.schema})
	if err != nil {
		return validate.TableParams{}, err
	}
	return validate.TableParams{
		Env:       env,
		Database:  f.database,
		Schema:    f.schema,
		LoadGroup: loadGroup,
		LoadType:  f.loadType,
	}, nil
}
