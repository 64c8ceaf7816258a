package cmdutil

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/zdqhub/zdq/config"
	"github.com/zdqhub/zdq/dbconn"
	"github.com/zdqhub/zdq/reconcile"
	"github.com/zdqhub/zdq/report"
	"github.com/zdqhub/zdq/validate"
)

type runConfig struct {
	progress      bool
	failOnFailure bool
}

var runCfg = runConfig{}

func RegisterRunFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVar(
		&runCfg.progress,
		"progress",
		false,
		"whether to draw a progress bar while comparison units are reconciled",
	)
	cmd.PersistentFlags().BoolVar(
		&runCfg.failOnFailure,
		"fail-on-failure",
		false,
		"whether to exit non-zero if any comparison unit fails",
	)
}

// ErrValidationFailed is returned under --fail-on-failure when the report
// contains failures.
var ErrValidationFailed = errors.New("validation failed")

// Reporter logs every warning and outcome and counts outcomes for the metrics
// endpoint. The caller must Close it.
func Reporter(logger zerolog.Logger, title string) reconcile.Reporter {
	reporter := report.CombinedReporter{}
	reporter.Reporters = append(
		reporter.Reporters,
		report.LogReporter{Logger: logger},
		report.MetricsReporter{},
	)
	if runCfg.progress {
		reporter.Reporters = append(reporter.Reporters, report.NewProgressReporter(title))
	}
	return reporter
}

// Finish prints rep, exports it if a destination is configured and applies
// --fail-on-failure.
func Finish(ctx context.Context, cmd *cobra.Command, logger zerolog.Logger, rep report.Report) error {
	if err := report.WriteText(cmd.OutOrStdout(), rep, TableFormat()); err != nil {
		return err
	}
	if err := Export(ctx, logger, rep); err != nil {
		return err
	}
	if runCfg.failOnFailure && rep.Summary.Failure > 0 {
		return errors.Wrapf(ErrValidationFailed, "%d of %d comparison units failed", rep.Summary.Failure, rep.Summary.Total)
	}
	return nil
}

// Setup builds the logger, starts the metrics server, loads configuration and
// connects to the warehouse.
func Setup(ctx context.Context) (Env, error) {
	logger, err := Logger()
	if err != nil {
		return Env{}, err
	}
	RunMetricsServer(logger)
	cfg, err := LoadConfig()
	if err != nil {
		return Env{}, err
	}
	conn, err := LoadWarehouse(ctx, logger, cfg)
	if err != nil {
		return Env{}, err
	}
	return Env{Logger: logger, Config: cfg, Conn: conn}, nil
}

// Env is what every validation command needs once flags are parsed.
type Env struct {
	Logger zerolog.Logger
	Config config.Config
	Conn   dbconn.Conn
}

func (e Env) Close(ctx context.Context) {
	if err := e.Conn.Close(ctx); err != nil {
		e.Logger.Err(err).Msgf("error closing warehouse connection")
	}
}

// RegisterValidationFlags registers every flag a validation command shares.
func RegisterValidationFlags(cmd *cobra.Command) {
	RegisterLoggerFlags(cmd)
	RegisterMetricsFlags(cmd)
	RegisterConfigFlags(cmd)
	RegisterWarehouseFlags(cmd)
	RegisterExportFlags(cmd)
	RegisterRunFlags(cmd)
}

// RunFunc runs one validation with the shared options applied.
type RunFunc func(ctx context.Context, e Env, opts []validate.Opt) (report.Report, error)

// RunValidation sets up the command environment, runs fn with a reporter
// titled title and finishes with the resulting report.
func RunValidation(cmd *cobra.Command, title string, fn RunFunc) error {
	ctx := context.Background()
	e, err := Setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close(ctx)

	reporter := Reporter(e.Logger, title)
	rep, err := fn(ctx, e, []validate.Opt{
		validate.WithLogger(e.Logger),
		validate.WithReporter(reporter),
	})
	// Stop any progress bar before the report is printed.
	reporter.Close()
	if err != nil {
		return err
	}
	return Finish(ctx, cmd, e.Logger, rep)
}
