// Package validate exposes one run function per validation kind. Each checks
// its parameters, resolves the comparison units, reconciles them and returns
// the aggregated report. Only parameter and configuration errors are
// returned; query failures end up in the report.
package validate

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/zdqhub/zdq/config"
	"github.com/zdqhub/zdq/dbconn"
	"github.com/zdqhub/zdq/dbtable"
	"github.com/zdqhub/zdq/reconcile"
	"github.com/zdqhub/zdq/report"
	"github.com/zdqhub/zdq/resolve"
)

type Opt func(*opts)

type opts struct {
	logger   zerolog.Logger
	reporter reconcile.Reporter
	pairing  reconcile.Pairing
}

func WithLogger(l zerolog.Logger) Opt {
	return func(o *opts) {
		o.logger = l
	}
}

// WithReporter receives warnings and outcomes as they are produced.
func WithReporter(r reconcile.Reporter) Opt {
	return func(o *opts) {
		o.reporter = r
	}
}

// WithPairing selects how count runs pair source and target tables.
func WithPairing(p reconcile.Pairing) Opt {
	return func(o *opts) {
		o.pairing = p
	}
}

// run holds the state of one validation run.
type run struct {
	opts
	conn  dbconn.Conn
	cfg   config.Config
	kind  reconcile.Kind
	start time.Time
}

func newRun(conn dbconn.Conn, cfg config.Config, kind reconcile.Kind, inOpts []Opt) *run {
	r := &run{
		opts: opts{
			logger:   zerolog.Nop(),
			reporter: reconcile.NopReporter{},
			pairing:  reconcile.PairByPosition,
		},
		conn:  conn,
		cfg:   cfg,
		kind:  kind,
		start: time.Now(),
	}
	for _, applyOpt := range inOpts {
		applyOpt(&r.opts)
	}
	r.logger = r.logger.With().Str("kind", string(kind)).Logger()
	return r
}

func (r *run) resolver() *resolve.Resolver {
	return resolve.New(r.conn, r.cfg, r.logger)
}

func (r *run) reconciler() *reconcile.Reconciler {
	return reconcile.New(reconcile.WarehouseQuerier{Conn: r.conn}, r.reporter)
}

// resolveFailed surfaces a resolution failure. The run continues with no
// comparison units.
func (r *run) resolveFailed(unit string, err error) {
	r.reporter.Report(reconcile.Warning{Unit: unit, Err: err})
}

func (r *run) plan(units int) {
	if units == 0 {
		r.reporter.Report(reconcile.StatusReport{Info: "no comparison units found"})
		return
	}
	r.reporter.Report(reconcile.Planned{Kind: r.kind, Units: units})
}

func (r *run) finish(outcomes []reconcile.Outcome) (report.Report, error) {
	rep, err := report.Aggregate(r.kind, outcomes)
	if err != nil {
		return report.Report{}, err
	}
	rep.Elapsed = time.Since(r.start)
	r.logger.Info().
		Str("run_id", rep.RunID.String()).
		Int("total", rep.Summary.Total).
		Int("success", rep.Summary.Success).
		Int("failure", rep.Summary.Failure).
		Dur("elapsed", rep.Elapsed).
		Msgf("validation complete")
	return rep, nil
}

// RunCountValidation compares the row counts the control catalog recorded for
// the source system against those recorded for the warehouse's loaded copy.
func RunCountValidation(
	ctx context.Context, conn dbconn.Conn, cfg config.Config, p IngestionParams, inOpts ...Opt,
) (report.Report, error) {
	if err := p.check(cfg); err != nil {
		return report.Report{}, err
	}
	r := newRun(conn, cfg, reconcile.KindCount, inOpts)
	source, target, err := r.resolver().IngestionPair(ctx, resolve.IngestionParams{
		Env:          p.Env,
		LoadGroup:    p.LoadGroup,
		LoadType:     p.LoadType,
		SourceDBType: p.SourceDBType,
	})
	if err != nil {
		r.resolveFailed("audit_recon", err)
	}
	outcomes := reconcile.Counts(r.pairing, reconcile.JobLabels{
		Env:       string(p.Env),
		LoadGroup: p.LoadGroup,
		LoadType:  p.LoadType,
	}, source, target)
	r.plan(len(outcomes))
	for _, o := range outcomes {
		r.reporter.Report(o)
	}
	return r.finish(report.Outcomes(outcomes))
}

func (r *run) ingestionTables(ctx context.Context, p TableParams) []dbtable.Name {
	tables, err := r.resolver().IngestionTables(ctx, p.Env, p.Database, p.Schema, p.LoadGroup, p.LoadType)
	if err != nil {
		r.resolveFailed(p.Database+"."+p.Schema, err)
		return nil
	}
	return tables
}

// RunDataValidation compares each loaded table against its raw view in the
// environment's data lake.
func RunDataValidation(
	ctx context.Context, conn dbconn.Conn, cfg config.Config, p TableParams, inOpts ...Opt,
) (report.Report, error) {
	if err := p.check(cfg); err != nil {
		return report.Report{}, err
	}
	dataLake, err := cfg.DataLakeDatabase(p.Env)
	if err != nil {
		return report.Report{}, err
	}
	r := newRun(conn, cfg, reconcile.KindRowDiff, inOpts)
	tables := r.ingestionTables(ctx, p)
	r.plan(len(tables))
	return r.finish(report.Outcomes(r.reconciler().Rows(ctx, p.labels(), dataLake, tables)))
}

// RunDuplicateValidation counts repeated rows in each loaded table.
func RunDuplicateValidation(
	ctx context.Context, conn dbconn.Conn, cfg config.Config, p TableParams, inOpts ...Opt,
) (report.Report, error) {
	if err := p.check(cfg); err != nil {
		return report.Report{}, err
	}
	r := newRun(conn, cfg, reconcile.KindDuplicate, inOpts)
	tables := r.ingestionTables(ctx, p)
	r.plan(len(tables))
	return r.finish(report.Outcomes(r.reconciler().Duplicates(ctx, p.labels(), tables)))
}

// RunMaskingValidation checks the masking metadata of a schema agrees with the
// schema itself and with its masked counterpart.
func RunMaskingValidation(
	ctx context.Context, conn dbconn.Conn, cfg config.Config, p ClassificationParams, inOpts ...Opt,
) (report.Report, error) {
	if err := p.check(); err != nil {
		return report.Report{}, err
	}
	r := newRun(conn, cfg, reconcile.KindMaskingParity, inOpts)
	checks := MaskingChecks(cfg, p)
	r.plan(len(checks))
	outcomes := r.reconciler().Parity(ctx, reconcile.ParityScope{
		Env:      string(p.Env),
		Database: p.Database,
		Schema:   p.Schema,
	}, checks)
	return r.finish(report.Outcomes(outcomes))
}

// RunMaskingExistence checks every classified column exists in the masked
// counterpart database.
func RunMaskingExistence(
	ctx context.Context, conn dbconn.Conn, cfg config.Config, p ClassificationParams, inOpts ...Opt,
) (report.Report, error) {
	if err := p.check(); err != nil {
		return report.Report{}, err
	}
	r := newRun(conn, cfg, reconcile.KindMaskingColumn, inOpts)
	return r.existence(ctx, p, reconcile.LevelColumn, reconcile.Masked, cfg.MaskedDatabase(p.Database))
}

// RunEncryptionColumnValidation checks every classified column exists in the
// encrypted counterpart database.
func RunEncryptionColumnValidation(
	ctx context.Context, conn dbconn.Conn, cfg config.Config, p ClassificationParams, inOpts ...Opt,
) (report.Report, error) {
	if err := p.check(); err != nil {
		return report.Report{}, err
	}
	r := newRun(conn, cfg, reconcile.KindEncryptionColumn, inOpts)
	return r.existence(ctx, p, reconcile.LevelColumn, reconcile.Encrypted, cfg.EncryptedDatabase(p.Database))
}

// RunEncryptionTableValidation checks every table holding classified columns
// exists in the encrypted counterpart database.
func RunEncryptionTableValidation(
	ctx context.Context, conn dbconn.Conn, cfg config.Config, p ClassificationParams, inOpts ...Opt,
) (report.Report, error) {
	if err := p.check(); err != nil {
		return report.Report{}, err
	}
	r := newRun(conn, cfg, reconcile.KindEncryptionTable, inOpts)
	return r.existence(ctx, p, reconcile.LevelTable, reconcile.Encrypted, cfg.EncryptedDatabase(p.Database))
}

func (r *run) existence(
	ctx context.Context,
	p ClassificationParams,
	level reconcile.Level,
	counterpart reconcile.Counterpart,
	counterpartDB string,
) (report.Report, error) {
	cp := resolve.ClassificationParams{
		Env:      p.Env,
		Database: p.Database,
		Schema:   p.Schema,
		Owner:    p.Owner,
	}
	var units []dbtable.Column
	if level == reconcile.LevelTable {
		tables, err := r.resolver().ClassifiedTables(ctx, cp)
		if err != nil {
			r.resolveFailed(p.Database+"."+p.Schema, err)
		}
		for _, t := range tables {
			units = append(units, dbtable.Column{Name: t})
		}
	} else {
		cols, err := r.resolver().ClassifiedColumns(ctx, cp)
		if err != nil {
			r.resolveFailed(p.Database+"."+p.Schema, err)
		}
		units = cols
	}
	r.plan(len(units))
	outcomes := r.reconciler().Existence(ctx, reconcile.ExistenceScope{
		Env:                 string(p.Env),
		Level:               level,
		Counterpart:         counterpart,
		CounterpartDatabase: counterpartDB,
		Owner:               p.Owner,
	}, units)
	return r.finish(report.Outcomes(outcomes))
}
