// Package reconcile decides SUCCESS or FAILURE for each comparison unit.
//
// Every strategy is total: a failed query for one unit is reported as a
// Warning, recorded as a FAILURE with Sentinel measurements, and does not stop
// the remaining units from being evaluated.
package reconcile

import (
	"context"
	"fmt"

	"github.com/zdqhub/zdq/dbtable"
	"github.com/zdqhub/zdq/dialect"
)

// Querier runs the live measurements the strategies need.
type Querier interface {
	// Minus counts distinct rows of from absent from to.
	Minus(ctx context.Context, from, to dialect.Projection) (int64, error)
	// Duplicates counts groups of identical rows occurring more than once.
	Duplicates(ctx context.Context, p dialect.Projection) (int64, error)
	ColumnMatches(ctx context.Context, c dbtable.Column) (int64, error)
	TableMatches(ctx context.Context, n dbtable.Name) (int64, error)
	// Count runs a single-value count query built for the querier's dialect.
	Count(ctx context.Context, build QueryBuilder) (int64, error)
}

type QueryBuilder func(d dialect.Dialect) (dialect.Query, error)

type Reconciler struct {
	querier  Querier
	reporter Reporter
}

func New(q Querier, r Reporter) *Reconciler {
	if r == nil {
		r = NopReporter{}
	}
	return &Reconciler{querier: q, reporter: r}
}

func (r *Reconciler) warn(unit fmt.Stringer, err error) {
	r.reporter.Report(Warning{Unit: unit.String(), Err: err})
}

// Rows compares each table against its raw view in dataLake in both
// directions, ignoring housekeeping columns.
func (r *Reconciler) Rows(
	ctx context.Context, labels JobLabels, dataLake string, tables []dbtable.Name,
) []RowDiffOutcome {
	ret := make([]RowDiffOutcome, 0, len(tables))
	for _, t := range tables {
		target := dialect.Projection{
			Relation: t.Relation(),
			Exclude:  dialect.HousekeepingColumns,
		}
		view := dialect.Projection{
			Relation: dialect.RawView(dataLake, t.Schema, t.Table),
			Exclude:  dialect.RawViewHousekeepingColumns,
			Distinct: true,
		}
		o := RowDiffOutcome{JobLabels: labels, Table: t}
		var err error
		if o.TargetMinusView, err = r.querier.Minus(ctx, target, view); err == nil {
			o.ViewMinusTarget, err = r.querier.Minus(ctx, view, target)
		}
		if err != nil {
			r.warn(t, err)
			o.TargetMinusView, o.ViewMinusTarget = Sentinel, Sentinel
			o.Details = err.Error()
		}
		o.Status = statusOf(err == nil && o.TargetMinusView == 0 && o.ViewMinusTarget == 0)
		r.reporter.Report(o)
		ret = append(ret, o)
	}
	return ret
}

// Duplicates counts repeated rows in each table, ignoring housekeeping
// columns.
func (r *Reconciler) Duplicates(
	ctx context.Context, labels JobLabels, tables []dbtable.Name,
) []DuplicateOutcome {
	ret := make([]DuplicateOutcome, 0, len(tables))
	for _, t := range tables {
		o := DuplicateOutcome{JobLabels: labels, Table: t}
		var err error
		o.DupCount, err = r.querier.Duplicates(ctx, dialect.Projection{
			Relation: t.Relation(),
			Exclude:  dialect.HousekeepingColumns,
		})
		if err != nil {
			r.warn(t, err)
			o.DupCount = Sentinel
			o.Details = err.Error()
		}
		o.Status = statusOf(err == nil && o.DupCount == 0)
		r.reporter.Report(o)
		ret = append(ret, o)
	}
	return ret
}
