package reconcile

import (
	"context"
	"fmt"
)

// ParityCheck is a pair of count queries expected to agree.
type ParityCheck struct {
	Name   string
	Source QueryBuilder
	Target QueryBuilder
}

type ParityScope struct {
	Env      string
	Database string
	Schema   string
}

type parityUnit struct {
	scope ParityScope
	check string
}

func (u parityUnit) String() string {
	return fmt.Sprintf("%s.%s (%s)", u.scope.Database, u.scope.Schema, u.check)
}

// Parity runs each check and compares the two counts.
func (r *Reconciler) Parity(ctx context.Context, scope ParityScope, checks []ParityCheck) []ParityOutcome {
	ret := make([]ParityOutcome, 0, len(checks))
	for _, c := range checks {
		o := ParityOutcome{
			Env:      scope.Env,
			Database: scope.Database,
			Schema:   scope.Schema,
			Check:    c.Name,
		}
		var err error
		if o.SourceCount, err = r.querier.Count(ctx, c.Source); err == nil {
			o.TargetCount, err = r.querier.Count(ctx, c.Target)
		}
		if err != nil {
			r.warn(parityUnit{scope: scope, check: c.Name}, err)
			o.SourceCount, o.TargetCount = Sentinel, Sentinel
			o.Status = Failure
			o.Details = err.Error()
		} else {
			o.Status = statusOf(o.SourceCount == o.TargetCount)
			o.Details = countDetails(o.SourceCount, o.TargetCount)
		}
		r.reporter.Report(o)
		ret = append(ret, o)
	}
	return ret
}
