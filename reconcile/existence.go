package reconcile

import (
	"context"
	"fmt"

	"github.com/zdqhub/zdq/dbtable"
)

// Counterpart names the sibling location an object is expected to exist in.
type Counterpart string

const (
	Encrypted Counterpart = "encrypted"
	Masked    Counterpart = "masked"
)

// ExistenceScope describes one existence-parity run.
type ExistenceScope struct {
	Env                 string
	Level               Level
	Counterpart         Counterpart
	CounterpartDatabase string
	Owner               string
}

func (l Level) noun() string {
	if l == LevelTable {
		return "Table"
	}
	return "Column"
}

// ExistenceDetails describes the four presence combinations.
func ExistenceDetails(l Level, c Counterpart, inActual, inCounterpart bool) string {
	switch {
	case inActual && inCounterpart:
		return fmt.Sprintf("%s exists in both actual and %s databases", l.noun(), c)
	case inActual:
		return fmt.Sprintf("%s exists in actual but missing in %s database", l.noun(), c)
	case inCounterpart:
		return fmt.Sprintf("%s exists in %s but missing in actual database", l.noun(), c)
	}
	return fmt.Sprintf("%s missing in both actual and %s databases", l.noun(), c)
}

// Existence checks each unit is present in both its actual database and the
// scope's counterpart database. Table-level units leave Column empty.
func (r *Reconciler) Existence(
	ctx context.Context, scope ExistenceScope, units []dbtable.Column,
) []ExistenceOutcome {
	ret := make([]ExistenceOutcome, 0, len(units))
	for _, u := range units {
		o := ExistenceOutcome{
			Env:                 scope.Env,
			Level:               scope.Level,
			Counterpart:         scope.Counterpart,
			Unit:                u,
			CounterpartDatabase: scope.CounterpartDatabase,
			Owner:               scope.Owner,
		}
		counterpart := u
		counterpart.Database = scope.CounterpartDatabase

		var err error
		var unit fmt.Stringer = u
		if scope.Level == LevelTable {
			unit = u.Name
			if o.ActualMatches, err = r.querier.TableMatches(ctx, u.Name); err == nil {
				o.CounterpartMatches, err = r.querier.TableMatches(ctx, counterpart.Name)
			}
		} else {
			if o.ActualMatches, err = r.querier.ColumnMatches(ctx, u); err == nil {
				o.CounterpartMatches, err = r.querier.ColumnMatches(ctx, counterpart)
			}
		}

		if err != nil {
			r.warn(unit, err)
			o.ActualMatches, o.CounterpartMatches = Sentinel, Sentinel
			o.Status = Failure
			o.Details = fmt.Sprintf("Error checking %s existence: %v", scope.Level.noun(), err)
		} else {
			inActual, inCounterpart := o.ActualMatches > 0, o.CounterpartMatches > 0
			o.Status = statusOf(inActual && inCounterpart)
			o.Details = ExistenceDetails(scope.Level, scope.Counterpart, inActual, inCounterpart)
		}
		r.reporter.Report(o)
		ret = append(ret, o)
	}
	return ret
}
