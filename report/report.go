// Package report aggregates reconciliation outcomes and renders them.
package report

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/zdqhub/zdq/reconcile"
)

type Summary struct {
	Total       int
	Success     int
	Failure     int
	SuccessRate float64
}

// Rate renders the success rate to one decimal place.
func (s Summary) Rate() string {
	return fmt.Sprintf("%.1f%%", s.SuccessRate)
}

func Summarize(outcomes []reconcile.Outcome) Summary {
	s := Summary{Total: len(outcomes)}
	for _, o := range outcomes {
		if o.TestCase() == reconcile.Success {
			s.Success++
		}
	}
	s.Failure = s.Total - s.Success
	if s.Total > 0 {
		s.SuccessRate = float64(s.Success) / float64(s.Total) * 100
	}
	return s
}

// Report is the result of one validation run. It is never persisted.
type Report struct {
	RunID     uuid.UUID
	Kind      reconcile.Kind
	CreatedAt time.Time
	// Elapsed is how long reconciliation took, if the caller timed it.
	Elapsed  time.Duration
	Outcomes []reconcile.Outcome
	Summary  Summary
}

// Aggregate builds a report from outcomes, which must all be of kind k.
func Aggregate(k reconcile.Kind, outcomes []reconcile.Outcome) (Report, error) {
	for _, o := range outcomes {
		if o.Kind() != k {
			return Report{}, errors.AssertionFailedf("outcome of kind %s in %s report", o.Kind(), k)
		}
	}
	if outcomes == nil {
		outcomes = []reconcile.Outcome{}
	}
	return Report{
		RunID:     uuid.New(),
		Kind:      k,
		CreatedAt: time.Now(),
		Outcomes:  outcomes,
		Summary:   Summarize(outcomes),
	}, nil
}

// Outcomes widens a slice of concrete outcomes.
func Outcomes[T reconcile.Outcome](in []T) []reconcile.Outcome {
	ret := make([]reconcile.Outcome, len(in))
	for i, o := range in {
		ret[i] = o
	}
	return ret
}

// Format selects the tabular projection.
type Format int

const (
	Canonical Format = iota
	// Enhanced appends a display-only Status column with a glyph.
	Enhanced
)

const statusColumn = "Status"

func StatusMarker(s reconcile.Status) string {
	if s == reconcile.Success {
		return "✅ " + string(s)
	}
	return "❌ " + string(s)
}

// Table projects the report into a header row followed by one row per outcome.
func (r Report) Table(f Format) [][]string {
	header := reconcile.Header(r.Kind)
	if f == Enhanced {
		header = append(append([]string(nil), header...), statusColumn)
	}
	ret := make([][]string, 0, len(r.Outcomes)+1)
	ret = append(ret, header)
	for _, o := range r.Outcomes {
		row := o.Row()
		if f == Enhanced {
			row = append(row, StatusMarker(o.TestCase()))
		}
		ret = append(ret, row)
	}
	return ret
}
