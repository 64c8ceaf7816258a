package report

import (
	"fmt"
	"sync"

	"github.com/gosuri/uiprogress"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/zdqhub/zdq/reconcile"
)

type CombinedReporter struct {
	Reporters []reconcile.Reporter
}

func (c CombinedReporter) Report(obj reconcile.ReportableObject) {
	for _, r := range c.Reporters {
		r.Report(obj)
	}
}

func (c CombinedReporter) Close() {
	for _, r := range c.Reporters {
		r.Close()
	}
}

// LogReporter reports to `zerolog`.
type LogReporter struct {
	zerolog.Logger
}

func (l LogReporter) Report(obj reconcile.ReportableObject) {
	switch obj := obj.(type) {
	case reconcile.Warning:
		l.Warn().
			Str("unit", obj.Unit).
			Err(obj.Err).
			Msgf("comparison query failed")
	case reconcile.StatusReport:
		l.Info().Msg(obj.Info)
	case reconcile.Planned:
		l.Info().Str("kind", string(obj.Kind)).Int("units", obj.Units).Msgf("starting validation")
	case reconcile.CountOutcome:
		l.outcome(obj).
			Str("source_table", obj.Source.Name).
			Int64("source_rows", obj.Source.RowCount).
			Str("target_table", obj.Target.Name).
			Int64("target_rows", obj.Target.RowCount).
			Str("details", obj.Details).
			Msgf("row count compared")
	case reconcile.RowDiffOutcome:
		l.outcome(obj).
			Str("database", obj.Table.Database).
			Str("table_schema", obj.Table.Schema).
			Str("table_name", obj.Table.Table).
			Int64("target_minus_view", obj.TargetMinusView).
			Int64("view_minus_target", obj.ViewMinusTarget).
			Msgf("rows compared")
	case reconcile.DuplicateOutcome:
		l.outcome(obj).
			Str("database", obj.Table.Database).
			Str("table_schema", obj.Table.Schema).
			Str("table_name", obj.Table.Table).
			Int64("dup_count", obj.DupCount).
			Msgf("duplicates counted")
	case reconcile.ExistenceOutcome:
		l.outcome(obj).
			Str("database", obj.Unit.Database).
			Str("counterpart_database", obj.CounterpartDatabase).
			Str("table_schema", obj.Unit.Schema).
			Str("table_name", obj.Unit.Table).
			Str("column", obj.Unit.Column).
			Str("details", obj.Details).
			Msgf("existence checked")
	case reconcile.ParityOutcome:
		l.outcome(obj).
			Str("database", obj.Database).
			Str("table_schema", obj.Schema).
			Str("check", obj.Check).
			Int64("source_count", obj.SourceCount).
			Int64("target_count", obj.TargetCount).
			Msgf("parity checked")
	default:
		l.Error().
			Str("type", fmt.Sprintf("%T", obj)).
			Msgf("unknown object type")
	}
}

func (l LogReporter) outcome(o reconcile.Outcome) *zerolog.Event {
	e := l.Debug()
	if o.TestCase() != reconcile.Success {
		e = l.Info()
	}
	return e.Str("test_case", string(o.TestCase()))
}

func (l LogReporter) Close() {
}

var outcomesMetric = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "zdq",
	Name:      "outcomes_total",
	Help:      "Comparison outcomes by validation kind and test case.",
}, []string{"kind", "test_case"})

// MetricsReporter counts outcomes by kind and status.
type MetricsReporter struct{}

func (MetricsReporter) Report(obj reconcile.ReportableObject) {
	if o, ok := obj.(reconcile.Outcome); ok {
		outcomesMetric.WithLabelValues(string(o.Kind()), string(o.TestCase())).Inc()
	}
}

func (MetricsReporter) Close() {}

// ProgressReporter draws a terminal progress bar once a run announces its
// units, advancing it once per outcome.
type ProgressReporter struct {
	title string
	mu    sync.Mutex
	bar   *uiprogress.Bar
}

func NewProgressReporter(title string) *ProgressReporter {
	return &ProgressReporter{title: title}
}

func (p *ProgressReporter) Report(obj reconcile.ReportableObject) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch obj := obj.(type) {
	case reconcile.Planned:
		if p.bar != nil || obj.Units == 0 {
			return
		}
		uiprogress.Start()
		p.bar = uiprogress.AddBar(obj.Units).AppendCompleted().PrependElapsed()
		p.bar.PrependFunc(func(b *uiprogress.Bar) string {
			return p.title + ": "
		})
	case reconcile.Outcome:
		if p.bar != nil {
			p.bar.Incr()
		}
	}
}

func (p *ProgressReporter) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		uiprogress.Stop()
		p.bar = nil
	}
}
