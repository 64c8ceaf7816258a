package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/zdqhub/zdq/dbtable"
	"github.com/zdqhub/zdq/reconcile"
)

var (
	labels = reconcile.JobLabels{Env: "DEV", LoadGroup: "G1", LoadType: "FULL"}
	counts = reconcile.CountsByPosition(
		labels,
		[]dbtable.TableRef{{Name: "A", RowCount: 10}, {Name: "B", RowCount: 5}},
		[]dbtable.TableRef{{Name: "A", RowCount: 10}, {Name: "B", RowCount: 7}},
	)
)

func TestSummarize(t *testing.T) {
	success := reconcile.DuplicateOutcome{Status: reconcile.Success}
	failure := reconcile.DuplicateOutcome{Status: reconcile.Failure, DupCount: 2}
	for _, tc := range []struct {
		desc     string
		outcomes []reconcile.Outcome
		expected Summary
		rate     string
	}{
		{desc: "empty", expected: Summary{}, rate: "0.0%"},
		{
			desc:     "all passed",
			outcomes: []reconcile.Outcome{success, success},
			expected: Summary{Total: 2, Success: 2, SuccessRate: 100},
			rate:     "100.0%",
		},
		{
			desc:     "one of three",
			outcomes: []reconcile.Outcome{success, failure, failure},
			expected: Summary{Total: 3, Success: 1, Failure: 2, SuccessRate: 100.0 / 3},
			rate:     "33.3%",
		},
		{
			desc:     "all failed",
			outcomes: []reconcile.Outcome{failure},
			expected: Summary{Total: 1, Failure: 1},
			rate:     "0.0%",
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			s := Summarize(tc.outcomes)
			require.Equal(t, tc.expected.Total, s.Total)
			require.Equal(t, tc.expected.Success, s.Success)
			require.Equal(t, tc.expected.Failure, s.Failure)
			require.InDelta(t, tc.expected.SuccessRate, s.SuccessRate, 1e-9)
			require.Equal(t, s.Total, s.Success+s.Failure)
			require.Equal(t, tc.rate, s.Rate())
		})
	}
}

func TestAggregate(t *testing.T) {
	r, err := Aggregate(reconcile.KindCount, Outcomes(counts))
	require.NoError(t, err)
	require.Equal(t, Summary{Total: 2, Success: 1, Failure: 1, SuccessRate: 50}, r.Summary)
	require.NotEqual(t, r.RunID.String(), "")

	empty, err := Aggregate(reconcile.KindRowDiff, nil)
	require.NoError(t, err)
	require.Equal(t, 0, empty.Summary.Total)
	require.NotNil(t, empty.Outcomes)

	_, err = Aggregate(reconcile.KindDuplicate, Outcomes(counts))
	require.Error(t, err)
	require.True(t, errors.IsAssertionFailure(err))
}

func TestTable(t *testing.T) {
	r, err := Aggregate(reconcile.KindCount, Outcomes(counts))
	require.NoError(t, err)

	canonical := r.Table(Canonical)
	require.Equal(t, reconcile.Header(reconcile.KindCount), canonical[0])
	require.Equal(t, []string{"FULL", "G1", "DEV", "A", "10", "A", "10", "SUCCESS", ""}, canonical[1])

	enhanced := r.Table(Enhanced)
	require.Equal(t, "Status", enhanced[0][len(enhanced[0])-1])
	require.Equal(t, append(canonical[1], "✅ SUCCESS"), enhanced[1])
	require.Equal(t, append(canonical[2], "❌ FAILURE"), enhanced[2])

	// The canonical projection is unaffected by rendering the enhanced one.
	require.Equal(t, canonical, r.Table(Canonical))
	require.Equal(t, reconcile.Failure, r.Outcomes[1].TestCase())
}

func TestWriteCSV(t *testing.T) {
	r, err := Aggregate(reconcile.KindCount, Outcomes(counts))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, r, Canonical))
	require.Equal(t, `Load Type,Load Group,Environment,SOURCE_TABLE,SOURCE_ROWS,TARGET_TABLE,TARGET_ROWS,Test Case,Details
FULL,G1,DEV,A,10,A,10,SUCCESS,
FULL,G1,DEV,B,5,B,7,FAILURE,Target count is greater than source count
`, buf.String())

	buf.Reset()
	require.NoError(t, WriteCSV(&buf, r, Enhanced))
	require.Contains(t, buf.String(), "Test Case,Details,Status\n")
	require.Contains(t, buf.String(), "FAILURE,Target count is greater than source count,❌ FAILURE\n")
}

func TestFileName(t *testing.T) {
	r := Report{Kind: reconcile.KindEncryptionColumn, CreatedAt: time.Date(2024, 1, 31, 15, 45, 0, 0, time.UTC)}
	require.Equal(t, "encryption_column_validation_20240131_154500.csv", FileName(r, "csv"))
}

func TestWriteText(t *testing.T) {
	empty, err := Aggregate(reconcile.KindDuplicate, nil)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, empty, Canonical))
	require.Contains(t, buf.String(), "total: 0  passed: 0  failed: 0  success rate: 0.0%")
	require.Contains(t, buf.String(), "no comparison units found")

	r, err := Aggregate(reconcile.KindCount, Outcomes(counts))
	require.NoError(t, err)
	buf.Reset()
	require.NoError(t, WriteText(&buf, r, Enhanced))
	require.Contains(t, buf.String(), "total: 2  passed: 1  failed: 1  success rate: 50.0%")
	require.Contains(t, buf.String(), "SOURCE_TABLE")
}

func TestWriteJUnit(t *testing.T) {
	r, err := Aggregate(reconcile.KindCount, Outcomes(counts))
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, WriteJUnit(&buf, r, time.Second))
	out := buf.String()
	require.Contains(t, out, `<testsuite tests="2" failures="1"`)
	require.Contains(t, out, `name="zdq/count"`)
	require.Contains(t, out, `name="FULL/G1/DEV/A/A"`)
	require.Contains(t, out, `name="FULL/G1/DEV/B/B"`)
	require.Contains(t, out, "Details: Target count is greater than source count")
}

func TestLogReporter(t *testing.T) {
	var buf bytes.Buffer
	l := LogReporter{Logger: zerolog.New(&buf)}
	l.Report(reconcile.Warning{Unit: "DEV_SALES.PUBLIC.ORDERS", Err: errors.New("timeout")})
	l.Report(counts[1])
	l.Report(struct{}{})
	out := buf.String()
	require.Contains(t, out, `"unit":"DEV_SALES.PUBLIC.ORDERS"`)
	require.Contains(t, out, `"error":"timeout"`)
	require.Contains(t, out, `"test_case":"FAILURE"`)
	require.Contains(t, out, `"target_rows":7`)
	require.Contains(t, out, `"message":"unknown object type"`)
}

type countingReporter struct {
	reports int
	closed  bool
}

func (c *countingReporter) Report(reconcile.ReportableObject) { c.reports++ }
func (c *countingReporter) Close()                            { c.closed = true }

func TestCombinedReporter(t *testing.T) {
	a, b := &countingReporter{}, &countingReporter{}
	c := CombinedReporter{Reporters: []reconcile.Reporter{a, b, MetricsReporter{}}}
	c.Report(counts[0])
	c.Report(reconcile.StatusReport{Info: "done"})
	c.Close()
	require.Equal(t, 2, a.reports)
	require.Equal(t, 2, b.reports)
	require.True(t, a.closed && b.closed)
}
