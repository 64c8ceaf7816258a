package report

import (
	"io"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jstemmer/go-junit-report/formatter"
	"github.com/jstemmer/go-junit-report/parser"
	"github.com/zdqhub/zdq/reconcile"
)

// WriteJUnit renders the report as a JUnit test suite so CI systems can
// display each comparison unit as a test case.
func WriteJUnit(w io.Writer, r Report, elapsed time.Duration) error {
	header := reconcile.Header(r.Kind)
	pkg := parser.Package{
		Name:     "zdq/" + string(r.Kind),
		Duration: elapsed,
	}
	for _, o := range r.Outcomes {
		row := o.Row()
		t := &parser.Test{
			Name:   testName(header, row),
			Result: parser.PASS,
		}
		if o.TestCase() != reconcile.Success {
			t.Result = parser.FAIL
			for i := range row {
				if i < len(header) {
					t.Output = append(t.Output, header[i]+": "+row[i])
				}
			}
		}
		pkg.Tests = append(pkg.Tests, t)
	}
	if err := formatter.JUnitReportXML(&parser.Report{Packages: []parser.Package{pkg}}, false, "", w); err != nil {
		return errors.Wrap(err, "error writing junit report")
	}
	return nil
}

// testName joins the identifying cells of a row, which are every cell before
// the first measurement.
func testName(header []string, row []string) string {
	var parts []string
	for i, h := range header {
		if i >= len(row) {
			break
		}
		switch h {
		case "Test Case", "Details", "SOURCE_ROWS", "TARGET_ROWS", "TARGET VS VIEW", "VIEW VS TARGET",
			"DUP COUNT", "Source Count", "Target Count", "Actual DB Exists", "Masked DB Exists",
			"Encrypted DB Exists", "Actual DB Table Exists", "Encrypted DB Table Exists":
			continue
		}
		if row[i] != "" {
			parts = append(parts, row[i])
		}
	}
	return strings.Join(parts, "/")
}
