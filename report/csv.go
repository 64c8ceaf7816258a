package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/cockroachdb/errors"
)

// FileName returns the default export name, e.g.
// count_validation_20240131_154500.csv.
func FileName(r Report, ext string) string {
	return fmt.Sprintf("%s_validation_%s.%s", r.Kind, r.CreatedAt.Format("20060102_150405"), ext)
}

func WriteCSV(w io.Writer, r Report, f Format) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(r.Table(f)); err != nil {
		return errors.Wrap(err, "error writing csv")
	}
	return nil
}

// WriteText renders the summary and an aligned outcome table for terminals.
func WriteText(w io.Writer, r Report, f Format) error {
	s := r.Summary
	if _, err := fmt.Fprintf(
		w,
		"run %s: %s validation at %s\ntotal: %d  passed: %d  failed: %d  success rate: %s\n\n",
		r.RunID, r.Kind, r.CreatedAt.Format(time.RFC3339), s.Total, s.Success, s.Failure, s.Rate(),
	); err != nil {
		return err
	}
	if s.Total == 0 {
		_, err := fmt.Fprintln(w, "no comparison units found")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, row := range r.Table(f) {
		for i, cell := range row {
			if i > 0 {
				if _, err := fmt.Fprint(tw, "\t"); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprint(tw, cell); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(tw); err != nil {
			return err
		}
	}
	return tw.Flush()
}
