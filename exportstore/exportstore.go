// Package exportstore persists rendered validation reports to a local
// directory or a cloud bucket.
package exportstore

import (
	"context"
	"io"
	"path"

	"github.com/cockroachdb/errors"
	"github.com/zdqhub/zdq/report"
)

type Store interface {
	// Put stores the contents of r under name, returning its location.
	Put(ctx context.Context, name string, r io.Reader) (Resource, error)
}

type Resource interface {
	Location() string
	Reader(ctx context.Context) (io.ReadCloser, error)
	Delete(ctx context.Context) error
}

// Format selects which renderings of a report are exported.
type Format struct {
	Table report.Format
	JUnit bool
}

// Export writes rep as CSV, and optionally JUnit XML, into the store. Files
// are keyed under prefix when it is set.
func Export(
	ctx context.Context, s Store, prefix string, rep report.Report, f Format,
) ([]Resource, error) {
	ret := []Resource{}
	res, err := put(ctx, s, path.Join(prefix, report.FileName(rep, "csv")), func(w io.Writer) error {
		return report.WriteCSV(w, rep, f.Table)
	})
	if err != nil {
		return ret, err
	}
	ret = append(ret, res)
	if f.JUnit {
		res, err := put(ctx, s, path.Join(prefix, report.FileName(rep, "xml")), func(w io.Writer) error {
			return report.WriteJUnit(w, rep, rep.Elapsed)
		})
		if err != nil {
			return ret, err
		}
		ret = append(ret, res)
	}
	return ret, nil
}

// put streams the output of write into the store through a pipe.
func put(ctx context.Context, s Store, name string, write func(w io.Writer) error) (Resource, error) {
	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(write(pw))
	}()
	res, err := s.Put(ctx, name, pr)
	// Unblock the writer if the store gave up early.
	_ = pr.CloseWithError(errors.New("store closed reader"))
	if err != nil {
		return nil, errors.Wrapf(err, "error exporting %s", name)
	}
	return res, nil
}
