package exportstore

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/zdqhub/zdq/dbtable"
	"github.com/zdqhub/zdq/reconcile"
	"github.com/zdqhub/zdq/report"
)

func testReport(t *testing.T) report.Report {
	labels := reconcile.JobLabels{Env: "DEV", LoadGroup: "G1", LoadType: "FULL"}
	rep, err := report.Aggregate(reconcile.KindDuplicate, report.Outcomes([]reconcile.DuplicateOutcome{
		{
			JobLabels: labels,
			Table:     dbtable.Name{Database: "DEV_SALES", Schema: "PUBLIC", Table: "ORDERS"},
			Status:    reconcile.Success,
		},
		{
			JobLabels: labels,
			Table:     dbtable.Name{Database: "DEV_SALES", Schema: "PUBLIC", Table: "ITEMS"},
			DupCount:  3,
			Status:    reconcile.Failure,
		},
	}))
	require.NoError(t, err)
	rep.CreatedAt = time.Date(2024, 1, 31, 15, 45, 0, 0, time.UTC)
	return rep
}

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewLocalStore(zerolog.Nop(), filepath.Join(dir, "out"))
	require.NoError(t, err)

	res, err := s.Put(ctx, "run/a.csv", strings.NewReader("x,y\n"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "out", "run", "a.csv"), res.Location())

	r, err := res.Reader(ctx)
	require.NoError(t, err)
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.Equal(t, "x,y\n", string(b))

	require.NoError(t, res.Delete(ctx))
	_, err = os.Stat(res.Location())
	require.True(t, os.IsNotExist(err))
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	rep := testReport(t)

	for _, tc := range []struct {
		desc     string
		format   Format
		prefix   string
		expected []string
		enhanced bool
	}{
		{
			desc:     "csv only",
			expected: []string{"duplicate_validation_20240131_154500.csv"},
		},
		{
			desc:     "with junit and prefix",
			format:   Format{Table: report.Enhanced, JUnit: true},
			prefix:   "nightly",
			expected: []string{"nightly/duplicate_validation_20240131_154500.csv", "nightly/duplicate_validation_20240131_154500.xml"},
			enhanced: true,
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			dir := t.TempDir()
			s, err := NewLocalStore(zerolog.Nop(), dir)
			require.NoError(t, err)
			resources, err := Export(ctx, s, tc.prefix, rep, tc.format)
			require.NoError(t, err)
			require.Len(t, resources, len(tc.expected))
			for i, res := range resources {
				require.Equal(t, filepath.Join(dir, filepath.FromSlash(tc.expected[i])), res.Location())
			}

			b, err := os.ReadFile(resources[0].Location())
			require.NoError(t, err)
			lines := strings.Split(strings.TrimSpace(string(b)), "\n")
			require.Len(t, lines, 3)
			if tc.enhanced {
				require.Equal(t, "Load Type,Load Group,Environment,Database,Schema,Table,DUP COUNT,Test Case,Status", lines[0])
				require.Equal(t, "FULL,G1,DEV,DEV_SALES,PUBLIC,ITEMS,3,FAILURE,❌ FAILURE", lines[2])
			} else {
				require.Equal(t, "Load Type,Load Group,Environment,Database,Schema,Table,DUP COUNT,Test Case", lines[0])
				require.Equal(t, "FULL,G1,DEV,DEV_SALES,PUBLIC,ORDERS,0,SUCCESS", lines[1])
			}
		})
	}
}

type failingStore struct{}

func (failingStore) Put(ctx context.Context, name string, r io.Reader) (Resource, error) {
	// Read a little then give up, leaving the writer blocked on the pipe.
	_, _ = io.CopyN(io.Discard, r, 1)
	return nil, errors.New("bucket unavailable")
}

func TestExportStoreFailure(t *testing.T) {
	_, err := Export(context.Background(), failingStore{}, "", testReport(t), Format{})
	require.EqualError(t, err, "error exporting duplicate_validation_20240131_154500.csv: bucket unavailable")
}

type memStore struct {
	files map[string]*bytes.Buffer
}

func (m *memStore) Put(ctx context.Context, name string, r io.Reader) (Resource, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, err
	}
	m.files[name] = &buf
	return nil, nil
}

func TestExportJUnit(t *testing.T) {
	m := &memStore{files: map[string]*bytes.Buffer{}}
	_, err := Export(context.Background(), m, "", testReport(t), Format{JUnit: true})
	require.NoError(t, err)
	require.Len(t, m.files, 2)
	xml := m.files["duplicate_validation_20240131_154500.xml"].String()
	require.Contains(t, xml, `failures="1"`)
	require.Contains(t, xml, `name="FULL/G1/DEV/DEV_SALES/PUBLIC/ITEMS"`)
}
