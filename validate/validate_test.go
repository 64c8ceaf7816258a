package validate

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/zdqhub/zdq/config"
	"github.com/zdqhub/zdq/dbconn"
	"github.com/zdqhub/zdq/reconcile"
	"github.com/zdqhub/zdq/report"
)

type recordingReporter struct {
	mu       sync.Mutex
	objs     []reconcile.ReportableObject
	warnings []reconcile.Warning
}

func (r *recordingReporter) Report(obj reconcile.ReportableObject) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.objs = append(r.objs, obj)
	if w, ok := obj.(reconcile.Warning); ok {
		r.warnings = append(r.warnings, w)
	}
}

func (r *recordingReporter) Close() {}

// TestValidate runs each validation kind against a scripted warehouse.
//
//	expect [args=(a,b)] [error=msg]
//	<query substring, \n for newlines>
//	<csv header>
//	<csv rows...>
func TestValidate(t *testing.T) {
	datadriven.Walk(t, "testdata", func(t *testing.T, path string) {
		conn := dbconn.MakeFakeConn("warehouse")
		datadriven.RunTest(t, path, func(t *testing.T, td *datadriven.TestData) string {
			switch td.Cmd {
			case "reset":
				conn = dbconn.MakeFakeConn("warehouse")
				return ""
			case "expect":
				conn.Expect(parseExpect(t, td))
				return ""
			case "queries":
				return fmt.Sprintf("%d", len(conn.Queries()))
			case "run":
				return runValidation(t, conn, td)
			}
			t.Fatalf("unknown command %s", td.Cmd)
			return ""
		})
	})
}

func parseExpect(t *testing.T, td *datadriven.TestData) dbconn.FakeResult {
	lines := strings.SplitN(td.Input, "\n", 2)
	res := dbconn.FakeResult{Match: strings.ReplaceAll(lines[0], `\n`, "\n")}
	for _, arg := range td.CmdArgs {
		switch arg.Key {
		case "args":
			for _, v := range arg.Vals {
				res.Args = append(res.Args, v)
			}
		case "error":
			res.Err = errors.New(arg.Vals[0])
		}
	}
	res.Rows = []dbconn.Row{}
	if len(lines) < 2 {
		return res
	}
	records, err := csv.NewReader(strings.NewReader(lines[1])).ReadAll()
	require.NoError(t, err)
	for _, rec := range records[1:] {
		row := dbconn.Row{Columns: records[0]}
		for _, v := range rec {
			row.Values = append(row.Values, v)
		}
		res.Rows = append(res.Rows, row)
	}
	return res
}

func runValidation(t *testing.T, conn dbconn.Conn, td *datadriven.TestData) string {
	ctx := context.Background()
	cfg := config.DefaultConfig()
	args := map[string]string{}
	for _, arg := range td.CmdArgs {
		if len(arg.Vals) > 0 {
			args[arg.Key] = arg.Vals[0]
		}
	}
	r := &recordingReporter{}
	opts := []Opt{WithReporter(r)}
	if args["pairing"] == "name" {
		opts = append(opts, WithPairing(reconcile.PairByName))
	}
	env := config.Environment(args["env"])
	tp := TableParams{
		Env:       env,
		Database:  args["db"],
		Schema:    args["schema"],
		LoadGroup: args["load_group"],
		LoadType:  args["load_type"],
	}
	cp := ClassificationParams{
		Env:      env,
		Database: args["db"],
		Schema:   args["schema"],
		Owner:    args["owner"],
	}

	var rep report.Report
	var err error
	switch args["kind"] {
	case "count":
		rep, err = RunCountValidation(ctx, conn, cfg, IngestionParams{
			Env:          env,
			LoadGroup:    args["load_group"],
			LoadType:     args["load_type"],
			SourceDBType: args["db_type"],
		}, opts...)
	case "data":
		rep, err = RunDataValidation(ctx, conn, cfg, tp, opts...)
	case "duplicate":
		rep, err = RunDuplicateValidation(ctx, conn, cfg, tp, opts...)
	case "masking":
		rep, err = RunMaskingValidation(ctx, conn, cfg, cp, opts...)
	case "masking_column":
		rep, err = RunMaskingExistence(ctx, conn, cfg, cp, opts...)
	case "encryption_column":
		rep, err = RunEncryptionColumnValidation(ctx, conn, cfg, cp, opts...)
	case "encryption_table":
		rep, err = RunEncryptionTableValidation(ctx, conn, cfg, cp, opts...)
	default:
		t.Fatalf("unknown kind %s", args["kind"])
	}
	if err != nil {
		return fmt.Sprintf("error: %s (missing parameter: %t)", err.Error(), IsMissingParameter(err))
	}

	var buf bytes.Buffer
	s := rep.Summary
	fmt.Fprintf(&buf, "summary: total=%d success=%d failure=%d rate=%s\n", s.Total, s.Success, s.Failure, s.Rate())
	require.NoError(t, report.WriteCSV(&buf, rep, report.Canonical))
	for _, w := range r.warnings {
		fmt.Fprintf(&buf, "warning: %s: %s\n", w.Unit, w.Err.Error())
	}
	return buf.String()
}

func TestMissingParameterIssuesNoQueries(t *testing.T) {
	ctx := context.Background()
	cfg := config.DefaultConfig()
	full := ClassificationParams{Env: config.DEV, Database: "DEV_SALES", Schema: "PUBLIC", Owner: "PII"}
	for _, tc := range []struct {
		desc     string
		run      func(conn dbconn.Conn) error
		expected string
	}{
		{
			desc: "count without load group",
			run: func(conn dbconn.Conn) error {
				_, err := RunCountValidation(ctx, conn, cfg, IngestionParams{Env: config.DEV, LoadType: "FULL", SourceDBType: "ORACLE"})
				return err
			},
			expected: "load group",
		},
		{
			desc: "data without schema",
			run: func(conn dbconn.Conn) error {
				_, err := RunDataValidation(ctx, conn, cfg, TableParams{Env: config.DEV, Database: "DEV_SALES", LoadGroup: "G1", LoadType: "FULL"})
				return err
			},
			expected: "schema",
		},
		{
			desc: "duplicate without environment",
			run: func(conn dbconn.Conn) error {
				_, err := RunDuplicateValidation(ctx, conn, cfg, TableParams{Database: "DEV_SALES", Schema: "PUBLIC", LoadGroup: "G1", LoadType: "FULL"})
				return err
			},
			expected: "environment",
		},
		{
			desc: "masking without owner",
			run: func(conn dbconn.Conn) error {
				p := full
				p.Owner = ""
				_, err := RunMaskingValidation(ctx, conn, cfg, p)
				return err
			},
			expected: "classification owner",
		},
		{
			desc: "encryption tables without database",
			run: func(conn dbconn.Conn) error {
				p := full
				p.Database = ""
				_, err := RunEncryptionTableValidation(ctx, conn, cfg, p)
				return err
			},
			expected: "database",
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			conn := dbconn.MakeFakeConn("warehouse")
			err := tc.run(conn)
			var m *MissingParameterError
			require.True(t, errors.As(err, &m))
			require.Equal(t, tc.expected, m.Param)
			require.Empty(t, conn.Queries())
		})
	}
}

func TestInvalidParameters(t *testing.T) {
	ctx := context.Background()
	cfg := config.DefaultConfig()
	conn := dbconn.MakeFakeConn("warehouse")

	_, err := RunCountValidation(ctx, conn, cfg, IngestionParams{
		Env: config.DEV, LoadGroup: "G1", LoadType: "FULL'; DROP TABLE X; --", SourceDBType: "ORACLE",
	})
	require.EqualError(t, err, `load type "FULL'; DROP TABLE X; --" contains characters outside [A-Za-z0-9_ -]`)
	require.False(t, IsMissingParameter(err))

	_, err = RunCountValidation(ctx, conn, cfg, IngestionParams{
		Env: "STAGING", LoadGroup: "G1", LoadType: "FULL", SourceDBType: "ORACLE",
	})
	require.True(t, errors.Is(err, config.ErrUnknownEnvironment))

	_, err = RunMaskingExistence(ctx, conn, cfg, ClassificationParams{
		Env: config.DEV, Database: "DEV SALES", Schema: "PUBLIC", Owner: "PII",
	})
	require.EqualError(t, err, `database name "DEV SALES" contains characters outside [A-Za-z0-9_$]`)
	require.Empty(t, conn.Queries())
}

func TestMaskingChecks(t *testing.T) {
	checks := MaskingChecks(config.DefaultConfig(), ClassificationParams{
		Env: config.QA, Database: "QA_SALES", Schema: "PUBLIC", Owner: "PII",
	})
	var names []string
	for _, c := range checks {
		names = append(names, c.Name)
	}
	require.Equal(t, []string{CheckMDTables, CheckMDColumns, CheckDataSet, CheckViews, CheckTags}, names)

	tags := checks[4]
	src, err := tags.Source(dbconn.MakeFakeConn("w").Dialect())
	require.NoError(t, err)
	require.Contains(t, src.SQL, "QA_DB_MANAGER.MASKING.CLASSIFICATION_DETAILS")
	require.Equal(t, []interface{}{"PROD_SALES", "PUBLIC", "PII"}, src.Args)
	tgt, err := tags.Target(dbconn.MakeFakeConn("w").Dialect())
	require.NoError(t, err)
	require.Equal(t, []interface{}{"QA_SALES_MASKED", "PUBLIC"}, tgt.Args)
}

func TestProgressEvents(t *testing.T) {
	conn := dbconn.MakeFakeConn(
		"warehouse",
		dbconn.FakeResult{Match: "CLASSIFICATION_DETAILS", Rows: []dbconn.Row{
			dbconn.MakeRow("TABLE_NAME", "CUSTOMER", "COLUMN_NAME", "EMAIL"),
			dbconn.MakeRow("TABLE_NAME", "CUSTOMER", "COLUMN_NAME", "PHONE"),
		}},
		dbconn.FakeResult{Match: "INFORMATION_SCHEMA.COLUMNS", Rows: []dbconn.Row{dbconn.MakeRow("MATCHES", int64(1))}},
	)
	r := &recordingReporter{}
	rep, err := RunEncryptionColumnValidation(context.Background(), conn, config.DefaultConfig(), ClassificationParams{
		Env: config.DEV, Database: "DEV_SALES", Schema: "PUBLIC", Owner: "PII",
	}, WithReporter(r))
	require.NoError(t, err)
	require.Equal(t, 2, rep.Summary.Success)
	require.Len(t, r.objs, 3)
	require.Equal(t, reconcile.Planned{Kind: reconcile.KindEncryptionColumn, Units: 2}, r.objs[0])
	for _, obj := range r.objs[1:] {
		require.Implements(t, (*reconcile.Outcome)(nil), obj)
	}
}

func TestClassificationEnvironmentNormalized(t *testing.T) {
	conn := dbconn.MakeFakeConn(
		"warehouse",
		dbconn.FakeResult{Match: "FROM DEV_DB_MANAGER.MASKING.CLASSIFICATION_DETAILS", Rows: []dbconn.Row{
			dbconn.MakeRow("TABLE_NAME", "CUSTOMER", "COLUMN_NAME", "EMAIL"),
		}},
		dbconn.FakeResult{Match: "INFORMATION_SCHEMA.TABLES", Rows: []dbconn.Row{dbconn.MakeRow("MATCHES", int64(1))}},
	)
	rep, err := RunEncryptionTableValidation(context.Background(), conn, config.DefaultConfig(), ClassificationParams{
		Env: " dev", Database: "DEV_SALES", Schema: "PUBLIC", Owner: "PII",
	})
	require.NoError(t, err)
	require.Equal(t, 1, rep.Summary.Success)
	table := rep.Table(report.Canonical)
	require.Len(t, table, 2)
	require.Equal(t, "DEV", table[1][0])

	_, err = RunEncryptionTableValidation(context.Background(), conn, config.DefaultConfig(), ClassificationParams{
		Env: "staging", Database: "DEV_SALES", Schema: "PUBLIC", Owner: "PII",
	})
	require.True(t, errors.Is(err, config.ErrUnknownEnvironment))
}
