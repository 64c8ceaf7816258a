package testutils

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/stretchr/testify/require"
	"github.com/zdqhub/zdq/dbconn"
	"github.com/zdqhub/zdq/dialect"
)

// PGConnStr returns the postgres instance used by live tests, skipping the
// test if POSTGRES_URL is not set.
func PGConnStr(t *testing.T) string {
	pgInstanceURL, ok := os.LookupEnv("POSTGRES_URL")
	if !ok {
		t.Skip("POSTGRES_URL not set")
	}
	return pgInstanceURL
}

// ExecConnCommand runs the statement in d.Input and prints its command tag.
func ExecConnCommand(t *testing.T, d *datadriven.TestData, conn *dbconn.PGConn) string {
	ctx := context.Background()
	tag, err := conn.Exec(ctx, d.Input)
	if err != nil {
		return fmt.Sprintf("[%s] error: %s\n", conn.ID(), err.Error())
	}
	// Deallocate caches - otherwise the plans may stick around.
	require.NoError(t, conn.DeallocateAll(ctx))
	return fmt.Sprintf("[%s] %s\n", conn.ID(), tag.String())
}

// QueryConnCommand runs q and prints a header of column names followed by
// one tab separated line per row.
func QueryConnCommand(t *testing.T, conn dbconn.Conn, q dialect.Query) string {
	rows, err := conn.Query(context.Background(), q)
	if err != nil {
		return fmt.Sprintf("[%s] error: %s\n", conn.ID(), err.Error())
	}
	var sb strings.Builder
	for i, r := range rows {
		if i == 0 {
			sb.WriteString(strings.Join(r.Columns, "\t"))
			sb.WriteString("\n")
		}
		for j, val := range r.Values {
			if j > 0 {
				sb.WriteString("\t")
			}
			sb.WriteString(fmt.Sprintf("%v", val))
		}
		sb.WriteString("\n")
	}
	if len(rows) == 0 {
		sb.WriteString("no rows\n")
	}
	return sb.String()
}
