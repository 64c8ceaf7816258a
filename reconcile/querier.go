package reconcile

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/zdqhub/zdq/dbconn"
	"github.com/zdqhub/zdq/dbtable"
	"github.com/zdqhub/zdq/dialect"
)

// WarehouseQuerier takes measurements by querying a warehouse connection.
type WarehouseQuerier struct {
	Conn dbconn.Conn
}

var _ Querier = WarehouseQuerier{}

func (w WarehouseQuerier) Minus(ctx context.Context, from, to dialect.Projection) (int64, error) {
	return w.Count(ctx, func(d dialect.Dialect) (dialect.Query, error) {
		return d.Minus(from, to)
	})
}

func (w WarehouseQuerier) Duplicates(ctx context.Context, p dialect.Projection) (int64, error) {
	return w.Count(ctx, func(d dialect.Dialect) (dialect.Query, error) {
		return d.Duplicates(p)
	})
}

func (w WarehouseQuerier) ColumnMatches(ctx context.Context, c dbtable.Column) (int64, error) {
	return w.Count(ctx, func(d dialect.Dialect) (dialect.Query, error) {
		return d.ColumnExists(c.Database, c.Schema, c.Table, c.Column)
	})
}

func (w WarehouseQuerier) TableMatches(ctx context.Context, n dbtable.Name) (int64, error) {
	return w.Count(ctx, func(d dialect.Dialect) (dialect.Query, error) {
		return d.TableExists(n.Database, n.Schema, n.Table)
	})
}

// Count runs the query and reads the first column of its single row.
func (w WarehouseQuerier) Count(ctx context.Context, build QueryBuilder) (int64, error) {
	q, err := build(w.Conn.Dialect())
	if err != nil {
		return 0, err
	}
	rows, err := w.Conn.Query(ctx, q)
	if err != nil {
		return 0, err
	}
	if len(rows) != 1 || len(rows[0].Columns) == 0 {
		return 0, errors.Newf("expected a single count row, got %d rows", len(rows))
	}
	return rows[0].Int64(rows[0].Columns[0])
}
