package dbconn

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/zdqhub/zdq/dialect"
)

type PGConn struct {
	id ID
	*pgx.Conn
	connStr string
}

var _ Conn = (*PGConn)(nil)

func ConnectPG(ctx context.Context, id ID, connStr string) (*PGConn, error) {
	cfg, err := pgx.ParseConfig(connStr)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to parse postgres url: %s", redact(connStr))
	}
	return ConnectPGConfig(ctx, id, connStr, cfg)
}

func ConnectPGConfig(ctx context.Context, id ID, connStr string, cfg *pgx.ConnConfig) (*PGConn, error) {
	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s", redact(connStr))
	}
	return &PGConn{id: id, Conn: conn, connStr: connStr}, nil
}

func (c *PGConn) ID() ID {
	return c.id
}

func (c *PGConn) Dialect() dialect.Dialect {
	return dialect.Postgres()
}

func (c *PGConn) Query(ctx context.Context, q dialect.Query) ([]Row, error) {
	rows, err := c.Conn.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fds := rows.FieldDescriptions()
	cols := make([]string, len(fds))
	for i, fd := range fds {
		cols[i] = fd.Name
	}
	var ret []Row
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, errors.Wrap(err, "error scanning row")
		}
		ret = append(ret, Row{Columns: cols, Values: vals})
	}
	return ret, rows.Err()
}
