package dbconn

import (
	"context"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/zdqhub/zdq/dialect"
)

type ID string

type Conn interface {
	ID() ID
	// Dialect returns the query dialect the warehouse speaks.
	Dialect() dialect.Dialect
	// Query runs q and buffers every result row.
	Query(ctx context.Context, q dialect.Query) ([]Row, error)
	// Close closes the connection.
	Close(ctx context.Context) error
}

// Connect opens a connection from a URL. Recognised schemes are snowflake://
// and postgres:// (or postgresql://).
func Connect(ctx context.Context, preferredID ID, connStr string) (Conn, error) {
	id := preferredID
	if len(connStr) == 0 {
		return nil, errors.Newf("empty connection string")
	}

	before := strings.SplitN(connStr, "://", 2)
	if len(before) != 2 {
		return nil, errors.Newf("connection string %s has no scheme", redact(connStr))
	}

	switch {
	case strings.Contains(before[0], "postgres"):
		u, err := url.Parse(connStr)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to parse url: %s", redact(connStr))
		}
		if id == "" {
			id = ID(u.Hostname() + ":" + u.Port())
		}
		return ConnectPG(ctx, id, connStr)
	case strings.Contains(before[0], "snowflake"):
		cfg, err := ParseSnowflakeURL(connStr)
		if err != nil {
			return nil, err
		}
		if id == "" {
			id = ID(cfg.Account)
		}
		return ConnectSnowflake(ctx, id, cfg)
	}
	return nil, errors.Newf("unrecognised scheme %s from %s", before[0], redact(connStr))
}

// redact strips any password from a connection string before it is logged or
// returned in an error.
func redact(connStr string) string {
	u, err := url.Parse(connStr)
	if err != nil || u.User == nil {
		return connStr
	}
	return u.Redacted()
}
