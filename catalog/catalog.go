// Package catalog discovers the databases, schemas and categorical values used
// to parametrize a validation run.
//
// Lookups never fail: any error is logged and the lookup returns an empty
// slice, which callers treat as "nothing available".
package catalog

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/zdqhub/zdq/config"
	"github.com/zdqhub/zdq/dbconn"
	"github.com/zdqhub/zdq/dialect"
)

// Columns that ListDistinct can enumerate.
const (
	ColumnDBType              = "DB_TYPE"
	ColumnLoadGroup           = "LOAD_GROUP"
	ColumnLoadType            = "LOAD_TYPE"
	ColumnClassificationOwner = "CLASSIFICATION_OWNER"
)

type Catalog struct {
	conn   dbconn.Conn
	cfg    config.Config
	cache  *Cache
	logger zerolog.Logger
}

func New(conn dbconn.Conn, cfg config.Config, logger zerolog.Logger) *Catalog {
	return &Catalog{
		conn:   conn,
		cfg:    cfg,
		cache:  NewCache(cfg.CacheTTL),
		logger: logger,
	}
}

// Cache exposes the lookup cache, e.g. for invalidation.
func (c *Catalog) Cache() *Cache {
	return c.cache
}

type DatabaseFilter struct {
	// ExcludeCounterparts drops masked and encrypted sibling databases.
	ExcludeCounterparts bool
}

// ListDatabases lists databases whose name starts with the environment prefix.
func (c *Catalog) ListDatabases(ctx context.Context, env config.Environment, f DatabaseFilter) []string {
	var exclude []string
	if f.ExcludeCounterparts {
		exclude = []string{"%" + c.cfg.EncryptedSuffix, "%" + c.cfg.MaskedSuffix + "%"}
	}
	key := append([]string{"databases", string(env)}, exclude...)
	return c.list(ctx, key, "DATABASE_NAME", func() (dialect.Query, error) {
		return c.conn.Dialect().ListDatabases(string(env)+"_", exclude)
	})
}

func (c *Catalog) ListSchemas(ctx context.Context, database string) []string {
	return c.list(ctx, []string{"schemas", database}, "SCHEMA_NAME", func() (dialect.Query, error) {
		return c.conn.Dialect().ListSchemas(database)
	})
}

// ListDistinct lists the distinct non-NULL values of column in the catalog
// table that owns it for env.
func (c *Catalog) ListDistinct(ctx context.Context, env config.Environment, column string) []string {
	return c.list(ctx, []string{"distinct", string(env), column}, "DISTINCT_VALUE", func() (dialect.Query, error) {
		rel, err := c.distinctSource(env, column)
		if err != nil {
			return dialect.Query{}, err
		}
		return c.conn.Dialect().ListDistinct(rel, column)
	})
}

func (c *Catalog) DBTypes(ctx context.Context, env config.Environment) []string {
	return c.ListDistinct(ctx, env, ColumnDBType)
}

func (c *Catalog) LoadGroups(ctx context.Context, env config.Environment) []string {
	return c.ListDistinct(ctx, env, ColumnLoadGroup)
}

func (c *Catalog) ClassificationOwners(ctx context.Context, env config.Environment) []string {
	return c.ListDistinct(ctx, env, ColumnClassificationOwner)
}

func (c *Catalog) distinctSource(env config.Environment, column string) (dialect.Relation, error) {
	switch column {
	case ColumnDBType, ColumnLoadGroup, ColumnLoadType:
		ctl, err := c.cfg.ControlDatabase(env)
		if err != nil {
			return dialect.Relation{}, err
		}
		return dialect.Relation{Database: ctl, Schema: "public", Table: "audit_recon"}, nil
	case ColumnClassificationOwner:
		return dialect.Relation{
			Database: c.cfg.ClassificationDatabase(env),
			Schema:   "MASKING",
			Table:    "CLASSIFICATION_DETAILS",
		}, nil
	}
	return dialect.Relation{}, errors.Newf("no catalog table lists %s", column)
}

func (c *Catalog) list(
	ctx context.Context, key []string, column string, build func() (dialect.Query, error),
) []string {
	vals, err := c.cache.Get(strings.Join(key, "\x00"), func() ([]string, error) {
		q, err := build()
		if err != nil {
			return nil, err
		}
		rows, err := c.conn.Query(ctx, q)
		if err != nil {
			return nil, err
		}
		ret := make([]string, 0, len(rows))
		for _, r := range rows {
			if s := r.String(column); s != "" {
				ret = append(ret, s)
			}
		}
		return ret, nil
	})
	if err != nil {
		c.logger.Warn().Err(err).Strs("lookup", key).Msg("catalog lookup failed")
		return []string{}
	}
	return vals
}
