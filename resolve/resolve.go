// Package resolve turns operator selections into the concrete tables and
// columns a validation run compares.
package resolve

import (
	"context"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/zdqhub/zdq/config"
	"github.com/zdqhub/zdq/dbconn"
	"github.com/zdqhub/zdq/dbtable"
	"github.com/zdqhub/zdq/dialect"
)

type Resolver struct {
	conn   dbconn.Conn
	cfg    config.Config
	logger zerolog.Logger
}

func New(conn dbconn.Conn, cfg config.Config, logger zerolog.Logger) *Resolver {
	return &Resolver{conn: conn, cfg: cfg, logger: logger}
}

type IngestionParams struct {
	Env          config.Environment
	LoadGroup    string
	LoadType     string
	SourceDBType string
}

// IngestionPair returns the control catalog's table lists for the source
// system and for the warehouse's loaded copy, each sorted by table name. On
// failure both lists are empty and the error is returned.
func (r *Resolver) IngestionPair(
	ctx context.Context, p IngestionParams,
) (source []dbtable.TableRef, target []dbtable.TableRef, _ error) {
	ctl, err := r.cfg.ControlDatabase(p.Env)
	if err != nil {
		return []dbtable.TableRef{}, []dbtable.TableRef{}, err
	}
	source, err = r.auditTables(ctx, ctl, dialect.AuditFilter{
		LoadGroup: p.LoadGroup,
		LoadType:  p.LoadType,
		DBType:    p.SourceDBType,
	})
	if err != nil {
		return []dbtable.TableRef{}, []dbtable.TableRef{}, errors.Wrapf(err, "error listing %s tables", p.SourceDBType)
	}
	target, err = r.auditTables(ctx, ctl, dialect.AuditFilter{
		LoadGroup: p.LoadGroup,
		LoadType:  p.LoadType,
		DBType:    r.cfg.WarehouseDBType,
	})
	if err != nil {
		return []dbtable.TableRef{}, []dbtable.TableRef{}, errors.Wrapf(err, "error listing %s tables", r.cfg.WarehouseDBType)
	}
	r.logger.Debug().
		Int("source_tables", len(source)).
		Int("target_tables", len(target)).
		Str("load_group", p.LoadGroup).
		Msg("resolved ingestion tables")
	return source, target, nil
}

func (r *Resolver) auditTables(
	ctx context.Context, controlDB string, f dialect.AuditFilter,
) ([]dbtable.TableRef, error) {
	q, err := r.conn.Dialect().AuditTables(controlDB, f)
	if err != nil {
		return nil, err
	}
	rows, err := r.conn.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	ret := make([]dbtable.TableRef, 0, len(rows))
	for _, row := range rows {
		cnt, err := row.Int64("ROW_COUNT")
		if err != nil {
			return nil, errors.Wrapf(err, "row count for %s", row.String("TABLE_NAME"))
		}
		ret = append(ret, dbtable.TableRef{Name: row.String("TABLE_NAME"), RowCount: cnt})
	}
	sort.SliceStable(ret, func(i, j int) bool { return ret[i].Less(ret[j]) })
	return ret, nil
}

// IngestionTables lists the tables of database.schema registered in the
// control catalog for the load group and load type.
func (r *Resolver) IngestionTables(
	ctx context.Context, env config.Environment, database string, schema string, loadGroup string, loadType string,
) ([]dbtable.Name, error) {
	ctl, err := r.cfg.ControlDatabase(env)
	if err != nil {
		return nil, err
	}
	q, err := r.conn.Dialect().IngestionTables(database, schema, ctl, loadGroup, loadType)
	if err != nil {
		return nil, err
	}
	rows, err := r.conn.Query(ctx, q)
	if err != nil {
		return nil, errors.Wrapf(err, "error listing tables in %s.%s", database, schema)
	}
	ret := make([]dbtable.Name, 0, len(rows))
	for _, row := range rows {
		ret = append(ret, dbtable.Name{
			Database: database,
			Schema:   row.String("TABLE_SCHEMA"),
			Table:    row.String("TABLE_NAME"),
		})
	}
	sort.SliceStable(ret, func(i, j int) bool { return ret[i].Less(ret[j]) })
	return ret, nil
}

type ClassificationParams struct {
	Env      config.Environment
	Database string
	Schema   string
	Owner    string
}

// ClassifiedColumns lists the classified columns of database.schema owned by
// owner, ordered by table then column. The classification catalog only tracks
// production names, so the lookup uses the production form of the database
// while the returned columns keep the database asked for.
func (r *Resolver) ClassifiedColumns(ctx context.Context, p ClassificationParams) ([]dbtable.Column, error) {
	prodDB := config.ProductionDatabase(p.Database)
	q, err := r.conn.Dialect().ClassifiedColumns(r.cfg.ClassificationDatabase(p.Env), prodDB, p.Schema, p.Owner)
	if err != nil {
		return nil, err
	}
	rows, err := r.conn.Query(ctx, q)
	if err != nil {
		return nil, errors.Wrapf(err, "error listing classified columns for %s.%s", prodDB, p.Schema)
	}
	ret := make([]dbtable.Column, 0, len(rows))
	for _, row := range rows {
		ret = append(ret, dbtable.Column{
			Name: dbtable.Name{
				Database: p.Database,
				Schema:   p.Schema,
				Table:    row.String("TABLE_NAME"),
			},
			Column: row.String("COLUMN_NAME"),
		})
	}
	sort.SliceStable(ret, func(i, j int) bool {
		if ret[i].Table != ret[j].Table {
			return ret[i].Table < ret[j].Table
		}
		return ret[i].Column < ret[j].Column
	})
	return dedupe(ret), nil
}

// ClassifiedTables lists the distinct tables holding classified columns.
func (r *Resolver) ClassifiedTables(ctx context.Context, p ClassificationParams) ([]dbtable.Name, error) {
	cols, err := r.ClassifiedColumns(ctx, p)
	if err != nil {
		return nil, err
	}
	ret := make([]dbtable.Name, 0, len(cols))
	for _, c := range cols {
		if len(ret) > 0 && ret[len(ret)-1] == c.Name {
			continue
		}
		ret = append(ret, c.Name)
	}
	return ret, nil
}

func dedupe(cols []dbtable.Column) []dbtable.Column {
	ret := make([]dbtable.Column, 0, len(cols))
	for _, c := range cols {
		if len(ret) > 0 && ret[len(ret)-1] == c {
			continue
		}
		ret = append(ret, c)
	}
	return ret
}
