// Package dialect generates the query text issued against a warehouse.
//
// Operator-supplied values are always bound as parameters. Identifiers
// (databases, schemas, tables, columns) cannot be bound, so every identifier is
// checked with ValidateIdent before it is interpolated.
package dialect

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// HousekeepingColumns are audit columns excluded from content comparison.
var HousekeepingColumns = []string{
	"ROW_CRE_DT",
	"ROW_MOD_DT",
	"ROW_CRE_USR_ID",
	"ROW_MOD_USR_ID",
	"RAW_ROW_CRE_DT",
}

// RawViewHousekeepingColumns are the audit columns present on raw views.
var RawViewHousekeepingColumns = []string{"RAW_ROW_CRE_DT"}

const RawViewPrefix = "VW_RAW_"

// RawView names the upstream raw view a loaded table is compared against.
func RawView(database string, schema string, table string) Relation {
	return Relation{Database: database, Schema: schema, Table: RawViewPrefix + table}
}

var ErrUnsupported = errors.New("query not supported by dialect")

type Query struct {
	SQL  string
	Args []interface{}
}

// AuditFilter selects control catalog rows for one ingestion job.
type AuditFilter struct {
	LoadGroup string
	LoadType  string
	DBType    string
}

type Dialect interface {
	Name() string

	ListDatabases(prefix string, excludePatterns []string) (Query, error)
	ListSchemas(database string) (Query, error)
	ListDistinct(from Relation, column string) (Query, error)

	// AuditTables lists the first recorded (table, row count) per table in the
	// control catalog matching the filter.
	AuditTables(controlDB string, f AuditFilter) (Query, error)
	// IngestionTables lists tables of database.schema that are registered in
	// the control catalog for the load group and load type.
	IngestionTables(database string, schema string, controlDB string, loadGroup string, loadType string) (Query, error)
	ClassifiedColumns(managerDB string, database string, schema string, owner string) (Query, error)

	// Minus counts the distinct rows of from that do not appear in to.
	Minus(from Projection, to Projection) (Query, error)
	// Duplicates counts groups of identical rows occurring more than once.
	Duplicates(p Projection) (Query, error)
	ColumnExists(database string, schema string, table string, column string) (Query, error)
	TableExists(database string, schema string, table string) (Query, error)

	CountBaseTables(database string, schema string) (Query, error)
	CountMetadataTables(managerDB string, database string, schema string) (Query, error)
	CountBaseColumns(database string, schema string) (Query, error)
	CountMetadataColumns(managerDB string, database string, schema string) (Query, error)
	CountViews(database string, schema string) (Query, error)
	CountDataSetColumns(managerDB string, database string, schema string) (Query, error)
	CountClassifications(managerDB string, database string, schema string, owner string) (Query, error)
	CountTagReferences(managerDB string, database string, schema string) (Query, error)
}

// ForName returns the dialect registered under name.
func ForName(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "snowflake":
		return Snowflake(), nil
	case "postgres", "postgresql":
		return Postgres(), nil
	}
	return nil, errors.Newf("unknown dialect %q", name)
}

// sqlDialect renders the shared query templates, deferring to hooks where
// warehouse engines disagree on syntax.
type sqlDialect struct {
	name string

	placeholder func(i int) string
	// quoteColumn quotes a column whose name is a reserved word.
	quoteColumn func(s string) string
	// project renders "SELECT ... FROM relation" for a projection.
	project func(p Projection) string
	// firstPerTable renders the audit query keeping the earliest row per table.
	firstPerTable func(from string, where []string) []string

	minusKeyword     string
	derivedAlias     string
	groupAll         string
	databasesFrom    string
	databaseNameExpr string
	likeOp           string
	tagReferences    bool
}

var _ Dialect = (*sqlDialect)(nil)

type builder struct {
	d     *sqlDialect
	lines []string
	args  []interface{}
}

func (b *builder) bind(v interface{}) string {
	b.args = append(b.args, v)
	return b.d.placeholder(len(b.args))
}

func (b *builder) add(format string, a ...interface{}) {
	b.lines = append(b.lines, fmt.Sprintf(format, a...))
}

func (b *builder) query() Query {
	return Query{SQL: strings.Join(b.lines, "\n"), Args: b.args}
}

func (d *sqlDialect) newBuilder() *builder {
	return &builder{d: d}
}

func (d *sqlDialect) Name() string {
	return d.name
}

func (d *sqlDialect) ListDatabases(prefix string, excludePatterns []string) (Query, error) {
	if err := ValidateIdent("database prefix", strings.TrimSuffix(prefix, "_")); err != nil {
		return Query{}, err
	}
	b := d.newBuilder()
	b.add("SELECT %s AS DATABASE_NAME", d.databaseNameExpr)
	b.add("FROM %s", d.databasesFrom)
	b.add("WHERE %s %s %s", d.databaseNameExpr, d.likeOp, b.bind(prefix+"%"))
	for _, p := range excludePatterns {
		b.add("AND %s NOT %s %s", d.databaseNameExpr, d.likeOp, b.bind(p))
	}
	b.add("ORDER BY 1")
	return b.query(), nil
}

func (d *sqlDialect) ListSchemas(database string) (Query, error) {
	if err := ValidateIdent("database", database); err != nil {
		return Query{}, err
	}
	b := d.newBuilder()
	b.add("SELECT SCHEMA_NAME")
	b.add("FROM %s.INFORMATION_SCHEMA.SCHEMATA", database)
	b.add("ORDER BY SCHEMA_NAME")
	return b.query(), nil
}

func (d *sqlDialect) ListDistinct(from Relation, column string) (Query, error) {
	if err := from.Validate(); err != nil {
		return Query{}, err
	}
	if err := ValidateIdent("column", column); err != nil {
		return Query{}, err
	}
	b := d.newBuilder()
	b.add("SELECT DISTINCT %s AS DISTINCT_VALUE", column)
	b.add("FROM %s", from)
	b.add("WHERE %s IS NOT NULL", column)
	b.add("ORDER BY 1")
	return b.query(), nil
}

func (d *sqlDialect) AuditTables(controlDB string, f AuditFilter) (Query, error) {
	if err := ValidateIdent("control database", controlDB); err != nil {
		return Query{}, err
	}
	b := d.newBuilder()
	where := []string{
		"LOAD_GROUP = " + b.bind(f.LoadGroup),
		"LOAD_TYPE = " + b.bind(f.LoadType),
		"DB_TYPE = " + b.bind(f.DBType),
	}
	b.lines = d.firstPerTable(controlDB+".public.audit_recon", where)
	return b.query(), nil
}

func (d *sqlDialect) IngestionTables(
	database string, schema string, controlDB string, loadGroup string, loadType string,
) (Query, error) {
	if err := ValidateIdent("database", database); err != nil {
		return Query{}, err
	}
	if err := ValidateIdent("control database", controlDB); err != nil {
		return Query{}, err
	}
	b := d.newBuilder()
	b.add("SELECT DISTINCT TABLE_SCHEMA, TABLE_NAME")
	b.add("FROM %s.INFORMATION_SCHEMA.COLUMNS", database)
	b.add("WHERE TABLE_SCHEMA = %s", b.bind(schema))
	b.add("AND TABLE_NAME IN (")
	b.add("SELECT DISTINCT UPPER(TABLE_NAME)")
	b.add("FROM %s.public.audit_recon", controlDB)
	b.add("WHERE LOAD_GROUP = %s", b.bind(loadGroup))
	b.add("AND LOAD_TYPE = %s", b.bind(loadType))
	b.add(")")
	b.add("AND COLUMN_NAME NOT LIKE 'ROW_%%'")
	b.add("AND COLUMN_NAME NOT LIKE 'RAW_%%'")
	b.add("ORDER BY TABLE_SCHEMA, TABLE_NAME")
	return b.query(), nil
}

func (d *sqlDialect) ClassifiedColumns(
	managerDB string, database string, schema string, owner string,
) (Query, error) {
	if err := ValidateIdent("database manager", managerDB); err != nil {
		return Query{}, err
	}
	b := d.newBuilder()
	b.add("SELECT DISTINCT %s AS TABLE_NAME, %s AS COLUMN_NAME", d.quoteColumn("TABLE"), d.quoteColumn("COLUMN"))
	b.add("FROM %s.MASKING.CLASSIFICATION_DETAILS", managerDB)
	b.add("WHERE %s = %s", d.quoteColumn("DATABASE"), b.bind(database))
	b.add("AND %s = %s", d.quoteColumn("SCHEMA"), b.bind(schema))
	b.add("AND CLASSIFICATION_OWNER = %s", b.bind(owner))
	b.add("ORDER BY 1, 2")
	return b.query(), nil
}

func (d *sqlDialect) Minus(from Projection, to Projection) (Query, error) {
	if err := from.Validate(); err != nil {
		return Query{}, err
	}
	if err := to.Validate(); err != nil {
		return Query{}, err
	}
	b := d.newBuilder()
	b.add("SELECT COUNT(*) AS DIFF_COUNT FROM (")
	b.add("%s", d.project(from))
	b.add("%s", d.minusKeyword)
	b.add("%s", d.project(to))
	b.add(")%s", d.derivedAlias)
	return b.query(), nil
}

func (d *sqlDialect) Duplicates(p Projection) (Query, error) {
	if err := p.Validate(); err != nil {
		return Query{}, err
	}
	p.Distinct = false
	b := d.newBuilder()
	b.add("SELECT COUNT(*) AS DUP_COUNT FROM (")
	b.add("%s", d.project(p))
	b.add("GROUP BY %s", d.groupAll)
	b.add("HAVING COUNT(*) > 1")
	b.add(")%s", d.derivedAlias)
	return b.query(), nil
}

func (d *sqlDialect) ColumnExists(
	database string, schema string, table string, column string,
) (Query, error) {
	if err := ValidateIdent("database", database); err != nil {
		return Query{}, err
	}
	b := d.newBuilder()
	b.add("SELECT COUNT(*) AS MATCHES")
	b.add("FROM %s.INFORMATION_SCHEMA.COLUMNS", database)
	b.add("WHERE TABLE_SCHEMA = %s", b.bind(schema))
	b.add("AND TABLE_NAME = %s", b.bind(table))
	b.add("AND COLUMN_NAME = %s", b.bind(column))
	return b.query(), nil
}

func (d *sqlDialect) TableExists(database string, schema string, table string) (Query, error) {
	if err := ValidateIdent("database", database); err != nil {
		return Query{}, err
	}
	b := d.newBuilder()
	b.add("SELECT COUNT(*) AS MATCHES")
	b.add("FROM %s.INFORMATION_SCHEMA.TABLES", database)
	b.add("WHERE TABLE_SCHEMA = %s", b.bind(schema))
	b.add("AND TABLE_NAME = %s", b.bind(table))
	return b.query(), nil
}

func (d *sqlDialect) CountBaseTables(database string, schema string) (Query, error) {
	if err := ValidateIdent("database", database); err != nil {
		return Query{}, err
	}
	b := d.newBuilder()
	b.add("SELECT COUNT(TABLE_NAME) AS TOTAL")
	b.add("FROM %s.INFORMATION_SCHEMA.TABLES", database)
	b.add("WHERE TABLE_CATALOG = %s", b.bind(database))
	b.add("AND TABLE_SCHEMA = %s", b.bind(schema))
	b.add("AND TABLE_TYPE = 'BASE TABLE'")
	b.add("AND TABLE_NAME NOT LIKE 'RAW_%%'")
	b.add("AND TABLE_NAME NOT LIKE 'VW_%%'")
	return b.query(), nil
}

func (d *sqlDialect) CountMetadataTables(managerDB string, database string, schema string) (Query, error) {
	if err := ValidateIdent("database manager", managerDB); err != nil {
		return Query{}, err
	}
	b := d.newBuilder()
	b.add("SELECT COUNT(*) AS TOTAL")
	b.add("FROM %s.MASKING.MD_TABLE t", managerDB)
	b.add("JOIN %s.MASKING.MD_SCHEMA s ON t.SCHEMA_ID = s.SCHEMA_ID", managerDB)
	b.add("JOIN %s.MASKING.MD_DATABASE d ON s.DATABASE_ID = d.DATABASE_ID", managerDB)
	b.add("WHERE d.DATABASE_NAME = %s", b.bind(database))
	b.add("AND s.SCHEMA_NAME = %s", b.bind(schema))
	return b.query(), nil
}

func (d *sqlDialect) CountBaseColumns(database string, schema string) (Query, error) {
	if err := ValidateIdent("database", database); err != nil {
		return Query{}, err
	}
	b := d.newBuilder()
	b.add("SELECT COUNT(c.COLUMN_NAME) AS TOTAL")
	b.add("FROM %s.INFORMATION_SCHEMA.COLUMNS c", database)
	b.add("JOIN %s.INFORMATION_SCHEMA.TABLES t ON c.TABLE_SCHEMA = t.TABLE_SCHEMA AND c.TABLE_NAME = t.TABLE_NAME", database)
	b.add("WHERE c.TABLE_SCHEMA = %s", b.bind(schema))
	b.add("AND t.TABLE_TYPE = 'BASE TABLE'")
	b.add("AND c.TABLE_NAME NOT LIKE 'RAW_%%'")
	b.add("AND c.TABLE_NAME NOT LIKE 'VW_%%'")
	return b.query(), nil
}

func (d *sqlDialect) CountMetadataColumns(managerDB string, database string, schema string) (Query, error) {
	if err := ValidateIdent("database manager", managerDB); err != nil {
		return Query{}, err
	}
	b := d.newBuilder()
	b.add("SELECT COUNT(col.COLUMN_ID) AS TOTAL")
	b.add("FROM %s.MASKING.MD_DATABASE db", managerDB)
	b.add("JOIN %s.MASKING.MD_SCHEMA sc ON db.DATABASE_ID = sc.DATABASE_ID", managerDB)
	b.add("JOIN %s.MASKING.MD_TABLE tb ON sc.SCHEMA_ID = tb.SCHEMA_ID", managerDB)
	b.add("JOIN %s.MASKING.MD_COLUMN col ON tb.TABLE_ID = col.TABLE_ID", managerDB)
	b.add("WHERE db.DATABASE_NAME = %s", b.bind(database))
	b.add("AND sc.SCHEMA_NAME = %s", b.bind(schema))
	b.add("AND db.IS_ACTIVE = TRUE")
	b.add("AND sc.IS_ACTIVE = TRUE")
	b.add("AND tb.IS_ACTIVE = TRUE")
	b.add("AND col.IS_ACTIVE = TRUE")
	return b.query(), nil
}

func (d *sqlDialect) CountViews(database string, schema string) (Query, error) {
	if err := ValidateIdent("database", database); err != nil {
		return Query{}, err
	}
	b := d.newBuilder()
	b.add("SELECT COUNT(TABLE_NAME) AS TOTAL")
	b.add("FROM %s.INFORMATION_SCHEMA.VIEWS", database)
	b.add("WHERE TABLE_SCHEMA = %s", b.bind(schema))
	return b.query(), nil
}

func (d *sqlDialect) CountDataSetColumns(managerDB string, database string, schema string) (Query, error) {
	if err := ValidateIdent("database manager", managerDB); err != nil {
		return Query{}, err
	}
	b := d.newBuilder()
	b.add("SELECT COUNT(*) AS TOTAL FROM (")
	b.add("SELECT DISTINCT ds.DATA_OUTPUT_ID, d.DATABASE_NAME, s.SCHEMA_NAME, t.TABLE_NAME, c.COLUMN_NAME")
	b.add("FROM %s.MASKING.DATA_SET ds", managerDB)
	b.add("JOIN %s.MASKING.MD_DATABASE d ON ds.DATABASE_ID = d.DATABASE_ID", managerDB)
	b.add("JOIN %s.MASKING.MD_SCHEMA s ON ds.SCHEMA_ID = s.SCHEMA_ID", managerDB)
	b.add("JOIN %s.MASKING.MD_TABLE t ON ds.TABLE_ID = t.TABLE_ID", managerDB)
	b.add("JOIN %s.MASKING.MD_COLUMN c ON ds.COLUMN_ID = c.COLUMN_ID", managerDB)
	b.add("WHERE d.DATABASE_NAME = %s", b.bind(database))
	b.add("AND s.SCHEMA_NAME = %s", b.bind(schema))
	b.add("AND ds.DATA_OUTPUT_ID = (")
	b.add("SELECT MAX(ds1.DATA_OUTPUT_ID)")
	b.add("FROM %s.MASKING.DATA_SET ds1", managerDB)
	b.add("JOIN %s.MASKING.MD_DATABASE d1 ON ds1.DATABASE_ID = d1.DATABASE_ID", managerDB)
	b.add("JOIN %s.MASKING.MD_SCHEMA s1 ON ds1.SCHEMA_ID = s1.SCHEMA_ID", managerDB)
	b.add("WHERE d1.DATABASE_NAME = %s", b.bind(database))
	b.add("AND s1.SCHEMA_NAME = %s", b.bind(schema))
	b.add(")")
	b.add(")%s", d.derivedAlias)
	return b.query(), nil
}

func (d *sqlDialect) CountClassifications(
	managerDB string, database string, schema string, owner string,
) (Query, error) {
	if err := ValidateIdent("database manager", managerDB); err != nil {
		return Query{}, err
	}
	b := d.newBuilder()
	b.add("SELECT COUNT(*) AS TOTAL")
	b.add("FROM %s.MASKING.CLASSIFICATION_DETAILS", managerDB)
	b.add("WHERE %s = %s", d.quoteColumn("DATABASE"), b.bind(database))
	b.add("AND %s = %s", d.quoteColumn("SCHEMA"), b.bind(schema))
	b.add("AND CLASSIFICATION_OWNER = %s", b.bind(owner))
	return b.query(), nil
}

func (d *sqlDialect) CountTagReferences(managerDB string, database string, schema string) (Query, error) {
	if !d.tagReferences {
		return Query{}, errors.Wrapf(ErrUnsupported, "%s has no tag references", d.name)
	}
	if err := ValidateIdent("database manager", managerDB); err != nil {
		return Query{}, err
	}
	b := d.newBuilder()
	b.add("SELECT COUNT(*) AS TOTAL")
	b.add("FROM %s.ACCOUNT_USAGE.TAG_REFERENCES", managerDB)
	b.add("WHERE OBJECT_DATABASE = %s", b.bind(database))
	b.add("AND OBJECT_SCHEMA = %s", b.bind(schema))
	return b.query(), nil
}
