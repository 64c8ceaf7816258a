package dialect

import (
	"strconv"
	"strings"
)

// Postgres renders queries for PostgreSQL-compatible warehouses. Column
// exclusion is emulated by subtracting keys from the row's jsonb image, so
// rows compare by column name rather than position.
//
// Three-part names only resolve against the connected database.
func Postgres() Dialect {
	return &sqlDialect{
		name:        "postgres",
		placeholder: func(i int) string { return "$" + strconv.Itoa(i) },
		quoteColumn: func(s string) string { return `"` + strings.ToLower(s) + `"` },
		project: func(p Projection) string {
			var sb strings.Builder
			sb.WriteString("SELECT ")
			if p.Distinct {
				sb.WriteString("DISTINCT ")
			}
			sb.WriteString("to_jsonb(t)")
			if len(p.Exclude) > 0 {
				quoted := make([]string, len(p.Exclude))
				for i, col := range p.Exclude {
					quoted[i] = "'" + strings.ToLower(col) + "'"
				}
				sb.WriteString(" - ARRAY[")
				sb.WriteString(strings.Join(quoted, ", "))
				sb.WriteString("]::text[]")
			}
			sb.WriteString(" AS r FROM ")
			sb.WriteString(p.Relation.String())
			sb.WriteString(" t")
			return sb.String()
		},
		firstPerTable: func(from string, where []string) []string {
			lines := []string{
				"SELECT DISTINCT ON (UPPER(TABLE_NAME)) UPPER(TABLE_NAME) AS TABLE_NAME, ROW_COUNT",
				"FROM " + from,
				"WHERE " + where[0],
			}
			for _, w := range where[1:] {
				lines = append(lines, "AND "+w)
			}
			return append(lines, "ORDER BY UPPER(TABLE_NAME), ROW_CRE_DT")
		},
		minusKeyword:     "EXCEPT",
		derivedAlias:     " d",
		groupAll:         "1",
		databasesFrom:    "pg_database",
		databaseNameExpr: "datname",
		likeOp:           "ILIKE",
		tagReferences:    false,
	}
}
