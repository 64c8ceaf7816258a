package dialect

import (
	"strings"
)

// Snowflake renders queries using Snowflake's EXCLUDE, MINUS, QUALIFY and
// GROUP BY ALL extensions.
func Snowflake() Dialect {
	return &sqlDialect{
		name:        "snowflake",
		placeholder: func(int) string { return "?" },
		quoteColumn: func(s string) string { return `"` + strings.ToUpper(s) + `"` },
		project: func(p Projection) string {
			var sb strings.Builder
			sb.WriteString("SELECT ")
			if p.Distinct {
				sb.WriteString("DISTINCT ")
			}
			sb.WriteString("*")
			if len(p.Exclude) > 0 {
				sb.WriteString(" EXCLUDE (")
				sb.WriteString(strings.Join(p.Exclude, ", "))
				sb.WriteString(")")
			}
			sb.WriteString(" FROM ")
			sb.WriteString(p.Relation.String())
			return sb.String()
		},
		firstPerTable: func(from string, where []string) []string {
			lines := []string{
				"SELECT UPPER(TABLE_NAME) AS TABLE_NAME, ROW_COUNT",
				"FROM " + from,
				"WHERE " + where[0],
			}
			for _, w := range where[1:] {
				lines = append(lines, "AND "+w)
			}
			return append(
				lines,
				"QUALIFY ROW_NUMBER() OVER (PARTITION BY TABLE_NAME ORDER BY ROW_CRE_DT) = 1",
				"ORDER BY 1",
			)
		},
		minusKeyword:     "MINUS",
		derivedAlias:     "",
		groupAll:         "ALL",
		databasesFrom:    "INFORMATION_SCHEMA.DATABASES",
		databaseNameExpr: "DATABASE_NAME",
		likeOp:           "LIKE",
		tagReferences:    true,
	}
}
