package validate

import (
	"github.com/zdqhub/zdq/config"
	"github.com/zdqhub/zdq/dialect"
	"github.com/zdqhub/zdq/reconcile"
)

// Masking parity check names, in run order.
const (
	CheckMDTables  = "MD Tables"
	CheckMDColumns = "MD Columns"
	CheckDataSet   = "Data Set"
	CheckViews     = "Views"
	CheckTags      = "Tags"
)

// MaskingChecks returns the parity checks for one schema:
//
//   - MD Tables: base tables against MASKING.MD_TABLE entries.
//   - MD Columns: base table columns against active MASKING.MD_COLUMN entries.
//   - Data Set: active MD_COLUMN entries against the latest DATA_SET output.
//   - Views: base tables against views in the masked database.
//   - Tags: classification details against tag references on the masked
//     database.
func MaskingChecks(cfg config.Config, p ClassificationParams) []reconcile.ParityCheck {
	manager := cfg.ClassificationDatabase(p.Env)
	db, schema := p.Database, p.Schema
	masked := cfg.MaskedDatabase(db)
	return []reconcile.ParityCheck{
		{
			Name: CheckMDTables,
			Source: func(d dialect.Dialect) (dialect.Query, error) {
				return d.CountBaseTables(db, schema)
			},
			Target: func(d dialect.Dialect) (dialect.Query, error) {
				return d.CountMetadataTables(manager, db, schema)
			},
		},
		{
			Name: CheckMDColumns,
			Source: func(d dialect.Dialect) (dialect.Query, error) {
				return d.CountBaseColumns(db, schema)
			},
			Target: func(d dialect.Dialect) (dialect.Query, error) {
				return d.CountMetadataColumns(manager, db, schema)
			},
		},
		{
			Name: CheckDataSet,
			Source: func(d dialect.Dialect) (dialect.Query, error) {
				return d.CountMetadataColumns(manager, db, schema)
			},
			Target: func(d dialect.Dialect) (dialect.Query, error) {
				return d.CountDataSetColumns(manager, db, schema)
			},
		},
		{
			Name: CheckViews,
			Source: func(d dialect.Dialect) (dialect.Query, error) {
				return d.CountBaseTables(db, schema)
			},
			Target: func(d dialect.Dialect) (dialect.Query, error) {
				return d.CountViews(masked, schema)
			},
		},
		{
			Name: CheckTags,
			Source: func(d dialect.Dialect) (dialect.Query, error) {
				return d.CountClassifications(manager, config.ProductionDatabase(db), schema, p.Owner)
			},
			Target: func(d dialect.Dialect) (dialect.Query, error) {
				return d.CountTagReferences(manager, masked, schema)
			},
		},
	}
}
