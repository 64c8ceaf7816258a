package dbtable

import (
	"fmt"
	"strings"

	"github.com/zdqhub/zdq/dialect"
)

// Name is a fully qualified table name.
type Name struct {
	Database string
	Schema   string
	Table    string
}

func (n Name) Relation() dialect.Relation {
	return dialect.Relation{Database: n.Database, Schema: n.Schema, Table: n.Table}
}

func (n Name) String() string {
	return n.Database + "." + n.Schema + "." + n.Table
}

func (n Name) Compare(o Name) int {
	if c := strings.Compare(strings.ToLower(n.Database), strings.ToLower(o.Database)); c != 0 {
		return c
	}
	if c := strings.Compare(strings.ToLower(n.Schema), strings.ToLower(o.Schema)); c != 0 {
		return c
	}
	return strings.Compare(strings.ToLower(n.Table), strings.ToLower(o.Table))
}

func (n Name) Less(o Name) bool {
	return n.Compare(o) < 0
}

// Column is a column within a table.
type Column struct {
	Name
	Column string
}

func (c Column) String() string {
	return fmt.Sprintf("%s.%s", c.Name, c.Column)
}

// TableRef is a table name with the row count the control catalog recorded
// for it. The count is a snapshot taken at load time.
type TableRef struct {
	Name     string
	RowCount int64
}

// MissingTableRef pads the shorter side of a positional pairing.
var MissingTableRef = TableRef{Name: "N/A", RowCount: 0}

func (t TableRef) Compare(o TableRef) int {
	return strings.Compare(t.Name, o.Name)
}

func (t TableRef) Less(o TableRef) bool {
	return t.Compare(o) < 0
}
