package dbconn

import (
	"fmt"
	"math"
	"strings"

	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/errors"
)

// Row is one buffered result row. Column lookups are case-insensitive since
// warehouses disagree on the case of unquoted aliases.
type Row struct {
	Columns []string
	Values  []interface{}
}

// MakeRow builds a row from alternating column name and value pairs.
func MakeRow(kvs ...interface{}) Row {
	var r Row
	for i := 0; i+1 < len(kvs); i += 2 {
		r.Columns = append(r.Columns, kvs[i].(string))
		r.Values = append(r.Values, kvs[i+1])
	}
	return r
}

func (r Row) Get(col string) (interface{}, bool) {
	for i, c := range r.Columns {
		if strings.EqualFold(c, col) {
			return r.Values[i], true
		}
	}
	return nil, false
}

// String returns the column rendered as text, or "" if it is absent or NULL.
func (r Row) String(col string) string {
	v, ok := r.Get(col)
	if !ok || v == nil {
		return ""
	}
	switch v := v.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	}
	return fmt.Sprint(v)
}

// Int64 returns the column as an integer. Warehouses return counts as native
// integers, floats or decimal text depending on the driver.
func (r Row) Int64(col string) (int64, error) {
	v, ok := r.Get(col)
	if !ok {
		return 0, errors.Newf("column %s not found in result", col)
	}
	switch v := v.(type) {
	case nil:
		return 0, errors.Newf("column %s is NULL", col)
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int:
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, errors.Newf("column %s value %v is not an integer", col, v)
		}
		return int64(v), nil
	case []byte:
		return parseInt64(col, string(v))
	case string:
		return parseInt64(col, v)
	}
	return parseInt64(col, fmt.Sprint(v))
}

func parseInt64(col string, s string) (int64, error) {
	d, _, err := apd.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.Wrapf(err, "column %s value %q is not numeric", col, s)
	}
	var integral apd.Decimal
	if _, err := apd.BaseContext.WithPrecision(40).RoundToIntegralExact(&integral, d); err != nil {
		return 0, errors.Wrapf(err, "column %s value %q", col, s)
	}
	if integral.Cmp(d) != 0 {
		return 0, errors.Newf("column %s value %q is not an integer", col, s)
	}
	i, err := integral.Int64()
	if err != nil {
		return 0, errors.Wrapf(err, "column %s value %q", col, s)
	}
	return i, nil
}
