package dbtable

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNameCompare(t *testing.T) {
	for _, tc := range []struct {
		a, b     Name
		expected int
	}{
		{a: Name{Database: "d", Schema: "b", Table: "b"}, b: Name{Database: "d", Schema: "b", Table: "b"}, expected: 0},
		{a: Name{Database: "d", Schema: "b", Table: "b"}, b: Name{Database: "d", Schema: "a", Table: "b"}, expected: 1},
		{a: Name{Database: "d", Schema: "c", Table: "b"}, b: Name{Database: "d", Schema: "e", Table: "b"}, expected: -1},
		{a: Name{Database: "d", Schema: "b", Table: "b"}, b: Name{Database: "d", Schema: "b", Table: "c"}, expected: -1},
		{a: Name{Database: "d", Schema: "b", Table: "d"}, b: Name{Database: "d", Schema: "b", Table: "c"}, expected: 1},
		{a: Name{Database: "a", Schema: "z", Table: "z"}, b: Name{Database: "b", Schema: "a", Table: "a"}, expected: -1},
		{a: Name{Database: "D", Schema: "B", Table: "B"}, b: Name{Database: "d", Schema: "b", Table: "b"}, expected: 0},
	} {
		t.Run(fmt.Sprintf("%s_%s", tc.a, tc.b), func(t *testing.T) {
			require.Equal(t, tc.expected, tc.a.Compare(tc.b))
			require.Equal(t, -tc.expected, tc.b.Compare(tc.a))
		})
	}
}

func TestTableRefSort(t *testing.T) {
	refs := []TableRef{{Name: "ORDERS", RowCount: 1}, {Name: "ACCOUNTS", RowCount: 2}, {Name: "CUSTOMERS"}}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Less(refs[j]) })
	require.Equal(t, []TableRef{{Name: "ACCOUNTS", RowCount: 2}, {Name: "CUSTOMERS"}, {Name: "ORDERS", RowCount: 1}}, refs)
}

func TestNameString(t *testing.T) {
	n := Name{Database: "DEV_SALES", Schema: "PUBLIC", Table: "ORDERS"}
	require.Equal(t, "DEV_SALES.PUBLIC.ORDERS", n.String())
	require.Equal(t, "DEV_SALES.PUBLIC.ORDERS.EMAIL", Column{Name: n, Column: "EMAIL"}.String())
	require.Equal(t, "DEV_SALES.PUBLIC.ORDERS", n.Relation().String())
}
