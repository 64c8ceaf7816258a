package dbconn

import (
	"context"
	"reflect"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/zdqhub/zdq/dialect"
)

// FakeResult is the canned response for queries whose text contains Match.
// Args, if set, must also equal the query's bound arguments.
type FakeResult struct {
	Match string
	Args  []interface{}
	Rows  []Row
	Err   error
}

// FakeConn answers queries from a script of canned results. The first
// matching result wins. Unmatched queries fail.
type FakeConn struct {
	id      ID
	dialect dialect.Dialect

	mu struct {
		sync.Mutex
		results []FakeResult
		queries []dialect.Query
	}
}

var _ Conn = (*FakeConn)(nil)

func MakeFakeConn(id ID, results ...FakeResult) *FakeConn {
	f := &FakeConn{id: id, dialect: dialect.Snowflake()}
	f.mu.results = results
	return f
}

func (f *FakeConn) ID() ID {
	return f.id
}

func (f *FakeConn) Dialect() dialect.Dialect {
	return f.dialect
}

// Expect appends canned results to the script.
func (f *FakeConn) Expect(results ...FakeResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mu.results = append(f.mu.results, results...)
}

func (f *FakeConn) Query(ctx context.Context, q dialect.Query) ([]Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mu.queries = append(f.mu.queries, q)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, r := range f.mu.results {
		if !strings.Contains(q.SQL, r.Match) {
			continue
		}
		if r.Args != nil && !argsEqual(r.Args, q.Args) {
			continue
		}
		return r.Rows, r.Err
	}
	return nil, errors.Newf("fake conn %s: no result scripted for query:\n%s\nargs: %v", f.id, q.SQL, q.Args)
}

// Queries returns every query issued so far.
func (f *FakeConn) Queries() []dialect.Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]dialect.Query(nil), f.mu.queries...)
}

func (f *FakeConn) Close(ctx context.Context) error {
	return nil
}

func argsEqual(a, b []interface{}) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !reflect.DeepEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}
