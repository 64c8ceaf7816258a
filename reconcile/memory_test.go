package reconcile

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/zdqhub/zdq/dbtable"
	"github.com/zdqhub/zdq/dialect"
)

type memRelation struct {
	columns []string
	rows    [][]interface{}
}

// memQuerier evaluates measurements over in-memory relations with the same
// set semantics the warehouse queries have.
type memQuerier struct {
	relations map[string]memRelation
	fail      map[string]error
	calls     int
}

var _ Querier = (*memQuerier)(nil)

func (m *memQuerier) lookup(rel dialect.Relation) (memRelation, bool, error) {
	m.calls++
	if err := m.fail[rel.String()]; err != nil {
		return memRelation{}, false, err
	}
	r, ok := m.relations[rel.String()]
	return r, ok, nil
}

func (m *memQuerier) project(p dialect.Projection) ([]string, error) {
	rel, ok, err := m.lookup(p.Relation)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Newf("relation %s does not exist", p.Relation)
	}
	excluded := map[string]bool{}
	for _, c := range p.Exclude {
		excluded[strings.ToUpper(c)] = true
	}
	keys := make([]string, 0, len(rel.rows))
	for _, row := range rel.rows {
		var parts []string
		for i, c := range rel.columns {
			if excluded[strings.ToUpper(c)] {
				continue
			}
			parts = append(parts, fmt.Sprintf("%v", row[i]))
		}
		keys = append(keys, strings.Join(parts, "\x00"))
	}
	return keys, nil
}

func (m *memQuerier) Minus(ctx context.Context, from, to dialect.Projection) (int64, error) {
	fromKeys, err := m.project(from)
	if err != nil {
		return 0, err
	}
	toKeys, err := m.project(to)
	if err != nil {
		return 0, err
	}
	present := map[string]bool{}
	for _, k := range toKeys {
		present[k] = true
	}
	diff := map[string]bool{}
	for _, k := range fromKeys {
		if !present[k] {
			diff[k] = true
		}
	}
	return int64(len(diff)), nil
}

func (m *memQuerier) Duplicates(ctx context.Context, p dialect.Projection) (int64, error) {
	keys, err := m.project(p)
	if err != nil {
		return 0, err
	}
	groups := map[string]int{}
	for _, k := range keys {
		groups[k]++
	}
	var dups int64
	for _, n := range groups {
		if n > 1 {
			dups++
		}
	}
	return dups, nil
}

func (m *memQuerier) ColumnMatches(ctx context.Context, c dbtable.Column) (int64, error) {
	rel, ok, err := m.lookup(c.Relation())
	if err != nil || !ok {
		return 0, err
	}
	for _, col := range rel.columns {
		if strings.EqualFold(col, c.Column) {
			return 1, nil
		}
	}
	return 0, nil
}

func (m *memQuerier) TableMatches(ctx context.Context, n dbtable.Name) (int64, error) {
	_, ok, err := m.lookup(n.Relation())
	if err != nil || !ok {
		return 0, err
	}
	return 1, nil
}

func (m *memQuerier) Count(ctx context.Context, build QueryBuilder) (int64, error) {
	return 0, errors.New("memQuerier does not run count queries")
}

type recordingReporter struct {
	objs []ReportableObject
}

func (r *recordingReporter) Report(obj ReportableObject) {
	r.objs = append(r.objs, obj)
}

func (r *recordingReporter) Close() {}

func (r *recordingReporter) warnings() []Warning {
	var ret []Warning
	for _, o := range r.objs {
		if w, ok := o.(Warning); ok {
			ret = append(ret, w)
		}
	}
	return ret
}
