package reconcile

import (
	"sort"

	"github.com/zdqhub/zdq/dbtable"
)

const (
	detailsSourceGreater = "Source count is greater than target count"
	detailsTargetGreater = "Target count is greater than source count"
	detailsSourceOnly    = "Table present in source only"
	detailsTargetOnly    = "Table present in target only"
)

// Pairing decides which source and target tables are compared.
type Pairing int

const (
	// PairByPosition pairs the i-th source table with the i-th target table
	// after sorting each side by name. Names need not match.
	PairByPosition Pairing = iota
	// PairByName pairs tables with equal names. Unmatched tables are failures.
	PairByName
)

func (p Pairing) String() string {
	if p == PairByName {
		return "name"
	}
	return "position"
}

func countDetails(source, target int64) string {
	switch {
	case source > target:
		return detailsSourceGreater
	case target > source:
		return detailsTargetGreater
	}
	return ""
}

func countOutcome(labels JobLabels, source, target dbtable.TableRef) CountOutcome {
	return CountOutcome{
		JobLabels: labels,
		Source:    source,
		Target:    target,
		Status:    statusOf(source.RowCount == target.RowCount),
		Details:   countDetails(source.RowCount, target.RowCount),
	}
}

// Counts compares row counts of sorted source and target table lists using
// the given pairing.
func Counts(p Pairing, labels JobLabels, source, target []dbtable.TableRef) []CountOutcome {
	if p == PairByName {
		return CountsByName(labels, source, target)
	}
	return CountsByPosition(labels, source, target)
}

// CountsByPosition pads the shorter list with MissingTableRef and compares
// position by position.
func CountsByPosition(labels JobLabels, source, target []dbtable.TableRef) []CountOutcome {
	n := len(source)
	if len(target) > n {
		n = len(target)
	}
	ret := make([]CountOutcome, 0, n)
	for i := 0; i < n; i++ {
		s, t := dbtable.MissingTableRef, dbtable.MissingTableRef
		if i < len(source) {
			s = source[i]
		}
		if i < len(target) {
			t = target[i]
		}
		ret = append(ret, countOutcome(labels, s, t))
	}
	return ret
}

// CountsByName merge-joins both sorted lists on table name. A table missing
// on one side fails with the other side's count set against MissingTableRef.
func CountsByName(labels JobLabels, source, target []dbtable.TableRef) []CountOutcome {
	source, target = sortedRefs(source), sortedRefs(target)
	ret := make([]CountOutcome, 0, len(source))
	i, j := 0, 0
	for i < len(source) {
		cmp := 1
		if j < len(target) {
			cmp = target[j].Compare(source[i])
		}
		switch {
		case cmp < 0:
			ret = append(ret, unmatched(labels, dbtable.MissingTableRef, target[j], detailsTargetOnly))
			j++
		case cmp == 0:
			ret = append(ret, countOutcome(labels, source[i], target[j]))
			i++
			j++
		default:
			ret = append(ret, unmatched(labels, source[i], dbtable.MissingTableRef, detailsSourceOnly))
			i++
		}
	}
	for ; j < len(target); j++ {
		ret = append(ret, unmatched(labels, dbtable.MissingTableRef, target[j], detailsTargetOnly))
	}
	return ret
}

func unmatched(labels JobLabels, source, target dbtable.TableRef, details string) CountOutcome {
	return CountOutcome{
		JobLabels: labels,
		Source:    source,
		Target:    target,
		Status:    Failure,
		Details:   details,
	}
}

func sortedRefs(refs []dbtable.TableRef) []dbtable.TableRef {
	ret := append([]dbtable.TableRef(nil), refs...)
	sort.SliceStable(ret, func(i, j int) bool { return ret[i].Less(ret[j]) })
	return ret
}
