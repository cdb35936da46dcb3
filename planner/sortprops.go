package planner

import (
	"github.com/arvo-db/accessplan/bounds"
	"github.com/arvo-db/accessplan/index"
	"github.com/arvo-db/accessplan/plan"
	"github.com/arvo-db/accessplan/value"
)

// isSortedByDiskLoc is the predicate buildIndexedAnd uses to decide
// between AndSorted and AndHash, following a deliberately conservative
// rule: a non-multikey IndexScan whose every key position is a single
// point (it visits one index key, so its entries come out in record
// order) or an AndSorted built entirely from such scans qualifies; range
// and multikey IndexScans, which emit in key order, do not, nor does any
// other leaf kind (AndHash, Or, MergeSort, CollectionScan, Geo2D,
// GeoNear2DSphere, Text, Fetch).
func isSortedByDiskLoc(op plan.Operator) bool {
	switch n := op.(type) {
	case *plan.IndexScan:
		if n.Multikey() {
			return false
		}
		for _, oil := range n.Bounds().Fields {
			if !isSinglePoint(oil) {
				return false
			}
		}
		return true
	case *plan.AndSorted:
		for _, c := range n.Children() {
			if !isSortedByDiskLoc(c) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func allSortedByDiskLoc(leaves []plan.Operator) bool {
	for _, l := range leaves {
		if !isSortedByDiskLoc(l) {
			return false
		}
	}
	return true
}

// isSinglePoint reports whether oil constrains its field to exactly one
// value, the condition under which a leading key position doesn't
// constrain the scan's relative output order.
func isSinglePoint(oil bounds.OrderedIntervalList) bool {
	if len(oil.Intervals) != 1 {
		return false
	}
	iv := oil.Intervals[0]
	return !iv.LowUnbounded && !iv.HighUnbounded && iv.Inclusion == bounds.Both && value.Collate(iv.Low, iv.High) == 0
}

// leafSortSet returns every sort order a leaf can satisfy: its key
// pattern (adjusted for scan direction) with zero or more of its leading
// equality-bound (single-point) positions dropped, since a fixed-value
// prefix doesn't constrain relative order. Only the forward output order
// of each candidate drop-prefix is considered, never an additional
// reverse-direction variant (see DESIGN.md).
func leafSortSet(op plan.Operator) [][]index.KeyElement {
	scan, ok := op.(*plan.IndexScan)
	if !ok {
		return nil
	}
	pattern := scan.KeyPattern()
	b := scan.Bounds()

	maxDrop := 0
	for maxDrop < len(pattern) && isSinglePoint(b.Fields[maxDrop]) {
		maxDrop++
	}

	var out [][]index.KeyElement
	for drop := 0; drop <= maxDrop; drop++ {
		suffix := pattern[drop:]
		if len(suffix) == 0 {
			continue
		}
		ks := make([]index.KeyElement, len(suffix))
		for i, k := range suffix {
			dir := k.Dir
			if scan.Direction() == index.Descending {
				dir = -dir
			}
			ks[i] = index.KeyElement{Field: k.Field, Kind: k.Kind, Dir: dir}
		}
		out = append(out, ks)
	}
	return out
}

// intersectSortSets keeps only the sort orders common to both sets,
// mirroring buildIndexedOr's set_intersection over each child's
// getSort() result.
func intersectSortSets(a, b [][]index.KeyElement) [][]index.KeyElement {
	var out [][]index.KeyElement
	for _, sa := range a {
		if sortSetContains(b, sa) {
			out = append(out, sa)
		}
	}
	return out
}

// shouldMergeSort reports whether every leaf shares a sort order matching
// the requested sort, per buildIndexedOr .
func shouldMergeSort(leaves []plan.Operator, sort []index.KeyElement) bool {
	if len(sort) == 0 || len(leaves) == 0 {
		return false
	}
	shared := leafSortSet(leaves[0])
	for _, l := range leaves[1:] {
		if len(shared) == 0 {
			return false
		}
		shared = intersectSortSets(shared, leafSortSet(l))
	}
	return sortSetContains(shared, sort)
}

// rotateSortProvider swaps the first leaf whose sort set contains sort to
// the last position, since AndHash emits in the order of its final child
// .
func rotateSortProvider(leaves []plan.Operator, sort []index.KeyElement) {
	if len(sort) == 0 {
		return
	}
	last := len(leaves) - 1
	for i, l := range leaves {
		if sortSetContains(leafSortSet(l), sort) {
			leaves[i], leaves[last] = leaves[last], leaves[i]
			return
		}
	}
}

// stablePartitionTextFirst moves Text leaves to the front of leaves,
// preserving relative order otherwise, so text scores are computed before
// any scoring consumer reads them .
func stablePartitionTextFirst(leaves []plan.Operator) []plan.Operator {
	out := make([]plan.Operator, 0, len(leaves))
	for _, l := range leaves {
		if _, ok := l.(*plan.Text); ok {
			out = append(out, l)
		}
	}
	for _, l := range leaves {
		if _, ok := l.(*plan.Text); !ok {
			out = append(out, l)
		}
	}
	return out
}
