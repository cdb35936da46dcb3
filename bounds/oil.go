package bounds

// OrderedIntervalList (OIL) holds the per-key-position bound: an ordered
// list of non-overlapping intervals plus the field path they constrain.
// An empty Name means this position is unassigned (not yet bound by any
// tagged predicate).
type OrderedIntervalList struct {
	Name      string
	Intervals []Interval
}

func (o *OrderedIntervalList) Bound() bool { return o.Name != "" }

// IndexBounds is the per-key-position bound list for a whole IndexScan, or
// an explicit simple range over the index's raw key encoding.
type IndexBounds struct {
	Fields []OrderedIntervalList

	IsSimpleRange   bool
	StartKey        []byte
	EndKey          []byte
	EndKeyInclusive bool
}

// NewIndexBounds allocates an IndexBounds with n unassigned field
// positions, as the leaf constructor does when opening a fresh IndexScan leaf.
func NewIndexBounds(n int) IndexBounds {
	return IndexBounds{Fields: make([]OrderedIntervalList, n)}
}

// IntersectOIL intersects every interval of b into a, the per-position
// merge used when a second predicate constrains an already-bound key
// position under an AND: the cross product of a's and b's intervals is
// intersected pairwise and non-empty results are kept.
func IntersectOIL(a, b OrderedIntervalList) OrderedIntervalList {
	var out []Interval
	for _, ai := range a.Intervals {
		for _, bi := range b.Intervals {
			if r, ok := Intersect(ai, bi); ok {
				out = append(out, r)
			}
		}
	}
	SortIntervals(out)
	return OrderedIntervalList{Name: a.Name, Intervals: coalesce(out)}
}

// UnionOIL unions every interval of a and b, coalescing overlapping
// results, used when a second predicate extends the same key position
// under an OR (sound even for multikey indexes a matching array element still causes the document to be returned).
func UnionOIL(a, b OrderedIntervalList) OrderedIntervalList {
	all := append(append([]Interval(nil), a.Intervals...), b.Intervals...)
	SortIntervals(all)
	return OrderedIntervalList{Name: a.Name, Intervals: coalesce(all)}
}

func coalesce(sorted []Interval) []Interval {
	if len(sorted) == 0 {
		return sorted
	}
	out := []Interval{sorted[0]}
	for _, cur := range sorted[1:] {
		last := &out[len(out)-1]
		if Overlaps(*last, cur) {
			*last = Union(*last, cur)
		} else {
			out = append(out, cur)
		}
	}
	return out
}
