// Package bounds implements the interval/OrderedIntervalList/IndexBounds
// data model and the bounds-builder contract the planner's leaf constructor
// , merger, and finisher depend on.
//
// Intervals carry a bit-flag Inclusion pair for their endpoints;
// intersection keeps the tighter endpoint on each side and drops results
// that collapse to an empty span, union keeps the wider envelope.
package bounds

import (
	"sort"

	"github.com/arvo-db/accessplan/value"
)

// Inclusion is a bit-flag pair recording which of an Interval's two
// endpoints are closed (included).
type Inclusion uint8

const (
	Neither Inclusion = 0
	Low     Inclusion = 1 << 0
	High    Inclusion = 1 << 1
	Both    Inclusion = Low | High
)

func (i Inclusion) LowIncluded() bool  { return i&Low != 0 }
func (i Inclusion) HighIncluded() bool { return i&High != 0 }

// Interval is a single (possibly degenerate, possibly unbounded) bound on
// one index key field.
type Interval struct {
	Low        value.Value
	High       value.Value
	Inclusion  Inclusion
	LowUnbounded  bool
	HighUnbounded bool
}

// Point returns a degenerate interval matching exactly v (an equality
// bound).
func Point(v value.Value) Interval {
	return Interval{Low: v, High: v, Inclusion: Both}
}

// AllValues returns the unbounded interval matching every value, used to
// fill unconstrained key positions during finishing.
func AllValues() Interval {
	return Interval{LowUnbounded: true, HighUnbounded: true, Inclusion: Both}
}

// Range builds a half/fully bounded interval from explicit endpoints.
func Range(low value.Value, lowIncl bool, high value.Value, highIncl bool) Interval {
	var inc Inclusion
	if lowIncl {
		inc |= Low
	}
	if highIncl {
		inc |= High
	}
	return Interval{Low: low, High: high, Inclusion: inc}
}

// compareLow returns -1/0/1 comparing two low endpoints, unbounded sorting
// first.
func compareLow(a, b Interval) int {
	if a.LowUnbounded && b.LowUnbounded {
		return 0
	}
	if a.LowUnbounded {
		return -1
	}
	if b.LowUnbounded {
		return 1
	}
	if c := value.Collate(a.Low, b.Low); c != 0 {
		return c
	}
	// Closed sorts before open at the same point (wider interval first).
	if a.Inclusion.LowIncluded() == b.Inclusion.LowIncluded() {
		return 0
	}
	if a.Inclusion.LowIncluded() {
		return -1
	}
	return 1
}

func compareHigh(a, b Interval) int {
	if a.HighUnbounded && b.HighUnbounded {
		return 0
	}
	if a.HighUnbounded {
		return 1
	}
	if b.HighUnbounded {
		return -1
	}
	if c := value.Collate(a.High, b.High); c != 0 {
		return c
	}
	if a.Inclusion.HighIncluded() == b.Inclusion.HighIncluded() {
		return 0
	}
	if a.Inclusion.HighIncluded() {
		return 1
	}
	return -1
}

// Intersect returns the intersection of a and b, and false if they are
// disjoint (an empty result).
func Intersect(a, b Interval) (Interval, bool) {
	r := Interval{}

	if compareLow(a, b) >= 0 {
		r.Low, r.LowUnbounded = a.Low, a.LowUnbounded
		if a.Inclusion.LowIncluded() {
			r.Inclusion |= Low
		}
	} else {
		r.Low, r.LowUnbounded = b.Low, b.LowUnbounded
		if b.Inclusion.LowIncluded() {
			r.Inclusion |= Low
		}
	}

	if compareHigh(a, b) <= 0 {
		r.High, r.HighUnbounded = a.High, a.HighUnbounded
		if a.Inclusion.HighIncluded() {
			r.Inclusion |= High
		}
	} else {
		r.High, r.HighUnbounded = b.High, b.HighUnbounded
		if b.Inclusion.HighIncluded() {
			r.Inclusion |= High
		}
	}

	if isEmpty(r) {
		return Interval{}, false
	}
	return r, true
}

func isEmpty(r Interval) bool {
	if r.LowUnbounded || r.HighUnbounded {
		return false
	}
	c := value.Collate(r.Low, r.High)
	if c > 0 {
		return true
	}
	if c == 0 && r.Inclusion != Both {
		return true
	}
	return false
}

// Overlaps reports whether a and b share at least one value, including
// touching closed endpoints — used to decide whether two intervals should
// be merged into one during a union.
func Overlaps(a, b Interval) bool {
	if compareLow(a, b) > 0 {
		a, b = b, a
	}
	if a.HighUnbounded {
		return true
	}
	if b.LowUnbounded {
		return true
	}
	c := value.Collate(a.High, b.Low)
	if c > 0 {
		return true
	}
	if c == 0 && (a.Inclusion.HighIncluded() || b.Inclusion.LowIncluded()) {
		return true
	}
	return false
}

// Union merges two overlapping intervals into their envelope. Callers must
// have already checked Overlaps.
func Union(a, b Interval) Interval {
	r := Interval{}
	if compareLow(a, b) <= 0 {
		r.Low, r.LowUnbounded = a.Low, a.LowUnbounded
		if a.Inclusion.LowIncluded() {
			r.Inclusion |= Low
		}
	} else {
		r.Low, r.LowUnbounded = b.Low, b.LowUnbounded
		if b.Inclusion.LowIncluded() {
			r.Inclusion |= Low
		}
	}
	if compareHigh(a, b) >= 0 {
		r.High, r.HighUnbounded = a.High, a.HighUnbounded
		if a.Inclusion.HighIncluded() {
			r.Inclusion |= High
		}
	} else {
		r.High, r.HighUnbounded = b.High, b.HighUnbounded
		if b.Inclusion.HighIncluded() {
			r.Inclusion |= High
		}
	}
	return r
}

// SortIntervals sorts a slice of intervals by low endpoint, unbounded low
// first — used after building a union or an IN-list to keep an OIL
// canonically ordered.
func SortIntervals(is []Interval) {
	sort.SliceStable(is, func(i, j int) bool {
		return compareLow(is[i], is[j]) < 0
	})
}

// Reverse returns the interval with its endpoints swapped, used to align
// bounds to a descending scan direction.
func Reverse(i Interval) Interval {
	inc := Neither
	if i.Inclusion.HighIncluded() {
		inc |= Low
	}
	if i.Inclusion.LowIncluded() {
		inc |= High
	}
	return Interval{
		Low: i.High, High: i.Low,
		LowUnbounded: i.HighUnbounded, HighUnbounded: i.LowUnbounded,
		Inclusion: inc,
	}
}
