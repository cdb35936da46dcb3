package bounds

import (
	"github.com/arvo-db/accessplan/expression"
	"github.com/arvo-db/accessplan/index"
	"github.com/arvo-db/accessplan/value"
)

// Tightness is a leaf's guarantee about how precisely its bounds prove the
// originating predicate.
type Tightness int

const (
	Exact Tightness = iota
	InexactCovered
	InexactFetch
)

// Builder is the external bounds-builder contract: translating a single
// predicate against a single index key element into an OrderedIntervalList
// and a tightness verdict. The planner consults this through an interface
// so that a caller may substitute a different translation strategy (e.g.
// one that understands a richer predicate language); DefaultBuilder below
// is the concrete implementation this module ships and wires by default.
type Builder interface {
	// Translate fills oil from expr's bounds against keyElt (a fresh
	// position).
	Translate(expr expression.Expr, keyElt index.KeyElement) (OrderedIntervalList, Tightness, error)
	// TranslateAndIntersect merges expr's bounds into an already-bound oil
	// via AND (same key position, compounded by a second AND predicate).
	TranslateAndIntersect(expr expression.Expr, keyElt index.KeyElement, oil OrderedIntervalList) (OrderedIntervalList, Tightness, error)
	// TranslateAndUnion merges expr's bounds into an already-bound oil via
	// OR.
	TranslateAndUnion(expr expression.Expr, keyElt index.KeyElement, oil OrderedIntervalList) (OrderedIntervalList, Tightness, error)
	// AllValuesForField returns the unconstrained OIL for keyElt, used by
	// the finisher to fill trailing unbound positions.
	AllValuesForField(keyElt index.KeyElement) OrderedIntervalList
	// AllValuesBounds fills every unbound position of b with the
	// unconstrained OIL for the corresponding key element.
	AllValuesBounds(keyPattern []index.KeyElement, b *IndexBounds)
	// AlignBounds reverses every field's intervals in place when direction
	// is descending, matching the index's own storage order.
	AlignBounds(b *IndexBounds, keyPattern []index.KeyElement, direction index.Direction)
}

// DefaultBuilder is the bounds builder this module wires by default:
// equalities and ranges translate to single intervals, IN-lists expand to
// one point interval per value.
type DefaultBuilder struct{}

func (DefaultBuilder) Translate(expr expression.Expr, keyElt index.KeyElement) (OrderedIntervalList, Tightness, error) {
	ivs, tightness, err := translateLeaf(expr)
	if err != nil {
		return OrderedIntervalList{}, 0, err
	}
	SortIntervals(ivs)
	return OrderedIntervalList{Name: keyElt.Field, Intervals: coalesce(ivs)}, tightness, nil
}

func (DefaultBuilder) TranslateAndIntersect(expr expression.Expr, keyElt index.KeyElement, oil OrderedIntervalList) (OrderedIntervalList, Tightness, error) {
	ivs, tightness, err := translateLeaf(expr)
	if err != nil {
		return OrderedIntervalList{}, 0, err
	}
	fresh := OrderedIntervalList{Name: keyElt.Field, Intervals: ivs}
	return IntersectOIL(oil, fresh), tightness, nil
}

func (DefaultBuilder) TranslateAndUnion(expr expression.Expr, keyElt index.KeyElement, oil OrderedIntervalList) (OrderedIntervalList, Tightness, error) {
	ivs, tightness, err := translateLeaf(expr)
	if err != nil {
		return OrderedIntervalList{}, 0, err
	}
	fresh := OrderedIntervalList{Name: keyElt.Field, Intervals: ivs}
	return UnionOIL(oil, fresh), tightness, nil
}

func (DefaultBuilder) AllValuesForField(keyElt index.KeyElement) OrderedIntervalList {
	return OrderedIntervalList{Name: keyElt.Field, Intervals: []Interval{AllValues()}}
}

func (d DefaultBuilder) AllValuesBounds(keyPattern []index.KeyElement, b *IndexBounds) {
	for i := range b.Fields {
		if !b.Fields[i].Bound() {
			b.Fields[i] = d.AllValuesForField(keyPattern[i])
		}
	}
}

func (DefaultBuilder) AlignBounds(b *IndexBounds, keyPattern []index.KeyElement, direction index.Direction) {
	if direction != index.Descending {
		return
	}
	for i := range b.Fields {
		ivs := b.Fields[i].Intervals
		rev := make([]Interval, len(ivs))
		for j, iv := range ivs {
			rev[len(ivs)-1-j] = Reverse(iv)
		}
		b.Fields[i].Intervals = rev
	}
}

// translateLeaf produces the raw interval list and tightness for one
// predicate leaf, independent of key position (position/name are attached
// by the caller). Unwraps a single NOT by complementing its child's
// intervals.
func translateLeaf(expr expression.Expr) ([]Interval, Tightness, error) {
	if not, ok := expr.(*expression.Not); ok {
		return translateNot(not)
	}

	switch e := expr.(type) {
	case *expression.FieldComparison:
		switch e.Op {
		case expression.EQ:
			return []Interval{Point(e.Value)}, Exact, nil
		case expression.LT:
			return []Interval{Range(value.Value{}, false, e.Value, false).withLowUnbounded()}, Exact, nil
		case expression.LTE:
			return []Interval{Range(value.Value{}, false, e.Value, true).withLowUnbounded()}, Exact, nil
		case expression.GT:
			return []Interval{Range(e.Value, false, value.Value{}, false).withHighUnbounded()}, Exact, nil
		case expression.GTE:
			return []Interval{Range(e.Value, true, value.Value{}, false).withHighUnbounded()}, Exact, nil
		}
		return nil, InexactFetch, errInvariant("unhandled comparison op")

	case *expression.In:
		ivs := make([]Interval, len(e.Values))
		for i, v := range e.Values {
			ivs[i] = Point(v)
		}
		return ivs, Exact, nil

	case *expression.Regex:
		// A regex without a known literal prefix cannot be tightened past
		// an all-values scan; the surrounding fetch re-checks it.
		return []Interval{AllValues()}, InexactFetch, nil

	case *expression.TypeMatch:
		return []Interval{AllValues()}, InexactFetch, nil

	case *expression.Exists:
		if e.Negate {
			return []Interval{{Low: value.NewMissing(), High: value.NewMissing(), Inclusion: Both}}, Exact, nil
		}
		return []Interval{AllValues()}, InexactFetch, nil

	case *expression.Mod:
		return []Interval{AllValues()}, InexactFetch, nil

	case *expression.ElemMatchValue:
		return translateElemMatchValue(e)

	default:
		return nil, 0, errInvariant("translateLeaf: unsupported expression kind")
	}
}

// withLowUnbounded/withHighUnbounded are small helpers so Range's literal
// zero-value endpoint is correctly marked unbounded rather than an actual
// MISSING value comparison.
func (i Interval) withLowUnbounded() Interval {
	i.LowUnbounded = true
	return i
}
func (i Interval) withHighUnbounded() Interval {
	i.HighUnbounded = true
	return i
}

// translateElemMatchValue intersects the children's interval translations:
// every conjunct constrains the same scalar drawn from one matched array
// element, so AND-intersection at the single key position is sound even on
// a multikey index. The verdict is always INEXACT_FETCH: an index key in
// the intersected range proves some element matched, but not that the
// field holds an array at all, so the fetch re-checks the $elemMatch.
func translateElemMatchValue(em *expression.ElemMatchValue) ([]Interval, Tightness, error) {
	acc := []Interval{AllValues()}
	for _, child := range em.Children_ {
		ivs, _, err := translateLeaf(child)
		if err != nil {
			return nil, 0, err
		}
		a := OrderedIntervalList{Intervals: acc}
		b := OrderedIntervalList{Intervals: ivs}
		acc = IntersectOIL(a, b).Intervals
	}
	return acc, InexactFetch, nil
}

// translateNot handles a NOT over a single comparison leaf by producing the
// complementary comparison directly (NOT EQ -> the two open half-ranges
// around it; NOT LT -> GTE; and so on), rather than a generic interval
// complement. This covers every comparison kind the bounds builder itself
// produces tight bounds for; any other negated leaf kind degrades to an
// all-values scan with an INEXACT_FETCH verdict, which is always safe
// (the surrounding fetch re-checks the original NOT).
func translateNot(not *expression.Not) ([]Interval, Tightness, error) {
	fc, ok := not.Child.(*expression.FieldComparison)
	if !ok {
		return []Interval{AllValues()}, InexactFetch, nil
	}

	switch fc.Op {
	case expression.EQ:
		below := Range(value.Value{}, false, fc.Value, false).withLowUnbounded()
		above := Range(fc.Value, false, value.Value{}, false).withHighUnbounded()
		return []Interval{below, above}, Exact, nil
	case expression.LT:
		return []Interval{Range(fc.Value, true, value.Value{}, false).withHighUnbounded()}, Exact, nil
	case expression.LTE:
		return []Interval{Range(fc.Value, false, value.Value{}, false).withHighUnbounded()}, Exact, nil
	case expression.GT:
		return []Interval{Range(value.Value{}, false, fc.Value, true).withLowUnbounded()}, Exact, nil
	case expression.GTE:
		return []Interval{Range(value.Value{}, false, fc.Value, false).withLowUnbounded()}, Exact, nil
	default:
		return []Interval{AllValues()}, InexactFetch, nil
	}
}

type invariantErr string

func (e invariantErr) Error() string { return string(e) }

func errInvariant(msg string) error { return invariantErr(msg) }
