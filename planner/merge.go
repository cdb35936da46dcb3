package planner

import (
	"github.com/arvo-db/accessplan/bounds"
	"github.com/arvo-db/accessplan/errors"
	"github.com/arvo-db/accessplan/expression"
	"github.com/arvo-db/accessplan/index"
	"github.com/arvo-db/accessplan/plan"
)

// mergeKind mirrors MatchExpression::MatchType's AND/OR distinction at the
// one call site the merger cares about.
type mergeKind int

const (
	mergeAnd mergeKind = iota
	mergeOr
)

// shouldMergeWithLeaf is the leaf merger's admission test: can expr
// extend node's bounds at key position pos, given idx and the merge kind?
func shouldMergeWithLeaf(idx index.Entry, pos int, node plan.Operator, kind mergeKind) bool {
	if node == nil {
		return false
	}
	switch node.(type) {
	case *plan.Geo2D, *plan.Text, *plan.GeoNear2DSphere:
		return true
	}

	scan, ok := node.(*plan.IndexScan)
	if !ok {
		return false
	}
	b := scan.Bounds()
	if pos >= len(b.Fields) || !b.Fields[pos].Bound() {
		// Unbound position: this compounds a new field, always fine.
		return true
	}
	if kind == mergeAnd {
		// Bounds will be intersected; only safe on a non-multikey index.
		return !idx.Multikey
	}
	// Bounds will be unioned; always sound.
	return true
}

// mergeWithLeafNode is the leaf merger's apply step: fold expr's
// bounds into node at position pos and report tightness.
func mergeWithLeafNode(p *Params, idx index.Entry, pos int, expr expression.Expr, node plan.Operator, kind mergeKind) (bounds.Tightness, error) {
	switch n := node.(type) {
	case *plan.Geo2D:
		return bounds.InexactFetch, nil
	case *plan.Text:
		return bounds.InexactCovered, nil
	case *plan.GeoNear2DSphere:
		// The merged predicate narrows baseBounds, but a near scan's
		// output always passes through a fetch re-check, so the verdict
		// is fixed regardless of how tight the translation was.
		if _, err := mergeOIL(p, idx, pos, expr, n.BaseBounds(), kind, n.SetBaseBounds); err != nil {
			return 0, err
		}
		return bounds.InexactFetch, nil
	case *plan.IndexScan:
		return mergeOIL(p, idx, pos, expr, n.Bounds(), kind, n.SetBounds)
	default:
		return 0, errors.NewInvariantViolation("mergeWithLeafNode: unsupported leaf kind", nil)
	}
}

// mergeOIL fills b.Fields[pos] (translate, translate-and-intersect, or
// translate-and-union depending on whether the position is already bound)
// and writes the updated bounds back via set.
func mergeOIL(p *Params, idx index.Entry, pos int, expr expression.Expr, b bounds.IndexBounds, kind mergeKind, set func(bounds.IndexBounds)) (bounds.Tightness, error) {
	keyElt, err := keyElementAt(idx, pos)
	if err != nil {
		return 0, err
	}

	var oil bounds.OrderedIntervalList
	var tightness bounds.Tightness

	if !b.Fields[pos].Bound() {
		oil, tightness, err = p.builder().Translate(expr, keyElt)
	} else if kind == mergeAnd {
		oil, tightness, err = p.builder().TranslateAndIntersect(expr, keyElt, b.Fields[pos])
	} else {
		oil, tightness, err = p.builder().TranslateAndUnion(expr, keyElt, b.Fields[pos])
	}
	if err != nil {
		return 0, errors.NewInvariantViolation("bounds builder failed merging leaf", err)
	}

	b.Fields[pos] = oil
	set(b)
	return tightness, nil
}
