package planner

import (
	"github.com/arvo-db/accessplan/bounds"
	"github.com/arvo-db/accessplan/errors"
	"github.com/arvo-db/accessplan/expression"
	"github.com/arvo-db/accessplan/index"
	"github.com/arvo-db/accessplan/plan"
)

// makeLeafNode is the leaf constructor: build a single solution leaf
// from one tagged predicate against one index-key position. GEO_NEAR is
// checked before any other leaf kind: the enumerator sorts near
// predicates first, so a compound index where only the geo field is near
// still yields the right leaf kind.
func makeLeafNode(query *CanonicalQuery, p *Params, idx index.Entry, pos int, expr expression.Expr) (plan.Operator, bounds.Tightness, error) {
	if near, ok := expr.(*expression.GeoNear); ok {
		if idx.Type != index.TwoDSphere {
			return nil, 0, errors.NewInvariantViolation("GEO_NEAR leaf requires a 2dsphere index", nil)
		}
		base := bounds.NewIndexBounds(idx.Len())
		leaf := plan.NewGeoNear2DSphere(idx.ID, near.Field, near.CenterLat, near.CenterLng, near.MaxDistance,
			base, query.WantGeoNearPoint, query.WantGeoNearDistance, nil)
		return leaf, bounds.Exact, nil
	}

	if idx.Len() > 0 && idx.KeyPattern[0].Kind == index.TwoD {
		g, ok := expr.(*expression.Geo)
		if !ok {
			return nil, 0, errors.NewInvariantViolation("leaf over a 2d index must be a GEO predicate", nil)
		}
		return plan.NewGeo2D(idx.ID, g.Field, g.Region, nil), bounds.Exact, nil
	}

	if text, ok := expr.(*expression.Text); ok {
		return plan.NewText(idx.ID, text.Query, text.Language, nil, nil), bounds.Exact, nil
	}

	keyElt, err := keyElementAt(idx, pos)
	if err != nil {
		return nil, 0, err
	}

	b := bounds.NewIndexBounds(idx.Len())
	oil, tightness, err := p.builder().Translate(expr, keyElt)
	if err != nil {
		return nil, 0, errors.NewInvariantViolation("bounds builder failed translating leaf", err)
	}
	b.Fields[pos] = oil

	leaf := plan.NewIndexScan(idx.ID, idx.KeyPattern, idx.Multikey, b, index.Ascending, nil)
	return leaf, tightness, nil
}

// keyElementAt returns the pos-th element of idx's key pattern, guarding
// against an out-of-range enumerator tag.
func keyElementAt(idx index.Entry, pos int) (index.KeyElement, error) {
	if pos < 0 || pos >= idx.Len() {
		return index.KeyElement{}, errors.NewInvariantViolation("index tag position out of range", nil)
	}
	return idx.KeyPattern[pos], nil
}
