package planner

import (
	"context"

	"github.com/arvo-db/accessplan/bounds"
	"github.com/arvo-db/accessplan/errors"
	"github.com/arvo-db/accessplan/expression"
	"github.com/arvo-db/accessplan/index"
	"github.com/arvo-db/accessplan/plan"
)

// mergeOutcome is what happened when a bounds-generating child was folded
// into (or opened as) the in-flight scan, driving whether the child is
// dropped, attached as an early filter, fetch-wrapped, or kept for a
// surrounding filter.
type mergeOutcome int

const (
	outcomeDrop mergeOutcome = iota
	outcomeAttach
	outcomeFetchWrap
	outcomeKeep
)

// scanCollector holds the single in-flight leaf processIndexScans extends
// across the walk.
type scanCollector struct {
	p       *Params
	query   *CanonicalQuery
	indices []index.Entry
	kind    mergeKind

	current      plan.Operator
	currentIndex int
	out          []plan.Operator
}

func newScanCollector(p *Params, query *CanonicalQuery, indices []index.Entry, kind mergeKind) *scanCollector {
	return &scanCollector{p: p, query: query, indices: indices, kind: kind, currentIndex: expression.NoIndex}
}

func (c *scanCollector) flush() error {
	if c.current == nil {
		return nil
	}
	if err := finishLeafNode(c.p, c.indices[c.currentIndex], c.current); err != nil {
		return err
	}
	c.out = append(c.out, c.current)
	c.current, c.currentIndex = nil, expression.NoIndex
	return nil
}

func (c *scanCollector) wrapFetch(filterExpr expression.Expr) error {
	if err := finishLeafNode(c.p, c.indices[c.currentIndex], c.current); err != nil {
		return err
	}
	c.out = append(c.out, plan.NewFetch(c.current, filterExpr))
	c.current, c.currentIndex = nil, expression.NoIndex
	return nil
}

func dispatchTightness(t bounds.Tightness, idx index.Entry, kind mergeKind, mayDropExact bool) mergeOutcome {
	switch {
	case t == bounds.Exact && mayDropExact:
		return outcomeDrop
	case t == bounds.InexactCovered && (idx.Type == index.TextIndex || !idx.Multikey):
		return outcomeAttach
	case kind == mergeOr:
		return outcomeFetchWrap
	default:
		return outcomeKeep
	}
}

// admit folds child (tagged at tag.Index/tag.Pos) into the collector,
// either by merging into the in-flight scan or by finishing it and opening
// a new one, and returns the outcome the caller must act on.
func (c *scanCollector) admit(tag *expression.IndexTag, child expression.Expr) (mergeOutcome, error) {
	idx := c.indices[tag.Index]
	// Under AND on a multikey index even an exact predicate stays on the
	// residual: the index can't prove that predicates at different key
	// positions were satisfied by the same array element.
	mayDropExact := c.kind == mergeOr || !idx.Multikey

	if c.current != nil && c.currentIndex == tag.Index && shouldMergeWithLeaf(idx, tag.Pos, c.current, c.kind) {
		tightness, err := mergeWithLeafNode(c.p, idx, tag.Pos, child, c.current, c.kind)
		if err != nil {
			return 0, err
		}
		return c.actOn(dispatchTightness(tightness, idx, c.kind, mayDropExact), child)
	}

	if err := c.flush(); err != nil {
		return 0, err
	}
	c.currentIndex = tag.Index
	leaf, tightness, err := makeLeafNode(c.query, c.p, idx, tag.Pos, child)
	if err != nil {
		return 0, err
	}
	c.current = leaf

	return c.actOn(dispatchTightness(tightness, idx, c.kind, mayDropExact), child)
}

// actOn performs the side effect implied by outcome (attach/fetch-wrap)
// and returns it unchanged for the caller to decide the child's fate in
// the residual list.
func (c *scanCollector) actOn(outcome mergeOutcome, child expression.Expr) (mergeOutcome, error) {
	switch outcome {
	case outcomeAttach:
		f, ok := c.current.(filterable)
		if !ok {
			return 0, errors.NewInvariantViolation("attach outcome on a non-filterable leaf", nil)
		}
		addFilter(f, child, c.kind)
	case outcomeFetchWrap:
		if err := c.wrapFetch(child); err != nil {
			return 0, err
		}
	}
	return outcome, nil
}

// processIndexScans is the scan collector: walk the tagged children
// of a logical root (AND or OR), producing a list of leaf solutions and
// the residual children that still need a surrounding filter.
func processIndexScans(ctx context.Context, p *Params, query *CanonicalQuery, children []expression.Expr, kind mergeKind, inArrayOperator bool, indices []index.Entry) ([]plan.Operator, []expression.Expr, error) {
	c := newScanCollector(p, query, indices, kind)
	var residual []expression.Expr

	i := 0
	for i < len(children) {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		child := children[i]
		tag := child.Tag()
		if tag == nil {
			// Tagged children precede untagged ones by enumerator
			// invariant; everything left is residual.
			residual = append(residual, children[i:]...)
			break
		}
		if tag.Index == expression.NoIndex {
			return nil, nil, errors.NewInvariantViolation("tagged child carries a NoIndex tag", nil)
		}

		if !expression.IsBoundsGenerating(child) {
			if kind == mergeAnd {
				if em, ok := child.(*expression.ElemMatchObject); ok {
					for _, emChild := range findElemMatchChildren(em) {
						innerTag := emChild.Tag()
						if innerTag == nil {
							return nil, nil, errors.NewInvariantViolation("elemMatch inner child missing tag", nil)
						}
						if _, err := c.admit(innerTag, emChild); err != nil {
							return nil, nil, err
						}
					}
					// The $elemMatch stays attached for the surrounding
					// fetch to re-check (index evidence is necessary but
					// not sufficient under array semantics).
					residual = append(residual, child)
					i++
					continue
				}
			}

			childSolution, err := buildIndexedDataAccess(ctx, p, query, child, inArrayOperator, indices)
			if err != nil {
				return nil, nil, err
			}
			c.out = append(c.out, childSolution)
			if inArrayOperator {
				residual = append(residual, child)
			}
			i++
			continue
		}

		ixtag := tag
		if not, ok := child.(*expression.Not); ok {
			ixtag = not.Child.Tag()
			if ixtag == nil {
				return nil, nil, errors.NewInvariantViolation("NOT child missing tag", nil)
			}
		}

		outcome, err := c.admit(ixtag, child)
		if err != nil {
			return nil, nil, err
		}
		if outcome == outcomeKeep {
			residual = append(residual, child)
		}
		i++
	}

	if err := c.flush(); err != nil {
		return nil, nil, err
	}

	return c.out, residual, nil
}

// findElemMatchChildren collects tagged, bounds-generating predicates from
// inside an $elemMatch object subtree (recursing through nested AND and
// ELEM_MATCH_OBJECT nodes), the predicates the caller will try to merge
// into the current scan while leaving the $elemMatch itself in place.
func findElemMatchChildren(node expression.Expr) []expression.Expr {
	var out []expression.Expr
	for _, child := range node.Children() {
		if expression.NodeCanUseIndexOnOwnField(child) && child.Tag() != nil {
			out = append(out, child)
		} else if and, ok := child.(*expression.And); ok {
			out = append(out, findElemMatchChildren(and)...)
		} else if em, ok := child.(*expression.ElemMatchObject); ok {
			out = append(out, findElemMatchChildren(em)...)
		}
	}
	return out
}
