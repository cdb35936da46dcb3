package planner

import (
	"context"

	"github.com/arvo-db/accessplan/bounds"
	"github.com/arvo-db/accessplan/errors"
	"github.com/arvo-db/accessplan/expression"
	"github.com/arvo-db/accessplan/index"
	"github.com/arvo-db/accessplan/plan"
)

// buildIndexedDataAccess is the dispatcher: route a tagged predicate
// subtree to the logical assemblers, build and finish a single leaf,
// or recurse into an array operator's children.
func buildIndexedDataAccess(ctx context.Context, p *Params, query *CanonicalQuery, root expression.Expr, inArrayOperator bool, indices []index.Entry) (plan.Operator, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	not, isNot := root.(*expression.Not)
	_, isAnd := root.(*expression.And)
	_, isOr := root.(*expression.Or)
	isLogical := isNot || isAnd || isOr

	boundsGeneratingNot := isNot && expression.IsBoundsGeneratingNot(not)

	if isLogical && !boundsGeneratingNot {
		switch r := root.(type) {
		case *expression.And:
			return buildIndexedAnd(ctx, p, query, r, inArrayOperator, indices)
		case *expression.Or:
			return buildIndexedOr(ctx, p, query, r, inArrayOperator, indices)
		default:
			// A NOT over a logical node (or over a leaf that can't
			// generate bounds) can't be answered by an index.
			return nil, errors.NewNoIndexedPlan("negated logical node cannot use an index", nil)
		}
	}

	if root.Tag() == nil && !expression.ArrayUsesIndexOnChildren(root) {
		return nil, errors.NewNoIndexedPlan("predicate has no index tag", nil)
	}

	if expression.IsBoundsGenerating(root) {
		tag := root.Tag()
		if tag.Index == expression.NoIndex || tag.Index >= len(indices) {
			return nil, errors.NewInvariantViolation("bounds-generating leaf tagged with an out-of-range index", nil)
		}
		idx := indices[tag.Index]

		leaf, tightness, err := makeLeafNode(query, p, idx, tag.Pos, root)
		if err != nil {
			return nil, err
		}
		if err := finishLeafNode(p, idx, leaf); err != nil {
			return nil, err
		}

		if inArrayOperator {
			return leaf, nil
		}

		switch {
		case tightness == bounds.Exact:
			return leaf, nil
		case tightness == bounds.InexactCovered && !idx.Multikey:
			f, ok := leaf.(filterable)
			if !ok {
				return nil, errors.NewInvariantViolation("inexact-covered leaf kind cannot carry a filter", nil)
			}
			f.SetFilter(root)
			return leaf, nil
		default:
			return plan.NewFetch(leaf, root), nil
		}
	}

	if expression.ArrayUsesIndexOnChildren(root) {
		return buildArrayIndexedDataAccess(ctx, p, query, root, inArrayOperator, indices)
	}

	return nil, errors.NewNoIndexedPlan("predicate cannot be answered by an index", nil)
}

// buildArrayIndexedDataAccess handles the array operators that index
// their own children rather than themselves ($all and the object form of
// $elemMatch).
func buildArrayIndexedDataAccess(ctx context.Context, p *Params, query *CanonicalQuery, root expression.Expr, inArrayOperator bool, indices []index.Entry) (plan.Operator, error) {
	var solution plan.Operator
	var err error

	switch r := root.(type) {
	case *expression.All:
		solution, err = buildAllLikeAccess(ctx, p, query, r.Subs, indices)
	case *expression.ElemMatchObject:
		children := r.Children()
		if len(children) != 1 {
			return nil, errors.NewInvariantViolation("$elemMatch object expects exactly one child", nil)
		}
		solution, err = buildIndexedDataAccess(ctx, p, query, children[0], true, indices)
	default:
		return nil, errors.NewInvariantViolation("buildArrayIndexedDataAccess: unsupported array operator", nil)
	}
	if err != nil {
		return nil, err
	}

	if inArrayOperator {
		return solution, nil
	}
	// Array semantics require the enclosing fetch to re-check the whole
	// operator: index evidence over individual elements doesn't prove
	// the elements jointly matched came from the same array slot.
	return plan.NewFetch(solution, root), nil
}

// buildAllLikeAccess builds an AndHash over the recursively-indexed
// sub-clauses of an $all operator. A sub-clause that can't be indexed is
// simply skipped; the whole operator only fails when no sub-clause could
// be indexed at all.
func buildAllLikeAccess(ctx context.Context, p *Params, query *CanonicalQuery, subs []expression.Expr, indices []index.Entry) (plan.Operator, error) {
	var built []plan.Operator
	for _, sub := range subs {
		node, err := buildIndexedDataAccess(ctx, p, query, sub, true, indices)
		if err != nil {
			if errors.IsNoIndexedPlan(err) {
				continue
			}
			return nil, err
		}
		built = append(built, node)
	}

	if len(built) == 0 {
		return nil, errors.NewNoIndexedPlan("array operator has no indexed sub-clauses", nil)
	}
	if len(built) == 1 {
		return built[0], nil
	}
	return plan.NewAndHash(built...), nil
}
