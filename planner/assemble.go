package planner

import (
	"context"

	"github.com/arvo-db/accessplan/errors"
	"github.com/arvo-db/accessplan/expression"
	"github.com/arvo-db/accessplan/index"
	"github.com/arvo-db/accessplan/plan"
)

// buildIndexedAnd is the AND logical assembler: gather leaf
// solutions via the scan collector, combine them into an intersection,
// and (unless building inside an array operator) wrap any residual
// children that couldn't be absorbed into a Fetch.
func buildIndexedAnd(ctx context.Context, p *Params, query *CanonicalQuery, root *expression.And, inArrayOperator bool, indices []index.Entry) (plan.Operator, error) {
	leaves, residual, err := processIndexScans(ctx, p, query, root.Operands, mergeAnd, inArrayOperator, indices)
	if err != nil {
		return nil, err
	}
	if len(leaves) == 0 {
		return nil, errors.NewNoIndexedPlan("AND has no indexed children", nil)
	}

	var result plan.Operator
	switch {
	case len(leaves) == 1:
		result = leaves[0]
	case allSortedByDiskLoc(leaves):
		result = plan.NewAndSorted(leaves...)
	default:
		// The AndHash emits in the order of its final child; rotate a
		// sort-providing child there if the caller requested that sort.
		rotateSortProvider(leaves, query.Sort)
		result = plan.NewAndHash(leaves...)
	}

	if inArrayOperator {
		// Don't bother with fetch analysis here: the enclosing array
		// operator's own Fetch will re-check whatever remains.
		return result, nil
	}

	if len(residual) == 0 {
		return result, nil
	}
	return plan.NewFetch(result, collapseAnd(residual)), nil
}

// collapseAnd returns residual[0] directly if it is the only branch,
// matching buildIndexedAnd's "an $and of one thing is that thing" case
// when promoting the leftover root to a Fetch filter.
func collapseAnd(residual []expression.Expr) expression.Expr {
	if len(residual) == 1 {
		return residual[0]
	}
	return expression.NewAnd(residual...)
}

// buildIndexedOr is the OR logical assembler: an OR must be fully
// indexed for every branch, so any residual child is a fatal condition.
func buildIndexedOr(ctx context.Context, p *Params, query *CanonicalQuery, root *expression.Or, inArrayOperator bool, indices []index.Entry) (plan.Operator, error) {
	leaves, residual, err := processIndexScans(ctx, p, query, root.Operands, mergeOr, inArrayOperator, indices)
	if err != nil {
		return nil, err
	}
	if !inArrayOperator && len(residual) > 0 {
		return nil, errors.NewNoIndexedPlan("OR has a non-indexed child", map[string]interface{}{
			"residual": len(residual),
		})
	}
	if len(leaves) == 0 {
		return nil, errors.NewNoIndexedPlan("OR has no indexed children", nil)
	}

	if len(leaves) == 1 {
		return leaves[0], nil
	}

	// shouldMergeSort is decided from the leaves in their incoming order,
	// before the text-first partition reorders the final children list.
	mergeSort := shouldMergeSort(leaves, query.Sort)
	ordered := stablePartitionTextFirst(leaves)

	if mergeSort {
		return plan.NewMergeSort(query.Sort, ordered...), nil
	}
	return plan.NewOr(ordered...), nil
}
