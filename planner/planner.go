package planner

import (
	"context"
	"fmt"

	"github.com/arvo-db/accessplan/errors"
	"github.com/arvo-db/accessplan/index"
	"github.com/arvo-db/accessplan/logging"
	"github.com/arvo-db/accessplan/plan"
)

// Plan is the access-path planner's top-level entry point: given a
// canonical (possibly tagged) query and its candidate index catalog,
// build a single query solution tree, or report that no indexed plan is
// possible.
//
// A returned NoIndexedPlan error is recoverable: callers are expected to
// fall back to CollectionScan. Any other error is an invariant violation
// and should not be swallowed.
func Plan(ctx context.Context, query *CanonicalQuery, indices []index.Entry, params *Params) (plan.Operator, error) {
	if params == nil {
		params = &Params{}
	}
	solution, err := buildIndexedDataAccess(ctx, params, query, query.Root(), false, indices)
	if err != nil {
		if errors.IsNoIndexedPlan(err) {
			logging.Debuga(func() string {
				return fmt.Sprintf("planner: no indexed plan for %q: %v", query.Namespace, err)
			})
		}
		return nil, err
	}
	logging.Tracea(func() string {
		body, _ := solution.MarshalJSON()
		return fmt.Sprintf("planner: solution for %q: %s", query.Namespace, body)
	})
	return solution, nil
}

// CollectionScan builds the unindexed fallback plan a caller
// should fall back to when Plan reports NoIndexedPlan.
func CollectionScan(query *CanonicalQuery, params *Params) plan.Operator {
	if params == nil {
		params = &Params{}
	}
	return makeCollectionScan(params, query)
}

// ScanWholeIndex exposes the whole-index scanner for callers
// constructing a sort-satisfying plan directly, bypassing predicate-driven
// construction (e.g. an empty filter with a requested sort).
func ScanWholeIndex(query *CanonicalQuery, idx index.Entry, direction index.Direction, params *Params) plan.Operator {
	if params == nil {
		params = &Params{}
	}
	return scanWholeIndex(params, query, idx, direction)
}

// MakeIndexScan exposes the explicit-range scanner for callers that
// already know a [startKey, endKey) pair to scan, bypassing bounds
// translation entirely.
func MakeIndexScan(query *CanonicalQuery, idx index.Entry, startKey, endKey []byte) plan.Operator {
	return makeIndexScan(query, idx, startKey, endKey)
}
