package planner

import (
	"github.com/arvo-db/accessplan/expression"
	"github.com/arvo-db/accessplan/index"
	"github.com/arvo-db/accessplan/plan"
)

// makeCollectionScan builds the unindexed fallback plan: a full
// scan carrying a clone of the query's predicate as its filter. The
// trivial empty AND (find({})) produces a bare scan with no filter.
// Direction is forward unless the query's sort or hint named $natural
// descending.
func makeCollectionScan(p *Params, query *CanonicalQuery) plan.Operator {
	direction := index.Ascending
	if query.NaturalDirection == index.Descending {
		direction = index.Descending
	}
	var filter expression.Expr
	if !isEmptyAnd(query.Root()) {
		filter = query.Root().Clone()
	}
	return plan.NewCollectionScan(filter, direction, query.Tailable, query.maxScan(p))
}
