package planner

import (
	"github.com/arvo-db/accessplan/bounds"
	"github.com/arvo-db/accessplan/expression"
	"github.com/arvo-db/accessplan/index"
	"github.com/arvo-db/accessplan/plan"
)

// scanWholeIndex builds a scan spanning an entire index, used for
// plans that satisfy a requested sort through index order alone rather
// than through any predicate bound.
func scanWholeIndex(p *Params, query *CanonicalQuery, idx index.Entry, direction index.Direction) plan.Operator {
	b := bounds.NewIndexBounds(idx.Len())
	p.builder().AllValuesBounds(idx.KeyPattern, &b)
	if direction == index.Descending {
		p.builder().AlignBounds(&b, idx.KeyPattern, direction)
	}

	scan := plan.NewIndexScan(idx.ID, idx.KeyPattern, idx.Multikey, b, direction, nil)
	return wrapWholeScan(scan, query)
}

// makeIndexScan builds a simple-range scan over an explicit [startKey,
// endKey), direction always forward.
func makeIndexScan(query *CanonicalQuery, idx index.Entry, startKey, endKey []byte) plan.Operator {
	b := bounds.IndexBounds{
		Fields:          make([]bounds.OrderedIntervalList, idx.Len()),
		IsSimpleRange:   true,
		StartKey:        startKey,
		EndKey:          endKey,
		EndKeyInclusive: false,
	}
	scan := plan.NewIndexScan(idx.ID, idx.KeyPattern, idx.Multikey, b, index.Ascending, nil)
	return wrapWholeScan(scan, query)
}

// wrapWholeScan wraps scan in a Fetch carrying a clone of the query's
// root predicate, unless that root is the trivial empty AND (find({})),
// in which case the scan is returned bare.
func wrapWholeScan(scan plan.Operator, query *CanonicalQuery) plan.Operator {
	if isEmptyAnd(query.Root()) {
		return scan
	}
	return plan.NewFetch(scan, query.Root().Clone())
}

func isEmptyAnd(e expression.Expr) bool {
	and, ok := e.(*expression.And)
	return ok && len(and.Operands) == 0
}
