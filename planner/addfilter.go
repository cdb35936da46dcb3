package planner

import "github.com/arvo-db/accessplan/expression"

// filterable is implemented by every solution leaf kind that carries an
// optional residual filter (every leaf but Fetch, whose filter is fixed at
// construction, and CollectionScan, which addFilter never targets since
// makeCollectionScan sets its filter directly).
type filterable interface {
	Filter() expression.Expr
	SetFilter(expression.Expr)
}

// addFilter is the filter-attachment utility: merge match into
// node's existing filter, respecting AND/OR shape.
func addFilter(node filterable, match expression.Expr, kind mergeKind) {
	existing := node.Filter()
	if existing == nil {
		node.SetFilter(match)
		return
	}

	if kind == mergeAnd {
		if and, ok := existing.(*expression.And); ok {
			and.Operands = append(and.Operands, match)
			return
		}
		node.SetFilter(expression.NewAnd(existing, match))
		return
	}

	if or, ok := existing.(*expression.Or); ok {
		or.Operands = append(or.Operands, match)
		return
	}
	node.SetFilter(expression.NewOr(existing, match))
}
