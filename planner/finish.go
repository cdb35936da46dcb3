package planner

import (
	"github.com/arvo-db/accessplan/errors"
	"github.com/arvo-db/accessplan/expression"
	"github.com/arvo-db/accessplan/index"
	"github.com/arvo-db/accessplan/plan"
	"github.com/arvo-db/accessplan/value"
)

// finishLeafNode is the leaf finisher: fill unbound key positions
// with all-values bounds, then align to the scan's direction. Near
// leaves get ordinary all-values fill on their unbound positions (see
// DESIGN.md for the geo-aware-fill decision).
func finishLeafNode(p *Params, idx index.Entry, node plan.Operator) error {
	switch n := node.(type) {
	case *plan.Geo2D:
		return nil
	case *plan.Text:
		return finishTextNode(idx, n)
	case *plan.GeoNear2DSphere:
		b := n.BaseBounds()
		p.builder().AllValuesBounds(idx.KeyPattern, &b)
		p.builder().AlignBounds(&b, idx.KeyPattern, n.Direction())
		n.SetBaseBounds(b)
		return nil
	case *plan.IndexScan:
		b := n.Bounds()
		p.builder().AllValuesBounds(idx.KeyPattern, &b)
		p.builder().AlignBounds(&b, idx.KeyPattern, n.Direction())
		n.SetBounds(b)
		return nil
	default:
		return errors.NewInvariantViolation("finishLeafNode: unsupported leaf kind", nil)
	}
}

// finishTextNode builds the text leaf's index prefix:
// scan the key pattern up to the "_fts" sentinel to find prefixEnd, then
// detach that many leading equality predicates from the filter into
// indexPrefix, in key-position order.
func finishTextNode(idx index.Entry, tn *plan.Text) error {
	prefixEnd := idx.TextPrefixEnd()
	if prefixEnd <= 0 {
		return nil
	}

	filter := tn.Filter()
	if filter == nil {
		return errors.NewInvariantViolation("text leaf has a prefix but no filter to extract it from", nil)
	}

	prefixExprs := make([]*expression.FieldComparison, prefixEnd)

	and, ok := filter.(*expression.And)
	if !ok {
		// Only one prefix term: the filter itself must be the single EQ.
		if prefixEnd != 1 {
			return errors.NewInvariantViolation("text leaf prefix mismatch: expected a single EQ filter", nil)
		}
		fc, ok := filter.(*expression.FieldComparison)
		if !ok || fc.Op != expression.EQ {
			return errors.NewInvariantViolation("text leaf prefix filter is not an equality", nil)
		}
		prefixExprs[0] = fc
		tn.SetFilter(nil)
	} else {
		remaining := make([]expression.Expr, 0, len(and.Operands))
		for _, child := range and.Operands {
			tag := child.Tag()
			if tag == nil || tag.Pos >= prefixEnd {
				remaining = append(remaining, child)
				continue
			}
			fc, ok := child.(*expression.FieldComparison)
			if !ok || fc.Op != expression.EQ {
				return errors.NewInvariantViolation("text leaf prefix predicate is not an equality", nil)
			}
			prefixExprs[tag.Pos] = fc
		}

		switch len(remaining) {
		case 0:
			tn.SetFilter(nil)
		case 1:
			tn.SetFilter(remaining[0])
		default:
			and.Operands = remaining
			tn.SetFilter(and)
		}
	}

	prefix := make(map[string]value.Value, prefixEnd)
	for i, fc := range prefixExprs {
		if fc == nil {
			return errors.NewInvariantViolation("text leaf missing a prefix equality at key position", nil)
		}
		prefix[idx.KeyPattern[i].Field] = fc.Value
	}
	tn.SetIndexPrefix(prefix)
	return nil
}
