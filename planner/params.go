// Package planner implements the access-path planner: given a tagged
// predicate tree and a candidate index catalog, it constructs a query
// solution tree (plan.Operator) or reports that no indexed plan is
// possible.
package planner

import (
	"github.com/arvo-db/accessplan/bounds"
	"github.com/arvo-db/accessplan/expression"
	"github.com/arvo-db/accessplan/index"
)

// Params bundles planner-wide flags. The planner reads MaxScanToReturnOne
// and Builder; NoBlockingSort and IndexFiltersApplied are carried for
// callers and are not read here.
type Params struct {
	// NoBlockingSort records that the caller forbids plans that would
	// sort results in memory. This planner never sorts and does not read
	// the flag.
	NoBlockingSort bool
	// IndexFiltersApplied records whether an upstream index filter has
	// already trimmed the candidate index list, purely informational to
	// this module.
	IndexFiltersApplied bool
	// MaxScanToReturnOne, if true, caps maxScan at 1 on a produced
	// CollectionScan (used by findOne-style callers); index scans carry
	// no maxScan.
	MaxScanToReturnOne bool
	// Builder is the bounds-translation strategy; nil defaults to
	// bounds.DefaultBuilder{}.
	Builder bounds.Builder
}

func (p *Params) builder() bounds.Builder {
	if p.Builder != nil {
		return p.Builder
	}
	return bounds.DefaultBuilder{}
}

// CanonicalQuery is the normalized query this planner consumes: a
// (possibly tagged) predicate tree plus the parsed sort/hint/projection
// metadata and per-query limits the leaf constructor and assemblers
// consult.
type CanonicalQuery struct {
	Namespace string
	Predicate expression.Expr

	// Sort is the requested output ordering, empty if none was requested.
	Sort []index.KeyElement
	// NaturalDirection is non-zero when the sort or hint named $natural,
	// overriding a collection scan's default forward direction.
	NaturalDirection index.Direction

	MaxScan  int64
	Tailable bool

	ReturnKey           bool
	WantGeoNearPoint    bool
	WantGeoNearDistance bool
}

func (q *CanonicalQuery) Root() expression.Expr { return q.Predicate }

func (q *CanonicalQuery) maxScan(p *Params) int64 {
	if p.MaxScanToReturnOne {
		return 1
	}
	return q.MaxScan
}

// sortSetContains reports whether candidate appears in sorts, used by the assemblers
// to decide whether an AndHash child or an Or's children already satisfy
// the requested sort.
func sortSetContains(sorts [][]index.KeyElement, candidate []index.KeyElement) bool {
	for _, s := range sorts {
		if sameSort(s, candidate) {
			return true
		}
	}
	return false
}

func sameSort(a, b []index.KeyElement) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Field != b[i].Field || a[i].Dir != b[i].Dir {
			return false
		}
	}
	return true
}
