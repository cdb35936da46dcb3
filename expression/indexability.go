package expression

// This file implements the indexability oracle the planner consults at
// the collector and dispatcher: a structural yes/no classification per
// node kind ("can this node ever produce bounds against one of its own
// fields").

// NodeCanUseIndexOnOwnField reports whether e is a leaf that can directly
// generate index bounds against a single field it names (every comparison,
// regex, type, exists, mod, in, geo, geoNear and text predicate, plus the
// value form of $elemMatch, whose children all constrain the same scalar
// drawn from one array element of its own field). Logical nodes and the
// remaining array operators answer false: they route through their
// children instead.
func NodeCanUseIndexOnOwnField(e Expr) bool {
	switch e.(type) {
	case *FieldComparison, *Regex, *TypeMatch, *Exists, *Mod, *In, *Geo, *GeoNear, *Text, *ElemMatchValue:
		return true
	default:
		return false
	}
}

// IsBoundsGenerating reports whether e (or, if e is a Not, its child) can
// produce index bounds. This powers the Case C branch in the scan
// collector and the dispatcher.
func IsBoundsGenerating(e Expr) bool {
	if not, ok := e.(*Not); ok {
		return IsBoundsGeneratingNot(not)
	}
	return NodeCanUseIndexOnOwnField(e)
}

// IsBoundsGeneratingNot reports whether a NOT node can be treated as
// bounds-generating: true exactly when its single child can itself
// generate bounds (the NOT inherits the child's tag and the bounds builder
// is responsible for complementing the interval list).
func IsBoundsGeneratingNot(not *Not) bool {
	if not.Child == nil {
		return false
	}
	return NodeCanUseIndexOnOwnField(not.Child)
}

// ArrayUsesIndexOnChildren reports whether e is an array operator whose
// indexing strategy is to recursively index its own children rather than
// itself ($all and the object form of $elemMatch; the value form
// generates bounds on its own field instead).
func ArrayUsesIndexOnChildren(e Expr) bool {
	switch e.(type) {
	case *All, *ElemMatchObject:
		return true
	default:
		return false
	}
}

// IsLogical reports whether e is an And or Or node (the only nodes the assemblers
// treat as logical assembly points).
func IsLogical(e Expr) (and bool, or bool) {
	switch e.(type) {
	case *And:
		return true, false
	case *Or:
		return false, true
	default:
		return false, false
	}
}
