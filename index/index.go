// Package index describes the candidate index catalog the planner
// consults. Entries carry only what bounds construction needs: the key
// pattern, the multikey flag, and the index type.
package index

// Type is the kind of index structure a KeyElement belongs to.
type Type int

const (
	Btree Type = iota
	TwoD
	TwoDSphere
	TextIndex
	Hashed
)

func (t Type) String() string {
	switch t {
	case Btree:
		return "btree"
	case TwoD:
		return "2d"
	case TwoDSphere:
		return "2dsphere"
	case TextIndex:
		return "text"
	case Hashed:
		return "hashed"
	default:
		return "unknown"
	}
}

// Direction is the sort direction a btree key element is stored in.
type Direction int

const (
	Ascending Direction = 1
	Descending Direction = -1
)

// KeyElement is one ordered position of an index's key pattern.
type KeyElement struct {
	Field string
	Kind  Type      // Btree for ascending/descending fields, else the special index type
	Dir   Direction // meaningful only when Kind == Btree
}

// Text indexes carry a synthetic key-pattern pair at a fixed internal
// position: "_fts" holds the score, "_ftsx" holds the term. Prefix fields
// precede them; suffix fields follow.
const (
	FTSField  = "_fts"
	FTSXField = "_ftsx"
)

// Entry describes one candidate index.
type Entry struct {
	ID         int
	KeyPattern []KeyElement
	Multikey   bool
	Type       Type
}

// TextPrefixEnd returns the number of key-pattern fields preceding the
// "_fts" sentinel, or -1 if this is not a text index / the sentinel is
// missing.
func (e *Entry) TextPrefixEnd() int {
	if e.Type != TextIndex {
		return -1
	}
	for i, k := range e.KeyPattern {
		if k.Field == FTSField {
			return i
		}
	}
	return -1
}

// Len returns the number of key positions in this index's key pattern.
func (e *Entry) Len() int { return len(e.KeyPattern) }
