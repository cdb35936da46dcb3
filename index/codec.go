package index

import (
	json "github.com/couchbase/go_json"
)

// catalogEntry is the wire shape of an Entry: a key pattern given as
// ordered field/kind/dir triples, matching how a caller would hand the
// planner a candidate index list without reaching into this package's
// Go types directly.
type catalogEntry struct {
	ID         int              `json:"id"`
	KeyPattern []catalogKeyElem `json:"keyPattern"`
	Multikey   bool             `json:"multikey"`
	Type       string           `json:"type"`
}

type catalogKeyElem struct {
	Field string `json:"field"`
	Kind  string `json:"kind"`
	Dir   int    `json:"dir"`
}

func (t Type) marshalName() string {
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
		return "btree"
	}
}

func parseType(s string) Type {
	switch s {
	case "2d":
		return TwoD
	case "2dsphere":
		return TwoDSphere
	case "text":
		return TextIndex
	case "hashed":
		return Hashed
	default:
		return Btree
	}
}

// MarshalJSON renders an Entry the way a candidate index catalog is
// expected to be fed to the planner's CLI harness.
func (e Entry) MarshalJSON() ([]byte, error) {
	c := catalogEntry{ID: e.ID, Multikey: e.Multikey, Type: e.Type.marshalName()}
	c.KeyPattern = make([]catalogKeyElem, len(e.KeyPattern))
	for i, k := range e.KeyPattern {
		dir := int(k.Dir)
		if dir == 0 {
			dir = int(Ascending)
		}
		c.KeyPattern[i] = catalogKeyElem{Field: k.Field, Kind: k.Kind.marshalName(), Dir: dir}
	}
	return json.Marshal(c)
}

// UnmarshalJSON parses an Entry from the catalog wire shape MarshalJSON
// produces.
func (e *Entry) UnmarshalJSON(body []byte) error {
	var c catalogEntry
	if err := json.Unmarshal(body, &c); err != nil {
		return err
	}
	e.ID = c.ID
	e.Multikey = c.Multikey
	e.Type = parseType(c.Type)
	e.KeyPattern = make([]KeyElement, len(c.KeyPattern))
	for i, k := range c.KeyPattern {
		dir := Direction(k.Dir)
		if dir == 0 {
			dir = Ascending
		}
		e.KeyPattern[i] = KeyElement{Field: k.Field, Kind: parseType(k.Kind), Dir: dir}
	}
	return nil
}

// UnmarshalCatalog parses a JSON array of Entry into a candidate index
// catalog, the shape cmd/planexplain reads from its index-catalog input.
func UnmarshalCatalog(body []byte) ([]Entry, error) {
	var entries []Entry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
