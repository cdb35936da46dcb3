package plan

import (
	json "github.com/couchbase/go_json"
)

// AndHash intersects its children by hashing on document identifier,
// emitting in the order of its final child. Nested hash intersections
// are flattened, and a fan-out past 64 children is split into a
// two-level tree.
type AndHash struct {
	readonly
	children []Operator
}

func NewAndHash(children ...Operator) *AndHash {
	buf := make([]Operator, 0, 2*len(children))
	for _, c := range children {
		buf = flattenAndHash(c, buf)
	}

	if n := len(buf); n > 64 {
		return NewAndHash(
			NewAndHash(buf[:n/2]...),
			NewAndHash(buf[n/2:]...),
		)
	}

	return &AndHash{children: buf}
}

func flattenAndHash(op Operator, buf []Operator) []Operator {
	if h, ok := op.(*AndHash); ok {
		for _, c := range h.children {
			buf = flattenAndHash(c, buf)
		}
		return buf
	}
	return append(buf, op)
}

func (this *AndHash) Accept(visitor Visitor) (interface{}, error) { return visitor.VisitAndHash(this) }
func (this *AndHash) New() Operator                               { return &AndHash{} }
func (this *AndHash) Children() []Operator                        { return this.children }

func (this *AndHash) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{"#operator": "AndHash", "children": this.children})
}

func (this *AndHash) UnmarshalJSON(body []byte) error {
	var u struct {
		Children json.RawMessage `json:"children"`
	}
	if err := json.Unmarshal(body, &u); err != nil {
		return err
	}
	children, err := unmarshalOperandList(u.Children)
	if err != nil {
		return err
	}
	this.children = children
	return nil
}
