package plan

import (
	json "github.com/couchbase/go_json"
)

// AndSorted intersects its children by a stream-merge over document
// identifier, assuming every child already emits in that order. Preserves
// the index order of its first child; an AndSorted given as the first
// child and AndHash nodes given as later children are flattened, and a
// fan-out past 64 children is split.
type AndSorted struct {
	readonly
	children []Operator
}

func NewAndSorted(children ...Operator) *AndSorted {
	if len(children) == 0 {
		return &AndSorted{}
	}

	buf := flattenAndSorted(children[0], nil)
	for _, c := range children[1:] {
		buf = flattenAndHash(c, buf)
	}

	if n := len(buf); n > 64 {
		return &AndSorted{children: []Operator{
			buf[0],
			NewAndHash(buf[1 : n/2]...),
			NewAndHash(buf[n/2:]...),
		}}
	}

	return &AndSorted{children: buf}
}

func flattenAndSorted(op Operator, buf []Operator) []Operator {
	if s, ok := op.(*AndSorted); ok && len(s.children) > 0 {
		buf = flattenAndSorted(s.children[0], buf)
		return append(buf, s.children[1:]...)
	}
	return append(buf, op)
}

func (this *AndSorted) Accept(visitor Visitor) (interface{}, error) {
	return visitor.VisitAndSorted(this)
}
func (this *AndSorted) New() Operator        { return &AndSorted{} }
func (this *AndSorted) Children() []Operator { return this.children }

func (this *AndSorted) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{"#operator": "AndSorted", "children": this.children})
}

func (this *AndSorted) UnmarshalJSON(body []byte) error {
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
