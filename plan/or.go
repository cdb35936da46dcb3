package plan

import (
	json "github.com/couchbase/go_json"
)

// Or unions its children by document identifier, discarding duplicates
// across children.
type Or struct {
	readonly
	children []Operator
}

func NewOr(children ...Operator) *Or {
	buf := make([]Operator, 0, len(children))
	for _, c := range children {
		buf = flattenOr(c, buf)
	}
	return &Or{children: buf}
}

func flattenOr(op Operator, buf []Operator) []Operator {
	if o, ok := op.(*Or); ok {
		for _, c := range o.children {
			buf = flattenOr(c, buf)
		}
		return buf
	}
	return append(buf, op)
}

func (this *Or) Accept(visitor Visitor) (interface{}, error) { return visitor.VisitOr(this) }
func (this *Or) New() Operator                               { return &Or{} }
func (this *Or) Children() []Operator                        { return this.children }

func (this *Or) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{"#operator": "Or", "children": this.children})
}

func (this *Or) UnmarshalJSON(body []byte) error {
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
