package plan

import (
	json "github.com/couchbase/go_json"

	"github.com/arvo-db/accessplan/expression"
)

// Fetch wraps at most one child and carries a residual filter that
// preserves every original predicate branch not already guaranteed exact
// by the scan beneath it. It is the sole mechanism by which a
// solution tree re-checks a predicate the scan below it could only narrow,
// not prove.
type Fetch struct {
	readonly
	child  Operator
	filter expression.Expr
}

func NewFetch(child Operator, filter expression.Expr) *Fetch {
	return &Fetch{child: child, filter: filter}
}

func (this *Fetch) Accept(visitor Visitor) (interface{}, error) {
	return visitor.VisitFetch(this)
}

func (this *Fetch) New() Operator {
	return &Fetch{}
}

func (this *Fetch) Child() Operator {
	return this.child
}

func (this *Fetch) Filter() expression.Expr {
	return this.filter
}

func (this *Fetch) MarshalJSON() ([]byte, error) {
	r := map[string]interface{}{"#operator": "Fetch", "child": this.child}
	if this.filter != nil {
		fm, err := expression.Marshal(this.filter)
		if err != nil {
			return nil, err
		}
		r["filter"] = json.RawMessage(fm)
	}
	return json.Marshal(r)
}

func (this *Fetch) UnmarshalJSON(body []byte) error {
	var _unmarshalled struct {
		Child  json.RawMessage `json:"child"`
		Filter json.RawMessage `json:"filter"`
	}
	if err := json.Unmarshal(body, &_unmarshalled); err != nil {
		return err
	}

	var childType struct {
		Operator string `json:"#operator"`
	}
	if err := json.Unmarshal(_unmarshalled.Child, &childType); err != nil {
		return err
	}
	child, err := MakeOperator(childType.Operator, _unmarshalled.Child)
	if err != nil {
		return err
	}
	this.child = child

	if len(_unmarshalled.Filter) > 0 {
		filter, err := expression.Unmarshal(_unmarshalled.Filter)
		if err != nil {
			return err
		}
		this.filter = filter
	}
	return nil
}
