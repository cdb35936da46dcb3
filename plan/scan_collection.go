package plan

import (
	json "github.com/couchbase/go_json"

	"github.com/arvo-db/accessplan/expression"
	"github.com/arvo-db/accessplan/index"
)

// CollectionScan is the fallback full-scan node built when no index
// applies: an unindexed whole-collection scan carrying its residual
// filter directly rather than relying on a separate outer filter
// operator.
type CollectionScan struct {
	readonly
	filter   expression.Expr
	direction index.Direction
	tailable bool
	maxScan  int64
}

func NewCollectionScan(filter expression.Expr, direction index.Direction, tailable bool, maxScan int64) *CollectionScan {
	return &CollectionScan{filter: filter, direction: direction, tailable: tailable, maxScan: maxScan}
}

func (this *CollectionScan) Accept(visitor Visitor) (interface{}, error) {
	return visitor.VisitCollectionScan(this)
}

func (this *CollectionScan) New() Operator { return &CollectionScan{} }

func (this *CollectionScan) Filter() expression.Expr    { return this.filter }
func (this *CollectionScan) Direction() index.Direction { return this.direction }
func (this *CollectionScan) Tailable() bool             { return this.tailable }
func (this *CollectionScan) MaxScan() int64             { return this.maxScan }

func (this *CollectionScan) MarshalJSON() ([]byte, error) {
	r := map[string]interface{}{
		"#operator": "CollectionScan",
		"direction": int(this.direction),
		"tailable":  this.tailable,
		"maxScan":   this.maxScan,
	}
	if this.filter != nil {
		fm, err := expression.Marshal(this.filter)
		if err != nil {
			return nil, err
		}
		r["filter"] = json.RawMessage(fm)
	}
	return json.Marshal(r)
}

func (this *CollectionScan) UnmarshalJSON(body []byte) error {
	var u struct {
		Direction int             `json:"direction"`
		Tailable  bool            `json:"tailable"`
		MaxScan   int64           `json:"maxScan"`
		Filter    json.RawMessage `json:"filter"`
	}
	if err := json.Unmarshal(body, &u); err != nil {
		return err
	}
	this.direction = index.Direction(u.Direction)
	this.tailable = u.Tailable
	this.maxScan = u.MaxScan
	if len(u.Filter) > 0 {
		filter, err := expression.Unmarshal(u.Filter)
		if err != nil {
			return err
		}
		this.filter = filter
	}
	return nil
}
