package plan

import (
	json "github.com/couchbase/go_json"

	"github.com/arvo-db/accessplan/bounds"
	"github.com/arvo-db/accessplan/expression"
	"github.com/arvo-db/accessplan/index"
	"github.com/arvo-db/accessplan/value"
)

// IndexScan is an ordinary btree index scan leaf: the per-position bound
// list, an optional residual filter attached by the scan collector's
// early-filter optimization, and the direction the scan is aligned to.
type IndexScan struct {
	readonly
	indexID         int
	indexKeyPattern []index.KeyElement
	multikey        bool
	bounds          bounds.IndexBounds
	direction       index.Direction
	filter          expression.Expr
}

func NewIndexScan(indexID int, keyPattern []index.KeyElement, multikey bool, b bounds.IndexBounds, direction index.Direction, filter expression.Expr) *IndexScan {
	return &IndexScan{
		indexID: indexID, indexKeyPattern: keyPattern, multikey: multikey,
		bounds: b, direction: direction, filter: filter,
	}
}

func (this *IndexScan) Accept(visitor Visitor) (interface{}, error) {
	return visitor.VisitIndexScan(this)
}

func (this *IndexScan) New() Operator { return &IndexScan{} }

func (this *IndexScan) IndexID() int                  { return this.indexID }
func (this *IndexScan) KeyPattern() []index.KeyElement { return this.indexKeyPattern }
func (this *IndexScan) Multikey() bool                 { return this.multikey }
func (this *IndexScan) Bounds() bounds.IndexBounds     { return this.bounds }
func (this *IndexScan) SetBounds(b bounds.IndexBounds) { this.bounds = b }
func (this *IndexScan) Direction() index.Direction     { return this.direction }
func (this *IndexScan) Filter() expression.Expr        { return this.filter }
func (this *IndexScan) SetFilter(f expression.Expr)    { this.filter = f }

func (this *IndexScan) MarshalJSON() ([]byte, error) {
	fields := make([]map[string]interface{}, len(this.bounds.Fields))
	for i, f := range this.bounds.Fields {
		ivs := make([]map[string]interface{}, len(f.Intervals))
		for j, iv := range f.Intervals {
			ivs[j] = map[string]interface{}{
				"low": iv.Low.Actual(), "high": iv.High.Actual(),
				"lowUnbounded": iv.LowUnbounded, "highUnbounded": iv.HighUnbounded,
				"lowIncl": iv.Inclusion.LowIncluded(), "highIncl": iv.Inclusion.HighIncluded(),
			}
		}
		fields[i] = map[string]interface{}{"name": f.Name, "intervals": ivs}
	}

	r := map[string]interface{}{
		"#operator": "IndexScan",
		"index":     this.indexID,
		"multikey":  this.multikey,
		"direction": int(this.direction),
		"bounds":    fields,
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

func (this *IndexScan) UnmarshalJSON(body []byte) error {
	var u struct {
		Index     int  `json:"index"`
		Multikey  bool `json:"multikey"`
		Direction int  `json:"direction"`
		Bounds    []struct {
			Name      string `json:"name"`
			Intervals []struct {
				Low, High                   interface{}
				LowUnbounded, HighUnbounded bool
				LowIncl, HighIncl           bool
			} `json:"intervals"`
		} `json:"bounds"`
		Filter json.RawMessage `json:"filter"`
	}
	if err := json.Unmarshal(body, &u); err != nil {
		return err
	}
	this.indexID = u.Index
	this.multikey = u.Multikey
	this.direction = index.Direction(u.Direction)
	this.bounds = bounds.IndexBounds{Fields: make([]bounds.OrderedIntervalList, len(u.Bounds))}
	for i, f := range u.Bounds {
		ivs := make([]bounds.Interval, len(f.Intervals))
		for j, iv := range f.Intervals {
			ivs[j] = bounds.Range(valueOf(iv.Low), iv.LowIncl, valueOf(iv.High), iv.HighIncl)
			ivs[j].LowUnbounded, ivs[j].HighUnbounded = iv.LowUnbounded, iv.HighUnbounded
		}
		this.bounds.Fields[i] = bounds.OrderedIntervalList{Name: f.Name, Intervals: ivs}
	}
	if len(u.Filter) > 0 {
		filter, err := expression.Unmarshal(u.Filter)
		if err != nil {
			return err
		}
		this.filter = filter
	}
	return nil
}

// valueOf converts a decoded JSON scalar back into a value.Value, used by
// every solution-node UnmarshalJSON that stores bound endpoints.
func valueOf(raw interface{}) value.Value {
	switch r := raw.(type) {
	case nil:
		return value.NewNull()
	case bool:
		return value.NewBoolean(r)
	case float64:
		return value.NewNumber(r)
	case string:
		return value.NewString(r)
	default:
		return value.NewMissing()
	}
}
