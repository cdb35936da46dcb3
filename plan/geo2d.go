package plan

import (
	json "github.com/couchbase/go_json"

	"github.com/arvo-db/accessplan/expression"
)

// Geo2D scans a legacy "2d" index for documents within/intersecting a
// planar region. Tightness is always Exact for the geo portion; the
// surrounding residual filter (if any) comes from merged non-geo
// predicates on the same index.
type Geo2D struct {
	readonly
	indexID int
	field   string
	region  interface{}
	filter  expression.Expr
}

func NewGeo2D(indexID int, field string, region interface{}, filter expression.Expr) *Geo2D {
	return &Geo2D{indexID: indexID, field: field, region: region, filter: filter}
}

func (this *Geo2D) Accept(visitor Visitor) (interface{}, error) { return visitor.VisitGeo2D(this) }
func (this *Geo2D) New() Operator                               { return &Geo2D{} }

func (this *Geo2D) IndexID() int              { return this.indexID }
func (this *Geo2D) Field() string             { return this.field }
func (this *Geo2D) Filter() expression.Expr   { return this.filter }
func (this *Geo2D) SetFilter(f expression.Expr) { this.filter = f }

func (this *Geo2D) MarshalJSON() ([]byte, error) {
	r := map[string]interface{}{"#operator": "Geo2D", "index": this.indexID, "field": this.field}
	if this.filter != nil {
		fm, err := expression.Marshal(this.filter)
		if err != nil {
			return nil, err
		}
		r["filter"] = json.RawMessage(fm)
	}
	return json.Marshal(r)
}

func (this *Geo2D) UnmarshalJSON(body []byte) error {
	var u struct {
		Index  int             `json:"index"`
		Field  string          `json:"field"`
		Filter json.RawMessage `json:"filter"`
	}
	if err := json.Unmarshal(body, &u); err != nil {
		return err
	}
	this.indexID, this.field = u.Index, u.Field
	if len(u.Filter) > 0 {
		filter, err := expression.Unmarshal(u.Filter)
		if err != nil {
			return err
		}
		this.filter = filter
	}
	return nil
}
