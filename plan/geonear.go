package plan

import (
	json "github.com/couchbase/go_json"

	"github.com/arvo-db/accessplan/bounds"
	"github.com/arvo-db/accessplan/expression"
	"github.com/arvo-db/accessplan/geo"
	"github.com/arvo-db/accessplan/index"
)

// GeoNear2DSphere scans a "2dsphere" index ordered by distance from a
// center point. baseBounds carries any compound-key equality bounds
// (e.g. a trailing `x:1` key) merged onto the leaf alongside the near
// query; unbound positions are filled with all-values by the finisher.
type GeoNear2DSphere struct {
	readonly
	indexID      int
	nearField    string
	centerLat    float64
	centerLng    float64
	maxDistance  float64
	nearQuery    geo.NearQuery
	baseBounds   bounds.IndexBounds
	addPointMeta bool
	addDistMeta  bool
	filter       expression.Expr
}

func NewGeoNear2DSphere(indexID int, field string, lat, lng, maxDistance float64, baseBounds bounds.IndexBounds, addPointMeta, addDistMeta bool, filter expression.Expr) *GeoNear2DSphere {
	return &GeoNear2DSphere{
		indexID: indexID, nearField: field, centerLat: lat, centerLng: lng, maxDistance: maxDistance,
		nearQuery:  geo.NewNearQuery(lat, lng, maxDistance),
		baseBounds: baseBounds, addPointMeta: addPointMeta, addDistMeta: addDistMeta, filter: filter,
	}
}

func (this *GeoNear2DSphere) Accept(visitor Visitor) (interface{}, error) {
	return visitor.VisitGeoNear2DSphere(this)
}
func (this *GeoNear2DSphere) New() Operator { return &GeoNear2DSphere{} }

func (this *GeoNear2DSphere) IndexID() int                       { return this.indexID }
func (this *GeoNear2DSphere) NearQuery() geo.NearQuery           { return this.nearQuery }
func (this *GeoNear2DSphere) BaseBounds() bounds.IndexBounds     { return this.baseBounds }
func (this *GeoNear2DSphere) SetBaseBounds(b bounds.IndexBounds) { this.baseBounds = b }
func (this *GeoNear2DSphere) Filter() expression.Expr            { return this.filter }
func (this *GeoNear2DSphere) SetFilter(f expression.Expr)        { this.filter = f }

// Direction is always forward: a near scan emits in distance order, so
// its base bounds are never reversed by the finisher.
func (this *GeoNear2DSphere) Direction() index.Direction { return index.Ascending }

func (this *GeoNear2DSphere) AddPointMeta() bool { return this.addPointMeta }
func (this *GeoNear2DSphere) AddDistMeta() bool  { return this.addDistMeta }

func (this *GeoNear2DSphere) MarshalJSON() ([]byte, error) {
	fields := make([]map[string]interface{}, len(this.baseBounds.Fields))
	for i, f := range this.baseBounds.Fields {
		fields[i] = map[string]interface{}{"name": f.Name, "count": len(f.Intervals)}
	}
	r := map[string]interface{}{
		"#operator":   "GeoNear2DSphere",
		"index":       this.indexID,
		"field":       this.nearField,
		"lat":         this.centerLat,
		"lng":         this.centerLng,
		"maxDistance": this.maxDistance,
		"baseBounds":  fields,
		"addPointMeta": this.addPointMeta,
		"addDistMeta":  this.addDistMeta,
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

func (this *GeoNear2DSphere) UnmarshalJSON(body []byte) error {
	var u struct {
		Index       int    `json:"index"`
		Field       string `json:"field"`
		Lat, Lng    float64
		MaxDistance float64         `json:"maxDistance"`
		AddPoint    bool            `json:"addPointMeta"`
		AddDist     bool            `json:"addDistMeta"`
		Filter      json.RawMessage `json:"filter"`
	}
	if err := json.Unmarshal(body, &u); err != nil {
		return err
	}
	this.indexID, this.nearField = u.Index, u.Field
	this.centerLat, this.centerLng, this.maxDistance = u.Lat, u.Lng, u.MaxDistance
	this.nearQuery = geo.NewNearQuery(u.Lat, u.Lng, u.MaxDistance)
	this.addPointMeta, this.addDistMeta = u.AddPoint, u.AddDist
	if len(u.Filter) > 0 {
		filter, err := expression.Unmarshal(u.Filter)
		if err != nil {
			return err
		}
		this.filter = filter
	}
	return nil
}
