// Package expression implements the canonical predicate tree consumed by the
// planner: a closed family of leaf comparisons, geometric and text
// predicates, logical connectives, and array operators, each optionally
// tagged with the index and key position an upstream plan enumerator has
// already chosen for it.
package expression

import (
	json "github.com/couchbase/go_json"

	"github.com/arvo-db/accessplan/value"
)

// Expr is the interface implemented by every predicate tree node.
type Expr interface {
	json.Marshaler
	String() string
	Accept(v Visitor) (interface{}, error)

	// Tag returns this node's IndexTag, or nil if untagged. A Not node
	// returns its child's tag.
	Tag() *IndexTag
	SetTag(tag *IndexTag)

	// Children returns this node's direct operand list, or nil for leaves.
	Children() []Expr
	// SetChildren replaces this node's operand list in place.
	SetChildren(children []Expr)

	// Clone returns a deep copy, used when a predicate branch must be
	// duplicated into a filter without aliasing the original tree.
	Clone() Expr
}

// IndexTag names the index and key position a plan enumerator has assigned
// to a leaf predicate. NoIndex means the enumerator left this leaf untagged.
const NoIndex = -1

type IndexTag struct {
	Index int // index into the planner's []index.Entry, or NoIndex
	Pos   int // key position within that index's KeyPattern
}

// Visitor dispatches over the closed Expr family. Every concrete node type
// has exactly one corresponding Visit method; FieldComparison covers EQ, LT,
// LTE, GT and GTE via an Op discriminant to avoid five near-identical node
// types.
type Visitor interface {
	VisitFieldComparison(e *FieldComparison) (interface{}, error)
	VisitRegex(e *Regex) (interface{}, error)
	VisitTypeMatch(e *TypeMatch) (interface{}, error)
	VisitExists(e *Exists) (interface{}, error)
	VisitMod(e *Mod) (interface{}, error)
	VisitIn(e *In) (interface{}, error)
	VisitNot(e *Not) (interface{}, error)
	VisitAnd(e *And) (interface{}, error)
	VisitOr(e *Or) (interface{}, error)
	VisitGeo(e *Geo) (interface{}, error)
	VisitGeoNear(e *GeoNear) (interface{}, error)
	VisitText(e *Text) (interface{}, error)
	VisitElemMatchObject(e *ElemMatchObject) (interface{}, error)
	VisitElemMatchValue(e *ElemMatchValue) (interface{}, error)
	VisitAll(e *All) (interface{}, error)
}

// base is embedded by every concrete node to provide the Tag bookkeeping
// common to the whole family.
type base struct {
	tag *IndexTag
}

func (b *base) Tag() *IndexTag     { return b.tag }
func (b *base) SetTag(t *IndexTag) { b.tag = t }

// Op is the comparison kind carried by a FieldComparison leaf.
type Op int

const (
	EQ Op = iota
	LT
	LTE
	GT
	GTE
)

func (o Op) String() string {
	switch o {
	case EQ:
		return "$eq"
	case LT:
		return "$lt"
	case LTE:
		return "$lte"
	case GT:
		return "$gt"
	case GTE:
		return "$gte"
	default:
		return "$unknown"
	}
}

// FieldComparison is a leaf predicate of the form `field OP value`.
type FieldComparison struct {
	base
	Field string
	Op    Op
	Value value.Value
}

func NewFieldComparison(field string, op Op, v value.Value) *FieldComparison {
	return &FieldComparison{Field: field, Op: op, Value: v}
}

func (e *FieldComparison) Accept(v Visitor) (interface{}, error) { return v.VisitFieldComparison(e) }
func (e *FieldComparison) Children() []Expr                      { return nil }
func (e *FieldComparison) SetChildren(c []Expr)                  {}
func (e *FieldComparison) Clone() Expr {
	cp := *e
	cp.tag = cloneTag(e.tag)
	return &cp
}
func (e *FieldComparison) String() string {
	s, _ := e.MarshalJSON()
	return string(s)
}
func (e *FieldComparison) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"field": e.Field,
		"op":    e.Op.String(),
		"value": e.Value.Actual(),
	})
}

// Regex matches a field against a regular expression.
type Regex struct {
	base
	Field   string
	Pattern string
	Options string
}

func NewRegex(field, pattern, options string) *Regex {
	return &Regex{Field: field, Pattern: pattern, Options: options}
}
func (e *Regex) Accept(v Visitor) (interface{}, error) { return v.VisitRegex(e) }
func (e *Regex) Children() []Expr                      { return nil }
func (e *Regex) SetChildren(c []Expr)                  {}
func (e *Regex) Clone() Expr                           { cp := *e; cp.tag = cloneTag(e.tag); return &cp }
func (e *Regex) String() string                        { s, _ := e.MarshalJSON(); return string(s) }
func (e *Regex) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{"field": e.Field, "regex": e.Pattern, "options": e.Options})
}

// TypeMatch matches a field's runtime BSON-like type.
type TypeMatch struct {
	base
	Field string
	Type  value.Type
}

func NewTypeMatch(field string, t value.Type) *TypeMatch { return &TypeMatch{Field: field, Type: t} }
func (e *TypeMatch) Accept(v Visitor) (interface{}, error) { return v.VisitTypeMatch(e) }
func (e *TypeMatch) Children() []Expr                      { return nil }
func (e *TypeMatch) SetChildren(c []Expr)                  {}
func (e *TypeMatch) Clone() Expr                           { cp := *e; cp.tag = cloneTag(e.tag); return &cp }
func (e *TypeMatch) String() string                        { s, _ := e.MarshalJSON(); return string(s) }
func (e *TypeMatch) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{"field": e.Field, "type": e.Type.String()})
}

// Exists matches documents where Field is present (or absent, if Negate).
type Exists struct {
	base
	Field  string
	Negate bool
}

func NewExists(field string, negate bool) *Exists { return &Exists{Field: field, Negate: negate} }
func (e *Exists) Accept(v Visitor) (interface{}, error) { return v.VisitExists(e) }
func (e *Exists) Children() []Expr                      { return nil }
func (e *Exists) SetChildren(c []Expr)                  {}
func (e *Exists) Clone() Expr                           { cp := *e; cp.tag = cloneTag(e.tag); return &cp }
func (e *Exists) String() string                        { s, _ := e.MarshalJSON(); return string(s) }
func (e *Exists) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{"field": e.Field, "exists": !e.Negate})
}

// Mod matches `field % divisor == remainder`.
type Mod struct {
	base
	Field     string
	Divisor   int64
	Remainder int64
}

func NewMod(field string, divisor, remainder int64) *Mod {
	return &Mod{Field: field, Divisor: divisor, Remainder: remainder}
}
func (e *Mod) Accept(v Visitor) (interface{}, error) { return v.VisitMod(e) }
func (e *Mod) Children() []Expr                      { return nil }
func (e *Mod) SetChildren(c []Expr)                  {}
func (e *Mod) Clone() Expr                           { cp := *e; cp.tag = cloneTag(e.tag); return &cp }
func (e *Mod) String() string                        { s, _ := e.MarshalJSON(); return string(s) }
func (e *Mod) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{"field": e.Field, "mod": []int64{e.Divisor, e.Remainder}})
}

// In matches `field` against a set of candidate values.
type In struct {
	base
	Field  string
	Values []value.Value
}

func NewIn(field string, values []value.Value) *In { return &In{Field: field, Values: values} }
func (e *In) Accept(v Visitor) (interface{}, error) { return v.VisitIn(e) }
func (e *In) Children() []Expr                      { return nil }
func (e *In) SetChildren(c []Expr)                  {}
func (e *In) Clone() Expr {
	cp := *e
	cp.tag = cloneTag(e.tag)
	cp.Values = append([]value.Value(nil), e.Values...)
	return &cp
}
func (e *In) String() string { s, _ := e.MarshalJSON(); return string(s) }
func (e *In) MarshalJSON() ([]byte, error) {
	vals := make([]interface{}, len(e.Values))
	for i, v := range e.Values {
		vals[i] = v.Actual()
	}
	return json.Marshal(map[string]interface{}{"field": e.Field, "in": vals})
}

// Not negates its single child. Tag() delegates to the child so that
// a NOT over a tagged comparison plans through that tag.
type Not struct {
	base
	Child Expr
}

func NewNot(child Expr) *Not { return &Not{Child: child} }
func (e *Not) Accept(v Visitor) (interface{}, error) { return v.VisitNot(e) }
func (e *Not) Children() []Expr                      { return []Expr{e.Child} }
func (e *Not) SetChildren(c []Expr) {
	if len(c) == 1 {
		e.Child = c[0]
	}
}
func (e *Not) Clone() Expr { return &Not{Child: e.Child.Clone()} }
func (e *Not) String() string { s, _ := e.MarshalJSON(); return string(s) }
func (e *Not) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{"not": e.Child})
}
func (e *Not) Tag() *IndexTag { return e.Child.Tag() }
func (e *Not) SetTag(t *IndexTag) { e.Child.SetTag(t) }

// And is a conjunction of children; children may be detached and
// reattached freely by the planner as predicates are absorbed into scans.
type And struct {
	base
	Operands []Expr
}

func NewAnd(operands ...Expr) *And { return &And{Operands: operands} }
func (e *And) Accept(v Visitor) (interface{}, error) { return v.VisitAnd(e) }
func (e *And) Children() []Expr                      { return e.Operands }
func (e *And) SetChildren(c []Expr)                  { e.Operands = c }
func (e *And) Clone() Expr {
	cp := make([]Expr, len(e.Operands))
	for i, o := range e.Operands {
		cp[i] = o.Clone()
	}
	return &And{Operands: cp}
}
func (e *And) String() string { s, _ := e.MarshalJSON(); return string(s) }
func (e *And) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{"and": e.Operands})
}

// Or is a disjunction; every branch of an Or must end up independently
// indexed or the planner fails (see buildIndexedOr).
type Or struct {
	base
	Operands []Expr
}

func NewOr(operands ...Expr) *Or { return &Or{Operands: operands} }
func (e *Or) Accept(v Visitor) (interface{}, error) { return v.VisitOr(e) }
func (e *Or) Children() []Expr                      { return e.Operands }
func (e *Or) SetChildren(c []Expr)                  { e.Operands = c }
func (e *Or) Clone() Expr {
	cp := make([]Expr, len(e.Operands))
	for i, o := range e.Operands {
		cp[i] = o.Clone()
	}
	return &Or{Operands: cp}
}
func (e *Or) String() string { s, _ := e.MarshalJSON(); return string(s) }
func (e *Or) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{"or": e.Operands})
}

// Geo matches a field against a geometric region (within/intersects).
type Geo struct {
	base
	Field  string
	Region interface{} // opaque region descriptor owned by the geo package
}

func NewGeo(field string, region interface{}) *Geo { return &Geo{Field: field, Region: region} }
func (e *Geo) Accept(v Visitor) (interface{}, error) { return v.VisitGeo(e) }
func (e *Geo) Children() []Expr                      { return nil }
func (e *Geo) SetChildren(c []Expr)                  {}
func (e *Geo) Clone() Expr                           { cp := *e; cp.tag = cloneTag(e.tag); return &cp }
func (e *Geo) String() string                        { s, _ := e.MarshalJSON(); return string(s) }
func (e *Geo) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{"field": e.Field, "geo": "region"})
}

// GeoNear requests documents ordered by distance from Center within
// MaxDistance (meters), against a field indexed with a 2dsphere key.
type GeoNear struct {
	base
	Field       string
	CenterLat   float64
	CenterLng   float64
	MaxDistance float64
}

func NewGeoNear(field string, lat, lng, maxDistance float64) *GeoNear {
	return &GeoNear{Field: field, CenterLat: lat, CenterLng: lng, MaxDistance: maxDistance}
}
func (e *GeoNear) Accept(v Visitor) (interface{}, error) { return v.VisitGeoNear(e) }
func (e *GeoNear) Children() []Expr                      { return nil }
func (e *GeoNear) SetChildren(c []Expr)                  {}
func (e *GeoNear) Clone() Expr                           { cp := *e; cp.tag = cloneTag(e.tag); return &cp }
func (e *GeoNear) String() string                        { s, _ := e.MarshalJSON(); return string(s) }
func (e *GeoNear) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"field": e.Field, "near": []float64{e.CenterLat, e.CenterLng}, "maxDistance": e.MaxDistance,
	})
}

// Text is a full-text search predicate against a text index.
type Text struct {
	base
	Query    string
	Language string
}

func NewText(query, language string) *Text { return &Text{Query: query, Language: language} }
func (e *Text) Accept(v Visitor) (interface{}, error) { return v.VisitText(e) }
func (e *Text) Children() []Expr                      { return nil }
func (e *Text) SetChildren(c []Expr)                  {}
func (e *Text) Clone() Expr                           { cp := *e; cp.tag = cloneTag(e.tag); return &cp }
func (e *Text) String() string                        { s, _ := e.MarshalJSON(); return string(s) }
func (e *Text) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{"$text": map[string]string{"$search": e.Query, "$language": e.Language}})
}

// ElemMatchObject requires a single array element of Field to satisfy every
// child predicate jointly (the object form of $elemMatch).
type ElemMatchObject struct {
	base
	Field    string
	Children_ []Expr
}

func NewElemMatchObject(field string, children ...Expr) *ElemMatchObject {
	return &ElemMatchObject{Field: field, Children_: children}
}
func (e *ElemMatchObject) Accept(v Visitor) (interface{}, error) { return v.VisitElemMatchObject(e) }
func (e *ElemMatchObject) Children() []Expr                      { return e.Children_ }
func (e *ElemMatchObject) SetChildren(c []Expr)                  { e.Children_ = c }
func (e *ElemMatchObject) Clone() Expr {
	cp := make([]Expr, len(e.Children_))
	for i, c := range e.Children_ {
		cp[i] = c.Clone()
	}
	return &ElemMatchObject{Field: e.Field, Children_: cp}
}
func (e *ElemMatchObject) String() string { s, _ := e.MarshalJSON(); return string(s) }
func (e *ElemMatchObject) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{"field": e.Field, "elemMatchObject": e.Children_})
}

// ElemMatchValue requires a single array element of Field to satisfy every
// child predicate, each of which constrains the element's scalar value
// directly (the value form of $elemMatch, e.g. {a: {$elemMatch: {$gt:1,
// $lt:5}}}).
type ElemMatchValue struct {
	base
	Field    string
	Children_ []Expr
}

func NewElemMatchValue(field string, children ...Expr) *ElemMatchValue {
	return &ElemMatchValue{Field: field, Children_: children}
}
func (e *ElemMatchValue) Accept(v Visitor) (interface{}, error) { return v.VisitElemMatchValue(e) }
func (e *ElemMatchValue) Children() []Expr                      { return e.Children_ }
func (e *ElemMatchValue) SetChildren(c []Expr)                  { e.Children_ = c }
func (e *ElemMatchValue) Clone() Expr {
	cp := make([]Expr, len(e.Children_))
	for i, c := range e.Children_ {
		cp[i] = c.Clone()
	}
	return &ElemMatchValue{Field: e.Field, Children_: cp}
}
func (e *ElemMatchValue) String() string { s, _ := e.MarshalJSON(); return string(s) }
func (e *ElemMatchValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{"field": e.Field, "elemMatchValue": e.Children_})
}

// All requires every element of a list to appear in Field's array.
type All struct {
	base
	Field string
	Subs  []Expr // one indexed sub-clause per required element
}

func NewAll(field string, subs ...Expr) *All { return &All{Field: field, Subs: subs} }
func (e *All) Accept(v Visitor) (interface{}, error) { return v.VisitAll(e) }
func (e *All) Children() []Expr                      { return e.Subs }
func (e *All) SetChildren(c []Expr)                  { e.Subs = c }
func (e *All) Clone() Expr {
	cp := make([]Expr, len(e.Subs))
	for i, c := range e.Subs {
		cp[i] = c.Clone()
	}
	return &All{Field: e.Field, Subs: cp}
}
func (e *All) String() string { s, _ := e.MarshalJSON(); return string(s) }
func (e *All) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{"field": e.Field, "all": e.Subs})
}

func cloneTag(t *IndexTag) *IndexTag {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}
