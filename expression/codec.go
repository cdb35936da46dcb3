package expression

import (
	json "github.com/couchbase/go_json"

	"github.com/arvo-db/accessplan/value"
)

// Marshal and Unmarshal round-trip an Expr through a "#expr"-tagged
// envelope, mirroring the plan package's "#operator"-tagged polymorphic
// node dispatch (see plan/json.go's MakeOperator). Kept separate from each
// node's own MarshalJSON (used for debug String()) so that every node can
// be reconstructed by Unmarshal without a second, parallel type registry.
func Marshal(e Expr) ([]byte, error) {
	if e == nil {
		return json.Marshal(nil)
	}
	m := envelope(e)
	return json.Marshal(m)
}

func envelope(e Expr) map[string]interface{} {
	var m map[string]interface{}
	switch n := e.(type) {
	case *FieldComparison:
		m = map[string]interface{}{"#expr": "FieldComparison", "field": n.Field, "op": n.Op.String(), "value": n.Value.Actual()}
	case *Regex:
		m = map[string]interface{}{"#expr": "Regex", "field": n.Field, "pattern": n.Pattern, "options": n.Options}
	case *TypeMatch:
		m = map[string]interface{}{"#expr": "TypeMatch", "field": n.Field, "type": int(n.Type)}
	case *Exists:
		m = map[string]interface{}{"#expr": "Exists", "field": n.Field, "negate": n.Negate}
	case *Mod:
		m = map[string]interface{}{"#expr": "Mod", "field": n.Field, "divisor": n.Divisor, "remainder": n.Remainder}
	case *In:
		vals := make([]interface{}, len(n.Values))
		for i, v := range n.Values {
			vals[i] = v.Actual()
		}
		m = map[string]interface{}{"#expr": "In", "field": n.Field, "values": vals}
	case *Not:
		return map[string]interface{}{"#expr": "Not", "child": envelope(n.Child)}
	case *And:
		return map[string]interface{}{"#expr": "And", "operands": envelopeSlice(n.Operands)}
	case *Or:
		return map[string]interface{}{"#expr": "Or", "operands": envelopeSlice(n.Operands)}
	case *Geo:
		m = map[string]interface{}{"#expr": "Geo", "field": n.Field}
	case *GeoNear:
		m = map[string]interface{}{"#expr": "GeoNear", "field": n.Field, "lat": n.CenterLat, "lng": n.CenterLng, "maxDistance": n.MaxDistance}
	case *Text:
		m = map[string]interface{}{"#expr": "Text", "query": n.Query, "language": n.Language}
	case *ElemMatchObject:
		return map[string]interface{}{"#expr": "ElemMatchObject", "field": n.Field, "children": envelopeSlice(n.Children_)}
	case *ElemMatchValue:
		m = map[string]interface{}{"#expr": "ElemMatchValue", "field": n.Field, "children": envelopeSlice(n.Children_)}
	case *All:
		return map[string]interface{}{"#expr": "All", "field": n.Field, "subs": envelopeSlice(n.Subs)}
	default:
		return map[string]interface{}{"#expr": "unknown"}
	}
	// Only bounds-generating leaves carry a tag directly (logical and
	// array-operator nodes either have no tag of their own or, for Not,
	// delegate to a child whose own envelope already carries it).
	if tag := e.Tag(); tag != nil {
		m["tag"] = map[string]interface{}{"index": tag.Index, "pos": tag.Pos}
	}
	return m
}

func envelopeSlice(es []Expr) []map[string]interface{} {
	out := make([]map[string]interface{}, len(es))
	for i, e := range es {
		out[i] = envelope(e)
	}
	return out
}

// Unmarshal reconstructs an Expr from the envelope Marshal produced.
func Unmarshal(body []byte) (Expr, error) {
	if string(body) == "null" {
		return nil, nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	return unmarshalRaw(raw)
}

func unmarshalRaw(raw map[string]json.RawMessage) (Expr, error) {
	var kind string
	if err := json.Unmarshal(raw["#expr"], &kind); err != nil {
		return nil, err
	}

	switch kind {
	case "FieldComparison":
		var field, op string
		var v interface{}
		json.Unmarshal(raw["field"], &field)
		json.Unmarshal(raw["op"], &op)
		json.Unmarshal(raw["value"], &v)
		n := &FieldComparison{Field: field, Op: parseOp(op), Value: valueFromActual(v)}
		n.SetTag(parseTag(raw))
		return n, nil
	case "Regex":
		var field, pattern, options string
		json.Unmarshal(raw["field"], &field)
		json.Unmarshal(raw["pattern"], &pattern)
		json.Unmarshal(raw["options"], &options)
		n := &Regex{Field: field, Pattern: pattern, Options: options}
		n.SetTag(parseTag(raw))
		return n, nil
	case "TypeMatch":
		var field string
		var t int
		json.Unmarshal(raw["field"], &field)
		json.Unmarshal(raw["type"], &t)
		n := &TypeMatch{Field: field, Type: value.Type(t)}
		n.SetTag(parseTag(raw))
		return n, nil
	case "Exists":
		var field string
		var negate bool
		json.Unmarshal(raw["field"], &field)
		json.Unmarshal(raw["negate"], &negate)
		n := &Exists{Field: field, Negate: negate}
		n.SetTag(parseTag(raw))
		return n, nil
	case "Mod":
		var field string
		var divisor, remainder int64
		json.Unmarshal(raw["field"], &field)
		json.Unmarshal(raw["divisor"], &divisor)
		json.Unmarshal(raw["remainder"], &remainder)
		n := &Mod{Field: field, Divisor: divisor, Remainder: remainder}
		n.SetTag(parseTag(raw))
		return n, nil
	case "In":
		var field string
		var vals []interface{}
		json.Unmarshal(raw["field"], &field)
		json.Unmarshal(raw["values"], &vals)
		vs := make([]value.Value, len(vals))
		for i, v := range vals {
			vs[i] = valueFromActual(v)
		}
		n := &In{Field: field, Values: vs}
		n.SetTag(parseTag(raw))
		return n, nil
	case "Not":
		var childRaw map[string]json.RawMessage
		json.Unmarshal(raw["child"], &childRaw)
		child, err := unmarshalRaw(childRaw)
		if err != nil {
			return nil, err
		}
		return &Not{Child: child}, nil
	case "And":
		ops, err := unmarshalSlice(raw["operands"])
		if err != nil {
			return nil, err
		}
		return &And{Operands: ops}, nil
	case "Or":
		ops, err := unmarshalSlice(raw["operands"])
		if err != nil {
			return nil, err
		}
		return &Or{Operands: ops}, nil
	case "Geo":
		var field string
		json.Unmarshal(raw["field"], &field)
		n := &Geo{Field: field}
		n.SetTag(parseTag(raw))
		return n, nil
	case "GeoNear":
		var field string
		var lat, lng, maxDistance float64
		json.Unmarshal(raw["field"], &field)
		json.Unmarshal(raw["lat"], &lat)
		json.Unmarshal(raw["lng"], &lng)
		json.Unmarshal(raw["maxDistance"], &maxDistance)
		n := &GeoNear{Field: field, CenterLat: lat, CenterLng: lng, MaxDistance: maxDistance}
		n.SetTag(parseTag(raw))
		return n, nil
	case "Text":
		var query, language string
		json.Unmarshal(raw["query"], &query)
		json.Unmarshal(raw["language"], &language)
		n := &Text{Query: query, Language: language}
		n.SetTag(parseTag(raw))
		return n, nil
	case "ElemMatchObject":
		var field string
		json.Unmarshal(raw["field"], &field)
		children, err := unmarshalSlice(raw["children"])
		if err != nil {
			return nil, err
		}
		return &ElemMatchObject{Field: field, Children_: children}, nil
	case "ElemMatchValue":
		var field string
		json.Unmarshal(raw["field"], &field)
		children, err := unmarshalSlice(raw["children"])
		if err != nil {
			return nil, err
		}
		n := &ElemMatchValue{Field: field, Children_: children}
		n.SetTag(parseTag(raw))
		return n, nil
	case "All":
		var field string
		json.Unmarshal(raw["field"], &field)
		subs, err := unmarshalSlice(raw["subs"])
		if err != nil {
			return nil, err
		}
		return &All{Field: field, Subs: subs}, nil
	default:
		return nil, errInvariant("expression.Unmarshal: unknown #expr kind " + kind)
	}
}

func parseTag(raw map[string]json.RawMessage) *IndexTag {
	rawTag, ok := raw["tag"]
	if !ok || string(rawTag) == "null" {
		return nil
	}
	var t struct {
		Index int `json:"index"`
		Pos   int `json:"pos"`
	}
	if err := json.Unmarshal(rawTag, &t); err != nil {
		return nil
	}
	return &IndexTag{Index: t.Index, Pos: t.Pos}
}

func unmarshalSlice(raw json.RawMessage) ([]Expr, error) {
	var rawList []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &rawList); err != nil {
		return nil, err
	}
	out := make([]Expr, len(rawList))
	for i, r := range rawList {
		e, err := unmarshalRaw(r)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func parseOp(s string) Op {
	switch s {
	case "$eq":
		return EQ
	case "$lt":
		return LT
	case "$lte":
		return LTE
	case "$gt":
		return GT
	case "$gte":
		return GTE
	default:
		return EQ
	}
}

func valueFromActual(raw interface{}) value.Value {
	switch r := raw.(type) {
	case nil:
		return value.NewNull()
	case bool:
		return value.NewBoolean(r)
	case float64:
		return value.NewNumber(r)
	case string:
		return value.NewString(r)
	case []interface{}:
		vs := make([]value.Value, len(r))
		for i, e := range r {
			vs[i] = valueFromActual(e)
		}
		return value.NewArray(vs)
	default:
		return value.NewMissing()
	}
}

type invariantErr string

func (e invariantErr) Error() string { return string(e) }
func errInvariant(msg string) error  { return invariantErr(msg) }
