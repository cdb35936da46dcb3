// Package value implements the small scalar value model used to represent
// index bound endpoints and text index-prefix field values.
package value

import (
	json "github.com/couchbase/go_json"
)

// Type is the type of a Value, ordered so that comparing two Types'
// numeric value gives the document's total collation order across types.
type Type int

const (
	MISSING Type = iota
	NULL
	BOOLEAN
	NUMBER
	STRING
	ARRAY
)

func (t Type) String() string {
	switch t {
	case MISSING:
		return "missing"
	case NULL:
		return "null"
	case BOOLEAN:
		return "boolean"
	case NUMBER:
		return "number"
	case STRING:
		return "string"
	case ARRAY:
		return "array"
	default:
		return "unknown"
	}
}

// Value is an immutable scalar or array value. The zero Value is MISSING.
type Value struct {
	typ  Type
	num  float64
	str  string
	bl   bool
	arr  []Value
}

func NewMissing() Value { return Value{typ: MISSING} }
func NewNull() Value    { return Value{typ: NULL} }

func NewBoolean(b bool) Value {
	return Value{typ: BOOLEAN, bl: b}
}

func NewNumber(n float64) Value {
	return Value{typ: NUMBER, num: n}
}

func NewString(s string) Value {
	return Value{typ: STRING, str: s}
}

func NewArray(vs []Value) Value {
	return Value{typ: ARRAY, arr: vs}
}

func (v Value) Type() Type { return v.typ }

func (v Value) Actual() interface{} {
	switch v.typ {
	case MISSING:
		return nil
	case NULL:
		return nil
	case BOOLEAN:
		return v.bl
	case NUMBER:
		return v.num
	case STRING:
		return v.str
	case ARRAY:
		a := make([]interface{}, len(v.arr))
		for i, e := range v.arr {
			a[i] = e.Actual()
		}
		return a
	default:
		return nil
	}
}

// Collate imposes a total order across types first, then within a type,
// collating across types in canonical document order: MISSING < NULL <
// BOOLEAN < NUMBER < STRING < ARRAY.
func Collate(a, b Value) int {
	if a.typ != b.typ {
		if a.typ < b.typ {
			return -1
		}
		return 1
	}

	switch a.typ {
	case MISSING, NULL:
		return 0
	case BOOLEAN:
		if a.bl == b.bl {
			return 0
		}
		if !a.bl {
			return -1
		}
		return 1
	case NUMBER:
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		default:
			return 0
		}
	case STRING:
		switch {
		case a.str < b.str:
			return -1
		case a.str > b.str:
			return 1
		default:
			return 0
		}
	case ARRAY:
		n := len(a.arr)
		if len(b.arr) < n {
			n = len(b.arr)
		}
		for i := 0; i < n; i++ {
			if c := Collate(a.arr[i], b.arr[i]); c != 0 {
				return c
			}
		}
		switch {
		case len(a.arr) < len(b.arr):
			return -1
		case len(a.arr) > len(b.arr):
			return 1
		default:
			return 0
		}
	default:
		return 0
	}
}

func (v Value) Equals(o Value) bool {
	return Collate(v, o) == 0
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Actual())
}

func (v *Value) UnmarshalJSON(body []byte) error {
	var raw interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return err
	}
	*v = fromActual(raw)
	return nil
}

func fromActual(raw interface{}) Value {
	switch r := raw.(type) {
	case nil:
		return NewNull()
	case bool:
		return NewBoolean(r)
	case float64:
		return NewNumber(r)
	case int64:
		return NewNumber(float64(r))
	case string:
		return NewString(r)
	case []interface{}:
		vs := make([]Value, len(r))
		for i, e := range r {
			vs[i] = fromActual(e)
		}
		return NewArray(vs)
	default:
		return NewMissing()
	}
}
