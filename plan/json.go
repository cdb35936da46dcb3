package plan

import (
	json "github.com/couchbase/go_json"
)

// MakeOperator reconstructs a concrete Operator from its "#operator" tag
// and raw JSON body, the dispatch every composite node's UnmarshalJSON
// routes its children through.
func MakeOperator(name string, body []byte) (Operator, error) {
	var op Operator
	switch name {
	case "CollectionScan":
		op = &CollectionScan{}
	case "IndexScan":
		op = &IndexScan{}
	case "Geo2D":
		op = &Geo2D{}
	case "GeoNear2DSphere":
		op = &GeoNear2DSphere{}
	case "Text":
		op = &Text{}
	case "Fetch":
		op = &Fetch{}
	case "AndHash":
		op = &AndHash{}
	case "AndSorted":
		op = &AndSorted{}
	case "Or":
		op = &Or{}
	case "MergeSort":
		op = &MergeSort{}
	default:
		return nil, errInvariant("plan.MakeOperator: unknown #operator " + name)
	}

	if err := json.Unmarshal(body, op); err != nil {
		return nil, err
	}
	return op, nil
}

func unmarshalOperandList(raw json.RawMessage) ([]Operator, error) {
	var rawScans []json.RawMessage
	if err := json.Unmarshal(raw, &rawScans); err != nil {
		return nil, err
	}
	out := make([]Operator, 0, len(rawScans))
	for _, r := range rawScans {
		var t struct {
			Operator string `json:"#operator"`
		}
		if err := json.Unmarshal(r, &t); err != nil {
			return nil, err
		}
		op, err := MakeOperator(t.Operator, r)
		if err != nil {
			return nil, err
		}
		out = append(out, op)
	}
	return out, nil
}

type invariantErr string

func (e invariantErr) Error() string { return string(e) }
func errInvariant(msg string) error  { return invariantErr(msg) }
