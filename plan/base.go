// Package plan implements the closed family of query-solution-tree node
// types: CollectionScan, IndexScan, Geo2D, GeoNear2DSphere, Text, Fetch,
// AndHash, AndSorted, Or, and MergeSort. Each node implements Operator
// with an Accept/New/MarshalJSON/UnmarshalJSON polymorphic-dispatch
// convention, keyed by a "#operator" JSON tag (see json.go/MakeOperator).
package plan

import (
	json "github.com/couchbase/go_json"
)

// Operator is any node of the solution tree.
type Operator interface {
	json.Marshaler
	json.Unmarshaler
	Accept(visitor Visitor) (interface{}, error)
	New() Operator
}

// readonly is embedded by every node in this family: the planner never
// produces a node that mutates storage.
type readonly struct{}

func (readonly) Readonly() bool { return true }
