package plan

// Visitor dispatches over the closed Operator family.
type Visitor interface {
	VisitCollectionScan(op *CollectionScan) (interface{}, error)
	VisitIndexScan(op *IndexScan) (interface{}, error)
	VisitGeo2D(op *Geo2D) (interface{}, error)
	VisitGeoNear2DSphere(op *GeoNear2DSphere) (interface{}, error)
	VisitText(op *Text) (interface{}, error)
	VisitFetch(op *Fetch) (interface{}, error)
	VisitAndHash(op *AndHash) (interface{}, error)
	VisitAndSorted(op *AndSorted) (interface{}, error)
	VisitOr(op *Or) (interface{}, error)
	VisitMergeSort(op *MergeSort) (interface{}, error)
}
