package planner

import (
	"context"
	"testing"

	"github.com/arvo-db/accessplan/bounds"
	"github.com/arvo-db/accessplan/errors"
	"github.com/arvo-db/accessplan/expression"
	"github.com/arvo-db/accessplan/index"
	"github.com/arvo-db/accessplan/plan"
	"github.com/arvo-db/accessplan/value"
)

func btreeIndex(id int, field string) index.Entry {
	return index.Entry{
		ID:         id,
		KeyPattern: []index.KeyElement{{Field: field, Kind: index.Btree, Dir: index.Ascending}},
		Type:       index.Btree,
	}
}

func tagged(e expression.Expr, idx, pos int) expression.Expr {
	e.SetTag(&expression.IndexTag{Index: idx, Pos: pos})
	return e
}

func TestPlanSingleEqualityUsesIndexScan(t *testing.T) {
	pred := tagged(expression.NewFieldComparison("a", expression.EQ, value.NewNumber(1)), 0, 0)
	query := &CanonicalQuery{Predicate: pred}
	indices := []index.Entry{btreeIndex(0, "a")}

	op, err := Plan(context.Background(), query, indices, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	scan, ok := op.(*plan.IndexScan)
	if !ok {
		t.Fatalf("expected *plan.IndexScan, got %T", op)
	}
	if scan.IndexID() != 0 {
		t.Errorf("expected index 0, got %d", scan.IndexID())
	}
	if scan.Filter() != nil {
		t.Errorf("expected no residual filter for an exact equality, got %v", scan.Filter())
	}
}

func TestPlanAndMergesBothLeavesIntoOneIndexScan(t *testing.T) {
	and := expression.NewAnd(
		tagged(expression.NewFieldComparison("a", expression.GTE, value.NewNumber(1)), 0, 0),
		tagged(expression.NewFieldComparison("a", expression.LTE, value.NewNumber(10)), 0, 0),
	)
	query := &CanonicalQuery{Predicate: and}
	indices := []index.Entry{btreeIndex(0, "a")}

	op, err := Plan(context.Background(), query, indices, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := op.(*plan.IndexScan); !ok {
		t.Fatalf("expected the two range leaves against the same key position to merge into one *plan.IndexScan, got %T", op)
	}
}

// TestPlanAndOfPointScansOnDifferentIndicesBuildsAndSorted: equality
// scans on two non-multikey indexes each visit a single key, so both are
// sorted by disk location and the intersection is a stream-merge.
func TestPlanAndOfPointScansOnDifferentIndicesBuildsAndSorted(t *testing.T) {
	and := expression.NewAnd(
		tagged(expression.NewFieldComparison("a", expression.EQ, value.NewNumber(1)), 0, 0),
		tagged(expression.NewFieldComparison("b", expression.EQ, value.NewNumber(2)), 1, 0),
	)
	query := &CanonicalQuery{Predicate: and}
	indices := []index.Entry{btreeIndex(0, "a"), btreeIndex(1, "b")}

	op, err := Plan(context.Background(), query, indices, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sorted, ok := op.(*plan.AndSorted)
	if !ok {
		t.Fatalf("expected *plan.AndSorted, got %T", op)
	}
	if len(sorted.Children()) != 2 {
		t.Errorf("expected 2 children, got %d", len(sorted.Children()))
	}
}

func TestPlanOrWithoutSortBuildsOr(t *testing.T) {
	or := expression.NewOr(
		tagged(expression.NewFieldComparison("a", expression.EQ, value.NewNumber(1)), 0, 0),
		tagged(expression.NewFieldComparison("b", expression.EQ, value.NewNumber(2)), 1, 0),
	)
	query := &CanonicalQuery{Predicate: or}
	indices := []index.Entry{btreeIndex(0, "a"), btreeIndex(1, "b")}

	op, err := Plan(context.Background(), query, indices, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := op.(*plan.Or); !ok {
		t.Fatalf("expected *plan.Or, got %T", op)
	}
}

func TestPlanUntaggedLeafIsNoIndexedPlan(t *testing.T) {
	pred := expression.NewFieldComparison("a", expression.EQ, value.NewNumber(1))
	query := &CanonicalQuery{Predicate: pred}

	_, err := Plan(context.Background(), query, nil, nil)
	perr, ok := err.(errors.Error)
	if !ok {
		t.Fatalf("expected an errors.Error, got %v", err)
	}
	if perr.Code() != errors.NoIndexedPlan {
		t.Errorf("expected NoIndexedPlan, got %v", perr.Code())
	}
}

func TestPlanNotOfLogicalNodeFallsBackToNoIndexedPlan(t *testing.T) {
	not := expression.NewNot(expression.NewAnd(
		tagged(expression.NewFieldComparison("a", expression.EQ, value.NewNumber(1)), 0, 0),
	))
	query := &CanonicalQuery{Predicate: not}
	indices := []index.Entry{btreeIndex(0, "a")}

	_, err := Plan(context.Background(), query, indices, nil)
	if !errors.IsNoIndexedPlan(err) {
		t.Fatalf("expected NoIndexedPlan for a negated logical node, got %v", err)
	}
}

func TestCollectionScanFallback(t *testing.T) {
	pred := expression.NewFieldComparison("a", expression.EQ, value.NewNumber(1))
	query := &CanonicalQuery{Predicate: pred, MaxScan: 100}

	op := CollectionScan(query, nil)
	scan, ok := op.(*plan.CollectionScan)
	if !ok {
		t.Fatalf("expected *plan.CollectionScan, got %T", op)
	}
	if scan.MaxScan() != 100 {
		t.Errorf("expected maxScan 100, got %d", scan.MaxScan())
	}
	if scan.Filter() == nil {
		t.Errorf("expected the collection scan to carry the query's predicate as its filter")
	}
}

func TestPlanReturnsContextErrorWhenCanceled(t *testing.T) {
	pred := tagged(expression.NewFieldComparison("a", expression.EQ, value.NewNumber(1)), 0, 0)
	query := &CanonicalQuery{Predicate: pred}
	indices := []index.Entry{btreeIndex(0, "a")}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Plan(ctx, query, indices, nil)
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

// TestPlanMultikeyCompoundWrapsFetch: compounding two equalities
// on a multikey index is sound (different key positions), but the result
// still needs a Fetch re-check because a multikey index can't prove the
// two equalities came from the same array element.
func TestPlanMultikeyCompoundWrapsFetch(t *testing.T) {
	and := expression.NewAnd(
		tagged(expression.NewFieldComparison("a", expression.EQ, value.NewNumber(5)), 0, 0),
		tagged(expression.NewFieldComparison("b", expression.EQ, value.NewNumber(7)), 0, 1),
	)
	query := &CanonicalQuery{Predicate: and}
	idx := index.Entry{
		ID: 0,
		KeyPattern: []index.KeyElement{
			{Field: "a", Kind: index.Btree, Dir: index.Ascending},
			{Field: "b", Kind: index.Btree, Dir: index.Ascending},
		},
		Multikey: true,
	}

	op, err := Plan(context.Background(), query, []index.Entry{idx}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fetch, ok := op.(*plan.Fetch)
	if !ok {
		t.Fatalf("expected *plan.Fetch wrapping the compound scan, got %T", op)
	}
	if _, ok := fetch.Child().(*plan.IndexScan); !ok {
		t.Fatalf("expected the fetch's child to be *plan.IndexScan, got %T", fetch.Child())
	}
	if fetch.Filter() == nil {
		t.Errorf("expected the fetch to carry the original AND as its residual filter")
	}
}

// TestPlanGeoNearWrapsFetch: a near leaf on a 2dsphere
// compound index is always INEXACT_FETCH, so the plan must be a Fetch
// carrying the original predicate.
func TestPlanGeoNearWrapsFetch(t *testing.T) {
	and := expression.NewAnd(
		tagged(expression.NewGeoNear("loc", 1, 2, 100), 0, 0),
		tagged(expression.NewFieldComparison("x", expression.EQ, value.NewNumber(5)), 0, 1),
	)
	query := &CanonicalQuery{Predicate: and}
	idx := index.Entry{
		ID: 0,
		KeyPattern: []index.KeyElement{
			{Field: "loc", Kind: index.TwoDSphere},
			{Field: "x", Kind: index.Btree, Dir: index.Ascending},
		},
		Type: index.TwoDSphere,
	}

	op, err := Plan(context.Background(), query, []index.Entry{idx}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fetch, ok := op.(*plan.Fetch)
	if !ok {
		t.Fatalf("expected *plan.Fetch wrapping the near scan, got %T", op)
	}
	near, ok := fetch.Child().(*plan.GeoNear2DSphere)
	if !ok {
		t.Fatalf("expected *plan.GeoNear2DSphere, got %T", fetch.Child())
	}
	baseBounds := near.BaseBounds()
	if len(baseBounds.Fields) != 2 {
		t.Fatalf("expected baseBounds sized to the key length, got %d fields", len(baseBounds.Fields))
	}
	if baseBounds.Fields[1].Name != "x" || !baseBounds.Fields[1].Bound() {
		t.Errorf("expected baseBounds.fields[1] bound to x:[5,5], got %+v", baseBounds.Fields[1])
	}
	if !baseBounds.Fields[0].Bound() {
		t.Errorf("expected the finisher to fill fields[0] with an all-values bound")
	}
}

// TestPlanTextWithPrefixExtractsIndexPrefix: a text predicate
// plus a leading equality compounds into the text leaf's indexPrefix, and
// the equality is removed from the residual filter.
func TestPlanTextWithPrefixExtractsIndexPrefix(t *testing.T) {
	// The enumerator sorts text predicates before ordinary comparisons,
	// the same invariant that puts near predicates first.
	and := expression.NewAnd(
		tagged(expression.NewText("hi", ""), 0, 1),
		tagged(expression.NewFieldComparison("category", expression.EQ, value.NewString("news")), 0, 0),
	)
	query := &CanonicalQuery{Predicate: and}
	idx := index.Entry{
		ID: 0,
		KeyPattern: []index.KeyElement{
			{Field: "category", Kind: index.Btree, Dir: index.Ascending},
			{Field: index.FTSField, Kind: index.TextIndex},
			{Field: index.FTSXField, Kind: index.TextIndex},
		},
		Type: index.TextIndex,
	}

	op, err := Plan(context.Background(), query, []index.Entry{idx}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	textNode, ok := op.(*plan.Text)
	if !ok {
		t.Fatalf("expected *plan.Text, got %T", op)
	}
	prefix := textNode.IndexPrefix()
	if len(prefix) != 1 {
		t.Fatalf("expected a single-field indexPrefix, got %v", prefix)
	}
	got, ok := prefix["category"]
	if !ok || got.Actual() != "news" {
		t.Errorf("expected indexPrefix.category = \"news\", got %v", got.Actual())
	}
	if textNode.Filter() != nil {
		t.Errorf("expected the prefix equality to be detached from the filter, got %v", textNode.Filter())
	}
}

// TestPlanElemMatchObjectCompoundsAndFetchWraps: predicates
// inside an $elemMatch object on a multikey compound index merge into one
// IndexScan, but the $elemMatch itself still has to be re-checked by a
// Fetch since array-element co-occurrence isn't provable from bounds alone.
func TestPlanElemMatchObjectCompoundsAndFetchWraps(t *testing.T) {
	em := expression.NewElemMatchObject("a",
		tagged(expression.NewFieldComparison("a.b", expression.EQ, value.NewNumber(1)), 0, 0),
		tagged(expression.NewFieldComparison("a.c", expression.EQ, value.NewNumber(2)), 0, 1),
	)
	// The enumerator tags the $elemMatch itself with the index its
	// descendants use.
	and := expression.NewAnd(tagged(em, 0, 0))
	query := &CanonicalQuery{Predicate: and}
	idx := index.Entry{
		ID: 0,
		KeyPattern: []index.KeyElement{
			{Field: "a.b", Kind: index.Btree, Dir: index.Ascending},
			{Field: "a.c", Kind: index.Btree, Dir: index.Ascending},
		},
		Multikey: true,
	}

	op, err := Plan(context.Background(), query, []index.Entry{idx}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fetch, ok := op.(*plan.Fetch)
	if !ok {
		t.Fatalf("expected *plan.Fetch wrapping the compound scan, got %T", op)
	}
	scan, ok := fetch.Child().(*plan.IndexScan)
	if !ok {
		t.Fatalf("expected the fetch's child to be *plan.IndexScan, got %T", fetch.Child())
	}
	if scan.Bounds().Fields[0].Name != "a.b" || scan.Bounds().Fields[1].Name != "a.c" {
		t.Errorf("expected both elemMatch predicates compounded into the scan's bounds, got %+v", scan.Bounds())
	}
	if _, ok := fetch.Filter().(*expression.ElemMatchObject); !ok {
		t.Errorf("expected the fetch's filter to be the original $elemMatch, got %T", fetch.Filter())
	}
}

func TestMaxScanToReturnOneCapsAtOne(t *testing.T) {
	pred := expression.NewFieldComparison("a", expression.EQ, value.NewNumber(1))
	query := &CanonicalQuery{Predicate: pred, MaxScan: 100}
	p := &Params{MaxScanToReturnOne: true, Builder: bounds.DefaultBuilder{}}

	op := CollectionScan(query, p)
	scan := op.(*plan.CollectionScan)
	if scan.MaxScan() != 1 {
		t.Errorf("expected maxScan capped at 1, got %d", scan.MaxScan())
	}
}

// TestPlanCompoundEqualitiesMergeIntoOneScan: two equalities at
// distinct key positions of one non-multikey index compound into a single
// IndexScan with no fetch.
func TestPlanCompoundEqualitiesMergeIntoOneScan(t *testing.T) {
	and := expression.NewAnd(
		tagged(expression.NewFieldComparison("a", expression.EQ, value.NewNumber(5)), 0, 0),
		tagged(expression.NewFieldComparison("b", expression.EQ, value.NewNumber(7)), 0, 1),
	)
	query := &CanonicalQuery{Predicate: and}
	idx := index.Entry{
		ID: 0,
		KeyPattern: []index.KeyElement{
			{Field: "a", Kind: index.Btree, Dir: index.Ascending},
			{Field: "b", Kind: index.Btree, Dir: index.Ascending},
		},
	}

	op, err := Plan(context.Background(), query, []index.Entry{idx}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	scan, ok := op.(*plan.IndexScan)
	if !ok {
		t.Fatalf("expected a single *plan.IndexScan with no fetch, got %T", op)
	}
	b := scan.Bounds()
	if b.Fields[0].Name != "a" || b.Fields[1].Name != "b" {
		t.Errorf("expected bounds named a, b in key order, got %q, %q", b.Fields[0].Name, b.Fields[1].Name)
	}
	for i, f := range b.Fields {
		if len(f.Intervals) != 1 || !f.Intervals[0].Low.Equals(f.Intervals[0].High) {
			t.Errorf("expected a point interval at position %d, got %+v", i, f.Intervals)
		}
	}
}

// TestPlanOrWithSharedSortBuildsMergeSort: when every OR branch
// can emit in the requested order, the union becomes a MergeSort.
func TestPlanOrWithSharedSortBuildsMergeSort(t *testing.T) {
	or := expression.NewOr(
		tagged(expression.NewFieldComparison("a", expression.EQ, value.NewNumber(1)), 0, 0),
		tagged(expression.NewFieldComparison("b", expression.EQ, value.NewNumber(2)), 1, 0),
	)
	sort := []index.KeyElement{{Field: "_id", Kind: index.Btree, Dir: index.Ascending}}
	query := &CanonicalQuery{Predicate: or, Sort: sort}
	indices := []index.Entry{
		{ID: 0, KeyPattern: []index.KeyElement{
			{Field: "a", Kind: index.Btree, Dir: index.Ascending},
			{Field: "_id", Kind: index.Btree, Dir: index.Ascending},
		}},
		{ID: 1, KeyPattern: []index.KeyElement{
			{Field: "b", Kind: index.Btree, Dir: index.Ascending},
			{Field: "_id", Kind: index.Btree, Dir: index.Ascending},
		}},
	}

	op, err := Plan(context.Background(), query, indices, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ms, ok := op.(*plan.MergeSort)
	if !ok {
		t.Fatalf("expected *plan.MergeSort, got %T", op)
	}
	if len(ms.Children()) != 2 {
		t.Errorf("expected 2 children, got %d", len(ms.Children()))
	}
	if got := ms.Sort(); len(got) != 1 || got[0].Field != "_id" {
		t.Errorf("expected the merge sort keyed on _id, got %+v", got)
	}
}

// TestPlanInListProducesPointIntervals: an IN-list translates to
// one point interval per value, exact, no fetch.
func TestPlanInListProducesPointIntervals(t *testing.T) {
	pred := tagged(expression.NewIn("a", []value.Value{
		value.NewNumber(1), value.NewNumber(2), value.NewNumber(3),
	}), 0, 0)
	query := &CanonicalQuery{Predicate: pred}
	indices := []index.Entry{btreeIndex(0, "a")}

	op, err := Plan(context.Background(), query, indices, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	scan, ok := op.(*plan.IndexScan)
	if !ok {
		t.Fatalf("expected *plan.IndexScan with no fetch, got %T", op)
	}
	ivs := scan.Bounds().Fields[0].Intervals
	if len(ivs) != 3 {
		t.Fatalf("expected 3 point intervals, got %d: %+v", len(ivs), ivs)
	}
	for i, want := range []float64{1, 2, 3} {
		if !ivs[i].Low.Equals(value.NewNumber(want)) || !ivs[i].High.Equals(value.NewNumber(want)) {
			t.Errorf("expected point [%v,%v] at position %d, got [%v,%v]", want, want, i, ivs[i].Low, ivs[i].High)
		}
	}
}

// TestPlanNegatedComparisonUsesChildTag: a NOT over a
// bounds-generating comparison inherits its child's tag and produces
// complementary bounds.
func TestPlanNegatedComparisonUsesChildTag(t *testing.T) {
	not := expression.NewNot(
		tagged(expression.NewFieldComparison("a", expression.GT, value.NewNumber(5)), 0, 0),
	)
	query := &CanonicalQuery{Predicate: not}
	indices := []index.Entry{btreeIndex(0, "a")}

	op, err := Plan(context.Background(), query, indices, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	scan, ok := op.(*plan.IndexScan)
	if !ok {
		t.Fatalf("expected *plan.IndexScan, got %T", op)
	}
	ivs := scan.Bounds().Fields[0].Intervals
	if len(ivs) != 1 || !ivs[0].LowUnbounded || !ivs[0].High.Equals(value.NewNumber(5)) || !ivs[0].Inclusion.HighIncluded() {
		t.Errorf("expected NOT($gt:5) to translate to (-inf, 5], got %+v", ivs)
	}
}

// TestPlanElemMatchValueIntersectsAtOnePosition: the value form
// of $elemMatch intersects its conjuncts' bounds at one key position (both
// constrain the same scalar from one matched element) and fetch-wraps.
func TestPlanElemMatchValueIntersectsAtOnePosition(t *testing.T) {
	em := expression.NewElemMatchValue("a",
		expression.NewFieldComparison("a", expression.GT, value.NewNumber(1)),
		expression.NewFieldComparison("a", expression.LT, value.NewNumber(5)),
	)
	pred := tagged(em, 0, 0)
	query := &CanonicalQuery{Predicate: pred}
	idx := btreeIndex(0, "a")
	idx.Multikey = true

	op, err := Plan(context.Background(), query, []index.Entry{idx}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fetch, ok := op.(*plan.Fetch)
	if !ok {
		t.Fatalf("expected *plan.Fetch re-checking the $elemMatch, got %T", op)
	}
	scan, ok := fetch.Child().(*plan.IndexScan)
	if !ok {
		t.Fatalf("expected the fetch's child to be *plan.IndexScan, got %T", fetch.Child())
	}
	ivs := scan.Bounds().Fields[0].Intervals
	if len(ivs) != 1 {
		t.Fatalf("expected the conjuncts intersected into one interval, got %d: %+v", len(ivs), ivs)
	}
	if !ivs[0].Low.Equals(value.NewNumber(1)) || !ivs[0].High.Equals(value.NewNumber(5)) || ivs[0].Inclusion != bounds.Neither {
		t.Errorf("expected the open interval (1,5), got %+v", ivs[0])
	}
}

// TestCollectionScanEmptyPredicateHasNoFilter: find({}) plans
// to a bare forward collection scan.
func TestCollectionScanEmptyPredicateHasNoFilter(t *testing.T) {
	query := &CanonicalQuery{Predicate: expression.NewAnd()}

	op := CollectionScan(query, nil)
	scan, ok := op.(*plan.CollectionScan)
	if !ok {
		t.Fatalf("expected *plan.CollectionScan, got %T", op)
	}
	if scan.Filter() != nil {
		t.Errorf("expected no filter for an empty predicate, got %v", scan.Filter())
	}
	if scan.Direction() != index.Ascending {
		t.Errorf("expected forward direction, got %v", scan.Direction())
	}
}

// TestPlanOrInexactBranchIsFetchWrapped checks the OR residual rule: an
// inexact branch can't float its residual up, so it is wrapped in its own
// Fetch inside the union.
func TestPlanOrInexactBranchIsFetchWrapped(t *testing.T) {
	or := expression.NewOr(
		tagged(expression.NewFieldComparison("a", expression.EQ, value.NewNumber(1)), 0, 0),
		tagged(expression.NewMod("b", 4, 0), 1, 0),
	)
	query := &CanonicalQuery{Predicate: or}
	indices := []index.Entry{btreeIndex(0, "a"), btreeIndex(1, "b")}

	op, err := Plan(context.Background(), query, indices, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	union, ok := op.(*plan.Or)
	if !ok {
		t.Fatalf("expected *plan.Or, got %T", op)
	}
	var sawFetch bool
	for _, child := range union.Children() {
		switch c := child.(type) {
		case *plan.IndexScan:
			if c.Filter() != nil {
				t.Errorf("expected no residual filter floated onto an OR branch's scan, got %v", c.Filter())
			}
		case *plan.Fetch:
			sawFetch = true
			if c.Filter() == nil {
				t.Errorf("expected the inexact branch's fetch to carry the mod predicate")
			}
		default:
			t.Errorf("unexpected OR child kind %T", child)
		}
	}
	if !sawFetch {
		t.Errorf("expected the inexact mod branch to be wrapped in a Fetch")
	}
}

func TestScanWholeIndexWrapsFetchUnlessEmptyRoot(t *testing.T) {
	idx := index.Entry{ID: 0, KeyPattern: []index.KeyElement{
		{Field: "a", Kind: index.Btree, Dir: index.Ascending},
		{Field: "b", Kind: index.Btree, Dir: index.Ascending},
	}}

	empty := &CanonicalQuery{Predicate: expression.NewAnd()}
	op := ScanWholeIndex(empty, idx, index.Ascending, nil)
	scan, ok := op.(*plan.IndexScan)
	if !ok {
		t.Fatalf("expected a bare *plan.IndexScan for an empty root, got %T", op)
	}
	for i, f := range scan.Bounds().Fields {
		if !f.Bound() || len(f.Intervals) != 1 || !f.Intervals[0].LowUnbounded || !f.Intervals[0].HighUnbounded {
			t.Errorf("expected all-values bounds at position %d, got %+v", i, f)
		}
	}

	withPred := &CanonicalQuery{Predicate: expression.NewFieldComparison("c", expression.EQ, value.NewNumber(1))}
	op = ScanWholeIndex(withPred, idx, index.Ascending, nil)
	fetch, ok := op.(*plan.Fetch)
	if !ok {
		t.Fatalf("expected a *plan.Fetch carrying the root as filter, got %T", op)
	}
	if fetch.Filter() == nil {
		t.Errorf("expected the fetch to carry a clone of the root predicate")
	}
}

func TestMakeIndexScanSimpleRange(t *testing.T) {
	idx := btreeIndex(0, "a")
	query := &CanonicalQuery{Predicate: expression.NewAnd()}

	op := MakeIndexScan(query, idx, []byte("low"), []byte("high"))
	scan, ok := op.(*plan.IndexScan)
	if !ok {
		t.Fatalf("expected *plan.IndexScan, got %T", op)
	}
	b := scan.Bounds()
	if !b.IsSimpleRange || b.EndKeyInclusive {
		t.Errorf("expected an exclusive simple range, got %+v", b)
	}
	if string(b.StartKey) != "low" || string(b.EndKey) != "high" {
		t.Errorf("expected [low, high), got [%s, %s)", b.StartKey, b.EndKey)
	}
	if scan.Direction() != index.Ascending {
		t.Errorf("expected forward direction, got %v", scan.Direction())
	}
}

// TestPlanAllIntersectsSubClausesAndFetchWraps: each $all sub-clause is
// indexed independently, the results intersect by hash, and the whole
// operator is re-checked by a Fetch.
func TestPlanAllIntersectsSubClausesAndFetchWraps(t *testing.T) {
	all := expression.NewAll("a",
		tagged(expression.NewFieldComparison("a", expression.EQ, value.NewNumber(1)), 0, 0),
		tagged(expression.NewFieldComparison("a", expression.EQ, value.NewNumber(2)), 0, 0),
	)
	query := &CanonicalQuery{Predicate: all}
	idx := btreeIndex(0, "a")
	idx.Multikey = true

	op, err := Plan(context.Background(), query, []index.Entry{idx}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fetch, ok := op.(*plan.Fetch)
	if !ok {
		t.Fatalf("expected *plan.Fetch re-checking the $all, got %T", op)
	}
	hash, ok := fetch.Child().(*plan.AndHash)
	if !ok {
		t.Fatalf("expected *plan.AndHash intersecting the sub-clauses, got %T", fetch.Child())
	}
	if len(hash.Children()) != 2 {
		t.Errorf("expected one scan per sub-clause, got %d", len(hash.Children()))
	}
	if _, ok := fetch.Filter().(*expression.All); !ok {
		t.Errorf("expected the fetch's filter to be the original $all, got %T", fetch.Filter())
	}
}
