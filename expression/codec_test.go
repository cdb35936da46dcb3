package expression

import (
	"testing"

	"github.com/arvo-db/accessplan/value"
)

func TestMarshalUnmarshalRoundTripsTag(t *testing.T) {
	fc := NewFieldComparison("a", EQ, value.NewNumber(1))
	fc.SetTag(&IndexTag{Index: 2, Pos: 1})

	body, err := Marshal(fc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	got, err := Unmarshal(body)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	tag := got.Tag()
	if tag == nil {
		t.Fatalf("expected a tag to survive the round trip, got nil")
	}
	if tag.Index != 2 || tag.Pos != 1 {
		t.Errorf("expected IndexTag{2,1}, got %+v", tag)
	}
}

func TestMarshalUnmarshalUntaggedLeafHasNilTag(t *testing.T) {
	fc := NewFieldComparison("a", EQ, value.NewNumber(1))

	body, err := Marshal(fc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(body)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Tag() != nil {
		t.Errorf("expected nil tag for an untagged leaf, got %+v", got.Tag())
	}
}

func TestMarshalUnmarshalRoundTripsAndOfTaggedLeaves(t *testing.T) {
	a := NewFieldComparison("a", GTE, value.NewNumber(1))
	a.SetTag(&IndexTag{Index: 0, Pos: 0})
	b := NewFieldComparison("b", EQ, value.NewString("x"))
	b.SetTag(&IndexTag{Index: 0, Pos: 1})
	and := NewAnd(a, b)

	body, err := Marshal(and)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(body)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	gotAnd, ok := got.(*And)
	if !ok {
		t.Fatalf("expected *And, got %T", got)
	}
	if len(gotAnd.Operands) != 2 {
		t.Fatalf("expected 2 operands, got %d", len(gotAnd.Operands))
	}
	for i, want := range []int{0, 1} {
		tag := gotAnd.Operands[i].Tag()
		if tag == nil || tag.Pos != want {
			t.Errorf("operand %d: expected tag pos %d, got %+v", i, want, tag)
		}
	}
}

func TestMarshalUnmarshalNotDelegatesChildTag(t *testing.T) {
	fc := NewFieldComparison("a", EQ, value.NewNumber(1))
	fc.SetTag(&IndexTag{Index: 3, Pos: 0})
	not := NewNot(fc)

	body, err := Marshal(not)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(body)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	tag := got.Tag()
	if tag == nil || tag.Index != 3 {
		t.Errorf("expected Not.Tag() to delegate to its child's tag, got %+v", tag)
	}
}
