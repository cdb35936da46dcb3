package index

import "testing"

func TestEntryMarshalUnmarshalRoundTrip(t *testing.T) {
	e := Entry{
		ID: 7,
		KeyPattern: []KeyElement{
			{Field: "a", Kind: Btree, Dir: Ascending},
			{Field: "b", Kind: Btree, Dir: Descending},
		},
		Multikey: true,
		Type:     Btree,
	}

	body, err := e.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}

	var got Entry
	if err := got.UnmarshalJSON(body); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}

	if got.ID != e.ID || got.Multikey != e.Multikey || got.Type != e.Type {
		t.Errorf("scalar fields did not round-trip: got %+v, want %+v", got, e)
	}
	if len(got.KeyPattern) != len(e.KeyPattern) {
		t.Fatalf("expected %d key elements, got %d", len(e.KeyPattern), len(got.KeyPattern))
	}
	for i, k := range e.KeyPattern {
		if got.KeyPattern[i] != k {
			t.Errorf("key element %d: got %+v, want %+v", i, got.KeyPattern[i], k)
		}
	}
}

func TestUnmarshalCatalog(t *testing.T) {
	body := []byte(`[
		{"id": 0, "keyPattern": [{"field": "a", "kind": "btree", "dir": 1}], "multikey": false, "type": "btree"},
		{"id": 1, "keyPattern": [{"field": "loc", "kind": "2dsphere", "dir": 1}], "multikey": false, "type": "2dsphere"}
	]`)

	entries, err := UnmarshalCatalog(body)
	if err != nil {
		t.Fatalf("UnmarshalCatalog: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[1].Type != TwoDSphere {
		t.Errorf("expected entry 1 to be a 2dsphere index, got %v", entries[1].Type)
	}
}

func TestTextPrefixEnd(t *testing.T) {
	e := Entry{
		Type: TextIndex,
		KeyPattern: []KeyElement{
			{Field: "cat", Kind: Btree, Dir: Ascending},
			{Field: FTSField, Kind: TextIndex},
			{Field: FTSXField, Kind: TextIndex},
		},
	}
	if got := e.TextPrefixEnd(); got != 1 {
		t.Errorf("expected prefix end 1, got %d", got)
	}

	nonText := Entry{Type: Btree}
	if got := nonText.TextPrefixEnd(); got != -1 {
		t.Errorf("expected -1 for a non-text index, got %d", got)
	}
}
