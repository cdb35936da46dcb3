package main

import (
	"context"
	"encoding/json"
	"testing"
)

func TestRunBuildsIndexScanForTaggedEquality(t *testing.T) {
	input := []byte(`{
		"namespace": "default",
		"predicate": {
			"#expr": "FieldComparison",
			"field": "a",
			"op": "$eq",
			"value": 1,
			"tag": {"index": 0, "pos": 0}
		},
		"indices": [
			{"id": 0, "keyPattern": [{"field": "a", "kind": "btree", "dir": 1}], "multikey": false, "type": "btree"}
		]
	}`)

	var req request
	if err := json.Unmarshal(input, &req); err != nil {
		t.Fatalf("unmarshal request: %v", err)
	}

	resp, err := run(context.Background(), &req)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if resp.Error != nil {
		t.Fatalf("expected a solution, got diagnostic: %+v", resp.Error)
	}
	if len(resp.Solution) == 0 {
		t.Fatalf("expected a non-empty solution body")
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(resp.Solution, &decoded); err != nil {
		t.Fatalf("solution is not valid JSON: %v", err)
	}
	if decoded["#operator"] != "IndexScan" {
		t.Errorf("expected an IndexScan solution, got %+v", decoded["#operator"])
	}
}

func TestRunFallsBackToCollectionScanWhenUntagged(t *testing.T) {
	input := []byte(`{
		"namespace": "default",
		"predicate": {"#expr": "FieldComparison", "field": "a", "op": "$eq", "value": 1},
		"indices": []
	}`)

	var req request
	if err := json.Unmarshal(input, &req); err != nil {
		t.Fatalf("unmarshal request: %v", err)
	}

	resp, err := run(context.Background(), &req)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if resp.Error != nil {
		t.Fatalf("expected a collection-scan fallback solution, got diagnostic: %+v", resp.Error)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(resp.Solution, &decoded); err != nil {
		t.Fatalf("solution is not valid JSON: %v", err)
	}
	if decoded["#operator"] != "CollectionScan" {
		t.Errorf("expected a CollectionScan fallback, got %+v", decoded["#operator"])
	}
}
