package entities

import (
	"encoding/json"
	"testing"
)

func TestKnowledgeGraphNormalize(t *testing.T) {
	kg := KnowledgeGraph{Nodes: []GraphNode{{ID: "budget", Label: "Budget"}}}
	kg.Normalize()

	if kg.Edges == nil || kg.Participants == nil || kg.Decisions == nil || kg.Timeline == nil || kg.Topics == nil {
		t.Fatalf("Normalize left nil collections: %+v", kg)
	}
	if len(kg.Nodes) != 1 {
		t.Errorf("Normalize should not touch populated collections, got %d nodes", len(kg.Nodes))
	}
}

func TestKnowledgeGraphJSONShape(t *testing.T) {
	var kg KnowledgeGraph
	if err := json.Unmarshal([]byte(`{"decisions":[{"title":"Ship v2","owner":"Ana","due_date":"2026-04-01"}]}`), &kg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	kg.Normalize()

	if len(kg.Decisions) != 1 || kg.Decisions[0].Title != "Ship v2" || kg.Decisions[0].DueDate != "2026-04-01" {
		t.Fatalf("unexpected decisions: %+v", kg.Decisions)
	}

	out, err := json.Marshal(kg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(out, &raw); err != nil {
		t.Fatalf("remarshal: %v", err)
	}
	for _, field := range []string{"nodes", "edges", "participants", "timeline", "topics"} {
		if string(raw[field]) != "[]" {
			t.Errorf("field %q should serialize as an empty array, got %s", field, raw[field])
		}
	}
}

func TestEmptyKnowledgeGraph(t *testing.T) {
	kg := EmptyKnowledgeGraph()
	if !kg.IsEmpty() {
		t.Error("EmptyKnowledgeGraph should report empty")
	}
	if kg.Nodes == nil || kg.Topics == nil {
		t.Error("EmptyKnowledgeGraph should have non-nil collections")
	}
}
