package graph

import (
	"reflect"
	"strings"
	"testing"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

func fullSnapshot() entities.MeetingSnapshot {
	return entities.MeetingSnapshot{
		ID:               "m-1",
		OriginalFilename: "standup.mp4",
		Summary:          "## Monday Standup\nWe synced on progress.",
		KeyPoints:        "### Progress\n- backend done",
		ActionItems:      "### 1. Ship it\n- by friday",
		Tags:             "standup, progress",
		KnowledgeGraph: `{
			"nodes":[{"id":"backend","label":"Backend"},{"id":"release","label":"Release"}],
			"edges":[{"from":"backend","to":"release","label":"blocks"}],
			"participants":[{"name":"Ana Diaz","role":"engineer"}],
			"decisions":[{"title":"Ship v2","owner":"Ana"}],
			"timeline":[{"label":"Kickoff","start_time":"00:01"}],
			"topics":["release planning"]
		}`,
	}
}

func statementByOp(t *testing.T, stmts []statement, op string) statement {
	t.Helper()
	for _, st := range stmts {
		if st.op == op {
			return st
		}
	}
	t.Fatalf("no %q statement in plan: %v", op, opsOf(stmts))
	return statement{}
}

func opsOf(stmts []statement) []string {
	ops := make([]string, 0, len(stmts))
	for _, st := range stmts {
		ops = append(ops, st.op)
	}
	return ops
}

func indexOf(ops []string, op string) int {
	for i, o := range ops {
		if o == op {
			return i
		}
	}
	return -1
}

func TestUpsertPlanDeletesBeforeRewriting(t *testing.T) {
	ops := opsOf(upsertStatements(fullSnapshot()))

	pairs := [][2]string{
		{"detach tags", "write tags"},
		{"detach topics", "write topics"},
		{"clear participants", "write participants"},
		{"clear decisions", "write decisions"},
		{"clear timeline", "write timeline"},
	}
	for _, pair := range pairs {
		del, ins := indexOf(ops, pair[0]), indexOf(ops, pair[1])
		if del < 0 || ins < 0 {
			t.Fatalf("plan missing %q or %q: %v", pair[0], pair[1], ops)
		}
		if del >= ins {
			t.Errorf("%q must run before %q, got order %v", pair[0], pair[1], ops)
		}
	}
	if ops[0] != "upsert meeting node" {
		t.Errorf("meeting node must be written first, got %v", ops)
	}
}

func TestUpsertPlanCategoryNodesAreReplaced(t *testing.T) {
	stmts := upsertStatements(fullSnapshot())

	for op, label := range map[string]string{
		"clear participants": "Participant",
		"clear decisions":    "Decision",
		"clear timeline":     "TimelineEvent",
	} {
		st := statementByOp(t, stmts, op)
		if !strings.Contains(st.cypher, "DETACH DELETE") {
			t.Errorf("%s should DETACH DELETE, got %q", op, st.cypher)
		}
		if !strings.Contains(st.cypher, label+" {meeting_id: $meeting_id}") {
			t.Errorf("%s must scope the delete to the meeting, got %q", op, st.cypher)
		}
	}

	// Orphaned shared nodes are pruned after the links are dropped
	for _, op := range []string{"prune orphan tags", "prune orphan topics"} {
		if !strings.Contains(statementByOp(t, stmts, op).cypher, "WHERE NOT") {
			t.Errorf("%s should only delete unreferenced nodes", op)
		}
	}
}

func TestUpsertPlanMergesOnStableKeys(t *testing.T) {
	stmts := upsertStatements(fullSnapshot())

	meeting := statementByOp(t, stmts, "upsert meeting node")
	if !strings.Contains(meeting.cypher, "MERGE (m:Meeting {id: $id})") {
		t.Errorf("meeting node must merge on id, got %q", meeting.cypher)
	}

	concepts := statementByOp(t, stmts, "write concepts")
	if !strings.Contains(concepts.cypher, "MERGE (c:Concept {meeting_id: $meeting_id, node_id: node.id})") {
		t.Errorf("concepts must merge on (meeting_id, node_id), got %q", concepts.cypher)
	}

	for _, op := range []string{"write key points", "write action items"} {
		st := statementByOp(t, stmts, op)
		if !strings.Contains(st.cypher, "MERGE (i:Insight {meeting_id: $meeting_id, type: $item_type, title: item.title})") {
			t.Errorf("%s must merge insights on (meeting_id, type, title), got %q", op, st.cypher)
		}
	}

	relations := statementByOp(t, stmts, "write concept relations")
	if !strings.Contains(relations.cypher, "MERGE (source)-[r:RELATED_TO {meeting_id: $meeting_id}]->(target)") {
		t.Errorf("relations must merge, got %q", relations.cypher)
	}
}

func TestUpsertPlanIsDeterministic(t *testing.T) {
	snapshot := fullSnapshot()
	first := upsertStatements(snapshot)
	second := upsertStatements(snapshot)

	if !reflect.DeepEqual(opsOf(first), opsOf(second)) {
		t.Fatalf("plans differ across runs: %v vs %v", opsOf(first), opsOf(second))
	}
	for i := range first {
		if first[i].cypher != second[i].cypher || !reflect.DeepEqual(first[i].params, second[i].params) {
			t.Errorf("statement %q differs across runs", first[i].op)
		}
	}
}

func TestUpsertPlanParticipantParams(t *testing.T) {
	stmts := upsertStatements(fullSnapshot())
	st := statementByOp(t, stmts, "write participants")

	participants, ok := st.params["participants"].([]any)
	if !ok || len(participants) != 1 {
		t.Fatalf("participants param = %#v", st.params["participants"])
	}
	p := participants[0].(map[string]any)
	// Missing id falls back to a slug of the name
	if p["id"] != "ana-diaz" || p["name"] != "Ana Diaz" || p["role"] != "engineer" {
		t.Errorf("participant params = %#v", p)
	}

	decision := statementByOp(t, stmts, "write decisions").params["decisions"].([]any)[0].(map[string]any)
	if decision["id"] != "ship-v2" || decision["title"] != "Ship v2" || decision["owner"] != "Ana" {
		t.Errorf("decision params = %#v", decision)
	}

	event := statementByOp(t, stmts, "write timeline").params["events"].([]any)[0].(map[string]any)
	if event["id"] != "kickoff" || event["label"] != "Kickoff" || event["start_time"] != "00:01" {
		t.Errorf("timeline params = %#v", event)
	}

	derived := statementByOp(t, stmts, "upsert meeting node").params["title"]
	if derived != "Monday Standup" {
		t.Errorf("derived title = %v", derived)
	}
}

func TestUpsertPlanSkipsEmptyCollections(t *testing.T) {
	snapshot := entities.MeetingSnapshot{ID: "m-2", OriginalFilename: "raw.mp3"}
	ops := opsOf(upsertStatements(snapshot))

	// Deletions always run so a shrunken projection still converges
	for _, op := range []string{"detach tags", "clear participants", "clear decisions", "clear timeline"} {
		if indexOf(ops, op) < 0 {
			t.Errorf("plan without content should still %s: %v", op, ops)
		}
	}
	for _, op := range []string{"write tags", "write participants", "write decisions", "write timeline", "write concepts"} {
		if indexOf(ops, op) >= 0 {
			t.Errorf("plan without content should not %s: %v", op, ops)
		}
	}
}
