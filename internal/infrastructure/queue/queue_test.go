package queue

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestDecodeTask(t *testing.T) {
	id := uuid.New()
	payload, err := json.Marshal(Task{MeetingID: id, Attempt: 2})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	task, err := decodeTask(string(payload))
	if err != nil {
		t.Fatalf("decodeTask returned error: %v", err)
	}
	if task.MeetingID != id {
		t.Errorf("meeting id = %s; want %s", task.MeetingID, id)
	}
	if task.Attempt != 2 {
		t.Errorf("attempt = %d; want 2", task.Attempt)
	}
}

func TestDecodeTaskRejectsMalformedPayloads(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"not json", "definitely not json"},
		{"wrong type", `"just a string"`},
		{"missing meeting id", `{"attempt": 1}`},
		{"empty object", `{}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := decodeTask(tc.payload); err == nil {
				t.Errorf("decodeTask(%q) accepted a malformed payload", tc.payload)
			}
		})
	}
}

func TestTaskPayloadIsStableAcrossRequeues(t *testing.T) {
	// A retried task differs from the original only in its attempt
	// counter, so Ack on the old payload can never remove the retry.
	id := uuid.New()
	first, _ := json.Marshal(Task{MeetingID: id, Attempt: 0})
	second, _ := json.Marshal(Task{MeetingID: id, Attempt: 1})
	if string(first) == string(second) {
		t.Fatal("payloads for different attempts must differ")
	}

	again, _ := json.Marshal(Task{MeetingID: id, Attempt: 0})
	if string(first) != string(again) {
		t.Fatal("payload encoding must be deterministic")
	}
}
