package insights

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// fakeLLM answers by matching a marker string in the prompt
type fakeLLM struct {
	fail    map[string]bool
	replies map[string]string
}

func (f *fakeLLM) Complete(_ context.Context, prompt string) (string, error) {
	for marker, task := range map[string]string{
		"summarize it into two or three abstract paragraphs": "summary",
		"identify the main points":                           "key_points",
		"task identification":                                "action_items",
		"emotion analysis":                                   "sentiment",
		"topic modeling":                                     "tags",
		"extract a knowledge graph":                          "knowledge_graph",
	} {
		if strings.Contains(prompt, marker) {
			if f.fail[task] {
				return "", errors.New("model unavailable")
			}
			if reply, ok := f.replies[task]; ok {
				return reply, nil
			}
			return "generated " + task, nil
		}
	}
	return "generic reply", nil
}

func TestGenerateFullBundle(t *testing.T) {
	llm := &fakeLLM{replies: map[string]string{
		"summary":         "## Planning Sync\nWe planned things.",
		"tags":            "planning, budget",
		"knowledge_graph": `{"nodes":[{"id":"budget","label":"Budget"}],"edges":[],"topics":["planning"]}`,
	}}
	g := NewGenerator(llm, nil)

	bundle := g.Generate(context.Background(), "SPEAKER_0: hello")

	if bundle.Summary != "## Planning Sync\nWe planned things." {
		t.Errorf("summary = %q", bundle.Summary)
	}
	if bundle.KeyPoints != "generated key_points" {
		t.Errorf("key points = %q", bundle.KeyPoints)
	}
	if bundle.Tags != "planning, budget" {
		t.Errorf("tags = %q", bundle.Tags)
	}
	if len(bundle.KnowledgeGraph.Nodes) != 1 || bundle.KnowledgeGraph.Nodes[0].ID != "budget" {
		t.Errorf("graph nodes = %+v", bundle.KnowledgeGraph.Nodes)
	}
}

func TestGenerateSentimentFailureIsIsolated(t *testing.T) {
	llm := &fakeLLM{
		fail: map[string]bool{"sentiment": true},
		replies: map[string]string{
			"knowledge_graph": `{"nodes":[],"edges":[]}`,
		},
	}
	g := NewGenerator(llm, nil)

	bundle := g.Generate(context.Background(), "SPEAKER_0: hello")

	if bundle.Sentiment != entities.SentimentFailed {
		t.Errorf("sentiment = %q; want sentinel", bundle.Sentiment)
	}
	for name, got := range map[string]string{
		"summary":      bundle.Summary,
		"key_points":   bundle.KeyPoints,
		"action_items": bundle.ActionItems,
		"tags":         bundle.Tags,
	} {
		if strings.HasPrefix(got, "Error:") || got == "" {
			t.Errorf("%s should be unaffected, got %q", name, got)
		}
	}
	if bundle.KnowledgeGraph.Nodes == nil || bundle.KnowledgeGraph.Edges == nil {
		t.Error("knowledge graph collections should be non-nil")
	}
}

func TestGenerateAllTasksFail(t *testing.T) {
	llm := &fakeLLM{fail: map[string]bool{
		"summary": true, "key_points": true, "action_items": true,
		"sentiment": true, "tags": true, "knowledge_graph": true,
	}}
	g := NewGenerator(llm, nil)

	bundle := g.Generate(context.Background(), "SPEAKER_0: hello")

	if bundle.Summary != entities.SummaryFailed {
		t.Errorf("summary = %q", bundle.Summary)
	}
	if bundle.KeyPoints != entities.KeyPointsFailed {
		t.Errorf("key points = %q", bundle.KeyPoints)
	}
	if bundle.ActionItems != entities.ActionItemsFailed {
		t.Errorf("action items = %q", bundle.ActionItems)
	}
	if bundle.Sentiment != entities.SentimentFailed {
		t.Errorf("sentiment = %q", bundle.Sentiment)
	}
	if bundle.Tags != entities.TagsFailed {
		t.Errorf("tags = %q", bundle.Tags)
	}
	if !bundle.KnowledgeGraph.IsEmpty() {
		t.Errorf("graph should be empty shape, got %+v", bundle.KnowledgeGraph)
	}
}

// panickyLLM panics on one task and delegates the rest
type panickyLLM struct {
	inner  *fakeLLM
	marker string
}

func (p *panickyLLM) Complete(ctx context.Context, prompt string) (string, error) {
	if strings.Contains(prompt, p.marker) {
		panic("unexpected provider payload")
	}
	return p.inner.Complete(ctx, prompt)
}

func TestGeneratePanickingTaskYieldsSentinel(t *testing.T) {
	llm := &panickyLLM{inner: &fakeLLM{}, marker: "emotion analysis"}
	g := NewGenerator(llm, nil)

	bundle := g.Generate(context.Background(), "SPEAKER_0: hello")

	if bundle.Sentiment != entities.SentimentFailed {
		t.Errorf("sentiment = %q; want sentinel after panic", bundle.Sentiment)
	}
	if bundle.Summary != "generated summary" || bundle.Tags != "generated tags" {
		t.Errorf("other tasks should be unaffected: summary=%q tags=%q", bundle.Summary, bundle.Tags)
	}
}

func TestGeneratePanickingGraphTaskYieldsEmptyShape(t *testing.T) {
	llm := &panickyLLM{inner: &fakeLLM{}, marker: "extract a knowledge graph"}
	g := NewGenerator(llm, nil)

	bundle := g.Generate(context.Background(), "SPEAKER_0: hello")
	if !bundle.KnowledgeGraph.IsEmpty() {
		t.Errorf("graph should be empty shape after panic, got %+v", bundle.KnowledgeGraph)
	}
}

func TestGenerateMalformedGraphPayload(t *testing.T) {
	llm := &fakeLLM{replies: map[string]string{
		"knowledge_graph": "definitely not json",
	}}
	g := NewGenerator(llm, nil)

	bundle := g.Generate(context.Background(), "SPEAKER_0: hello")
	if !bundle.KnowledgeGraph.IsEmpty() {
		t.Errorf("malformed payload should degrade to empty shape, got %+v", bundle.KnowledgeGraph)
	}
}
