package insights

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/graph"
)

// TextGenerator is the generative-text capability the generator drives
type TextGenerator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Generator runs the six extraction tasks against a transcript. Each task
// is independently fallible: a failing task yields its sentinel value and
// the rest of the bundle is unaffected.
type Generator struct {
	llm    TextGenerator
	logger *zap.Logger
}

// NewGenerator creates an insight generator
func NewGenerator(llm TextGenerator, logger *zap.Logger) *Generator {
	return &Generator{llm: llm, logger: logger}
}

// Generate produces the full insight bundle. The six tasks share only the
// transcript, so they run concurrently.
func (g *Generator) Generate(ctx context.Context, transcript string) *entities.InsightBundle {
	bundle := &entities.InsightBundle{}
	var rawGraph string

	var wg sync.WaitGroup
	run := func(name string, target *string, sentinel string, task func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if p := recover(); p != nil {
					if g.logger != nil {
						g.logger.Error("❌ Insight task panicked",
							zap.String("task", name),
							zap.Any("panic", p),
						)
					}
					// A panicking task degrades exactly like an erroring one
					*target = sentinel
				}
			}()
			task()
		}()
	}

	run("summary", &bundle.Summary, entities.SummaryFailed, func() {
		bundle.Summary = g.textTask(ctx, "summary", SummaryPrompt(transcript), entities.SummaryFailed)
	})
	run("key_points", &bundle.KeyPoints, entities.KeyPointsFailed, func() {
		bundle.KeyPoints = g.textTask(ctx, "key_points", KeyPointsPrompt(transcript), entities.KeyPointsFailed)
	})
	run("action_items", &bundle.ActionItems, entities.ActionItemsFailed, func() {
		bundle.ActionItems = g.textTask(ctx, "action_items", ActionItemsPrompt(transcript), entities.ActionItemsFailed)
	})
	run("sentiment", &bundle.Sentiment, entities.SentimentFailed, func() {
		bundle.Sentiment = g.textTask(ctx, "sentiment", SentimentPrompt(transcript), entities.SentimentFailed)
	})
	run("tags", &bundle.Tags, entities.TagsFailed, func() {
		bundle.Tags = g.textTask(ctx, "tags", TagsPrompt(transcript), entities.TagsFailed)
	})
	run("knowledge_graph", &rawGraph, "", func() {
		raw, err := g.llm.Complete(ctx, KnowledgeGraphPrompt(transcript))
		if err != nil {
			if g.logger != nil {
				g.logger.Error("❌ Insight task failed",
					zap.String("task", "knowledge_graph"),
					zap.Error(err),
				)
			}
			return
		}
		rawGraph = raw
	})

	wg.Wait()

	// A missing or unparseable payload degrades to the empty shape
	bundle.KnowledgeGraph = graph.ParseKnowledgeGraph(rawGraph)

	if g.logger != nil {
		g.logger.Info("✅ Insight bundle generated",
			zap.Int("summary_length", len(bundle.Summary)),
			zap.Int("tags_length", len(bundle.Tags)),
			zap.Int("graph_nodes", len(bundle.KnowledgeGraph.Nodes)),
		)
	}
	return bundle
}

func (g *Generator) textTask(ctx context.Context, name, prompt, sentinel string) string {
	result, err := g.llm.Complete(ctx, prompt)
	if err != nil {
		if g.logger != nil {
			g.logger.Error("❌ Insight task failed",
				zap.String("task", name),
				zap.Error(err),
			)
		}
		return sentinel
	}
	if result == "" {
		if g.logger != nil {
			g.logger.Warn("⚠️ Insight task returned empty output",
				zap.String("task", name),
			)
		}
		return sentinel
	}
	return result
}

// Chat answers a question grounded in the assembled meeting context
func (g *Generator) Chat(ctx context.Context, in ChatPromptInput) (string, error) {
	reply, err := g.llm.Complete(ctx, ChatAnswerPrompt(in))
	if err != nil {
		return "", fmt.Errorf("failed to generate chat reply: %w", err)
	}
	return reply, nil
}
