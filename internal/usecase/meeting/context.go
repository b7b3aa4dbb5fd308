package meeting

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/graph"
)

// GraphContext assembles the denormalized per-meeting view. It prefers
// graph-resident data; when the meeting has no graph node yet it lazily
// upserts the relational projection and re-fetches. When the graph is
// unavailable entirely, the context is synthesized from the relational
// record alone.
func (s *Service) GraphContext(ctx context.Context, id uuid.UUID) (*entities.MeetingContext, error) {
	meeting, err := s.getMeeting(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.graph == nil || !s.graph.Configured() {
		return s.relationalContext(meeting), nil
	}

	mc, err := s.graph.FetchContext(ctx, meeting.ID.String())
	if err != nil {
		// An unreachable graph is treated as "no context yet"
		if s.logger != nil {
			s.logger.Warn("⚠️ Graph context fetch failed, using relational fallback",
				zap.String("meeting_id", meeting.ID.String()),
				zap.Error(err),
			)
		}
		return s.relationalContext(meeting), nil
	}

	if mc == nil {
		// Lazy sync: push the relational projection, then read it back
		if err := s.graph.Upsert(ctx, meeting.Snapshot()); err != nil {
			if s.logger != nil {
				s.logger.Warn("⚠️ Lazy graph upsert failed",
					zap.String("meeting_id", meeting.ID.String()),
					zap.Error(err),
				)
			}
			return s.relationalContext(meeting), nil
		}
		mc, err = s.graph.FetchContext(ctx, meeting.ID.String())
		if err != nil || mc == nil {
			return s.relationalContext(meeting), nil
		}
	}

	mergeRelationalFallbacks(mc, meeting)
	return mc, nil
}

// relationalContext builds the context shape from the relational row only
func (s *Service) relationalContext(m *entities.Meeting) *entities.MeetingContext {
	kg := graph.ParseKnowledgeGraph(string(m.KnowledgeGraph))
	mc := &entities.MeetingContext{
		MeetingID:    m.ID.String(),
		Title:        graph.DeriveTitle(m.Summary, m.OriginalFilename),
		CreatedAt:    m.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		Summary:      m.Summary,
		Sentiment:    m.Sentiment,
		Tags:         graph.ParseTags(m.Tags),
		Topics:       kg.Topics,
		KeyPoints:    graph.ParseMarkdownSections(m.KeyPoints),
		ActionItems:  graph.ParseMarkdownSections(m.ActionItems),
		Participants: kg.Participants,
		Decisions:    kg.Decisions,
		Timeline:     kg.Timeline,
		Concepts:     kg.Nodes,
		Relations:    kg.Edges,
		FromGraph:    false,
	}
	return mc
}

// mergeRelationalFallbacks fills any field the graph left empty from the
// relational record. Graph-sourced values always win.
func mergeRelationalFallbacks(mc *entities.MeetingContext, m *entities.Meeting) {
	if mc.Title == "" {
		mc.Title = graph.DeriveTitle(m.Summary, m.OriginalFilename)
	}
	if mc.Summary == "" {
		mc.Summary = m.Summary
	}
	if mc.Sentiment == "" {
		mc.Sentiment = m.Sentiment
	}
	if mc.CreatedAt == "" {
		mc.CreatedAt = m.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	if len(mc.Tags) == 0 {
		mc.Tags = graph.ParseTags(m.Tags)
	}
	if len(mc.KeyPoints) == 0 {
		mc.KeyPoints = graph.ParseMarkdownSections(m.KeyPoints)
	}
	if len(mc.ActionItems) == 0 {
		mc.ActionItems = graph.ParseMarkdownSections(m.ActionItems)
	}

	kg := graph.ParseKnowledgeGraph(string(m.KnowledgeGraph))
	if len(mc.Topics) == 0 {
		mc.Topics = kg.Topics
	}
	if len(mc.Participants) == 0 {
		mc.Participants = kg.Participants
	}
	if len(mc.Decisions) == 0 {
		mc.Decisions = kg.Decisions
	}
	if len(mc.Timeline) == 0 {
		mc.Timeline = kg.Timeline
	}
	if len(mc.Concepts) == 0 {
		mc.Concepts = kg.Nodes
	}
	if len(mc.Relations) == 0 {
		mc.Relations = kg.Edges
	}
}
