package meeting

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/johnquangdev/meeting-insights/errors"
	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/internal/usecase/insights"
)

// ChatTurn is one prior exchange in a chat conversation
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chat answers a question about a meeting, grounded in the assembled
// graph context
func (s *Service) Chat(ctx context.Context, id uuid.UUID, message string, history []ChatTurn) (string, error) {
	if s.chatter == nil {
		return "", apperrors.ErrInternal.WithDetail("chat generation is not configured")
	}

	mc, err := s.GraphContext(ctx, id)
	if err != nil {
		return "", err
	}

	reply, err := s.chatter.Chat(ctx, buildChatInput(mc, message, history))
	if err != nil {
		return "", apperrors.ErrInternal.WithRaw(err)
	}
	return reply, nil
}

func buildChatInput(mc *entities.MeetingContext, message string, history []ChatTurn) insights.ChatPromptInput {
	return insights.ChatPromptInput{
		Title:        mc.Title,
		CreatedAt:    mc.CreatedAt,
		Tags:         strings.Join(mc.Tags, ", "),
		Topics:       strings.Join(mc.Topics, ", "),
		Participants: formatParticipants(mc.Participants),
		Summary:      mc.Summary,
		KeyPoints:    formatItems(mc.KeyPoints),
		ActionItems:  formatItems(mc.ActionItems),
		Decisions:    formatDecisions(mc.Decisions),
		Timeline:     formatTimeline(mc.Timeline),
		Concepts:     formatConcepts(mc.Concepts),
		History:      formatHistory(history),
		Question:     message,
	}
}

func formatParticipants(participants []entities.Participant) string {
	if len(participants) == 0 {
		return ""
	}
	lines := make([]string, 0, len(participants))
	for _, p := range participants {
		if p.Name == "" {
			continue
		}
		line := "- " + p.Name
		if p.Role != "" {
			line += fmt.Sprintf(" (%s)", p.Role)
		}
		if p.Organization != "" {
			line += fmt.Sprintf(", %s", p.Organization)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func formatDecisions(decisions []entities.Decision) string {
	if len(decisions) == 0 {
		return ""
	}
	lines := make([]string, 0, len(decisions))
	for _, d := range decisions {
		if d.Title == "" {
			continue
		}
		line := "- " + d.Title
		if d.Description != "" {
			line += ": " + d.Description
		}
		if d.Owner != "" {
			line += fmt.Sprintf(" (owner: %s)", d.Owner)
		}
		if d.DueDate != "" {
			line += fmt.Sprintf(" (due: %s)", d.DueDate)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func formatTimeline(events []entities.TimelineEvent) string {
	if len(events) == 0 {
		return ""
	}
	lines := make([]string, 0, len(events))
	for _, e := range events {
		if e.Label == "" {
			continue
		}
		line := "- "
		if e.StartTime != "" {
			line += fmt.Sprintf("[%s] ", e.StartTime)
		}
		line += e.Label
		if e.Summary != "" {
			line += ": " + e.Summary
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func formatConcepts(concepts []entities.GraphNode) string {
	if len(concepts) == 0 {
		return ""
	}
	lines := make([]string, 0, len(concepts))
	for _, c := range concepts {
		if c.Label != "" {
			lines = append(lines, "- "+c.Label)
		}
	}
	return strings.Join(lines, "\n")
}

func formatItems(items []entities.StructuredItem) string {
	if len(items) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, item := range items {
		if item.Title != "" {
			sb.WriteString("### " + item.Title + "\n")
		}
		for _, d := range item.Details {
			sb.WriteString("- " + d + "\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatHistory(history []ChatTurn) string {
	if len(history) == 0 {
		return ""
	}
	lines := make([]string, 0, len(history))
	for _, turn := range history {
		content := strings.TrimSpace(turn.Content)
		if content == "" {
			continue
		}
		role := turn.Role
		if role == "" {
			role = "user"
		}
		lines = append(lines, strings.ToUpper(role[:1])+role[1:]+": "+content)
	}
	return strings.Join(lines, "\n")
}
