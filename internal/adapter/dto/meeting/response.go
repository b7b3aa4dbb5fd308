package meeting

import (
	"encoding/json"
	"time"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// MeetingResponse represents a meeting in responses
type MeetingResponse struct {
	ID               string    `json:"id"`
	OriginalFilename string    `json:"original_filename"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// StatusResponse represents the processing state of a meeting
type StatusResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// DetailsResponse carries the full processed record
type DetailsResponse struct {
	ID               string    `json:"id"`
	OriginalFilename string    `json:"original_filename"`
	Status           string    `json:"status"`
	Transcript       string    `json:"transcript,omitempty"`
	Summary          string    `json:"summary,omitempty"`
	KeyPoints        string    `json:"key_points,omitempty"`
	ActionItems      string    `json:"action_items,omitempty"`
	Sentiment        string    `json:"sentiment,omitempty"`
	Tags             string    `json:"tags,omitempty"`
	KnowledgeGraph   any       `json:"knowledge_graph,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// StructuredItemResponse is a titled bullet group
type StructuredItemResponse struct {
	Title   string   `json:"title"`
	Details []string `json:"details"`
}

// ParticipantResponse represents a participant in the graph context
type ParticipantResponse struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name"`
	Role         string `json:"role,omitempty"`
	Organization string `json:"organization,omitempty"`
}

// DecisionResponse represents a recorded decision
type DecisionResponse struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Owner       string `json:"owner,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
}

// TimelineEventResponse represents one timeline entry
type TimelineEventResponse struct {
	ID        string `json:"id,omitempty"`
	Label     string `json:"label"`
	Summary   string `json:"summary,omitempty"`
	StartTime string `json:"start_time,omitempty"`
}

// ConceptResponse represents a concept node
type ConceptResponse struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// RelationResponse represents a concept relation
type RelationResponse struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
}

// GraphContextResponse is the denormalized per-meeting view
type GraphContextResponse struct {
	MeetingID    string                   `json:"meeting_id"`
	Title        string                   `json:"title"`
	CreatedAt    string                   `json:"created_at,omitempty"`
	Summary      string                   `json:"summary,omitempty"`
	Sentiment    string                   `json:"sentiment,omitempty"`
	Tags         []string                 `json:"tags"`
	Topics       []string                 `json:"topics"`
	KeyPoints    []StructuredItemResponse `json:"key_points"`
	ActionItems  []StructuredItemResponse `json:"action_items"`
	Participants []ParticipantResponse    `json:"participants"`
	Decisions    []DecisionResponse       `json:"decisions"`
	Timeline     []TimelineEventResponse  `json:"timeline"`
	Concepts     []ConceptResponse        `json:"concepts"`
	Relations    []RelationResponse       `json:"relations"`
	FromGraph    bool                     `json:"from_graph"`
}

// ChatResponse represents a grounded chat reply
type ChatResponse struct {
	MeetingID string `json:"meeting_id"`
	Reply     string `json:"reply"`
}

// SearchHitResponse is one search result
type SearchHitResponse struct {
	MeetingID string  `json:"meeting_id"`
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	CreatedAt string  `json:"created_at,omitempty"`
	Tags      string  `json:"tags,omitempty"`
	Relevance float64 `json:"relevance"`
}

// SearchResponse wraps search results
type SearchResponse struct {
	Query string              `json:"query"`
	Hits  []SearchHitResponse `json:"hits"`
}

// ExportResponse carries the presigned report URL, or the rendered
// report inline when object storage is not configured
type ExportResponse struct {
	MeetingID string `json:"meeting_id"`
	URL       string `json:"url,omitempty"`
	Content   string `json:"content,omitempty"`
}

// ListResponse wraps a page of meetings
type ListResponse struct {
	Meetings []MeetingResponse `json:"meetings"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

// ToMeetingResponse maps an entity to its list/summary shape
func ToMeetingResponse(m *entities.Meeting) MeetingResponse {
	return MeetingResponse{
		ID:               m.ID.String(),
		OriginalFilename: m.OriginalFilename,
		Status:           string(m.Status),
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// ToDetailsResponse maps an entity to its full shape
func ToDetailsResponse(m *entities.Meeting) DetailsResponse {
	resp := DetailsResponse{
		ID:               m.ID.String(),
		OriginalFilename: m.OriginalFilename,
		Status:           string(m.Status),
		Transcript:       m.Transcript,
		Summary:          m.Summary,
		KeyPoints:        m.KeyPoints,
		ActionItems:      m.ActionItems,
		Sentiment:        m.Sentiment,
		Tags:             m.Tags,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
	if len(m.KnowledgeGraph) > 0 {
		var kg entities.KnowledgeGraph
		if err := json.Unmarshal(m.KnowledgeGraph, &kg); err == nil {
			kg.Normalize()
			resp.KnowledgeGraph = kg
		}
	}
	return resp
}

// ToGraphContextResponse maps the assembled context
func ToGraphContextResponse(mc *entities.MeetingContext) GraphContextResponse {
	resp := GraphContextResponse{
		MeetingID:    mc.MeetingID,
		Title:        mc.Title,
		CreatedAt:    mc.CreatedAt,
		Summary:      mc.Summary,
		Sentiment:    mc.Sentiment,
		Tags:         emptyIfNil(mc.Tags),
		Topics:       emptyIfNil(mc.Topics),
		KeyPoints:    make([]StructuredItemResponse, 0, len(mc.KeyPoints)),
		ActionItems:  make([]StructuredItemResponse, 0, len(mc.ActionItems)),
		Participants: make([]ParticipantResponse, 0, len(mc.Participants)),
		Decisions:    make([]DecisionResponse, 0, len(mc.Decisions)),
		Timeline:     make([]TimelineEventResponse, 0, len(mc.Timeline)),
		Concepts:     make([]ConceptResponse, 0, len(mc.Concepts)),
		Relations:    make([]RelationResponse, 0, len(mc.Relations)),
		FromGraph:    mc.FromGraph,
	}
	for _, item := range mc.KeyPoints {
		resp.KeyPoints = append(resp.KeyPoints, StructuredItemResponse{Title: item.Title, Details: emptyIfNil(item.Details)})
	}
	for _, item := range mc.ActionItems {
		resp.ActionItems = append(resp.ActionItems, StructuredItemResponse{Title: item.Title, Details: emptyIfNil(item.Details)})
	}
	for _, p := range mc.Participants {
		resp.Participants = append(resp.Participants, ParticipantResponse{
			ID:           p.ID,
			Name:         p.Name,
			Role:         p.Role,
			Organization: p.Organization,
		})
	}
	for _, d := range mc.Decisions {
		resp.Decisions = append(resp.Decisions, DecisionResponse{
			ID:          d.ID,
			Title:       d.Title,
			Description: d.Description,
			Owner:       d.Owner,
			DueDate:     d.DueDate,
		})
	}
	for _, e := range mc.Timeline {
		resp.Timeline = append(resp.Timeline, TimelineEventResponse{
			ID:        e.ID,
			Label:     e.Label,
			Summary:   e.Summary,
			StartTime: e.StartTime,
		})
	}
	for _, n := range mc.Concepts {
		resp.Concepts = append(resp.Concepts, ConceptResponse{ID: n.ID, Label: n.Label})
	}
	for _, r := range mc.Relations {
		resp.Relations = append(resp.Relations, RelationResponse{Source: r.From, Target: r.To, Label: r.Label})
	}
	return resp
}

// ToSearchResponse maps search hits
func ToSearchResponse(query string, hits []entities.SearchHit) SearchResponse {
	resp := SearchResponse{Query: query, Hits: make([]SearchHitResponse, 0, len(hits))}
	for _, h := range hits {
		resp.Hits = append(resp.Hits, SearchHitResponse{
			MeetingID: h.MeetingID,
			Title:     h.Title,
			Content:   h.Content,
			CreatedAt: h.CreatedAt,
			Tags:      h.Tags,
			Relevance: h.Relevance,
		})
	}
	return resp
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
