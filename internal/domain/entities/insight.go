package entities

import "encoding/json"

// Sentinel values stored when an individual insight task fails. The pipeline
// keeps going; consumers can detect and surface the degraded field.
const (
	SummaryFailed     = "Error: Could not generate summary."
	KeyPointsFailed   = "Error: Could not generate key points."
	ActionItemsFailed = "Error: Could not generate action items."
	SentimentFailed   = "Error: Could not generate sentiment analysis."
	TagsFailed        = "Error: Could not generate tags."
)

// InsightBundle holds every artifact the insight stage produces for one
// meeting. Text fields are markdown; Tags is a comma separated list.
type InsightBundle struct {
	Summary        string
	KeyPoints      string
	ActionItems    string
	Sentiment      string
	Tags           string
	KnowledgeGraph KnowledgeGraph
}

// GraphNode is an extracted concept inside a meeting's knowledge graph.
type GraphNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type,omitempty"`
}

// GraphEdge links two GraphNodes by their IDs.
type GraphEdge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label,omitempty"`
}

// Participant is a speaker or mentioned person with their observed role.
type Participant struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name"`
	Role         string `json:"role,omitempty"`
	Organization string `json:"organization,omitempty"`
}

// Decision is a concrete decision reached during the meeting.
type Decision struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Owner       string `json:"owner,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
}

// TimelineEvent is a notable moment with an approximate position label.
type TimelineEvent struct {
	ID        string `json:"id,omitempty"`
	Label     string `json:"label"`
	Summary   string `json:"summary,omitempty"`
	StartTime string `json:"start_time,omitempty"`
}

// KnowledgeGraph is the structured extraction produced by the language
// model. Every collection is non-nil after Normalize so serialization
// always yields arrays, never null.
type KnowledgeGraph struct {
	Nodes        []GraphNode     `json:"nodes"`
	Edges        []GraphEdge     `json:"edges"`
	Participants []Participant   `json:"participants"`
	Decisions    []Decision      `json:"decisions"`
	Timeline     []TimelineEvent `json:"timeline"`
	Topics       []string        `json:"topics"`
}

// EmptyKnowledgeGraph returns the fallback shape used when extraction fails
// or the model returns unusable output.
func EmptyKnowledgeGraph() KnowledgeGraph {
	kg := KnowledgeGraph{}
	kg.Normalize()
	return kg
}

// Normalize replaces nil collections with empty ones so the JSON form is
// stable regardless of what the model omitted.
func (kg *KnowledgeGraph) Normalize() {
	if kg.Nodes == nil {
		kg.Nodes = []GraphNode{}
	}
	if kg.Edges == nil {
		kg.Edges = []GraphEdge{}
	}
	if kg.Participants == nil {
		kg.Participants = []Participant{}
	}
	if kg.Decisions == nil {
		kg.Decisions = []Decision{}
	}
	if kg.Timeline == nil {
		kg.Timeline = []TimelineEvent{}
	}
	if kg.Topics == nil {
		kg.Topics = []string{}
	}
}

// IsEmpty reports whether the graph carries no extracted content at all.
func (kg KnowledgeGraph) IsEmpty() bool {
	return len(kg.Nodes) == 0 && len(kg.Edges) == 0 &&
		len(kg.Participants) == 0 && len(kg.Decisions) == 0 &&
		len(kg.Timeline) == 0 && len(kg.Topics) == 0
}

// JSON serializes the graph, falling back to the empty shape on error.
func (kg KnowledgeGraph) JSON() []byte {
	kg.Normalize()
	data, err := json.Marshal(kg)
	if err != nil {
		data, _ = json.Marshal(EmptyKnowledgeGraph())
	}
	return data
}
