package entities

// StructuredItem is a titled block of detail lines parsed from a markdown
// insight section or fetched back from the graph store.
type StructuredItem struct {
	Title   string   `json:"title"`
	Details []string `json:"details"`
}

// MeetingContext is the assembled view backing chat, the graph view and
// detail screens. It merges graph-resident structure with relational
// fallbacks when the graph is unavailable.
type MeetingContext struct {
	MeetingID    string           `json:"meeting_id"`
	Title        string           `json:"title"`
	CreatedAt    string           `json:"created_at"`
	Summary      string           `json:"summary"`
	Sentiment    string           `json:"sentiment"`
	Tags         []string         `json:"tags"`
	Topics       []string         `json:"topics"`
	KeyPoints    []StructuredItem `json:"key_points"`
	ActionItems  []StructuredItem `json:"action_items"`
	Participants []Participant    `json:"participants"`
	Decisions    []Decision       `json:"decisions"`
	Timeline     []TimelineEvent  `json:"timeline"`
	Concepts     []GraphNode      `json:"concepts"`
	Relations    []GraphEdge      `json:"relations"`
	FromGraph    bool             `json:"from_graph"`
}

// SearchHit is one meeting matched by a search query.
type SearchHit struct {
	MeetingID string  `json:"meeting_id"`
	Content   string  `json:"content"`
	Title     string  `json:"title"`
	CreatedAt string  `json:"created_at"`
	Tags      string  `json:"tags"`
	Relevance float64 `json:"relevance"`
}
