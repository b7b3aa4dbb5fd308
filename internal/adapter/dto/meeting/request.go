package meeting

// ChatTurnRequest is one prior exchange sent back by the client
type ChatTurnRequest struct {
	Role    string `json:"role" validate:"omitempty,oneof=user assistant"`
	Content string `json:"content"`
}

// ChatRequest represents the request to chat about a meeting
type ChatRequest struct {
	Message string            `json:"message" validate:"required,min=1,max=4000"`
	History []ChatTurnRequest `json:"history,omitempty" validate:"omitempty,max=50,dive"`
}

// SearchRequest represents query parameters for searching meetings
type SearchRequest struct {
	Query string `query:"query" validate:"required,min=3"`
	TopK  int    `query:"top_k" validate:"omitempty,min=1,max=50"`
}

// ListRequest represents query parameters for listing meetings
type ListRequest struct {
	Limit  int `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset int `query:"offset" validate:"omitempty,min=0"`
}
