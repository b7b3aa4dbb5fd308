package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MeetingStatus represents the lifecycle state of an uploaded meeting
type MeetingStatus string

const (
	MeetingStatusPending    MeetingStatus = "PENDING"    // Uploaded, waiting for a worker
	MeetingStatusProcessing MeetingStatus = "PROCESSING" // Pipeline is running
	MeetingStatusCompleted  MeetingStatus = "COMPLETED"  // All stages finished
	MeetingStatusFailed     MeetingStatus = "FAILED"     // Pipeline gave up
)

// Meeting is the aggregate root for one uploaded recording.
// The relational row is the single source of truth for status; the graph
// counterpart carries denormalized copies for self-contained querying.
type Meeting struct {
	ID               uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OriginalFilename string         `json:"original_filename" gorm:"type:varchar(512);not null"`
	SavedFilename    string         `json:"saved_filename" gorm:"type:varchar(512);uniqueIndex;not null"`
	FilePath         string         `json:"file_path" gorm:"type:text;not null"`
	Status           MeetingStatus  `json:"status" gorm:"type:varchar(20);not null;index;default:'PENDING'"`
	Transcript       string         `json:"transcript,omitempty" gorm:"type:text"`
	Summary          string         `json:"summary,omitempty" gorm:"type:text"`
	KeyPoints        string         `json:"key_points,omitempty" gorm:"type:text"`
	ActionItems      string         `json:"action_items,omitempty" gorm:"type:text"`
	Sentiment        string         `json:"sentiment,omitempty" gorm:"type:text"`
	Tags             string         `json:"tags,omitempty" gorm:"type:text"`
	KnowledgeGraph   datatypes.JSON `json:"knowledge_graph,omitempty" gorm:"type:jsonb"`
	CreatedAt        time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Meeting) TableName() string {
	return "meetings"
}

// NewMeeting creates a new meeting record in the PENDING state
func NewMeeting(originalFilename, savedFilename, filePath string) *Meeting {
	return &Meeting{
		ID:               uuid.New(),
		OriginalFilename: originalFilename,
		SavedFilename:    savedFilename,
		FilePath:         filePath,
		Status:           MeetingStatusPending,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
}

// Snapshot projects the row into the shape the graph store persists.
func (m *Meeting) Snapshot() MeetingSnapshot {
	return MeetingSnapshot{
		ID:               m.ID.String(),
		OriginalFilename: m.OriginalFilename,
		SavedFilename:    m.SavedFilename,
		CreatedAt:        m.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:        m.UpdatedAt.UTC().Format(time.RFC3339),
		Status:           string(m.Status),
		Summary:          m.Summary,
		KeyPoints:        m.KeyPoints,
		ActionItems:      m.ActionItems,
		Sentiment:        m.Sentiment,
		Tags:             m.Tags,
		Transcript:       m.Transcript,
		KnowledgeGraph:   string(m.KnowledgeGraph),
	}
}

// MeetingSnapshot is the denormalized projection handed to the graph store.
// All fields are plain strings so the snapshot survives serialization into
// query parameters without further conversion.
type MeetingSnapshot struct {
	ID               string
	OriginalFilename string
	SavedFilename    string
	CreatedAt        string
	UpdatedAt        string
	Status           string
	Summary          string
	KeyPoints        string
	ActionItems      string
	Sentiment        string
	Tags             string
	Transcript       string
	KnowledgeGraph   string
}
