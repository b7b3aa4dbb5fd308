package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// MeetingRepository handles meeting data operations
type MeetingRepository struct {
	db *gorm.DB
}

// NewMeetingRepository creates a new meeting repository
func NewMeetingRepository(db *gorm.DB) *MeetingRepository {
	return &MeetingRepository{db: db}
}

// GetDB exposes the underlying handle for health checks
func (r *MeetingRepository) GetDB() *gorm.DB {
	return r.db
}

// Create creates a new meeting
func (r *MeetingRepository) Create(ctx context.Context, meeting *entities.Meeting) error {
	if meeting == nil {
		return errors.New("meeting cannot be nil")
	}
	return r.db.WithContext(ctx).Create(meeting).Error
}

// GetByID retrieves a meeting by ID. Returns (nil, nil) when not found.
func (r *MeetingRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error) {
	var meeting entities.Meeting
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&meeting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &meeting, nil
}

// List retrieves meetings newest first
func (r *MeetingRepository) List(ctx context.Context, limit, offset int) ([]entities.Meeting, error) {
	if limit <= 0 {
		limit = 50
	}
	var meetings []entities.Meeting
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&meetings).Error
	return meetings, err
}

// UpdateStatus updates the lifecycle status of a meeting
func (r *MeetingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.MeetingStatus) error {
	return r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

// UpdateTranscript persists the merged transcript after the speech-to-text stage
func (r *MeetingRepository) UpdateTranscript(ctx context.Context, id uuid.UUID, transcript string) error {
	return r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"transcript": transcript,
			"updated_at": time.Now(),
		}).Error
}

// UpdateInsights persists every generated insight in one write
func (r *MeetingRepository) UpdateInsights(ctx context.Context, id uuid.UUID, bundle *entities.InsightBundle) error {
	if bundle == nil {
		return errors.New("insight bundle cannot be nil")
	}
	return r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"summary":         bundle.Summary,
			"key_points":      bundle.KeyPoints,
			"action_items":    bundle.ActionItems,
			"sentiment":       bundle.Sentiment,
			"tags":            bundle.Tags,
			"knowledge_graph": datatypes.JSON(bundle.KnowledgeGraph.JSON()),
			"updated_at":      time.Now(),
		}).Error
}

// Delete removes a meeting row
func (r *MeetingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&entities.Meeting{}).Error
}
