package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-insights/errors"
	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/internal/domain/repositories"
)

// InsightGenerator produces the insight bundle from a transcript
type InsightGenerator interface {
	Generate(ctx context.Context, transcript string) *entities.InsightBundle
}

// GraphSyncer persists the meeting projection into the graph store
type GraphSyncer interface {
	Configured() bool
	Upsert(ctx context.Context, snapshot entities.MeetingSnapshot) error
}

// Service runs the processing pipeline for one meeting at a time:
// normalize, transcribe, merge, generate insights, sync to graph.
// Every stage persists its output before the next stage starts.
type Service struct {
	meetings   repositories.MeetingRepository
	normalizer Normalizer
	transcribe Transcriber
	insights   InsightGenerator
	graphSync  GraphSyncer
	logger     *zap.Logger
}

// NewService wires the pipeline orchestrator
func NewService(
	meetings repositories.MeetingRepository,
	normalizer Normalizer,
	transcriber Transcriber,
	insights InsightGenerator,
	graphSync GraphSyncer,
	logger *zap.Logger,
) *Service {
	return &Service{
		meetings:   meetings,
		normalizer: normalizer,
		transcribe: transcriber,
		insights:   insights,
		graphSync:  graphSync,
		logger:     logger,
	}
}

// ProcessMeeting executes the full pipeline for a meeting. The caller owns
// retry and terminal-failure decisions; this function only reports errors.
// Graph sync failures are logged, never returned.
func (s *Service) ProcessMeeting(ctx context.Context, meetingID uuid.UUID) error {
	started := time.Now()

	meeting, err := s.meetings.GetByID(ctx, meetingID)
	if err != nil {
		return apperrors.Transient(fmt.Errorf("failed to load meeting: %w", err))
	}
	if meeting == nil {
		return apperrors.ErrMeetingNotFound.WithDetail(meetingID.String())
	}

	// Visible progress before any slow stage runs
	if err := s.meetings.UpdateStatus(ctx, meetingID, entities.MeetingStatusProcessing); err != nil {
		return apperrors.Transient(fmt.Errorf("failed to mark meeting as processing: %w", err))
	}
	meeting.Status = entities.MeetingStatusProcessing

	if s.logger != nil {
		s.logger.Info("🚀 Pipeline started",
			zap.String("meeting_id", meetingID.String()),
			zap.String("file", meeting.OriginalFilename),
		)
	}

	wavPath, cleanup, err := s.normalizer.Normalize(ctx, meeting.FilePath)
	if err != nil {
		return fmt.Errorf("media normalization failed: %w", err)
	}
	defer cleanup()

	transcription, err := s.transcribe.Transcribe(ctx, wavPath)
	if err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}

	transcript := FormatTurns(transcription.Words)
	if err := s.meetings.UpdateTranscript(ctx, meetingID, transcript); err != nil {
		return apperrors.Transient(fmt.Errorf("failed to persist transcript: %w", err))
	}
	meeting.Transcript = transcript

	if s.logger != nil {
		s.logger.Info("📝 Transcript persisted",
			zap.String("meeting_id", meetingID.String()),
			zap.Int("length", len(transcript)),
			zap.Float64("audio_secs", transcription.AudioSecs),
		)
	}

	bundle := s.insights.Generate(ctx, transcript)
	if err := s.meetings.UpdateInsights(ctx, meetingID, bundle); err != nil {
		return apperrors.Transient(fmt.Errorf("failed to persist insights: %w", err))
	}
	meeting.Summary = bundle.Summary
	meeting.KeyPoints = bundle.KeyPoints
	meeting.ActionItems = bundle.ActionItems
	meeting.Sentiment = bundle.Sentiment
	meeting.Tags = bundle.Tags
	meeting.KnowledgeGraph = bundle.KnowledgeGraph.JSON()
	meeting.UpdatedAt = time.Now()

	// Best-effort enrichment: the relational row already holds everything
	s.syncGraph(ctx, meeting)

	if err := s.meetings.UpdateStatus(ctx, meetingID, entities.MeetingStatusCompleted); err != nil {
		return apperrors.Transient(fmt.Errorf("failed to mark meeting as completed: %w", err))
	}

	s.removeSourceFile(meeting)

	if s.logger != nil {
		s.logger.Info("✅ Pipeline completed",
			zap.String("meeting_id", meetingID.String()),
			zap.Duration("elapsed", time.Since(started)),
		)
	}
	return nil
}

// MarkFailed flips the meeting to its terminal failure state. The source
// file is kept for diagnosis.
func (s *Service) MarkFailed(ctx context.Context, meetingID uuid.UUID, cause error) {
	if err := s.meetings.UpdateStatus(ctx, meetingID, entities.MeetingStatusFailed); err != nil {
		if s.logger != nil {
			s.logger.Error("❌ Failed to mark meeting as failed",
				zap.String("meeting_id", meetingID.String()),
				zap.Error(err),
			)
		}
		return
	}
	if s.logger != nil {
		s.logger.Error("💀 Pipeline failed permanently",
			zap.String("meeting_id", meetingID.String()),
			zap.Error(cause),
		)
	}
}

func (s *Service) syncGraph(ctx context.Context, meeting *entities.Meeting) {
	if s.graphSync == nil || !s.graphSync.Configured() {
		if s.logger != nil {
			s.logger.Info("⏭️ Graph store not configured, skipping sync",
				zap.String("meeting_id", meeting.ID.String()),
			)
		}
		return
	}
	if err := s.graphSync.Upsert(ctx, meeting.Snapshot()); err != nil {
		if s.logger != nil {
			s.logger.Warn("⚠️ Graph sync failed",
				zap.String("meeting_id", meeting.ID.String()),
				zap.Error(err),
			)
		}
	}
}

func (s *Service) removeSourceFile(meeting *entities.Meeting) {
	if meeting.FilePath == "" {
		return
	}
	if err := os.Remove(meeting.FilePath); err != nil && !os.IsNotExist(err) {
		if s.logger != nil {
			s.logger.Warn("⚠️ Failed to remove source file",
				zap.String("meeting_id", meeting.ID.String()),
				zap.String("path", meeting.FilePath),
				zap.Error(err),
			)
		}
	}
}
