package meeting

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-insights/errors"
	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/internal/domain/repositories"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/graph"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/queue"
	"github.com/johnquangdev/meeting-insights/internal/usecase/insights"
	"github.com/johnquangdev/meeting-insights/pkg/config"
)

// Enqueuer dispatches pipeline tasks
type Enqueuer interface {
	Enqueue(ctx context.Context, task queue.Task) error
}

// GraphStore is the read/write surface of the property graph the service
// depends on
type GraphStore interface {
	Configured() bool
	Upsert(ctx context.Context, snapshot entities.MeetingSnapshot) error
	FetchContext(ctx context.Context, meetingID string) (*entities.MeetingContext, error)
	Search(ctx context.Context, query string, limit int) ([]entities.SearchHit, error)
}

// Chatter generates grounded chat replies
type Chatter interface {
	Chat(ctx context.Context, in insights.ChatPromptInput) (string, error)
}

// ReportStore persists rendered reports and returns a download URL
type ReportStore interface {
	UploadReport(ctx context.Context, objectName, content string) (string, error)
}

// Service is the read-and-submit side of the system: uploads, status,
// details, assembled graph context, chat, search and report export.
type Service struct {
	meetings repositories.MeetingRepository
	enqueue  Enqueuer
	graph    GraphStore
	chatter  Chatter
	reports  ReportStore
	upload   config.UploadConfig
	logger   *zap.Logger
}

// NewService wires the meeting service
func NewService(
	meetings repositories.MeetingRepository,
	enqueue Enqueuer,
	graphStore GraphStore,
	chatter Chatter,
	reports ReportStore,
	upload config.UploadConfig,
	logger *zap.Logger,
) *Service {
	return &Service{
		meetings: meetings,
		enqueue:  enqueue,
		graph:    graphStore,
		chatter:  chatter,
		reports:  reports,
		upload:   upload,
		logger:   logger,
	}
}

// Submit validates and stores an uploaded recording, creates the PENDING
// row and dispatches the pipeline task
func (s *Service) Submit(ctx context.Context, originalFilename string, size int64, src io.Reader) (*entities.Meeting, error) {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	if !s.allowedExtension(ext) {
		return nil, apperrors.ErrUnsupportedMedia.WithDetail(fmt.Sprintf("extension %q is not supported", ext))
	}
	if maxBytes := s.upload.MaxSizeMB * 1024 * 1024; size > maxBytes {
		return nil, apperrors.ErrFileTooLarge.WithDetail(fmt.Sprintf("limit is %d MB", s.upload.MaxSizeMB))
	}

	if err := os.MkdirAll(s.upload.Dir, 0o755); err != nil {
		return nil, apperrors.ErrInternal.WithRaw(fmt.Errorf("failed to create upload dir: %w", err))
	}

	savedFilename := uuid.New().String() + ext
	filePath := filepath.Join(s.upload.Dir, savedFilename)

	dst, err := os.Create(filePath)
	if err != nil {
		return nil, apperrors.ErrInternal.WithRaw(fmt.Errorf("failed to create upload file: %w", err))
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(filePath)
		return nil, apperrors.ErrInternal.WithRaw(fmt.Errorf("failed to store upload: %w", err))
	}
	if err := dst.Close(); err != nil {
		os.Remove(filePath)
		return nil, apperrors.ErrInternal.WithRaw(err)
	}

	meeting := entities.NewMeeting(originalFilename, savedFilename, filePath)
	if err := s.meetings.Create(ctx, meeting); err != nil {
		os.Remove(filePath)
		return nil, apperrors.ErrInternal.WithRaw(fmt.Errorf("failed to create meeting: %w", err))
	}

	if err := s.enqueue.Enqueue(ctx, queue.Task{MeetingID: meeting.ID}); err != nil {
		// The row stays PENDING; a later resubmission or manual requeue
		// can pick it up
		if s.logger != nil {
			s.logger.Error("❌ Failed to enqueue pipeline task",
				zap.String("meeting_id", meeting.ID.String()),
				zap.Error(err),
			)
		}
		return nil, apperrors.ErrInternal.WithRaw(err)
	}

	if s.logger != nil {
		s.logger.Info("📥 Meeting submitted",
			zap.String("meeting_id", meeting.ID.String()),
			zap.String("file", originalFilename),
			zap.Int64("size", size),
		)
	}
	return meeting, nil
}

// Status returns the lifecycle status for a meeting
func (s *Service) Status(ctx context.Context, id uuid.UUID) (entities.MeetingStatus, error) {
	meeting, err := s.getMeeting(ctx, id)
	if err != nil {
		return "", err
	}
	return meeting.Status, nil
}

// Details returns the full relational record
func (s *Service) Details(ctx context.Context, id uuid.UUID) (*entities.Meeting, error) {
	return s.getMeeting(ctx, id)
}

// List returns meetings newest first
func (s *Service) List(ctx context.Context, limit, offset int) ([]entities.Meeting, error) {
	meetings, err := s.meetings.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.ErrInternal.WithRaw(err)
	}
	return meetings, nil
}

// ExportResult is either a download URL or, when object storage is not
// configured, the rendered report itself
type ExportResult struct {
	URL     string
	Content string
}

// ExportReport renders the meeting's insights as a markdown report. With
// object storage configured the report is uploaded and a time-limited
// download URL returned; otherwise the content is returned inline.
func (s *Service) ExportReport(ctx context.Context, id uuid.UUID) (*ExportResult, error) {
	meeting, err := s.getMeeting(ctx, id)
	if err != nil {
		return nil, err
	}

	report := renderReport(meeting)
	if s.reports == nil {
		return &ExportResult{Content: report}, nil
	}

	objectName := fmt.Sprintf("reports/%s.md", meeting.ID)
	url, err := s.reports.UploadReport(ctx, objectName, report)
	if err != nil {
		return nil, apperrors.ErrInternal.WithRaw(fmt.Errorf("failed to export report: %w", err))
	}

	if s.logger != nil {
		s.logger.Info("📄 Report exported",
			zap.String("meeting_id", meeting.ID.String()),
			zap.String("object", objectName),
		)
	}
	return &ExportResult{URL: url}, nil
}

func (s *Service) getMeeting(ctx context.Context, id uuid.UUID) (*entities.Meeting, error) {
	meeting, err := s.meetings.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.ErrInternal.WithRaw(err)
	}
	if meeting == nil {
		return nil, apperrors.ErrMeetingNotFound.WithDetail(id.String())
	}
	return meeting, nil
}

func (s *Service) allowedExtension(ext string) bool {
	for _, allowed := range s.upload.AllowedFormats {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}

func renderReport(m *entities.Meeting) string {
	var sb strings.Builder
	title := graph.DeriveTitle(m.Summary, m.OriginalFilename)

	sb.WriteString("# " + title + "\n\n")
	sb.WriteString("- File: " + m.OriginalFilename + "\n")
	sb.WriteString("- Date: " + m.CreatedAt.Format("2006-01-02 15:04") + "\n")
	if m.Tags != "" {
		sb.WriteString("- Tags: " + m.Tags + "\n")
	}
	sb.WriteString("\n## Summary\n\n" + orEmpty(m.Summary) + "\n")
	sb.WriteString("\n## Key Points\n\n" + orEmpty(m.KeyPoints) + "\n")
	sb.WriteString("\n## Action Items\n\n" + orEmpty(m.ActionItems) + "\n")
	sb.WriteString("\n## Sentiment\n\n" + orEmpty(m.Sentiment) + "\n")
	if m.Transcript != "" {
		sb.WriteString("\n## Transcript\n\n```\n" + m.Transcript + "\n```\n")
	}
	return sb.String()
}

func orEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return "_Not available._"
	}
	return s
}
