package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

type fakeRepo struct {
	mu       sync.Mutex
	meetings map[uuid.UUID]*entities.Meeting
	statuses []entities.MeetingStatus
}

func newFakeRepo(meetings ...*entities.Meeting) *fakeRepo {
	r := &fakeRepo{meetings: map[uuid.UUID]*entities.Meeting{}}
	for _, m := range meetings {
		r.meetings[m.ID] = m
	}
	return r
}

func (r *fakeRepo) Create(_ context.Context, m *entities.Meeting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.meetings[m.ID] = m
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.meetings[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *fakeRepo) List(_ context.Context, _, _ int) ([]entities.Meeting, error) {
	return nil, nil
}

func (r *fakeRepo) UpdateStatus(_ context.Context, id uuid.UUID, status entities.MeetingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.meetings[id].Status = status
	r.statuses = append(r.statuses, status)
	return nil
}

func (r *fakeRepo) UpdateTranscript(_ context.Context, id uuid.UUID, transcript string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.meetings[id].Transcript = transcript
	return nil
}

func (r *fakeRepo) UpdateInsights(_ context.Context, id uuid.UUID, bundle *entities.InsightBundle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.meetings[id]
	m.Summary = bundle.Summary
	m.KeyPoints = bundle.KeyPoints
	m.ActionItems = bundle.ActionItems
	m.Sentiment = bundle.Sentiment
	m.Tags = bundle.Tags
	m.KnowledgeGraph = bundle.KnowledgeGraph.JSON()
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.meetings, id)
	return nil
}

type fakeNormalizer struct{ err error }

func (f *fakeNormalizer) Normalize(_ context.Context, _ string) (string, func(), error) {
	if f.err != nil {
		return "", nil, f.err
	}
	return "/tmp/fake.wav", func() {}, nil
}

type fakeTranscriber struct {
	words []entities.Word
	err   error
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ string) (*entities.Transcription, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &entities.Transcription{Words: f.words}, nil
}

type fakeInsights struct{}

func (f *fakeInsights) Generate(_ context.Context, _ string) *entities.InsightBundle {
	return &entities.InsightBundle{
		Summary:        "## Test Meeting\nA short test.",
		KeyPoints:      "### Point\n- detail",
		ActionItems:    "### 1. Task\n- do it",
		Sentiment:      "Neutral.",
		Tags:           "test",
		KnowledgeGraph: entities.EmptyKnowledgeGraph(),
	}
}

type fakeGraph struct {
	configured bool
	err        error
	upserts    int
	mu         sync.Mutex
}

func (f *fakeGraph) Configured() bool { return f.configured }

func (f *fakeGraph) Upsert(_ context.Context, _ entities.MeetingSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	return f.err
}

func writeSourceFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recording.mp4")
	if err := os.WriteFile(path, []byte("fake media"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testMeeting(path string) *entities.Meeting {
	return entities.NewMeeting("recording.mp4", "saved.mp4", path)
}

var testWords = []entities.Word{
	{Start: 0.0, Text: "hi", Speaker: 0},
	{Start: 0.6, Text: "there", Speaker: 0},
	{Start: 1.1, Text: "hey", Speaker: 1},
}

func TestProcessMeetingHappyPath(t *testing.T) {
	path := writeSourceFile(t)
	meeting := testMeeting(path)
	repo := newFakeRepo(meeting)
	graph := &fakeGraph{configured: true}

	svc := NewService(repo, &fakeNormalizer{}, &fakeTranscriber{words: testWords}, &fakeInsights{}, graph, nil)

	if err := svc.ProcessMeeting(context.Background(), meeting.ID); err != nil {
		t.Fatalf("ProcessMeeting returned error: %v", err)
	}

	got, _ := repo.GetByID(context.Background(), meeting.ID)
	if got.Status != entities.MeetingStatusCompleted {
		t.Errorf("status = %s; want COMPLETED", got.Status)
	}
	if !strings.Contains(got.Transcript, "SPEAKER_0: hi there") {
		t.Errorf("transcript = %q", got.Transcript)
	}
	if got.Summary == "" {
		t.Error("summary should be persisted")
	}
	if len(repo.statuses) < 2 ||
		repo.statuses[0] != entities.MeetingStatusProcessing ||
		repo.statuses[len(repo.statuses)-1] != entities.MeetingStatusCompleted {
		t.Errorf("status sequence = %v", repo.statuses)
	}
	if graph.upserts != 1 {
		t.Errorf("graph upserts = %d; want 1", graph.upserts)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("source file should be removed after success")
	}
}

func TestProcessMeetingTranscriptionFailure(t *testing.T) {
	path := writeSourceFile(t)
	meeting := testMeeting(path)
	repo := newFakeRepo(meeting)

	svc := NewService(repo, &fakeNormalizer{}, &fakeTranscriber{err: errors.New("connection refused")}, &fakeInsights{}, &fakeGraph{}, nil)

	err := svc.ProcessMeeting(context.Background(), meeting.ID)
	if err == nil {
		t.Fatal("expected error")
	}

	got, _ := repo.GetByID(context.Background(), meeting.ID)
	// The worker, not the pipeline, decides when a failure is terminal
	if got.Status != entities.MeetingStatusProcessing {
		t.Errorf("status = %s; want PROCESSING", got.Status)
	}
	if _, statErr := os.Stat(path); statErr != nil {
		t.Error("source file should survive a failed run")
	}
}

func TestProcessMeetingGraphFailureIsNonFatal(t *testing.T) {
	path := writeSourceFile(t)
	meeting := testMeeting(path)
	repo := newFakeRepo(meeting)
	graph := &fakeGraph{configured: true, err: errors.New("graph down")}

	svc := NewService(repo, &fakeNormalizer{}, &fakeTranscriber{words: testWords}, &fakeInsights{}, graph, nil)

	if err := svc.ProcessMeeting(context.Background(), meeting.ID); err != nil {
		t.Fatalf("graph failure should not fail the pipeline: %v", err)
	}

	got, _ := repo.GetByID(context.Background(), meeting.ID)
	if got.Status != entities.MeetingStatusCompleted {
		t.Errorf("status = %s; want COMPLETED", got.Status)
	}
}

func TestProcessMeetingUnconfiguredGraphSkipped(t *testing.T) {
	path := writeSourceFile(t)
	meeting := testMeeting(path)
	repo := newFakeRepo(meeting)
	graph := &fakeGraph{configured: false}

	svc := NewService(repo, &fakeNormalizer{}, &fakeTranscriber{words: testWords}, &fakeInsights{}, graph, nil)

	if err := svc.ProcessMeeting(context.Background(), meeting.ID); err != nil {
		t.Fatalf("ProcessMeeting returned error: %v", err)
	}
	if graph.upserts != 0 {
		t.Errorf("graph upserts = %d; want 0", graph.upserts)
	}
}

func TestProcessMeetingNotFound(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeNormalizer{}, &fakeTranscriber{}, &fakeInsights{}, &fakeGraph{}, nil)

	if err := svc.ProcessMeeting(context.Background(), uuid.New()); err == nil {
		t.Fatal("expected error for unknown meeting")
	}
}

func TestProcessMeetingToleratesMissingSourceOnRerun(t *testing.T) {
	meeting := testMeeting(filepath.Join(t.TempDir(), "already-gone.mp4"))
	repo := newFakeRepo(meeting)

	svc := NewService(repo, &fakeNormalizer{}, &fakeTranscriber{words: testWords}, &fakeInsights{}, &fakeGraph{}, nil)

	if err := svc.ProcessMeeting(context.Background(), meeting.ID); err != nil {
		t.Fatalf("missing source at cleanup must be tolerated: %v", err)
	}
	got, _ := repo.GetByID(context.Background(), meeting.ID)
	if got.Status != entities.MeetingStatusCompleted {
		t.Errorf("status = %s; want COMPLETED", got.Status)
	}
}

func TestMarkFailed(t *testing.T) {
	meeting := testMeeting("")
	repo := newFakeRepo(meeting)
	svc := NewService(repo, &fakeNormalizer{}, &fakeTranscriber{}, &fakeInsights{}, &fakeGraph{}, nil)

	svc.MarkFailed(context.Background(), meeting.ID, errors.New("gave up"))

	got, _ := repo.GetByID(context.Background(), meeting.ID)
	if got.Status != entities.MeetingStatusFailed {
		t.Errorf("status = %s; want FAILED", got.Status)
	}
}
