package jobcontext

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestJobBeginSetsMetadata(t *testing.T) {
	jobID := uuid.New()
	ctx, cancel := JobBegin(context.Background(), jobID, "process_meeting", 2, 1, time.Minute)
	defer cancel()

	gotID, ok := GetJobID(ctx)
	if !ok || gotID != jobID {
		t.Errorf("GetJobID = %v, %v; want %v, true", gotID, ok, jobID)
	}

	gotType, ok := GetJobType(ctx)
	if !ok || gotType != "process_meeting" {
		t.Errorf("GetJobType = %q, %v; want process_meeting, true", gotType, ok)
	}

	if got := GetWorkerID(ctx); got != 2 {
		t.Errorf("GetWorkerID = %d; want 2", got)
	}

	if got := GetRetryAttempt(ctx); got != 1 {
		t.Errorf("GetRetryAttempt = %d; want 1", got)
	}

	if _, ok := GetJobStartTime(ctx); !ok {
		t.Error("GetJobStartTime returned ok=false")
	}

	if _, ok := ctx.Deadline(); !ok {
		t.Error("context should have a deadline")
	}
}

func TestGetWorkerIDDefault(t *testing.T) {
	if got := GetWorkerID(context.Background()); got != -1 {
		t.Errorf("GetWorkerID on bare context = %d; want -1", got)
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"deadline", errors.New("context deadline exceeded"), true},
		{"rate limit", errors.New("API error: 429 Too Many Requests"), true},
		{"server error", errors.New("status 503 service unavailable"), true},
		{"deadlock", errors.New("pq: deadlock detected"), true},
		{"plain failure", errors.New("something odd happened"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryableError(tt.err); got != tt.want {
				t.Errorf("IsRetryableError(%v) = %v; want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsNonRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"unauthorized", errors.New("API error: 401 unauthorized"), true},
		{"bad request", errors.New("bad request: missing field"), true},
		{"validation", errors.New("validation failed on field name"), true},
		{"plain failure", errors.New("something odd happened"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNonRetryableError(tt.err); got != tt.want {
				t.Errorf("IsNonRetryableError(%v) = %v; want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff(t *testing.T) {
	base := 2 * time.Second

	if got := CalculateBackoff(0, base); got != 2*time.Second {
		t.Errorf("attempt 0 = %v; want 2s", got)
	}
	if got := CalculateBackoff(2, base); got != 8*time.Second {
		t.Errorf("attempt 2 = %v; want 8s", got)
	}
	if got := CalculateBackoff(10, base); got != 60*time.Second {
		t.Errorf("attempt 10 = %v; want capped 60s", got)
	}
	if got := CalculateBackoff(-5, base); got != 2*time.Second {
		t.Errorf("negative attempt = %v; want 2s", got)
	}
}
