package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-insights/errors"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/queue"
	"github.com/johnquangdev/meeting-insights/pkg/config"
	"github.com/johnquangdev/meeting-insights/pkg/jobcontext"
)

const dequeueWait = 5 * time.Second

// TaskQueue is the queue surface the worker pool consumes
type TaskQueue interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*queue.Task, string, error)
	Ack(ctx context.Context, payload string) error
	EnqueueAfter(ctx context.Context, task queue.Task, delay time.Duration) error
	Reclaim(ctx context.Context) (int, error)
	PromoteDue(ctx context.Context) (int, error)
}

// WorkerPool pulls pipeline tasks off the queue and runs them. A task that
// fails with a retryable error and has attempts left is re-scheduled with
// exponential backoff while the meeting stays PROCESSING; only when no
// retry will follow does the meeting flip to FAILED.
type WorkerPool struct {
	queue   TaskQueue
	service *Service
	cfg     config.PipelineConfig
	logger  *zap.Logger

	stopChan  chan struct{}
	wg        sync.WaitGroup
	isRunning bool
	mu        sync.Mutex
}

// NewWorkerPool creates a worker pool
func NewWorkerPool(q TaskQueue, service *Service, cfg config.PipelineConfig, logger *zap.Logger) *WorkerPool {
	return &WorkerPool{
		queue:   q,
		service: service,
		cfg:     cfg,
		logger:  logger,
	}
}

// Start reclaims orphaned tasks and launches the worker goroutines
func (p *WorkerPool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isRunning {
		return fmt.Errorf("worker pool already running")
	}
	p.isRunning = true
	p.stopChan = make(chan struct{})

	if _, err := p.queue.Reclaim(ctx); err != nil {
		if p.logger != nil {
			p.logger.Warn("⚠️ Failed to reclaim orphaned tasks", zap.Error(err))
		}
	}

	if p.logger != nil {
		p.logger.Info("🚀 Starting pipeline worker pool",
			zap.Int("worker_count", p.cfg.WorkerCount),
			zap.Int("max_attempts", p.cfg.MaxAttempts),
		)
	}

	for i := 0; i < p.cfg.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}

	p.wg.Add(1)
	go p.promoter(ctx)

	return nil
}

// Stop gracefully shuts down all workers
func (p *WorkerPool) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.isRunning {
		return fmt.Errorf("worker pool not running")
	}

	if p.logger != nil {
		p.logger.Info("🛑 Stopping pipeline worker pool...")
	}

	close(p.stopChan)
	p.wg.Wait()
	p.isRunning = false

	if p.logger != nil {
		p.logger.Info("✅ Pipeline worker pool stopped")
	}
	return nil
}

func (p *WorkerPool) worker(ctx context.Context, workerID int) {
	defer p.wg.Done()

	if p.logger != nil {
		p.logger.Info("👷 Worker started", zap.Int("worker_id", workerID))
	}

	for {
		select {
		case <-p.stopChan:
			if p.logger != nil {
				p.logger.Info("👷 Worker stopping", zap.Int("worker_id", workerID))
			}
			return
		case <-ctx.Done():
			return
		default:
		}

		task, payload, err := p.queue.Dequeue(ctx, dequeueWait)
		if err != nil {
			if p.logger != nil {
				p.logger.Error("❌ Failed to dequeue task",
					zap.Int("worker_id", workerID),
					zap.Error(err),
				)
			}
			time.Sleep(time.Second)
			continue
		}
		if task == nil {
			continue
		}

		p.runTask(ctx, workerID, *task, payload)
	}
}

func (p *WorkerPool) runTask(ctx context.Context, workerID int, task queue.Task, payload string) {
	jobCtx, cancel := jobcontext.JobBegin(ctx, task.MeetingID, "process_meeting", workerID, task.Attempt, p.cfg.JobTimeout)
	defer cancel()

	if p.logger != nil {
		p.logger.Info("👷 Worker claimed task",
			zap.Int("worker_id", workerID),
			zap.String("meeting_id", task.MeetingID.String()),
			zap.Int("attempt", task.Attempt),
		)
	}

	err := p.service.ProcessMeeting(jobCtx, task.MeetingID)

	// The task leaves the processing list regardless of outcome; retries
	// go back through the scheduled set as a fresh entry
	if ackErr := p.queue.Ack(ctx, payload); ackErr != nil && p.logger != nil {
		p.logger.Warn("⚠️ Failed to ack task",
			zap.String("meeting_id", task.MeetingID.String()),
			zap.Error(ackErr),
		)
	}

	if err == nil {
		return
	}

	if p.shouldRetry(err, task.Attempt) {
		delay := jobcontext.CalculateBackoff(task.Attempt, p.cfg.BackoffBase)
		retry := queue.Task{MeetingID: task.MeetingID, Attempt: task.Attempt + 1}
		if enqueueErr := p.queue.EnqueueAfter(ctx, retry, delay); enqueueErr != nil {
			// If the retry cannot be scheduled, the failure becomes terminal
			if p.logger != nil {
				p.logger.Error("❌ Failed to schedule retry",
					zap.String("meeting_id", task.MeetingID.String()),
					zap.Error(enqueueErr),
				)
			}
			p.service.MarkFailed(ctx, task.MeetingID, err)
		}
		return
	}

	p.service.MarkFailed(ctx, task.MeetingID, err)
}

// shouldRetry classifies an error for queue-level retry
func (p *WorkerPool) shouldRetry(err error, attempt int) bool {
	if attempt+1 >= p.cfg.MaxAttempts {
		return false
	}
	if jobcontext.IsNonRetryableError(err) {
		return false
	}
	return apperrors.IsTransient(err) || jobcontext.IsRetryableError(err)
}

// promoter periodically moves due scheduled retries onto the pending list
func (p *WorkerPool) promoter(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.queue.PromoteDue(ctx); err != nil {
				if p.logger != nil {
					p.logger.Error("❌ Failed to promote scheduled tasks", zap.Error(err))
				}
			}
		}
	}
}
