package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/pkg/config"
)

const (
	pendingKey    = "pipeline:pending"
	processingKey = "pipeline:processing"
	scheduledKey  = "pipeline:scheduled"
)

// NewRedisClient creates a Redis client and verifies connectivity
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// Task is one unit of pipeline work
type Task struct {
	MeetingID uuid.UUID `json:"meeting_id"`
	Attempt   int       `json:"attempt"`
}

// RedisQueue is a list backed work queue with at-least-once delivery.
// Dequeued tasks sit on a processing list until acknowledged; unacked
// tasks from a crashed worker are reclaimed at startup.
type RedisQueue struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisQueue creates a queue on top of an existing Redis client
func NewRedisQueue(client *redis.Client, logger *zap.Logger) *RedisQueue {
	return &RedisQueue{client: client, logger: logger}
}

// Enqueue pushes a task for immediate processing
func (q *RedisQueue) Enqueue(ctx context.Context, task Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}
	if err := q.client.LPush(ctx, pendingKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	if q.logger != nil {
		q.logger.Info("📬 Task enqueued",
			zap.String("meeting_id", task.MeetingID.String()),
			zap.Int("attempt", task.Attempt),
		)
	}
	return nil
}

// EnqueueAfter schedules a task to become available after the delay
func (q *RedisQueue) EnqueueAfter(ctx context.Context, task Task, delay time.Duration) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}
	score := float64(time.Now().Add(delay).Unix())
	if err := q.client.ZAdd(ctx, scheduledKey, redis.Z{Score: score, Member: payload}).Err(); err != nil {
		return fmt.Errorf("failed to schedule task: %w", err)
	}
	if q.logger != nil {
		q.logger.Info("⏰ Task scheduled for retry",
			zap.String("meeting_id", task.MeetingID.String()),
			zap.Int("attempt", task.Attempt),
			zap.Duration("delay", delay),
		)
	}
	return nil
}

// Dequeue blocks up to the timeout waiting for a task. The raw payload is
// returned alongside the task so Ack can remove the exact entry. Returns
// (nil, "", nil) when the timeout elapses with nothing to do.
func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) (*Task, string, error) {
	payload, err := q.client.BLMove(ctx, pendingKey, processingKey, "RIGHT", "LEFT", timeout).Result()
	if err == redis.Nil {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to dequeue task: %w", err)
	}

	task, err := decodeTask(payload)
	if err != nil {
		// Drop the malformed entry so it cannot wedge the queue
		q.client.LRem(ctx, processingKey, 1, payload)
		return nil, "", err
	}
	return task, payload, nil
}

func decodeTask(payload string) (*Task, error) {
	var task Task
	if err := json.Unmarshal([]byte(payload), &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task payload: %w", err)
	}
	if task.MeetingID == uuid.Nil {
		return nil, fmt.Errorf("task payload missing meeting id")
	}
	return &task, nil
}

// Ack removes a completed task from the processing list
func (q *RedisQueue) Ack(ctx context.Context, payload string) error {
	return q.client.LRem(ctx, processingKey, 1, payload).Err()
}

// Reclaim moves every task left on the processing list back to pending.
// Called once at worker startup to recover from crashes.
func (q *RedisQueue) Reclaim(ctx context.Context) (int, error) {
	count := 0
	for {
		_, err := q.client.LMove(ctx, processingKey, pendingKey, "RIGHT", "LEFT").Result()
		if err == redis.Nil {
			break
		}
		if err != nil {
			return count, fmt.Errorf("failed to reclaim task: %w", err)
		}
		count++
	}
	if count > 0 && q.logger != nil {
		q.logger.Warn("🧹 Reclaimed unacknowledged tasks", zap.Int("count", count))
	}
	return count, nil
}

// PromoteDue moves scheduled tasks whose time has arrived onto the pending
// list. Returns how many were promoted.
func (q *RedisQueue) PromoteDue(ctx context.Context) (int, error) {
	now := strconv.FormatInt(time.Now().Unix(), 10)
	payloads, err := q.client.ZRangeByScore(ctx, scheduledKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: now,
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read scheduled tasks: %w", err)
	}

	count := 0
	for _, payload := range payloads {
		// Remove first so two promoters cannot both push the same task
		removed, err := q.client.ZRem(ctx, scheduledKey, payload).Result()
		if err != nil {
			return count, fmt.Errorf("failed to remove scheduled task: %w", err)
		}
		if removed == 0 {
			continue
		}
		if err := q.client.LPush(ctx, pendingKey, payload).Err(); err != nil {
			return count, fmt.Errorf("failed to promote scheduled task: %w", err)
		}
		count++
	}
	return count, nil
}

// Depth reports how many tasks are waiting
func (q *RedisQueue) Depth(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, pendingKey).Result()
}
