package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// QueueResults is the Redis list key for result archive jobs.
	QueueResults = "worker:results"
	// QueueExports is the Redis list key for leaderboard export jobs.
	QueueExports = "worker:exports"
	// QueueDLQ is the dead-letter queue for failed jobs after retries.
	QueueDLQ = "worker:dlq"
	// MaxRetries is the number of times to retry a job before moving to DLQ.
	MaxRetries = 3
	// RetryBackoff is the delay between retries.
	RetryBackoff = 10 * time.Second
)

// JobType identifies the job kind.
type JobType string

const (
	JobTypeResultArchive     JobType = "result_archive"
	JobTypeLeaderboardExport JobType = "leaderboard_export"
)

// queueFor maps a job type to its list.
func queueFor(t JobType) (string, error) {
	switch t {
	case JobTypeResultArchive:
		return QueueResults, nil
	case JobTypeLeaderboardExport:
		return QueueExports, nil
	default:
		return "", fmt.Errorf("unknown job type %q", t)
	}
}

// ArchivedResult is one participant's submission as carried by jobs.
type ArchivedResult struct {
	PlayerName  string    `json:"player_name"`
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	Correct     int       `json:"correct"`
	Incorrect   int       `json:"incorrect"`
	TotalTime   int       `json:"total_time"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// ResultArchivePayload is the payload for result archive jobs.
type ResultArchivePayload struct {
	RoomCode   string         `json:"room_code"`
	ExamType   string         `json:"exam_type"`
	TestFormat string         `json:"test_format"`
	RoomMode   string         `json:"room_mode"`
	Result     ArchivedResult `json:"result"`
}

// LeaderboardExportPayload is the payload for leaderboard export jobs. Results
// are in rank order.
type LeaderboardExportPayload struct {
	RoomCode   string           `json:"room_code"`
	ExamType   string           `json:"exam_type"`
	TestFormat string           `json:"test_format"`
	Reason     string           `json:"reason"`
	ClosedAt   time.Time        `json:"closed_at"`
	Results    []ArchivedResult `json:"results"`
}

// Job is a generic job envelope.
type Job struct {
	ID        string          `json:"id"`
	Type      JobType         `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Attempt   int             `json:"attempt"`
	CreatedAt time.Time       `json:"created_at"`
}

// Lists is the subset of the go-redis client the queue uses.
type Lists interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
}

// Queue enqueues and dequeues jobs via Redis.
type Queue struct {
	client Lists
	logger *zap.Logger
}

// NewQueue creates a new Redis-backed job queue.
func NewQueue(client Lists, logger *zap.Logger) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{client: client, logger: logger}
}

// EnqueueResultArchive enqueues a result archive job.
func (q *Queue) EnqueueResultArchive(ctx context.Context, payload ResultArchivePayload) error {
	job, err := q.enqueue(ctx, JobTypeResultArchive, payload)
	if err != nil {
		return err
	}
	q.logger.Debug("enqueued result archive job",
		zap.String("job_id", job.ID),
		zap.String("code", payload.RoomCode),
		zap.String("player", payload.Result.PlayerName),
	)
	return nil
}

// EnqueueLeaderboardExport enqueues a leaderboard export job.
func (q *Queue) EnqueueLeaderboardExport(ctx context.Context, payload LeaderboardExportPayload) error {
	job, err := q.enqueue(ctx, JobTypeLeaderboardExport, payload)
	if err != nil {
		return err
	}
	q.logger.Debug("enqueued leaderboard export job",
		zap.String("job_id", job.ID),
		zap.String("code", payload.RoomCode),
		zap.Int("results", len(payload.Results)),
	)
	return nil
}

func (q *Queue) enqueue(ctx context.Context, t JobType, payload any) (*Job, error) {
	key, err := queueFor(t)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	job := &Job{
		ID:        uuid.New().String(),
		Type:      t,
		Payload:   body,
		CreatedAt: time.Now(),
	}
	raw, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.RPush(ctx, key, raw).Err(); err != nil {
		return nil, fmt.Errorf("rpush: %w", err)
	}
	return job, nil
}

// Dequeue blocks up to timeout for a job on any work queue. It returns a nil
// job when the wait timed out or the entry could not be decoded.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*Job, string, error) {
	result, err := q.client.BLPop(ctx, timeout, QueueResults, QueueExports).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, "", nil
		}
		return nil, "", err
	}
	if len(result) < 2 {
		return nil, "", nil
	}
	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		q.logger.Warn("invalid job payload", zap.String("raw", result[1]), zap.Error(err))
		return nil, "", nil
	}
	return &job, result[0], nil
}

// Retry re-enqueues a job with incremented attempt. If attempt >= MaxRetries, pushes to DLQ instead.
func (q *Queue) Retry(ctx context.Context, job *Job) error {
	job.Attempt++
	raw, err := json.Marshal(job)
	if err != nil {
		return err
	}
	key, err := queueFor(job.Type)
	if err != nil || job.Attempt >= MaxRetries {
		if err := q.client.RPush(ctx, QueueDLQ, raw).Err(); err != nil {
			q.logger.Error("dlq push failed", zap.Error(err), zap.String("job_id", job.ID))
			return err
		}
		q.logger.Warn("job moved to DLQ", zap.String("job_id", job.ID), zap.String("type", string(job.Type)), zap.Int("attempt", job.Attempt))
		return nil
	}
	if err := q.client.RPush(ctx, key, raw).Err(); err != nil {
		return err
	}
	q.logger.Info("job retried", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt))
	return nil
}
