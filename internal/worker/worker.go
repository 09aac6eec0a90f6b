package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mockify/backend/internal/history"
	"github.com/mockify/backend/pkg/queue"
	"github.com/mockify/backend/pkg/storage"
)

const dequeueWait = 5 * time.Second

var errNotConfigured = errors.New("sink not configured")

// Archiver persists submissions.
type Archiver interface {
	Archive(ctx context.Context, rec history.Record) error
}

// ExportUploader stores exported documents.
type ExportUploader interface {
	UploadJSON(ctx context.Context, key string, doc []byte) (string, error)
}

// JobQueue is the queue the processor drains.
type JobQueue interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*queue.Job, string, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// ExportDocument is the JSON written for a closed room.
type ExportDocument struct {
	RoomCode   string                 `json:"roomCode"`
	ExamType   string                 `json:"examType"`
	TestFormat string                 `json:"testFormat"`
	Reason     string                 `json:"reason"`
	ClosedAt   time.Time              `json:"closedAt"`
	Results    []queue.ArchivedResult `json:"results"`
}

// Processor archives results to Postgres and exports final leaderboards to S3.
type Processor struct {
	archive Archiver
	exports ExportUploader
	queue   JobQueue
	backoff time.Duration
	logger  *zap.Logger
}

// NewProcessor creates a job processor. archive or exports may be nil, in
// which case jobs of that type fail and end in the dead-letter queue.
func NewProcessor(archive Archiver, exports ExportUploader, q JobQueue, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{archive: archive, exports: exports, queue: q, backoff: queue.RetryBackoff, logger: logger}
}

// Process executes one job.
func (p *Processor) Process(ctx context.Context, job *queue.Job) error {
	switch job.Type {
	case queue.JobTypeResultArchive:
		return p.archiveResult(ctx, job)
	case queue.JobTypeLeaderboardExport:
		return p.exportLeaderboard(ctx, job)
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

func (p *Processor) archiveResult(ctx context.Context, job *queue.Job) error {
	if p.archive == nil {
		return fmt.Errorf("archive result: %w", errNotConfigured)
	}
	var payload queue.ResultArchivePayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	rec := history.Record{
		// derived from the job id so a retried job does not insert twice
		ID:          uuid.NewSHA1(uuid.NameSpaceOID, []byte(job.ID)),
		RoomCode:    payload.RoomCode,
		ExamType:    payload.ExamType,
		TestFormat:  payload.TestFormat,
		RoomMode:    payload.RoomMode,
		PlayerName:  payload.Result.PlayerName,
		Score:       payload.Result.Score,
		Total:       payload.Result.Total,
		Correct:     payload.Result.Correct,
		Incorrect:   payload.Result.Incorrect,
		TotalTime:   payload.Result.TotalTime,
		SubmittedAt: payload.Result.SubmittedAt,
	}
	if err := p.archive.Archive(ctx, rec); err != nil {
		return fmt.Errorf("archive result: %w", err)
	}
	p.logger.Info("result archived", zap.String("code", payload.RoomCode), zap.String("player", payload.Result.PlayerName))
	return nil
}

func (p *Processor) exportLeaderboard(ctx context.Context, job *queue.Job) error {
	if p.exports == nil {
		return fmt.Errorf("export leaderboard: %w", errNotConfigured)
	}
	var payload queue.LeaderboardExportPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	doc, err := json.Marshal(ExportDocument{
		RoomCode:   payload.RoomCode,
		ExamType:   payload.ExamType,
		TestFormat: payload.TestFormat,
		Reason:     payload.Reason,
		ClosedAt:   payload.ClosedAt,
		Results:    payload.Results,
	})
	if err != nil {
		return fmt.Errorf("marshal export: %w", err)
	}
	key := storage.LeaderboardKey(payload.RoomCode, payload.ClosedAt)
	url, err := p.exports.UploadJSON(ctx, key, doc)
	if err != nil {
		return fmt.Errorf("export leaderboard: %w", err)
	}
	p.logger.Info("leaderboard exported", zap.String("code", payload.RoomCode), zap.String("url", url))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *Processor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("worker stopping")
			return
		default:
		}

		job, _, err := p.queue.Dequeue(ctx, dequeueWait)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			p.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			p.sleep(ctx)
		}
	}
}

func (p *Processor) sleep(ctx context.Context) {
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
