package worker

import (
	"context"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/mockify/backend/internal/gateway"
	"github.com/mockify/backend/internal/models"
	"github.com/mockify/backend/pkg/queue"
)

const enqueueTimeout = 5 * time.Second

// Enqueuer accepts archive and export jobs.
type Enqueuer interface {
	EnqueueResultArchive(ctx context.Context, payload queue.ResultArchivePayload) error
	EnqueueLeaderboardExport(ctx context.Context, payload queue.LeaderboardExportPayload) error
}

// GatewayHooks turns gateway outcomes into queued jobs. Gateway hooks run under
// the room lock, so each job is enqueued from its own goroutine.
func GatewayHooks(q Enqueuer, logger *zap.Logger) gateway.Hooks {
	if logger == nil {
		logger = zap.NewNop()
	}
	return gateway.Hooks{
		OnResult: func(ev gateway.ResultRecorded) {
			payload := queue.ResultArchivePayload{
				RoomCode:   ev.RoomCode,
				ExamType:   ev.ExamType,
				TestFormat: ev.TestFormat,
				RoomMode:   string(ev.RoomMode),
				Result:     archived(ev.Result),
			}
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), enqueueTimeout)
				defer cancel()
				if err := q.EnqueueResultArchive(ctx, payload); err != nil {
					logger.Warn("enqueue result archive", zap.String("code", payload.RoomCode), zap.Error(err))
				}
			}()
		},
		OnRoomClosed: func(ev gateway.RoomClosed) {
			payload := queue.LeaderboardExportPayload{
				RoomCode:   ev.RoomCode,
				ExamType:   ev.ExamType,
				TestFormat: ev.TestFormat,
				Reason:     ev.Reason,
				ClosedAt:   ev.ClosedAt,
				Results:    lo.Map(ev.Results, func(r models.Result, _ int) queue.ArchivedResult { return archived(r) }),
			}
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), enqueueTimeout)
				defer cancel()
				if err := q.EnqueueLeaderboardExport(ctx, payload); err != nil {
					logger.Warn("enqueue leaderboard export", zap.String("code", payload.RoomCode), zap.Error(err))
				}
			}()
		},
	}
}

func archived(r models.Result) queue.ArchivedResult {
	return queue.ArchivedResult{
		PlayerName:  r.PlayerName,
		Score:       r.Score,
		Total:       r.Total,
		Correct:     r.Correct,
		Incorrect:   r.Incorrect,
		TotalTime:   r.TotalTime,
		SubmittedAt: r.SubmittedAt,
	}
}
