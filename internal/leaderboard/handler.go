package leaderboard

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/mockify/backend/internal/history"
	"github.com/mockify/backend/internal/models"
	"github.com/mockify/backend/internal/rooms"
	"github.com/mockify/backend/pkg/response"
)

// LiveSource serves leaderboards of rooms that are still open.
type LiveSource interface {
	Leaderboard(code string) (models.Leaderboard, error)
}

// ArchiveSource serves archived submissions of closed rooms.
type ArchiveSource interface {
	ListByRoom(ctx context.Context, code string) ([]history.Record, error)
}

// View is the leaderboard returned over HTTP.
type View struct {
	RoomCode string `json:"roomCode"`
	Archived bool   `json:"archived"`
	models.Leaderboard
}

// Handler handles leaderboard HTTP endpoints.
type Handler struct {
	live    LiveSource
	archive ArchiveSource
	logger  *zap.Logger
}

// NewHandler creates a leaderboard handler. archive may be nil.
func NewHandler(live LiveSource, archive ArchiveSource, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{live: live, archive: archive, logger: logger}
}

// Get handles GET /api/rooms/:code/leaderboard.
func (h *Handler) Get(c *gin.Context) {
	code := rooms.NormalizeCode(c.Param("code"))
	if code == "" {
		response.BadRequest(c, "Room code is required.")
		return
	}

	board, err := h.live.Leaderboard(code)
	if err == nil {
		response.OK(c, View{RoomCode: code, Leaderboard: board})
		return
	}
	if !errors.Is(err, rooms.ErrRoomNotFound) {
		response.Internal(c, err.Error())
		return
	}
	if h.archive == nil {
		response.NotFound(c, rooms.ErrRoomNotFound.Error())
		return
	}

	records, err := h.archive.ListByRoom(c.Request.Context(), code)
	if err != nil {
		h.logger.Error("list archived results", zap.String("code", code), zap.Error(err))
		response.Internal(c, "Failed to load results.")
		return
	}
	if len(records) == 0 {
		response.NotFound(c, rooms.ErrRoomNotFound.Error())
		return
	}
	results := lo.Map(records, func(r history.Record, _ int) models.Result {
		return models.Result{
			PlayerName:  r.PlayerName,
			Score:       r.Score,
			Total:       r.Total,
			Correct:     r.Correct,
			Incorrect:   r.Incorrect,
			TotalTime:   r.TotalTime,
			SubmittedAt: r.SubmittedAt,
		}
	})
	response.OK(c, View{
		RoomCode: code,
		Archived: true,
		Leaderboard: models.Leaderboard{
			Results:           results,
			TotalParticipants: len(results),
			AllSubmitted:      true,
		},
	})
}
