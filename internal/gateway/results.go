package gateway

import (
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/mockify/backend/internal/models"
	"github.com/mockify/backend/internal/rooms"
)

// Submit records the caller's final result and broadcasts the new ranking.
// It returns the caller's 1-based rank.
func (g *Gateway) Submit(connID string, req SubmitResultsRequest) (int, error) {
	req.PlayerName = strings.TrimSpace(req.PlayerName)
	if err := validate(req); err != nil {
		return 0, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok := g.registry.Get(req.Code)
	if !ok {
		return 0, rooms.ErrRoomNotFound
	}
	rank, board, err := room.SubmitResult(connID, rooms.Submission{
		PlayerName: req.PlayerName,
		TimeSpent:  req.TimeSpent,
		Score:      req.Score,
		Total:      req.Total,
		Correct:    req.Correct,
		Incorrect:  req.Incorrect,
	}, g.now())
	if err != nil {
		return 0, err
	}

	g.out.Broadcast(room.Code(), EventLeaderboardUpdate, board)
	g.logger.Info("result submitted",
		zap.String("code", room.Code()),
		zap.String("player", req.PlayerName),
		zap.Int("score", req.Score),
		zap.Int("rank", rank),
		zap.Bool("all_submitted", board.AllSubmitted),
	)

	mine, ok := lo.Find(board.Results, func(r models.Result) bool { return r.PlayerID == connID })
	if ok && g.hooks.OnResult != nil {
		g.hooks.OnResult(ResultRecorded{
			RoomCode:   room.Code(),
			ExamType:   room.ExamType(),
			TestFormat: room.TestFormat(),
			RoomMode:   room.Mode(),
			Result:     mine,
		})
	}
	return rank, nil
}

// Leaderboard returns the ranked results of a room without changing it.
func (g *Gateway) Leaderboard(code string) (models.Leaderboard, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok := g.registry.Get(code)
	if !ok {
		return models.Leaderboard{}, rooms.ErrRoomNotFound
	}
	return room.Leaderboard(), nil
}
