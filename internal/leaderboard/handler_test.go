package leaderboard_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mockify/backend/internal/history"
	"github.com/mockify/backend/internal/leaderboard"
	"github.com/mockify/backend/internal/models"
	"github.com/mockify/backend/internal/rooms"
)

type liveStub map[string]models.Leaderboard

func (s liveStub) Leaderboard(code string) (models.Leaderboard, error) {
	b, ok := s[code]
	if !ok {
		return models.Leaderboard{}, rooms.ErrRoomNotFound
	}
	return b, nil
}

type archiveStub struct {
	records []history.Record
	err     error
	asked   string
}

func (s *archiveStub) ListByRoom(_ context.Context, code string) ([]history.Record, error) {
	s.asked = code
	return s.records, s.err
}

type envelope struct {
	Success bool             `json:"success"`
	Data    leaderboard.View `json:"data"`
	Error   string           `json:"error"`
}

func serve(t *testing.T, h *leaderboard.Handler, path string) (int, envelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/rooms/:code/leaderboard", h.Get)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestGet_Live(t *testing.T) {
	live := liveStub{"ABC234": {
		Results:           []models.Result{{PlayerName: "Asha", Score: 8, Total: 10}},
		TotalParticipants: 2,
	}}
	h := leaderboard.NewHandler(live, nil, nil)

	status, body := serve(t, h, "/api/rooms/abc234/leaderboard")
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, body.Success)
	assert.Equal(t, "ABC234", body.Data.RoomCode)
	assert.False(t, body.Data.Archived)
	assert.False(t, body.Data.AllSubmitted)
	require.Len(t, body.Data.Results, 1)
	assert.Equal(t, "Asha", body.Data.Results[0].PlayerName)
}

func TestGet_UnknownWithoutArchive(t *testing.T) {
	h := leaderboard.NewHandler(liveStub{}, nil, nil)

	status, body := serve(t, h, "/api/rooms/ZZZ999/leaderboard")
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, body.Success)
	assert.Equal(t, rooms.ErrRoomNotFound.Error(), body.Error)
}

func TestGet_FallsBackToArchive(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	archive := &archiveStub{records: []history.Record{
		{RoomCode: "ABC234", PlayerName: "Ravi", Score: 9, Total: 10, TotalTime: 100, SubmittedAt: at},
		{RoomCode: "ABC234", PlayerName: "Asha", Score: 7, Total: 10, TotalTime: 80, SubmittedAt: at},
	}}
	h := leaderboard.NewHandler(liveStub{}, archive, nil)

	status, body := serve(t, h, "/api/rooms/abc234/leaderboard")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ABC234", archive.asked)
	assert.True(t, body.Data.Archived)
	assert.True(t, body.Data.AllSubmitted)
	assert.Equal(t, 2, body.Data.TotalParticipants)
	require.Len(t, body.Data.Results, 2)
	assert.Equal(t, "Ravi", body.Data.Results[0].PlayerName)
}

func TestGet_ArchiveEmptyOrFailing(t *testing.T) {
	h := leaderboard.NewHandler(liveStub{}, &archiveStub{}, nil)
	status, _ := serve(t, h, "/api/rooms/ABC234/leaderboard")
	assert.Equal(t, http.StatusNotFound, status)

	h = leaderboard.NewHandler(liveStub{}, &archiveStub{err: errors.New("conn refused")}, nil)
	status, body := serve(t, h, "/api/rooms/ABC234/leaderboard")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Failed to load results.", body.Error)
}
