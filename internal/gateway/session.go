package gateway

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/mockify/backend/internal/rooms"
)

// Start shuffles the question set and moves the room to running.
func (g *Gateway) Start(connID string, req RoomRequest) error {
	if err := validate(req); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok := g.registry.Get(req.Code)
	if !ok {
		return rooms.ErrRoomNotFound
	}
	if err := room.Start(connID, g.rng, g.now()); err != nil {
		return err
	}

	g.out.Broadcast(room.Code(), EventTestStarted, TestStarted{
		Questions:  room.Questions(),
		ExamType:   room.ExamType(),
		TestFormat: room.TestFormat(),
		RoomMode:   room.Mode(),
	})
	g.logger.Info("room started",
		zap.String("code", room.Code()),
		zap.Int("participants", room.ParticipantCount()),
	)
	return nil
}

// FriendlyAnswer records an answer to the current question, broadcasts the
// progress and, when it completed the question, the reveal.
func (g *Gateway) FriendlyAnswer(connID string, req AnswerRequest) error {
	if err := validate(req); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok := g.registry.Get(req.Code)
	if !ok {
		return rooms.ErrRoomNotFound
	}
	progress, reveal, err := room.RecordAnswer(connID, *req.QuestionIndex, *req.OptionIndex, g.now())
	if err != nil {
		return err
	}

	g.out.Broadcast(room.Code(), EventFriendlyAnswerStatus, progress)
	g.logger.Debug("answer recorded",
		zap.String("code", room.Code()),
		zap.Int("question", progress.QuestionIndex),
		zap.Int("answered", progress.AnsweredCount),
	)
	if reveal != nil {
		g.out.Broadcast(room.Code(), EventFriendlyReveal, reveal)
		g.logger.Debug("question revealed", zap.String("code", room.Code()), zap.Int("question", reveal.QuestionIndex))
	}
	return nil
}

// FriendlyNext advances a friendly room past a revealed question.
func (g *Gateway) FriendlyNext(connID string, req RoomRequest) error {
	if err := validate(req); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok := g.registry.Get(req.Code)
	if !ok {
		return rooms.ErrRoomNotFound
	}
	index, finished, err := room.Advance(connID, g.now())
	if err != nil {
		return err
	}

	g.out.Broadcast(room.Code(), EventFriendlyNextQuestion, NextQuestion{QuestionIndex: index, Finished: finished})
	g.logger.Debug("question advanced",
		zap.String("code", room.Code()),
		zap.Int("question", index),
		zap.Bool("finished", finished),
	)
	return nil
}

// Chat relays a message to the sender's room. Invalid messages are dropped.
func (g *Gateway) Chat(connID string, req ChatRequest) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok := g.memberRoom(connID, req.Code)
	if !ok {
		return
	}
	sender, ok := room.Participant(connID)
	if !ok {
		return
	}
	if utf8.RuneCountInString(text) > g.cfg.ChatMaxLength {
		text = string([]rune(text)[:g.cfg.ChatMaxLength])
	}

	now := g.now()
	room.Touch(now)
	g.out.Broadcast(room.Code(), EventChatMessage, ChatMessage{
		Sender:    sender.Name,
		Text:      text,
		Timestamp: now.UnixMilli(),
	})
}
