package gateway

import (
	"github.com/mockify/backend/internal/models"
)

// Client events.
const (
	EventCreateRoom     = "createRoom"
	EventJoinRoom       = "joinRoom"
	EventStartRoom      = "startRoom"
	EventFriendlyAnswer = "friendlyAnswer"
	EventFriendlyNext   = "friendlyNext"
	EventChatSend       = "chatSend"
	EventSubmitResults  = "submitResults"
	EventGetLeaderboard = "getLeaderboard"
	EventLeaveRoom      = "leaveRoom"
)

// Room broadcasts.
const (
	EventParticipantJoined    = "participantJoined"
	EventParticipantLeft      = "participantLeft"
	EventHostChanged          = "hostChanged"
	EventRoomClosed           = "roomClosed"
	EventTestStarted          = "testStarted"
	EventFriendlyAnswerStatus = "friendlyAnswerStatus"
	EventFriendlyReveal       = "friendlyReveal"
	EventFriendlyNextQuestion = "friendlyNextQuestion"
	EventChatMessage          = "chatMessage"
	EventLeaderboardUpdate    = "leaderboardUpdate"
)

// Room close reasons.
const (
	ReasonHostLeft = "host_left"
	ReasonExpired  = "expired"
)

type CreateRoomRequest struct {
	HostName   string            `json:"hostName" validate:"required,max=40"`
	ExamType   string            `json:"examType" validate:"max=100"`
	TestFormat string            `json:"testFormat" validate:"max=100"`
	Questions  []models.Question `json:"questions" validate:"required,min=1,dive"`
	RoomMode   models.RoomMode   `json:"roomMode" validate:"required,oneof=friendly exam"`
}

type CreateRoomReply struct {
	Code string          `json:"code"`
	Room models.RoomView `json:"room"`
}

type JoinRoomRequest struct {
	Code       string `json:"code" validate:"required"`
	PlayerName string `json:"playerName" validate:"required,max=40"`
}

// RoomRequest names the target room of events that carry nothing else.
type RoomRequest struct {
	Code string `json:"code" validate:"required"`
}

type AnswerRequest struct {
	Code          string `json:"code" validate:"required"`
	QuestionIndex *int   `json:"questionIndex" validate:"required"`
	OptionIndex   *int   `json:"optionIndex" validate:"required"`
}

type ChatRequest struct {
	Code string `json:"code"`
	Text string `json:"text"`
}

type SubmitResultsRequest struct {
	Code       string `json:"code" validate:"required"`
	PlayerName string `json:"playerName" validate:"required,max=40"`
	TimeSpent  []int  `json:"timeSpent"`
	Score      int    `json:"score"`
	Total      int    `json:"total"`
	Correct    int    `json:"correct"`
	Incorrect  int    `json:"incorrect"`
}

type ParticipantJoined struct {
	Participant  models.ParticipantView   `json:"participant"`
	Participants []models.ParticipantView `json:"participants"`
}

type ParticipantLeft struct {
	Participants []models.ParticipantView `json:"participants"`
}

type HostChanged struct {
	HostName     string                   `json:"hostName"`
	Participants []models.ParticipantView `json:"participants"`
}

type RoomClosedEvent struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type TestStarted struct {
	Questions  []models.Question `json:"questions"`
	ExamType   string            `json:"examType"`
	TestFormat string            `json:"testFormat"`
	RoomMode   models.RoomMode   `json:"roomMode"`
}

type NextQuestion struct {
	QuestionIndex int  `json:"questionIndex"`
	Finished      bool `json:"finished"`
}

type ChatMessage struct {
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}
