package models

// RoomMode selects how a room coordinates its participants.
type RoomMode string

const (
	// ModeFriendly advances the whole room question by question.
	ModeFriendly RoomMode = "friendly"
	// ModeExam lets everybody progress alone; only results are shared.
	ModeExam RoomMode = "exam"
)

// Valid reports whether m is a known mode.
func (m RoomMode) Valid() bool {
	return m == ModeFriendly || m == ModeExam
}

// RoomState is the lifecycle state of a room.
type RoomState string

const (
	StateLobby   RoomState = "lobby"
	StateRunning RoomState = "running"
)

// RoomView is the sanitized room representation sent to clients.
type RoomView struct {
	Code         string            `json:"code"`
	HostName     string            `json:"hostName"`
	ExamType     string            `json:"examType"`
	TestFormat   string            `json:"testFormat"`
	RoomMode     RoomMode          `json:"roomMode"`
	Participants []ParticipantView `json:"participants"`
	Started      bool              `json:"started"`
}
