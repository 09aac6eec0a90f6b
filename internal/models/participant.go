package models

import "time"

// Participant is a connection that joined a room. ID is the connection id and is
// never sent to clients.
type Participant struct {
	ID       string    `json:"-"`
	Name     string    `json:"name"`
	IsHost   bool      `json:"isHost"`
	JoinedAt time.Time `json:"-"`
}

// ParticipantView is the client-facing form of a Participant.
type ParticipantView struct {
	Name   string `json:"name"`
	IsHost bool   `json:"isHost"`
}

// View strips the connection id.
func (p Participant) View() ParticipantView {
	return ParticipantView{Name: p.Name, IsHost: p.IsHost}
}
