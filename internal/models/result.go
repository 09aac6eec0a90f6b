package models

import "time"

// Result is a participant's final submitted outcome for a room.
type Result struct {
	PlayerID    string    `json:"-"`
	PlayerName  string    `json:"playerName"`
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	Correct     int       `json:"correct"`
	Incorrect   int       `json:"incorrect"`
	TotalTime   int       `json:"totalTime"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Leaderboard is the ranked result list of a room plus submission completeness.
type Leaderboard struct {
	Results           []Result `json:"results"`
	TotalParticipants int      `json:"totalParticipants"`
	AllSubmitted      bool     `json:"allSubmitted"`
}
