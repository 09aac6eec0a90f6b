package rooms

import (
	"math/rand/v2"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/mockify/backend/internal/models"
)

// Rand is the randomness used by the start shuffle. *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

type defaultRand struct{}

func (defaultRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRand draws from the process-wide math/rand/v2 source.
var DefaultRand Rand = defaultRand{}

// Settings are the host-supplied parameters of a new room.
type Settings struct {
	ExamType   string
	TestFormat string
	Mode       models.RoomMode
	Questions  []models.Question
}

// AnswerProgress tells the room how many participants answered the current
// question, without disclosing any choice.
type AnswerProgress struct {
	QuestionIndex     int      `json:"questionIndex"`
	AnsweredCount     int      `json:"answeredCount"`
	TotalParticipants int      `json:"totalParticipants"`
	AnsweredPlayers   []string `json:"answeredPlayers"`
}

// PlayerChoice is one respondent's pick in a reveal.
type PlayerChoice struct {
	Choice    int  `json:"choice"`
	IsCorrect bool `json:"isCorrect"`
}

// Reveal discloses the correct answer of a completed question and every
// respondent's choice, keyed by display name.
type Reveal struct {
	QuestionIndex int                     `json:"questionIndex"`
	CorrectAnswer int                     `json:"correctAnswer"`
	PlayerChoices map[string]PlayerChoice `json:"playerChoices"`
}

// Departure describes the effect of a participant leaving a room.
type Departure struct {
	Participant models.Participant
	WasHost     bool
	// NewHost is set when the host left a running room and another participant
	// was promoted.
	NewHost *models.Participant
}

// Room is one quiz session. Room is not safe for concurrent use.
type Room struct {
	code       string
	hostID     string
	hostName   string
	examType   string
	testFormat string
	mode       models.RoomMode
	state      models.RoomState
	questions  []models.Question

	participants []models.Participant

	// friendly mode only
	currentIndex int
	answers      map[string]int
	revealed     bool

	results Results

	createdAt    time.Time
	lastActivity time.Time
}

// NewRoom creates a lobby room whose only participant is host.
func NewRoom(code string, host models.Participant, settings Settings, now time.Time) *Room {
	host.IsHost = true
	if host.JoinedAt.IsZero() {
		host.JoinedAt = now
	}
	questions := make([]models.Question, len(settings.Questions))
	copy(questions, settings.Questions)
	return &Room{
		code:         NormalizeCode(code),
		hostID:       host.ID,
		hostName:     host.Name,
		examType:     settings.ExamType,
		testFormat:   settings.TestFormat,
		mode:         settings.Mode,
		state:        models.StateLobby,
		questions:    questions,
		participants: []models.Participant{host},
		answers:      make(map[string]int),
		createdAt:    now,
		lastActivity: now,
	}
}

func (r *Room) Code() string              { return r.code }
func (r *Room) Mode() models.RoomMode     { return r.mode }
func (r *Room) State() models.RoomState   { return r.state }
func (r *Room) Started() bool             { return r.state == models.StateRunning }
func (r *Room) HostID() string            { return r.hostID }
func (r *Room) ExamType() string          { return r.examType }
func (r *Room) TestFormat() string        { return r.testFormat }
func (r *Room) CurrentIndex() int         { return r.currentIndex }
func (r *Room) Revealed() bool            { return r.revealed }
func (r *Room) LastActivity() time.Time   { return r.lastActivity }
func (r *Room) ParticipantCount() int     { return len(r.participants) }
func (r *Room) IsHost(connID string) bool { return connID != "" && connID == r.hostID }

// HostName is the display name of the current host.
func (r *Room) HostName() string {
	if host, ok := r.Participant(r.hostID); ok {
		return host.Name
	}
	return r.hostName
}

// Questions returns a copy of the question sequence.
func (r *Room) Questions() []models.Question {
	out := make([]models.Question, len(r.questions))
	copy(out, r.questions)
	return out
}

// Participants returns a copy of the participant list in join order.
func (r *Room) Participants() []models.Participant {
	out := make([]models.Participant, len(r.participants))
	copy(out, r.participants)
	return out
}

// ParticipantViews returns the participant list without connection ids.
func (r *Room) ParticipantViews() []models.ParticipantView {
	return lo.Map(r.participants, func(p models.Participant, _ int) models.ParticipantView {
		return p.View()
	})
}

// Participant looks up a present participant by connection id.
func (r *Room) Participant(connID string) (models.Participant, bool) {
	return lo.Find(r.participants, func(p models.Participant) bool { return p.ID == connID })
}

// IsParticipant reports whether connID is present in the room.
func (r *Room) IsParticipant(connID string) bool {
	_, ok := r.Participant(connID)
	return ok
}

// View returns the sanitized representation of the room.
func (r *Room) View() models.RoomView {
	return models.RoomView{
		Code:         r.code,
		HostName:     r.HostName(),
		ExamType:     r.examType,
		TestFormat:   r.testFormat,
		RoomMode:     r.mode,
		Participants: r.ParticipantViews(),
		Started:      r.Started(),
	}
}

// Touch records activity at now.
func (r *Room) Touch(now time.Time) {
	r.lastActivity = now
}

// IdleFor reports how long the room has been inactive at now.
func (r *Room) IdleFor(now time.Time) time.Duration {
	return now.Sub(r.lastActivity)
}

// AddParticipant appends a non-host participant. Checks run in order: running
// room, capacity, duplicate display name.
func (r *Room) AddParticipant(p models.Participant, maxParticipants int, now time.Time) error {
	if r.state == models.StateRunning {
		return ErrAlreadyStarted
	}
	if len(r.participants) >= maxParticipants {
		return RoomFull(maxParticipants)
	}
	if lo.ContainsBy(r.participants, func(existing models.Participant) bool {
		return strings.EqualFold(existing.Name, p.Name)
	}) {
		return ErrNameTaken
	}
	p.IsHost = false
	if p.JoinedAt.IsZero() {
		p.JoinedAt = now
	}
	r.participants = append(r.participants, p)
	r.Touch(now)
	return nil
}

// RemoveParticipant drops connID from the room and purges its pending answer.
// When the host leaves a running room the earliest remaining participant is
// promoted so the room keeps exactly one host.
func (r *Room) RemoveParticipant(connID string, now time.Time) (Departure, bool) {
	p, ok := r.Participant(connID)
	if !ok {
		return Departure{}, false
	}
	r.participants = lo.Reject(r.participants, func(x models.Participant, _ int) bool { return x.ID == connID })
	delete(r.answers, connID)
	r.Touch(now)

	d := Departure{Participant: p, WasHost: connID == r.hostID}
	if d.WasHost && r.state == models.StateRunning && len(r.participants) > 0 {
		r.participants[0].IsHost = true
		r.hostID = r.participants[0].ID
		r.hostName = r.participants[0].Name
		next := r.participants[0]
		d.NewHost = &next
	}
	return d, true
}

// Start shuffles the question sequence once with Fisher-Yates and moves the
// room to running. Only the host may start, and only from the lobby.
func (r *Room) Start(connID string, rng Rand, now time.Time) error {
	if !r.IsHost(connID) {
		return ErrNotHostStart
	}
	if r.state == models.StateRunning {
		return ErrAlreadyStarted
	}
	if rng == nil {
		rng = DefaultRand
	}
	for i := len(r.questions) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		r.questions[i], r.questions[j] = r.questions[j], r.questions[i]
	}
	r.state = models.StateRunning
	r.currentIndex = 0
	r.answers = make(map[string]int)
	r.revealed = false
	r.Touch(now)
	return nil
}

// Finished reports whether a friendly room advanced past its last question.
func (r *Room) Finished() bool {
	return r.currentIndex >= len(r.questions)
}

// RecordAnswer stores connID's choice for the current friendly question. The
// returned Reveal is non-nil when this answer completed the question.
func (r *Room) RecordAnswer(connID string, questionIndex, option int, now time.Time) (AnswerProgress, *Reveal, error) {
	if r.mode != models.ModeFriendly {
		return AnswerProgress{}, nil, ErrNotFriendly
	}
	if r.state != models.StateRunning {
		return AnswerProgress{}, nil, ErrNotStarted
	}
	if !r.IsParticipant(connID) {
		return AnswerProgress{}, nil, ErrNotParticipant
	}
	if questionIndex != r.currentIndex || r.Finished() {
		return AnswerProgress{}, nil, ErrStaleQuestion
	}
	if option < 0 || option >= len(r.questions[questionIndex].Options) {
		return AnswerProgress{}, nil, ErrInvalidOption
	}
	if r.revealed {
		return AnswerProgress{}, nil, ErrAlreadyRevealed
	}

	r.answers[connID] = option
	r.Touch(now)
	return r.Progress(), r.CheckReveal(), nil
}

// Progress summarizes who answered the current question, in join order.
func (r *Room) Progress() AnswerProgress {
	answered := lo.FilterMap(r.participants, func(p models.Participant, _ int) (string, bool) {
		_, ok := r.answers[p.ID]
		return p.Name, ok
	})
	return AnswerProgress{
		QuestionIndex:     r.currentIndex,
		AnsweredCount:     len(answered),
		TotalParticipants: len(r.participants),
		AnsweredPlayers:   answered,
	}
}

// CheckReveal fires the reveal when every present participant has answered
// the current question. It returns nil when the question is still open, was
// already revealed, or the room is not a running friendly room.
func (r *Room) CheckReveal() *Reveal {
	if r.mode != models.ModeFriendly || r.state != models.StateRunning || r.revealed || r.Finished() {
		return nil
	}
	if len(r.participants) == 0 {
		return nil
	}
	answered := lo.CountBy(r.participants, func(p models.Participant) bool {
		_, ok := r.answers[p.ID]
		return ok
	})
	if answered != len(r.participants) {
		return nil
	}

	correct := r.questions[r.currentIndex].CorrectAnswer
	choices := make(map[string]PlayerChoice, answered)
	for _, p := range r.participants {
		choice := r.answers[p.ID]
		choices[p.Name] = PlayerChoice{Choice: choice, IsCorrect: choice == correct}
	}
	r.revealed = true
	return &Reveal{
		QuestionIndex: r.currentIndex,
		CorrectAnswer: correct,
		PlayerChoices: choices,
	}
}

// Advance moves a friendly room to the next question once the current one was
// revealed. finished is true when the index moved past the last question.
func (r *Room) Advance(connID string, now time.Time) (index int, finished bool, err error) {
	if r.mode != models.ModeFriendly {
		return 0, false, ErrNotFriendly
	}
	if !r.IsHost(connID) {
		return 0, false, ErrNotHostAdvance
	}
	if r.state != models.StateRunning {
		return 0, false, ErrNotStarted
	}
	if r.Finished() {
		return 0, false, ErrNoMoreQuestions
	}
	if !r.revealed {
		return 0, false, ErrNotRevealed
	}
	r.currentIndex++
	r.answers = make(map[string]int)
	r.revealed = false
	r.Touch(now)
	return r.currentIndex, r.Finished(), nil
}
