package rooms

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/mockify/backend/internal/models"
)

// Submission is a participant's final outcome as sent by the client.
type Submission struct {
	PlayerName string
	TimeSpent  []int
	Score      int
	Total      int
	Correct    int
	Incorrect  int
}

func (s Submission) validate() error {
	if s.Score < 0 || s.Total < 0 || s.Correct < 0 || s.Incorrect < 0 {
		return ErrNegativeResult
	}
	if lo.SomeBy(s.TimeSpent, func(t int) bool { return t < 0 }) {
		return ErrNegativeResult
	}
	return nil
}

// Results holds at most one Result per participant, kept in rank order.
type Results struct {
	ranked []models.Result
}

// Upsert replaces any prior result of the same player and re-ranks. It returns
// the 1-based rank of r.
func (rs *Results) Upsert(r models.Result) int {
	rs.ranked = lo.Reject(rs.ranked, func(x models.Result, _ int) bool { return x.PlayerID == r.PlayerID })
	rs.ranked = append(rs.ranked, r)
	sort.SliceStable(rs.ranked, func(i, j int) bool {
		return ranksBefore(rs.ranked[i], rs.ranked[j])
	})
	_, idx, _ := lo.FindIndexOf(rs.ranked, func(x models.Result) bool { return x.PlayerID == r.PlayerID })
	return idx + 1
}

// Has reports whether playerID has a result.
func (rs *Results) Has(playerID string) bool {
	return lo.ContainsBy(rs.ranked, func(x models.Result) bool { return x.PlayerID == playerID })
}

// Ranked returns a copy of the results in rank order.
func (rs *Results) Ranked() []models.Result {
	out := make([]models.Result, len(rs.ranked))
	copy(out, rs.ranked)
	return out
}

// Len is the number of stored results.
func (rs *Results) Len() int { return len(rs.ranked) }

// ranksBefore orders by score descending, then total time ascending, then the
// earlier submission.
func ranksBefore(a, b models.Result) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.TotalTime != b.TotalTime {
		return a.TotalTime < b.TotalTime
	}
	return a.SubmittedAt.Before(b.SubmittedAt)
}

// SubmitResult records connID's submission, replacing an earlier one, and
// returns the caller's rank together with the updated leaderboard.
func (r *Room) SubmitResult(connID string, s Submission, now time.Time) (int, models.Leaderboard, error) {
	if !r.IsParticipant(connID) {
		return 0, models.Leaderboard{}, ErrNotParticipant
	}
	if r.state != models.StateRunning {
		return 0, models.Leaderboard{}, ErrNotStarted
	}
	if err := s.validate(); err != nil {
		return 0, models.Leaderboard{}, err
	}

	rank := r.results.Upsert(models.Result{
		PlayerID:    connID,
		PlayerName:  s.PlayerName,
		Score:       s.Score,
		Total:       s.Total,
		Correct:     s.Correct,
		Incorrect:   s.Incorrect,
		TotalTime:   lo.Sum(s.TimeSpent),
		SubmittedAt: now,
	})
	r.Touch(now)
	return rank, r.Leaderboard(), nil
}

// Leaderboard returns the ranked results. AllSubmitted counts only
// participants still present.
func (r *Room) Leaderboard() models.Leaderboard {
	all := len(r.participants) > 0 && lo.EveryBy(r.participants, func(p models.Participant) bool {
		return r.results.Has(p.ID)
	})
	return models.Leaderboard{
		Results:           r.results.Ranked(),
		TotalParticipants: len(r.participants),
		AllSubmitted:      all,
	}
}
