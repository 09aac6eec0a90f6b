package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Record is one archived submission.
type Record struct {
	ID          uuid.UUID `json:"-"`
	RoomCode    string    `json:"roomCode"`
	ExamType    string    `json:"examType"`
	TestFormat  string    `json:"testFormat"`
	RoomMode    string    `json:"roomMode"`
	PlayerName  string    `json:"playerName"`
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	Correct     int       `json:"correct"`
	Incorrect   int       `json:"incorrect"`
	TotalTime   int       `json:"totalTime"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// DB is satisfied by *pgxpool.Pool.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repository handles room_results.
type Repository struct {
	db DB
}

// NewRepository creates a result history repository.
func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

// Archive inserts one submission. A zero ID is replaced by a new UUID.
func (r *Repository) Archive(ctx context.Context, rec Record) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO room_results
		   (id, room_code, exam_type, test_format, room_mode, player_name, score, total, correct, incorrect, total_time, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (id) DO NOTHING`,
		rec.ID, rec.RoomCode, rec.ExamType, rec.TestFormat, rec.RoomMode, rec.PlayerName,
		rec.Score, rec.Total, rec.Correct, rec.Incorrect, rec.TotalTime, rec.SubmittedAt)
	if err != nil {
		return fmt.Errorf("insert room result: %w", err)
	}
	return nil
}

// ListByRoom returns the latest archived submission of every player of a room,
// ranked by score, then total time, then submission time.
func (r *Repository) ListByRoom(ctx context.Context, code string) ([]Record, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, room_code, exam_type, test_format, room_mode, player_name, score, total, correct, incorrect, total_time, submitted_at
		 FROM (
		   SELECT DISTINCT ON (player_name) *
		   FROM room_results WHERE room_code = $1
		   ORDER BY player_name, submitted_at DESC
		 ) latest
		 ORDER BY score DESC, total_time ASC, submitted_at ASC`,
		code)
	if err != nil {
		return nil, fmt.Errorf("query room results: %w", err)
	}
	defer rows.Close()
	var list []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.RoomCode, &rec.ExamType, &rec.TestFormat, &rec.RoomMode, &rec.PlayerName,
			&rec.Score, &rec.Total, &rec.Correct, &rec.Incorrect, &rec.TotalTime, &rec.SubmittedAt); err != nil {
			return nil, err
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}
