// Package progress archives completed exercises in Postgres. The archive is
// write-mostly: the dialogue engine records completions and never reads them
// back, so losing the database degrades nothing but history.
package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Completion is one archived exercise result.
type Completion struct {
	ID         int64     `db:"id"`
	UserID     int64     `db:"user_id"`
	Exercise   int       `db:"exercise"`
	Score      int       `db:"score"`
	Total      int       `db:"total"`
	FinishedAt time.Time `db:"finished_at"`
}

// Repository stores exercise completions.
type Repository struct {
	db *sqlx.DB
}

// NewRepository wraps the given database handle.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// RecordCompletion inserts one completion row.
func (r *Repository) RecordCompletion(ctx context.Context, userID int64, exercise, score, total int) error {
	const q = `
		INSERT INTO completions (user_id, exercise, score, total, finished_at)
		VALUES ($1, $2, $3, $4, NOW())`
	if _, err := r.db.ExecContext(ctx, q, userID, exercise, score, total); err != nil {
		return fmt.Errorf("progress: record completion: %w", err)
	}
	return nil
}

// RecentByUser returns the user's latest completions, newest first.
func (r *Repository) RecentByUser(ctx context.Context, userID int64, limit int) ([]Completion, error) {
	if limit <= 0 {
		limit = 10
	}
	const q = `
		SELECT id, user_id, exercise, score, total, finished_at
		FROM completions
		WHERE user_id = $1
		ORDER BY finished_at DESC
		LIMIT $2`
	var out []Completion
	if err := r.db.SelectContext(ctx, &out, q, userID, limit); err != nil {
		return nil, fmt.Errorf("progress: recent completions: %w", err)
	}
	return out, nil
}

// CountByExercise reports how many completions each exercise has collected,
// across all users. Used by the admin stats command.
func (r *Repository) CountByExercise(ctx context.Context) (map[int]int, error) {
	const q = `SELECT exercise, COUNT(*) AS n FROM completions GROUP BY exercise`
	rows, err := r.db.QueryxContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("progress: count by exercise: %w", err)
	}
	defer rows.Close()

	out := make(map[int]int)
	for rows.Next() {
		var exercise, n int
		if err := rows.Scan(&exercise, &n); err != nil {
			return nil, fmt.Errorf("progress: scan count: %w", err)
		}
		out[exercise] = n
	}
	return out, rows.Err()
}
