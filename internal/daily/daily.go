// internal/daily/daily.go
//
// Completed-day results and the per-date leaderboard. One row is written per
// owner per date when their puzzle first transitions to completed; re-runs
// are ignored by the (owner, date) primary key.

package daily

import (
	"context"
	"database/sql"
)

// Result is one finished day for one player.
type Result struct {
	Owner       string `json:"-"`
	Date        string `json:"date"`
	CategoryID  string `json:"categoryId"`
	Correct     int    `json:"correct"`
	Guesses     int    `json:"guesses"`
	Accuracy    int    `json:"accuracy"`
	Surrendered bool   `json:"surrendered"`
}

// Store persists daily results.
type Store struct{ db *sql.DB }

// NewStore wraps a database handle.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// InsertResult records a finished day. Duplicate (owner, date) inserts are
// silently ignored so the scoring path can stay idempotent.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO daily_results
            (owner, date, category_id, correct, guesses, accuracy, surrendered)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.Owner, r.Date, r.CategoryID, r.Correct, r.Guesses, r.Accuracy, boolToInt(r.Surrendered),
	)
	return err
}

// LBRow is one leaderboard entry.
type LBRow struct {
	Owner       string `json:"owner"`
	Correct     int    `json:"correct"`
	Guesses     int    `json:"guesses"`
	Accuracy    int    `json:"accuracy"`
	Surrendered bool   `json:"surrendered"`
}

// Leaderboard fetches the top results for a date: most items found first,
// fewest guesses breaking ties, earliest finisher breaking those.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT owner, correct, guesses, accuracy, surrendered
        FROM daily_results
        WHERE date=?
        ORDER BY correct DESC, guesses ASC, created_at ASC
        LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LBRow, 0, limit)
	for rows.Next() {
		var r LBRow
		var surrendered int
		if err := rows.Scan(&r.Owner, &r.Correct, &r.Guesses, &r.Accuracy, &surrendered); err != nil {
			return nil, err
		}
		r.Surrendered = surrendered != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
