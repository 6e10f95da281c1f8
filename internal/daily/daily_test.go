package daily

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	if _, err := db.Exec(`CREATE TABLE daily_results (
		owner TEXT NOT NULL,
		date TEXT NOT NULL,
		category_id TEXT NOT NULL,
		correct INTEGER NOT NULL,
		guesses INTEGER NOT NULL,
		accuracy INTEGER NOT NULL,
		surrendered INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL DEFAULT (datetime('now')),
		PRIMARY KEY (owner, date)
	)`); err != nil {
		t.Fatalf("schema: %v", err)
	}
	return db
}

func TestInsertResultIgnoresDuplicates(t *testing.T) {
	st := NewStore(testDB(t))
	ctx := context.Background()

	r := Result{Owner: "p1", Date: "2024-01-01", CategoryID: "movies-2023", Correct: 10, Guesses: 12, Accuracy: 83}
	if err := st.InsertResult(ctx, r); err != nil {
		t.Fatalf("insert: %v", err)
	}
	// Replays of the same (owner, date) must not error or double-record.
	r.Correct = 3
	if err := st.InsertResult(ctx, r); err != nil {
		t.Fatalf("duplicate insert: %v", err)
	}

	rows, err := st.Leaderboard(ctx, "2024-01-01", 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].Correct != 10 {
		t.Fatalf("first insert was overwritten: %+v", rows[0])
	}
}

func TestLeaderboardOrdering(t *testing.T) {
	st := NewStore(testDB(t))
	ctx := context.Background()

	inserts := []Result{
		{Owner: "few-correct", Date: "2024-01-01", CategoryID: "c", Correct: 4, Guesses: 9, Accuracy: 44},
		{Owner: "winner-slow", Date: "2024-01-01", CategoryID: "c", Correct: 10, Guesses: 20, Accuracy: 50},
		{Owner: "winner-fast", Date: "2024-01-01", CategoryID: "c", Correct: 10, Guesses: 11, Accuracy: 91},
		{Owner: "gave-up", Date: "2024-01-01", CategoryID: "c", Correct: 7, Guesses: 8, Accuracy: 88, Surrendered: true},
		{Owner: "other-day", Date: "2024-01-02", CategoryID: "c", Correct: 10, Guesses: 10, Accuracy: 100},
	}
	for _, r := range inserts {
		if err := st.InsertResult(ctx, r); err != nil {
			t.Fatalf("insert %s: %v", r.Owner, err)
		}
	}

	rows, err := st.Leaderboard(ctx, "2024-01-01", 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	wantOrder := []string{"winner-fast", "winner-slow", "gave-up", "few-correct"}
	if len(rows) != len(wantOrder) {
		t.Fatalf("rows = %d, want %d", len(rows), len(wantOrder))
	}
	for i, want := range wantOrder {
		if rows[i].Owner != want {
			t.Fatalf("row %d = %q, want %q (full: %+v)", i, rows[i].Owner, want, rows)
		}
	}
	if !rows[2].Surrendered {
		t.Fatal("surrendered flag lost")
	}
}

func TestLeaderboardLimit(t *testing.T) {
	st := NewStore(testDB(t))
	ctx := context.Background()
	for _, owner := range []string{"a", "b", "c"} {
		if err := st.InsertResult(ctx, Result{Owner: owner, Date: "2024-01-01", CategoryID: "c", Correct: 5, Guesses: 5, Accuracy: 100}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	rows, err := st.Leaderboard(ctx, "2024-01-01", 2)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
}
