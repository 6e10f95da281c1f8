package httpserver

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/toptendaily/go-server/internal/catalog"
	"github.com/toptendaily/go-server/internal/store"
)

var testDay = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func fixtureCatalog() catalog.Catalog {
	return catalog.Catalog{{
		ID:          "movies",
		Title:       "Test Movies",
		Description: "fixture",
		Items: []catalog.Item{
			{Name: "Barbie", Hint: "Plastic fantastic"},
			{Name: "Oppenheimer", Hint: "Atomic scientist biopic"},
		},
	}}
}

// newTestClient spins up the server over a memory store (no database) and
// returns a cookie-keeping client, so the anonymous identity persists across
// requests like it would in a real client.
func newTestClient(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()
	srv := New(store.NewMemoryStore(), fixtureCatalog(), nil).
		WithClock(func() time.Time { return testDay })
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	jar, _ := cookiejar.New(nil)
	return ts, &http.Client{Jar: jar}
}

func testServerDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	schema := []string{
		`CREATE TABLE users (id TEXT PRIMARY KEY, username TEXT NOT NULL UNIQUE COLLATE NOCASE,
		 password_hash TEXT NOT NULL, created_at TEXT NOT NULL)`,
		`CREATE TABLE game_sessions (owner TEXT PRIMARY KEY, data TEXT NOT NULL, updated_at TEXT NOT NULL)`,
		`CREATE TABLE daily_results (owner TEXT NOT NULL, date TEXT NOT NULL, category_id TEXT NOT NULL,
		 correct INTEGER NOT NULL, guesses INTEGER NOT NULL, accuracy INTEGER NOT NULL,
		 surrendered INTEGER NOT NULL DEFAULT 0,
		 created_at TEXT NOT NULL DEFAULT (datetime('now')),
		 PRIMARY KEY (owner, date))`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("schema: %v", err)
		}
	}
	return db
}

func postJSON(t *testing.T, c *http.Client, url string, body any) *http.Response {
	t.Helper()
	raw, _ := json.Marshal(body)
	res, err := c.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return res
}

func decode[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	defer res.Body.Close()
	var out T
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

type stateJSON struct {
	Date        string `json:"date"`
	Title       string `json:"title"`
	Correct     int    `json:"correct"`
	TotalItems  int    `json:"totalItems"`
	Completed   bool   `json:"completed"`
	Surrendered bool   `json:"surrendered"`
	ShowHints   bool   `json:"showHints"`
	Streak      int    `json:"streak"`
	TotalPlayed int    `json:"totalPlayed"`
	TotalWins   int    `json:"totalWins"`
	Items       []struct {
		Position int    `json:"position"`
		Name     string `json:"name"`
		Hint     string `json:"hint"`
		Guessed  bool   `json:"guessed"`
	} `json:"items"`
	Attempts []string `json:"attempts"`
}

type guessJSON struct {
	Correct     bool      `json:"correct"`
	Position    int       `json:"position"`
	CloseMatch  bool      `json:"closeMatch"`
	MatchedWith string    `json:"matchedWith"`
	State       stateJSON `json:"state"`
}

func TestGameFlow(t *testing.T) {
	ts, c := newTestClient(t)

	res := postJSON(t, c, ts.URL+"/game/start", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("start status %d", res.StatusCode)
	}
	state := decode[stateJSON](t, res)
	if state.Title != "Test Movies" || state.TotalItems != 2 || state.Date != "2024-01-01" {
		t.Fatalf("unexpected start state: %+v", state)
	}
	// Unguessed answers must not leak.
	for _, it := range state.Items {
		if it.Name != "" {
			t.Fatalf("answer leaked: %+v", it)
		}
	}

	g := decode[guessJSON](t, postJSON(t, c, ts.URL+"/game/guess", map[string]string{"guess": "barbie"}))
	if !g.Correct || g.Position != 1 {
		t.Fatalf("guess = %+v", g)
	}
	if g.State.Correct != 1 || !g.State.Items[0].Guessed || g.State.Items[0].Name != "Barbie" {
		t.Fatalf("state after guess: %+v", g.State)
	}

	// Duplicate is a recorded no-op miss.
	g = decode[guessJSON](t, postJSON(t, c, ts.URL+"/game/guess", map[string]string{"guess": "BARBIE"}))
	if g.Correct || g.CloseMatch || len(g.State.Attempts) != 1 {
		t.Fatalf("duplicate guess = %+v", g)
	}

	// Near miss produces close-match feedback.
	g = decode[guessJSON](t, postJSON(t, c, ts.URL+"/game/guess", map[string]string{"guess": "openheimer"}))
	if !g.CloseMatch || g.MatchedWith != "Oppenheimer" {
		t.Fatalf("close match = %+v", g)
	}

	// Finishing the list completes and scores the day.
	g = decode[guessJSON](t, postJSON(t, c, ts.URL+"/game/guess", map[string]string{"guess": "Oppenheimer"}))
	if !g.Correct || !g.State.Completed {
		t.Fatalf("final guess = %+v", g)
	}
	if g.State.TotalPlayed != 1 || g.State.TotalWins != 1 || g.State.Streak != 1 {
		t.Fatalf("scoring after win: %+v", g.State)
	}
	// Completed game reveals the whole list.
	for _, it := range g.State.Items {
		if it.Name == "" {
			t.Fatalf("completed state hides answers: %+v", g.State.Items)
		}
	}
}

func TestGuessValidation(t *testing.T) {
	ts, c := newTestClient(t)
	res := postJSON(t, c, ts.URL+"/game/guess", map[string]string{"guess": "   "})
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("whitespace guess status %d, want 400", res.StatusCode)
	}
	res.Body.Close()
}

func TestHintsToggle(t *testing.T) {
	ts, c := newTestClient(t)
	postJSON(t, c, ts.URL+"/game/start", nil).Body.Close()

	state := decode[stateJSON](t, postJSON(t, c, ts.URL+"/game/hints", nil))
	if !state.ShowHints {
		t.Fatalf("hints not enabled: %+v", state)
	}
	if state.Items[0].Hint != "Plastic fantastic" {
		t.Fatalf("hint missing: %+v", state.Items)
	}

	state = decode[stateJSON](t, postJSON(t, c, ts.URL+"/game/hints", nil))
	if state.ShowHints || state.Items[0].Hint != "" {
		t.Fatalf("hints not disabled: %+v", state)
	}
}

func TestGiveUpAndReset(t *testing.T) {
	ts, c := newTestClient(t)
	postJSON(t, c, ts.URL+"/game/start", nil).Body.Close()
	decode[guessJSON](t, postJSON(t, c, ts.URL+"/game/guess", map[string]string{"guess": "Barbie"}))

	state := decode[stateJSON](t, postJSON(t, c, ts.URL+"/game/giveup", nil))
	if !state.Surrendered || !state.Completed {
		t.Fatalf("giveup state: %+v", state)
	}
	if state.TotalPlayed != 1 || state.TotalWins != 0 || state.Streak != 0 {
		t.Fatalf("giveup scoring: %+v", state)
	}

	// Guessing after surrender is a well-defined miss.
	g := decode[guessJSON](t, postJSON(t, c, ts.URL+"/game/guess", map[string]string{"guess": "Oppenheimer"}))
	if g.Correct || g.CloseMatch {
		t.Fatalf("guess after surrender = %+v", g)
	}

	state = decode[stateJSON](t, postJSON(t, c, ts.URL+"/game/reset", nil))
	if state.Surrendered || state.Completed || state.Correct != 0 || len(state.Attempts) != 0 {
		t.Fatalf("reset state: %+v", state)
	}
	if state.TotalPlayed != 1 {
		t.Fatalf("reset touched lifetime counters: %+v", state)
	}
}

func TestAnonymousIdentityPersists(t *testing.T) {
	ts, c := newTestClient(t)
	decode[guessJSON](t, postJSON(t, c, ts.URL+"/game/guess", map[string]string{"guess": "Barbie"}))

	// A second request from the same client sees the same session.
	res, err := c.Get(ts.URL + "/game/state")
	if err != nil {
		t.Fatalf("GET state: %v", err)
	}
	state := decode[stateJSON](t, res)
	if state.Correct != 1 {
		t.Fatalf("session not shared across requests: %+v", state)
	}

	// A different client gets its own fresh session.
	jar, _ := cookiejar.New(nil)
	other := &http.Client{Jar: jar}
	res, err = other.Get(ts.URL + "/game/state")
	if err != nil {
		t.Fatalf("GET state: %v", err)
	}
	if state := decode[stateJSON](t, res); state.Correct != 0 {
		t.Fatalf("sessions bleed across identities: %+v", state)
	}
}

func TestShareText(t *testing.T) {
	ts, c := newTestClient(t)
	decode[guessJSON](t, postJSON(t, c, ts.URL+"/game/guess", map[string]string{"guess": "Barbie"}))

	res, err := c.Get(ts.URL + "/game/share")
	if err != nil {
		t.Fatalf("GET share: %v", err)
	}
	share := decode[struct {
		Text string `json:"text"`
	}](t, res)
	if !strings.Contains(share.Text, "Test Movies") || !strings.Contains(share.Text, "1/2 correct") {
		t.Fatalf("share text: %q", share.Text)
	}
}

func TestAuthFlowClaimsGuestSession(t *testing.T) {
	db := testServerDB(t)
	srv := New(store.NewSQLStore(db), fixtureCatalog(), db).
		WithClock(func() time.Time { return testDay })
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	jar, _ := cookiejar.New(nil)
	c := &http.Client{Jar: jar}

	// Play as a guest first.
	decode[guessJSON](t, postJSON(t, c, ts.URL+"/game/guess", map[string]string{"guess": "Barbie"}))

	// Sign up; the guest's saved game should follow the account.
	res := postJSON(t, c, ts.URL+"/auth/signup", map[string]string{"Username": "player_one", "Password": "correcthorse"})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("signup status %d", res.StatusCode)
	}
	res.Body.Close()

	res, err := c.Get(ts.URL + "/auth/me")
	if err != nil {
		t.Fatalf("GET me: %v", err)
	}
	me := decode[struct {
		Username string `json:"username"`
	}](t, res)
	if me.Username != "player_one" {
		t.Fatalf("me = %+v", me)
	}

	res, err = c.Get(ts.URL + "/game/state")
	if err != nil {
		t.Fatalf("GET state: %v", err)
	}
	if state := decode[stateJSON](t, res); state.Correct != 1 {
		t.Fatalf("guest session not claimed: %+v", state)
	}

	// Finish the day and check stats + leaderboard.
	decode[stateJSON](t, postJSON(t, c, ts.URL+"/game/giveup", nil))

	res, err = c.Get(ts.URL + "/stats/me")
	if err != nil {
		t.Fatalf("GET stats: %v", err)
	}
	stats := decode[struct {
		TotalPlayed int `json:"totalPlayed"`
		TotalWins   int `json:"totalWins"`
	}](t, res)
	if stats.TotalPlayed != 1 || stats.TotalWins != 0 {
		t.Fatalf("stats = %+v", stats)
	}

	res, err = c.Get(ts.URL + "/daily/leaderboard")
	if err != nil {
		t.Fatalf("GET leaderboard: %v", err)
	}
	lb := decode[struct {
		Date string `json:"date"`
		Top  []struct {
			Correct     int  `json:"correct"`
			Surrendered bool `json:"surrendered"`
		} `json:"top"`
	}](t, res)
	if lb.Date != "2024-01-01" || len(lb.Top) != 1 {
		t.Fatalf("leaderboard = %+v", lb)
	}
	if lb.Top[0].Correct != 1 || !lb.Top[0].Surrendered {
		t.Fatalf("leaderboard row = %+v", lb.Top[0])
	}
}

func TestSignupValidation(t *testing.T) {
	db := testServerDB(t)
	srv := New(store.NewSQLStore(db), fixtureCatalog(), db)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	c := &http.Client{}

	res := postJSON(t, c, ts.URL+"/auth/signup", map[string]string{"Username": "x", "Password": "correcthorse"})
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("short username status %d, want 400", res.StatusCode)
	}
	res.Body.Close()

	res = postJSON(t, c, ts.URL+"/auth/signup", map[string]string{"Username": "player_one", "Password": "short"})
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("short password status %d, want 400", res.StatusCode)
	}
	res.Body.Close()

	res = postJSON(t, c, ts.URL+"/auth/signup", map[string]string{"Username": "player_one", "Password": "correcthorse"})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("valid signup status %d", res.StatusCode)
	}
	res.Body.Close()

	res = postJSON(t, c, ts.URL+"/auth/signup", map[string]string{"Username": "Player_One", "Password": "correcthorse"})
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate signup status %d, want 409", res.StatusCode)
	}
	res.Body.Close()
}

func TestStatsRequiresAuth(t *testing.T) {
	ts, c := newTestClient(t)
	res, err := c.Get(ts.URL + "/stats/me")
	if err != nil {
		t.Fatalf("GET stats: %v", err)
	}
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("stats without auth status %d, want 401", res.StatusCode)
	}
	res.Body.Close()
}
