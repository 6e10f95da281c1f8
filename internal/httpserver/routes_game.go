// internal/httpserver/routes_game.go
//
// HTTP routes for the daily Top 10 game. Mounted with optional auth: logged
// in users play under their account ID, guests under the anonymous cookie.
// Endpoints:
//   - POST /game/start        → initialize today's puzzle (idempotent)
//   - GET  /game/state        → current session view
//   - POST /game/guess        → submit a free-text guess
//   - POST /game/giveup       → surrender today's puzzle
//   - POST /game/reset        → replay today from scratch
//   - POST /game/hints        → toggle hint display
//   - GET  /game/share        → shareable results text
//   - GET  /daily/leaderboard → top finishers for a date (default today)
//
// The session is loaded, initialized for today, mutated, and saved around
// every call; the save is awaited and a failure is a server error, so the
// persisted blob never lags the state the client saw.

package httpserver

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/toptendaily/go-server/internal/catalog"
	"github.com/toptendaily/go-server/internal/daily"
	"github.com/toptendaily/go-server/internal/game"
)

// mountGame registers the game and leaderboard routes.
func (s *Server) mountGame(r chi.Router) {
	r.Route("/game", func(r chi.Router) {
		r.Post("/start", s.handleStart)
		r.Get("/state", s.handleState)
		r.Post("/guess", s.handleGuess)
		r.Post("/giveup", s.handleGiveUp)
		r.Post("/reset", s.handleReset)
		r.Post("/hints", s.handleToggleHints)
		r.Get("/share", s.handleShare)
	})
	r.Get("/daily/leaderboard", s.handleLeaderboard)
}

// ----------------------------- view models ---------------------------------

// itemView is one ranking slot. Names are revealed only for guessed items
// (or once the puzzle is over); hints only for unguessed slots with hints on.
type itemView struct {
	Position int    `json:"position"`
	Name     string `json:"name,omitempty"`
	Hint     string `json:"hint,omitempty"`
	Guessed  bool   `json:"guessed"`
}

// stateRes is the full session view returned by the game endpoints.
type stateRes struct {
	Date        string     `json:"date"`
	CategoryID  string     `json:"categoryId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Items       []itemView `json:"items"`
	Attempts    []string   `json:"attempts"`
	Correct     int        `json:"correct"`
	TotalItems  int        `json:"totalItems"`
	Accuracy    int        `json:"accuracy"`
	Completed   bool       `json:"completed"`
	Surrendered bool       `json:"surrendered"`
	ShowHints   bool       `json:"showHints"`
	Streak      int        `json:"streak"`
	BestStreak  int        `json:"bestStreak"`
	TotalPlayed int        `json:"totalPlayed"`
	TotalWins   int        `json:"totalWins"`
}

// stateView projects a session into the client-facing shape without leaking
// unguessed answers.
func (s *Server) stateView(sess *game.Session) stateRes {
	res := stateRes{
		Date:        sess.LastPlayed,
		Attempts:    sess.Attempts,
		Correct:     sess.CorrectCount(),
		Accuracy:    sess.Accuracy(),
		Completed:   sess.IsCompleted(),
		Surrendered: sess.Surrendered,
		ShowHints:   sess.ShowHints,
		Streak:      sess.Streak,
		BestStreak:  sess.BestStreak,
		TotalPlayed: sess.TotalPlayed,
		TotalWins:   sess.TotalWins,
	}
	if res.Attempts == nil {
		res.Attempts = []string{}
	}
	if sess.Category == nil {
		res.Items = []itemView{}
		return res
	}
	res.CategoryID = sess.Category.ID
	res.Title = sess.Category.Title
	res.Description = sess.Category.Description
	res.TotalItems = len(sess.Category.Items)

	revealAll := sess.IsCompleted()
	res.Items = make([]itemView, len(sess.Category.Items))
	for i, item := range sess.Category.Items {
		iv := itemView{Position: i + 1}
		guessed := false
		for _, g := range sess.Guessed {
			if g == i {
				guessed = true
				break
			}
		}
		iv.Guessed = guessed
		if guessed || revealAll {
			iv.Name = item.Name
		}
		if !guessed && sess.ShowHints {
			iv.Hint = item.Hint
		}
		res.Items[i] = iv
	}
	return res
}

// loadToday loads the caller's session and rolls it onto today's puzzle.
// Reports whether the rollover changed anything (so read paths only write
// back when a new day actually started).
func (s *Server) loadToday(w http.ResponseWriter, r *http.Request) (owner string, sess *game.Session, rolled bool, err error) {
	owner = s.ownerID(w, r)
	sess, err = s.sessions.Load(r.Context(), owner)
	if err != nil {
		return "", nil, false, err
	}
	before := sess.LastPlayed
	sess.Initialize(s.cat, s.now())
	return owner, sess, sess.LastPlayed != before, nil
}

// finishIfScored records a daily result when this call moved the session
// into its scored state. Best effort: a failed row never fails the request.
func (s *Server) finishIfScored(r *http.Request, owner string, sess *game.Session, scoredBefore string) {
	if sess.ScoredDate == scoredBefore || s.results == nil || sess.Category == nil {
		return
	}
	err := s.results.InsertResult(r.Context(), daily.Result{
		Owner:       owner,
		Date:        sess.LastPlayed,
		CategoryID:  sess.Category.ID,
		Correct:     sess.CorrectCount(),
		Guesses:     len(sess.Attempts),
		Accuracy:    sess.Accuracy(),
		Surrendered: sess.Surrendered,
	})
	if err != nil {
		log.Warn().Err(err).Str("owner", owner).Msg("insert daily result")
	}
}

// save persists the session, translating failure into a 500. Returns false
// when the response has already been written.
func (s *Server) save(w http.ResponseWriter, r *http.Request, owner string, sess *game.Session) bool {
	if err := s.sessions.Save(r.Context(), owner, sess); err != nil {
		log.Error().Err(err).Str("owner", owner).Msg("save session")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return false
	}
	return true
}

// ------------------------------ handlers -----------------------------------

// handleStart initializes today's puzzle. Calling it repeatedly on the same
// day is a no-op; on a new day it rolls the session over.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	owner, sess, _, err := s.loadToday(w, r)
	if err != nil {
		http.Error(w, `{"error":"load_failed"}`, http.StatusInternalServerError)
		return
	}
	if !s.save(w, r, owner, sess) {
		return
	}
	_ = json.NewEncoder(w).Encode(s.stateView(sess))
}

// handleState returns the current session view. Writes back only when the
// read triggered a day rollover.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	owner, sess, rolled, err := s.loadToday(w, r)
	if err != nil {
		http.Error(w, `{"error":"load_failed"}`, http.StatusInternalServerError)
		return
	}
	if rolled && !s.save(w, r, owner, sess) {
		return
	}
	_ = json.NewEncoder(w).Encode(s.stateView(sess))
}

// guessReq/Res payloads for POST /game/guess.
type guessReq struct {
	Guess string `json:"guess"`
}
type guessRes struct {
	game.GuessOutcome
	State stateRes `json:"state"`
}

// handleGuess submits one free-text guess. Empty or whitespace-only input is
// rejected here; everything else is a well-defined outcome, never an error.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Guess) == "" {
		http.Error(w, `{"error":"empty_guess"}`, http.StatusBadRequest)
		return
	}

	owner, sess, _, err := s.loadToday(w, r)
	if err != nil {
		http.Error(w, `{"error":"load_failed"}`, http.StatusInternalServerError)
		return
	}

	scoredBefore := sess.ScoredDate
	outcome := sess.MakeGuess(req.Guess)
	if sess.IsCompleted() {
		sess.Complete() // no-op if today was already scored
	}
	s.finishIfScored(r, owner, sess, scoredBefore)

	if !s.save(w, r, owner, sess) {
		return
	}
	_ = json.NewEncoder(w).Encode(guessRes{GuessOutcome: outcome, State: s.stateView(sess)})
}

// handleGiveUp surrenders today's puzzle and finalizes scoring.
func (s *Server) handleGiveUp(w http.ResponseWriter, r *http.Request) {
	owner, sess, _, err := s.loadToday(w, r)
	if err != nil {
		http.Error(w, `{"error":"load_failed"}`, http.StatusInternalServerError)
		return
	}
	scoredBefore := sess.ScoredDate
	sess.GiveUp()
	s.finishIfScored(r, owner, sess, scoredBefore)
	if !s.save(w, r, owner, sess) {
		return
	}
	_ = json.NewEncoder(w).Encode(s.stateView(sess))
}

// handleReset clears today's progress for a replay.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	owner, sess, _, err := s.loadToday(w, r)
	if err != nil {
		http.Error(w, `{"error":"load_failed"}`, http.StatusInternalServerError)
		return
	}
	sess.Reset()
	if !s.save(w, r, owner, sess) {
		return
	}
	_ = json.NewEncoder(w).Encode(s.stateView(sess))
}

// handleToggleHints flips the hints preference.
func (s *Server) handleToggleHints(w http.ResponseWriter, r *http.Request) {
	owner, sess, _, err := s.loadToday(w, r)
	if err != nil {
		http.Error(w, `{"error":"load_failed"}`, http.StatusInternalServerError)
		return
	}
	sess.ToggleHints()
	if !s.save(w, r, owner, sess) {
		return
	}
	_ = json.NewEncoder(w).Encode(s.stateView(sess))
}

// shareRes is returned by GET /game/share.
type shareRes struct {
	Text string `json:"text"`
}

// handleShare returns the shareable results message for today.
func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	owner, sess, rolled, err := s.loadToday(w, r)
	if err != nil {
		http.Error(w, `{"error":"load_failed"}`, http.StatusInternalServerError)
		return
	}
	if rolled && !s.save(w, r, owner, sess) {
		return
	}
	_ = json.NewEncoder(w).Encode(shareRes{Text: sess.ShareText(s.now())})
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default
// today).
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.results == nil {
		http.Error(w, `{"error":"unavailable"}`, http.StatusServiceUnavailable)
		return
	}
	date := r.URL.Query().Get("date")
	if date == "" {
		date = catalog.DateKey(s.now())
	}
	rows, err := s.results.Leaderboard(r.Context(), date, 20)
	if err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(lbRes{Date: date, Top: rows})
}
