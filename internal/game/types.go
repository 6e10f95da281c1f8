// internal/game/types.go
//
// Core type definitions for a Top 10 Daily Challenge session.
// Defines:
//   - Session: the sole mutable game entity, one per player identity.
//   - GuessOutcome: result of submitting one free-text guess.

package game

import "github.com/toptendaily/go-server/internal/catalog"

// SimilarityThreshold is the minimum Dice rating for "close match" feedback.
const SimilarityThreshold = 0.5

// Session holds one player's game state across days. The puzzle-specific
// fields (Category, Guessed, Attempts, Surrendered) reset on day rollover;
// the lifetime counters and the hints preference survive it. Sessions are
// serialized as a single JSON blob, so field tags are the storage format.
type Session struct {
	Category    *catalog.Category `json:"currentCategory,omitempty"`
	Guessed     []int             `json:"guessedItems"` // sorted ascending, zero-based item indices
	Attempts    []string          `json:"attempts"`     // raw guess texts in submission order
	LastPlayed  string            `json:"lastPlayed,omitempty"` // YYYY-MM-DD of the active puzzle
	Streak      int               `json:"streak"`
	BestStreak  int               `json:"bestStreak"`
	TotalPlayed int               `json:"totalPlayed"`
	TotalWins   int               `json:"totalWins"`
	ShowHints   bool              `json:"showHints"`
	Surrendered bool              `json:"surrendered"`

	// ScoredDate is the date key the lifetime counters were last updated
	// for. Guards Complete against running twice for the same day.
	ScoredDate string `json:"scoredDate,omitempty"`

	// OnCorrect, when set, fires after each correct guess with the 1-based
	// rank. Cosmetic only: panics are swallowed and state is never affected.
	OnCorrect func(position int) `json:"-"`
}

// GuessOutcome is the result of one MakeGuess call.
//   - Correct: the guess matched an unguessed item; Position is its 1-based rank.
//   - CloseMatch: no exact match, but some item rated ≥ SimilarityThreshold;
//     MatchedWith carries that item's display name.
//   - Neither flag set: a miss (also returned for duplicates and for guesses
//     against an uninitialized or surrendered session).
type GuessOutcome struct {
	Correct     bool   `json:"correct"`
	Position    int    `json:"position,omitempty"`
	CloseMatch  bool   `json:"closeMatch,omitempty"`
	MatchedWith string `json:"matchedWith,omitempty"`
}

// New returns an empty first-run session.
func New() *Session {
	return &Session{Guessed: []int{}, Attempts: []string{}}
}
