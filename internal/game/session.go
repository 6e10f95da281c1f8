// internal/game/session.go
//
// Session state machine for the Top 10 Daily Challenge.
// Responsibilities:
//   - Initialize the day's puzzle with day-rollover semantics.
//   - Resolve free-text guesses: normalization, exact match by list position,
//     duplicate suppression, fuzzy close-match fallback.
//   - Give-up, reset and hint toggling.
//   - Finalize scoring (streaks, lifetime counters) exactly once per day.
//
// Notes:
//   - All operations are total: there is no error path, only outcomes.
//   - The session has one logical owner; nothing here locks.

package game

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/toptendaily/go-server/internal/catalog"
	"github.com/toptendaily/go-server/internal/similarity"
)

// Initialize prepares the session for the date of now. Idempotent per day:
// if the session already belongs to today it is left untouched, so this is
// safe to run on every request. On a new day the puzzle fields reset and a
// fresh category is selected; lifetime counters and ShowHints survive.
func (s *Session) Initialize(cat catalog.Catalog, now time.Time) {
	today := catalog.DateKey(now)
	if s.LastPlayed == today {
		return
	}
	c := cat.ForDate(now)
	s.Category = &c
	s.Guessed = []int{}
	s.Attempts = []string{}
	s.Surrendered = false
	s.LastPlayed = today
}

// MakeGuess resolves one raw guess against the day's list.
//
// Processing order:
//  1. No active category, or already surrendered → miss, no side effects.
//  2. Normalize the input.
//  3. Same normalized text as any prior attempt → miss, not re-recorded.
//     The check is by text only, so resubmitting an already-correct answer
//     is rejected here too.
//  4. Record the raw text as an attempt.
//  5. First unguessed item whose normalized name matches exactly → correct.
//  6. Otherwise the best-rated item at or above SimilarityThreshold → close
//     match, carrying the item's display name (guessed or not).
//  7. Otherwise miss.
func (s *Session) MakeGuess(raw string) GuessOutcome {
	if s.Category == nil || s.Surrendered {
		return GuessOutcome{}
	}

	guess := Normalize(raw)

	for _, prior := range s.Attempts {
		if Normalize(prior) == guess {
			return GuessOutcome{}
		}
	}

	s.Attempts = append(s.Attempts, raw)

	for i, item := range s.Category.Items {
		if Normalize(item.Name) != guess {
			continue
		}
		if s.hasGuessed(i) {
			continue
		}
		s.Guessed = append(s.Guessed, i)
		sort.Ints(s.Guessed)
		s.fireOnCorrect(i + 1)
		return GuessOutcome{Correct: true, Position: i + 1}
	}

	names := make([]string, len(s.Category.Items))
	for i, item := range s.Category.Items {
		names[i] = Normalize(item.Name)
	}
	best := similarity.FindBestMatch(guess, names)
	if best.BestIndex >= 0 && best.BestRating >= SimilarityThreshold {
		return GuessOutcome{
			CloseMatch:  true,
			MatchedWith: s.Category.Items[best.BestIndex].Name,
		}
	}
	return GuessOutcome{}
}

// ToggleHints flips the hints display preference.
func (s *Session) ToggleHints() { s.ShowHints = !s.ShowHints }

// GiveUp surrenders the current puzzle and finalizes scoring in one step.
// No-op when there is no active category or the player already surrendered.
func (s *Session) GiveUp() {
	if s.Category == nil || s.Surrendered {
		return
	}
	s.Surrendered = true
	s.Complete()
}

// Reset clears today's progress for a replay without touching the date or
// the lifetime counters.
func (s *Session) Reset() {
	s.Guessed = []int{}
	s.Attempts = []string{}
	s.Surrendered = false
}

// Complete finalizes scoring for the current day: a win is all items guessed
// without surrendering. Wins extend the streak, anything else resets it.
// Runs at most once per day — repeated calls for the same date are no-ops.
func (s *Session) Complete() {
	if s.Category == nil {
		return
	}
	if s.ScoredDate != "" && s.ScoredDate == s.LastPlayed {
		return
	}
	isWin := len(s.Guessed) == len(s.Category.Items) && !s.Surrendered

	s.TotalPlayed++
	if isWin {
		s.TotalWins++
		s.Streak++
	} else {
		s.Streak = 0
	}
	if s.Streak > s.BestStreak {
		s.BestStreak = s.Streak
	}
	s.ScoredDate = s.LastPlayed
}

// IsCompleted reports whether today's puzzle is over: every item guessed or
// the player surrendered. Pure; callers decide when to invoke Complete.
func (s *Session) IsCompleted() bool {
	if s.Category == nil {
		return false
	}
	return len(s.Guessed) == len(s.Category.Items) || s.Surrendered
}

// hasGuessed reports whether the zero-based item index is already solved.
func (s *Session) hasGuessed(idx int) bool {
	for _, g := range s.Guessed {
		if g == idx {
			return true
		}
	}
	return false
}

// fireOnCorrect invokes the cosmetic correct-guess hook, if any. A panicking
// hook never disturbs game state.
func (s *Session) fireOnCorrect(position int) {
	if s.OnCorrect == nil {
		return
	}
	defer func() { _ = recover() }()
	s.OnCorrect(position)
}

// Normalize lowercases, trims, and strips diacritics (NFD decomposition with
// combining marks removed), so "Café", " cafe " and "CAFE" compare equal.
func Normalize(in string) string {
	in = strings.ToLower(strings.TrimSpace(in))
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, in)
	if err != nil {
		return in
	}
	return out
}
