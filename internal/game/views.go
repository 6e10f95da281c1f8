// internal/game/views.go
//
// Derived, read-only views over a Session: score counts, accuracy, and the
// shareable results text. Nothing here mutates state.

package game

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// CorrectCount returns how many items have been identified today.
func (s *Session) CorrectCount() int { return len(s.Guessed) }

// Accuracy returns the percentage of attempts that were correct, rounded to
// the nearest integer. Zero when nothing has been attempted.
func (s *Session) Accuracy() int {
	if len(s.Attempts) == 0 {
		return 0
	}
	return int(math.Round(float64(len(s.Guessed)) / float64(len(s.Attempts)) * 100))
}

// ShareText renders the player's results for today as a shareable message.
// Empty when no puzzle is active.
func (s *Session) ShareText(now time.Time) string {
	if s.Category == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🎮 Top 10 Daily Challenge - %s\n", now.UTC().Format("Jan 2, 2006"))
	fmt.Fprintf(&b, "📊 %s\n", s.Category.Title)
	fmt.Fprintf(&b, "✅ %d/%d correct\n", len(s.Guessed), len(s.Category.Items))
	fmt.Fprintf(&b, "🎯 %d%% accuracy\n", s.Accuracy())
	fmt.Fprintf(&b, "🔢 %d guesses\n", len(s.Attempts))
	if s.Surrendered {
		b.WriteString("🏳️ Gave up\n")
	}
	b.WriteString("\nPlay Top 10 Daily Challenge!")
	return b.String()
}
