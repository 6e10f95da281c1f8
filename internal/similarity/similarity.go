// internal/similarity/similarity.go
//
// Fuzzy string similarity used by guess resolution for "close match"
// feedback. Implements the Dice coefficient over character bigrams:
//
//	score = 2 * |shared bigrams| / (|bigrams(a)| + |bigrams(b)|)
//
// Whitespace is stripped before comparison, identical strings score 1, and
// strings shorter than two characters score 0. Scores are in [0,1] and fully
// deterministic for identical inputs; the close-match threshold elsewhere
// depends on these exact values, so the arithmetic here must not change.

package similarity

import (
	"strings"
	"unicode"
)

// BestMatch reports the per-candidate ratings of a query and which
// candidate scored highest. Ties go to the earliest candidate.
type BestMatch struct {
	Ratings    []float64
	BestIndex  int // -1 when there are no candidates
	BestRating float64
}

// CompareTwoStrings returns the bigram Dice similarity of two strings.
func CompareTwoStrings(first, second string) float64 {
	first = stripSpace(first)
	second = stripSpace(second)

	if first == second {
		return 1
	}
	if len(first) < 2 || len(second) < 2 {
		return 0
	}

	// Bigram multiset of the first string.
	bigrams := make(map[string]int, len(first)-1)
	for i := 0; i+2 <= len(first); i++ {
		bigrams[first[i:i+2]]++
	}

	matches := 0
	for i := 0; i+2 <= len(second); i++ {
		b := second[i : i+2]
		if bigrams[b] > 0 {
			bigrams[b]--
			matches++
		}
	}
	return 2 * float64(matches) / float64(len(first)+len(second)-2)
}

// FindBestMatch rates query against every candidate and returns the
// best-scoring one with its index.
func FindBestMatch(query string, candidates []string) BestMatch {
	out := BestMatch{
		Ratings:   make([]float64, len(candidates)),
		BestIndex: -1,
	}
	for i, c := range candidates {
		r := CompareTwoStrings(query, c)
		out.Ratings[i] = r
		if out.BestIndex < 0 || r > out.BestRating {
			out.BestIndex = i
			out.BestRating = r
		}
	}
	return out
}

// stripSpace removes all whitespace characters.
func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
