// Package similarity provides the character-based sequence similarity used
// to decide whether a token is "close enough" to a known word.
//
// The metric is the Ratcliff/Obershelp ratio: 2*M/T where M is the number of
// characters in matching blocks and T the combined length of both strings.
// Identical strings score 1.0 and strings sharing no character score 0.0.
package similarity

import (
	"github.com/pmezard/go-difflib/difflib"
)

// DefaultThreshold is the score a candidate must exceed to be accepted.
const DefaultThreshold = 0.6

// Ratio returns the similarity of a and b in [0,1]. Two empty strings score 1.0.
func Ratio(a, b string) float64 {
	return newMatcher(runes(a), runes(b)).Ratio()
}

// CloseMatch returns the single best candidate whose ratio against word is at
// least cutoff. Ties keep the candidate encountered first. The boolean is false
// when no candidate reaches the cutoff.
//
// Each candidate is scored as Ratio(candidate, word); the cheap upper bounds
// are checked first so most candidates never reach the full computation.
func CloseMatch(word string, candidates []string, cutoff float64) (string, float64, bool) {
	m := newMatcher(nil, nil)
	m.SetSeq2(runes(word))

	best, bestScore, found := "", 0.0, false
	for _, candidate := range candidates {
		m.SetSeq1(runes(candidate))
		if m.RealQuickRatio() < cutoff || m.QuickRatio() < cutoff {
			continue
		}
		score := m.Ratio()
		if score < cutoff {
			continue
		}
		if !found || score > bestScore {
			best, bestScore, found = candidate, score, true
		}
	}
	return best, bestScore, found
}

// newMatcher builds a matcher without the popularity heuristic so long
// strings are scored with the plain formula.
func newMatcher(a, b []string) *difflib.SequenceMatcher {
	return difflib.NewMatcherWithJunk(a, b, false, nil)
}

// runes splits s into one element per character.
func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
