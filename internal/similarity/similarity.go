// Package similarity computes normalized string-similarity ratios used
// to rank registry candidates against local bibliography entries.
package similarity

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Ratio returns a similarity score in [0,1] between two strings,
// computed as a normalized Levenshtein ratio on case-folded input.
// Identical strings score 1.0; strings with no characters in common
// score 0.0. The measure is symmetric.
func Ratio(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))

	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	distance := levenshtein.ComputeDistance(a, b)
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}

	return 1.0 - float64(distance)/float64(maxLen)
}

// Best returns the highest Ratio between s and any of the candidates,
// or 0.0 when candidates is empty.
func Best(s string, candidates []string) float64 {
	best := 0.0
	for _, c := range candidates {
		if r := Ratio(s, c); r > best {
			best = r
		}
	}
	return best
}
