// Package match ranks registry candidates against a local entry and
// applies the acceptance threshold.
package match

import (
	"github.com/bibtools/bibfix/internal/crossref"
	"github.com/bibtools/bibfix/internal/similarity"
)

const (
	// DefaultThreshold is the minimum combined score for accepting a match.
	DefaultThreshold = 0.75

	// Title similarity dominates the combined score; author similarity
	// breaks near-ties between works with similar titles.
	titleWeight  = 0.7
	authorWeight = 0.3
)

// Local holds the normalized fields of the entry being matched.
type Local struct {
	Title   string
	Authors []string // raw author strings, e.g. "Smith, J."
}

// Result is a winning candidate: its identifier, the field mapping to
// merge, the mapped entry type, and the combined score that won.
type Result struct {
	DOI    string
	Title  string
	Fields map[string]string
	Type   string
	Score  float64
}

// Score computes the weighted combination of title similarity and
// best-author similarity for one candidate. When either side has no
// authors the author component is neutral (1.0).
func Score(local Local, c crossref.Candidate) float64 {
	titleScore := similarity.Ratio(local.Title, c.Title)

	authorScore := 1.0
	if len(local.Authors) > 0 && len(c.Authors) > 0 {
		sum := 0.0
		for _, a := range local.Authors {
			sum += similarity.Best(a, c.Authors)
		}
		authorScore = sum / float64(len(local.Authors))
	}

	return titleWeight*titleScore + authorWeight*authorScore
}

// Best scans the candidates and returns the highest-scoring one that
// carries a non-empty identifier and title. Ties keep the first
// candidate encountered. Returns ok=false when no candidate reaches
// the threshold, including the zero-candidate case.
func Best(local Local, candidates []crossref.Candidate, threshold float64) (Result, bool) {
	best := Result{}
	bestScore := 0.0
	found := false

	for _, c := range candidates {
		if c.DOI == "" || c.Title == "" {
			continue
		}

		score := Score(local, c)
		if !found || score > bestScore {
			found = true
			bestScore = score
			best = Result{
				DOI:    c.DOI,
				Title:  c.Title,
				Fields: c.Fields(),
				Type:   c.Type,
				Score:  score,
			}
		}
	}

	if !found || bestScore < threshold {
		return Result{Score: bestScore}, false
	}
	return best, true
}
