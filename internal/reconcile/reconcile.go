// Package reconcile drives the batch loop that reconciles bibliography
// entries against the registry: query, rank, merge, strip fields, record.
package reconcile

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/bibtools/bibfix/internal/author"
	"github.com/bibtools/bibfix/internal/bibtex"
	"github.com/bibtools/bibfix/internal/crossref"
	"github.com/bibtools/bibfix/internal/match"
	"github.com/bibtools/bibfix/internal/merge"
)

// IssuesFile is the fixed name of the secondary output holding entries
// that received zero field changes, written next to the primary output.
const IssuesFile = "potential_issues.bib"

// DefaultRemoveFields are stripped from every entry unless overridden.
var DefaultRemoveFields = []string{"organization", "abstract", "keywords"}

// Searcher issues one bibliographic query against the registry.
// *crossref.Client satisfies it; tests substitute fakes.
type Searcher interface {
	Search(ctx context.Context, q crossref.Query) ([]crossref.Candidate, int, error)
}

// Options configures a run.
type Options struct {
	// Threshold is the minimum combined score for accepting a match.
	// Zero is a valid cliff: the best identifier-bearing candidate is
	// always accepted. Callers wanting the standard cliff pass
	// match.DefaultThreshold.
	Threshold float64

	// RemoveFields are stripped from every entry after merging.
	RemoveFields []string

	// Rows caps the number of candidates requested per query.
	Rows int

	// Logger receives per-entry progress and warnings. Defaults to the
	// package-level logger.
	Logger *log.Logger
}

// Outcome records what happened to one entry.
type Outcome struct {
	Key     string   `json:"key"`
	Matched bool     `json:"matched"`
	DOI     string   `json:"doi,omitempty"`
	Score   float64  `json:"score,omitempty"`
	Changed []string `json:"changed,omitempty"`
	Removed []string `json:"removed,omitempty"`
}

// Result is the output of a full run. Entries holds every entry in
// input order; Issues holds the subset that ended the run unchanged.
type Result struct {
	Entries  []*bibtex.Entry
	Issues   []*bibtex.Entry
	Outcomes []Outcome
	Updated  int
}

// Run processes entries strictly in input order, one registry query per
// entry. Query failures are soft: the entry proceeds as unmatched and
// the batch continues. The only hard failure is context cancellation.
func Run(ctx context.Context, searcher Searcher, entries []*bibtex.Entry, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	result := &Result{
		Entries:  make([]*bibtex.Entry, 0, len(entries)),
		Outcomes: make([]Outcome, 0, len(entries)),
	}

	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run interrupted: %w", err)
		}

		logger.Info("processing entry", "key", e.Key, "n", fmt.Sprintf("%d/%d", i+1, len(entries)))

		updated, outcome := processEntry(ctx, searcher, e, opts, logger)

		removed := stripFields(updated, opts.RemoveFields)
		if len(removed) > 0 {
			logger.Info("removed fields", "key", e.Key, "fields", removed)
		}
		outcome.Removed = removed

		result.Entries = append(result.Entries, updated)
		result.Outcomes = append(result.Outcomes, outcome)

		if len(outcome.Changed) == 0 && len(removed) == 0 {
			result.Issues = append(result.Issues, updated)
		} else {
			result.Updated++
		}
	}

	return result, nil
}

// processEntry runs the query-rank-merge pipeline for one entry.
func processEntry(ctx context.Context, searcher Searcher, e *bibtex.Entry, opts Options, logger *log.Logger) (*bibtex.Entry, Outcome) {
	outcome := Outcome{Key: e.Key}

	query := buildQuery(e, opts.Rows)
	logger.Info("searching registry", "key", e.Key, "query", query.Bibliographic)

	candidates, total, err := searcher.Search(ctx, query)
	if err != nil {
		// Soft failure: treated identically to "no match".
		if crossref.IsRateLimited(err) {
			logger.Warn("registry rate limit hit", "key", e.Key)
		} else {
			logger.Warn("registry query failed", "key", e.Key, "err", err)
		}
		return e.Clone(), outcome
	}
	logger.Info("registry results", "key", e.Key, "total", total)

	local := match.Local{
		Title:   e.Normalized("title"),
		Authors: author.SplitList(e.Normalized("author")),
	}

	best, ok := match.Best(local, candidates, opts.Threshold)
	outcome.Score = best.Score
	if !ok {
		logger.Warn("no confident match", "key", e.Key, "best_score", fmt.Sprintf("%.2f", best.Score))
		return e.Clone(), outcome
	}

	outcome.Matched = true
	outcome.DOI = best.DOI
	logger.Info("matched", "key", e.Key, "doi", best.DOI, "score", fmt.Sprintf("%.2f", best.Score))

	updated, changed := merge.Apply(e, best.Fields, best.Type)

	// The registry identifier always wins; an existing DOI that differs
	// is flagged but replaced.
	existing := e.Get("doi")
	if bibtex.NormalizeDOI(existing) != bibtex.NormalizeDOI(best.DOI) {
		if existing != "" {
			logger.Warn("DOI mismatch, using registry value",
				"key", e.Key, "existing", existing, "registry", best.DOI)
		}
		updated.Set("doi", best.DOI)
		changed = append([]string{"doi"}, changed...)
	}

	outcome.Changed = changed
	return updated, outcome
}

// buildQuery builds the free-text registry query for an entry:
// "<first author's surname> <title>" when an author exists, else just
// the title, with an exact-year filter when the entry has a year.
func buildQuery(e *bibtex.Entry, rows int) crossref.Query {
	title := e.Normalized("title")

	bibliographic := title
	if authors := author.SplitList(e.Normalized("author")); len(authors) > 0 {
		if surname := author.Surname(authors[0]); surname != "" {
			bibliographic = surname + " " + title
		}
	}

	return crossref.Query{
		Bibliographic: bibliographic,
		Year:          e.Normalized("year"),
		Rows:          rows,
	}
}

// stripFields removes the named fields from the entry in place and
// returns the names actually removed. Absent fields are a no-op.
func stripFields(e *bibtex.Entry, fields []string) []string {
	var removed []string
	for _, name := range fields {
		if e.Remove(name) {
			removed = append(removed, name)
		}
	}
	return removed
}
