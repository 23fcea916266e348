package reconcile

import (
	"bytes"
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/bibtools/bibfix/internal/bibtex"
	"github.com/bibtools/bibfix/internal/crossref"
	"github.com/bibtools/bibfix/internal/match"
)

// fakeSearcher returns canned candidates and records the queries it saw.
type fakeSearcher struct {
	candidates []crossref.Candidate
	err        error
	queries    []crossref.Query
}

func (f *fakeSearcher) Search(_ context.Context, q crossref.Query) ([]crossref.Candidate, int, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.candidates, len(f.candidates), nil
}

func quietOpts() Options {
	return Options{Threshold: match.DefaultThreshold, Logger: log.New(io.Discard)}
}

func deepLearningEntry() *bibtex.Entry {
	e := bibtex.NewEntry("article", "smith2020deep")
	e.Set("author", "Smith, J.")
	e.Set("title", "Deep Learning")
	e.Set("year", "2020")
	return e
}

func TestRunMatch(t *testing.T) {
	// End-to-end: identical title and author with an identifier gets the
	// DOI set and the title rewritten with brace-preserved casing.
	searcher := &fakeSearcher{
		candidates: []crossref.Candidate{{
			DOI:     "10.1234/abc",
			Title:   "Deep Learning",
			Authors: []string{"J. Smith"},
		}},
	}

	result, err := Run(context.Background(), searcher, []*bibtex.Entry{deepLearningEntry()}, quietOpts())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	e := result.Entries[0]
	if got := e.Get("doi"); got != "10.1234/abc" {
		t.Errorf("doi = %q, want 10.1234/abc", got)
	}
	if got := e.Get("title"); got != "{Deep Learning}" {
		t.Errorf("title = %q, want brace-preserved casing", got)
	}

	if result.Updated != 1 || len(result.Issues) != 0 {
		t.Errorf("Updated = %d, Issues = %d, want 1, 0", result.Updated, len(result.Issues))
	}

	out := result.Outcomes[0]
	if !out.Matched || out.DOI != "10.1234/abc" {
		t.Errorf("outcome = %+v", out)
	}
	if len(out.Changed) == 0 || out.Changed[0] != "doi" {
		t.Errorf("Changed = %v, want doi first", out.Changed)
	}
}

func TestRunQueryConstruction(t *testing.T) {
	searcher := &fakeSearcher{}
	e := deepLearningEntry()
	e.Set("title", "{Deep Learning}")

	if _, err := Run(context.Background(), searcher, []*bibtex.Entry{e}, quietOpts()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(searcher.queries) != 1 {
		t.Fatalf("got %d queries, want 1", len(searcher.queries))
	}
	q := searcher.queries[0]
	if q.Bibliographic != "Smith Deep Learning" {
		t.Errorf("Bibliographic = %q, want %q", q.Bibliographic, "Smith Deep Learning")
	}
	if q.Year != "2020" {
		t.Errorf("Year = %q, want 2020", q.Year)
	}
}

func TestRunQueryWithoutAuthor(t *testing.T) {
	searcher := &fakeSearcher{}
	e := bibtex.NewEntry("article", "anon")
	e.Set("title", "Deep Learning")

	if _, err := Run(context.Background(), searcher, []*bibtex.Entry{e}, quietOpts()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if q := searcher.queries[0]; q.Bibliographic != "Deep Learning" || q.Year != "" {
		t.Errorf("query = %+v, want bare title and no year", q)
	}
}

func TestRunDOIConflict(t *testing.T) {
	// The registry value always wins over an existing identifier.
	searcher := &fakeSearcher{
		candidates: []crossref.Candidate{{
			DOI:     "10.1/Y",
			Title:   "Deep Learning",
			Authors: []string{"J. Smith"},
		}},
	}
	e := deepLearningEntry()
	e.Set("doi", "10.1/X")

	result, err := Run(context.Background(), searcher, []*bibtex.Entry{e}, quietOpts())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if got := result.Entries[0].Get("doi"); got != "10.1/Y" {
		t.Errorf("doi = %q, want registry value 10.1/Y", got)
	}
}

func TestRunDOICaseOnlyDifference(t *testing.T) {
	// An existing DOI that matches modulo case is not a change.
	searcher := &fakeSearcher{
		candidates: []crossref.Candidate{{
			DOI:     "10.1234/ABC",
			Title:   "Deep Learning",
			Authors: []string{"J. Smith"},
		}},
	}
	e := deepLearningEntry()
	e.Set("doi", "10.1234/abc")
	e.Set("title", "{Deep Learning}")

	result, err := Run(context.Background(), searcher, []*bibtex.Entry{e}, quietOpts())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	for _, name := range result.Outcomes[0].Changed {
		if name == "doi" {
			t.Error("doi recorded as changed for case-only difference")
		}
	}
}

func TestRunNoResults(t *testing.T) {
	// Zero registry results: the entry is unmodified and, with nothing
	// removed either, lands in the issues set.
	searcher := &fakeSearcher{}

	result, err := Run(context.Background(), searcher, []*bibtex.Entry{deepLearningEntry()}, quietOpts())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if result.Updated != 0 {
		t.Errorf("Updated = %d, want 0", result.Updated)
	}
	if len(result.Issues) != 1 || result.Issues[0].Key != "smith2020deep" {
		t.Errorf("Issues = %v, want the unmatched entry", result.Issues)
	}
	if result.Entries[0].Get("doi") != "" {
		t.Error("unmatched entry gained a doi")
	}
}

func TestRunZeroThreshold(t *testing.T) {
	// Threshold zero is a valid cliff, not "unset": the best
	// identifier-bearing candidate is accepted however poorly it scores.
	searcher := &fakeSearcher{
		candidates: []crossref.Candidate{{
			DOI:     "10.1/x",
			Title:   "An Entirely Different Matter",
			Authors: []string{"Jones, A."},
		}},
	}

	opts := quietOpts()
	opts.Threshold = 0

	result, err := Run(context.Background(), searcher, []*bibtex.Entry{deepLearningEntry()}, opts)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	out := result.Outcomes[0]
	if !out.Matched {
		t.Fatalf("outcome = %+v, want the low-scoring candidate accepted at threshold 0", out)
	}
	if got := result.Entries[0].Get("doi"); got != "10.1/x" {
		t.Errorf("doi = %q, want 10.1/x", got)
	}
}

func TestRunSearchErrorIsSoft(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("connection refused")}

	entries := []*bibtex.Entry{deepLearningEntry()}
	result, err := Run(context.Background(), searcher, entries, quietOpts())
	if err != nil {
		t.Fatalf("Run() error: %v, want soft failure", err)
	}
	if result.Outcomes[0].Matched {
		t.Error("outcome matched despite search error")
	}
	if len(result.Issues) != 1 {
		t.Errorf("Issues = %d, want 1", len(result.Issues))
	}
}

func TestRunRateLimitWarning(t *testing.T) {
	// A 429 from the registry is still a soft failure, but it gets its
	// own warning so the operator can tell throttling from outages.
	searcher := &fakeSearcher{err: crossref.ErrRateLimited}

	var buf bytes.Buffer
	opts := quietOpts()
	opts.Logger = log.New(&buf)

	result, err := Run(context.Background(), searcher, []*bibtex.Entry{deepLearningEntry()}, opts)
	if err != nil {
		t.Fatalf("Run() error: %v, want soft failure", err)
	}
	if result.Outcomes[0].Matched {
		t.Error("outcome matched despite rate limit")
	}
	if !strings.Contains(buf.String(), "rate limit") {
		t.Errorf("log output %q missing rate-limit warning", buf.String())
	}
}

func TestRunRemoveFields(t *testing.T) {
	searcher := &fakeSearcher{}
	e := deepLearningEntry()
	e.Set("abstract", "Long text.")
	e.Set("keywords", "deep, learning")

	opts := quietOpts()
	opts.RemoveFields = []string{"organization", "abstract", "keywords"}

	result, err := Run(context.Background(), searcher, []*bibtex.Entry{e}, opts)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	out := result.Entries[0]
	if out.Has("abstract") || out.Has("keywords") {
		t.Error("remove fields still present")
	}
	want := []string{"abstract", "keywords"}
	if got := result.Outcomes[0].Removed; !reflect.DeepEqual(got, want) {
		t.Errorf("Removed = %v, want %v", got, want)
	}

	// Removal counts as an update, so the entry stays out of the issues set.
	if len(result.Issues) != 0 || result.Updated != 1 {
		t.Errorf("Issues = %d, Updated = %d, want 0, 1", len(result.Issues), result.Updated)
	}
}

func TestRunRemoveAbsentFieldIsNoop(t *testing.T) {
	searcher := &fakeSearcher{}
	opts := quietOpts()
	opts.RemoveFields = []string{"abstract"}

	result, err := Run(context.Background(), searcher, []*bibtex.Entry{deepLearningEntry()}, opts)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if got := result.Outcomes[0].Removed; len(got) != 0 {
		t.Errorf("Removed = %v, want none", got)
	}
}

func TestRunPreservesOrderAndKeys(t *testing.T) {
	searcher := &fakeSearcher{}

	var entries []*bibtex.Entry
	keys := []string{"alpha", "beta", "gamma"}
	for _, k := range keys {
		e := bibtex.NewEntry("article", k)
		e.Set("title", "Title "+k)
		entries = append(entries, e)
	}

	result, err := Run(context.Background(), searcher, entries, quietOpts())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(result.Entries) != len(keys) {
		t.Fatalf("got %d entries, want %d", len(result.Entries), len(keys))
	}
	for i, k := range keys {
		if result.Entries[i].Key != k {
			t.Errorf("entry %d key = %q, want %q", i, result.Entries[i].Key, k)
		}
	}
}

func TestRunContextCancelled(t *testing.T) {
	searcher := &fakeSearcher{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, searcher, []*bibtex.Entry{deepLearningEntry()}, quietOpts())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestRunBelowThreshold(t *testing.T) {
	// A single highest-scoring candidate below the threshold is still
	// rejected: the cliff has no partial acceptance.
	searcher := &fakeSearcher{
		candidates: []crossref.Candidate{{
			DOI:     "10.1/x",
			Title:   "An Entirely Different Matter",
			Authors: []string{"Jones, A."},
		}},
	}

	result, err := Run(context.Background(), searcher, []*bibtex.Entry{deepLearningEntry()}, quietOpts())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if result.Outcomes[0].Matched {
		t.Error("matched below threshold")
	}
	if result.Entries[0].Get("doi") != "" {
		t.Error("entry gained a doi below threshold")
	}
}
