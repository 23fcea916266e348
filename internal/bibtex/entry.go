// Package bibtex defines the bibliography entry model and its
// BibTeX parsing and serialization.
package bibtex

import (
	"sort"
	"strings"

	"github.com/bibtools/bibfix/internal/textutil"
)

// Entry represents a single bibliography record: an entry type tag
// (article, book, ...), a unique citation key, and an ordered mapping of
// field names to raw text values. The citation key is immutable for the
// lifetime of a run.
type Entry struct {
	Type string
	Key  string

	fields map[string]string
	order  []string
}

// NewEntry creates an empty entry with the given type tag and citation key.
func NewEntry(entryType, key string) *Entry {
	return &Entry{
		Type:   strings.ToLower(entryType),
		Key:    key,
		fields: make(map[string]string),
	}
}

// Get returns the raw value of a field, or "" if absent. Field names are
// case-insensitive.
func (e *Entry) Get(name string) string {
	return e.fields[strings.ToLower(name)]
}

// Normalized returns the field value with brace delimiters stripped and
// whitespace collapsed. Absent fields yield "".
func (e *Entry) Normalized(name string) string {
	return textutil.Normalize(e.Get(name))
}

// Has reports whether the field is present.
func (e *Entry) Has(name string) bool {
	_, ok := e.fields[strings.ToLower(name)]
	return ok
}

// Set stores a field value. Existing fields keep their position in the
// serialization order; new fields are appended.
func (e *Entry) Set(name, value string) {
	name = strings.ToLower(name)
	if _, ok := e.fields[name]; !ok {
		e.order = append(e.order, name)
	}
	e.fields[name] = value
}

// Remove deletes a field, reporting whether it was present.
func (e *Entry) Remove(name string) bool {
	name = strings.ToLower(name)
	if _, ok := e.fields[name]; !ok {
		return false
	}
	delete(e.fields, name)
	for i, n := range e.order {
		if n == name {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	return true
}

// FieldNames returns the field names in serialization order.
func (e *Entry) FieldNames() []string {
	names := make([]string, len(e.order))
	copy(names, e.order)
	return names
}

// Clone returns a deep copy of the entry.
func (e *Entry) Clone() *Entry {
	c := &Entry{
		Type:   e.Type,
		Key:    e.Key,
		fields: make(map[string]string, len(e.fields)),
		order:  make([]string, len(e.order)),
	}
	for k, v := range e.fields {
		c.fields[k] = v
	}
	copy(c.order, e.order)
	return c
}

// SortFields reorders the fields alphabetically. Parsing loses the
// source order, so entries are sorted once at load time to keep output
// deterministic.
func (e *Entry) SortFields() {
	sort.Strings(e.order)
}

// NormalizeDOI normalizes a DOI for comparison. Removes common prefixes
// like "https://doi.org/" and lowercases.
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	doi = strings.TrimPrefix(doi, "https://doi.org/")
	doi = strings.TrimPrefix(doi, "http://doi.org/")
	doi = strings.TrimPrefix(doi, "doi.org/")
	doi = strings.TrimPrefix(doi, "DOI:")
	doi = strings.TrimPrefix(doi, "doi:")
	return strings.ToLower(doi)
}
