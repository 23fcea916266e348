// Package merge applies a matched candidate's field mapping onto a
// bibliography entry.
package merge

import (
	"github.com/bibtools/bibfix/internal/bibtex"
	"github.com/bibtools/bibfix/internal/textutil"
)

// recognizedFields are the registry fields merged into entries, in
// reporting order.
var recognizedFields = []string{
	"title",
	"journal",
	"volume",
	"number",
	"pages",
	"year",
	"publisher",
	"booktitle",
	"url",
}

// Apply merges a field mapping onto an entry and returns the updated
// copy plus the names of the fields that changed. The input entry is
// never mutated. A field is overwritten only when the incoming value
// differs from the current one after normalization, so applying the
// same mapping twice is a no-op. Titles are stored in braced form to
// preserve casing in BibTeX output and compared raw, so an unbraced
// local title counts as a change even when the text matches. A
// non-empty entryType that differs from the entry's current type
// replaces it, reported as "type".
func Apply(e *bibtex.Entry, fields map[string]string, entryType string) (*bibtex.Entry, []string) {
	out := e.Clone()
	var changed []string

	for _, name := range recognizedFields {
		value, ok := fields[name]
		if !ok || value == "" {
			continue
		}
		if name == "title" {
			// Titles are always rewritten in braced form so BibTeX
			// preserves the registry's casing, even when the text
			// already matches.
			value = textutil.Brace(textutil.Normalize(value))
			if value == out.Get(name) {
				continue
			}
		} else if textutil.Normalize(value) == out.Normalized(name) {
			continue
		}
		out.Set(name, value)
		changed = append(changed, name)
	}

	if entryType != "" && entryType != out.Type {
		out.Type = entryType
		changed = append(changed, "type")
	}

	return out, changed
}
