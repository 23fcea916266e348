// Package textutil normalizes free-text bibliographic field values.
package textutil

import "strings"

// Normalize strips BibTeX brace delimiters and collapses runs of
// whitespace to single spaces. Field comparisons should always go
// through Normalize so that markup differences don't register as
// content changes.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "{", "")
	s = strings.ReplaceAll(s, "}", "")
	return CollapseWhitespace(s)
}

// CollapseWhitespace replaces runs of whitespace (including newlines
// from wrapped .bib fields) with single spaces and trims the result.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Brace wraps a value in a brace group, which tells BibTeX to preserve
// its casing when rendering.
func Brace(s string) string {
	return "{" + s + "}"
}
