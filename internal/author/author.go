// Package author parses BibTeX author fields into structured names.
package author

import "strings"

// Name represents a parsed author name.
type Name struct {
	First string // First/given name(s) (may be empty)
	Last  string // Last/family name
}

// Parse parses a single author string into a structured Name.
//
// Supported formats:
//   - "Yu"           → last="Yu" (single word = last name only)
//   - "Timothy Yu"   → first="Timothy", last="Yu" (space-separated = First Last)
//   - "Yu, Timothy"  → first="Timothy", last="Yu" (comma = Last, First)
//
// Names are trimmed but case is preserved (matching downstream is
// case-insensitive).
func Parse(input string) Name {
	input = strings.TrimSpace(input)
	if input == "" {
		return Name{}
	}

	// Check for comma format: "Last, First"
	if idx := strings.Index(input, ","); idx > 0 {
		last := strings.TrimSpace(input[:idx])
		first := strings.TrimSpace(input[idx+1:])
		return Name{First: first, Last: last}
	}

	// Check for space format: "First Last"
	parts := strings.Fields(input)
	if len(parts) == 1 {
		// Single word = last name only
		return Name{Last: parts[0]}
	}

	// Multiple words: last word is last name, rest is first name
	// e.g., "Timothy C Yu" → first="Timothy C", last="Yu"
	last := parts[len(parts)-1]
	first := strings.Join(parts[:len(parts)-1], " ")
	return Name{First: first, Last: last}
}

// Full returns the name rendered as "First Last". Either part may be
// empty; the other is returned alone.
func (n Name) Full() string {
	switch {
	case n.First == "":
		return n.Last
	case n.Last == "":
		return n.First
	}
	return n.First + " " + n.Last
}

// SplitList splits a BibTeX author field ("A and B and C") into the
// individual author strings. Empty segments are dropped.
func SplitList(field string) []string {
	var authors []string
	for _, part := range strings.Split(field, " and ") {
		part = strings.TrimSpace(part)
		if part != "" {
			authors = append(authors, part)
		}
	}
	return authors
}

// Surname returns the family name of the given author string, following
// the same format rules as Parse. Returns "" for empty input.
func Surname(input string) string {
	return Parse(input).Last
}
