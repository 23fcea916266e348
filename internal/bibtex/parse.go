package bibtex

import (
	"fmt"
	"io"
	"os"

	nickng "github.com/nickng/bibtex"
)

// Parse reads a BibTeX document and returns its entries. Field order
// within each entry is normalized alphabetically since the underlying
// parser does not preserve source order.
func Parse(r io.Reader) ([]*Entry, error) {
	bib, err := nickng.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing bibtex: %w", err)
	}

	entries := make([]*Entry, 0, len(bib.Entries))
	for _, be := range bib.Entries {
		e := NewEntry(be.Type, be.CiteName)
		for name, value := range be.Fields {
			e.Set(name, value.String())
		}
		e.SortFields()
		entries = append(entries, e)
	}

	return entries, nil
}

// ParseFile reads a BibTeX file from disk.
func ParseFile(path string) ([]*Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	entries, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}
