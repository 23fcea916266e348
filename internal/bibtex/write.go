package bibtex

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// String renders the entry in BibTeX format with two-space indentation:
//
//	@article{key,
//	  author = {Smith, J.},
//	  title = {{Deep Learning}}
//	}
//
// Values are written inside a brace group as-is; a value that already
// carries its own braces (case-preserving titles) keeps them.
func (e *Entry) String() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("@%s{%s", e.Type, e.Key))
	for _, name := range e.order {
		b.WriteString(fmt.Sprintf(",\n  %s = {%s}", name, e.fields[name]))
	}
	b.WriteString("\n}\n")

	return b.String()
}

// Write serializes entries to w, separated by blank lines.
func Write(w io.Writer, entries []*Entry) error {
	for i, e := range entries {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, e.String()); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile serializes entries to a file, replacing any existing content.
func WriteFile(path string, entries []*Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	if err := Write(f, entries); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return f.Close()
}
