package crossref

import (
	"strconv"
	"strings"

	"github.com/bibtools/bibfix/internal/author"
)

// entryTypes maps Crossref work types onto the BibTeX entry-type
// vocabulary. Unlisted types leave the local entry type untouched.
var entryTypes = map[string]string{
	"journal-article":     "article",
	"proceedings-article": "inproceedings",
	"book":                "book",
	"edited-book":         "book",
	"monograph":           "book",
	"reference-book":      "book",
	"book-chapter":        "inbook",
	"book-section":        "inbook",
	"report":              "techreport",
	"dissertation":        "phdthesis",
	"posted-content":      "misc",
	"dataset":             "misc",
}

// mapWork flattens a Crossref work into a Candidate.
func mapWork(w Work) Candidate {
	c := Candidate{
		DOI:       w.DOI,
		Volume:    w.Volume,
		Number:    w.Issue,
		Pages:     w.Page,
		Publisher: w.Publisher,
		BookTitle: w.Event.Name,
		URL:       w.URL,
		Type:      entryTypes[w.Type],
	}

	if len(w.Title) > 0 {
		c.Title = w.Title[0]
	}
	if len(w.ContainerTitle) > 0 {
		c.Journal = w.ContainerTitle[0]
	}

	c.Authors = make([]string, 0, len(w.Author))
	for _, a := range w.Author {
		n := author.Name{
			First: strings.TrimSpace(a.Given),
			Last:  strings.TrimSpace(a.Family),
		}
		if full := n.Full(); full != "" {
			c.Authors = append(c.Authors, full)
		}
	}

	// Date sources in priority order: print, online, created.
	for _, d := range []DateParts{w.PublishedPrint, w.PublishedOnline, w.Created} {
		if y := d.Year(); y != 0 {
			c.Year = y
			break
		}
	}

	return c
}

// Fields returns the candidate's metadata as a field mapping in the
// local vocabulary, omitting empty values. The DOI and entry type are
// not part of the mapping; callers handle those separately.
func (c Candidate) Fields() map[string]string {
	fields := make(map[string]string)

	set := func(name, value string) {
		if value != "" {
			fields[name] = value
		}
	}

	set("title", c.Title)
	set("journal", c.Journal)
	set("volume", c.Volume)
	set("number", c.Number)
	set("pages", c.Pages)
	set("publisher", c.Publisher)
	set("booktitle", c.BookTitle)
	set("url", c.URL)
	if c.Year != 0 {
		fields["year"] = strconv.Itoa(c.Year)
	}

	return fields
}
