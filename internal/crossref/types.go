package crossref

// worksResponse is the envelope returned by the Crossref works endpoint.
type worksResponse struct {
	Status  string `json:"status"`
	Message struct {
		TotalResults int    `json:"total-results"`
		Items        []Work `json:"items"`
	} `json:"message"`
}

// Work is a single Crossref work record, limited to the fields this
// tool consumes.
type Work struct {
	DOI             string       `json:"DOI"`
	Title           []string     `json:"title"`
	Author          []WorkAuthor `json:"author"`
	ContainerTitle  []string     `json:"container-title"`
	Volume          string       `json:"volume"`
	Issue           string       `json:"issue"`
	Page            string       `json:"page"`
	PublishedPrint  DateParts    `json:"published-print"`
	PublishedOnline DateParts    `json:"published-online"`
	Created         DateParts    `json:"created"`
	Publisher       string       `json:"publisher"`
	Event           WorkEvent    `json:"event"`
	Type            string       `json:"type"`
	URL             string       `json:"URL"`
}

// WorkAuthor is a Crossref author record.
type WorkAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

// WorkEvent carries conference metadata for proceedings papers.
type WorkEvent struct {
	Name string `json:"name"`
}

// DateParts is Crossref's nested date representation:
// {"date-parts": [[2020, 3, 14]]}.
type DateParts struct {
	DateParts [][]int `json:"date-parts"`
}

// Year returns the year component, or 0 if absent.
func (d DateParts) Year() int {
	if len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 {
		return 0
	}
	return d.DateParts[0][0]
}

// Candidate is one registry search result, flattened into the local
// field vocabulary. Candidates are transient: constructed per query and
// discarded once the ranker picks a winner.
type Candidate struct {
	DOI       string
	Title     string
	Authors   []string // "Given Family" display form
	Journal   string
	Volume    string
	Number    string
	Pages     string
	Year      int
	Publisher string
	BookTitle string // conference/event name for proceedings
	URL       string
	Type      string // mapped BibTeX entry type, "" if unmapped
}
