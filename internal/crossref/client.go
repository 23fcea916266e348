// Package crossref provides a rate-limited client for the Crossref
// works API and mapping of its records onto the local field vocabulary.
package crossref

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	// BaseURL is the Crossref works endpoint.
	BaseURL = "https://api.crossref.org/works"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRows is the default result-count cap per query.
	DefaultRows = 10

	// RateLimit is one request per second, matching Crossref's polite
	// pool guidance for unregistered clients.
	RateLimit = 1.0
)

// Client is a rate-limited HTTP client for the Crossref works API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	mailto     string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithMailto sets the contact address sent in the User-Agent header,
// which puts requests in Crossref's polite pool.
func WithMailto(mailto string) ClientOption {
	return func(c *Client) {
		c.mailto = mailto
	}
}

// WithRateLimit overrides the requests-per-second throttle.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// NewClient creates a new Crossref works API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Query describes a single bibliographic search.
type Query struct {
	// Bibliographic is the free-text query, typically
	// "<first author surname> <title>".
	Bibliographic string

	// Year restricts results to an exact publication year when non-empty.
	Year string

	// Rows caps the number of returned candidates. Zero means DefaultRows.
	Rows int
}

// Search issues one bibliographic query and returns the candidate list
// plus the registry's total result count. The call blocks on the rate
// limiter before hitting the network.
func (c *Client) Search(ctx context.Context, q Query) ([]Candidate, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, fmt.Errorf("rate limiter: %w", err)
	}

	rows := q.Rows
	if rows <= 0 {
		rows = DefaultRows
	}

	params := url.Values{}
	params.Set("query.bibliographic", q.Bibliographic)
	params.Set("rows", strconv.Itoa(rows))
	if q.Year != "" {
		params.Set("filter", fmt.Sprintf("from-pub-date:%s,until-pub-date:%s", q.Year, q.Year))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, 0, fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, 0, &APIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
		}
	}

	var wr worksResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return nil, 0, fmt.Errorf("%w: decoding works response: %v", ErrInvalidResponse, err)
	}

	candidates := make([]Candidate, 0, len(wr.Message.Items))
	for _, w := range wr.Message.Items {
		candidates = append(candidates, mapWork(w))
	}

	return candidates, wr.Message.TotalResults, nil
}

func (c *Client) userAgent() string {
	if c.mailto != "" {
		return fmt.Sprintf("bibfix/1.0 (mailto:%s)", c.mailto)
	}
	return "bibfix/1.0"
}
