// Package firecrawl provides a bypass-service implementation of
// waypoint.Fetcher backed by the Firecrawl scraping API. It is used for
// hosts flagged as anti-bot protected, where plain HTTP and local
// browser rendering are blocked.
package firecrawl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/waypointhq/waypoint"
)

// Default base URL for the Firecrawl API.
const defaultBaseURL = "https://api.firecrawl.dev/v1"

// DefaultWaitFor is the fixed rendering wait requested from the service.
const DefaultWaitFor = 3 * time.Second

// ScrapeRequest is the body for POST /scrape.
type ScrapeRequest struct {
	URL      string    `json:"url"`
	Formats  []string  `json:"formats,omitempty"`
	WaitFor  int       `json:"waitFor,omitempty"` // milliseconds
	Location *Location `json:"location,omitempty"`
}

// Location requests geo-targeted proxying.
type Location struct {
	Country string `json:"country"`
}

// ScrapeResponse is the response from POST /scrape.
type ScrapeResponse struct {
	Success bool     `json:"success"`
	Data    PageData `json:"data"`
}

// PageData is a single page result.
type PageData struct {
	URL        string `json:"url"`
	HTML       string `json:"html"`
	Markdown   string `json:"markdown"`
	Title      string `json:"title"`
	StatusCode int    `json:"statusCode"`
}

// APIError is returned when the service responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("firecrawl: HTTP %d: %s", e.StatusCode, e.Body)
}

// Ensure Fetcher implements waypoint.Fetcher at compile time.
var _ waypoint.Fetcher = (*Fetcher)(nil)

// Fetcher fetches pages through the bypass service with script
// rendering enabled and a fixed rendering wait. A failed scrape is
// retried once inside the call; further retries belong to the caller.
type Fetcher struct {
	apiKey  string
	baseURL string
	country string
	waitFor time.Duration
	http    *http.Client
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(f *Fetcher) {
		f.baseURL = url
	}
}

// WithCountry sets the geo-targeting country code.
func WithCountry(code string) Option {
	return func(f *Fetcher) {
		f.country = code
	}
}

// WithWaitFor sets the rendering wait requested from the service.
func WithWaitFor(d time.Duration) Option {
	return func(f *Fetcher) {
		f.waitFor = d
	}
}

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(f *Fetcher) {
		f.http = hc
	}
}

// NewFetcher creates a new bypass-service Fetcher.
func NewFetcher(apiKey string, opts ...Option) *Fetcher {
	f := &Fetcher{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		waitFor: DefaultWaitFor,
		http: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch scrapes the URL through the bypass service and returns the
// rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req := ScrapeRequest{
		URL:     url,
		Formats: []string{"html"},
		WaitFor: int(f.waitFor.Milliseconds()),
	}
	if f.country != "" {
		req.Location = &Location{Country: f.country}
	}

	resp, err := f.scrape(ctx, req)
	if err != nil {
		// One automatic retry inside the bypass call.
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		resp, err = f.scrape(ctx, req)
	}
	if err != nil {
		return "", waypoint.Errorf(waypoint.EUNAVAILABLE, "bypass fetch %s: %v", url, err)
	}
	if !resp.Success || resp.Data.HTML == "" {
		return "", waypoint.Errorf(waypoint.EUNAVAILABLE, "bypass fetch %s: empty result", url)
	}

	return resp.Data.HTML, nil
}

// Close releases resources. For the bypass fetcher this is a no-op.
func (f *Fetcher) Close() error {
	return nil
}

func (f *Fetcher) scrape(ctx context.Context, req ScrapeRequest) (*ScrapeResponse, error) {
	buf, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+"/scrape", bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+f.apiKey)

	resp, err := f.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	var out ScrapeResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &out, nil
}
