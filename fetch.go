package waypoint

import "context"

// FetchMethod identifies which retrieval tier produced a fetch result.
type FetchMethod string

// Fetch methods, in decreasing order of cost.
const (
	FetchBypass   FetchMethod = "bypass"  // anti-bot bypass service
	FetchBrowser  FetchMethod = "browser" // headless browser rendering
	FetchHTTP     FetchMethod = "http"    // lightweight HTTP GET
	FetchProvided FetchMethod = "provided"
)

// MaxImageURLs caps the number of image URLs collected per page.
const MaxImageURLs = 10

// RawFetchResult is the ephemeral outcome of the fetch stage. It exists
// only within a pipeline run and is never persisted.
type RawFetchResult struct {
	HTML      string
	Text      string
	Title     string
	ImageURLs []string
	Method    FetchMethod
	Success   bool
}

// Fetcher retrieves raw HTML from a URL.
// Implementations may use browser automation or a bypass service to
// handle JavaScript-rendered and bot-protected content.
type Fetcher interface {
	// Fetch navigates to the URL and returns the page HTML.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases any resources held by the fetcher.
	Close() error
}

// PageFetcher retrieves a fully derived fetch result for a URL,
// hiding tier selection, fallback, and rate limiting.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (*RawFetchResult, error)
}

// PageInfo holds metadata derived from raw HTML.
type PageInfo struct {
	Title     string
	Text      string
	ImageURLs []string
}

// PageParser derives title, plain text, and image URLs from raw HTML.
// The baseURL is used to resolve relative image references.
type PageParser interface {
	ParsePage(html, baseURL string) (*PageInfo, error)
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
