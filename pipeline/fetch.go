package pipeline

import (
	"context"
	"net/url"
	"strings"

	"github.com/waypointhq/waypoint"
)

var _ waypoint.PageFetcher = (*StrategyFetcher)(nil)

// StrategyFetcher selects the cheapest retrieval tier capable of
// fetching a URL.
//
// Decision order:
//   - Host flagged anti-bot-protected and a bypass fetcher configured →
//     bypass service.
//   - Host flagged JavaScript-heavy → headless browser rendering.
//   - Otherwise lightweight HTTP first, falling back to the browser on
//     failure. This is the only fallback; extraction retries belong to
//     the orchestrator.
//
// The per-host limiter is consulted before every outbound request,
// including the fallback.
type StrategyFetcher struct {
	http    waypoint.Fetcher
	browser waypoint.Fetcher
	bypass  waypoint.Fetcher
	parser  waypoint.PageParser
	limiter waypoint.DomainLimiter

	bypassHosts map[string]bool
	jsHosts     map[string]bool
}

// StrategyOption configures a StrategyFetcher.
type StrategyOption func(*StrategyFetcher)

// WithBypass configures the anti-bot bypass fetcher and the hosts that
// require it.
func WithBypass(fetcher waypoint.Fetcher, hosts ...string) StrategyOption {
	return func(f *StrategyFetcher) {
		f.bypass = fetcher
		for _, h := range hosts {
			f.bypassHosts[normalizeHost(h)] = true
		}
	}
}

// WithJSHosts flags hosts that require browser rendering up front.
func WithJSHosts(hosts ...string) StrategyOption {
	return func(f *StrategyFetcher) {
		for _, h := range hosts {
			f.jsHosts[normalizeHost(h)] = true
		}
	}
}

// NewStrategyFetcher creates a new StrategyFetcher.
func NewStrategyFetcher(httpFetcher, browserFetcher waypoint.Fetcher, parser waypoint.PageParser, limiter waypoint.DomainLimiter, opts ...StrategyOption) *StrategyFetcher {
	f := &StrategyFetcher{
		http:        httpFetcher,
		browser:     browserFetcher,
		parser:      parser,
		limiter:     limiter,
		bypassHosts: make(map[string]bool),
		jsHosts:     make(map[string]bool),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchPage retrieves a URL through the selected tier and derives the
// page metadata. Fails with a coded error on an invalid URL, a timeout,
// or when the fallback is exhausted.
func (f *StrategyFetcher) FetchPage(ctx context.Context, pageURL string) (*waypoint.RawFetchResult, error) {
	host, err := hostOf(pageURL)
	if err != nil {
		return nil, err
	}

	html, method, err := f.fetchHTML(ctx, pageURL, host)
	if err != nil {
		return nil, err
	}

	result := &waypoint.RawFetchResult{
		HTML:    html,
		Method:  method,
		Success: true,
	}
	if f.parser != nil {
		// Metadata derivation is best effort; the raw HTML is what
		// downstream stages depend on.
		if info, perr := f.parser.ParsePage(html, pageURL); perr == nil {
			result.Title = info.Title
			result.Text = info.Text
			result.ImageURLs = info.ImageURLs
		}
	}
	return result, nil
}

// Close releases all underlying fetchers.
func (f *StrategyFetcher) Close() error {
	var firstErr error
	for _, fetcher := range []waypoint.Fetcher{f.http, f.browser, f.bypass} {
		if fetcher == nil {
			continue
		}
		if err := fetcher.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f *StrategyFetcher) fetchHTML(ctx context.Context, pageURL, host string) (string, waypoint.FetchMethod, error) {
	if f.bypass != nil && f.bypassHosts[host] {
		html, err := f.fetchVia(ctx, f.bypass, pageURL, host)
		return html, waypoint.FetchBypass, err
	}

	if f.jsHosts[host] {
		html, err := f.fetchVia(ctx, f.browser, pageURL, host)
		return html, waypoint.FetchBrowser, err
	}

	html, err := f.fetchVia(ctx, f.http, pageURL, host)
	if err == nil {
		return html, waypoint.FetchHTTP, nil
	}
	if f.browser == nil {
		return "", "", err
	}

	html, err = f.fetchVia(ctx, f.browser, pageURL, host)
	if err != nil {
		return "", "", err
	}
	return html, waypoint.FetchBrowser, nil
}

func (f *StrategyFetcher) fetchVia(ctx context.Context, fetcher waypoint.Fetcher, pageURL, host string) (string, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, host); err != nil {
			return "", waypoint.Errorf(waypoint.ETIMEOUT, "rate limit wait for %s: %v", host, err)
		}
	}
	return fetcher.Fetch(ctx, pageURL)
}

// hostOf extracts the normalized host from a URL.
func hostOf(pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", waypoint.Errorf(waypoint.EINVALID, "invalid URL %q", pageURL)
	}
	return normalizeHost(u.Host), nil
}

func normalizeHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}
