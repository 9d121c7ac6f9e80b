// Package rod provides a headless-browser implementation of
// waypoint.Fetcher for JavaScript-heavy pages.
package rod

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/waypointhq/waypoint"
)

// DefaultRenderDelay is the fixed wait after page load before the DOM
// is extracted, giving client-side frameworks time to hydrate.
const DefaultRenderDelay = 2 * time.Second

// Ensure Fetcher implements waypoint.Fetcher at compile time.
var _ waypoint.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML from URLs using Chrome browser
// automation. Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	browser *rod.Browser

	mu          sync.RWMutex
	renderDelay time.Duration
}

// NewFetcher creates a new Fetcher that launches a headless Chrome
// browser. Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher() (*Fetcher, error) {
	// Launch browser using rod's launcher (finds or downloads Chrome)
	l := launcher.New().Headless(true)
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill() // Clean up launched process on connection failure
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}

	return &Fetcher{browser: browser, renderDelay: DefaultRenderDelay}, nil
}

// SetRenderDelay adjusts the post-load wait before DOM extraction.
func (f *Fetcher) SetRenderDelay(d time.Duration) {
	f.mu.Lock()
	f.renderDelay = d
	f.mu.Unlock()
}

// Fetch navigates to the URL, waits for the page to render, and returns
// the DOM HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	// Check context before starting
	if err := ctx.Err(); err != nil {
		return "", err
	}

	page, err := f.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer page.Close()

	// Set context for all subsequent operations
	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return "", err
	}

	if err := page.WaitLoad(); err != nil {
		return "", err
	}

	f.mu.RLock()
	delay := f.renderDelay
	f.mu.RUnlock()
	if delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}

	html, err := page.HTML()
	if err != nil {
		return "", err
	}

	return html, nil
}

// Close releases browser resources.
func (f *Fetcher) Close() error {
	return f.browser.Close()
}
