package mock

import (
	"context"

	"github.com/waypointhq/waypoint"
)

var _ waypoint.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of waypoint.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	if f.CloseFn == nil {
		return nil
	}
	return f.CloseFn()
}

var _ waypoint.PageFetcher = (*PageFetcher)(nil)

// PageFetcher is a mock implementation of waypoint.PageFetcher.
type PageFetcher struct {
	FetchPageFn func(ctx context.Context, url string) (*waypoint.RawFetchResult, error)
}

func (f *PageFetcher) FetchPage(ctx context.Context, url string) (*waypoint.RawFetchResult, error) {
	return f.FetchPageFn(ctx, url)
}

var _ waypoint.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of waypoint.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	if l.WaitFn == nil {
		return nil
	}
	return l.WaitFn(ctx, domain)
}
