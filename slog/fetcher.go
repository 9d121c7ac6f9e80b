// Package slog provides logging decorators for the pipeline's
// network-bound collaborators.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/waypointhq/waypoint"
)

// Ensure LoggingPageFetcher implements waypoint.PageFetcher.
var _ waypoint.PageFetcher = (*LoggingPageFetcher)(nil)

// LoggingPageFetcher wraps a PageFetcher with fetch logging.
type LoggingPageFetcher struct {
	next   waypoint.PageFetcher
	logger *slog.Logger
}

// NewLoggingPageFetcher creates a new LoggingPageFetcher.
func NewLoggingPageFetcher(next waypoint.PageFetcher, logger *slog.Logger) *LoggingPageFetcher {
	return &LoggingPageFetcher{next: next, logger: logger}
}

// FetchPage delegates to the wrapped fetcher and logs the operation.
func (f *LoggingPageFetcher) FetchPage(ctx context.Context, url string) (result *waypoint.RawFetchResult, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"url", url,
			"duration", time.Since(begin),
			"err", err,
		}
		if result != nil {
			attrs = append(attrs, "method", result.Method, "bytes", len(result.HTML))
		}
		f.logger.Info("fetch", attrs...)
	}(time.Now())
	return f.next.FetchPage(ctx, url)
}
