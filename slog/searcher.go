package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/waypointhq/waypoint"
)

// Ensure LoggingSearcher implements waypoint.Searcher.
var _ waypoint.Searcher = (*LoggingSearcher)(nil)

// LoggingSearcher wraps a Searcher with search logging.
type LoggingSearcher struct {
	next   waypoint.Searcher
	logger *slog.Logger
}

// NewLoggingSearcher creates a new LoggingSearcher.
func NewLoggingSearcher(next waypoint.Searcher, logger *slog.Logger) *LoggingSearcher {
	return &LoggingSearcher{next: next, logger: logger}
}

// Search delegates to the wrapped searcher and logs the operation.
func (s *LoggingSearcher) Search(ctx context.Context, query string) (answer *waypoint.SearchAnswer, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"query", query,
			"duration", time.Since(begin),
			"err", err,
		}
		if answer != nil {
			attrs = append(attrs, "sources", len(answer.Sources), "tokens", answer.Tokens)
		}
		s.logger.Info("search", attrs...)
	}(time.Now())
	return s.next.Search(ctx, query)
}
