package mock

import (
	"context"

	"github.com/waypointhq/waypoint"
)

var _ waypoint.Searcher = (*Searcher)(nil)

// Searcher is a mock implementation of waypoint.Searcher.
type Searcher struct {
	SearchFn func(ctx context.Context, query string) (*waypoint.SearchAnswer, error)
}

func (s *Searcher) Search(ctx context.Context, query string) (*waypoint.SearchAnswer, error) {
	return s.SearchFn(ctx, query)
}

var _ waypoint.RecordStore = (*RecordStore)(nil)

// RecordStore is a mock implementation of waypoint.RecordStore.
type RecordStore struct {
	SaveRecordFn func(ctx context.Context, record *waypoint.Record) error
}

func (s *RecordStore) SaveRecord(ctx context.Context, record *waypoint.Record) error {
	return s.SaveRecordFn(ctx, record)
}
