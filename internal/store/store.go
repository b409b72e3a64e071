package store

import (
	"context"

	"econdash/internal/summary"
)

// Store archives country summaries.
type Store interface {
	SaveSummary(ctx context.Context, s *summary.CountrySummary) error
	Close() error
}

// NopStore discards everything; used when no snapshot database is configured.
type NopStore struct{}

func (s *NopStore) SaveSummary(ctx context.Context, _ *summary.CountrySummary) error {
	return ctx.Err()
}

func (s *NopStore) Close() error {
	return nil
}
