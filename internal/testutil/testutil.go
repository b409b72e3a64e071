package testutil

import (
	"context"
	"sync"

	"econdash/internal/fetcher"
	"econdash/internal/indicator"
	"econdash/internal/series"
)

// MockFetcher is a mock implementation of the SeriesFetcher interface for testing
type MockFetcher struct {
	FetchFunc func(ctx context.Context, country string, ind indicator.Indicator) fetcher.Result

	mu    sync.Mutex
	calls []string
}

// Fetch implements the SeriesFetcher interface
func (m *MockFetcher) Fetch(ctx context.Context, country string, ind indicator.Indicator) series.Table {
	return m.FetchResult(ctx, country, ind).Table
}

// FetchResult implements the SeriesFetcher interface
func (m *MockFetcher) FetchResult(ctx context.Context, country string, ind indicator.Indicator) fetcher.Result {
	m.mu.Lock()
	m.calls = append(m.calls, country+"/"+ind.Code)
	m.mu.Unlock()

	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, country, ind)
	}
	return fetcher.Result{Indicator: ind}
}

// Calls returns "country/code" for every request seen so far
func (m *MockFetcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// NewMockFetcher serves canned points per indicator code. Codes missing from
// points produce an empty result; codes in errs fail with that error.
func NewMockFetcher(points map[string][]series.Point, errs map[string]error) *MockFetcher {
	return &MockFetcher{
		FetchFunc: func(ctx context.Context, country string, ind indicator.Indicator) fetcher.Result {
			if err, ok := errs[ind.Code]; ok {
				return fetcher.Result{Indicator: ind, Err: err}
			}
			return fetcher.Result{Indicator: ind, Table: Table(ind.Name, points[ind.Code]...)}
		},
	}
}

// Table builds a table for one indicator from points
func Table(name string, points ...series.Point) series.Table {
	rows := make([]series.Row, 0, len(points))
	for _, p := range points {
		rows = append(rows, series.Row{Indicator: name, Year: p.Year, Value: p.Value})
	}
	return series.NewTable(rows)
}
