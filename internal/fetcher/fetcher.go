package fetcher

import (
	"context"

	"econdash/internal/indicator"
	"econdash/internal/series"
)

// SeriesFetcher retrieves one indicator's history for one country.
//
// Implementations never return an error to the caller: every failure is
// logged and reported as an empty table. FetchResult additionally exposes
// why the table is empty.
type SeriesFetcher interface {
	// Fetch returns the indicator's rows sorted by year. The table is empty
	// when the provider had no usable points or the request failed.
	Fetch(ctx context.Context, country string, ind indicator.Indicator) series.Table

	// FetchResult is Fetch plus the failure reason, if any.
	FetchResult(ctx context.Context, country string, ind indicator.Indicator) Result
}
