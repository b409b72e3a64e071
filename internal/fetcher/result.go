package fetcher

import (
	"econdash/internal/indicator"
	"econdash/internal/series"
)

// Result is the outcome of one indicator fetch. It is what the assembler's
// workers send back over their results channel.
type Result struct {
	// Indicator identifies which series was requested
	Indicator indicator.Indicator

	// Table holds the rows; empty when the provider had nothing usable
	Table series.Table

	// Err is nil on success or when the provider simply reported no data points.
	// Otherwise it is a *FetchError and Table is empty.
	Err error
}

// Empty reports whether the fetch produced no rows, whatever the reason.
func (r Result) Empty() bool {
	return r.Table.Empty()
}
