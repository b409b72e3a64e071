package summary

import (
	"econdash/internal/indicator"
	"econdash/internal/series"
)

// CountrySummary holds one table per tracked indicator that returned data.
type CountrySummary struct {
	Country string

	// Tables maps indicator display name to a non-empty table.
	Tables map[string]series.Table

	// Missing maps indicator display name to the fetch error that left it
	// empty. A nil error means the provider simply had no usable points.
	Missing map[string]error

	order []indicator.Indicator
}

func newCountrySummary(country string, order []indicator.Indicator) *CountrySummary {
	return &CountrySummary{
		Country: country,
		Tables:  make(map[string]series.Table, len(order)),
		Missing: make(map[string]error),
		order:   order,
	}
}

// Get returns an indicator's table. Absent and empty indicators both report false.
func (s *CountrySummary) Get(name string) (series.Table, bool) {
	t, ok := s.Tables[name]
	if !ok || t.Empty() {
		return series.Table{}, false
	}
	return t, true
}

// Len is the number of indicators with data.
func (s *CountrySummary) Len() int {
	n := 0
	for _, t := range s.Tables {
		if !t.Empty() {
			n++
		}
	}
	return n
}

// Indicators returns the configured indicators in order, with or without data.
func (s *CountrySummary) Indicators() []indicator.Indicator {
	return append([]indicator.Indicator(nil), s.order...)
}

// Tidy concatenates every table into one sorted by indicator then year.
func (s *CountrySummary) Tidy() series.Table {
	tables := make([]series.Table, 0, len(s.Tables))
	for _, t := range s.Tables {
		tables = append(tables, t)
	}
	return series.Concat(tables...)
}

// Latest returns the most recent value of each indicator within [from, to].
func (s *CountrySummary) Latest(from, to int) []series.Row {
	return s.Tidy().Filter(from, to).Latest()
}

// YearRange spans every indicator's data.
func (s *CountrySummary) YearRange() (minYear, maxYear int, ok bool) {
	return s.Tidy().YearRange()
}
