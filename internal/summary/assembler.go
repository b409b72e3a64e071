package summary

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"econdash/internal/fetcher"
	"econdash/internal/indicator"
)

// Assembler builds a CountrySummary by fetching every tracked indicator.
type Assembler struct {
	fetcher    fetcher.SeriesFetcher
	indicators []indicator.Indicator
	log        zerolog.Logger
}

// New creates an Assembler over the tracked indicator set.
func New(f fetcher.SeriesFetcher, log zerolog.Logger) *Assembler {
	return &Assembler{
		fetcher:    f,
		indicators: indicator.Tracked(),
		log:        log.With().Str("component", "summary").Logger(),
	}
}

// Summarize fetches each indicator concurrently and collects the non-empty
// tables. An indicator that yields no rows is left out of Tables and its
// reason recorded in Missing; it never affects the others.
func (a *Assembler) Summarize(ctx context.Context, country string) *CountrySummary {
	resultChan := make(chan fetcher.Result, len(a.indicators))

	var wg sync.WaitGroup
	for _, ind := range a.indicators {
		wg.Add(1)
		go func(ind indicator.Indicator) {
			defer wg.Done()
			resultChan <- a.fetcher.FetchResult(ctx, country, ind)
		}(ind)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	s := newCountrySummary(country, a.indicators)
	for result := range resultChan {
		if result.Empty() {
			a.log.Warn().
				Str("country", country).
				Str("indicator", result.Indicator.Name).
				AnErr("reason", result.Err).
				Msg("no data fetched")
			s.Missing[result.Indicator.Name] = result.Err
			continue
		}
		s.Tables[result.Indicator.Name] = result.Table
	}

	return s
}
