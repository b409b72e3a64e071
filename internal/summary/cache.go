package summary

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"econdash/internal/fetcher"
)

// Summarizer produces a CountrySummary for a country code.
type Summarizer interface {
	Summarize(ctx context.Context, country string) *CountrySummary
}

// Cache memoizes summaries per country for as long as the Cache lives.
// Concurrent requests for the same country share one assembly.
type Cache struct {
	next  Summarizer
	group singleflight.Group
	log   zerolog.Logger

	mu      sync.RWMutex
	entries map[string]*CountrySummary
}

// NewCache wraps a Summarizer.
func NewCache(next Summarizer, log zerolog.Logger) *Cache {
	return &Cache{
		next:    next,
		log:     log.With().Str("component", "summary_cache").Logger(),
		entries: make(map[string]*CountrySummary),
	}
}

// errAbandoned marks a load whose caller went away before it finished.
var errAbandoned = errors.New("summary load cancelled")

// Summarize returns the memoized summary or assembles and stores a new one.
// A caller that joined a load abandoned by its leader starts a fresh one.
func (c *Cache) Summarize(ctx context.Context, country string) *CountrySummary {
	for {
		c.mu.RLock()
		s, ok := c.entries[country]
		c.mu.RUnlock()
		if ok {
			return s
		}

		v, err, shared := c.group.Do(country, func() (any, error) {
			s := c.next.Summarize(ctx, country)
			if ctx.Err() != nil {
				return s, errAbandoned
			}
			if unavailable(s) {
				c.log.Warn().Str("country", country).Msg("every indicator failed; summary not cached")
				return s, nil
			}
			c.mu.Lock()
			c.entries[country] = s
			c.mu.Unlock()
			c.log.Debug().Str("country", country).Int("indicators", s.Len()).Msg("summary cached")
			return s, nil
		})

		if err == nil || ctx.Err() != nil {
			if shared {
				c.log.Debug().Str("country", country).Msg("joined in-flight summary")
			}
			return v.(*CountrySummary)
		}
		c.log.Debug().Str("country", country).Msg("in-flight summary was cancelled; loading again")
	}
}

// unavailable reports whether s has no data and every indicator failed in a
// way a later request may not repeat.
func unavailable(s *CountrySummary) bool {
	if s.Len() > 0 || len(s.Missing) == 0 {
		return false
	}
	for _, err := range s.Missing {
		if !fetcher.IsRetryable(err) {
			return false
		}
	}
	return true
}
