package ratelimit

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// API names an upstream provider that gets its own request budget
type API string

const (
	// APIWorldBank represents the World Bank indicators API
	APIWorldBank API = "worldbank"
)

// Limiter manages request rates for different providers.
// Providers without a configured limit are not throttled.
type Limiter struct {
	limiters map[API]*rate.Limiter
	mu       sync.RWMutex
}

// New returns a Limiter with no limits configured
func New() *Limiter {
	return &Limiter{
		limiters: make(map[API]*rate.Limiter),
	}
}

// Set configures requests per second and burst for an API.
// A non-positive rps removes any limit.
func (l *Limiter) Set(api API, rps float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if rps <= 0 {
		delete(l.limiters, api)
		return
	}
	if burst < 1 {
		burst = 1
	}
	l.limiters[api] = rate.NewLimiter(rate.Limit(rps), burst)
}

// Wait blocks until the rate limiter permits an event for the given API
// It returns an error if the context is canceled before the event can proceed,
// or one wrapping context.DeadlineExceeded if the deadline would pass first
func (l *Limiter) Wait(ctx context.Context, api API) error {
	if l == nil {
		return ctx.Err()
	}

	l.mu.RLock()
	limiter, exists := l.limiters[api]
	l.mu.RUnlock()

	if !exists {
		return ctx.Err()
	}

	if err := limiter.Wait(ctx); err != nil {
		if ctx.Err() == nil {
			// the wait would outlast the context deadline
			return fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
		}
		return err
	}
	return nil
}
