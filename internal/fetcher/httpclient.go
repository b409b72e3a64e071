package fetcher

import (
	"time"

	"resty.dev/v3"
)

const userAgent = "econdash/1.0"

// NewHTTPClient creates a JSON client for a provider base URL. A zero timeout
// leaves the library default in place. Requests are never retried.
func NewHTTPClient(baseURL string, timeout time.Duration) *resty.Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", userAgent)

	if timeout > 0 {
		client.SetTimeout(timeout)
	}

	return client
}
