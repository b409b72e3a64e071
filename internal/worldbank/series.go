package worldbank

import (
	"context"
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"resty.dev/v3"

	"econdash/internal/fetcher"
	"econdash/internal/indicator"
	"econdash/internal/ratelimit"
	"econdash/internal/series"
)

const (
	// DefaultBaseURL is the World Bank indicators API root
	DefaultBaseURL = "https://api.worldbank.org/v2"
	// DefaultPerPage covers the full annual history of an indicator in one page
	DefaultPerPage = 200

	seriesPath = "/country/{country}/indicator/{indicator}"
)

// Config holds the settings for a SeriesFetcher.
type Config struct {
	BaseURL string
	PerPage int
	Timeout time.Duration
	Limiter *ratelimit.Limiter
}

// SeriesFetcher pulls one page of an indicator series from the World Bank API.
type SeriesFetcher struct {
	client  *resty.Client
	perPage int
	limiter *ratelimit.Limiter
	log     zerolog.Logger
}

var _ fetcher.SeriesFetcher = (*SeriesFetcher)(nil)

// New creates a SeriesFetcher. Zero config fields take the package defaults.
func New(cfg Config, log zerolog.Logger) *SeriesFetcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.PerPage <= 0 {
		cfg.PerPage = DefaultPerPage
	}

	return &SeriesFetcher{
		client:  fetcher.NewHTTPClient(cfg.BaseURL, cfg.Timeout),
		perPage: cfg.PerPage,
		limiter: cfg.Limiter,
		log:     log.With().Str("component", "worldbank").Logger(),
	}
}

// Close releases the underlying HTTP client.
func (f *SeriesFetcher) Close() error {
	return f.client.Close()
}

// Fetch retrieves an indicator series for a country. Failures are logged
// and yield an empty table.
func (f *SeriesFetcher) Fetch(ctx context.Context, country string, ind indicator.Indicator) series.Table {
	return f.FetchResult(ctx, country, ind).Table
}

// FetchResult retrieves an indicator series and reports why it is empty, if it is.
func (f *SeriesFetcher) FetchResult(ctx context.Context, country string, ind indicator.Indicator) fetcher.Result {
	log := f.log.With().
		Str("country", country).
		Str("indicator", ind.Name).
		Str("code", ind.Code).
		Logger()

	fail := func(err *fetcher.FetchError) fetcher.Result {
		return fetcher.Result{Indicator: ind, Err: err}
	}

	if err := f.limiter.Wait(ctx, ratelimit.APIWorldBank); err != nil {
		fe := transportError(ctx, err)
		log.Error().Err(fe).Msg("rate limiter wait aborted")
		return fail(fe)
	}

	var body page
	resp, err := f.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"country":   country,
			"indicator": ind.Code,
		}).
		SetQueryParams(map[string]string{
			"format":   "json",
			"per_page": strconv.Itoa(f.perPage),
		}).
		SetResult(&body).
		Get(seriesPath)

	if err != nil {
		if resp != nil && resp.IsSuccess() && !interrupted(ctx, err) {
			fe := fetcher.NewMalformedError("unexpected response structure", err)
			log.Error().Err(fe).Msg("error decoding series")
			return fail(fe)
		}
		fe := transportError(ctx, err)
		log.Error().Err(fe).Msg("error fetching series")
		return fail(fe)
	}

	if !resp.IsSuccess() {
		fe := fetcher.ClassifyHTTPError(resp.StatusCode())
		log.Warn().Int("status", resp.StatusCode()).Msg("error fetching series")
		return fail(fe)
	}

	if msg := body.shapeError(); msg != "" {
		fe := fetcher.NewMalformedError(msg, nil)
		log.Error().Err(fe).Msg("unexpected response structure")
		return fail(fe)
	}

	if pages := body.meta.pages(); pages > 1 {
		log.Debug().Int("pages", pages).Int("per_page", f.perPage).Msg("only the first page is used")
	}

	return fetcher.Result{Indicator: ind, Table: f.normalize(body.points, ind, log)}
}

// normalize turns provider points into table rows, skipping points without a
// usable year or value.
func (f *SeriesFetcher) normalize(points []dataPoint, ind indicator.Indicator, log zerolog.Logger) series.Table {
	rows := make([]series.Row, 0, len(points))
	for i, p := range points {
		value, present, err := p.value()
		if !present {
			log.Debug().Int("index", i).RawJSON("date", nonEmpty(p.Date)).Msg("skipping data point without value")
			continue
		}
		if err != nil {
			log.Debug().Int("index", i).Err(err).Msg("skipping invalid data point")
			continue
		}
		year, err := p.year()
		if err != nil {
			log.Debug().Int("index", i).Err(err).Msg("skipping invalid data point")
			continue
		}
		rows = append(rows, series.Row{Indicator: ind.Name, Year: year, Value: value})
	}
	return series.NewTable(rows)
}

// nonEmpty keeps RawJSON fields valid when the provider omitted them.
func nonEmpty(raw []byte) []byte {
	if len(raw) == 0 {
		return []byte("null")
	}
	return raw
}

// interrupted reports whether err came from the request being cut short
// rather than from the body it carried.
func interrupted(ctx context.Context, err error) bool {
	var ne net.Error
	return ctx.Err() != nil ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &ne) && ne.Timeout())
}

func transportError(ctx context.Context, err error) *fetcher.FetchError {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &ne) && ne.Timeout()) {
		return fetcher.NewTimeoutError(err)
	}
	return fetcher.NewNetworkError(err)
}
