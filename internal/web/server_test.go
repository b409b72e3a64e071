package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"econdash/internal/chart"
	"econdash/internal/fetcher"
	"econdash/internal/indicator"
	"econdash/internal/series"
	"econdash/internal/summary"
	"econdash/internal/testutil"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func newTestServer(t *testing.T) (http.Handler, *testutil.MockFetcher) {
	t.Helper()

	var growth, gdp []series.Point
	for year := 2010; year <= 2022; year++ {
		growth = append(growth, series.Point{Year: year, Value: float64(year - 2005)})
		gdp = append(gdp, series.Point{Year: year, Value: float64(year) * 1e9})
	}
	mock := testutil.NewMockFetcher(
		map[string][]series.Point{
			"NY.GDP.MKTP.KD.ZG": growth,
			"NY.GDP.MKTP.CD":    gdp,
			"SL.UEM.TOTL.ZS":    {{Year: 2021, Value: 7.1}},
		},
		map[string]error{
			"FP.CPI.TOTL.ZG": fetcher.ClassifyHTTPError(http.StatusInternalServerError),
		},
	)

	log := zerolog.Nop()
	srv := NewServer(":0", summary.NewCache(summary.New(mock, log), log), log)
	return srv.Handler(), mock
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealthz(t *testing.T) {
	h, _ := newTestServer(t)

	rec := get(t, h, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestListCountriesAndIndicators(t *testing.T) {
	h, mock := newTestServer(t)

	rec := get(t, h, "/api/countries")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, indicator.Countries(), decode[[]indicator.Country](t, rec))

	rec = get(t, h, "/api/indicators")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, indicator.Tracked(), decode[[]indicator.Indicator](t, rec))

	assert.Empty(t, mock.Calls(), "static listings must not hit the provider")
}

func TestGetSummary(t *testing.T) {
	h, mock := newTestServer(t)

	rec := get(t, h, "/api/countries/India/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	resp := decode[summaryResponse](t, rec)
	assert.Equal(t, "IND", resp.Country)

	var names []string
	for _, o := range resp.Indicators {
		names = append(names, o.Indicator.Name)
	}
	assert.Equal(t, []string{indicator.GDPGrowth, indicator.Unemployment, indicator.GDP}, names)

	growth := resp.Indicators[0]
	assert.Equal(t, 2012, growth.From)
	assert.Equal(t, 2022, growth.To)
	assert.Len(t, growth.Points, 11)
	require.NotNil(t, growth.Mean)
	assert.InDelta(t, 12.0, *growth.Mean, 1e-9)
	assert.Equal(t, chart.DefaultWindow, growth.Window)
	assert.Len(t, growth.Rolling, 11)
	require.NotNil(t, growth.Latest)
	assert.Equal(t, 2022, growth.Latest.Year)

	unemployment := resp.Indicators[1]
	assert.Equal(t, 2021, unemployment.From)
	assert.Equal(t, 2021, unemployment.To)
	assert.Len(t, unemployment.Points, 1)

	assert.Len(t, resp.Missing, 1)
	assert.Contains(t, resp.Missing[indicator.Inflation], "status 500")

	// the second request is served from the cache
	calls := len(mock.Calls())
	get(t, h, "/api/countries/ind/summary")
	assert.Len(t, mock.Calls(), calls)
}

func TestGetSummary_Options(t *testing.T) {
	h, _ := newTestServer(t)

	rec := get(t, h, "/api/countries/IND/summary?from=2020&to=2022&mean=false&window=0")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[summaryResponse](t, rec)
	require.Len(t, resp.Indicators, 3)
	for _, o := range resp.Indicators {
		assert.Equal(t, 2020, o.From)
		assert.Equal(t, 2022, o.To)
		assert.Nil(t, o.Mean)
		assert.Empty(t, o.Rolling)
	}

	// a lone lower bound runs to the last year of each series
	rec = get(t, h, "/api/countries/IND/summary?from=2016")
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[summaryResponse](t, rec)
	for _, o := range resp.Indicators {
		assert.Equal(t, 2016, o.From)
	}

	rec = get(t, h, "/api/countries/IND/summary?from=2010&to=2015")
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[summaryResponse](t, rec)
	assert.Len(t, resp.Indicators, 2)
	assert.Equal(t, "no data in range", resp.Missing[indicator.Unemployment])
}

func TestGetLatest(t *testing.T) {
	h, _ := newTestServer(t)

	rec := get(t, h, "/api/countries/IND/latest")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[latestResponse](t, rec)
	assert.Equal(t, 2012, resp.From)
	assert.Equal(t, 2022, resp.To)
	assert.ElementsMatch(t, []series.Row{
		{Indicator: indicator.GDP, Year: 2022, Value: 2022e9},
		{Indicator: indicator.GDPGrowth, Year: 2022, Value: 17},
		{Indicator: indicator.Unemployment, Year: 2021, Value: 7.1},
	}, resp.Rows)

	rec = get(t, h, "/api/countries/IND/latest?to=2015")
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[latestResponse](t, rec)
	assert.Len(t, resp.Rows, 2)
	for _, row := range resp.Rows {
		assert.Equal(t, 2015, row.Year)
	}
}

func TestGetLatest_DefaultsToLastDecade(t *testing.T) {
	var gdp []series.Point
	for year := 2000; year <= 2022; year++ {
		gdp = append(gdp, series.Point{Year: year, Value: float64(year)})
	}
	mock := testutil.NewMockFetcher(map[string][]series.Point{
		"NY.GDP.MKTP.CD": gdp,
		"SL.UEM.TOTL.ZS": {{Year: 2004, Value: 9.2}, {Year: 2005, Value: 8.8}},
	}, nil)
	h := NewServer(":0", summary.New(mock, zerolog.Nop()), zerolog.Nop()).Handler()

	rec := get(t, h, "/api/countries/IND/latest")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[latestResponse](t, rec)
	assert.Equal(t, 2012, resp.From)
	assert.Equal(t, 2022, resp.To)
	assert.Equal(t, []series.Row{{Indicator: indicator.GDP, Year: 2022, Value: 2022}}, resp.Rows)

	rec = get(t, h, "/api/countries/IND/latest?to=2010")
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[latestResponse](t, rec)
	assert.Equal(t, 2000, resp.From)
	assert.ElementsMatch(t, []series.Row{
		{Indicator: indicator.GDP, Year: 2010, Value: 2010},
		{Indicator: indicator.Unemployment, Year: 2005, Value: 8.8},
	}, resp.Rows)
}

func TestGetLatest_NoData(t *testing.T) {
	mock := &testutil.MockFetcher{}
	h := NewServer(":0", summary.New(mock, zerolog.Nop()), zerolog.Nop()).Handler()

	rec := get(t, h, "/api/countries/RUS/latest")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Error, "RUS")
}

func TestGetChart(t *testing.T) {
	h, _ := newTestServer(t)

	for _, target := range []string{
		"/api/countries/IND/charts/NY.GDP.MKTP.KD.ZG",
		"/api/countries/IND/charts/NY.GDP.MKTP.KD.ZG.png?window=3&width=400&height=200",
	} {
		rec := get(t, h, target)
		require.Equal(t, http.StatusOK, rec.Code, target)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), pngMagic), target)
	}
}

func TestErrors(t *testing.T) {
	h, _ := newTestServer(t)

	tests := []struct {
		name   string
		target string
		status int
	}{
		{"unknown country", "/api/countries/Atlantis/summary", http.StatusNotFound},
		{"unknown country chart", "/api/countries/Atlantis/charts/NY.GDP.MKTP.CD", http.StatusNotFound},
		{"bad window", "/api/countries/IND/summary?window=4", http.StatusBadRequest},
		{"bad year", "/api/countries/IND/summary?from=abc", http.StatusBadRequest},
		{"reversed range", "/api/countries/IND/summary?from=2020&to=2010", http.StatusBadRequest},
		{"bad mean", "/api/countries/IND/charts/NY.GDP.MKTP.CD?mean=maybe", http.StatusBadRequest},
		{"oversized chart", "/api/countries/IND/charts/NY.GDP.MKTP.CD?width=100000", http.StatusBadRequest},
		{"unknown indicator", "/api/countries/IND/charts/XX.NOPE", http.StatusNotFound},
		{"failed indicator", "/api/countries/IND/charts/FP.CPI.TOTL.ZG", http.StatusNotFound},
		{"empty range", "/api/countries/IND/charts/NY.GDP.MKTP.CD?from=1990&to=1995", http.StatusNotFound},
		{"single point", "/api/countries/IND/charts/SL.UEM.TOTL.ZS?from=2021&to=2021", http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, h, tt.target)

			assert.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, decode[errorResponse](t, rec).Error)
		})
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	mock := testutil.NewMockFetcher(nil, nil)
	h := NewServer(":0", summary.New(mock, log), log).Handler()

	get(t, h, "/healthz")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request", entry["message"])
	assert.Equal(t, "/healthz", entry["path"])
	assert.EqualValues(t, http.StatusOK, entry["status"])
	assert.Equal(t, "web", entry["component"])
}
