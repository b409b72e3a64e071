package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"econdash/internal/indicator"
	"econdash/internal/series"
	"econdash/internal/summary"
	"econdash/internal/testutil"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func summarize(t *testing.T, country string, points map[string][]series.Point) *summary.CountrySummary {
	t.Helper()
	mock := testutil.NewMockFetcher(points, nil)
	return summary.New(mock, zerolog.Nop()).Summarize(context.Background(), country)
}

func TestNew_RequiresPath(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}

func TestSaveSummary_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	s.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	sum := summarize(t, "IND", map[string][]series.Point{
		"NY.GDP.MKTP.CD": {{Year: 2021, Value: 3.15e12}, {Year: 2020, Value: 2.67e12}},
		"FP.CPI.TOTL.ZG": {{Year: 2021, Value: 5.1}},
	})
	require.NoError(t, s.SaveSummary(ctx, sum))

	obs, err := s.Observations(ctx, "IND")
	require.NoError(t, err)
	require.Len(t, obs, 3)

	assert.Equal(t, indicator.GDP, obs[0].Indicator)
	assert.Equal(t, "NY.GDP.MKTP.CD", obs[0].IndicatorCode)
	assert.Equal(t, 2020, obs[0].Year)
	assert.Equal(t, 2021, obs[1].Year)
	assert.Equal(t, indicator.Inflation, obs[2].Indicator)
	assert.InDelta(t, 5.1, obs[2].Value, 1e-9)
	assert.True(t, obs[2].IngestedAt.Equal(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)))

	other, err := s.Observations(ctx, "USA")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSaveSummary_Upserts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := summarize(t, "CHN", map[string][]series.Point{
		"SL.UEM.TOTL.ZS": {{Year: 2020, Value: 5.0}},
	})
	second := summarize(t, "CHN", map[string][]series.Point{
		"SL.UEM.TOTL.ZS": {{Year: 2020, Value: 5.6}, {Year: 2021, Value: 4.6}},
	})
	require.NoError(t, s.SaveSummary(ctx, first))
	require.NoError(t, s.SaveSummary(ctx, second))

	obs, err := s.Observations(ctx, "CHN")
	require.NoError(t, err)
	require.Len(t, obs, 2)
	assert.InDelta(t, 5.6, obs[0].Value, 1e-9)
	assert.Equal(t, 2021, obs[1].Year)
}

func TestSaveSummary_EmptySummaryIsNoop(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSummary(ctx, summarize(t, "RUS", nil)))
	require.NoError(t, s.SaveSummary(ctx, nil))

	obs, err := s.Observations(ctx, "RUS")
	require.NoError(t, err)
	assert.Empty(t, obs)
}
