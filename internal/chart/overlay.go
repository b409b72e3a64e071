// Package chart derives the mean and rolling-average overlays for an
// indicator series and renders them as PNG images.
package chart

import (
	"errors"
	"fmt"
	"slices"

	"econdash/internal/indicator"
	"econdash/internal/series"
)

// Windows are the rolling-average widths offered to users, in years. Zero disables the curve.
var Windows = []int{0, 3, 5, 10}

const (
	DefaultWindow = 5
	DefaultWidth  = 900
	DefaultHeight = 400
)

var (
	ErrInvalidWindow = errors.New("invalid rolling window")
	ErrNoData        = errors.New("no data in range")
)

// Options select the year range and overlays. Zero From and To mean the
// default range; a single zero bound means the first or last available year.
type Options struct {
	From     int
	To       int
	ShowMean bool
	Window   int
	Width    int
	Height   int
}

// DefaultOptions shows the mean and a 5-year rolling average over the default range.
func DefaultOptions() Options {
	return Options{ShowMean: true, Window: DefaultWindow, Width: DefaultWidth, Height: DefaultHeight}
}

// ValidWindow reports whether w is one of Windows.
func ValidWindow(w int) bool {
	return slices.Contains(Windows, w)
}

// Overlay is an indicator series restricted to a year range, plus derived curves.
type Overlay struct {
	Indicator indicator.Indicator `json:"indicator"`
	From      int                 `json:"from"`
	To        int                 `json:"to"`
	Points    []series.Point      `json:"points"`
	Mean      *float64            `json:"mean,omitempty"`
	Window    int                 `json:"window,omitempty"`
	Rolling   []series.Point      `json:"rolling,omitempty"`
	Latest    *series.Row         `json:"latest,omitempty"`
}

// Build filters table to ind and the requested range and computes the overlays.
func Build(table series.Table, ind indicator.Indicator, opts Options) (Overlay, error) {
	if !ValidWindow(opts.Window) {
		return Overlay{}, fmt.Errorf("%w: %d (want one of %v)", ErrInvalidWindow, opts.Window, Windows)
	}

	data := table.Where(ind.Name)
	from, to := opts.From, opts.To
	switch {
	case from == 0 && to == 0:
		var ok bool
		if from, to, ok = data.DefaultRange(); !ok {
			return Overlay{}, fmt.Errorf("%w: %s", ErrNoData, ind.Name)
		}
	case from == 0 || to == 0:
		// a single bound extends to the other end of the data
		minYear, maxYear, ok := data.YearRange()
		if !ok {
			return Overlay{}, fmt.Errorf("%w: %s", ErrNoData, ind.Name)
		}
		if from == 0 {
			from = minYear
		}
		if to == 0 {
			to = maxYear
		}
	}
	if from > to {
		return Overlay{}, fmt.Errorf("invalid year range %d-%d", from, to)
	}

	filtered := data.Filter(from, to)
	if filtered.Empty() {
		return Overlay{}, fmt.Errorf("%w: %s %d-%d", ErrNoData, ind.Name, from, to)
	}

	o := Overlay{
		Indicator: ind,
		From:      from,
		To:        to,
		Points:    filtered.Points(),
	}
	if opts.ShowMean {
		if mean, ok := filtered.Mean(); ok {
			o.Mean = &mean
		}
	}
	if opts.Window > 0 {
		o.Window = opts.Window
		o.Rolling = filtered.Rolling(opts.Window)
	}
	if latest := filtered.Latest(); len(latest) > 0 {
		o.Latest = &latest[len(latest)-1]
	}
	return o, nil
}
