package chart

import (
	"errors"
	"fmt"
	"io"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"econdash/internal/series"
)

// ErrTooFewPoints is returned when a series cannot span an x axis.
var ErrTooFewPoints = errors.New("at least two points are needed to draw a chart")

var (
	valueColor   = gochart.ColorBlue
	meanColor    = drawing.ColorFromHex("c0c0c0")
	rollingColor = drawing.ColorFromHex("4682b4")
)

// Render draws o as a PNG.
func Render(w io.Writer, o Overlay, width, height int) error {
	if len(o.Points) < 2 {
		return ErrTooFewPoints
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	xs, ys := split(o.Points)
	seriesList := []gochart.Series{
		gochart.ContinuousSeries{
			Name:    o.Indicator.Name,
			XValues: xs,
			YValues: ys,
			Style: gochart.Style{
				StrokeColor: valueColor,
				StrokeWidth: 2,
				DotColor:    valueColor,
				DotWidth:    3,
			},
		},
	}

	if o.Mean != nil {
		mean := *o.Mean
		first, last := xs[0], xs[len(xs)-1]
		seriesList = append(seriesList,
			gochart.ContinuousSeries{
				Name:    "Mean",
				XValues: []float64{first, last},
				YValues: []float64{mean, mean},
				Style: gochart.Style{
					StrokeColor:     meanColor,
					StrokeWidth:     1.5,
					StrokeDashArray: []float64{2, 4},
				},
			},
			gochart.AnnotationSeries{
				Annotations: []gochart.Value2{
					{XValue: first, YValue: mean, Label: fmt.Sprintf("Avg: %.2f", mean)},
				},
			},
		)
	}

	if len(o.Rolling) > 0 {
		rx, ry := split(o.Rolling)
		seriesList = append(seriesList, gochart.ContinuousSeries{
			Name:    fmt.Sprintf("%d-yr avg", o.Window),
			XValues: rx,
			YValues: ry,
			Style: gochart.Style{
				StrokeColor:     rollingColor,
				StrokeWidth:     2,
				StrokeDashArray: []float64{6, 4},
			},
		})
	}

	ch := gochart.Chart{
		Title:      fmt.Sprintf("%s (%d-%d)", o.Indicator.Name, o.From, o.To),
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis: gochart.XAxis{
			Name:           "Year",
			ValueFormatter: yearFormatter,
		},
		YAxis: gochart.YAxis{
			Name: o.Indicator.Units,
		},
		Series: seriesList,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}

	if err := ch.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render %s: %w", o.Indicator.Name, err)
	}
	return nil
}

func split(points []series.Point) (xs, ys []float64) {
	xs = make([]float64, len(points))
	ys = make([]float64, len(points))
	for i, p := range points {
		xs[i] = float64(p.Year)
		ys[i] = p.Value
	}
	return xs, ys
}

func yearFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.0f", f)
	}
	return ""
}
