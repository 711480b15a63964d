package analysis

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/investtrack/internal/models"
)

// Line colours, in series order after the historical line.
var projectionColors = []string{
	"16a34a", // green-600
	"d97706", // amber-600
	"dc2626", // red-600
	"7c3aed", // violet-600
}

// RenderProjectionChart renders chart-ready data as a PNG. The first series
// is the historical line; every later series is a projection and is drawn
// from the last historical point so the lines join up.
func RenderProjectionChart(data models.ChartData) ([]byte, error) {
	if len(data.Series) < 2 {
		return nil, fmt.Errorf("need a historical and at least one projected series, got %d", len(data.Series))
	}

	dates := make([]time.Time, len(data.Labels))
	for i, label := range data.Labels {
		t, err := time.Parse(models.DateLayout, label)
		if err != nil {
			return nil, fmt.Errorf("invalid chart label %q: %w", label, err)
		}
		dates[i] = t
	}

	histX, histY := points(dates, data.Series[0].Values)
	if len(histX) == 0 {
		return nil, fmt.Errorf("historical series has no points")
	}
	anchorX, anchorY := histX[len(histX)-1], histY[len(histY)-1]

	var series []chart.Series
	if len(histX) > 1 {
		series = append(series, chart.TimeSeries{
			Name: data.Series[0].Name,
			Style: chart.Style{
				StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
				StrokeWidth: 2.5,
			},
			XValues: histX,
			YValues: histY,
		})
	}

	lo, hi := anchorY, anchorY
	for _, y := range histY {
		lo, hi = minMax(lo, hi, y)
	}

	colour := 0
	for _, s := range data.Series[1:] {
		xs, ys := points(dates, s.Values)
		xs = append([]time.Time{anchorX}, xs...)
		ys = append([]float64{anchorY}, ys...)
		for _, y := range ys {
			lo, hi = minMax(lo, hi, y)
		}

		style := chart.Style{StrokeWidth: 2}
		if isPreTax(s.Name) {
			style.StrokeColor = drawing.ColorFromHex("9ca3af") // gray-400
			style.StrokeWidth = 1.5
			style.StrokeDashArray = []float64{5.0, 3.0}
		} else {
			style.StrokeColor = drawing.ColorFromHex(projectionColors[colour%len(projectionColors)])
			colour++
		}
		series = append(series, chart.TimeSeries{Name: s.Name, Style: style, XValues: xs, YValues: ys})
	}

	yAxis := chart.YAxis{
		ValueFormatter: func(v interface{}) string {
			if f, ok := v.(float64); ok {
				return fmt.Sprintf("$%.0fk", f/1000)
			}
			return ""
		},
	}
	if lo == hi {
		yAxis.Range = &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}

	graph := chart.Chart{
		Title:  "Portfolio Valuation & Projection",
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis:  yAxis,
		Series: series,
	}
	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

// points drops the nil padding from a series.
func points(dates []time.Time, values []*float64) ([]time.Time, []float64) {
	var xs []time.Time
	var ys []float64
	for i, v := range values {
		if v == nil || i >= len(dates) {
			continue
		}
		xs = append(xs, dates[i])
		ys = append(ys, *v)
	}
	return xs, ys
}

func isPreTax(name string) bool {
	return strings.Contains(name, "pre-tax")
}

func minMax(lo, hi, v float64) (float64, float64) {
	if v < lo {
		lo = v
	}
	if v > hi {
		hi = v
	}
	return lo, hi
}
