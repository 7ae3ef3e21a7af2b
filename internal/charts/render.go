// Package charts renders report datasets into PNG images. It only draws
// what it is given: every aggregate is computed by the report service and
// the date range always arrives explicitly with the data.
package charts

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sort"
	"strings"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	defaultWidth  = 1024
	defaultHeight = 768
)

// Slice is one labeled value with an optional hex display color.
type Slice struct {
	Label string
	Value float64
	Color string
}

// StackedRow is one horizontal bar assembled from several colored segments.
type StackedRow struct {
	Label    string
	Segments []Slice
}

// RangeBar is one labeled horizontal time span of a gantt image.
type RangeBar struct {
	Label string
	Start time.Time
	End   time.Time
	Color string
}

// Pie renders a pie chart. Zero-value slices are dropped and the remaining
// slices are ordered largest first. An empty dataset yields the placeholder
// image rather than an error.
func Pie(title string, slices []Slice) ([]byte, error) {
	values := make([]chart.Value, 0, len(slices))
	for _, slice := range slices {
		if slice.Value <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s (%s)", slice.Label, trimFloat(slice.Value)),
			Value: slice.Value,
			Style: sliceStyle(slice.Color),
		})
	}
	if len(values) == 0 {
		return Placeholder()
	}
	sort.Slice(values, func(i, j int) bool {
		return values[i].Value > values[j].Value
	})

	pie := chart.PieChart{
		Title:  title,
		Width:  defaultWidth,
		Height: defaultHeight,
		Values: values,
	}

	var output bytes.Buffer
	if err := pie.Render(chart.PNG, &output); err != nil {
		return nil, fmt.Errorf("render pie chart: %w", err)
	}
	return output.Bytes(), nil
}

// Bar renders vertical bars in the order given.
func Bar(title string, bars []Slice) ([]byte, error) {
	values := make([]chart.Value, 0, len(bars))
	for _, bar := range bars {
		if bar.Value <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: bar.Label,
			Value: bar.Value,
			Style: sliceStyle(bar.Color),
		})
	}
	if len(values) == 0 {
		return Placeholder()
	}

	barChart := chart.BarChart{
		Title:    title,
		Width:    defaultWidth,
		Height:   defaultHeight,
		BarWidth: barWidthFor(len(values)),
		Bars:     values,
	}

	var output bytes.Buffer
	if err := barChart.Render(chart.PNG, &output); err != nil {
		return nil, fmt.Errorf("render bar chart: %w", err)
	}
	return output.Bytes(), nil
}

// StackedHorizontalBar renders one horizontal bar per row, each split into
// its segments. Rows render in the order given.
func StackedHorizontalBar(title string, rows []StackedRow) ([]byte, error) {
	bars := make([]chart.StackedBar, 0, len(rows))
	for _, row := range rows {
		segments := make([]chart.Value, 0, len(row.Segments))
		for _, segment := range row.Segments {
			if segment.Value <= 0 {
				continue
			}
			segments = append(segments, chart.Value{
				Label: segment.Label,
				Value: segment.Value,
				Style: sliceStyle(segment.Color),
			})
		}
		if len(segments) == 0 {
			continue
		}
		bars = append(bars, chart.StackedBar{
			Name:   row.Label,
			Values: segments,
		})
	}
	if len(bars) == 0 {
		return Placeholder()
	}

	stacked := chart.StackedBarChart{
		Title:        title,
		Width:        defaultWidth,
		Height:       defaultHeight,
		IsHorizontal: true,
		BarSpacing:   24,
		XAxis:        chart.Style{},
		YAxis:        chart.Style{},
		Bars:         bars,
	}

	var output bytes.Buffer
	if err := stacked.Render(chart.PNG, &output); err != nil {
		return nil, fmt.Errorf("render stacked bar chart: %w", err)
	}
	return output.Bytes(), nil
}

// Gantt renders one horizontal time span per bar, top to bottom in the
// order given.
func Gantt(title string, bars []RangeBar) ([]byte, error) {
	drawable := make([]RangeBar, 0, len(bars))
	for _, bar := range bars {
		if bar.Start.IsZero() || bar.End.IsZero() || bar.End.Before(bar.Start) {
			continue
		}
		drawable = append(drawable, bar)
	}
	if len(drawable) == 0 {
		return Placeholder()
	}

	series := make([]chart.Series, 0, len(drawable))
	ticks := []chart.Tick{{Value: 0, Label: ""}}
	for index, bar := range drawable {
		rowPosition := float64(len(drawable) - index)
		series = append(series, chart.TimeSeries{
			XValues: []time.Time{bar.Start, bar.End},
			YValues: []float64{rowPosition, rowPosition},
			Style: chart.Style{
				StrokeWidth: 14,
				StrokeColor: hexColor(bar.Color),
			},
		})
		ticks = append(ticks, chart.Tick{Value: rowPosition, Label: bar.Label})
	}
	sort.Slice(ticks, func(i, j int) bool { return ticks[i].Value < ticks[j].Value })
	ticks = append(ticks, chart.Tick{Value: float64(len(drawable) + 1), Label: ""})

	gantt := chart.Chart{
		Title:  title,
		Width:  defaultWidth,
		Height: defaultHeight,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Ticks: ticks,
			Range: &chart.ContinuousRange{Min: 0, Max: float64(len(drawable) + 1)},
		},
		Series: series,
	}

	var output bytes.Buffer
	if err := gantt.Render(chart.PNG, &output); err != nil {
		return nil, fmt.Errorf("render gantt chart: %w", err)
	}
	return output.Bytes(), nil
}

// Placeholder is the small blank image returned for empty datasets, so the
// image endpoints never answer a chart request with an error body.
func Placeholder() ([]byte, error) {
	const width, height = 640, 400
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))

	background := color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	border := color.RGBA{R: 0xd0, G: 0xd0, B: 0xd0, A: 0xff}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x == 0 || y == 0 || x == width-1 || y == height-1 {
				canvas.Set(x, y, border)
				continue
			}
			canvas.Set(x, y, background)
		}
	}

	var output bytes.Buffer
	if err := png.Encode(&output, canvas); err != nil {
		return nil, fmt.Errorf("encode placeholder image: %w", err)
	}
	return output.Bytes(), nil
}

func sliceStyle(hex string) chart.Style {
	if strings.TrimSpace(hex) == "" {
		return chart.Style{}
	}
	parsed := hexColor(hex)
	return chart.Style{
		FillColor:   parsed,
		StrokeColor: parsed,
		StrokeWidth: 1,
	}
}

func hexColor(hex string) drawing.Color {
	trimmed := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if trimmed == "" {
		return chart.ColorBlue
	}
	return drawing.ColorFromHex(trimmed)
}

func barWidthFor(barCount int) int {
	usable := defaultWidth - 100
	width := usable / (barCount * 2)
	if width < 20 {
		return 20
	}
	if width > 80 {
		return 80
	}
	return width
}

func trimFloat(value float64) string {
	formatted := fmt.Sprintf("%.2f", value)
	formatted = strings.TrimRight(formatted, "0")
	return strings.TrimRight(formatted, ".")
}
