package report

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/andresuchdata/inventory-abc/internal/domain"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const dataURIPrefix = "data:image/png;base64,"

var (
	classColors = map[domain.ABCClass]drawing.Color{
		domain.ClassA: drawing.ColorFromHex("2ed573"),
		domain.ClassB: drawing.ColorFromHex("ffa502"),
		domain.ClassC: drawing.ColorFromHex("ff4757"),
	}
	curveColor = drawing.ColorFromHex("667eea")
)

// ChartRenderer turns an analysis into encoded chart images.
type ChartRenderer interface {
	// ClassDistribution draws the number of items per class.
	ClassDistribution(summary domain.Summary) (string, error)
	// CumulativeCurve draws cumulative value share against item rank with
	// reference lines at the class boundaries.
	CumulativeCurve(items []domain.AnalyzedItem, boundaryA, boundaryB float64) (string, error)
}

// PNGRenderer renders charts as base64 PNG data URIs.
type PNGRenderer struct {
	Width  int
	Height int
}

func NewPNGRenderer() *PNGRenderer {
	return &PNGRenderer{Width: 1000, Height: 600}
}

func (r *PNGRenderer) ClassDistribution(summary domain.Summary) (string, error) {
	bars, maxCount := classBars(summary)

	graph := chart.BarChart{
		Title:  "Number of Items per ABC Class",
		Width:  r.Width,
		Height: r.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 60, Left: 20, Right: 20, Bottom: 20},
		},
		BarWidth: r.Width / 6,
		YAxis: chart.YAxis{
			Name:           "Number of Items",
			Range:          &chart.ContinuousRange{Min: 0, Max: float64(maxCount)},
			ValueFormatter: chart.IntValueFormatter,
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return "", fmt.Errorf("render class distribution chart: %w", err)
	}
	return encode(buf.Bytes()), nil
}

func (r *PNGRenderer) CumulativeCurve(items []domain.AnalyzedItem, boundaryA, boundaryB float64) (string, error) {
	// the x range needs a non-zero width even for a single item
	xMax := float64(len(items))
	if xMax < 2 {
		xMax = 2
	}

	var series []chart.Series
	if len(items) > 0 {
		xs := make([]float64, len(items))
		ys := make([]float64, len(items))
		for i, item := range items {
			xs[i] = float64(i + 1)
			ys[i] = item.CumulativePercentage
		}
		series = append(series, chart.ContinuousSeries{
			Name:    "Cumulative value",
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: curveColor,
				StrokeWidth: 3,
				FillColor:   curveColor.WithAlpha(76),
				DotColor:    curveColor,
				DotWidth:    4,
			},
		})
	}

	series = append(series,
		referenceLine(fmt.Sprintf("A/B Boundary (%g%%)", boundaryA), boundaryA, xMax, classColors[domain.ClassC]),
		referenceLine(fmt.Sprintf("B/C Boundary (%g%%)", boundaryB), boundaryB, xMax, classColors[domain.ClassB]),
	)

	graph := chart.Chart{
		Width:  r.Width,
		Height: r.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:           "Number of Items (Sorted by Value)",
			Range:          &chart.ContinuousRange{Min: 1, Max: xMax},
			ValueFormatter: chart.IntValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:  "Cumulative Percentage of Total Value (%)",
			Range: &chart.ContinuousRange{Min: 0, Max: 100},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return "", fmt.Errorf("render cumulative chart: %w", err)
	}
	return encode(buf.Bytes()), nil
}

// classBars returns one bar per class and the y-axis maximum, at least 1.
func classBars(summary domain.Summary) ([]chart.Value, int) {
	maxCount := 1
	bars := make([]chart.Value, 0, len(domain.Classes))
	for _, class := range domain.Classes {
		count := summary.Count(class)
		if count > maxCount {
			maxCount = count
		}
		color := classColors[class]
		bars = append(bars, chart.Value{
			Label: class.Label(),
			Value: float64(count),
			Style: chart.Style{
				FillColor:   color,
				StrokeColor: color,
			},
		})
	}
	return bars, maxCount
}

func referenceLine(name string, y, xMax float64, color drawing.Color) chart.ContinuousSeries {
	return chart.ContinuousSeries{
		Name:    name,
		XValues: []float64{1, xMax},
		YValues: []float64{y, y},
		Style: chart.Style{
			StrokeColor:     color.WithAlpha(178),
			StrokeWidth:     2,
			StrokeDashArray: []float64{6, 4},
		},
	}
}

func encode(png []byte) string {
	return dataURIPrefix + base64.StdEncoding.EncodeToString(png)
}

// DecodeDataURI returns the PNG bytes of a data URI produced by PNGRenderer.
func DecodeDataURI(uri string) ([]byte, error) {
	if !strings.HasPrefix(uri, dataURIPrefix) {
		return nil, fmt.Errorf("not a base64 png data uri")
	}
	return base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, dataURIPrefix))
}

var _ ChartRenderer = (*PNGRenderer)(nil)
