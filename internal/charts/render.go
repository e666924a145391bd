package charts

import (
	"errors"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/ecobalance/ecobalance/internal/city"
)

var (
	// ErrUnknownChart is returned for an unknown chart name.
	ErrUnknownChart = errors.New("unknown chart")

	// ErrNoData is returned when a chart has nothing to draw.
	ErrNoData = errors.New("not enough data to draw chart")
)

// Size of a rendered chart in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DefaultSize is used when no size is configured.
var DefaultSize = Size{Width: 800, Height: 400}

var (
	perCapitaColor     = drawing.Color{R: 239, G: 68, B: 68, A: 204}
	sequestrationColor = drawing.Color{R: 34, G: 197, B: 94, A: 204}
)

// RenderScores draws the score bar chart.
func RenderScores(w io.Writer, s ScoreSeries, size Size) error {
	if len(s.Scores) == 0 {
		return ErrNoData
	}

	bars := make([]chart.Value, len(s.Scores))
	top := 0.0
	for i, v := range s.Scores {
		col := BandColor(city.BandForScore(v))
		bars[i] = chart.Value{
			Value: v,
			Label: s.Labels[i],
			Style: chart.Style{FillColor: col, StrokeColor: col, StrokeWidth: 1},
		}
		top = math.Max(top, v)
	}

	barWidth := size.Width / (2 * len(bars))
	if barWidth < 8 {
		barWidth = 8
	}

	bc := chart.BarChart{
		Title:      "EcoBalance Score",
		Width:      size.Width,
		Height:     size.Height,
		BarWidth:   barWidth,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		YAxis: chart.YAxis{
			Name:  "Score",
			Range: &chart.ContinuousRange{Min: 0, Max: axisMax(top)},
		},
		Bars: bars,
	}
	return bc.Render(chart.SVG, w)
}

// RenderEmissions draws per-capita emissions against sequestration per
// 1,000 residents. It needs at least two cities.
func RenderEmissions(w io.Writer, s EmissionsSeries, size Size) error {
	if len(s.Labels) < 2 {
		return ErrNoData
	}

	xs := make([]float64, len(s.Labels))
	ticks := make([]chart.Tick, len(s.Labels))
	top := 0.0
	for i, label := range s.Labels {
		xs[i] = float64(i)
		ticks[i] = chart.Tick{Value: float64(i), Label: label}
		top = math.Max(top, math.Max(s.PerCapita[i], s.SequestrationPerThousand[i]))
	}

	ch := chart.Chart{
		Title:      "Emissions vs Sequestration",
		Width:      size.Width,
		Height:     size.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Ticks: ticks},
		YAxis: chart.YAxis{
			Name:  "Tonnes CO2",
			Range: &chart.ContinuousRange{Min: 0, Max: axisMax(top)},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Per Capita Emissions (tonnes)",
				XValues: xs,
				YValues: s.PerCapita,
				Style:   chart.Style{StrokeColor: perCapitaColor, StrokeWidth: 2, DotColor: perCapitaColor, DotWidth: 4},
			},
			chart.ContinuousSeries{
				Name:    "Sequestration per 1000 residents (tonnes)",
				XValues: xs,
				YValues: s.SequestrationPerThousand,
				Style:   chart.Style{StrokeColor: sequestrationColor, StrokeWidth: 2, DotColor: sequestrationColor, DotWidth: 4},
			},
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(chart.SVG, w)
}

func axisMax(top float64) float64 {
	if top <= 0 {
		return 1
	}
	return math.Ceil(top*1.1*10) / 10
}
