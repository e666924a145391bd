// Package charts derives chart series from the city collection and renders
// them as SVG.
package charts

import (
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/ecobalance/ecobalance/internal/city"
)

// Kind names a chart.
type Kind string

const (
	KindScores    Kind = "scores"
	KindEmissions Kind = "emissions"
)

// Kinds lists every chart.
var Kinds = []Kind{KindScores, KindEmissions}

// ParseKind validates a chart name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownChart, s)
}

// Band colors at 80% opacity.
var bandColors = map[city.Rank]drawing.Color{
	city.RankExcellent: {R: 34, G: 197, B: 94, A: 204},
	city.RankGood:      {R: 59, G: 130, B: 246, A: 204},
	city.RankFair:      {R: 245, G: 158, B: 11, A: 204},
	city.RankPoor:      {R: 239, G: 68, B: 68, A: 204},
}

// BandColor returns the chart color of a band.
func BandColor(r city.Rank) drawing.Color {
	if c, ok := bandColors[r]; ok {
		return c
	}
	return bandColors[city.RankPoor]
}

// CSSColor formats a color as rgba().
func CSSColor(c drawing.Color) string {
	return fmt.Sprintf("rgba(%d, %d, %d, %.1f)", c.R, c.G, c.B, float64(c.A)/255)
}

// ScoreSeries is the score bar chart data.
type ScoreSeries struct {
	IDs    []string  `json:"ids"`
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
	Colors []string  `json:"colors"`
}

// EmissionsSeries compares per-capita emissions with sequestration per
// 1,000 residents.
type EmissionsSeries struct {
	IDs                      []string  `json:"ids"`
	Labels                   []string  `json:"labels"`
	PerCapita                []float64 `json:"per_capita_tons"`
	SequestrationPerThousand []float64 `json:"sequestration_per_thousand"`
}

// Series bundles both charts.
type Series struct {
	Scores    ScoreSeries     `json:"scores"`
	Emissions EmissionsSeries `json:"emissions"`
}

// Project derives both series in collection order.
func Project(cities []*city.City) Series {
	n := len(cities)
	s := Series{
		Scores: ScoreSeries{
			IDs:    make([]string, 0, n),
			Labels: make([]string, 0, n),
			Scores: make([]float64, 0, n),
			Colors: make([]string, 0, n),
		},
		Emissions: EmissionsSeries{
			IDs:                      make([]string, 0, n),
			Labels:                   make([]string, 0, n),
			PerCapita:                make([]float64, 0, n),
			SequestrationPerThousand: make([]float64, 0, n),
		},
	}
	for _, c := range cities {
		s.Scores.IDs = append(s.Scores.IDs, c.ID)
		s.Scores.Labels = append(s.Scores.Labels, c.Name)
		s.Scores.Scores = append(s.Scores.Scores, c.EcoBalanceScore)
		s.Scores.Colors = append(s.Scores.Colors, CSSColor(BandColor(c.Band())))

		s.Emissions.IDs = append(s.Emissions.IDs, c.ID)
		s.Emissions.Labels = append(s.Emissions.Labels, c.Name)
		s.Emissions.PerCapita = append(s.Emissions.PerCapita, c.Emissions.PerCapitaTons)
		s.Emissions.SequestrationPerThousand = append(s.Emissions.SequestrationPerThousand, round2(c.SequestrationPerThousand()))
	}
	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
