// Package sources derives the data source catalog, the sample API fetch and
// the methodology view.
package sources

import (
	"github.com/ecobalance/ecobalance/internal/attribution"
	"github.com/ecobalance/ecobalance/internal/city"
)

// Card describes the sources behind one city.
type Card struct {
	Name       string          `json:"name"`
	Country    string          `json:"country,omitempty"`
	GreenSpace *city.SourceRef `json:"green_space,omitempty"`
	Emissions  *city.SourceRef `json:"emissions,omitempty"`
}

// Cards lists the feed's cities that carry at least one source, in feed
// order. A nil payload yields an empty list.
func Cards(p *attribution.Payload) []Card {
	if p == nil {
		return []Card{}
	}
	out := make([]Card, 0, len(p.Cities))
	for _, fc := range p.Cities {
		if fc.GreenSpace == nil && fc.Emissions == nil {
			continue
		}
		out = append(out, Card{
			Name:       fc.Name,
			Country:    fc.Country,
			GreenSpace: fc.GreenSpace,
			Emissions:  fc.Emissions,
		})
	}
	return out
}

// Band is one row of the methodology score table.
type Band struct {
	Range   string    `json:"range"`
	Rank    city.Rank `json:"rank"`
	Class   string    `json:"class"`
	Min     float64   `json:"min"`
	Max     *float64  `json:"max,omitempty"`
	Meaning string    `json:"meaning"`
}

// Methodology is the methodology view.
type Methodology struct {
	Formula           string             `json:"formula"`
	SequestrationRate string             `json:"sequestration_rate"`
	EmissionsMetric   string             `json:"emissions_metric"`
	Bands             []Band             `json:"bands"`
	DataSources       city.SourceCatalog `json:"data_sources"`
}

// MethodologyView orders the score bands from lowest to highest and fills in
// each band's upper bound.
func MethodologyView(m city.Methodology) Methodology {
	bands := make([]Band, len(m.ScoreInterpretation))
	for i, b := range m.ScoreInterpretation {
		bands[i] = Band{Range: b.Range, Rank: b.Rank, Class: b.Rank.Class(), Min: b.Min, Meaning: b.Meaning}
		if i+1 < len(m.ScoreInterpretation) {
			upper := m.ScoreInterpretation[i+1].Min
			bands[i].Max = &upper
		}
	}
	return Methodology{
		Formula:           m.Formula,
		SequestrationRate: m.SequestrationRate,
		EmissionsMetric:   m.EmissionsMetric,
		Bands:             bands,
		DataSources:       m.DataSources,
	}
}
