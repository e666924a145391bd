// Package dashboard derives the headline summary and city cards.
package dashboard

import (
	"context"
	"strconv"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/ecobalance/ecobalance/internal/city"
)

// Summary is the headline statistics of a collection.
type Summary struct {
	TotalCities  int        `json:"total_cities"`
	TopPerformer *city.City `json:"top_performer,omitempty"`
	AverageScore float64    `json:"average_score"`
}

// AverageDisplay formats the average with two decimals.
func (s Summary) AverageDisplay() string {
	return formatScore(s.AverageScore)
}

// Summarize computes the summary. The top performer is the first city with
// the highest score. An empty collection yields zero values.
func Summarize(cities []*city.City) Summary {
	if len(cities) == 0 {
		return Summary{}
	}

	top := cities[0]
	var sum float64
	for _, c := range cities {
		sum += c.EcoBalanceScore
		if c.EcoBalanceScore > top.EcoBalanceScore {
			top = c
		}
	}
	return Summary{
		TotalCities:  len(cities),
		TopPerformer: top,
		AverageScore: sum / float64(len(cities)),
	}
}

// Card is one city tile.
type Card struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Country       string    `json:"country"`
	Score         float64   `json:"score"`
	ScoreDisplay  string    `json:"score_display"`
	Rank          city.Rank `json:"rank"`
	Class         string    `json:"class"`
	PerCapita     float64   `json:"per_capita_tons"`
	TreeCanopy    float64   `json:"tree_canopy_percent"`
	Sequestration float64   `json:"carbon_sequestration_tons"`
	SDG13         float64   `json:"sdg13_alignment"`
	Attributed    bool      `json:"attributed"`
}

// Cards builds one card per city in collection order. The class follows the
// score band, the rank label is the stored one.
func Cards(cities []*city.City) []Card {
	out := make([]Card, 0, len(cities))
	for _, c := range cities {
		out = append(out, Card{
			ID:            c.ID,
			Name:          c.Name,
			Country:       c.Country,
			Score:         c.EcoBalanceScore,
			ScoreDisplay:  formatScore(c.EcoBalanceScore),
			Rank:          c.ScoreRank,
			Class:         c.Band().Class(),
			PerCapita:     c.Emissions.PerCapitaTons,
			TreeCanopy:    c.Vegetation.TreeCanopyPercent,
			Sequestration: c.Vegetation.CarbonSequestrationTonsPerYear,
			SDG13:         c.SDG13Score,
			Attributed:    !c.DataSources.Empty(),
		})
	}
	return out
}

// View is the dashboard projection.
type View struct {
	Summary Summary `json:"summary"`
	Cards   []Card  `json:"cards"`
}

// Source provides the city collection.
type Source interface {
	Cities() []*city.City
}

// Manager keeps the current dashboard projection.
type Manager struct {
	source Source
	logger zerolog.Logger
	view   atomic.Pointer[View]
}

// NewManager creates a dashboard manager.
func NewManager(source Source, logger zerolog.Logger) *Manager {
	return &Manager{source: source, logger: logger}
}

func (m *Manager) Name() string { return "dashboard" }

// Initialize derives the first projection.
func (m *Manager) Initialize(ctx context.Context) error {
	return m.Update(ctx)
}

// Update re-derives the projection from the current collection.
func (m *Manager) Update(context.Context) error {
	cities := m.source.Cities()
	v := &View{Summary: Summarize(cities), Cards: Cards(cities)}
	m.view.Store(v)

	ev := m.logger.Debug().Int("cities", v.Summary.TotalCities).Str("average", v.Summary.AverageDisplay())
	if v.Summary.TopPerformer != nil {
		ev = ev.Str("top", v.Summary.TopPerformer.ID)
	}
	ev.Msg("dashboard updated")
	return nil
}

// View returns the current projection, an empty one before Initialize.
func (m *Manager) View() *View {
	if v := m.view.Load(); v != nil {
		return v
	}
	return &View{Cards: []Card{}}
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
