package comparison_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecobalance/ecobalance/internal/city"
	"github.com/ecobalance/ecobalance/internal/comparison"
)

type catalogSource struct {
	cities []*city.City
}

func (s *catalogSource) Cities() []*city.City { return s.cities }

func (s *catalogSource) CityByID(id string) (*city.City, bool) {
	for _, c := range s.cities {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

func byID(id string) *city.City {
	for _, c := range city.Catalog() {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func TestCompare_SingaporeVsParis(t *testing.T) {
	res := comparison.Compare(byID("singapore"), byID("paris"))

	assert.Equal(t, comparison.StateCompared, res.State)
	assert.Equal(t, comparison.SideLeft, res.Winner)
	assert.False(t, res.Tie)
	assert.Equal(t, "Singapore", res.WinnerCity().Name)
	require.Len(t, res.Metrics, len(comparison.Metrics))

	perCapita, ok := res.Metric("per_capita")
	require.True(t, ok)
	assert.Equal(t, 5.4, perCapita.Left)
	assert.Equal(t, 5.8, perCapita.Right)
	assert.Equal(t, comparison.SideLeft, perCapita.Better, "lower emissions win")

	canopy, _ := res.Metric("tree_canopy")
	assert.Equal(t, comparison.SideLeft, canopy.Better)

	totalCO2, _ := res.Metric("total_co2")
	assert.Equal(t, comparison.SideRight, totalCO2.Better, "Paris emits less in total")

	pop, _ := res.Metric("population")
	assert.Equal(t, comparison.SideNone, pop.Better)
}

func TestCompare_Tie(t *testing.T) {
	res := comparison.Compare(byID("barcelona"), byID("amsterdam"))

	assert.True(t, res.Tie)
	assert.Equal(t, comparison.SideNone, res.Winner)
	assert.Nil(t, res.WinnerCity())

	perCapita, _ := res.Metric("per_capita")
	assert.Equal(t, comparison.SideLeft, perCapita.Better)

	sdg, _ := res.Metric("sdg13")
	assert.Equal(t, comparison.SideRight, sdg.Better)
}

func TestCompare_EqualValuesHaveNoWinner(t *testing.T) {
	res := comparison.Compare(byID("berlin"), byID("amsterdam"))
	perCapita, _ := res.Metric("per_capita")
	assert.Equal(t, comparison.SideNone, perCapita.Better)

	twin := byID("rome")
	twin.ID = "rome-twin"
	res = comparison.Compare(byID("rome"), twin)
	for _, m := range res.Metrics {
		assert.Equal(t, comparison.SideNone, m.Better, m.Key)
	}
	assert.True(t, res.Tie)
}

func TestManager_Select(t *testing.T) {
	src := &catalogSource{cities: city.Catalog()}
	m := comparison.NewManager(src, zerolog.Nop())
	require.NoError(t, m.Initialize(context.Background()))

	opts := m.Options()
	require.Len(t, opts, 9)
	assert.Equal(t, comparison.Option{ID: "singapore", Name: "Singapore"}, opts[0])

	tests := []struct {
		name        string
		left, right string
		want        comparison.State
		message     string
	}{
		{"empty left", "", "paris", comparison.StateGuidance, comparison.MessageGuidance},
		{"empty both", "", "", comparison.StateGuidance, comparison.MessageGuidance},
		{"same city", "singapore", "singapore", comparison.StateGuidance, comparison.MessageGuidance},
		{"unknown", "singapore", "gotham", comparison.StateNotFound, comparison.MessageNotFound},
		{"valid", "singapore", "paris", comparison.StateCompared, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := m.Select(tt.left, tt.right)
			assert.Equal(t, tt.want, res.State)
			assert.Equal(t, tt.message, res.Message)
		})
	}
}

func TestManager_UpdateReplaysSelection(t *testing.T) {
	src := &catalogSource{cities: city.Catalog()}
	m := comparison.NewManager(src, zerolog.Nop())
	require.NoError(t, m.Initialize(context.Background()))

	m.Select("rome", "madrid")
	src.cities = src.cities[:7] // drops amsterdam and rome
	require.NoError(t, m.Update(context.Background()))

	sel, res := m.Last()
	assert.Equal(t, comparison.Selection{Left: "rome", Right: "madrid"}, sel)
	assert.Equal(t, comparison.StateNotFound, res.State)
	assert.Len(t, m.Options(), 7)
}

func TestManager_InitialState(t *testing.T) {
	m := comparison.NewManager(&catalogSource{}, zerolog.Nop())
	_, res := m.Last()
	assert.Equal(t, comparison.StateGuidance, res.State)
}
