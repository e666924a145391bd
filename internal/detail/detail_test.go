package detail_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecobalance/ecobalance/internal/city"
	"github.com/ecobalance/ecobalance/internal/detail"
	"github.com/ecobalance/ecobalance/internal/events"
)

type catalog map[string]*city.City

func (c catalog) CityByID(id string) (*city.City, bool) {
	v, ok := c[id]
	return v, ok
}

func newCatalog() catalog {
	out := catalog{}
	for _, c := range city.Catalog() {
		out[c.ID] = c
	}
	return out
}

func TestManager_OpenOnSelection(t *testing.T) {
	m := detail.NewManager(newCatalog(), zerolog.Nop())
	require.NoError(t, m.Initialize(context.Background()))
	assert.Nil(t, m.Current())

	topic := events.NewTopic[string](events.TopicCitySelected, zerolog.Nop())
	topic.Subscribe(m.HandleSelected)
	topic.Publish("nyc")

	v := m.Current()
	require.NotNil(t, v)
	assert.Equal(t, "New York City", v.City.Name)
	assert.Equal(t, city.RankFair, v.Band)
	assert.Equal(t, city.RankGood, v.City.ScoreRank)
	assert.Equal(t, "transport", v.Sectors[0].Name)

	m.Close()
	assert.Nil(t, m.Current())
}

func TestManager_OpenUnknown(t *testing.T) {
	m := detail.NewManager(newCatalog(), zerolog.Nop())
	_, err := m.Open("gotham")
	assert.ErrorIs(t, err, detail.ErrCityNotFound)

	m.HandleSelected("gotham")
	assert.Nil(t, m.Current())
}

func TestManager_UpdateRebindsOrCloses(t *testing.T) {
	cat := newCatalog()
	m := detail.NewManager(cat, zerolog.Nop())
	_, err := m.Open("rome")
	require.NoError(t, err)

	fresh := city.Catalog()[8]
	fresh.DataSources = &city.Attribution{Emissions: &city.SourceRef{Source: "ISPRA"}}
	cat["rome"] = fresh
	require.NoError(t, m.Update(context.Background()))
	assert.Same(t, fresh, m.Current().City)

	delete(cat, "rome")
	require.NoError(t, m.Update(context.Background()))
	assert.Nil(t, m.Current())
}
