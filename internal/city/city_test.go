package city_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecobalance/ecobalance/internal/city"
)

func TestBandForScore(t *testing.T) {
	tests := []struct {
		score float64
		want  city.Rank
	}{
		{2.05, city.RankExcellent},
		{1.5, city.RankExcellent},
		{1.49, city.RankGood},
		{1.0, city.RankGood},
		{0.99, city.RankFair},
		{0.5, city.RankFair},
		{0.49, city.RankPoor},
		{0, city.RankPoor},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, city.BandForScore(tt.score), "score %v", tt.score)
	}
}

func TestCatalog(t *testing.T) {
	cities := city.Catalog()
	require.Len(t, cities, 9)

	ids := make([]string, len(cities))
	for i, c := range cities {
		ids[i] = c.ID
		assert.Nil(t, c.DataSources, c.ID)
	}
	want := []string{"singapore", "nyc", "london", "paris", "barcelona", "berlin", "madrid", "amsterdam", "rome"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("catalog order mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, 1.63, cities[0].EcoBalanceScore)
	assert.Equal(t, 5.4, cities[0].Emissions.PerCapitaTons)
	assert.Equal(t, city.RankGood, cities[1].ScoreRank)
}

func TestCity_JSONFieldNames(t *testing.T) {
	data, err := json.Marshal(city.Catalog()[0])
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "Excellent", doc["rank"])
	assert.Equal(t, 92.0, doc["sdg13_alignment"])
	assert.NotContains(t, doc, "data_sources")

	veg, ok := doc["vegetation"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 3200000.0, veg["estimated_trees"])
}

func TestCatalog_ReturnsFreshCopies(t *testing.T) {
	a := city.Catalog()
	a[0].Emissions.Sectors[city.SectorTransport] = 0
	a[0].Name = "changed"

	b := city.Catalog()
	assert.Equal(t, "Singapore", b[0].Name)
	assert.Equal(t, 40.0, b[0].Emissions.Sectors[city.SectorTransport])
}

func TestOrderedSectors(t *testing.T) {
	c := &city.City{Emissions: city.EmissionsProfile{Sectors: map[string]float64{
		"aviation":            3,
		city.SectorWaste:      5,
		city.SectorTransport:  40,
		"agriculture":         2,
		city.SectorBuildings:  30,
		city.SectorIndustrial: 20,
	}}}

	want := []city.SectorShare{
		{Name: "transport", Percent: 40},
		{Name: "buildings", Percent: 30},
		{Name: "industrial", Percent: 20},
		{Name: "waste", Percent: 5},
		{Name: "agriculture", Percent: 2},
		{Name: "aviation", Percent: 3},
	}
	if diff := cmp.Diff(want, c.OrderedSectors()); diff != "" {
		t.Errorf("OrderedSectors mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_Catalog(t *testing.T) {
	issues := city.Validate(city.Catalog())
	assert.False(t, city.HasErrors(issues))

	var mismatched []string
	for _, i := range issues {
		mismatched = append(mismatched, i.CityID)
	}
	assert.ElementsMatch(t, []string{"nyc", "barcelona", "amsterdam"}, mismatched)
}

func TestValidate_Errors(t *testing.T) {
	cities := city.Catalog()
	cities[1].ID = cities[0].ID
	cities[2].Population = 0
	cities[3].Emissions.Sectors[city.SectorWaste] = 20

	issues := city.Validate(cities)
	require.True(t, city.HasErrors(issues))

	var errs []string
	for _, i := range issues {
		if i.Severity == city.SeverityError {
			errs = append(errs, i.String())
		}
	}
	assert.Contains(t, errs, "error: singapore: duplicate id")
	assert.Contains(t, errs, "error: london: population must be positive")
	assert.Contains(t, errs, "error: paris: sectors sum to 115.0, want 100")
}

func TestSequestrationPerThousand(t *testing.T) {
	c := city.Catalog()[0]
	assert.InDelta(t, 8.82, c.SequestrationPerThousand(), 0.01)

	assert.Zero(t, (&city.City{}).SequestrationPerThousand())
}

func TestClone(t *testing.T) {
	c := city.Catalog()[0]
	c.DataSources = &city.Attribution{GreenSpace: &city.SourceRef{Source: "HUGSI"}}

	cp := c.Clone()
	cp.DataSources.GreenSpace.Source = "other"
	cp.Emissions.Sectors[city.SectorWaste] = 99

	assert.Equal(t, "HUGSI", c.DataSources.GreenSpace.Source)
	assert.Equal(t, 5.0, c.Emissions.Sectors[city.SectorWaste])
}
