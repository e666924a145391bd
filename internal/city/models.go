// Package city defines the EcoBalance city model and the built-in catalog.
package city

import (
	"slices"
	"sort"
)

// Rank is the qualitative band of an EcoBalance score.
type Rank string

const (
	RankExcellent Rank = "Excellent"
	RankGood      Rank = "Good"
	RankFair      Rank = "Fair"
	RankPoor      Rank = "Poor"
)

// Band thresholds. Lower bounds are inclusive.
const (
	ThresholdExcellent = 1.5
	ThresholdGood      = 1.0
	ThresholdFair      = 0.5
)

// BandForScore returns the band a score falls into.
func BandForScore(score float64) Rank {
	switch {
	case score >= ThresholdExcellent:
		return RankExcellent
	case score >= ThresholdGood:
		return RankGood
	case score >= ThresholdFair:
		return RankFair
	default:
		return RankPoor
	}
}

// Class returns the lowercase CSS-style class name of the rank.
func (r Rank) Class() string {
	switch r {
	case RankExcellent:
		return "excellent"
	case RankGood:
		return "good"
	case RankFair:
		return "fair"
	default:
		return "poor"
	}
}

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Well-known emission sectors in display order.
const (
	SectorTransport  = "transport"
	SectorBuildings  = "buildings"
	SectorIndustrial = "industrial"
	SectorWaste      = "waste"
)

var sectorOrder = []string{SectorTransport, SectorBuildings, SectorIndustrial, SectorWaste}

// EmissionsProfile describes a city's annual carbon output.
type EmissionsProfile struct {
	TotalCO2TonsPerYear float64            `json:"total_co2_tons_per_year"`
	PerCapitaTons       float64            `json:"per_capita_tons"`
	Sectors             map[string]float64 `json:"sectors"`
}

// VegetationProfile describes a city's green infrastructure.
type VegetationProfile struct {
	TreeCanopyPercent              float64 `json:"tree_canopy_percent"`
	GreenSpacePercent              float64 `json:"green_space_percent"`
	ParksAreaKm2                   float64 `json:"parks_area_km2"`
	UrbanTreesCount                int64   `json:"estimated_trees"`
	CarbonSequestrationTonsPerYear float64 `json:"carbon_sequestration_tons_per_year"`
}

// SourceRef attributes a metric category to an upstream data source.
type SourceRef struct {
	Source          string `json:"source"`
	Description     string `json:"description"`
	APIURL          string `json:"api_url,omitempty"`
	Authentication  string `json:"authentication,omitempty"`
	UpdateFrequency string `json:"update_frequency,omitempty"`
	SecondarySource string `json:"secondary_source,omitempty"`
	LastUpdated     string `json:"last_updated,omitempty"`
}

// Attribution links a city's metrics to their sources.
type Attribution struct {
	GreenSpace *SourceRef `json:"green_space,omitempty"`
	Emissions  *SourceRef `json:"emissions,omitempty"`
}

// Empty reports whether no source is attached.
func (a *Attribution) Empty() bool {
	return a == nil || (a.GreenSpace == nil && a.Emissions == nil)
}

// City is one scored city.
type City struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Country         string            `json:"country"`
	Population      int64             `json:"population"`
	AreaKm2         float64           `json:"area_km2"`
	Coordinates     Coordinates       `json:"coordinates"`
	Emissions       EmissionsProfile  `json:"emissions"`
	Vegetation      VegetationProfile `json:"vegetation"`
	EcoBalanceScore float64           `json:"eco_balance_score"`
	ScoreRank       Rank              `json:"rank"`
	SDG13Score      float64           `json:"sdg13_alignment"`
	DataSources     *Attribution      `json:"data_sources,omitempty"`
}

// Band returns the band derived from the score, which may differ from the
// stored ScoreRank.
func (c *City) Band() Rank {
	return BandForScore(c.EcoBalanceScore)
}

// SectorShare is one entry of the sector breakdown.
type SectorShare struct {
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
}

// OrderedSectors returns the sector breakdown with well-known sectors first
// and any others sorted by name.
func (c *City) OrderedSectors() []SectorShare {
	out := make([]SectorShare, 0, len(c.Emissions.Sectors))
	for _, name := range sectorOrder {
		if pct, ok := c.Emissions.Sectors[name]; ok {
			out = append(out, SectorShare{Name: name, Percent: pct})
		}
	}

	var extra []string
	for name := range c.Emissions.Sectors {
		if !slices.Contains(sectorOrder, name) {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		out = append(out, SectorShare{Name: name, Percent: c.Emissions.Sectors[name]})
	}
	return out
}

// SequestrationPerThousand returns annual sequestration per 1,000 residents.
func (c *City) SequestrationPerThousand() float64 {
	if c.Population <= 0 {
		return 0
	}
	return c.Vegetation.CarbonSequestrationTonsPerYear / float64(c.Population) * 1000
}

// Clone returns a deep copy.
func (c *City) Clone() *City {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Emissions.Sectors = make(map[string]float64, len(c.Emissions.Sectors))
	for k, v := range c.Emissions.Sectors {
		cp.Emissions.Sectors[k] = v
	}
	if c.DataSources != nil {
		ds := Attribution{}
		if c.DataSources.GreenSpace != nil {
			gs := *c.DataSources.GreenSpace
			ds.GreenSpace = &gs
		}
		if c.DataSources.Emissions != nil {
			em := *c.DataSources.Emissions
			ds.Emissions = &em
		}
		cp.DataSources = &ds
	}
	return &cp
}

// ScoreBand is one row of the score interpretation table.
type ScoreBand struct {
	Range   string  `json:"range"`
	Rank    Rank    `json:"rank"`
	Min     float64 `json:"min"`
	Meaning string  `json:"meaning"`
}

// SourceCatalog lists the source names per metric category.
type SourceCatalog struct {
	Emissions           []string `json:"emissions"`
	Vegetation          []string `json:"vegetation"`
	CarbonSequestration []string `json:"carbon_sequestration"`
}

// Methodology describes how scores are computed and read.
type Methodology struct {
	Formula             string        `json:"eco_balance_formula"`
	SequestrationRate   string        `json:"carbon_sequestration_rate"`
	EmissionsMetric     string        `json:"emissions_metric"`
	ScoreInterpretation []ScoreBand   `json:"score_interpretation"`
	DataSources         SourceCatalog `json:"data_sources"`
}
