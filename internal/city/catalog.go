package city

type seed struct {
	id, name, country string
	population        int64
	area              float64
	lat, lng          float64
	totalCO2          float64
	perCapita         float64
	sectors           [4]float64 // transport, buildings, industrial, waste
	canopy, green     float64
	parks             float64
	trees             int64
	sequestration     float64
	score             float64
	rank              Rank
	sdg13             float64
}

var seeds = []seed{
	{"singapore", "Singapore", "Singapore", 5896000, 728, 1.3521, 103.8198, 32000000, 5.4, [4]float64{40, 30, 25, 5}, 47, 47, 80, 3200000, 52000, 1.63, RankExcellent, 92},
	{"nyc", "New York City", "United States", 8336817, 789, 40.7128, -74.0060, 54000000, 6.5, [4]float64{45, 35, 15, 5}, 24, 27, 134, 5200000, 48000, 0.89, RankGood, 75},
	{"london", "London", "United Kingdom", 9540576, 1572, 51.5074, -0.1278, 38000000, 4.0, [4]float64{35, 40, 20, 5}, 33, 38, 210, 7200000, 78000, 2.05, RankExcellent, 88},
	{"paris", "Paris", "France", 2161000, 105, 48.8566, 2.3522, 12500000, 5.8, [4]float64{38, 42, 15, 5}, 23, 25, 26, 200000, 18500, 0.61, RankFair, 78},
	{"barcelona", "Barcelona", "Spain", 1636000, 101, 41.3851, 2.1734, 8200000, 5.0, [4]float64{42, 35, 18, 5}, 21, 28, 28, 180000, 16800, 0.82, RankGood, 82},
	{"berlin", "Berlin", "Germany", 3677000, 892, 52.5200, 13.4050, 20100000, 5.5, [4]float64{35, 45, 15, 5}, 30, 44, 392, 2800000, 58800, 1.46, RankGood, 85},
	{"madrid", "Madrid", "Spain", 3223000, 604, 40.4168, -3.7038, 18500000, 5.7, [4]float64{40, 38, 17, 5}, 26, 35, 211, 1800000, 42300, 1.31, RankGood, 79},
	{"amsterdam", "Amsterdam", "Netherlands", 873000, 219, 52.3676, 4.9041, 4800000, 5.5, [4]float64{45, 35, 15, 5}, 20, 30, 66, 220000, 19800, 0.82, RankGood, 87},
	{"rome", "Rome", "Italy", 2873000, 1285, 41.9028, 12.4964, 16800000, 5.8, [4]float64{43, 32, 20, 5}, 19, 34, 437, 1200000, 52200, 1.57, RankExcellent, 76},
}

// Catalog returns a fresh copy of the built-in city catalog in display
// order. Attribution is never set.
func Catalog() []*City {
	out := make([]*City, 0, len(seeds))
	for _, s := range seeds {
		out = append(out, &City{
			ID:          s.id,
			Name:        s.name,
			Country:     s.country,
			Population:  s.population,
			AreaKm2:     s.area,
			Coordinates: Coordinates{Lat: s.lat, Lng: s.lng},
			Emissions: EmissionsProfile{
				TotalCO2TonsPerYear: s.totalCO2,
				PerCapitaTons:       s.perCapita,
				Sectors: map[string]float64{
					SectorTransport:  s.sectors[0],
					SectorBuildings:  s.sectors[1],
					SectorIndustrial: s.sectors[2],
					SectorWaste:      s.sectors[3],
				},
			},
			Vegetation: VegetationProfile{
				TreeCanopyPercent:              s.canopy,
				GreenSpacePercent:              s.green,
				ParksAreaKm2:                   s.parks,
				UrbanTreesCount:                s.trees,
				CarbonSequestrationTonsPerYear: s.sequestration,
			},
			EcoBalanceScore: s.score,
			ScoreRank:       s.rank,
			SDG13Score:      s.sdg13,
		})
	}
	return out
}

// DefaultSourceCatalog returns the source names behind each metric category.
func DefaultSourceCatalog() SourceCatalog {
	return SourceCatalog{
		Emissions:           []string{"Climate TRACE API", "Municipal GHG inventories"},
		Vegetation:          []string{"HUGSI satellite data", "i-Tree assessments", "OpenStreetMap"},
		CarbonSequestration: []string{"Scientific literature", "i-Tree Eco calculations"},
	}
}

// DefaultMethodology returns the scoring methodology.
func DefaultMethodology() Methodology {
	return Methodology{
		Formula:           "Carbon Sequestration Rate / Emissions Per Capita",
		SequestrationRate: "tonnes CO2/year per km2 of green space",
		EmissionsMetric:   "tonnes CO2 per capita per year",
		ScoreInterpretation: []ScoreBand{
			{Range: "0.0-0.5", Rank: RankPoor, Min: 0, Meaning: "Poor - High emissions, low carbon absorption"},
			{Range: "0.5-1.0", Rank: RankFair, Min: ThresholdFair, Meaning: "Fair - Moderate balance"},
			{Range: "1.0-1.5", Rank: RankGood, Min: ThresholdGood, Meaning: "Good - Positive environmental impact"},
			{Range: "1.5+", Rank: RankExcellent, Min: ThresholdExcellent, Meaning: "Excellent - Strong carbon positive"},
		},
		DataSources: DefaultSourceCatalog(),
	}
}
