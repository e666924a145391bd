package sources

import (
	"context"
	"strconv"
	"time"

	"github.com/ecobalance/ecobalance/internal/attribution"
	"github.com/ecobalance/ecobalance/internal/city"
)

// Defaults when the feed does not name itself.
const (
	DefaultProject = "EcoBalance Score System"
	DefaultVersion = "2.0"
)

// GreenSpaceResponse is the sample green space API answer.
type GreenSpaceResponse struct {
	Source      string                 `json:"source"`
	Endpoint    string                 `json:"endpoint,omitempty"`
	Status      string                 `json:"status"`
	Data        GreenSpaceMeasurements `json:"data"`
	RetrievedAt time.Time              `json:"retrieved_at"`
}

// GreenSpaceMeasurements are the vegetation figures echoed by the sample.
type GreenSpaceMeasurements struct {
	TreeCanopyPercent float64 `json:"tree_canopy_percent"`
	GreenSpacePercent float64 `json:"green_space_percent"`
	ParksAreaKm2      float64 `json:"parks_area_km2"`
	UrbanTreesCount   int64   `json:"estimated_trees"`
}

// EmissionsResponse is the sample emissions API answer.
type EmissionsResponse struct {
	Source      string                `json:"source"`
	Endpoint    string                `json:"endpoint,omitempty"`
	Status      string                `json:"status"`
	Data        EmissionsMeasurements `json:"data"`
	RetrievedAt time.Time             `json:"retrieved_at"`
}

// EmissionsMeasurements are the emission figures echoed by the sample.
type EmissionsMeasurements struct {
	TotalCO2TonsPerYear float64            `json:"total_co2_tons_per_year"`
	PerCapitaTons       float64            `json:"per_capita_tons"`
	Sectors             map[string]float64 `json:"sectors"`
}

// CalculatedMetrics are derived values for one city.
type CalculatedMetrics struct {
	EcoBalanceScore     float64   `json:"eco_balance_score"`
	ScoreRank           city.Rank `json:"rank"`
	CarbonSequestration float64   `json:"carbon_sequestration_tons_per_year"`
	SDG13Score          float64   `json:"sdg13_alignment"`
}

// CityFetch is the sample fetch result of one city.
type CityFetch struct {
	CityID            string              `json:"city_id"`
	CityName          string              `json:"city_name"`
	GreenSpaceAPI     *GreenSpaceResponse `json:"green_space_api,omitempty"`
	EmissionsAPI      *EmissionsResponse  `json:"emissions_api,omitempty"`
	CalculatedMetrics CalculatedMetrics   `json:"calculated_metrics"`
}

// DemoSummary aggregates the sample.
type DemoSummary struct {
	CitiesProcessed    int     `json:"cities_processed"`
	TotalEmissions     float64 `json:"total_emissions"`
	TotalSequestration float64 `json:"total_sequestration"`
	AverageScore       string  `json:"average_score"`
}

// DemoResponse is the sample API fetch document.
type DemoResponse struct {
	Timestamp          time.Time   `json:"api_call_timestamp"`
	Project            string      `json:"project"`
	Version            string      `json:"version"`
	DataSourcesFetched []CityFetch `json:"data_sources_fetched"`
	Summary            DemoSummary `json:"summary"`
}

// Demo builds the sample fetch for every city with attribution. The summary
// covers the whole collection. The latency delay imitates a remote call and
// honors ctx.
func Demo(ctx context.Context, cities []*city.City, p *attribution.Payload, latency time.Duration, now func() time.Time) (*DemoResponse, error) {
	if latency > 0 {
		t := time.NewTimer(latency)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
	if now == nil {
		now = time.Now
	}
	ts := now().UTC()

	resp := &DemoResponse{
		Timestamp:          ts,
		Project:            DefaultProject,
		Version:            DefaultVersion,
		DataSourcesFetched: []CityFetch{},
	}
	if p != nil {
		if p.Project != "" {
			resp.Project = p.Project
		}
		if p.Version != "" {
			resp.Version = p.Version
		}
	}

	var scoreSum float64
	for _, c := range cities {
		resp.Summary.TotalEmissions += c.Emissions.TotalCO2TonsPerYear
		resp.Summary.TotalSequestration += c.Vegetation.CarbonSequestrationTonsPerYear
		scoreSum += c.EcoBalanceScore

		if c.DataSources.Empty() {
			continue
		}
		f := CityFetch{
			CityID:   c.ID,
			CityName: c.Name,
			CalculatedMetrics: CalculatedMetrics{
				EcoBalanceScore:     c.EcoBalanceScore,
				ScoreRank:           c.ScoreRank,
				CarbonSequestration: c.Vegetation.CarbonSequestrationTonsPerYear,
				SDG13Score:          c.SDG13Score,
			},
		}
		if gs := c.DataSources.GreenSpace; gs != nil {
			f.GreenSpaceAPI = &GreenSpaceResponse{
				Source:   gs.Source,
				Endpoint: gs.APIURL,
				Status:   "success",
				Data: GreenSpaceMeasurements{
					TreeCanopyPercent: c.Vegetation.TreeCanopyPercent,
					GreenSpacePercent: c.Vegetation.GreenSpacePercent,
					ParksAreaKm2:      c.Vegetation.ParksAreaKm2,
					UrbanTreesCount:   c.Vegetation.UrbanTreesCount,
				},
				RetrievedAt: ts,
			}
		}
		if em := c.DataSources.Emissions; em != nil {
			f.EmissionsAPI = &EmissionsResponse{
				Source:   em.Source,
				Endpoint: em.APIURL,
				Status:   "success",
				Data: EmissionsMeasurements{
					TotalCO2TonsPerYear: c.Emissions.TotalCO2TonsPerYear,
					PerCapitaTons:       c.Emissions.PerCapitaTons,
					Sectors:             c.Emissions.Sectors,
				},
				RetrievedAt: ts,
			}
		}
		resp.DataSourcesFetched = append(resp.DataSourcesFetched, f)
	}

	n := len(cities)
	resp.Summary.CitiesProcessed = n
	avg := 0.0
	if n > 0 {
		avg = scoreSum / float64(n)
	}
	resp.Summary.AverageScore = strconv.FormatFloat(avg, 'f', 2, 64)
	return resp, nil
}
