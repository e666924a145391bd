package models

import (
	"time"

	"github.com/ecobalance/ecobalance/internal/charts"
	"github.com/ecobalance/ecobalance/internal/city"
	"github.com/ecobalance/ecobalance/internal/featureflags"
)

// CityList is the body of GET /v1/cities.
type CityList struct {
	Cities []*city.City `json:"cities"`
	Origin string       `json:"origin"`
	Count  int          `json:"count"`
}

// NavigationRequest switches the current view.
type NavigationRequest struct {
	View string `json:"view"`
}

// NavigationState is the current view and the views that exist.
type NavigationState struct {
	Current string   `json:"current"`
	Views   []string `json:"views"`
}

// RefreshResponse reports a completed refresh.
type RefreshResponse struct {
	Origin      string    `json:"origin"`
	CitiesCount int       `json:"citiesCount"`
	RefreshedAt time.Time `json:"refreshedAt"`
}

// FlagsUpdate sets boolean feature flags by key.
type FlagsUpdate struct {
	Flags map[string]bool `json:"flags"`
}

// FlagList is the body of GET /v1/flags.
type FlagList struct {
	Flags []*featureflags.Flag `json:"flags"`
}

// ChartIndex lists the chart series and the image URL per kind.
type ChartIndex struct {
	Series *charts.Series    `json:"series"`
	Images map[string]string `json:"images"`
	Width  int               `json:"width"`
	Height int               `json:"height"`
}
