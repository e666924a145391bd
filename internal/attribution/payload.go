// Package attribution loads the per-city data source attribution feed.
package attribution

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/ecobalance/ecobalance/internal/city"
)

// ErrEmptyPayload is returned when the feed document is JSON null. A document
// with an empty or missing city list is valid and attributes nothing.
var ErrEmptyPayload = errors.New("attribution payload is empty")

// Payload is the attribution feed document.
type Payload struct {
	Project string     `json:"project,omitempty"`
	Version string     `json:"version,omitempty"`
	Cities  []FeedCity `json:"cities"`
}

// FeedCity is one city entry of the feed, keyed by display name.
type FeedCity struct {
	Name       string          `json:"name"`
	Country    string          `json:"country,omitempty"`
	GreenSpace *city.SourceRef `json:"green_space_data,omitempty"`
	Emissions  *city.SourceRef `json:"emissions_data,omitempty"`
}

// Attribution converts the entry to a city attribution, or nil when it
// carries no sources.
func (f *FeedCity) Attribution() *city.Attribution {
	if f == nil || (f.GreenSpace == nil && f.Emissions == nil) {
		return nil
	}
	a := &city.Attribution{}
	if f.GreenSpace != nil {
		gs := *f.GreenSpace
		a.GreenSpace = &gs
	}
	if f.Emissions != nil {
		em := *f.Emissions
		a.Emissions = &em
	}
	return a
}

// Find returns the first entry whose display name equals name.
func (p *Payload) Find(name string) *FeedCity {
	if p == nil {
		return nil
	}
	for i := range p.Cities {
		if p.Cities[i].Name == name {
			return &p.Cities[i]
		}
	}
	return nil
}

func decodePayload(data []byte) (*Payload, error) {
	var p *Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrEmptyPayload
	}
	return p, nil
}

// Source fetches the attribution payload.
type Source interface {
	Fetch(ctx context.Context) (*Payload, error)
	String() string
}
