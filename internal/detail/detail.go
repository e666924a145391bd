// Package detail holds the city detail view opened by selecting a city.
package detail

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ecobalance/ecobalance/internal/city"
)

// ErrCityNotFound is returned when the selected id is not loaded.
var ErrCityNotFound = errors.New("city not found")

// Lookup resolves cities by id.
type Lookup interface {
	CityByID(id string) (*city.City, bool)
}

// View is an open city detail.
type View struct {
	City    *city.City         `json:"city"`
	Band    city.Rank          `json:"band"`
	Class   string             `json:"class"`
	Sectors []city.SectorShare `json:"sectors"`

	SequestrationPerThousand float64 `json:"sequestration_per_thousand"`
}

// Manager tracks the open detail view.
type Manager struct {
	lookup Lookup
	logger zerolog.Logger

	mu   sync.RWMutex
	open *View
}

// NewManager creates a detail manager.
func NewManager(lookup Lookup, logger zerolog.Logger) *Manager {
	return &Manager{lookup: lookup, logger: logger}
}

func (m *Manager) Name() string { return "detail" }

// Initialize starts with nothing open.
func (m *Manager) Initialize(context.Context) error {
	m.Close()
	return nil
}

// Update re-resolves the open city against reloaded data and closes the
// view if the city disappeared.
func (m *Manager) Update(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.open == nil {
		return nil
	}
	c, ok := m.lookup.CityByID(m.open.City.ID)
	if !ok {
		m.open = nil
		return nil
	}
	m.open = build(c)
	return nil
}

// Open shows the detail of id.
func (m *Manager) Open(id string) (*View, error) {
	c, ok := m.lookup.CityByID(id)
	if !ok {
		return nil, ErrCityNotFound
	}
	v := build(c)

	m.mu.Lock()
	m.open = v
	m.mu.Unlock()

	m.logger.Debug().Str("city", id).Msg("detail opened")
	return v, nil
}

// HandleSelected is a CitySelected listener.
func (m *Manager) HandleSelected(id string) {
	if _, err := m.Open(id); err != nil {
		m.logger.Warn().Err(err).Str("city", id).Msg("cannot open detail")
	}
}

// Close hides the detail.
func (m *Manager) Close() {
	m.mu.Lock()
	m.open = nil
	m.mu.Unlock()
}

// Current returns the open detail, nil when closed.
func (m *Manager) Current() *View {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.open
}

func build(c *city.City) *View {
	band := c.Band()
	return &View{
		City:                     c,
		Band:                     band,
		Class:                    band.Class(),
		Sectors:                  c.OrderedSectors(),
		SequestrationPerThousand: c.SequestrationPerThousand(),
	}
}
