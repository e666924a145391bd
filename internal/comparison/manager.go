package comparison

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ecobalance/ecobalance/internal/city"
	"github.com/ecobalance/ecobalance/internal/metrics"
)

// Source provides the city collection.
type Source interface {
	Cities() []*city.City
	CityByID(id string) (*city.City, bool)
}

// Option is one selectable city.
type Option struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Selection is the pair of chosen ids.
type Selection struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// Manager keeps the selectable cities and the last comparison.
type Manager struct {
	source Source
	logger zerolog.Logger

	mu        sync.RWMutex
	options   []Option
	selection Selection
	last      Result
}

// NewManager creates a comparison manager.
func NewManager(source Source, logger zerolog.Logger) *Manager {
	return &Manager{source: source, logger: logger, last: Guidance()}
}

func (m *Manager) Name() string { return "comparison" }

// Initialize fills the selectable options.
func (m *Manager) Initialize(ctx context.Context) error {
	return m.Update(ctx)
}

// Update re-derives the options and re-runs the last selection against the
// current data.
func (m *Manager) Update(context.Context) error {
	cities := m.source.Cities()
	opts := make([]Option, 0, len(cities))
	for _, c := range cities {
		opts = append(opts, Option{ID: c.ID, Name: c.Name})
	}

	m.mu.Lock()
	m.options = opts
	sel := m.selection
	m.mu.Unlock()

	if sel != (Selection{}) {
		m.Select(sel.Left, sel.Right)
	}
	return nil
}

// Options returns the selectable cities in collection order.
func (m *Manager) Options() []Option {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Option(nil), m.options...)
}

// Select compares the cities with the given ids and remembers the pair.
func (m *Manager) Select(leftID, rightID string) Result {
	res := m.resolve(leftID, rightID)
	metrics.ComparisonsTotal.WithLabelValues(string(res.State)).Inc()

	m.mu.Lock()
	m.selection = Selection{Left: leftID, Right: rightID}
	m.last = res
	m.mu.Unlock()
	return res
}

func (m *Manager) resolve(leftID, rightID string) Result {
	if leftID == "" || rightID == "" || leftID == rightID {
		return Guidance()
	}
	left, okL := m.source.CityByID(leftID)
	right, okR := m.source.CityByID(rightID)
	if !okL || !okR {
		m.logger.Debug().Str("left", leftID).Str("right", rightID).Msg("comparison city not found")
		return NotFound()
	}
	return Compare(left, right)
}

// Last returns the last comparison and its selection.
func (m *Manager) Last() (Selection, Result) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.selection, m.last
}
