package sources

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/ecobalance/ecobalance/internal/attribution"
	"github.com/ecobalance/ecobalance/internal/city"
	"github.com/ecobalance/ecobalance/internal/featureflags"
)

// ErrDemoDisabled is returned when the api_demo flag is off.
var ErrDemoDisabled = errors.New("api demo disabled")

// Source provides the loaded data.
type Source interface {
	Cities() []*city.City
	Methodology() city.Methodology
	Integration() *attribution.Payload
}

// View is the data sources projection.
type View struct {
	Cards       []Card      `json:"cards"`
	Methodology Methodology `json:"methodology"`
	Integrated  bool        `json:"integrated"`
}

// Config holds configuration for the sources manager.
type Config struct {
	Source      Source
	Flags       *featureflags.Service
	DemoLatency time.Duration
	Logger      zerolog.Logger
}

// Manager keeps the data sources projection.
type Manager struct {
	source  Source
	flags   *featureflags.Service
	latency time.Duration
	logger  zerolog.Logger
	view    atomic.Pointer[View]
}

// NewManager creates a sources manager.
func NewManager(cfg Config) *Manager {
	return &Manager{
		source:  cfg.Source,
		flags:   cfg.Flags,
		latency: cfg.DemoLatency,
		logger:  cfg.Logger,
	}
}

func (m *Manager) Name() string { return "sources" }

// Initialize derives the first projection.
func (m *Manager) Initialize(ctx context.Context) error {
	return m.Update(ctx)
}

// Update re-derives the projection.
func (m *Manager) Update(context.Context) error {
	p := m.source.Integration()
	v := &View{
		Cards:       Cards(p),
		Methodology: MethodologyView(m.source.Methodology()),
		Integrated:  p != nil,
	}
	m.view.Store(v)
	m.logger.Debug().Int("cards", len(v.Cards)).Bool("integrated", v.Integrated).Msg("data sources updated")
	return nil
}

// View returns the current projection.
func (m *Manager) View() *View {
	if v := m.view.Load(); v != nil {
		return v
	}
	return &View{Cards: []Card{}, Methodology: MethodologyView(city.DefaultMethodology())}
}

// Demo runs the sample API fetch.
func (m *Manager) Demo(ctx context.Context) (*DemoResponse, error) {
	if !m.flags.IsEnabled(ctx, featureflags.FlagAPIDemo) {
		return nil, ErrDemoDisabled
	}
	return Demo(ctx, m.source.Cities(), m.source.Integration(), m.latency, nil)
}
