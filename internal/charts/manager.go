package charts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ecobalance/ecobalance/internal/city"
	"github.com/ecobalance/ecobalance/internal/events"
	"github.com/ecobalance/ecobalance/internal/featureflags"
	"github.com/ecobalance/ecobalance/internal/metrics"
)

var (
	// ErrNotRendered is returned when a chart has no current image.
	ErrNotRendered = errors.New("chart not rendered")

	// ErrNotInChart is returned when selecting a city the charts do not show.
	ErrNotInChart = errors.New("city not in chart")
)

// Source provides the city collection.
type Source interface {
	Cities() []*city.City
}

// Config holds configuration for the chart manager.
type Config struct {
	Source Source
	Flags  *featureflags.Service
	Select *events.Topic[string]
	Size   Size
	Logger zerolog.Logger
}

// Manager keeps the current series and their rendered images.
type Manager struct {
	source Source
	flags  *featureflags.Service
	sel    *events.Topic[string]
	logger zerolog.Logger

	mu     sync.RWMutex
	size   Size
	series *Series
	images map[Kind][]byte
}

// NewManager creates a chart manager.
func NewManager(cfg Config) *Manager {
	if cfg.Size.Width == 0 || cfg.Size.Height == 0 {
		cfg.Size = DefaultSize
	}
	return &Manager{
		source: cfg.Source,
		flags:  cfg.Flags,
		sel:    cfg.Select,
		logger: cfg.Logger,
		size:   cfg.Size,
		images: make(map[Kind][]byte),
	}
}

func (m *Manager) Name() string { return "charts" }

// Initialize derives and renders both charts.
func (m *Manager) Initialize(ctx context.Context) error {
	return m.Update(ctx)
}

// Update re-derives the series and re-renders the images.
func (m *Manager) Update(ctx context.Context) error {
	s := Project(m.source.Cities())

	m.mu.Lock()
	defer m.mu.Unlock()
	m.series = &s
	return m.renderLocked(ctx)
}

// Resize changes the image size and re-renders.
func (m *Manager) Resize(ctx context.Context, size Size) error {
	if size.Width <= 0 || size.Height <= 0 {
		return fmt.Errorf("invalid chart size %dx%d", size.Width, size.Height)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.size = size
	if m.series == nil {
		return nil
	}
	return m.renderLocked(ctx)
}

// Destroy releases the series and images. It is safe to call repeatedly.
func (m *Manager) Destroy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.series = nil
	m.images = make(map[Kind][]byte)
}

// Series returns the current series, nil before Initialize or after Destroy.
func (m *Manager) Series() *Series {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.series
}

// Size returns the current image size.
func (m *Manager) Size() Size {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.size
}

// SVG returns the rendered image of kind.
func (m *Manager) SVG(kind Kind) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	img, ok := m.images[kind]
	if !ok {
		return nil, ErrNotRendered
	}
	return img, nil
}

// Select announces a city picked from a chart.
func (m *Manager) Select(id string) error {
	s := m.Series()
	if s == nil {
		return ErrNotRendered
	}
	for _, v := range s.Scores.IDs {
		if v == id {
			if m.sel != nil {
				m.sel.Publish(id)
			}
			return nil
		}
	}
	return ErrNotInChart
}

func (m *Manager) renderLocked(ctx context.Context) error {
	m.images = make(map[Kind][]byte)
	if !m.flags.IsEnabled(ctx, featureflags.FlagChartRendering) {
		return nil
	}

	renders := map[Kind]func(*bytes.Buffer) error{
		KindScores:    func(b *bytes.Buffer) error { return RenderScores(b, m.series.Scores, m.size) },
		KindEmissions: func(b *bytes.Buffer) error { return RenderEmissions(b, m.series.Emissions, m.size) },
	}
	for _, kind := range Kinds {
		var buf bytes.Buffer
		err := renders[kind](&buf)
		switch {
		case errors.Is(err, ErrNoData):
			metrics.ChartRendersTotal.WithLabelValues(string(kind), "skipped").Inc()
			m.logger.Debug().Str("chart", string(kind)).Msg("chart skipped, not enough data")
		case err != nil:
			metrics.ChartRendersTotal.WithLabelValues(string(kind), "error").Inc()
			return fmt.Errorf("render %s chart: %w", kind, err)
		default:
			metrics.ChartRendersTotal.WithLabelValues(string(kind), "ok").Inc()
			m.images[kind] = buf.Bytes()
		}
	}
	return nil
}
