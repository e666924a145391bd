// Package app coordinates loading, module lifecycle and refreshes of the
// EcoBalance dashboard.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/ecobalance/ecobalance/internal/charts"
	"github.com/ecobalance/ecobalance/internal/comparison"
	"github.com/ecobalance/ecobalance/internal/dashboard"
	"github.com/ecobalance/ecobalance/internal/datastore"
	"github.com/ecobalance/ecobalance/internal/detail"
	"github.com/ecobalance/ecobalance/internal/events"
	"github.com/ecobalance/ecobalance/internal/featureflags"
	"github.com/ecobalance/ecobalance/internal/metrics"
	"github.com/ecobalance/ecobalance/internal/navigation"
	"github.com/ecobalance/ecobalance/internal/preferences"
	"github.com/ecobalance/ecobalance/internal/sources"
	"github.com/ecobalance/ecobalance/internal/telemetry"
)

var (
	// ErrNotReady is returned by operations that need a started app.
	ErrNotReady = errors.New("application not ready")

	// ErrAlreadyStarted is returned by Start on a loading or ready app.
	ErrAlreadyStarted = errors.New("application already started")
)

// refreshTimeout bounds one shared refresh run.
const refreshTimeout = 2 * time.Minute

// State of the coordinator.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateLoading       State = "loading"
	StateReady         State = "ready"
	StateFailed        State = "failed"
)

// Module is a derived view with a lifecycle.
type Module interface {
	Name() string
	Initialize(ctx context.Context) error
	Update(ctx context.Context) error
}

// Config holds configuration for the coordinator.
type Config struct {
	Store       *datastore.Store
	Flags       *featureflags.Service
	Prefs       preferences.Store
	Logger      zerolog.Logger
	BannerTTL   time.Duration
	ChartSize   charts.Size
	DemoLatency time.Duration
}

// App wires the store, the event bus and the modules together.
type App struct {
	store  *datastore.Store
	flags  *featureflags.Service
	logger zerolog.Logger
	bus    *events.Bus
	banner *Banner

	nav        *navigation.Navigator
	detail     *detail.Manager
	dashboard  *dashboard.Manager
	comparison *comparison.Manager
	sources    *sources.Manager
	charts     *charts.Manager
	extra      []Module

	refreshes singleflight.Group

	mu          sync.RWMutex
	state       State
	lastRefresh time.Time
	unsubs      []func()
	initialized map[string]bool
}

// New builds the coordinator and its modules. Nothing is loaded until Start.
func New(cfg Config) *App {
	bus := events.NewBus(cfg.Logger)
	a := &App{
		store:  cfg.Store,
		flags:  cfg.Flags,
		logger: cfg.Logger,
		bus:    bus,
		banner: NewBanner(cfg.BannerTTL),
		state:  StateUninitialized,

		initialized: make(map[string]bool),
	}

	a.nav = navigation.New(navigation.Config{Topic: bus.ViewChanged, Prefs: cfg.Prefs, Flags: cfg.Flags, Logger: cfg.Logger})
	a.detail = detail.NewManager(cfg.Store, cfg.Logger)
	a.dashboard = dashboard.NewManager(cfg.Store, cfg.Logger)
	a.comparison = comparison.NewManager(cfg.Store, cfg.Logger)
	a.sources = sources.NewManager(sources.Config{Source: cfg.Store, Flags: cfg.Flags, DemoLatency: cfg.DemoLatency, Logger: cfg.Logger})
	a.charts = charts.NewManager(charts.Config{Source: cfg.Store, Flags: cfg.Flags, Select: bus.CitySelected, Size: cfg.ChartSize, Logger: cfg.Logger})
	return a
}

// Register adds a module initialized after the built-in ones and updated on
// every refresh. It must be called before Start.
func (a *App) Register(m Module) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.extra = append(a.extra, m)
}

func (a *App) startOrder() []Module {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]Module{a.nav, a.detail, a.dashboard, a.comparison, a.sources, a.charts}, a.extra...)
}

// refreshOrder leaves out navigation so the current view survives.
func (a *App) refreshOrder() []Module {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]Module{a.dashboard, a.charts, a.comparison, a.sources, a.detail}, a.extra...)
}

// Start loads the data and initializes every module. A module failure
// leaves the app failed with the start banner shown; the modules initialized
// before it keep serving.
func (a *App) Start(ctx context.Context) error {
	ctx, span := telemetry.StartSpan(ctx, "app.Start")
	defer span.End()

	a.mu.Lock()
	if a.state == StateLoading || a.state == StateReady {
		a.mu.Unlock()
		return ErrAlreadyStarted
	}
	a.state = StateLoading
	a.initialized = make(map[string]bool)
	a.mu.Unlock()

	a.subscribe()
	a.store.Load(ctx)

	for _, m := range a.startOrder() {
		if err := m.Initialize(ctx); err != nil {
			metrics.ModuleFailuresTotal.WithLabelValues(m.Name(), "initialize").Inc()
			a.logger.Error().Err(err).Str("module", m.Name()).Msg("module failed to initialize")
			a.setState(StateFailed)
			a.banner.Show(MessageStartFailed)
			return fmt.Errorf("initialize %s: %w", m.Name(), err)
		}
		a.mu.Lock()
		a.initialized[m.Name()] = true
		a.mu.Unlock()
	}

	a.mu.Lock()
	a.state = StateReady
	a.lastRefresh = time.Now()
	a.mu.Unlock()

	a.logger.Info().Int("cities", len(a.store.Cities())).Str("view", a.nav.Current()).Msg("application ready")
	return nil
}

func (a *App) subscribe() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, u := range a.unsubs {
		u()
	}
	a.unsubs = []func(){
		a.bus.CitySelected.Subscribe(a.detail.HandleSelected),
		a.bus.ViewChanged.Subscribe(func(view string) {
			a.logger.Debug().Str("view", view).Msg("view changed")
		}),
		a.bus.RefreshRequested.Subscribe(func(r events.Refresh) {
			if err := a.Refresh(context.Background()); err != nil {
				a.logger.Warn().Err(err).Str("source", r.Source).Msg("requested refresh failed")
			}
		}),
	}
}

// Refresh reloads the store and updates the modules. Concurrent calls share
// one run.
func (a *App) Refresh(ctx context.Context) error {
	if a.State() != StateReady {
		return ErrNotReady
	}
	_, err, shared := a.refreshes.Do("refresh", func() (any, error) {
		// Callers that join share this run, so it must outlive the first
		// caller's request.
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()
		return nil, a.refresh(rctx)
	})
	if shared {
		a.logger.Debug().Msg("joined in-flight refresh")
	}
	return err
}

func (a *App) refresh(ctx context.Context) error {
	ctx, span := telemetry.StartSpan(ctx, "app.Refresh")
	defer span.End()

	out := a.store.Load(ctx)

	for _, m := range a.refreshOrder() {
		if err := m.Update(ctx); err != nil {
			metrics.ModuleFailuresTotal.WithLabelValues(m.Name(), "update").Inc()
			metrics.RefreshTotal.WithLabelValues("error").Inc()
			a.logger.Error().Err(err).Str("module", m.Name()).Msg("module failed to update")
			a.banner.Show(MessageRefreshFailed)
			return fmt.Errorf("update %s: %w", m.Name(), err)
		}
	}

	a.mu.Lock()
	a.lastRefresh = time.Now()
	a.mu.Unlock()

	metrics.RefreshTotal.WithLabelValues("ok").Inc()
	a.bus.DataReloaded.Publish(string(out.Origin))
	a.logger.Info().Str("origin", string(out.Origin)).Msg("data refreshed")
	return nil
}

// RequestRefresh publishes a refresh request. The coordinator's own
// listener performs it.
func (a *App) RequestRefresh(source string) {
	a.bus.RefreshRequested.Publish(events.Refresh{Source: source})
}

// SelectCity announces a city selection.
func (a *App) SelectCity(id string) error {
	if !a.Initialized(a.detail.Name()) {
		return ErrNotReady
	}
	if _, ok := a.store.CityByID(id); !ok {
		return detail.ErrCityNotFound
	}
	a.bus.CitySelected.Publish(id)
	return nil
}

// ShowView switches the current view.
func (a *App) ShowView(ctx context.Context, view string) error {
	if !a.Initialized(a.nav.Name()) {
		return ErrNotReady
	}
	return a.nav.Show(ctx, view)
}

// Shutdown releases chart images, hides the banner and drops listeners.
func (a *App) Shutdown(context.Context) error {
	a.charts.Destroy()
	a.detail.Close()
	a.banner.Dismiss()

	a.mu.Lock()
	for _, u := range a.unsubs {
		u()
	}
	a.unsubs = nil
	a.state = StateUninitialized
	a.initialized = make(map[string]bool)
	a.mu.Unlock()

	a.logger.Info().Msg("application stopped")
	return nil
}

func (a *App) setState(s State) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
}

// Initialized reports whether the named module initialized during the last
// start. It stays true after a later module failed.
func (a *App) Initialized(name string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.initialized[name]
}

// Serving reports whether a start has loaded data, including a start that
// failed part way.
func (a *App) Serving() bool {
	st := a.State()
	return st == StateReady || st == StateFailed
}

// State returns the lifecycle state.
func (a *App) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// Status is a point-in-time summary of the app.
type Status struct {
	State       State            `json:"state"`
	Initialized bool             `json:"initialized"`
	DataLoaded  bool             `json:"data_loaded"`
	CitiesCount int              `json:"cities_count"`
	CurrentView string           `json:"current_view"`
	DataOrigin  datastore.Origin `json:"data_origin,omitempty"`
	LastRefresh time.Time        `json:"last_refresh"`
	Modules     []string         `json:"modules"`
}

// Status reports the current state.
func (a *App) Status() Status {
	a.mu.RLock()
	st := Status{
		State:       a.state,
		Initialized: a.state == StateReady,
		LastRefresh: a.lastRefresh,
		Modules:     []string{},
	}
	a.mu.RUnlock()

	for _, m := range a.startOrder() {
		if a.Initialized(m.Name()) {
			st.Modules = append(st.Modules, m.Name())
		}
	}

	st.DataLoaded = a.store.Loaded()
	st.CitiesCount = len(a.store.Cities())
	st.CurrentView = a.nav.Current()
	if snap := a.store.Snapshot(); snap != nil {
		st.DataOrigin = snap.Origin()
	}
	return st
}

// Accessors for the HTTP layer.

func (a *App) Store() *datastore.Store          { return a.store }
func (a *App) Flags() *featureflags.Service     { return a.flags }
func (a *App) Bus() *events.Bus                 { return a.bus }
func (a *App) Banner() *Banner                  { return a.banner }
func (a *App) Navigator() *navigation.Navigator { return a.nav }
func (a *App) Detail() *detail.Manager          { return a.detail }
func (a *App) Dashboard() *dashboard.Manager    { return a.dashboard }
func (a *App) Comparison() *comparison.Manager  { return a.comparison }
func (a *App) Sources() *sources.Manager        { return a.sources }
func (a *App) Charts() *charts.Manager          { return a.charts }
