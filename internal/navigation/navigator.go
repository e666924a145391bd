// Package navigation tracks which dashboard view is shown.
package navigation

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ecobalance/ecobalance/internal/events"
	"github.com/ecobalance/ecobalance/internal/featureflags"
	"github.com/ecobalance/ecobalance/internal/preferences"
)

// ErrUnknownView is returned for a view name that does not exist.
var ErrUnknownView = errors.New("unknown view")

// View names.
const (
	ViewDashboard   = "dashboard"
	ViewComparison  = "comparison"
	ViewDataSources = "data-sources"
	ViewMethodology = "methodology"
)

// Views lists the views in menu order.
var Views = []string{ViewDashboard, ViewComparison, ViewDataSources, ViewMethodology}

// Valid reports whether name is a known view.
func Valid(name string) bool {
	for _, v := range Views {
		if v == name {
			return true
		}
	}
	return false
}

// Config holds configuration for the navigator.
type Config struct {
	Topic  *events.Topic[string]
	Prefs  preferences.Store
	Flags  *featureflags.Service
	Logger zerolog.Logger
}

// Navigator holds the current view.
type Navigator struct {
	topic  *events.Topic[string]
	prefs  preferences.Store
	flags  *featureflags.Service
	logger zerolog.Logger

	mu      sync.RWMutex
	current string
}

// New creates a navigator showing the dashboard.
func New(cfg Config) *Navigator {
	return &Navigator{
		topic:   cfg.Topic,
		prefs:   cfg.Prefs,
		flags:   cfg.Flags,
		logger:  cfg.Logger,
		current: ViewDashboard,
	}
}

func (n *Navigator) Name() string { return "navigation" }

// Initialize restores the persisted view, or shows the dashboard.
func (n *Navigator) Initialize(ctx context.Context) error {
	view := ViewDashboard
	if n.persist(ctx) {
		stored, ok, err := n.prefs.Get(ctx, preferences.KeyCurrentView)
		switch {
		case err != nil:
			n.logger.Warn().Err(err).Msg("failed to restore view")
		case ok && Valid(stored):
			view = stored
		}
	}
	return n.Show(ctx, view)
}

// Update is a no-op. The current view survives data refreshes.
func (n *Navigator) Update(context.Context) error { return nil }

// Show switches to view and announces the change.
func (n *Navigator) Show(ctx context.Context, view string) error {
	if !Valid(view) {
		return ErrUnknownView
	}

	n.mu.Lock()
	n.current = view
	n.mu.Unlock()

	if n.persist(ctx) {
		if err := n.prefs.Set(ctx, preferences.KeyCurrentView, view); err != nil {
			n.logger.Warn().Err(err).Str("view", view).Msg("failed to persist view")
		}
	}
	if n.topic != nil {
		n.topic.Publish(view)
	}
	return nil
}

// Current returns the current view.
func (n *Navigator) Current() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.current
}

func (n *Navigator) persist(ctx context.Context) bool {
	return n.prefs != nil && n.flags.IsEnabled(ctx, featureflags.FlagPersistView)
}
