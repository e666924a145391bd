// Package datastore owns the loaded city collection and its reference data.
package datastore

import (
	"context"
	"slices"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/ecobalance/ecobalance/internal/attribution"
	"github.com/ecobalance/ecobalance/internal/city"
	"github.com/ecobalance/ecobalance/internal/featureflags"
	"github.com/ecobalance/ecobalance/internal/metrics"
	"github.com/ecobalance/ecobalance/internal/telemetry"
)

// Origin tells where a snapshot's attribution came from.
type Origin string

const (
	OriginFeed     Origin = "feed"
	OriginFallback Origin = "fallback"
)

// Snapshot is an immutable loaded state. Callers must not modify the
// records it hands out.
type Snapshot struct {
	cities      []*city.City
	byID        map[string]*city.City
	methodology city.Methodology
	sources     city.SourceCatalog
	integration *attribution.Payload
	origin      Origin
	loadedAt    time.Time
	issues      []city.Issue
}

// Cities returns the collection in catalog order.
func (s *Snapshot) Cities() []*city.City {
	if s == nil {
		return []*city.City{}
	}
	return slices.Clone(s.cities)
}

// Origin returns where attribution came from.
func (s *Snapshot) Origin() Origin { return s.origin }

// LoadedAt returns the load time.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// Issues returns validation findings from the load.
func (s *Snapshot) Issues() []city.Issue { return s.issues }

// Outcome summarizes a Load call.
type Outcome struct {
	Origin   Origin
	Cities   int
	Matched  int
	Err      error // cause of a fallback, nil otherwise
	Duration time.Duration
}

// Config holds configuration for the store.
type Config struct {
	Source attribution.Source
	Flags  *featureflags.Service
	Logger zerolog.Logger

	// Catalog overrides the built-in catalog.
	Catalog func() []*city.City
}

// Store holds the current snapshot. Loads replace it atomically so readers
// see either the old or the new state.
type Store struct {
	source  attribution.Source
	flags   *featureflags.Service
	logger  zerolog.Logger
	catalog func() []*city.City

	current atomic.Pointer[Snapshot]
}

// New creates an empty store.
func New(cfg Config) *Store {
	if cfg.Catalog == nil {
		cfg.Catalog = city.Catalog
	}
	return &Store{
		source:  cfg.Source,
		flags:   cfg.Flags,
		logger:  cfg.Logger,
		catalog: cfg.Catalog,
	}
}

// Load populates the store. It never fails: any problem with the attribution
// feed results in the built-in catalog without attribution.
func (s *Store) Load(ctx context.Context) Outcome {
	ctx, span := telemetry.StartSpan(ctx, "datastore.Load")
	defer span.End()

	start := time.Now()
	payload, err := s.fetch(ctx)

	snap := &Snapshot{
		cities:      s.catalog(),
		methodology: city.DefaultMethodology(),
		sources:     city.DefaultSourceCatalog(),
		origin:      OriginFallback,
		loadedAt:    time.Now(),
	}

	matched := 0
	if err == nil {
		snap.origin = OriginFeed
		snap.integration = payload
		matched = s.attach(snap.cities, payload)
	} else {
		s.logger.Warn().Err(err).Msg("attribution feed unavailable, using built-in catalog")
	}

	snap.byID = make(map[string]*city.City, len(snap.cities))
	for _, c := range snap.cities {
		snap.byID[c.ID] = c
	}
	snap.issues = city.Validate(snap.cities)
	for _, issue := range snap.issues {
		s.logger.Warn().Str("city", issue.CityID).Str("severity", string(issue.Severity)).Msg(issue.Message)
	}

	s.current.Store(snap)

	out := Outcome{
		Origin:   snap.origin,
		Cities:   len(snap.cities),
		Matched:  matched,
		Err:      err,
		Duration: time.Since(start),
	}

	metrics.DataLoadsTotal.WithLabelValues(string(out.Origin)).Inc()
	metrics.DataLoadDuration.Observe(out.Duration.Seconds())
	metrics.CitiesLoaded.Set(float64(out.Cities))

	s.logger.Info().
		Str("origin", string(out.Origin)).
		Int("cities", out.Cities).
		Int("attributed", out.Matched).
		Dur("duration", out.Duration).
		Msg("data store loaded")

	return out
}

func (s *Store) fetch(ctx context.Context) (*attribution.Payload, error) {
	if !s.flags.IsEnabled(ctx, featureflags.FlagAttributionFeed) {
		return nil, ErrFeedDisabled
	}
	if s.source == nil {
		return nil, ErrNoSource
	}
	return s.source.Fetch(ctx)
}

// attach sets attribution on cities whose display name matches a feed
// entry and returns how many matched.
func (s *Store) attach(cities []*city.City, payload *attribution.Payload) int {
	known := make(map[string]bool, len(cities))
	matched := 0
	for _, c := range cities {
		known[c.Name] = true
		if a := payload.Find(c.Name).Attribution(); a != nil {
			c.DataSources = a
			matched++
		}
	}
	for _, fc := range payload.Cities {
		if !known[fc.Name] {
			s.logger.Warn().Str("name", fc.Name).Msg("attribution entry matches no city")
		}
	}
	return matched
}

// Snapshot returns the current snapshot, nil before the first load.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Loaded reports whether a load has completed.
func (s *Store) Loaded() bool {
	return s.current.Load() != nil
}

// Cities returns the loaded collection, empty before the first load.
func (s *Store) Cities() []*city.City {
	return s.current.Load().Cities()
}

// CityByID looks up a city.
func (s *Store) CityByID(id string) (*city.City, bool) {
	snap := s.current.Load()
	if snap == nil {
		return nil, false
	}
	c, ok := snap.byID[id]
	return c, ok
}

// Methodology returns the scoring methodology, the default before load.
func (s *Store) Methodology() city.Methodology {
	if snap := s.current.Load(); snap != nil {
		return snap.methodology
	}
	return city.DefaultMethodology()
}

// DataSources returns the source catalog.
func (s *Store) DataSources() city.SourceCatalog {
	if snap := s.current.Load(); snap != nil {
		return snap.sources
	}
	return city.DefaultSourceCatalog()
}

// Integration returns the raw feed payload, nil when the last load fell
// back.
func (s *Store) Integration() *attribution.Payload {
	if snap := s.current.Load(); snap != nil {
		return snap.integration
	}
	return nil
}
