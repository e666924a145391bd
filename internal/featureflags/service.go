package featureflags

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ServiceConfig holds configuration for the feature flag service.
type ServiceConfig struct {
	Repository   Repository
	Logger       zerolog.Logger
	CacheTTL     time.Duration
	DefaultFlags map[string]*Flag
}

// Service evaluates flags with a short-lived cache and falls back to
// defaults when the repository misses.
type Service struct {
	repo         Repository
	logger       zerolog.Logger
	cacheTTL     time.Duration
	defaultFlags map[string]*Flag

	mu    sync.RWMutex
	cache map[string]cachedFlag
}

type cachedFlag struct {
	flag      *Flag
	expiresAt time.Time
}

// NewService creates a feature flag service. A nil repository gets an
// in-memory one.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Repository == nil {
		cfg.Repository = NewInMemoryRepository()
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 30 * time.Second
	}
	if cfg.DefaultFlags == nil {
		cfg.DefaultFlags = DefaultFlags()
	}
	return &Service{
		repo:         cfg.Repository,
		logger:       cfg.Logger,
		cacheTTL:     cfg.CacheTTL,
		defaultFlags: cfg.DefaultFlags,
		cache:        make(map[string]cachedFlag),
	}
}

// GetFlag returns the flag for key, or nil when neither the repository nor
// the defaults know it.
func (s *Service) GetFlag(ctx context.Context, key string) *Flag {
	s.mu.RLock()
	c, ok := s.cache[key]
	s.mu.RUnlock()
	if ok && time.Now().Before(c.expiresAt) {
		return c.flag
	}

	flag, err := s.repo.GetFlag(ctx, key)
	if err == nil {
		s.mu.Lock()
		s.cache[key] = cachedFlag{flag: flag, expiresAt: time.Now().Add(s.cacheTTL)}
		s.mu.Unlock()
		return flag
	}
	if !errors.Is(err, ErrFlagNotFound) {
		s.logger.Warn().Err(err).Str("flag", key).Msg("failed to get feature flag from repository")
	}
	return s.defaultFlags[key]
}

// ListFlags returns every known flag sorted by key, repository values over
// defaults.
func (s *Service) ListFlags(ctx context.Context) []*Flag {
	merged := make(map[string]*Flag, len(s.defaultFlags))
	for k, v := range s.defaultFlags {
		merged[k] = v
	}
	flags, err := s.repo.GetAllFlags(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to list feature flags, using defaults")
	}
	for k, v := range flags {
		merged[k] = v
	}

	out := make([]*Flag, 0, len(merged))
	for _, f := range merged {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// SetFlag stores a flag and refreshes its cache entry.
func (s *Service) SetFlag(ctx context.Context, flag *Flag) error {
	flag.UpdatedAt = time.Now()
	if err := s.repo.SetFlag(ctx, flag); err != nil {
		return err
	}
	s.mu.Lock()
	s.cache[flag.Key] = cachedFlag{flag: flag.clone(), expiresAt: time.Now().Add(s.cacheTTL)}
	s.mu.Unlock()

	s.logger.Info().Str("flag", flag.Key).Interface("value", flag.Value).Msg("feature flag updated")
	return nil
}

// Apply stores each override.
func (s *Service) Apply(ctx context.Context, overrides []*Flag) error {
	for _, f := range overrides {
		if err := s.SetFlag(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

// IsEnabled reports whether a boolean flag is on. A nil service enables
// everything.
func (s *Service) IsEnabled(ctx context.Context, key string) bool {
	if s == nil {
		return true
	}
	return s.GetFlag(ctx, key).BoolValue(false)
}
