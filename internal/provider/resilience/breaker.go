// Package resilience wraps outbound HTTP calls to upstream data feeds with a
// circuit breaker, bounded retries and health tracking.
package resilience

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// BreakerConfig configures the circuit breaker of a feed client.
type BreakerConfig struct {
	// MaxRequests allowed while half-open. Default: 1
	MaxRequests uint32

	// Interval clears counts while closed. Zero keeps them until a state change.
	Interval time.Duration

	// OpenTimeout is how long the breaker stays open. Default: 30 seconds
	OpenTimeout time.Duration

	// ReadyToTrip decides when to open. Default: TripOnFailureRatio(5, 0.5)
	ReadyToTrip func(counts gobreaker.Counts) bool
}

// TripOnFailureRatio opens the breaker once at least minRequests were made
// and the failure ratio reached ratio.
func TripOnFailureRatio(minRequests uint32, ratio float64) func(gobreaker.Counts) bool {
	return func(counts gobreaker.Counts) bool {
		if counts.Requests < minRequests {
			return false
		}
		return float64(counts.TotalFailures)/float64(counts.Requests) >= ratio
	}
}

func newBreaker[T any](name string, cfg BreakerConfig, logger zerolog.Logger) *gobreaker.CircuitBreaker[T] {
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 1
	}
	if cfg.OpenTimeout == 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if cfg.ReadyToTrip == nil {
		cfg.ReadyToTrip = TripOnFailureRatio(5, 0.5)
	}

	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: cfg.ReadyToTrip,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("feed", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})
}
