// Package worker runs data refreshes requested over Pub/Sub.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ecobalance/ecobalance/internal/metrics"
)

// Job types.
const (
	JobDataRefresh = "data_refresh"
	JobHealthCheck = "health_check"
)

// RefreshMessage is the body of a refresh job.
type RefreshMessage struct {
	JobType     string    `json:"job_type"`
	Source      string    `json:"source,omitempty"`
	RequestedAt time.Time `json:"requested_at,omitempty"`
}

// Refresher reloads the data and every derived view.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Processor decides the outcome of one message.
type Processor struct {
	refresher Refresher
	timeout   time.Duration
	logger    zerolog.Logger
}

// NewProcessor creates a processor. timeout bounds one refresh; zero means
// 30 seconds.
func NewProcessor(refresher Refresher, timeout time.Duration, logger zerolog.Logger) *Processor {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Processor{refresher: refresher, timeout: timeout, logger: logger}
}

// Process handles a raw message and reports whether it should be acked.
// Malformed and unknown messages are acked so they are not redelivered; a
// failed refresh is nacked and retried.
func (p *Processor) Process(ctx context.Context, data []byte) (ack bool, err error) {
	var msg RefreshMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		metrics.WorkerJobsTotal.WithLabelValues("malformed", "dropped").Inc()
		p.logger.Warn().Err(err).Msg("dropping malformed message")
		return true, nil
	}

	switch msg.JobType {
	case JobDataRefresh:
		ctx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()
		if err := p.refresher.Refresh(ctx); err != nil {
			metrics.WorkerJobsTotal.WithLabelValues(msg.JobType, "error").Inc()
			return false, fmt.Errorf("refresh from %q: %w", msg.Source, err)
		}
	case JobHealthCheck:
		p.logger.Debug().Msg("health check received")
	default:
		metrics.WorkerJobsTotal.WithLabelValues("unknown", "dropped").Inc()
		p.logger.Warn().Str("job_type", msg.JobType).Msg("unknown job type")
		return true, nil
	}

	metrics.WorkerJobsTotal.WithLabelValues(msg.JobType, "ok").Inc()
	return true, nil
}
