package worker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecobalance/ecobalance/internal/metrics"
	"github.com/ecobalance/ecobalance/internal/worker"
)

type fakeRefresher struct {
	calls    int
	err      error
	deadline bool
}

func (f *fakeRefresher) Refresh(ctx context.Context) error {
	f.calls++
	_, f.deadline = ctx.Deadline()
	return f.err
}

func TestProcess_DataRefresh(t *testing.T) {
	r := &fakeRefresher{}
	p := worker.NewProcessor(r, time.Second, zerolog.Nop())
	ok := metrics.WorkerJobsTotal.WithLabelValues(worker.JobDataRefresh, "ok")
	before := testutil.ToFloat64(ok)

	ack, err := p.Process(context.Background(), []byte(`{"job_type":"data_refresh","source":"cli"}`))

	require.NoError(t, err)
	assert.True(t, ack)
	assert.Equal(t, 1, r.calls)
	assert.True(t, r.deadline)
	assert.Equal(t, before+1, testutil.ToFloat64(ok))
}

func TestProcess_RefreshFailureNacks(t *testing.T) {
	r := &fakeRefresher{err: errors.New("feed down")}
	p := worker.NewProcessor(r, 0, zerolog.Nop())

	ack, err := p.Process(context.Background(), []byte(`{"job_type":"data_refresh"}`))

	assert.False(t, ack)
	assert.ErrorIs(t, err, r.err)
}

func TestProcess_AcksWithoutRefresh(t *testing.T) {
	tests := map[string]string{
		"health check": `{"job_type":"health_check"}`,
		"unknown":      `{"job_type":"provider_refresh"}`,
		"malformed":    `{"job_type":`,
		"empty":        ``,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			r := &fakeRefresher{}
			ack, err := worker.NewProcessor(r, 0, zerolog.Nop()).Process(context.Background(), []byte(body))

			require.NoError(t, err)
			assert.True(t, ack)
			assert.Zero(t, r.calls)
		})
	}
}
