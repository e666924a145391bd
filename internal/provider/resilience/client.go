package resilience

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

var (
	// ErrCircuitOpen is returned without contacting the feed while the breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker is open")

	// ErrUnexpectedStatus is returned for non-200 responses.
	ErrUnexpectedStatus = errors.New("unexpected status")
)

// maxBody caps feed payloads.
const maxBody = 4 << 20

// ClientConfig configures a feed client.
type ClientConfig struct {
	// Name identifies the feed in logs and health reports.
	Name string

	// Timeout per attempt. Default: 10 seconds
	Timeout time.Duration

	// MaxRetries after the first attempt. Negative disables retries. Default: 2
	MaxRetries int

	// InitialInterval of the exponential backoff. Default: 200ms
	InitialInterval time.Duration

	// MaxInterval of the exponential backoff. Default: 2 seconds
	MaxInterval time.Duration

	Breaker BreakerConfig

	// Registry receives health updates when set.
	Registry *Registry

	Logger zerolog.Logger
}

// Client is an HTTP client guarded by a circuit breaker with retries.
type Client struct {
	name       string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	cfg        ClientConfig
}

// NewClient creates a feed client and registers it with cfg.Registry.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Name == "" {
		cfg.Name = "feed"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 2
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 200 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 2 * time.Second
	}

	c := &Client{
		name:       cfg.Name,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    newBreaker[*http.Response](cfg.Name, cfg.Breaker, cfg.Logger), //nolint:bodyclose // type param
		cfg:        cfg,
	}
	if cfg.Registry != nil {
		cfg.Registry.Register(c)
	}
	return c
}

// Name returns the feed name.
func (c *Client) Name() string {
	return c.name
}

// State returns the breaker state.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

// Counts returns the breaker counters.
func (c *Client) Counts() gobreaker.Counts {
	return c.breaker.Counts()
}

// Do executes req, retrying network errors and 5xx responses with
// exponential backoff. A 5xx response that survives all retries is returned
// with a nil error so the caller can inspect it.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.InitialInterval
	bo.MaxInterval = c.cfg.MaxInterval
	bo.MaxElapsedTime = 0

	var policy backoff.BackOff = &backoff.StopBackOff{}
	if c.cfg.MaxRetries > 0 {
		policy = backoff.WithMaxRetries(bo, uint64(c.cfg.MaxRetries))
	}

	var last *http.Response
	attempt := func() error {
		if last != nil {
			last.Body.Close()
			last = nil
		}

		resp, err := c.breaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // closed by caller
			r, err := c.httpClient.Do(req.Clone(ctx))
			if err != nil {
				return nil, err
			}
			if r.StatusCode >= http.StatusInternalServerError {
				return r, fmt.Errorf("%w: %d", ErrUnexpectedStatus, r.StatusCode)
			}
			return r, nil
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return backoff.Permanent(ErrCircuitOpen)
		}
		last = resp
		return err
	}

	notify := func(err error, wait time.Duration) {
		c.cfg.Logger.Debug().Err(err).Str("feed", c.name).Dur("wait", wait).Msg("retrying feed request")
	}

	err := backoff.RetryNotify(attempt, backoff.WithContext(policy, ctx), notify)
	c.record(err)
	if err != nil && last == nil {
		return nil, err
	}
	return last, nil
}

// GetJSON fetches url and decodes a 200 response body into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
		c.record(err)
		return err
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(v); err != nil {
		err = fmt.Errorf("decode %s response: %w", c.name, err)
		c.record(err)
		return err
	}
	return nil
}

func (c *Client) record(err error) {
	if c.cfg.Registry == nil {
		return
	}
	if err != nil {
		c.cfg.Registry.RecordFailure(c.name, err)
		return
	}
	c.cfg.Registry.RecordSuccess(c.name)
}
