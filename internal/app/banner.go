package app

import (
	"sync"
	"time"
)

// Banner messages.
const (
	MessageStartFailed   = "Failed to load the application. Please refresh the page."
	MessageRefreshFailed = "Failed to refresh data. Please try again."
)

// DefaultBannerTTL is how long a banner stays up.
const DefaultBannerTTL = 10 * time.Second

// BannerState is what the error banner currently shows.
type BannerState struct {
	Visible   bool      `json:"visible"`
	Message   string    `json:"message,omitempty"`
	ShownAt   time.Time `json:"shown_at,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Banner is a single error message that hides itself after a TTL.
type Banner struct {
	ttl time.Duration

	mu    sync.Mutex
	state BannerState
	timer *time.Timer
	gen   uint64
}

// NewBanner creates a hidden banner.
func NewBanner(ttl time.Duration) *Banner {
	if ttl <= 0 {
		ttl = DefaultBannerTTL
	}
	return &Banner{ttl: ttl}
}

// Show replaces the message and restarts the countdown.
func (b *Banner) Show(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.timer != nil {
		b.timer.Stop()
	}
	b.gen++
	gen := b.gen
	now := time.Now()
	b.state = BannerState{Visible: true, Message: msg, ShownAt: now, ExpiresAt: now.Add(b.ttl)}
	b.timer = time.AfterFunc(b.ttl, func() { b.expire(gen) })
}

// expire hides the banner unless a newer message replaced it.
func (b *Banner) expire(gen uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.gen == gen {
		b.state = BannerState{}
		b.timer = nil
	}
}

// Dismiss hides the banner now.
func (b *Banner) Dismiss() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.gen++
	b.state = BannerState{}
}

// State returns the current banner.
func (b *Banner) State() BannerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
