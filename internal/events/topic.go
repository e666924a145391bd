// Package events provides typed, synchronous publish/subscribe topics used
// to coordinate the dashboard modules.
package events

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/ecobalance/ecobalance/internal/metrics"
)

// Topic delivers values of type T to its listeners. Publish calls every
// listener synchronously in registration order. A panicking listener is
// logged and skipped.
type Topic[T any] struct {
	name   string
	logger zerolog.Logger

	mu        sync.RWMutex
	nextID    uint64
	listeners []listener[T]
}

type listener[T any] struct {
	id uint64
	fn func(T)
}

// NewTopic creates a topic.
func NewTopic[T any](name string, logger zerolog.Logger) *Topic[T] {
	return &Topic[T]{name: name, logger: logger}
}

// Name returns the topic name.
func (t *Topic[T]) Name() string { return t.name }

// Subscribe registers fn and returns a function that removes it. Calling the
// returned function more than once is harmless.
func (t *Topic[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	t.mu.Lock()
	t.nextID++
	id := t.nextID
	t.listeners = append(t.listeners, listener[T]{id: id, fn: fn})
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			for i, l := range t.listeners {
				if l.id == id {
					t.listeners = append(t.listeners[:i:i], t.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish delivers v to the listeners registered at call time.
func (t *Topic[T]) Publish(v T) {
	t.mu.RLock()
	snapshot := make([]listener[T], len(t.listeners))
	copy(snapshot, t.listeners)
	t.mu.RUnlock()

	metrics.EventsPublishedTotal.WithLabelValues(t.name).Inc()
	for _, l := range snapshot {
		t.deliver(l, v)
	}
}

func (t *Topic[T]) deliver(l listener[T], v T) {
	defer func() {
		if rec := recover(); rec != nil {
			t.logger.Error().Str("topic", t.name).Interface("panic", rec).Msg("event listener panicked")
		}
	}()
	l.fn(v)
}

// Len returns the number of listeners.
func (t *Topic[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.listeners)
}
