// Package hydration tracks restored client state that is not known
// until the persisted snapshot has been read.
package hydration

import (
	"context"
	"sync"
)

type State int

const (
	NotLoaded State = iota
	Loaded
	Empty
)

func (s State) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case Empty:
		return "empty"
	}
	return "not-loaded"
}

// A Value settles exactly once, from NotLoaded to Loaded or Empty.
type Value[T any] struct {
	mu    sync.Mutex
	state State
	v     T
	done  chan struct{}
	once  sync.Once
}

func (h *Value[T]) init() {
	h.once.Do(func() { h.done = make(chan struct{}) })
}

// Settle records the restored value. Later calls are ignored and
// report false.
func (h *Value[T]) Settle(v T, empty bool) bool {
	h.init()

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != NotLoaded {
		return false
	}
	h.v = v
	h.state = Loaded
	if empty {
		h.state = Empty
	}
	close(h.done)
	return true
}

// Get reports the current state without blocking.
func (h *Value[T]) Get() (T, State) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.v, h.state
}

// Done is closed once the value has settled.
func (h *Value[T]) Done() <-chan struct{} {
	h.init()
	return h.done
}

// Await blocks until the value settles or ctx is done.
func (h *Value[T]) Await(ctx context.Context) (T, State, error) {
	select {
	case <-h.Done():
		v, s := h.Get()
		return v, s, nil
	case <-ctx.Done():
		var zero T
		return zero, NotLoaded, ctx.Err()
	}
}
