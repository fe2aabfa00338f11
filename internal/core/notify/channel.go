// Package notify implements the dismissible toast queue.
package notify

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/niksmo/souvenir-shop/internal/core/domain"
)

// DefaultTTL is how long a toast stays without being dismissed.
const DefaultTTL = 3000 * time.Millisecond

// toast ids are unique for the process lifetime, across channels
var lastID atomic.Int64

func nextID() int64 {
	return lastID.Add(1) - 1
}

// A Timer is the cancel handle of a scheduled removal.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. [time.AfterFunc] is the default.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type Opt func(*Channel)

func TTLOpt(ttl time.Duration) Opt {
	return func(c *Channel) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func AfterFuncOpt(fn AfterFunc) Opt {
	return func(c *Channel) {
		if fn != nil {
			c.afterFunc = fn
		}
	}
}

type entry struct {
	toast domain.Toast
	timer Timer
}

// A Channel is an unbounded, ordered queue of toasts.
// Every toast removes itself after the TTL unless dismissed first.
type Channel struct {
	mu        sync.Mutex
	entries   []entry
	ttl       time.Duration
	afterFunc AfterFunc
}

func New(opts ...Opt) *Channel {
	c := &Channel{
		ttl:       DefaultTTL,
		afterFunc: realAfterFunc,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Add appends a toast and returns its id. Empty severity means info.
func (c *Channel) Add(msg string, severity domain.Severity) int64 {
	const op = "Channel.Add"

	if severity == "" {
		severity = domain.SeverityInfo
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// allocated under the lock so List order follows id order
	t := domain.Toast{ID: nextID(), Message: msg, Severity: severity}

	timer := c.afterFunc(c.ttl, func() { c.expire(t.ID) })
	c.entries = append(c.entries, entry{toast: t, timer: timer})

	slog.Debug("toast added", "op", op, "id", t.ID, "severity", t.Severity)
	return t.ID
}

func (c *Channel) Info(msg string) int64 {
	return c.Add(msg, domain.SeverityInfo)
}

func (c *Channel) Success(msg string) int64 {
	return c.Add(msg, domain.SeveritySuccess)
}

func (c *Channel) Error(msg string) int64 {
	return c.Add(msg, domain.SeverityError)
}

// Remove dismisses the toast and cancels its pending expiry.
// Unknown or already removed ids are ignored.
func (c *Channel) Remove(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.take(id); ok {
		e.timer.Stop()
	}
}

// List returns the current toasts, oldest first.
func (c *Channel) List() []domain.Toast {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.Toast, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.toast
	}
	return out
}

// Close stops all pending expiry timers.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries {
		e.timer.Stop()
	}
	c.entries = nil
}

func (c *Channel) expire(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.take(id)
}

func (c *Channel) take(id int64) (entry, bool) {
	for i, e := range c.entries {
		if e.toast.ID == id {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			return e, true
		}
	}
	return entry{}, false
}
