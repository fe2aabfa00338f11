// Package checkout holds the mocked order backend used when no broker
// is configured.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/niksmo/souvenir-shop/internal/core/domain"
	"github.com/niksmo/souvenir-shop/internal/core/port"
	"github.com/niksmo/souvenir-shop/pkg/delay"
)

var (
	_ port.OrderSubmitter = (*MockSubmitter)(nil)
	_ port.OrderHistory   = (*MockSubmitter)(nil)
)

const DefaultLatency = time.Second

type Opt func(*MockSubmitter) error

func LatencyOpt(d time.Duration) Opt {
	return func(m *MockSubmitter) error {
		if d < 0 {
			return errors.New("latency is negative")
		}
		m.latency = d
		return nil
	}
}

// NowOpt replaces the order clock.
func NowOpt(now func() time.Time) Opt {
	return func(m *MockSubmitter) error {
		if now == nil {
			return errors.New("clock is nil")
		}
		m.now = now
		return nil
	}
}

// A MockSubmitter accepts every order after a delay and keeps
// the accepted orders in memory, keyed by customer email.
type MockSubmitter struct {
	latency time.Duration
	now     func() time.Time

	mu     sync.Mutex
	orders map[string][]domain.Order
}

func NewMockSubmitter(opts ...Opt) (*MockSubmitter, error) {
	const op = "checkout.NewMockSubmitter"

	m := &MockSubmitter{
		latency: DefaultLatency,
		now:     time.Now,
		orders:  make(map[string][]domain.Order),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	return m, nil
}

func (m *MockSubmitter) SubmitOrder(
	ctx context.Context, o domain.Order,
) (domain.OrderReceipt, error) {
	const op = "MockSubmitter.SubmitOrder"
	log := slog.With("op", op)

	if err := delay.Wait(ctx, m.latency); err != nil {
		return domain.OrderReceipt{}, fmt.Errorf("%s: %w", op, err)
	}

	if o.ID == "" {
		o.ID = domain.NewOrderID()
	}
	if o.Date.IsZero() {
		o.Date = m.now()
	}
	if o.Status == "" {
		o.Status = domain.OrderProcessing
	}
	o.Items = slices.Clone(o.Items)

	key := emailKey(o.Shipping.Email)
	m.mu.Lock()
	m.orders[key] = append(m.orders[key], o)
	m.mu.Unlock()

	log.Info("order accepted", "orderID", o.ID, "items", len(o.Items))

	return domain.OrderReceipt{Success: true, OrderID: o.ID}, nil
}

// UserOrders returns the orders newest first.
func (m *MockSubmitter) UserOrders(
	ctx context.Context, email string,
) ([]domain.Order, error) {
	const op = "MockSubmitter.UserOrders"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	m.mu.Lock()
	stored := m.orders[emailKey(email)]
	out := make([]domain.Order, len(stored))
	copy(out, stored)
	m.mu.Unlock()

	slices.Reverse(out)
	return out, nil
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
