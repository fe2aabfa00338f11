package state

import (
	"context"
	"sync"

	"github.com/niksmo/souvenir-shop/internal/core/cart"
	"github.com/niksmo/souvenir-shop/internal/core/domain"
	"github.com/niksmo/souvenir-shop/internal/core/hydration"
	"github.com/shopspring/decimal"
)

// A CartView is a consistent copy of the cart at one point in time.
type CartView struct {
	Lines      []domain.CartLine
	TotalItems int
	TotalPrice decimal.Decimal
}

type Cart struct {
	mu        sync.Mutex
	ledger    cart.Ledger
	observers observers[CartView]
	gate      hydration.Value[struct{}]
}

func NewCart() *Cart {
	return new(Cart)
}

// Subscribe registers fn to receive the full cart after every mutation.
func (c *Cart) Subscribe(fn func(CartView)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers.add(fn)
}

// Restore replaces the content with a persisted snapshot and settles
// hydration. Observers are not notified: the snapshot is already stored.
func (c *Cart) Restore(lines []domain.CartLine) {
	c.mu.Lock()
	c.ledger.Restore(lines)
	empty := c.ledger.Len() == 0
	c.mu.Unlock()

	c.gate.Settle(struct{}{}, empty)
}

func (c *Cart) AddItem(p domain.Product, qty int) {
	c.mutate(func(l *cart.Ledger) { l.AddItem(p, qty) })
}

func (c *Cart) UpdateQuantity(productID, qty int) {
	c.mutate(func(l *cart.Ledger) { l.UpdateQuantity(productID, qty) })
}

func (c *Cart) RemoveItem(productID int) {
	c.mutate(func(l *cart.Ledger) { l.RemoveItem(productID) })
}

// RemoveOrdered drops the ordered quantities and keeps anything added
// while the order was in flight.
func (c *Cart) RemoveOrdered(lines []domain.CartLine) {
	c.mutate(func(l *cart.Ledger) { l.Subtract(lines) })
}

func (c *Cart) Clear() {
	c.mutate(func(l *cart.Ledger) { l.Clear() })
}

func (c *Cart) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.TotalItems()
}

func (c *Cart) TotalPrice() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.TotalPrice()
}

// View returns the cart and its hydration state. Before hydration the
// view is empty and the state is NotLoaded, not Empty.
func (c *Cart) View() (CartView, hydration.State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view(), hydrationOf(&c.gate, c.ledger.Len() == 0)
}

// Hydrated waits for the restore to complete and returns the settled cart.
func (c *Cart) Hydrated(ctx context.Context) (CartView, error) {
	if err := await(ctx, &c.gate); err != nil {
		return CartView{}, err
	}
	v, _ := c.View()
	return v, nil
}

func (c *Cart) mutate(fn func(*cart.Ledger)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fn(&c.ledger)
	c.observers.notify(c.view())
}

func (c *Cart) view() CartView {
	return CartView{
		Lines:      c.ledger.Lines(),
		TotalItems: c.ledger.TotalItems(),
		TotalPrice: c.ledger.TotalPrice(),
	}
}
