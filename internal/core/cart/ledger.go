// Package cart holds the cart ledger state transitions.
//
// The ledger knows nothing about storage or notifications, callers
// observe it through the state package.
package cart

import (
	"github.com/niksmo/souvenir-shop/internal/core/domain"
	"github.com/shopspring/decimal"
)

// A Ledger keeps at most one line per product ID, in insertion order.
//
// The zero value is an empty ledger.
type Ledger struct {
	lines []domain.CartLine
}

// Add adds a single unit of p.
func (l *Ledger) Add(p domain.Product) {
	l.AddItem(p, 1)
}

// AddItem merges qty into the existing line for p.ID or appends
// a new line holding a copy of p. A line never keeps a quantity
// below one.
func (l *Ledger) AddItem(p domain.Product, qty int) {
	if i := l.index(p.ID); i >= 0 {
		l.lines[i].Quantity += qty
		if l.lines[i].Quantity <= 0 {
			l.removeAt(i)
		}
		return
	}
	if qty <= 0 {
		return
	}
	l.lines = append(l.lines, domain.CartLine{Product: p.Clone(), Quantity: qty})
}

// UpdateQuantity sets the quantity clamped at zero, zero removes the line.
func (l *Ledger) UpdateQuantity(productID, qty int) {
	i := l.index(productID)
	if i < 0 {
		return
	}
	if qty <= 0 {
		l.removeAt(i)
		return
	}
	l.lines[i].Quantity = qty
}

func (l *Ledger) RemoveItem(productID int) {
	if i := l.index(productID); i >= 0 {
		l.removeAt(i)
	}
}

// Subtract takes the quantities of lines out of the ledger. Lines
// added or raised since the snapshot keep the difference.
func (l *Ledger) Subtract(lines []domain.CartLine) {
	for _, line := range lines {
		i := l.index(line.ID)
		if i < 0 {
			continue
		}
		l.lines[i].Quantity -= line.Quantity
		if l.lines[i].Quantity <= 0 {
			l.removeAt(i)
		}
	}
}

func (l *Ledger) Clear() {
	l.lines = nil
}

func (l *Ledger) TotalItems() int {
	var n int
	for _, line := range l.lines {
		n += line.Quantity
	}
	return n
}

func (l *Ledger) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, line := range l.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

func (l *Ledger) Len() int {
	return len(l.lines)
}

func (l *Ledger) Line(productID int) (domain.CartLine, bool) {
	i := l.index(productID)
	if i < 0 {
		return domain.CartLine{}, false
	}
	return l.lines[i], true
}

// Lines returns a copy of the lines in insertion order.
func (l *Ledger) Lines() []domain.CartLine {
	out := make([]domain.CartLine, len(l.lines))
	for i, line := range l.lines {
		out[i] = domain.CartLine{Product: line.Product.Clone(), Quantity: line.Quantity}
	}
	return out
}

// Restore replaces the ledger content with lines. Duplicate IDs are
// merged and non-positive quantities dropped, so a damaged snapshot
// still yields a ledger that holds its invariants.
func (l *Ledger) Restore(lines []domain.CartLine) {
	l.lines = nil
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		l.AddItem(line.Product, line.Quantity)
	}
}

func (l *Ledger) index(productID int) int {
	for i := range l.lines {
		if l.lines[i].ID == productID {
			return i
		}
	}
	return -1
}

func (l *Ledger) removeAt(i int) {
	l.lines = append(l.lines[:i], l.lines[i+1:]...)
}
