package state

import (
	"context"
	"sync"

	"github.com/niksmo/souvenir-shop/internal/core/domain"
	"github.com/niksmo/souvenir-shop/internal/core/hydration"
	"github.com/niksmo/souvenir-shop/internal/core/wishlist"
)

type Wishlist struct {
	mu        sync.Mutex
	set       wishlist.Set
	observers observers[[]domain.WishlistEntry]
	gate      hydration.Value[struct{}]
}

func NewWishlist() *Wishlist {
	return new(Wishlist)
}

func (w *Wishlist) Subscribe(fn func([]domain.WishlistEntry)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.observers.add(fn)
}

func (w *Wishlist) Restore(entries []domain.WishlistEntry) {
	w.mu.Lock()
	w.set.Restore(entries)
	empty := w.set.Len() == 0
	w.mu.Unlock()

	w.gate.Settle(struct{}{}, empty)
}

func (w *Wishlist) AddItem(p domain.Product) {
	w.mutate(func(s *wishlist.Set) { s.AddItem(p) })
}

func (w *Wishlist) RemoveItem(productID int) {
	w.mutate(func(s *wishlist.Set) { s.RemoveItem(productID) })
}

// Toggle adds p when absent, removes it otherwise, and reports whether
// p is in the wishlist afterwards.
func (w *Wishlist) Toggle(p domain.Product) bool {
	var added bool
	w.mutate(func(s *wishlist.Set) {
		if s.IsInWishlist(p.ID) {
			s.RemoveItem(p.ID)
			return
		}
		s.AddItem(p)
		added = true
	})
	return added
}

// Take removes the entry and returns it, ok is false for unknown ids.
func (w *Wishlist) Take(productID int) (domain.WishlistEntry, bool) {
	var (
		e  domain.WishlistEntry
		ok bool
	)
	w.mutate(func(s *wishlist.Set) {
		e, ok = s.Get(productID)
		s.RemoveItem(productID)
	})
	return e, ok
}

func (w *Wishlist) IsInWishlist(productID int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.set.IsInWishlist(productID)
}

func (w *Wishlist) Items() ([]domain.WishlistEntry, hydration.State) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.set.Items(), hydrationOf(&w.gate, w.set.Len() == 0)
}

func (w *Wishlist) Hydrated(ctx context.Context) ([]domain.WishlistEntry, error) {
	if err := await(ctx, &w.gate); err != nil {
		return nil, err
	}
	items, _ := w.Items()
	return items, nil
}

func (w *Wishlist) mutate(fn func(*wishlist.Set)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	fn(&w.set)
	w.observers.notify(w.set.Items())
}
