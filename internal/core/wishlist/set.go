package wishlist

import "github.com/niksmo/souvenir-shop/internal/core/domain"

// A Set keeps saved products keyed by ID in insertion order.
//
// The zero value is an empty set.
type Set struct {
	order []int
	items map[int]domain.WishlistEntry
}

// AddItem is idempotent: a product already in the set is left as is.
func (s *Set) AddItem(p domain.Product) {
	if s.IsInWishlist(p.ID) {
		return
	}
	if s.items == nil {
		s.items = make(map[int]domain.WishlistEntry)
	}
	s.items[p.ID] = domain.WishlistEntry{Product: p.Clone()}
	s.order = append(s.order, p.ID)
}

func (s *Set) RemoveItem(productID int) {
	if !s.IsInWishlist(productID) {
		return
	}
	delete(s.items, productID)
	for i, id := range s.order {
		if id == productID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Set) IsInWishlist(productID int) bool {
	_, ok := s.items[productID]
	return ok
}

func (s *Set) Get(productID int) (domain.WishlistEntry, bool) {
	e, ok := s.items[productID]
	return e, ok
}

func (s *Set) Len() int {
	return len(s.order)
}

func (s *Set) Items() []domain.WishlistEntry {
	out := make([]domain.WishlistEntry, len(s.order))
	for i, id := range s.order {
		out[i] = domain.WishlistEntry{Product: s.items[id].Product.Clone()}
	}
	return out
}

// Restore replaces the set content, dropping duplicate IDs.
func (s *Set) Restore(entries []domain.WishlistEntry) {
	s.order = nil
	s.items = nil
	for _, e := range entries {
		s.AddItem(e.Product)
	}
}
