// Package persist restores the client stores from durable storage and
// writes them back after every mutation.
package persist

import (
	"context"
	"log/slog"
	"time"

	"github.com/niksmo/souvenir-shop/internal/core/domain"
	"github.com/niksmo/souvenir-shop/internal/core/port"
	"github.com/niksmo/souvenir-shop/internal/core/state"
)

const (
	CartKey     = "cart-storage"
	WishlistKey = "wishlist-storage"
	ThemeKey    = "theme-storage"
)

const defaultWriteTimeout = 2 * time.Second

type Stores struct {
	Cart     *state.Cart
	Wishlist *state.Wishlist
	Theme    *state.Theme
}

// An Adapter is the only component reading and writing the storage keys.
type Adapter struct {
	kv           port.KVStorage
	writeTimeout time.Duration
}

func New(kv port.KVStorage) Adapter {
	return Adapter{kv: kv, writeTimeout: defaultWriteTimeout}
}

// Hydrate restores every store. Missing, unreadable or malformed
// snapshots leave the store at its default, nothing is returned.
func (a Adapter) Hydrate(ctx context.Context, s Stores) {
	const op = "Adapter.Hydrate"
	log := slog.With("op", op)

	lines, ok := load(ctx, a.kv, CartKey, DecodeCart)
	s.Cart.Restore(lines)
	log.Debug("cart restored", "found", ok, "lines", len(lines))

	entries, ok := load(ctx, a.kv, WishlistKey, DecodeWishlist)
	s.Wishlist.Restore(entries)
	log.Debug("wishlist restored", "found", ok, "items", len(entries))

	theme, ok := load(ctx, a.kv, ThemeKey, DecodeTheme)
	if !ok {
		theme = domain.ThemeLight
	}
	s.Theme.Restore(theme)
	log.Debug("theme restored", "found", ok, "theme", theme)
}

// Attach subscribes to the stores. Each mutation replaces the stored
// snapshot before the mutating call returns.
func (a Adapter) Attach(ctx context.Context, s Stores) {
	ctx = context.WithoutCancel(ctx)

	s.Cart.Subscribe(func(v state.CartView) {
		a.write(ctx, CartKey, func() ([]byte, error) { return EncodeCart(v.Lines) })
	})
	s.Wishlist.Subscribe(func(v []domain.WishlistEntry) {
		a.write(ctx, WishlistKey, func() ([]byte, error) { return EncodeWishlist(v) })
	})
	s.Theme.Subscribe(func(v domain.Theme) {
		a.write(ctx, ThemeKey, func() ([]byte, error) { return EncodeTheme(v) })
	})
}

func (a Adapter) write(
	ctx context.Context, key string, encodeFn func() ([]byte, error),
) {
	const op = "Adapter.write"
	log := slog.With("op", op, "key", key)

	data, err := encodeFn()
	if err != nil {
		log.Error("failed to encode snapshot", "err", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, a.writeTimeout)
	defer cancel()

	if err := a.kv.Set(ctx, key, data); err != nil {
		log.Error("failed to write snapshot", "err", err)
	}
}

func load[T any](
	ctx context.Context, kv port.KVStorage, key string, decodeFn func([]byte) (T, error),
) (T, bool) {
	const op = "persist.load"
	log := slog.With("op", op, "key", key)

	var zero T

	data, ok, err := kv.Get(ctx, key)
	if err != nil {
		log.Warn("failed to read snapshot, using default", "err", err)
		return zero, false
	}
	if !ok {
		return zero, false
	}

	v, err := decodeFn(data)
	if err != nil {
		log.Warn("malformed snapshot, using default", "err", err)
		return zero, false
	}
	return v, true
}
