// Package state holds the injectable client state containers.
//
// Each store guards one pure core (cart ledger, wishlist set, theme)
// and notifies its observers after every mutation. Observers run
// synchronously under the store lock, so they see mutations in the
// order they were dispatched and must not call back into the store.
package state

import (
	"context"

	"github.com/niksmo/souvenir-shop/internal/core/hydration"
)

type observers[T any] struct {
	fns []func(T)
}

func (o *observers[T]) add(fn func(T)) {
	o.fns = append(o.fns, fn)
}

func (o *observers[T]) notify(v T) {
	for _, fn := range o.fns {
		fn(v)
	}
}

// hydrationOf maps a settled gate and the current emptiness to the
// tri-state seen by readers.
func hydrationOf(gate *hydration.Value[struct{}], empty bool) hydration.State {
	_, s := gate.Get()
	if s == hydration.NotLoaded {
		return hydration.NotLoaded
	}
	if empty {
		return hydration.Empty
	}
	return hydration.Loaded
}

func await(ctx context.Context, gate *hydration.Value[struct{}]) error {
	_, _, err := gate.Await(ctx)
	return err
}
