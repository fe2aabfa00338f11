package state

import (
	"context"
	"sync"

	"github.com/niksmo/souvenir-shop/internal/core/domain"
	"github.com/niksmo/souvenir-shop/internal/core/hydration"
)

type Theme struct {
	mu        sync.Mutex
	theme     domain.Theme
	observers observers[domain.Theme]
	gate      hydration.Value[struct{}]
}

func NewTheme() *Theme {
	return &Theme{theme: domain.ThemeLight}
}

func (t *Theme) Subscribe(fn func(domain.Theme)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observers.add(fn)
}

// Restore settles hydration. Unknown values fall back to light.
func (t *Theme) Restore(v domain.Theme) {
	t.mu.Lock()
	if !v.Valid() {
		v = domain.ThemeLight
	}
	t.theme = v
	t.mu.Unlock()

	t.gate.Settle(struct{}{}, false)
}

func (t *Theme) Toggle() domain.Theme {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.theme = t.theme.Toggle()
	t.observers.notify(t.theme)
	return t.theme
}

func (t *Theme) Get() (domain.Theme, hydration.State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.theme, hydrationOf(&t.gate, false)
}

func (t *Theme) Hydrated(ctx context.Context) (domain.Theme, error) {
	if err := await(ctx, &t.gate); err != nil {
		return "", err
	}
	v, _ := t.Get()
	return v, nil
}
