package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/niksmo/souvenir-shop/internal/core/port"
)

var _ port.KVStorage = (*MemoryStorage)(nil)

// A MemoryStorage keeps client state for the process lifetime only.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]byte)}
}

func (s *MemoryStorage) Get(
	ctx context.Context, key string,
) ([]byte, bool, error) {
	const op = "MemoryStorage.Get"

	if err := ctx.Err(); err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *MemoryStorage) Set(ctx context.Context, key string, v []byte) error {
	const op = "MemoryStorage.Set"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = append([]byte(nil), v...)
	return nil
}
