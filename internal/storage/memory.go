package storage

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store, mostly for tests.
type MemoryStore[T any] struct {
	mu    sync.RWMutex
	items []T
	saves int
}

func NewMemoryStore[T any](seed ...T) *MemoryStore[T] {
	return &MemoryStore[T]{items: append([]T{}, seed...)}
}

func (m *MemoryStore[T]) Load(_ context.Context) ([]T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]T{}, m.items...), nil
}

func (m *MemoryStore[T]) Save(_ context.Context, items []T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append([]T{}, items...)
	m.saves++
	return nil
}

// Saves reports how many times Save has been called.
func (m *MemoryStore[T]) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}
