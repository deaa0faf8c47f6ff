package shortener_test

import (
	"context"
	"errors"
	"sync"
)

var errStore = errors.New("store unavailable")

// mapStore is a plain (non-atomic) Store backed by a map.
type mapStore struct {
	mu   sync.Mutex
	data map[string]string
	gets int
	sets int
}

func newMapStore() *mapStore {
	return &mapStore{data: make(map[string]string)}
}

func (m *mapStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gets++

	return m.data[key], nil
}

func (m *mapStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sets++
	m.data[key] = value

	return nil
}
