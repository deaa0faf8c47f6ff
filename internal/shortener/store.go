package shortener

import "context"

//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks

// Store is the persistence boundary: a string key-value store with exact-match lookups.
type Store interface {
	// Get returns the long URL stored under key, or "" with a nil error if none exists.
	Get(ctx context.Context, key string) (string, error)
	// Set stores or overwrites the mapping. Re-saving an identical pair is harmless.
	Set(ctx context.Context, key, value string) error
}

// AtomicStore is a Store that can claim a key atomically.
//
// SetIfAbsent stores value only if key holds no mapping and returns the value
// held under key after the call. A result different from value means another
// writer owns the key.
type AtomicStore interface {
	Store
	SetIfAbsent(ctx context.Context, key, value string) (string, error)
}
