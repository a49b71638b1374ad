package kv

import "context"

// Store is a persisted key/value medium.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Lister is implemented by media that can enumerate keys by prefix.
type Lister interface {
	List(ctx context.Context, prefix string) (map[string][]byte, error)
}

// ListerStore is a Store that can also enumerate its keys.
type ListerStore interface {
	Store
	Lister
}
