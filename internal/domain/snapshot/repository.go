package snapshot

import "context"

// Repository is the key-value store behind tournament persistence.
type Repository interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Put(ctx context.Context, entry Entry) error
	Delete(ctx context.Context, key string) error
	ListByPrefix(ctx context.Context, prefix string) ([]Entry, error)
}
