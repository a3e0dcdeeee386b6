package cache

import (
	"context"

	"github.com/riskibarqy/badminton-tournament/internal/domain/snapshot"
	basecache "github.com/riskibarqy/badminton-tournament/internal/platform/cache"
)

const (
	snapshotGetKeyPrefix  = "snapshot:get:"
	snapshotListKeyPrefix = "snapshot:list:"
)

type SnapshotRepository struct {
	next  snapshot.Repository
	cache *basecache.Store
}

func NewSnapshotRepository(next snapshot.Repository, cache *basecache.Store) *SnapshotRepository {
	return &SnapshotRepository{next: next, cache: cache}
}

func (r *SnapshotRepository) Get(ctx context.Context, key string) (snapshot.Entry, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, snapshotGetKeyPrefix+key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		return cachedEntry{value: cloneEntry(item), exists: exists}, nil
	})
	if err != nil {
		return snapshot.Entry{}, false, err
	}

	cached, _ := v.(cachedEntry)
	return cloneEntry(cached.value), cached.exists, nil
}

func (r *SnapshotRepository) Put(ctx context.Context, entry snapshot.Entry) error {
	if err := r.next.Put(ctx, entry); err != nil {
		return err
	}
	r.invalidate(ctx, entry.Key)
	return nil
}

func (r *SnapshotRepository) Delete(ctx context.Context, key string) error {
	if err := r.next.Delete(ctx, key); err != nil {
		return err
	}
	r.invalidate(ctx, key)
	return nil
}

func (r *SnapshotRepository) ListByPrefix(ctx context.Context, prefix string) ([]snapshot.Entry, error) {
	v, err := r.cache.GetOrLoad(ctx, snapshotListKeyPrefix+prefix, func(ctx context.Context) (any, error) {
		items, err := r.next.ListByPrefix(ctx, prefix)
		if err != nil {
			return nil, err
		}
		return cloneEntries(items), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]snapshot.Entry)
	return cloneEntries(items), nil
}

// invalidate drops the entry and every cached listing, since any prefix
// listing may contain the key.
func (r *SnapshotRepository) invalidate(ctx context.Context, key string) {
	r.cache.Delete(ctx, snapshotGetKeyPrefix+key)
	r.cache.DeletePrefix(ctx, snapshotListKeyPrefix)
}

type cachedEntry struct {
	value  snapshot.Entry
	exists bool
}

func cloneEntry(e snapshot.Entry) snapshot.Entry {
	if e.Value != nil {
		e.Value = append([]byte(nil), e.Value...)
	}
	return e
}

func cloneEntries(items []snapshot.Entry) []snapshot.Entry {
	out := make([]snapshot.Entry, 0, len(items))
	for _, e := range items {
		out = append(out, cloneEntry(e))
	}
	return out
}
