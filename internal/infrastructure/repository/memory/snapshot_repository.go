package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/badminton-tournament/internal/domain/snapshot"
)

type SnapshotRepository struct {
	mu    sync.RWMutex
	items map[string]snapshot.Entry
	now   func() time.Time
}

func NewSnapshotRepository(seed ...snapshot.Entry) *SnapshotRepository {
	items := make(map[string]snapshot.Entry, len(seed))
	for _, e := range seed {
		items[e.Key] = cloneEntry(e)
	}

	return &SnapshotRepository{
		items: items,
		now:   time.Now,
	}
}

func (r *SnapshotRepository) Get(_ context.Context, key string) (snapshot.Entry, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.items[key]
	if !ok {
		return snapshot.Entry{}, false, nil
	}

	return cloneEntry(e), true, nil
}

func (r *SnapshotRepository) Put(_ context.Context, entry snapshot.Entry) error {
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = r.now().UTC()
	}

	r.mu.Lock()
	r.items[entry.Key] = cloneEntry(entry)
	r.mu.Unlock()

	return nil
}

func (r *SnapshotRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	delete(r.items, key)
	r.mu.Unlock()

	return nil
}

func (r *SnapshotRepository) ListByPrefix(_ context.Context, prefix string) ([]snapshot.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]snapshot.Entry, 0)
	for key, e := range r.items {
		if strings.HasPrefix(key, prefix) {
			out = append(out, cloneEntry(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })

	return out, nil
}

func cloneEntry(e snapshot.Entry) snapshot.Entry {
	e.Value = append([]byte(nil), e.Value...)
	return e
}
