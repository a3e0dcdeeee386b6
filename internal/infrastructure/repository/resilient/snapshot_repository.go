package resilient

import (
	"context"
	"errors"
	"fmt"

	"github.com/riskibarqy/badminton-tournament/internal/domain/snapshot"
	"github.com/riskibarqy/badminton-tournament/internal/platform/logging"
	"github.com/riskibarqy/badminton-tournament/internal/platform/resilience"
)

// SnapshotRepository fails fast while the backing store keeps erroring.
type SnapshotRepository struct {
	next    snapshot.Repository
	breaker *resilience.CircuitBreaker
	logger  *logging.Logger
}

func NewSnapshotRepository(next snapshot.Repository, cfg resilience.CircuitBreakerConfig, logger *logging.Logger) *SnapshotRepository {
	if logger == nil {
		logger = logging.Default()
	}
	cfg.OnStateChange = func(from, to resilience.CircuitState) {
		logger.Warn("snapshot store circuit breaker transition", "from", from, "to", to)
	}

	return &SnapshotRepository{
		next:    next,
		breaker: resilience.NewCircuitBreaker(cfg),
		logger:  logger,
	}
}

func (r *SnapshotRepository) State() resilience.CircuitState {
	return r.breaker.State()
}

func (r *SnapshotRepository) Get(ctx context.Context, key string) (snapshot.Entry, bool, error) {
	var (
		entry  snapshot.Entry
		exists bool
	)
	err := r.guard(ctx, "get", func() error {
		var err error
		entry, exists, err = r.next.Get(ctx, key)
		return err
	})
	return entry, exists, err
}

func (r *SnapshotRepository) Put(ctx context.Context, entry snapshot.Entry) error {
	return r.guard(ctx, "put", func() error {
		return r.next.Put(ctx, entry)
	})
}

func (r *SnapshotRepository) Delete(ctx context.Context, key string) error {
	return r.guard(ctx, "delete", func() error {
		return r.next.Delete(ctx, key)
	})
}

func (r *SnapshotRepository) ListByPrefix(ctx context.Context, prefix string) ([]snapshot.Entry, error) {
	var items []snapshot.Entry
	err := r.guard(ctx, "list", func() error {
		var err error
		items, err = r.next.ListByPrefix(ctx, prefix)
		return err
	})
	return items, err
}

func (r *SnapshotRepository) guard(ctx context.Context, op string, fn func() error) error {
	err := r.breaker.Do(ctx, fn)
	if errors.Is(err, resilience.ErrCircuitOpen) {
		r.logger.WarnContext(ctx, "snapshot store circuit breaker rejected request", "op", op, "state", r.breaker.State())
		return fmt.Errorf("snapshot store is temporarily unavailable: %w", err)
	}
	return err
}
