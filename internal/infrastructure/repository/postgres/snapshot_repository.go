package postgres

import (
	"context"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/badminton-tournament/internal/domain/snapshot"
	qb "github.com/riskibarqy/badminton-tournament/internal/platform/querybuilder"
)

type SnapshotRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db, now: time.Now}
}

func (r *SnapshotRepository) Get(ctx context.Context, key string) (snapshot.Entry, bool, error) {
	query, args, err := getEntryQuery(key)
	if err != nil {
		return snapshot.Entry{}, false, crerr.Wrap(err, "build get kv entry query")
	}

	var row kvEntryTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return snapshot.Entry{}, false, nil
		}
		return snapshot.Entry{}, false, crerr.Wrapf(err, "get kv entry key=%s", key)
	}

	return entryFromRow(row), true, nil
}

func (r *SnapshotRepository) Put(ctx context.Context, entry snapshot.Entry) error {
	updatedAt := entry.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = r.now()
	}

	query, args, err := qb.UpsertModel(kvEntriesTable, kvEntryTableModel{
		Key:       entry.Key,
		Value:     entry.Value,
		UpdatedAt: updatedAt.UTC(),
	}, "key")
	if err != nil {
		return crerr.Wrap(err, "build upsert kv entry query")
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return crerr.Wrapf(err, "upsert kv entry key=%s", entry.Key)
	}
	return nil
}

func (r *SnapshotRepository) Delete(ctx context.Context, key string) error {
	query, args, err := qb.DeleteFrom(kvEntriesTable).Where(qb.Eq("key", key)).ToSQL()
	if err != nil {
		return crerr.Wrap(err, "build delete kv entry query")
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return crerr.Wrapf(err, "delete kv entry key=%s", key)
	}
	return nil
}

func (r *SnapshotRepository) ListByPrefix(ctx context.Context, prefix string) ([]snapshot.Entry, error) {
	query, args, err := qb.Select("key", "value", "updated_at").From(kvEntriesTable).
		Where(qb.HasPrefix("key", prefix)).
		OrderBy("key").
		ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build list kv entries query")
	}

	var rows []kvEntryTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrapf(err, "list kv entries prefix=%s", prefix)
	}

	out := make([]snapshot.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, entryFromRow(row))
	}
	return out, nil
}

func getEntryQuery(key string) (string, []any, error) {
	return qb.Select("key", "value", "updated_at").From(kvEntriesTable).
		Where(qb.Eq("key", key)).
		Limit(1).
		ToSQL()
}

func entryFromRow(row kvEntryTableModel) snapshot.Entry {
	return snapshot.Entry{
		Key:       row.Key,
		Value:     row.Value,
		UpdatedAt: row.UpdatedAt,
	}
}
