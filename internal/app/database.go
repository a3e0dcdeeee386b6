package app

import (
	"context"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/badminton-tournament/internal/config"
	"github.com/riskibarqy/badminton-tournament/internal/infrastructure/repository/postgres"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"
)

const (
	startupProbeTimeout = 5 * time.Second
	maxTracedQueryBytes = 512
)

// openPostgres connects through otelsqlx and fails fast when the kv_entries
// migration has not been applied.
func openPostgres(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := postgres.DSN(cfg.DBURL, cfg.ServiceName, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(postgres.DBName(cfg.DBURL)),
		otelsql.WithQueryFormatter(traceQuery),
	)
	if err != nil {
		return nil, crerr.Wrap(err, "open postgres")
	}

	probeCtx, cancel := context.WithTimeout(ctx, startupProbeTimeout)
	defer cancel()

	if err := db.PingContext(probeCtx); err != nil {
		_ = db.Close()
		return nil, crerr.Wrap(err, "ping postgres")
	}
	if _, _, err := postgres.NewSnapshotRepository(db).Get(probeCtx, cfg.StorageKey); err != nil {
		_ = db.Close()
		if postgres.IsUndefinedTable(err) {
			return nil, crerr.New("kv_entries table missing, run cmd/migration up first")
		}
		return nil, crerr.Wrap(err, "probe snapshot table")
	}

	return db, nil
}

// traceQuery collapses whitespace and caps the statement recorded on spans.
func traceQuery(query string) string {
	normalized := strings.Join(strings.Fields(query), " ")
	if len(normalized) <= maxTracedQueryBytes {
		return normalized
	}
	return normalized[:maxTracedQueryBytes] + "..."
}
