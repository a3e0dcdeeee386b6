package app

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/riskibarqy/badminton-tournament/internal/config"
	"github.com/riskibarqy/badminton-tournament/internal/domain/pairing"
	"github.com/riskibarqy/badminton-tournament/internal/domain/snapshot"
	"github.com/riskibarqy/badminton-tournament/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/badminton-tournament/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/badminton-tournament/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/badminton-tournament/internal/infrastructure/repository/resilient"
	"github.com/riskibarqy/badminton-tournament/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/badminton-tournament/internal/platform/cache"
	idgen "github.com/riskibarqy/badminton-tournament/internal/platform/id"
	"github.com/riskibarqy/badminton-tournament/internal/platform/logging"
	"github.com/riskibarqy/badminton-tournament/internal/usecase"
)

// App is the assembled HTTP service. Close releases the storage backend.
type App struct {
	Server      *http.Server
	Tournaments *usecase.TournamentService
	Close       func() error
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	repo, closeRepo, err := newSnapshotRepository(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	storage := usecase.NewStorageService(repo, usecase.StorageConfig{
		Key:           cfg.StorageKey,
		BackupPrefix:  cfg.StorageBackupPrefix,
		SizeWarnBytes: cfg.StorageSizeWarnBytes,
	}, logger)

	ids := idgen.NewRandomGenerator()
	engine := pairing.NewEngine(newPairingRand(cfg.PairingSeed), idgen.WithPrefix("match", ids), cfg.Pairing)
	tournaments := usecase.NewTournamentService(engine, storage, ids, usecase.TournamentServiceConfig{
		DefaultName: cfg.DefaultTournamentName,
		Autosave:    cfg.AutosaveEnabled,
	}, logger)

	if _, found, err := tournaments.LoadTournament(ctx); err != nil {
		// Startup continues with no tournament loaded.
		logger.WarnContext(ctx, "load saved tournament failed", "error", err)
	} else if found {
		logger.InfoContext(ctx, "saved tournament restored", "key", cfg.StorageKey)
	}

	handler := httpapi.NewHandler(tournaments, logger)
	router := httpapi.NewRouter(handler, logger, httpapi.RouterConfig{
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		CaptureRequestBody:  cfg.UptraceEnabled && cfg.UptraceCaptureRequestBody,
		RequestBodyMaxBytes: cfg.UptraceRequestBodyMaxBytes,
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &App{
		Server:      server,
		Tournaments: tournaments,
		Close:       closeRepo,
	}, nil
}

func newSnapshotRepository(ctx context.Context, cfg config.Config, logger *logging.Logger) (snapshot.Repository, func() error, error) {
	var repo snapshot.Repository
	closeFn := func() error { return nil }

	switch cfg.StorageDriver {
	case config.StorageDriverPostgres:
		db, err := openPostgres(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		repo = postgres.NewSnapshotRepository(db)
		closeFn = db.Close
		logger.InfoContext(ctx, "snapshot storage ready", "driver", cfg.StorageDriver, "db_name", postgres.DBName(cfg.DBURL))
	default:
		repo = memory.NewSnapshotRepository()
		logger.InfoContext(ctx, "snapshot storage ready", "driver", config.StorageDriverMemory)
	}

	repo = resilient.NewSnapshotRepository(repo, cfg.StorageCircuit, logger)
	if cfg.CacheEnabled {
		repo = cache.NewSnapshotRepository(repo, basecache.NewStore(cfg.CacheTTL))
	}

	return repo, closeFn, nil
}

// newPairingRand seeds draws from the clock unless a fixed seed is set.
func newPairingRand(seed int64) pairing.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
