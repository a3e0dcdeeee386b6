package usecase

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/badminton-tournament/internal/domain/snapshot"
	"github.com/riskibarqy/badminton-tournament/internal/domain/tournament"
	"github.com/riskibarqy/badminton-tournament/internal/infrastructure/repository/memory"
	snapshotmock "github.com/riskibarqy/badminton-tournament/internal/mocks/domain/snapshot"
	"github.com/riskibarqy/badminton-tournament/internal/platform/logging"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var storageNow = time.Date(2026, 3, 1, 10, 20, 30, 123000000, time.UTC)

func newTestStorage(repo snapshot.Repository) *StorageService {
	s := NewStorageService(repo, DefaultStorageConfig(), logging.NewNop())
	s.now = func() time.Time { return storageNow }
	return s
}

// scoredTournament is an active tournament with one completed round.
func scoredTournament(t *testing.T) *tournament.Tournament {
	t.Helper()

	tour := tournament.New("tournament_1", "Club Night", storageNow)
	for i, name := range []string{"Ana", "Budi", "Citra", "Dewi"} {
		if _, err := tour.AddPlayer("p"+string(rune('1'+i)), name); err != nil {
			t.Fatalf("add player: %v", err)
		}
	}
	if err := tour.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	m, err := tournament.NewMatch("m1", tournament.Side{"p1", "p2"}, tournament.Side{"p3", "p4"})
	if err != nil {
		t.Fatalf("new match: %v", err)
	}
	round, err := tournament.NewRound("r1", 1, []*tournament.Match{m}, storageNow)
	if err != nil {
		t.Fatalf("new round: %v", err)
	}
	if err := tour.AddRound(round); err != nil {
		t.Fatalf("add round: %v", err)
	}
	if _, err := tour.RecordMatchResult("m1", tournament.WinnerPair1); err != nil {
		t.Fatalf("record: %v", err)
	}
	return tour
}

func encodedSnapshot(t *testing.T, tour *tournament.Tournament) []byte {
	t.Helper()
	out, err := encodeDocument(storedDocument{Snapshot: tour.Snapshot()}, false)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return out
}

func TestStorageService_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSnapshotRepository()
	storage := newTestStorage(repo)
	original := scoredTournament(t)

	if err := storage.Save(ctx, original); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, exists, err := storage.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists {
		t.Fatalf("expected saved tournament")
	}
	if !bytes.Equal(encodedSnapshot(t, loaded), encodedSnapshot(t, original)) {
		t.Fatalf("round trip mismatch:\nwant %s\ngot  %s", encodedSnapshot(t, original), encodedSnapshot(t, loaded))
	}

	lastSave, ok, err := storage.LastSaveTime(ctx)
	if err != nil || !ok {
		t.Fatalf("last save time: ok=%v err=%v", ok, err)
	}
	if !lastSave.Equal(storageNow) {
		t.Fatalf("unexpected last save time: %s", lastSave)
	}
}

func TestStorageService_LoadMissing(t *testing.T) {
	storage := newTestStorage(memory.NewSnapshotRepository())

	loaded, exists, err := storage.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if exists || loaded != nil {
		t.Fatalf("expected nothing saved")
	}
}

func TestStorageService_LoadCorruptData(t *testing.T) {
	cases := []struct {
		name  string
		value string
	}{
		{name: "invalid json", value: "{not json"},
		{name: "missing fields", value: `{"id":"t1","players":[],"rounds":[]}`},
		{name: "bad status", value: `{"id":"t1","name":"x","players":[],"rounds":[],"status":"paused"}`},
		{name: "broken round", value: `{"id":"t1","name":"x","status":"active","players":[],"rounds":[{"id":"r1","number":2,"matches":[]}]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := memory.NewSnapshotRepository(snapshot.Entry{Key: "badminton_tournament", Value: []byte(tc.value)})
			storage := newTestStorage(repo)

			_, _, err := storage.Load(context.Background())
			if !crerr.Is(err, ErrCorruptData) {
				t.Fatalf("expected ErrCorruptData, got %v", err)
			}
			if !crerr.Is(err, ErrInvalidInput) {
				t.Fatalf("expected corrupt data to be an input error, got %v", err)
			}
		})
	}
}

func TestStorageService_Clear(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSnapshotRepository()
	storage := newTestStorage(repo)

	if err := storage.Save(ctx, scoredTournament(t)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := storage.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}

	has, err := storage.HasSaved(ctx)
	if err != nil {
		t.Fatalf("has saved: %v", err)
	}
	if has {
		t.Fatalf("expected tournament to be cleared")
	}
	if _, ok, _ := storage.LastSaveTime(ctx); ok {
		t.Fatalf("expected timestamp to be cleared")
	}
}

func TestStorageService_ExportImport(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(memory.NewSnapshotRepository())
	original := scoredTournament(t)

	exported, err := storage.Export(ctx, original)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !bytes.Contains(exported, []byte(`"version": "1.0.0"`)) {
		t.Fatalf("expected version in export, got %s", exported)
	}
	if !bytes.Contains(exported, []byte(`"exportedAt": "2026-03-01T10:20:30.123Z"`)) {
		t.Fatalf("expected exportedAt in export, got %s", exported)
	}

	imported, err := storage.Import(ctx, exported)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !bytes.Equal(encodedSnapshot(t, imported), encodedSnapshot(t, original)) {
		t.Fatalf("import mismatch")
	}
}

func TestStorageService_ExportWithoutTournament(t *testing.T) {
	storage := newTestStorage(memory.NewSnapshotRepository())

	_, err := storage.Export(context.Background(), nil)
	if !crerr.Is(err, ErrNoTournament) {
		t.Fatalf("expected ErrNoTournament, got %v", err)
	}
}

func TestStorageService_ImportErrors(t *testing.T) {
	storage := newTestStorage(memory.NewSnapshotRepository())
	ctx := context.Background()

	if _, err := storage.Import(ctx, []byte("   ")); !crerr.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty data, got %v", err)
	}
	if _, err := storage.Import(ctx, []byte("[1,2")); !crerr.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for invalid json, got %v", err)
	}

	_, err := storage.Import(ctx, []byte(`{"id":"t1","name":"x","status":"setup","players":[{"id":"p1","name":"Ana"}],"rounds":[]}`))
	if !crerr.Is(err, tournament.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var snapErr *tournament.SnapshotError
	if !crerr.As(err, &snapErr) {
		t.Fatalf("expected SnapshotError, got %T", err)
	}
	if len(snapErr.Errors) != 1 || snapErr.Errors[0].Field != "players[0].score" {
		t.Fatalf("unexpected field errors: %+v", snapErr.Errors)
	}
}

func TestStorageService_CreateBackup(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSnapshotRepository()
	storage := newTestStorage(repo)
	tour := scoredTournament(t)

	t.Run("named", func(t *testing.T) {
		key, err := storage.CreateBackup(ctx, tour, " before-final ")
		if err != nil {
			t.Fatalf("create backup: %v", err)
		}
		if key != "badminton_tournament_backup_before-final" {
			t.Fatalf("unexpected backup key: %s", key)
		}
	})

	t.Run("timestamp name", func(t *testing.T) {
		key, err := storage.CreateBackup(ctx, tour, "")
		if err != nil {
			t.Fatalf("create backup: %v", err)
		}
		if key != "badminton_tournament_backup_2026-03-01T10-20-30-123Z" {
			t.Fatalf("unexpected backup key: %s", key)
		}
	})

	t.Run("invalid name", func(t *testing.T) {
		if _, err := storage.CreateBackup(ctx, tour, "../etc"); !crerr.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("nothing to back up", func(t *testing.T) {
		empty := newTestStorage(memory.NewSnapshotRepository())
		if _, err := empty.CreateBackup(ctx, nil, "x"); !crerr.Is(err, ErrNoTournament) {
			t.Fatalf("expected ErrNoTournament, got %v", err)
		}
	})
}

func TestStorageService_ListBackups(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSnapshotRepository(snapshot.Entry{
		Key:   "badminton_tournament_backup_broken",
		Value: []byte("{oops"),
	})
	storage := newTestStorage(repo)
	tour := scoredTournament(t)

	for i, name := range []string{"first", "second", "third"} {
		at := storageNow.Add(time.Duration(i) * time.Hour)
		storage.now = func() time.Time { return at }
		if _, err := storage.CreateBackup(ctx, tour, name); err != nil {
			t.Fatalf("create backup %s: %v", name, err)
		}
	}

	backups, err := storage.ListBackups(ctx)
	if err != nil {
		t.Fatalf("list backups: %v", err)
	}
	if len(backups) != 3 {
		t.Fatalf("expected 3 readable backups, got %d", len(backups))
	}
	wantOrder := []string{"third", "second", "first"}
	for i, want := range wantOrder {
		if backups[i].Key != "badminton_tournament_backup_"+want {
			t.Fatalf("backup %d: expected %s, got %s", i, want, backups[i].Key)
		}
	}
	if backups[0].Name != "Club Night" || backups[0].Players != 4 || backups[0].Rounds != 1 {
		t.Fatalf("unexpected backup info: %+v", backups[0])
	}
	if backups[0].Size <= 0 {
		t.Fatalf("expected backup size")
	}
}

func TestStorageService_RestoreAndDeleteBackup(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(memory.NewSnapshotRepository())
	tour := scoredTournament(t)

	key, err := storage.CreateBackup(ctx, tour, "snap")
	if err != nil {
		t.Fatalf("create backup: %v", err)
	}

	restored, err := storage.RestoreBackup(ctx, key)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !bytes.Equal(encodedSnapshot(t, restored), encodedSnapshot(t, tour)) {
		t.Fatalf("restored tournament differs from backup source")
	}

	if _, err := storage.RestoreBackup(ctx, "badminton_tournament"); !crerr.Is(err, ErrInvalidBackupKey) {
		t.Fatalf("expected ErrInvalidBackupKey, got %v", err)
	}
	if _, err := storage.RestoreBackup(ctx, "badminton_tournament_backup_missing"); !crerr.Is(err, ErrBackupNotFound) {
		t.Fatalf("expected ErrBackupNotFound, got %v", err)
	}
	if err := storage.DeleteBackup(ctx, "badminton_tournament"); !crerr.Is(err, ErrInvalidBackupKey) {
		t.Fatalf("expected ErrInvalidBackupKey on delete, got %v", err)
	}

	if err := storage.DeleteBackup(ctx, key); err != nil {
		t.Fatalf("delete backup: %v", err)
	}
	if _, err := storage.RestoreBackup(ctx, key); !crerr.Is(err, ErrNotFound) {
		t.Fatalf("expected deleted backup to be gone, got %v", err)
	}
}

func TestStorageService_Stats(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSnapshotRepository()
	storage := newTestStorage(repo)

	stats, err := storage.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.HasTournament || stats.TotalSize != 0 || stats.LastSave != nil {
		t.Fatalf("unexpected empty stats: %+v", stats)
	}

	tour := scoredTournament(t)
	if err := storage.Save(ctx, tour); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := storage.CreateBackup(ctx, tour, "one"); err != nil {
		t.Fatalf("backup: %v", err)
	}

	stats, err = storage.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !stats.HasTournament || stats.BackupCount != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.TournamentSize <= 0 || stats.BackupSize <= 0 {
		t.Fatalf("expected sizes, got %+v", stats)
	}
	if stats.TotalSize != stats.TournamentSize+stats.BackupSize {
		t.Fatalf("total size mismatch: %+v", stats)
	}
	if stats.LastSave == nil || !stats.LastSave.Equal(storageNow) {
		t.Fatalf("unexpected last save: %v", stats.LastSave)
	}
}

func TestStorageService_WarnsOnLargeData(t *testing.T) {
	core, logs := observer.New(logging.LevelWarn)
	cfg := DefaultStorageConfig()
	cfg.SizeWarnBytes = 16
	storage := NewStorageService(memory.NewSnapshotRepository(), cfg, logging.FromZap(zap.New(core)))

	if err := storage.Save(context.Background(), scoredTournament(t)); err != nil {
		t.Fatalf("save: %v", err)
	}

	entries := logs.FilterMessage("tournament data is very large").All()
	if len(entries) != 1 {
		t.Fatalf("expected one size warning, got %d", len(entries))
	}
	if entries[0].ContextMap()["key"] != "badminton_tournament" {
		t.Fatalf("unexpected warning fields: %v", entries[0].ContextMap())
	}
}

func TestStorageService_RepositoryFailuresUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := snapshotmock.NewRepository(t)
	storage := newTestStorage(repo)
	dbErr := errors.New("connection refused")

	repo.
		On("Put", mock.Anything, mock.MatchedBy(func(e snapshot.Entry) bool { return e.Key == "badminton_tournament" })).
		Return(dbErr).
		Once()
	repo.
		On("Get", mock.Anything, "badminton_tournament").
		Return(snapshot.Entry{}, false, dbErr).
		Once()

	err := storage.Save(ctx, scoredTournament(t))
	if !crerr.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable on save, got %v", err)
	}
	if !crerr.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected dependency category on save, got %v", err)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected cause in message, got %v", err)
	}

	if _, _, err := storage.Load(ctx); !crerr.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable on load, got %v", err)
	}
}
