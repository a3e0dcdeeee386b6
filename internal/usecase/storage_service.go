package usecase

import (
	"bytes"
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/bytedance/sonic"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/badminton-tournament/internal/domain/snapshot"
	"github.com/riskibarqy/badminton-tournament/internal/domain/tournament"
	"github.com/riskibarqy/badminton-tournament/internal/platform/logging"
	"github.com/valyala/bytebufferpool"
)

const (
	ExportVersion = "1.0.0"

	timestampKeySuffix    = "_timestamp"
	unknownBackupName     = "Unknown"
	backupTimestampLayout = "2006-01-02T15:04:05.000Z"
)

type StorageConfig struct {
	Key           string
	BackupPrefix  string
	SizeWarnBytes int
}

func DefaultStorageConfig() StorageConfig {
	return StorageConfig{
		Key:           "badminton_tournament",
		BackupPrefix:  "badminton_tournament_backup_",
		SizeWarnBytes: 4 << 20,
	}
}

type BackupInfo struct {
	Key        string
	Name       string
	BackedUpAt time.Time
	Players    int
	Rounds     int
	Size       int
}

type StorageStats struct {
	TournamentSize int
	BackupSize     int
	TotalSize      int
	BackupCount    int
	HasTournament  bool
	LastSave       *time.Time
}

// storedDocument is the persisted form: a tournament snapshot plus the
// optional export and backup envelope fields.
type storedDocument struct {
	tournament.Snapshot
	ExportedAt   *time.Time `json:"exportedAt,omitempty"`
	Version      string     `json:"version,omitempty"`
	BackedUpAt   *time.Time `json:"backedUpAt,omitempty"`
	OriginalName string     `json:"originalName,omitempty"`
}

type backupHeader struct {
	OriginalName string     `json:"originalName"`
	BackedUpAt   time.Time  `json:"backedUpAt"`
	Players      []struct{} `json:"players"`
	Rounds       []struct{} `json:"rounds"`
}

// StorageService persists tournament snapshots, exports and backups on top
// of a key-value repository.
type StorageService struct {
	repo   snapshot.Repository
	cfg    StorageConfig
	logger *logging.Logger
	now    func() time.Time
}

func NewStorageService(repo snapshot.Repository, cfg StorageConfig, logger *logging.Logger) *StorageService {
	if logger == nil {
		logger = logging.Default()
	}
	defaults := DefaultStorageConfig()
	if strings.TrimSpace(cfg.Key) == "" {
		cfg.Key = defaults.Key
	}
	if strings.TrimSpace(cfg.BackupPrefix) == "" {
		cfg.BackupPrefix = cfg.Key + "_backup_"
	}

	return &StorageService{
		repo:   repo,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

func (s *StorageService) Config() StorageConfig {
	return s.cfg
}

func (s *StorageService) Save(ctx context.Context, t *tournament.Tournament) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.StorageService.Save")
	defer span.End()

	if t == nil {
		return fmt.Errorf("%w: tournament is required", ErrInvalidInput)
	}

	value, err := encodeDocument(storedDocument{Snapshot: t.Snapshot()}, false)
	if err != nil {
		return fmt.Errorf("encode tournament: %w", err)
	}
	s.warnIfLarge(ctx, s.cfg.Key, len(value))

	now := s.now().UTC()
	if err := s.repo.Put(ctx, snapshot.Entry{Key: s.cfg.Key, Value: value, UpdatedAt: now}); err != nil {
		return storageError("save tournament", err)
	}
	stamp := snapshot.Entry{
		Key:       s.timestampKey(),
		Value:     []byte(now.Format(time.RFC3339Nano)),
		UpdatedAt: now,
	}
	if err := s.repo.Put(ctx, stamp); err != nil {
		return storageError("save tournament timestamp", err)
	}

	return nil
}

// Load returns the saved tournament, or false when nothing is stored.
func (s *StorageService) Load(ctx context.Context) (*tournament.Tournament, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StorageService.Load")
	defer span.End()

	entry, exists, err := s.repo.Get(ctx, s.cfg.Key)
	if err != nil {
		return nil, false, storageError("load tournament", err)
	}
	if !exists {
		return nil, false, nil
	}

	t, err := decodeTournament(entry.Value)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}

	return t, true, nil
}

func (s *StorageService) Clear(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.StorageService.Clear")
	defer span.End()

	for _, key := range []string{s.cfg.Key, s.timestampKey()} {
		if err := s.repo.Delete(ctx, key); err != nil {
			return storageError("clear tournament", err)
		}
	}
	return nil
}

func (s *StorageService) HasSaved(ctx context.Context) (bool, error) {
	_, exists, err := s.repo.Get(ctx, s.cfg.Key)
	if err != nil {
		return false, storageError("check saved tournament", err)
	}
	return exists, nil
}

func (s *StorageService) LastSaveTime(ctx context.Context) (time.Time, bool, error) {
	entry, exists, err := s.repo.Get(ctx, s.timestampKey())
	if err != nil {
		return time.Time{}, false, storageError("load save timestamp", err)
	}
	if !exists {
		return time.Time{}, false, nil
	}

	ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(string(entry.Value)))
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: save timestamp: %v", ErrCorruptData, err)
	}
	return ts, true, nil
}

// Export renders t, or the saved tournament when t is nil, as an indented
// JSON document stamped with exportedAt and version.
func (s *StorageService) Export(ctx context.Context, t *tournament.Tournament) ([]byte, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StorageService.Export")
	defer span.End()

	t, err := s.resolve(ctx, t)
	if err != nil {
		return nil, err
	}

	exportedAt := s.now().UTC()
	out, err := encodeDocument(storedDocument{
		Snapshot:   t.Snapshot(),
		ExportedAt: &exportedAt,
		Version:    ExportVersion,
	}, true)
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return out, nil
}

// Import parses an exported, backed up or plain snapshot document. Envelope
// fields are ignored. Nothing is persisted here.
func (s *StorageService) Import(ctx context.Context, data []byte) (*tournament.Tournament, error) {
	_, span := startUsecaseSpan(ctx, "usecase.StorageService.Import")
	defer span.End()

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: import data is empty", ErrInvalidInput)
	}

	var doc storedDocument
	if err := sonic.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON format in import data: %v", ErrInvalidInput, err)
	}
	t, err := tournament.FromSnapshot(doc.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("import tournament: %w", err)
	}
	return t, nil
}

// CreateBackup stores t, or the saved tournament when t is nil, under the
// backup prefix. A blank name falls back to the current timestamp.
func (s *StorageService) CreateBackup(ctx context.Context, t *tournament.Tournament, name string) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StorageService.CreateBackup")
	defer span.End()

	now := s.now().UTC()
	name = strings.TrimSpace(name)
	if name == "" {
		name = strings.NewReplacer(":", "-", ".", "-").Replace(now.Format(backupTimestampLayout))
	}
	if !validBackupName(name) {
		return "", fmt.Errorf("%w: backup name %q may only contain letters, digits, '-', '_' and '.'", ErrInvalidInput, name)
	}

	t, err := s.resolve(ctx, t)
	if err != nil {
		return "", err
	}

	value, err := encodeDocument(storedDocument{
		Snapshot:     t.Snapshot(),
		BackedUpAt:   &now,
		OriginalName: t.Name,
	}, false)
	if err != nil {
		return "", fmt.Errorf("encode backup: %w", err)
	}

	key := s.cfg.BackupPrefix + name
	s.warnIfLarge(ctx, key, len(value))
	if err := s.repo.Put(ctx, snapshot.Entry{Key: key, Value: value, UpdatedAt: now}); err != nil {
		return "", storageError("create backup", err)
	}

	s.logger.InfoContext(ctx, "tournament backup created", "key", key, "size_bytes", len(value))
	return key, nil
}

// ListBackups returns readable backups, newest first. Unreadable entries are
// logged and skipped.
func (s *StorageService) ListBackups(ctx context.Context) ([]BackupInfo, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StorageService.ListBackups")
	defer span.End()

	entries, err := s.repo.ListByPrefix(ctx, s.cfg.BackupPrefix)
	if err != nil {
		return nil, storageError("list backups", err)
	}
	if len(entries) == 0 {
		return []BackupInfo{}, nil
	}

	pool, err := ants.NewPool(min(len(entries), runtime.NumCPU()))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	infos := make([]BackupInfo, len(entries))
	readable := make([]bool, len(entries))

	var workers sync.WaitGroup
	for i, entry := range entries {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			info, err := decodeBackupInfo(entry)
			if err != nil {
				s.logger.WarnContext(ctx, "corrupted backup found", "key", entry.Key, "error", err)
				return
			}
			infos[i] = info
			readable[i] = true
		}); err != nil {
			workers.Done()
			workers.Wait()
			return nil, fmt.Errorf("submit backup decode: %w", err)
		}
	}
	workers.Wait()

	out := make([]BackupInfo, 0, len(infos))
	for i, info := range infos {
		if readable[i] {
			out = append(out, info)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].BackedUpAt.Equal(out[j].BackedUpAt) {
			return out[i].BackedUpAt.After(out[j].BackedUpAt)
		}
		return out[i].Key < out[j].Key
	})

	return out, nil
}

func (s *StorageService) RestoreBackup(ctx context.Context, key string) (*tournament.Tournament, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StorageService.RestoreBackup")
	defer span.End()

	if err := s.checkBackupKey(key); err != nil {
		return nil, err
	}

	entry, exists, err := s.repo.Get(ctx, key)
	if err != nil {
		return nil, storageError("load backup", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: key=%s", ErrBackupNotFound, key)
	}

	t, err := decodeTournament(entry.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: backup %s: %v", ErrCorruptData, key, err)
	}
	return t, nil
}

func (s *StorageService) DeleteBackup(ctx context.Context, key string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.StorageService.DeleteBackup")
	defer span.End()

	if err := s.checkBackupKey(key); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, key); err != nil {
		return storageError("delete backup", err)
	}
	return nil
}

func (s *StorageService) Stats(ctx context.Context) (StorageStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StorageService.Stats")
	defer span.End()

	var stats StorageStats

	entry, exists, err := s.repo.Get(ctx, s.cfg.Key)
	if err != nil {
		return StorageStats{}, storageError("load tournament", err)
	}
	if exists {
		stats.HasTournament = true
		stats.TournamentSize = entry.Size()
	}

	backups, err := s.repo.ListByPrefix(ctx, s.cfg.BackupPrefix)
	if err != nil {
		return StorageStats{}, storageError("list backups", err)
	}
	for _, b := range backups {
		stats.BackupSize += b.Size()
		stats.BackupCount++
	}
	stats.TotalSize = stats.TournamentSize + stats.BackupSize

	lastSave, ok, err := s.LastSaveTime(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "read last save time failed", "error", err)
	} else if ok {
		stats.LastSave = &lastSave
	}

	return stats, nil
}

func (s *StorageService) resolve(ctx context.Context, t *tournament.Tournament) (*tournament.Tournament, error) {
	if t != nil {
		return t, nil
	}
	saved, exists, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: nothing saved", ErrNoTournament)
	}
	return saved, nil
}

func (s *StorageService) checkBackupKey(key string) error {
	if !strings.HasPrefix(key, s.cfg.BackupPrefix) || len(key) == len(s.cfg.BackupPrefix) {
		return fmt.Errorf("%w: %q", ErrInvalidBackupKey, key)
	}
	return nil
}

func (s *StorageService) timestampKey() string {
	return s.cfg.Key + timestampKeySuffix
}

func (s *StorageService) warnIfLarge(ctx context.Context, key string, size int) {
	if s.cfg.SizeWarnBytes <= 0 || size <= s.cfg.SizeWarnBytes {
		return
	}
	s.logger.WarnContext(ctx, "tournament data is very large",
		"key", key,
		"size_bytes", size,
		"threshold_bytes", s.cfg.SizeWarnBytes,
	)
}

func encodeDocument(doc storedDocument, indent bool) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	enc := sonic.ConfigDefault.NewEncoder(buf)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}

	return append([]byte(nil), bytes.TrimRight(buf.B, "\n")...), nil
}

func decodeTournament(data []byte) (*tournament.Tournament, error) {
	var doc storedDocument
	if err := sonic.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return tournament.FromSnapshot(doc.Snapshot)
}

func decodeBackupInfo(entry snapshot.Entry) (BackupInfo, error) {
	var header backupHeader
	if err := sonic.Unmarshal(entry.Value, &header); err != nil {
		return BackupInfo{}, err
	}

	name := strings.TrimSpace(header.OriginalName)
	if name == "" {
		name = unknownBackupName
	}
	return BackupInfo{
		Key:        entry.Key,
		Name:       name,
		BackedUpAt: header.BackedUpAt,
		Players:    len(header.Players),
		Rounds:     len(header.Rounds),
		Size:       entry.Size(),
	}, nil
}

func validBackupName(name string) bool {
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.' {
			continue
		}
		return false
	}
	return name != ""
}

func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorageUnavailable, op, err)
}
