package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/badminton-tournament/internal/domain/pairing"
	"github.com/riskibarqy/badminton-tournament/internal/domain/tournament"
	"github.com/riskibarqy/badminton-tournament/internal/platform/id"
	"github.com/riskibarqy/badminton-tournament/internal/platform/logging"
)

// StatusNone is reported when no tournament is loaded.
const StatusNone = "none"

type TournamentServiceConfig struct {
	DefaultName string
	Autosave    bool
}

type GeneratedRound struct {
	Round    *tournament.Round
	Strategy pairing.Strategy
	Attempts int
	Degraded bool
	Warning  string
	// Released lists players benched last round that were made eligible again.
	Released []string
}

// TournamentService owns the single in-memory tournament. Every command runs
// under one mutex against a clone of the aggregate; the clone replaces the
// current state only when the command succeeds.
type TournamentService struct {
	mu      sync.Mutex
	current *tournament.Tournament

	engine        *pairing.Engine
	storage       *StorageService
	tournamentIDs id.Generator
	playerIDs     id.Generator
	roundIDs      id.Generator
	defaultName   string
	autosave      bool
	logger        *logging.Logger
	now           func() time.Time
}

func NewTournamentService(
	engine *pairing.Engine,
	storage *StorageService,
	ids id.Generator,
	cfg TournamentServiceConfig,
	logger *logging.Logger,
) *TournamentService {
	if logger == nil {
		logger = logging.Default()
	}
	name := strings.TrimSpace(cfg.DefaultName)
	if name == "" {
		name = tournament.DefaultName
	}

	return &TournamentService{
		engine:        engine,
		storage:       storage,
		tournamentIDs: id.WithPrefix("tournament", ids),
		playerIDs:     id.WithPrefix("player", ids),
		roundIDs:      id.WithPrefix("round", ids),
		defaultName:   name,
		autosave:      cfg.Autosave,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *TournamentService) CreateTournament(ctx context.Context, name string) (*tournament.Tournament, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.CreateTournament")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.newTournament(name)
	if err != nil {
		return nil, err
	}
	s.current = t
	s.autoSave(ctx)

	s.logger.InfoContext(ctx, "tournament created", "tournament_id", t.ID, "name", t.Name)
	return t.Clone(), nil
}

// LoadTournament replaces the in-memory tournament with the saved one. It
// reports false and keeps the current state when nothing is saved.
func (s *TournamentService) LoadTournament(ctx context.Context) (*tournament.Tournament, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.LoadTournament")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	t, exists, err := s.storage.Load(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("load tournament: %w", err)
	}
	if !exists {
		return nil, false, nil
	}
	s.current = t

	return t.Clone(), true, nil
}

func (s *TournamentService) Tournament(ctx context.Context) (*tournament.Tournament, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, ErrNoTournament
	}
	return s.current.Clone(), nil
}

// Save writes the current tournament regardless of the autosave setting.
func (s *TournamentService) Save(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.Save")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return ErrNoTournament
	}
	return s.storage.Save(ctx, s.current)
}

func (s *TournamentService) ResetTournament(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.ResetTournament")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutate(ctx, func(t *tournament.Tournament) error {
		t.Reset()
		return nil
	})
}

// AddPlayer registers a player, creating a default tournament first when
// none is loaded.
func (s *TournamentService) AddPlayer(ctx context.Context, name string) (tournament.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.AddPlayer")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	var next *tournament.Tournament
	if s.current == nil {
		t, err := s.newTournament("")
		if err != nil {
			return tournament.Player{}, err
		}
		next = t
	} else {
		next = s.current.Clone()
	}

	playerID, err := s.playerIDs.NewID()
	if err != nil {
		return tournament.Player{}, fmt.Errorf("generate player id: %w", err)
	}
	p, err := next.AddPlayer(playerID, name)
	if err != nil {
		return tournament.Player{}, err
	}

	s.current = next
	s.autoSave(ctx)
	return *p, nil
}

func (s *TournamentService) RemovePlayer(ctx context.Context, playerID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.RemovePlayer")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutate(ctx, func(t *tournament.Tournament) error {
		return t.RemovePlayer(playerID)
	})
}

func (s *TournamentService) UpdatePlayer(ctx context.Context, playerID, name string) (tournament.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.UpdatePlayer")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	var out tournament.Player
	err := s.mutate(ctx, func(t *tournament.Tournament) error {
		p, err := t.UpdatePlayer(playerID, name)
		if err != nil {
			return err
		}
		out = *p
		return nil
	})
	return out, err
}

func (s *TournamentService) SetPlayerActive(ctx context.Context, playerID string, active bool) (tournament.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.SetPlayerActive")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	var out tournament.Player
	err := s.mutate(ctx, func(t *tournament.Tournament) error {
		p, err := t.SetPlayerActive(playerID, active)
		if err != nil {
			return err
		}
		out = *p
		return nil
	})
	return out, err
}

// Players returns the roster ordered by score, best first.
func (s *TournamentService) Players(ctx context.Context) []tournament.Player {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return []tournament.Player{}
	}
	sorted := s.current.SortedPlayers()
	out := make([]tournament.Player, 0, len(sorted))
	for _, p := range sorted {
		out = append(out, *p)
	}
	return out
}

func (s *TournamentService) Player(ctx context.Context, playerID string) (tournament.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return tournament.Player{}, ErrNoTournament
	}
	p, ok := s.current.Player(playerID)
	if !ok {
		return tournament.Player{}, fmt.Errorf("%w: id=%s", tournament.ErrPlayerNotFound, playerID)
	}
	return *p, nil
}

func (s *TournamentService) StartTournament(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.StartTournament")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutate(ctx, func(t *tournament.Tournament) error {
		return t.Start()
	})
}

func (s *TournamentService) CompleteTournament(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.CompleteTournament")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutate(ctx, func(t *tournament.Tournament) error {
		return t.Complete()
	})
}

func (s *TournamentService) Status(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return StatusNone
	}
	return string(s.current.Status)
}

func (s *TournamentService) CanStartTournament(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current != nil && s.current.CanStart()
}

// GenerateRound draws the next round. A tournament still in setup is started
// first when it has enough players. Degraded pairings are logged and
// reported but never fail the command.
func (s *TournamentService) GenerateRound(ctx context.Context) (GeneratedRound, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.GenerateRound")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	var out GeneratedRound
	err := s.mutate(ctx, func(t *tournament.Tournament) error {
		if t.Status == tournament.StatusSetup && t.CanStart() {
			if err := t.Start(); err != nil {
				return err
			}
		}
		if !t.CanAddRound() {
			return fmt.Errorf("%w: status=%s", tournament.ErrNotActive, t.Status)
		}

		released := t.ReleaseSittingOut()
		res, err := s.engine.GeneratePairings(t.ActivePlayers(), t.LastRound(), t.Settings.Mode, t.Rounds)
		if err != nil {
			return fmt.Errorf("generate pairings: %w", err)
		}

		roundID, err := s.roundIDs.NewID()
		if err != nil {
			return fmt.Errorf("generate round id: %w", err)
		}
		round, err := tournament.NewRound(roundID, len(t.Rounds)+1, res.Matches, s.now().UTC())
		if err != nil {
			return err
		}
		round.SittingOut = res.SittingOut
		if err := t.AddRound(round); err != nil {
			return err
		}

		out = GeneratedRound{
			Round:    round.Clone(),
			Strategy: res.Strategy,
			Attempts: res.Attempts,
			Degraded: res.Degraded,
			Released: released,
		}
		if res.Warning != nil {
			out.Warning = res.Warning.Error()
		}
		return nil
	})
	if err != nil {
		return GeneratedRound{}, err
	}

	if out.Degraded {
		s.logger.WarnContext(ctx, "pairing constraints not satisfied",
			"round", out.Round.Number,
			"strategy", string(out.Strategy),
			"attempts", out.Attempts,
			"warning", out.Warning,
		)
	}
	s.logger.InfoContext(ctx, "round generated",
		"round", out.Round.Number,
		"matches", len(out.Round.Matches),
		"sitting_out", len(out.Round.SittingOut),
	)
	return out, nil
}

// CurrentRound fails with tournament.ErrRoundNotFound when no round has been
// generated yet.
func (s *TournamentService) CurrentRound(ctx context.Context) (*tournament.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, ErrNoTournament
	}
	round := s.current.CurrentRoundRef()
	if round == nil {
		return nil, fmt.Errorf("%w: no current round", tournament.ErrRoundNotFound)
	}
	return round.Clone(), nil
}

func (s *TournamentService) Rounds(ctx context.Context) []*tournament.Round {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return []*tournament.Round{}
	}
	out := make([]*tournament.Round, 0, len(s.current.Rounds))
	for _, r := range s.current.Rounds {
		out = append(out, r.Clone())
	}
	return out
}

func (s *TournamentService) Round(ctx context.Context, number int) (*tournament.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, ErrNoTournament
	}
	round, ok := s.current.RoundByNumber(number)
	if !ok {
		return nil, fmt.Errorf("%w: number=%d", tournament.ErrRoundNotFound, number)
	}
	return round.Clone(), nil
}

// Match looks the id up across every round.
func (s *TournamentService) Match(ctx context.Context, matchID string) (*tournament.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, ErrNoTournament
	}
	m, _, ok := s.current.MatchByID(matchID)
	if !ok {
		return nil, fmt.Errorf("%w: id=%s", tournament.ErrMatchNotFound, matchID)
	}
	return m.Clone(), nil
}

func (s *TournamentService) CurrentRoundMatches(ctx context.Context) []*tournament.Match {
	return s.currentRoundMatches(func(r *tournament.Round) []*tournament.Match { return r.Matches })
}

func (s *TournamentService) PendingMatches(ctx context.Context) []*tournament.Match {
	return s.currentRoundMatches((*tournament.Round).PendingMatches)
}

func (s *TournamentService) CompletedMatches(ctx context.Context) []*tournament.Match {
	return s.currentRoundMatches((*tournament.Round).CompletedMatches)
}

func (s *TournamentService) RecordMatchResult(ctx context.Context, matchID string, winner tournament.Winner) (*tournament.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.RecordMatchResult")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	var out *tournament.Match
	err := s.mutate(ctx, func(t *tournament.Tournament) error {
		m, err := t.RecordMatchResult(matchID, winner)
		if err != nil {
			return err
		}
		out = m.Clone()
		return nil
	})
	return out, err
}

func (s *TournamentService) ResetMatch(ctx context.Context, matchID string) (*tournament.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.ResetMatch")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	var out *tournament.Match
	err := s.mutate(ctx, func(t *tournament.Tournament) error {
		m, err := t.ResetMatch(matchID)
		if err != nil {
			return err
		}
		out = m.Clone()
		return nil
	})
	return out, err
}

func (s *TournamentService) Rankings(ctx context.Context) []tournament.Ranking {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return []tournament.Ranking{}
	}
	return s.current.Rankings()
}

func (s *TournamentService) TournamentStats(ctx context.Context) tournament.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return tournament.Stats{}
	}
	return s.current.Stats()
}

func (s *TournamentService) PairingStats(ctx context.Context) (pairing.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return pairing.Stats{}, ErrNoTournament
	}
	return pairing.ComputeStats(s.current.Rounds, s.current.Players), nil
}

func (s *TournamentService) UpdateSettings(ctx context.Context, update tournament.SettingsUpdate) (tournament.Settings, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.UpdateSettings")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	var out tournament.Settings
	err := s.mutate(ctx, func(t *tournament.Tournament) error {
		settings, err := t.UpdateSettings(update)
		if err != nil {
			return err
		}
		out = settings
		return nil
	})
	return out, err
}

// Settings falls back to the defaults when no tournament is loaded.
func (s *TournamentService) Settings(ctx context.Context) tournament.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return tournament.DefaultSettings()
	}
	return s.current.Settings
}

func (s *TournamentService) ValidateTournament(ctx context.Context) tournament.ValidationReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return tournament.ValidationReport{
			Valid:    false,
			Errors:   []string{"no tournament loaded"},
			Warnings: []string{},
		}
	}
	return s.current.Validate()
}

// Export falls back to the saved tournament when none is loaded.
func (s *TournamentService) Export(ctx context.Context) ([]byte, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.Export")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.storage.Export(ctx, s.current)
}

// Import replaces the current tournament with the parsed document once it
// has been saved.
func (s *TournamentService) Import(ctx context.Context, data []byte) (*tournament.Tournament, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.Import")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.storage.Import(ctx, data)
	if err != nil {
		return nil, err
	}
	if err := s.storage.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("save imported tournament: %w", err)
	}
	s.current = t

	s.logger.InfoContext(ctx, "tournament imported", "tournament_id", t.ID, "players", len(t.Players), "rounds", len(t.Rounds))
	return t.Clone(), nil
}

func (s *TournamentService) CreateBackup(ctx context.Context, name string) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.CreateBackup")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.storage.CreateBackup(ctx, s.current, name)
}

func (s *TournamentService) ListBackups(ctx context.Context) ([]BackupInfo, error) {
	return s.storage.ListBackups(ctx)
}

func (s *TournamentService) RestoreFromBackup(ctx context.Context, key string) (*tournament.Tournament, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TournamentService.RestoreFromBackup")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.storage.RestoreBackup(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := s.storage.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("save restored tournament: %w", err)
	}
	s.current = t

	s.logger.InfoContext(ctx, "tournament restored from backup", "key", key, "tournament_id", t.ID)
	return t.Clone(), nil
}

func (s *TournamentService) DeleteBackup(ctx context.Context, key string) error {
	return s.storage.DeleteBackup(ctx, key)
}

func (s *TournamentService) StorageStats(ctx context.Context) (StorageStats, error) {
	return s.storage.Stats(ctx)
}

func (s *TournamentService) HasSavedTournament(ctx context.Context) (bool, error) {
	return s.storage.HasSaved(ctx)
}

func (s *TournamentService) SetAutoSave(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.autosave = enabled
}

func (s *TournamentService) AutoSaveEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.autosave
}

// mutate runs fn against a clone of the current tournament and commits it
// only on success. Callers hold s.mu.
func (s *TournamentService) mutate(ctx context.Context, fn func(t *tournament.Tournament) error) error {
	if s.current == nil {
		return ErrNoTournament
	}
	next := s.current.Clone()
	if err := fn(next); err != nil {
		return err
	}
	s.current = next
	s.autoSave(ctx)
	return nil
}

func (s *TournamentService) currentRoundMatches(pick func(*tournament.Round) []*tournament.Match) []*tournament.Match {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return []*tournament.Match{}
	}
	round := s.current.CurrentRoundRef()
	if round == nil {
		return []*tournament.Match{}
	}
	matches := pick(round)
	out := make([]*tournament.Match, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Clone())
	}
	return out
}

func (s *TournamentService) newTournament(name string) (*tournament.Tournament, error) {
	tournamentID, err := s.tournamentIDs.NewID()
	if err != nil {
		return nil, fmt.Errorf("generate tournament id: %w", err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = s.defaultName
	}
	return tournament.New(tournamentID, name, s.now().UTC()), nil
}

// autoSave persists the current tournament when enabled. Failures are logged
// and do not undo the command.
func (s *TournamentService) autoSave(ctx context.Context) {
	if !s.autosave || s.current == nil {
		return
	}
	if err := s.storage.Save(ctx, s.current); err != nil {
		s.logger.ErrorContext(ctx, "tournament autosave failed", "tournament_id", s.current.ID, "error", err)
	}
}
