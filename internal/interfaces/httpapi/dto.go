package httpapi

import (
	"time"

	"github.com/riskibarqy/badminton-tournament/internal/domain/pairing"
	"github.com/riskibarqy/badminton-tournament/internal/domain/tournament"
	"github.com/riskibarqy/badminton-tournament/internal/usecase"
)

type createTournamentRequest struct {
	Name string `json:"name" validate:"omitempty,max=100"`
}

type playerRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type playerActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

type recordResultRequest struct {
	Winner int `json:"winner" validate:"required,oneof=1 2"`
}

type updateSettingsRequest struct {
	WinnerPoints *int    `json:"winner_points" validate:"omitempty,gt=0"`
	LoserPoints  *int    `json:"loser_points" validate:"omitempty,gte=0"`
	Mode         *string `json:"mode" validate:"omitempty,oneof=singles doubles"`
}

type createBackupRequest struct {
	Name string `json:"name" validate:"omitempty,max=100"`
}

type autoSaveRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

type statusDTO struct {
	Status   string `json:"status"`
	CanStart bool   `json:"can_start"`
}

type tournamentDTO struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Status       string      `json:"status"`
	CurrentRound int         `json:"current_round"`
	CreatedAt    time.Time   `json:"created_at"`
	Settings     settingsDTO `json:"settings"`
	Players      []playerDTO `json:"players"`
	Rounds       []roundDTO  `json:"rounds"`
}

type playerDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	IsActive bool   `json:"is_active"`
}

type matchDTO struct {
	ID     string   `json:"id"`
	Pair1  []string `json:"pair1"`
	Pair2  []string `json:"pair2"`
	Winner int      `json:"winner"`
	Status string   `json:"status"`
}

type roundDTO struct {
	ID         string     `json:"id"`
	Number     int        `json:"number"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	Matches    []matchDTO `json:"matches"`
	SittingOut []string   `json:"sitting_out"`
}

type generatedRoundDTO struct {
	Round    roundDTO `json:"round"`
	Strategy string   `json:"strategy"`
	Attempts int      `json:"attempts"`
	Degraded bool     `json:"degraded"`
	Warning  string   `json:"warning,omitempty"`
	Released []string `json:"released"`
}

type rankingDTO struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	IsActive bool   `json:"is_active"`
}

type statsDTO struct {
	TotalPlayers     int `json:"total_players"`
	ActivePlayers    int `json:"active_players"`
	TotalRounds      int `json:"total_rounds"`
	CompletedRounds  int `json:"completed_rounds"`
	TotalMatches     int `json:"total_matches"`
	CompletedMatches int `json:"completed_matches"`
	PendingMatches   int `json:"pending_matches"`
}

type pairingStatsDTO struct {
	TotalPairings  int                       `json:"total_pairings"`
	UniquePairings int                       `json:"unique_pairings"`
	PartnerCounts  map[string]map[string]int `json:"partner_counts"`
	OpponentCounts map[string]map[string]int `json:"opponent_counts"`
}

type validationDTO struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

type settingsDTO struct {
	WinnerPoints int    `json:"winner_points"`
	LoserPoints  int    `json:"loser_points"`
	Mode         string `json:"mode"`
}

type backupDTO struct {
	Key        string    `json:"key"`
	Name       string    `json:"name"`
	BackedUpAt time.Time `json:"backed_up_at"`
	Players    int       `json:"players"`
	Rounds     int       `json:"rounds"`
	SizeBytes  int       `json:"size_bytes"`
}

type storageStatsDTO struct {
	TournamentBytes int        `json:"tournament_bytes"`
	BackupBytes     int        `json:"backup_bytes"`
	TotalBytes      int        `json:"total_bytes"`
	BackupCount     int        `json:"backup_count"`
	HasTournament   bool       `json:"has_tournament"`
	LastSave        *time.Time `json:"last_save,omitempty"`
	AutoSave        bool       `json:"autosave"`
}

func (r updateSettingsRequest) toUpdate() tournament.SettingsUpdate {
	update := tournament.SettingsUpdate{
		WinnerPoints: r.WinnerPoints,
		LoserPoints:  r.LoserPoints,
	}
	if r.Mode != nil {
		mode := tournament.Mode(*r.Mode)
		update.Mode = &mode
	}
	return update
}

func tournamentToDTO(t *tournament.Tournament) tournamentDTO {
	players := make([]playerDTO, 0, len(t.Players))
	for _, p := range t.Players {
		players = append(players, playerToDTO(*p))
	}
	rounds := make([]roundDTO, 0, len(t.Rounds))
	for _, r := range t.Rounds {
		rounds = append(rounds, roundToDTO(r))
	}

	return tournamentDTO{
		ID:           t.ID,
		Name:         t.Name,
		Status:       string(t.Status),
		CurrentRound: t.CurrentRound,
		CreatedAt:    t.CreatedAt,
		Settings:     settingsToDTO(t.Settings),
		Players:      players,
		Rounds:       rounds,
	}
}

func playerToDTO(p tournament.Player) playerDTO {
	return playerDTO{
		ID:       p.ID,
		Name:     p.Name,
		Score:    p.Score,
		IsActive: p.IsActive,
	}
}

func playersToDTO(players []tournament.Player) []playerDTO {
	out := make([]playerDTO, 0, len(players))
	for _, p := range players {
		out = append(out, playerToDTO(p))
	}
	return out
}

func matchToDTO(m *tournament.Match) matchDTO {
	return matchDTO{
		ID:     m.ID,
		Pair1:  []string{m.Pair1[0], m.Pair1[1]},
		Pair2:  []string{m.Pair2[0], m.Pair2[1]},
		Winner: int(m.Winner),
		Status: string(m.Status),
	}
}

func matchesToDTO(matches []*tournament.Match) []matchDTO {
	out := make([]matchDTO, 0, len(matches))
	for _, m := range matches {
		out = append(out, matchToDTO(m))
	}
	return out
}

func roundToDTO(r *tournament.Round) roundDTO {
	sittingOut := make([]string, 0, len(r.SittingOut))
	sittingOut = append(sittingOut, r.SittingOut...)

	return roundDTO{
		ID:         r.ID,
		Number:     r.Number,
		Status:     string(r.Status),
		CreatedAt:  r.CreatedAt,
		Matches:    matchesToDTO(r.Matches),
		SittingOut: sittingOut,
	}
}

func generatedRoundToDTO(g usecase.GeneratedRound) generatedRoundDTO {
	released := make([]string, 0, len(g.Released))
	released = append(released, g.Released...)

	return generatedRoundDTO{
		Round:    roundToDTO(g.Round),
		Strategy: string(g.Strategy),
		Attempts: g.Attempts,
		Degraded: g.Degraded,
		Warning:  g.Warning,
		Released: released,
	}
}

func rankingsToDTO(rankings []tournament.Ranking) []rankingDTO {
	out := make([]rankingDTO, 0, len(rankings))
	for _, r := range rankings {
		out = append(out, rankingDTO{
			Rank:     r.Rank,
			PlayerID: r.Player.ID,
			Name:     r.Player.Name,
			Score:    r.Player.Score,
			IsActive: r.Player.IsActive,
		})
	}
	return out
}

func statsToDTO(s tournament.Stats) statsDTO {
	return statsDTO{
		TotalPlayers:     s.TotalPlayers,
		ActivePlayers:    s.ActivePlayers,
		TotalRounds:      s.TotalRounds,
		CompletedRounds:  s.CompletedRounds,
		TotalMatches:     s.TotalMatches,
		CompletedMatches: s.CompletedMatches,
		PendingMatches:   s.PendingMatches,
	}
}

func pairingStatsToDTO(s pairing.Stats) pairingStatsDTO {
	return pairingStatsDTO{
		TotalPairings:  s.TotalPairings,
		UniquePairings: s.UniquePairings,
		PartnerCounts:  s.PartnerCounts,
		OpponentCounts: s.OpponentCounts,
	}
}

func validationToDTO(r tournament.ValidationReport) validationDTO {
	return validationDTO{
		Valid:    r.Valid,
		Errors:   r.Errors,
		Warnings: r.Warnings,
	}
}

func settingsToDTO(s tournament.Settings) settingsDTO {
	return settingsDTO{
		WinnerPoints: s.WinnerPoints,
		LoserPoints:  s.LoserPoints,
		Mode:         string(s.Mode),
	}
}

func backupsToDTO(items []usecase.BackupInfo) []backupDTO {
	out := make([]backupDTO, 0, len(items))
	for _, b := range items {
		out = append(out, backupDTO{
			Key:        b.Key,
			Name:       b.Name,
			BackedUpAt: b.BackedUpAt,
			Players:    b.Players,
			Rounds:     b.Rounds,
			SizeBytes:  b.Size,
		})
	}
	return out
}

func storageStatsToDTO(s usecase.StorageStats, autosave bool) storageStatsDTO {
	return storageStatsDTO{
		TournamentBytes: s.TournamentSize,
		BackupBytes:     s.BackupSize,
		TotalBytes:      s.TotalSize,
		BackupCount:     s.BackupCount,
		HasTournament:   s.HasTournament,
		LastSave:        s.LastSave,
		AutoSave:        autosave,
	}
}
