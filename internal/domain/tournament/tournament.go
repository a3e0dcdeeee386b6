package tournament

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

const (
	MinPlayers  = 4
	DefaultName = "Badminton Tournament"
)

type Status string

const (
	StatusSetup     Status = "setup"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusSetup, StatusActive, StatusCompleted:
		return true
	default:
		return false
	}
}

// Tournament is the aggregate root. It owns its players and rounds; rounds
// own their matches.
type Tournament struct {
	ID           string
	Name         string
	Players      []*Player
	Rounds       []*Round
	CurrentRound int
	Status       Status
	CreatedAt    time.Time
	Settings     Settings
}

type Ranking struct {
	Rank   int
	Player Player
}

type Stats struct {
	TotalPlayers     int
	ActivePlayers    int
	TotalRounds      int
	CompletedRounds  int
	TotalMatches     int
	CompletedMatches int
	PendingMatches   int
}

type ValidationReport struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

func New(id, name string, createdAt time.Time) *Tournament {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName
	}
	return &Tournament{
		ID:        id,
		Name:      name,
		Players:   []*Player{},
		Rounds:    []*Round{},
		Status:    StatusSetup,
		CreatedAt: createdAt,
		Settings:  DefaultSettings(),
	}
}

func (t *Tournament) Start() error {
	if t.Status != StatusSetup {
		return fmt.Errorf("%w: tournament start from %s", ErrInvalidTransition, t.Status)
	}
	if len(t.Players) < MinPlayers {
		return fmt.Errorf("%w: have %d", ErrNotEnoughPlayers, len(t.Players))
	}
	t.Status = StatusActive
	return nil
}

func (t *Tournament) Complete() error {
	if t.Status != StatusActive {
		return fmt.Errorf("%w: tournament complete from %s", ErrInvalidTransition, t.Status)
	}
	t.Status = StatusCompleted
	return nil
}

// Reset returns to setup. Players are kept with zeroed scores and all of
// them are eligible for pairing again.
func (t *Tournament) Reset() {
	for _, p := range t.Players {
		p.ResetScore()
		p.SetActive(true)
	}
	t.Rounds = []*Round{}
	t.CurrentRound = 0
	t.Status = StatusSetup
}

func (t *Tournament) CanStart() bool {
	return t.Status == StatusSetup && len(t.Players) >= MinPlayers
}

func (t *Tournament) CanAddRound() bool {
	if t.Status != StatusActive {
		return false
	}
	current := t.CurrentRoundRef()
	return current == nil || current.Status == RoundStatusCompleted
}

func (t *Tournament) AddPlayer(id, name string) (*Player, error) {
	if t.Status == StatusActive {
		return nil, fmt.Errorf("%w: cannot add player", ErrRosterFrozen)
	}
	player, err := NewPlayer(id, name)
	if err != nil {
		return nil, err
	}
	if t.nameTaken(player.Name, "") {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateName, player.Name)
	}
	if _, exists := t.Player(id); exists {
		return nil, fmt.Errorf("%w: player id %s already registered", ErrDuplicateName, id)
	}

	t.Players = append(t.Players, player)
	return player, nil
}

func (t *Tournament) RemovePlayer(playerID string) error {
	if t.Status == StatusActive {
		return fmt.Errorf("%w: cannot remove player", ErrRosterFrozen)
	}
	idx := slices.IndexFunc(t.Players, func(p *Player) bool { return p.ID == playerID })
	if idx < 0 {
		return fmt.Errorf("%w: id=%s", ErrPlayerNotFound, playerID)
	}
	t.Players = slices.Delete(t.Players, idx, idx+1)
	return nil
}

func (t *Tournament) UpdatePlayer(playerID, name string) (*Player, error) {
	if t.Status == StatusActive {
		return nil, fmt.Errorf("%w: cannot rename player", ErrRosterFrozen)
	}
	player, ok := t.Player(playerID)
	if !ok {
		return nil, fmt.Errorf("%w: id=%s", ErrPlayerNotFound, playerID)
	}
	normalized, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}
	if t.nameTaken(normalized, playerID) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateName, normalized)
	}
	if err := player.Rename(normalized); err != nil {
		return nil, err
	}
	return player, nil
}

// SetPlayerActive toggles pairing eligibility. It is not a roster change and
// is allowed in any state.
func (t *Tournament) SetPlayerActive(playerID string, active bool) (*Player, error) {
	player, ok := t.Player(playerID)
	if !ok {
		return nil, fmt.Errorf("%w: id=%s", ErrPlayerNotFound, playerID)
	}
	player.SetActive(active)
	if last := t.LastRound(); last != nil {
		// An explicit toggle owns the flag from here on.
		last.SittingOut = slices.DeleteFunc(last.SittingOut, func(id string) bool { return id == playerID })
	}
	return player, nil
}

func (t *Tournament) Player(playerID string) (*Player, bool) {
	for _, p := range t.Players {
		if p.ID == playerID {
			return p, true
		}
	}
	return nil, false
}

func (t *Tournament) ActivePlayers() []*Player {
	out := make([]*Player, 0, len(t.Players))
	for _, p := range t.Players {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out
}

// SortedPlayers orders by score descending, then name.
func (t *Tournament) SortedPlayers() []*Player {
	out := slices.Clone(t.Players)
	slices.SortStableFunc(out, comparePlayers)
	return out
}

func comparePlayers(a, b *Player) int {
	if a.Score != b.Score {
		return b.Score - a.Score
	}
	if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

// Rankings uses competition ranking: tied scores share a rank and the next
// rank skips accordingly.
func (t *Tournament) Rankings() []Ranking {
	sorted := t.SortedPlayers()
	out := make([]Ranking, 0, len(sorted))
	for i, p := range sorted {
		rank := i + 1
		if i > 0 && sorted[i-1].Score == p.Score {
			rank = out[i-1].Rank
		}
		out = append(out, Ranking{Rank: rank, Player: *p})
	}
	return out
}

func (t *Tournament) AddRound(round *Round) error {
	if !t.CanAddRound() {
		return fmt.Errorf("%w: status=%s", ErrNotActive, t.Status)
	}
	if round.Number != len(t.Rounds)+1 {
		return fmt.Errorf("%w: expected %d, got %d", ErrInvalidRoundNumber, len(t.Rounds)+1, round.Number)
	}
	if err := round.ValidateMatches(); err != nil {
		return err
	}
	for _, m := range round.Matches {
		for _, id := range m.PlayerIDs() {
			if _, ok := t.Player(id); !ok {
				return fmt.Errorf("%w: match=%s player=%s", ErrPlayerNotFound, m.ID, id)
			}
		}
	}

	t.Rounds = append(t.Rounds, round)
	t.CurrentRound = round.Number
	return nil
}

func (t *Tournament) CurrentRoundRef() *Round {
	if t.CurrentRound == 0 {
		return nil
	}
	round, _ := t.RoundByNumber(t.CurrentRound)
	return round
}

func (t *Tournament) LastRound() *Round {
	var last *Round
	for _, r := range t.Rounds {
		if last == nil || r.Number > last.Number {
			last = r
		}
	}
	return last
}

func (t *Tournament) RoundByNumber(number int) (*Round, bool) {
	for _, r := range t.Rounds {
		if r.Number == number {
			return r, true
		}
	}
	return nil, false
}

// MatchByID searches every round, newest first.
func (t *Tournament) MatchByID(matchID string) (*Match, *Round, bool) {
	for i := len(t.Rounds) - 1; i >= 0; i-- {
		if m, ok := t.Rounds[i].MatchByID(matchID); ok {
			return m, t.Rounds[i], true
		}
	}
	return nil, nil, false
}

// ReleaseSittingOut reactivates players the pairing engine benched for the
// latest round and returns their ids.
func (t *Tournament) ReleaseSittingOut() []string {
	last := t.LastRound()
	if last == nil {
		return nil
	}
	released := make([]string, 0, len(last.SittingOut))
	for _, id := range last.SittingOut {
		if p, ok := t.Player(id); ok && !p.IsActive {
			p.SetActive(true)
			released = append(released, id)
		}
	}
	return released
}

// RecordMatchResult scores a match in the current round. The points credited
// are kept on the match so a later reset can take back exactly that amount.
func (t *Tournament) RecordMatchResult(matchID string, winner Winner) (*Match, error) {
	if t.Status == StatusCompleted {
		return nil, fmt.Errorf("%w: tournament is completed", ErrNoActiveRound)
	}
	round := t.CurrentRoundRef()
	if round == nil {
		return nil, ErrNoActiveRound
	}
	match, ok := round.MatchByID(matchID)
	if !ok {
		return nil, fmt.Errorf("%w: id=%s", ErrMatchNotFound, matchID)
	}
	if err := match.RecordResult(winner); err != nil {
		return nil, err
	}

	award := &Award{WinnerPoints: t.Settings.WinnerPoints, LoserPoints: t.Settings.LoserPoints}
	winning, _ := match.WinningPair()
	losing, _ := match.LosingPair()
	t.credit(winning, award.WinnerPoints)
	t.credit(losing, award.LoserPoints)
	match.Award = award

	if err := round.syncStatus(); err != nil {
		return nil, err
	}
	return match, nil
}

// ResetMatch reverts a completed match in the current round to pending and
// debits the recorded award.
func (t *Tournament) ResetMatch(matchID string) (*Match, error) {
	if t.Status == StatusCompleted {
		return nil, fmt.Errorf("%w: tournament is completed", ErrInvalidTransition)
	}
	round := t.CurrentRoundRef()
	if round == nil {
		return nil, ErrNoActiveRound
	}
	match, ok := round.MatchByID(matchID)
	if !ok {
		return nil, fmt.Errorf("%w: id=%s", ErrMatchNotFound, matchID)
	}
	if !match.IsCompleted() {
		return nil, fmt.Errorf("%w: match=%s", ErrMatchNotCompleted, matchID)
	}

	winning, _ := match.WinningPair()
	losing, _ := match.LosingPair()
	award, err := match.Reset()
	if err != nil {
		return nil, err
	}
	if award != nil {
		t.debit(winning, award.WinnerPoints)
		t.debit(losing, award.LoserPoints)
	}
	round.reopen()
	return match, nil
}

func (t *Tournament) credit(side Side, points int) {
	for _, id := range side {
		if p, ok := t.Player(id); ok {
			_ = p.AddScore(points)
		}
	}
}

func (t *Tournament) debit(side Side, points int) {
	for _, id := range side {
		p, ok := t.Player(id)
		if !ok {
			continue
		}
		if err := p.SubtractScore(points); err != nil {
			p.ResetScore()
		}
	}
}

func (t *Tournament) Stats() Stats {
	stats := Stats{
		TotalPlayers: len(t.Players),
		TotalRounds:  len(t.Rounds),
	}
	for _, p := range t.Players {
		if p.IsActive {
			stats.ActivePlayers++
		}
	}
	for _, r := range t.Rounds {
		if r.Status == RoundStatusCompleted {
			stats.CompletedRounds++
		}
		stats.TotalMatches += len(r.Matches)
		stats.CompletedMatches += len(r.CompletedMatches())
	}
	stats.PendingMatches = stats.TotalMatches - stats.CompletedMatches
	return stats
}

func (t *Tournament) UpdateSettings(update SettingsUpdate) (Settings, error) {
	if t.Status == StatusActive {
		return t.Settings, ErrSettingsLocked
	}
	next := t.Settings.Merge(update)
	if err := next.Validate(); err != nil {
		return t.Settings, err
	}
	t.Settings = next
	return next, nil
}

// Validate reports consistency problems without failing. Errors mark broken
// invariants, warnings mark suspicious but legal state.
func (t *Tournament) Validate() ValidationReport {
	report := ValidationReport{Errors: []string{}, Warnings: []string{}}

	if len(t.Players) < MinPlayers {
		report.Errors = append(report.Errors, fmt.Sprintf("tournament needs at least %d players", MinPlayers))
	}

	names := make(map[string]struct{}, len(t.Players))
	for _, p := range t.Players {
		key := strings.ToLower(strings.TrimSpace(p.Name))
		if _, exists := names[key]; exists {
			report.Errors = append(report.Errors, "duplicate player names found")
			break
		}
		names[key] = struct{}{}
	}

	for _, r := range t.Rounds {
		if err := r.ValidateMatches(); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("round %d: %v", r.Number, err))
		}
	}

	if len(t.Players) > 0 {
		lo, hi := t.Players[0].Score, t.Players[0].Score
		for _, p := range t.Players[1:] {
			lo = min(lo, p.Score)
			hi = max(hi, p.Score)
		}
		if hi-lo > len(t.Rounds)*t.Settings.WinnerPoints*2 {
			report.Warnings = append(report.Warnings, "large score gap detected, check for scoring errors")
		}
	}

	report.Valid = len(report.Errors) == 0
	return report
}

func (t *Tournament) Clone() *Tournament {
	out := *t
	out.Players = make([]*Player, 0, len(t.Players))
	for _, p := range t.Players {
		cp := *p
		out.Players = append(out.Players, &cp)
	}
	out.Rounds = make([]*Round, 0, len(t.Rounds))
	for _, r := range t.Rounds {
		out.Rounds = append(out.Rounds, r.Clone())
	}
	return &out
}

func (t *Tournament) nameTaken(name, exceptID string) bool {
	for _, p := range t.Players {
		if p.ID != exceptID && sameName(p.Name, name) {
			return true
		}
	}
	return false
}

func (t *Tournament) String() string {
	return fmt.Sprintf("Tournament: %s (%s, %d players, %d rounds)", t.Name, t.Status, len(t.Players), len(t.Rounds))
}
