package tournament

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Snapshot is the serializable form of a Tournament. Pointer fields mark
// values that must be present in imported data even when they are zero.
type Snapshot struct {
	ID           string            `json:"id" validate:"required"`
	Name         *string           `json:"name" validate:"required"`
	Players      []PlayerSnapshot  `json:"players" validate:"required,dive"`
	Rounds       []RoundSnapshot   `json:"rounds" validate:"required,dive"`
	CurrentRound *int              `json:"currentRound" validate:"omitempty,min=1"`
	Status       string            `json:"status" validate:"required,oneof=setup active completed"`
	CreatedAt    time.Time         `json:"createdAt"`
	Settings     *SettingsSnapshot `json:"settings,omitempty" validate:"omitempty"`
}

type PlayerSnapshot struct {
	ID       string  `json:"id" validate:"required"`
	Name     *string `json:"name" validate:"required"`
	Score    *int    `json:"score" validate:"required,min=0"`
	IsActive *bool   `json:"isActive,omitempty"`
}

type RoundSnapshot struct {
	ID         string          `json:"id" validate:"required"`
	Number     *int            `json:"number" validate:"required,min=1"`
	Matches    []MatchSnapshot `json:"matches" validate:"required,dive"`
	Status     string          `json:"status,omitempty" validate:"omitempty,oneof=planned in-progress completed"`
	CreatedAt  time.Time       `json:"createdAt"`
	SittingOut []string        `json:"sittingOut,omitempty" validate:"omitempty,dive,required"`
}

type MatchSnapshot struct {
	ID     string         `json:"id" validate:"required"`
	Pair1  []string       `json:"pair1" validate:"len=2,dive,required"`
	Pair2  []string       `json:"pair2" validate:"len=2,dive,required"`
	Winner *int           `json:"winner" validate:"omitempty,oneof=1 2"`
	Status string         `json:"status,omitempty" validate:"omitempty,oneof=pending completed"`
	Award  *AwardSnapshot `json:"award,omitempty" validate:"omitempty"`
}

type AwardSnapshot struct {
	WinnerPoints int `json:"winnerPoints" validate:"min=0"`
	LoserPoints  int `json:"loserPoints" validate:"min=0"`
}

type SettingsSnapshot struct {
	WinnerPoints *int   `json:"winnerPoints,omitempty"`
	LoserPoints  *int   `json:"loserPoints,omitempty"`
	Mode         string `json:"mode,omitempty" validate:"omitempty,oneof=singles doubles"`
}

type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

func (e FieldError) String() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: %s=%s", e.Field, e.Rule, e.Param)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Rule)
}

// SnapshotError lists every field that failed the schema check.
type SnapshotError struct {
	Errors []FieldError
}

func (e *SnapshotError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.String())
	}
	return "invalid tournament snapshot: " + strings.Join(parts, "; ")
}

func (e *SnapshotError) Is(target error) bool {
	return target == ErrValidation
}

var snapshotValidator = newSnapshotValidator()

func newSnapshotValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Snapshot captures the full aggregate state.
func (t *Tournament) Snapshot() Snapshot {
	name := t.Name
	s := Snapshot{
		ID:        t.ID,
		Name:      &name,
		Players:   make([]PlayerSnapshot, 0, len(t.Players)),
		Rounds:    make([]RoundSnapshot, 0, len(t.Rounds)),
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
		Settings: &SettingsSnapshot{
			WinnerPoints: ptr(t.Settings.WinnerPoints),
			LoserPoints:  ptr(t.Settings.LoserPoints),
			Mode:         string(t.Settings.Mode),
		},
	}
	if t.CurrentRound > 0 {
		s.CurrentRound = ptr(t.CurrentRound)
	}

	for _, p := range t.Players {
		s.Players = append(s.Players, PlayerSnapshot{
			ID:       p.ID,
			Name:     ptr(p.Name),
			Score:    ptr(p.Score),
			IsActive: ptr(p.IsActive),
		})
	}

	for _, r := range t.Rounds {
		rs := RoundSnapshot{
			ID:         r.ID,
			Number:     ptr(r.Number),
			Matches:    make([]MatchSnapshot, 0, len(r.Matches)),
			Status:     string(r.Status),
			CreatedAt:  r.CreatedAt,
			SittingOut: slices.Clone(r.SittingOut),
		}
		for _, m := range r.Matches {
			ms := MatchSnapshot{
				ID:     m.ID,
				Pair1:  []string{m.Pair1[0], m.Pair1[1]},
				Pair2:  []string{m.Pair2[0], m.Pair2[1]},
				Status: string(m.Status),
			}
			if m.Winner != WinnerNone {
				ms.Winner = ptr(int(m.Winner))
			}
			if m.Award != nil {
				ms.Award = &AwardSnapshot{WinnerPoints: m.Award.WinnerPoints, LoserPoints: m.Award.LoserPoints}
			}
			rs.Matches = append(rs.Matches, ms)
		}
		s.Rounds = append(s.Rounds, rs)
	}
	return s
}

// Validate runs the schema check. The returned error wraps *SnapshotError.
func (s Snapshot) Validate() error {
	err := snapshotValidator.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: invalid tournament snapshot: %v", ErrValidation, err)
	}
	out := &SnapshotError{Errors: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		field := fe.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		out.Errors = append(out.Errors, FieldError{Field: field, Rule: fe.Tag(), Param: fe.Param()})
	}
	return out
}

// FromSnapshot validates the schema and rebuilds the aggregate, re-checking
// entity invariants along the way.
func FromSnapshot(s Snapshot) (*Tournament, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	t := New(s.ID, *s.Name, s.CreatedAt)
	t.Name = strings.TrimSpace(*s.Name)
	t.Status = Status(s.Status)

	if s.Settings != nil {
		update := SettingsUpdate{WinnerPoints: s.Settings.WinnerPoints, LoserPoints: s.Settings.LoserPoints}
		if s.Settings.Mode != "" {
			mode := Mode(s.Settings.Mode)
			update.Mode = &mode
		}
		t.Settings = t.Settings.Merge(update)
	}
	if err := t.Settings.Validate(); err != nil {
		return nil, err
	}

	for _, ps := range s.Players {
		p := &Player{ID: ps.ID, Name: strings.TrimSpace(*ps.Name), Score: *ps.Score, IsActive: true}
		if ps.IsActive != nil {
			p.IsActive = *ps.IsActive
		}
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, exists := t.Player(p.ID); exists {
			return nil, fmt.Errorf("%w: player id %s appears twice", ErrDuplicateName, p.ID)
		}
		if t.nameTaken(p.Name, "") {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, p.Name)
		}
		t.Players = append(t.Players, p)
	}

	rounds := slices.Clone(s.Rounds)
	slices.SortStableFunc(rounds, func(a, b RoundSnapshot) int { return *a.Number - *b.Number })
	for i, rs := range rounds {
		if *rs.Number != i+1 {
			return nil, fmt.Errorf("%w: rounds must be numbered contiguously from 1, found %d at position %d", ErrInvalidRoundNumber, *rs.Number, i+1)
		}
		round, err := roundFromSnapshot(rs)
		if err != nil {
			return nil, err
		}
		t.Rounds = append(t.Rounds, round)
	}

	switch {
	case s.CurrentRound != nil:
		if _, ok := t.RoundByNumber(*s.CurrentRound); !ok {
			return nil, fmt.Errorf("%w: current round %d", ErrRoundNotFound, *s.CurrentRound)
		}
		t.CurrentRound = *s.CurrentRound
	case len(t.Rounds) > 0:
		t.CurrentRound = t.LastRound().Number
	}

	if t.Status != StatusSetup && len(t.Players) < MinPlayers {
		return nil, fmt.Errorf("%w: status=%s with %d players", ErrNotEnoughPlayers, t.Status, len(t.Players))
	}
	return t, nil
}

func roundFromSnapshot(rs RoundSnapshot) (*Round, error) {
	matches := make([]*Match, 0, len(rs.Matches))
	for _, ms := range rs.Matches {
		m := &Match{
			ID:     ms.ID,
			Pair1:  Side{ms.Pair1[0], ms.Pair1[1]},
			Pair2:  Side{ms.Pair2[0], ms.Pair2[1]},
			Status: MatchStatusPending,
		}
		if ms.Status != "" {
			m.Status = MatchStatus(ms.Status)
		}
		if ms.Winner != nil {
			m.Winner = Winner(*ms.Winner)
		}
		if ms.Award != nil {
			m.Award = &Award{WinnerPoints: ms.Award.WinnerPoints, LoserPoints: ms.Award.LoserPoints}
		}
		matches = append(matches, m)
	}

	round := &Round{
		ID:         rs.ID,
		Number:     *rs.Number,
		Matches:    matches,
		Status:     RoundStatusPlanned,
		CreatedAt:  rs.CreatedAt,
		SittingOut: slices.Clone(rs.SittingOut),
	}
	if rs.Status != "" {
		round.Status = RoundStatus(rs.Status)
	}
	if err := round.ValidateMatches(); err != nil {
		return nil, err
	}
	if round.Status == RoundStatusCompleted && !round.AllMatchesCompleted() {
		return nil, fmt.Errorf("%w: round %d is marked completed", ErrIncompleteMatches, round.Number)
	}
	return round, nil
}

func ptr[T any](v T) *T {
	return &v
}
