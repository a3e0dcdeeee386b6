package tournament

import (
	"fmt"
	"sort"
	"strings"
)

// Side is one of the two competing units of a match. Both singles and
// doubles rounds fill both slots; the mode only changes how sides are drawn.
type Side [2]string

func NewSide(a, b string) (Side, error) {
	s := Side{a, b}
	if err := s.Validate(); err != nil {
		return Side{}, err
	}
	return s, nil
}

func (s Side) Validate() error {
	if strings.TrimSpace(s[0]) == "" || strings.TrimSpace(s[1]) == "" {
		return fmt.Errorf("%w: empty player id", ErrInvalidPair)
	}
	if s[0] == s[1] {
		return fmt.Errorf("%w: duplicate player %s", ErrInvalidPair, s[0])
	}
	return nil
}

func (s Side) Contains(playerID string) bool {
	return s[0] == playerID || s[1] == playerID
}

// Key identifies the pairing independent of slot order.
func (s Side) Key() string {
	ids := []string{s[0], s[1]}
	sort.Strings(ids)
	return ids[0] + "-" + ids[1]
}

func (s Side) String() string {
	return s[0] + " & " + s[1]
}

type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "pending"
	MatchStatusCompleted MatchStatus = "completed"
)

// Winner is 0 while unset, otherwise the winning pair number.
type Winner int

const (
	WinnerNone  Winner = 0
	WinnerPair1 Winner = 1
	WinnerPair2 Winner = 2
)

func (w Winner) Valid() bool {
	return w == WinnerPair1 || w == WinnerPair2
}

// Award records the points credited when a result was recorded.
type Award struct {
	WinnerPoints int
	LoserPoints  int
}

type Match struct {
	ID     string
	Pair1  Side
	Pair2  Side
	Winner Winner
	Status MatchStatus
	Award  *Award
}

func NewMatch(id string, pair1, pair2 Side) (*Match, error) {
	m := &Match{
		ID:     id,
		Pair1:  pair1,
		Pair2:  pair2,
		Status: MatchStatusPending,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Match) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("%w: match id is required", ErrInvalidPair)
	}
	if err := m.Pair1.Validate(); err != nil {
		return fmt.Errorf("pair1: %w", err)
	}
	if err := m.Pair2.Validate(); err != nil {
		return fmt.Errorf("pair2: %w", err)
	}
	for _, id := range m.Pair1 {
		if m.Pair2.Contains(id) {
			return fmt.Errorf("%w: %s", ErrOverlappingPairs, id)
		}
	}

	switch m.Status {
	case MatchStatusPending:
		if m.Winner != WinnerNone {
			return fmt.Errorf("%w: pending match %s has winner %d", ErrInvalidWinner, m.ID, m.Winner)
		}
	case MatchStatusCompleted:
		if !m.Winner.Valid() {
			return fmt.Errorf("%w: completed match %s has winner %d", ErrInvalidWinner, m.ID, m.Winner)
		}
	default:
		return fmt.Errorf("%w: unknown match status %q", ErrInvalidTransition, m.Status)
	}
	return nil
}

// RecordResult completes the match. It is the only pending→completed path.
func (m *Match) RecordResult(winner Winner) error {
	if m.Status == MatchStatusCompleted {
		return fmt.Errorf("%w: match=%s", ErrAlreadyCompleted, m.ID)
	}
	if !winner.Valid() {
		return fmt.Errorf("%w: got %d", ErrInvalidWinner, winner)
	}

	m.Winner = winner
	m.Status = MatchStatusCompleted
	return nil
}

// Reset returns a completed match to pending and hands back the award that
// was credited for it, if any.
func (m *Match) Reset() (*Award, error) {
	if m.Status != MatchStatusCompleted {
		return nil, fmt.Errorf("%w: match=%s", ErrMatchNotCompleted, m.ID)
	}

	award := m.Award
	m.Winner = WinnerNone
	m.Status = MatchStatusPending
	m.Award = nil
	return award, nil
}

func (m *Match) IsCompleted() bool {
	return m.Status == MatchStatusCompleted
}

func (m *Match) WinningPair() (Side, bool) {
	switch m.Winner {
	case WinnerPair1:
		return m.Pair1, true
	case WinnerPair2:
		return m.Pair2, true
	default:
		return Side{}, false
	}
}

func (m *Match) LosingPair() (Side, bool) {
	switch m.Winner {
	case WinnerPair1:
		return m.Pair2, true
	case WinnerPair2:
		return m.Pair1, true
	default:
		return Side{}, false
	}
}

func (m *Match) PlayerIDs() []string {
	return []string{m.Pair1[0], m.Pair1[1], m.Pair2[0], m.Pair2[1]}
}

func (m *Match) HasPlayer(playerID string) bool {
	return m.Pair1.Contains(playerID) || m.Pair2.Contains(playerID)
}

func (m *Match) Partner(playerID string) (string, bool) {
	for _, side := range []Side{m.Pair1, m.Pair2} {
		switch playerID {
		case side[0]:
			return side[1], true
		case side[1]:
			return side[0], true
		}
	}
	return "", false
}

func (m *Match) Opponents(playerID string) (Side, bool) {
	if m.Pair1.Contains(playerID) {
		return m.Pair2, true
	}
	if m.Pair2.Contains(playerID) {
		return m.Pair1, true
	}
	return Side{}, false
}

func (m *Match) Clone() *Match {
	out := *m
	if m.Award != nil {
		award := *m.Award
		out.Award = &award
	}
	return &out
}

func (m *Match) String() string {
	status := " (Pending)"
	if m.IsCompleted() {
		status = fmt.Sprintf(" (Winner: Pair %d)", m.Winner)
	}
	return m.Pair1.String() + " vs " + m.Pair2.String() + status
}
