package tournament

import (
	"fmt"
	"time"
)

type RoundStatus string

const (
	RoundStatusPlanned    RoundStatus = "planned"
	RoundStatusInProgress RoundStatus = "in-progress"
	RoundStatusCompleted  RoundStatus = "completed"
)

type Round struct {
	ID         string
	Number     int
	Matches    []*Match
	Status     RoundStatus
	CreatedAt  time.Time
	SittingOut []string
}

func NewRound(id string, number int, matches []*Match, createdAt time.Time) (*Round, error) {
	if number < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidRoundNumber, number)
	}

	r := &Round{
		ID:        id,
		Number:    number,
		Matches:   matches,
		Status:    RoundStatusPlanned,
		CreatedAt: createdAt,
	}
	if err := r.ValidateMatches(); err != nil {
		return nil, err
	}
	return r, nil
}

// ValidateMatches checks every match and that no player is double-booked.
func (r *Round) ValidateMatches() error {
	seen := make(map[string]struct{}, len(r.Matches)*4)
	for _, m := range r.Matches {
		if m == nil {
			return fmt.Errorf("%w: round %d has a nil match", ErrInvalidPair, r.Number)
		}
		if err := m.Validate(); err != nil {
			return fmt.Errorf("round %d: %w", r.Number, err)
		}
		for _, id := range m.PlayerIDs() {
			if _, exists := seen[id]; exists {
				return fmt.Errorf("%w: round=%d player=%s", ErrDoubleBooked, r.Number, id)
			}
			seen[id] = struct{}{}
		}
	}
	return nil
}

func (r *Round) Start() error {
	if r.Status != RoundStatusPlanned {
		return fmt.Errorf("%w: round %d start from %s", ErrInvalidTransition, r.Number, r.Status)
	}
	if len(r.Matches) == 0 {
		return fmt.Errorf("%w: round %d", ErrEmptyRound, r.Number)
	}
	r.Status = RoundStatusInProgress
	return nil
}

func (r *Round) Complete() error {
	if r.Status != RoundStatusInProgress {
		return fmt.Errorf("%w: round %d complete from %s", ErrInvalidTransition, r.Number, r.Status)
	}
	if !r.AllMatchesCompleted() {
		return fmt.Errorf("%w: round %d has %d pending", ErrIncompleteMatches, r.Number, len(r.PendingMatches()))
	}
	r.Status = RoundStatusCompleted
	return nil
}

// reopen moves a completed round back to in-progress after a match reset.
func (r *Round) reopen() {
	if r.Status == RoundStatusCompleted {
		r.Status = RoundStatusInProgress
	}
}

// syncStatus applies the transitions a recorded result can trigger.
func (r *Round) syncStatus() error {
	if r.Status == RoundStatusPlanned {
		if err := r.Start(); err != nil {
			return err
		}
	}
	if r.Status == RoundStatusInProgress && r.AllMatchesCompleted() {
		return r.Complete()
	}
	return nil
}

func (r *Round) AllMatchesCompleted() bool {
	if len(r.Matches) == 0 {
		return false
	}
	for _, m := range r.Matches {
		if !m.IsCompleted() {
			return false
		}
	}
	return true
}

func (r *Round) CompletedMatches() []*Match {
	out := make([]*Match, 0, len(r.Matches))
	for _, m := range r.Matches {
		if m.IsCompleted() {
			out = append(out, m)
		}
	}
	return out
}

func (r *Round) PendingMatches() []*Match {
	out := make([]*Match, 0, len(r.Matches))
	for _, m := range r.Matches {
		if !m.IsCompleted() {
			out = append(out, m)
		}
	}
	return out
}

func (r *Round) MatchByID(matchID string) (*Match, bool) {
	for _, m := range r.Matches {
		if m.ID == matchID {
			return m, true
		}
	}
	return nil, false
}

func (r *Round) Clone() *Round {
	out := *r
	out.Matches = make([]*Match, 0, len(r.Matches))
	for _, m := range r.Matches {
		out.Matches = append(out.Matches, m.Clone())
	}
	out.SittingOut = append([]string(nil), r.SittingOut...)
	return &out
}

func (r *Round) String() string {
	return fmt.Sprintf("Round %d (%s, %d matches)", r.Number, r.Status, len(r.Matches))
}
