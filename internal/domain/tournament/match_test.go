package tournament

import (
	"errors"
	"testing"

	crerr "github.com/cockroachdb/errors"
)

func TestNewMatchValidation(t *testing.T) {
	tests := []struct {
		name      string
		pair1     Side
		pair2     Side
		targetErr error
	}{
		{name: "valid", pair1: Side{"a", "b"}, pair2: Side{"c", "d"}},
		{name: "same player twice in a pair", pair1: Side{"a", "a"}, pair2: Side{"c", "d"}, targetErr: ErrInvalidPair},
		{name: "empty slot", pair1: Side{"a", ""}, pair2: Side{"c", "d"}, targetErr: ErrInvalidPair},
		{name: "overlap between pairs", pair1: Side{"a", "b"}, pair2: Side{"b", "d"}, targetErr: ErrOverlappingPairs},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewMatch("m1", tc.pair1, tc.pair2)
			if tc.targetErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.targetErr) {
				t.Fatalf("expected %v, got %v", tc.targetErr, err)
			}
			if !crerr.Is(err, ErrValidation) {
				t.Fatalf("expected validation category, got %v", err)
			}
		})
	}
}

func TestMatchRecordResult(t *testing.T) {
	m, err := NewMatch("m1", Side{"a", "b"}, Side{"c", "d"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := m.RecordResult(3); !errors.Is(err, ErrInvalidWinner) {
		t.Fatalf("expected ErrInvalidWinner, got %v", err)
	}
	if m.Status != MatchStatusPending {
		t.Fatalf("invalid winner must not change status, got %s", m.Status)
	}

	if err := m.RecordResult(WinnerPair2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	winning, ok := m.WinningPair()
	if !ok || winning != (Side{"c", "d"}) {
		t.Fatalf("unexpected winning pair %v", winning)
	}
	losing, _ := m.LosingPair()
	if losing != (Side{"a", "b"}) {
		t.Fatalf("unexpected losing pair %v", losing)
	}

	err = m.RecordResult(WinnerPair1)
	if !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("expected ErrAlreadyCompleted, got %v", err)
	}
	if !crerr.Is(err, ErrState) {
		t.Fatalf("expected state category, got %v", err)
	}
	if m.Winner != WinnerPair2 || m.Status != MatchStatusCompleted {
		t.Fatalf("double record changed state: winner=%d status=%s", m.Winner, m.Status)
	}
}

func TestMatchReset(t *testing.T) {
	m, _ := NewMatch("m1", Side{"a", "b"}, Side{"c", "d"})

	if _, err := m.Reset(); !errors.Is(err, ErrMatchNotCompleted) {
		t.Fatalf("expected ErrMatchNotCompleted, got %v", err)
	}

	_ = m.RecordResult(WinnerPair1)
	m.Award = &Award{WinnerPoints: 2, LoserPoints: 1}

	award, err := m.Reset()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if award == nil || award.WinnerPoints != 2 || award.LoserPoints != 1 {
		t.Fatalf("unexpected award %+v", award)
	}
	if m.Status != MatchStatusPending || m.Winner != WinnerNone || m.Award != nil {
		t.Fatalf("match not reset: %+v", m)
	}
}

func TestMatchPartnersAndOpponents(t *testing.T) {
	m, _ := NewMatch("m1", Side{"a", "b"}, Side{"c", "d"})

	if partner, ok := m.Partner("b"); !ok || partner != "a" {
		t.Fatalf("unexpected partner %q", partner)
	}
	if opp, ok := m.Opponents("a"); !ok || opp != (Side{"c", "d"}) {
		t.Fatalf("unexpected opponents %v", opp)
	}
	if _, ok := m.Partner("z"); ok {
		t.Fatalf("unknown player must have no partner")
	}
	if _, ok := m.Opponents("z"); ok {
		t.Fatalf("unknown player must have no opponents")
	}
	if (Side{"b", "a"}).Key() != (Side{"a", "b"}).Key() {
		t.Fatalf("side key must ignore slot order")
	}
}
