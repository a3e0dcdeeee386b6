package tournament

import (
	"errors"
	"reflect"
	"testing"

	crerr "github.com/cockroachdb/errors"
)

func TestSnapshotRoundTrip(t *testing.T) {
	tour := newTournamentWithPlayers(t, "A", "B", "C", "D", "E")
	doubles := ModeDoubles
	_, _ = tour.UpdateSettings(SettingsUpdate{Mode: &doubles})
	_ = tour.Start()

	round, _ := NewRound("r1", 1, []*Match{mustMatch(t, "m1", Side{"p1", "p2"}, Side{"p3", "p4"})}, fixedNow)
	round.SittingOut = []string{"p5"}
	_, _ = tour.SetPlayerActive("p5", false)
	_ = tour.AddRound(round)
	_, _ = tour.RecordMatchResult("m1", WinnerPair2)

	restored, err := FromSnapshot(tour.Snapshot())
	if err != nil {
		t.Fatalf("from snapshot: %v", err)
	}
	if !reflect.DeepEqual(tour, restored) {
		t.Fatalf("round trip mismatch:\nwant %+v\ngot  %+v", tour.Snapshot(), restored.Snapshot())
	}
}

func TestSnapshotRoundTripFreshTournament(t *testing.T) {
	tour := New("t1", "", fixedNow)

	restored, err := FromSnapshot(tour.Snapshot())
	if err != nil {
		t.Fatalf("from snapshot: %v", err)
	}
	if !reflect.DeepEqual(tour, restored) {
		t.Fatalf("round trip mismatch: %+v vs %+v", tour, restored)
	}
	if restored.Name != DefaultName {
		t.Fatalf("expected default name, got %q", restored.Name)
	}
}

func TestSnapshotValidateCollectsFieldErrors(t *testing.T) {
	s := Snapshot{
		ID:     "t1",
		Status: "paused",
		Players: []PlayerSnapshot{
			{ID: "p1", Name: ptr("A")},
		},
		Rounds: []RoundSnapshot{},
	}

	err := s.Validate()
	if !crerr.Is(err, ErrValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	var snapErr *SnapshotError
	if !errors.As(err, &snapErr) {
		t.Fatalf("expected *SnapshotError, got %T", err)
	}

	got := map[string]string{}
	for _, fe := range snapErr.Errors {
		got[fe.Field] = fe.Rule
	}
	want := map[string]string{
		"name":             "required",
		"status":           "oneof",
		"players[0].score": "required",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected field errors %v, got %v", want, got)
	}
}

func TestFromSnapshotSemanticChecks(t *testing.T) {
	base := func() Snapshot {
		tour := newTournamentWithPlayers(t, "A", "B", "C", "D")
		_ = tour.Start()
		round, _ := NewRound("r1", 1, []*Match{mustMatch(t, "m1", Side{"p1", "p2"}, Side{"p3", "p4"})}, fixedNow)
		_ = tour.AddRound(round)
		return tour.Snapshot()
	}

	tests := []struct {
		name      string
		mutate    func(*Snapshot)
		targetErr error
	}{
		{
			name:      "gap in round numbers",
			mutate:    func(s *Snapshot) { s.Rounds[0].Number = ptr(2) },
			targetErr: ErrInvalidRoundNumber,
		},
		{
			name:      "duplicate player names",
			mutate:    func(s *Snapshot) { s.Players[1].Name = ptr("a") },
			targetErr: ErrDuplicateName,
		},
		{
			name:      "unknown current round",
			mutate:    func(s *Snapshot) { s.CurrentRound = ptr(7) },
			targetErr: ErrRoundNotFound,
		},
		{
			name:      "double booked round",
			mutate:    func(s *Snapshot) { s.Rounds[0].Matches[0].Pair2 = []string{"p1", "p4"} },
			targetErr: ErrOverlappingPairs,
		},
		{
			name: "completed round with pending match",
			mutate: func(s *Snapshot) {
				s.Rounds[0].Status = string(RoundStatusCompleted)
			},
			targetErr: ErrIncompleteMatches,
		},
		{
			name: "active with too few players",
			mutate: func(s *Snapshot) {
				s.Players = s.Players[:3]
				s.Rounds = nil
				s.CurrentRound = nil
			},
			targetErr: ErrNotEnoughPlayers,
		},
		{
			name: "completed with too few players",
			mutate: func(s *Snapshot) {
				s.Status = string(StatusCompleted)
				s.Players = s.Players[:2]
				s.Rounds = nil
				s.CurrentRound = nil
			},
			targetErr: ErrNotEnoughPlayers,
		},
		{
			name: "invalid settings",
			mutate: func(s *Snapshot) {
				s.Settings.LoserPoints = ptr(5)
			},
			targetErr: ErrInvalidSettings,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := base()
			tc.mutate(&s)
			if _, err := FromSnapshot(s); !errors.Is(err, tc.targetErr) {
				t.Fatalf("expected %v, got %v", tc.targetErr, err)
			}
		})
	}
}

func TestFromSnapshotDefaults(t *testing.T) {
	s := Snapshot{
		ID:   "t1",
		Name: ptr("Legacy"),
		Players: []PlayerSnapshot{
			{ID: "p1", Name: ptr("A"), Score: ptr(3)},
		},
		Rounds: []RoundSnapshot{
			{ID: "r1", Number: ptr(1), Matches: []MatchSnapshot{
				{ID: "m1", Pair1: []string{"p1", "p2"}, Pair2: []string{"p3", "p4"}},
			}},
		},
		Status: "setup",
	}

	tour, err := FromSnapshot(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tour.Settings != DefaultSettings() {
		t.Fatalf("expected default settings, got %+v", tour.Settings)
	}
	if !tour.Players[0].IsActive {
		t.Fatalf("missing isActive must default to true")
	}
	if tour.Rounds[0].Status != RoundStatusPlanned || tour.Rounds[0].Matches[0].Status != MatchStatusPending {
		t.Fatalf("missing statuses must default to planned/pending")
	}
	if tour.CurrentRound != 1 {
		t.Fatalf("missing currentRound must default to the last round, got %d", tour.CurrentRound)
	}
}

func TestFromSnapshotMissingCurrentRoundBlocksNewRound(t *testing.T) {
	tour := newTournamentWithPlayers(t, "A", "B", "C", "D")
	_ = tour.Start()
	round, _ := NewRound("r1", 1, []*Match{mustMatch(t, "m1", Side{"p1", "p2"}, Side{"p3", "p4"})}, fixedNow)
	_ = tour.AddRound(round)
	_ = round.Start()

	s := tour.Snapshot()
	s.CurrentRound = nil

	restored, err := FromSnapshot(s)
	if err != nil {
		t.Fatalf("from snapshot: %v", err)
	}
	if restored.CurrentRound != 1 {
		t.Fatalf("expected current round 1, got %d", restored.CurrentRound)
	}
	if restored.CanAddRound() {
		t.Fatalf("a round must not be added on top of an unfinished one")
	}
}
