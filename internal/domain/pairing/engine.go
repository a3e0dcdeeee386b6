package pairing

import (
	"fmt"

	"github.com/riskibarqy/badminton-tournament/internal/domain/tournament"
	"github.com/riskibarqy/badminton-tournament/internal/platform/errkind"
)

const playersPerMatch = 4

var ErrInsufficientPlayers = errkind.New(tournament.ErrValidation, "need at least 4 active players to generate pairings")

// IDGenerator issues match ids.
type IDGenerator interface {
	NewID() (string, error)
}

type Strategy string

const (
	StrategySingles         Strategy = "singles"
	StrategyDoubles         Strategy = "doubles"
	StrategyDoublesFallback Strategy = "doubles-fallback-singles"
)

// Result is a generated round. Degraded is set when the pairing constraints
// could not be met and Warning then carries ErrConstraintUnsatisfied.
type Result struct {
	Matches    []*tournament.Match
	SittingOut []string
	Strategy   Strategy
	Attempts   int
	Degraded   bool
	Warning    error
}

// Engine draws match sets. It holds no tournament state; the Rand it wraps
// is not safe for concurrent use, so callers serialize access.
type Engine struct {
	rng    Rand
	ids    IDGenerator
	policy Policy
}

func NewEngine(rng Rand, ids IDGenerator, policy Policy) *Engine {
	return &Engine{
		rng:    rng,
		ids:    ids,
		policy: policy.Normalize(),
	}
}

func (e *Engine) Policy() Policy {
	return e.policy
}

// GeneratePairings builds pending matches covering every eligible active
// player exactly once. A match seats four players, so active%4 players
// (0 to 3) are benched at random and flagged inactive: 5 active bench one,
// 6 bench two, 7 bench three.
func (e *Engine) GeneratePairings(
	players []*tournament.Player,
	previousRound *tournament.Round,
	mode tournament.Mode,
	allPreviousRounds []*tournament.Round,
) (Result, error) {
	if len(players) < playersPerMatch {
		return Result{}, fmt.Errorf("%w: got %d players", ErrInsufficientPlayers, len(players))
	}

	active := make([]*tournament.Player, 0, len(players))
	for _, p := range players {
		if p.IsActive {
			active = append(active, p)
		}
	}
	if len(active) < playersPerMatch {
		return Result{}, fmt.Errorf("%w: got %d active", ErrInsufficientPlayers, len(active))
	}

	benched, eligible := pickN(e.rng, active, len(active)%playersPerMatch)
	sittingOut := make([]string, 0, len(benched))
	for _, p := range benched {
		p.SetActive(false)
		sittingOut = append(sittingOut, p.ID)
	}

	ids := make([]string, 0, len(eligible))
	for _, p := range eligible {
		ids = append(ids, p.ID)
	}

	var (
		res Result
		err error
	)
	if mode == tournament.ModeDoubles {
		res, err = e.doubles(ids, allPreviousRounds)
	} else {
		res, err = e.singles(ids, previousRound)
	}
	if err != nil {
		return Result{}, err
	}
	res.SittingOut = sittingOut
	return res, nil
}

// singles shuffles players into consecutive sides and rejects any draw that
// repeats a side from the previous round.
func (e *Engine) singles(ids []string, previousRound *tournament.Round) (Result, error) {
	var (
		previous = previousSides(previousRound)
		sides    []tournament.Side
		attempts int
	)
	for attempts < e.policy.SinglesAttempts {
		attempts++
		sides = consecutiveSides(shuffle(e.rng, ids))
		if !repeatsSide(sides, previous) {
			return e.result(sides, StrategySingles, attempts, nil)
		}
	}

	warning := fmt.Errorf("%w: could not avoid repeated sides after %d attempts", tournament.ErrConstraintUnsatisfied, attempts)
	return e.result(sides, StrategySingles, attempts, warning)
}

// doubles runs randomized greedy passes over the partnership history and
// keeps the first pass that repeats no partnership.
func (e *Engine) doubles(ids []string, rounds []*tournament.Round) (Result, error) {
	history := PartnershipHistory(rounds)

	var (
		best        []tournament.Side
		bestRepeats = -1
		attempts    int
	)
	for attempts < e.policy.DoublesAttempts {
		attempts++
		sides, repeats := greedyPartners(shuffle(e.rng, ids), history)
		if repeats == 0 {
			return e.result(sides, StrategyDoubles, attempts, nil)
		}
		if bestRepeats < 0 || repeats < bestRepeats {
			best, bestRepeats = sides, repeats
		}
	}

	if e.policy.Fallback == FallbackNone {
		warning := fmt.Errorf("%w: %d repeated partnerships after %d attempts", tournament.ErrConstraintUnsatisfied, bestRepeats, attempts)
		return e.result(best, StrategyDoubles, attempts, warning)
	}

	fallback, err := e.singles(ids, nil)
	if err != nil {
		return Result{}, err
	}
	fallback.Strategy = StrategyDoublesFallback
	fallback.Attempts += attempts
	fallback.Degraded = true
	fallback.Warning = fmt.Errorf("%w: no partner rotation found after %d attempts, used singles draw", tournament.ErrConstraintUnsatisfied, attempts)
	return fallback, nil
}

// greedyPartners pairs each unpaired player with the first later player they
// have never partnered, else with the least frequent later partner. It
// returns the sides and how many of them repeat a past partnership.
func greedyPartners(ids []string, history map[string]int) ([]tournament.Side, int) {
	used := make(map[string]bool, len(ids))
	sides := make([]tournament.Side, 0, len(ids)/2)
	repeats := 0

	for i, a := range ids {
		if used[a] {
			continue
		}
		partner := -1
		for j := i + 1; j < len(ids); j++ {
			if used[ids[j]] {
				continue
			}
			if history[tournament.Side{a, ids[j]}.Key()] == 0 {
				partner = j
				break
			}
		}
		if partner < 0 {
			lowest := -1
			for j := i + 1; j < len(ids); j++ {
				if used[ids[j]] {
					continue
				}
				count := history[tournament.Side{a, ids[j]}.Key()]
				if lowest < 0 || count < lowest {
					lowest, partner = count, j
				}
			}
			if partner >= 0 {
				repeats++
			}
		}
		if partner < 0 {
			continue
		}
		used[a], used[ids[partner]] = true, true
		sides = append(sides, tournament.Side{a, ids[partner]})
	}
	return sides, repeats
}

func (e *Engine) result(sides []tournament.Side, strategy Strategy, attempts int, warning error) (Result, error) {
	matches, err := e.buildMatches(sides)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Matches:  matches,
		Strategy: strategy,
		Attempts: attempts,
		Degraded: warning != nil,
		Warning:  warning,
	}, nil
}

// buildMatches shuffles the sides and joins adjacent ones into matches.
func (e *Engine) buildMatches(sides []tournament.Side) ([]*tournament.Match, error) {
	shuffled := shuffle(e.rng, sides)
	matches := make([]*tournament.Match, 0, len(shuffled)/2)
	for i := 0; i+1 < len(shuffled); i += 2 {
		id, err := e.ids.NewID()
		if err != nil {
			return nil, fmt.Errorf("generate match id: %w", err)
		}
		m, err := tournament.NewMatch(id, shuffled[i], shuffled[i+1])
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, nil
}

func consecutiveSides(ids []string) []tournament.Side {
	sides := make([]tournament.Side, 0, len(ids)/2)
	for i := 0; i+1 < len(ids); i += 2 {
		sides = append(sides, tournament.Side{ids[i], ids[i+1]})
	}
	return sides
}

func previousSides(round *tournament.Round) map[string]struct{} {
	if round == nil {
		return nil
	}
	out := make(map[string]struct{}, len(round.Matches)*2)
	for _, m := range round.Matches {
		out[m.Pair1.Key()] = struct{}{}
		out[m.Pair2.Key()] = struct{}{}
	}
	return out
}

func repeatsSide(sides []tournament.Side, previous map[string]struct{}) bool {
	for _, s := range sides {
		if _, ok := previous[s.Key()]; ok {
			return true
		}
	}
	return false
}
