package pairing

import (
	"github.com/riskibarqy/badminton-tournament/internal/domain/tournament"
)

// PartnershipHistory counts how often each side (keyed by sorted ids) has
// been fielded across the given rounds.
func PartnershipHistory(rounds []*tournament.Round) map[string]int {
	history := make(map[string]int)
	for _, r := range rounds {
		if r == nil {
			continue
		}
		for _, m := range r.Matches {
			history[m.Pair1.Key()]++
			history[m.Pair2.Key()]++
		}
	}
	return history
}

// Stats summarises pairing fairness across a tournament.
type Stats struct {
	TotalPairings  int                       `json:"totalPairings"`
	UniquePairings int                       `json:"uniquePairings"`
	PartnerCounts  map[string]map[string]int `json:"partnerCounts"`
	OpponentCounts map[string]map[string]int `json:"opponentCounts"`
}

func (s Stats) Partnered(a, b string) int {
	return s.PartnerCounts[a][b]
}

func (s Stats) Faced(a, b string) int {
	return s.OpponentCounts[a][b]
}

// ComputeStats builds partner and opponent matrices. Every listed player gets
// a zeroed row; ids seen only in historical matches are added on demand.
func ComputeStats(rounds []*tournament.Round, players []*tournament.Player) Stats {
	stats := Stats{
		PartnerCounts:  make(map[string]map[string]int, len(players)),
		OpponentCounts: make(map[string]map[string]int, len(players)),
	}
	for _, p := range players {
		stats.PartnerCounts[p.ID] = make(map[string]int, len(players))
		stats.OpponentCounts[p.ID] = make(map[string]int, len(players))
		for _, other := range players {
			if other.ID != p.ID {
				stats.PartnerCounts[p.ID][other.ID] = 0
				stats.OpponentCounts[p.ID][other.ID] = 0
			}
		}
	}

	unique := make(map[string]struct{})
	for _, r := range rounds {
		for _, m := range r.Matches {
			stats.TotalPairings += 2
			for _, id := range m.PlayerIDs() {
				if partner, ok := m.Partner(id); ok {
					increment(stats.PartnerCounts, id, partner)
				}
				if opponents, ok := m.Opponents(id); ok {
					for _, o := range opponents {
						increment(stats.OpponentCounts, id, o)
					}
				}
			}
			unique[m.Pair1.Key()] = struct{}{}
			unique[m.Pair2.Key()] = struct{}{}
		}
	}
	stats.UniquePairings = len(unique)
	return stats
}

func increment(counts map[string]map[string]int, a, b string) {
	row, ok := counts[a]
	if !ok {
		row = make(map[string]int)
		counts[a] = row
	}
	row[b]++
}
