package pairing

import (
	"fmt"
	"strings"
)

type Fallback string

const (
	// FallbackSingles reverts to singles-style drawing without history when
	// the doubles search finds no conflict-free assignment.
	FallbackSingles Fallback = "singles"
	// FallbackNone keeps the doubles assignment with the fewest repeats.
	FallbackNone Fallback = "none"
)

// Policy tunes how hard the engine searches before accepting a degraded
// result.
type Policy struct {
	SinglesAttempts int
	DoublesAttempts int
	Fallback        Fallback
}

func DefaultPolicy() Policy {
	return Policy{
		SinglesAttempts: 2,
		DoublesAttempts: 100,
		Fallback:        FallbackSingles,
	}
}

func ParseFallback(raw string) (Fallback, error) {
	switch Fallback(strings.ToLower(strings.TrimSpace(raw))) {
	case FallbackSingles:
		return FallbackSingles, nil
	case FallbackNone:
		return FallbackNone, nil
	default:
		return "", fmt.Errorf("unknown pairing fallback %q", raw)
	}
}

// Normalize fills unset fields with defaults.
func (p Policy) Normalize() Policy {
	def := DefaultPolicy()
	if p.SinglesAttempts <= 0 {
		p.SinglesAttempts = def.SinglesAttempts
	}
	if p.DoublesAttempts <= 0 {
		p.DoublesAttempts = def.DoublesAttempts
	}
	if p.Fallback == "" {
		p.Fallback = def.Fallback
	}
	return p
}
