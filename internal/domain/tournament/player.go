package tournament

import (
	"fmt"
	"strings"
)

// Player is a registered participant. Matches reference players by ID only.
type Player struct {
	ID       string
	Name     string
	Score    int
	IsActive bool
}

func NewPlayer(id, name string) (*Player, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: player id is required", ErrInvalidName)
	}
	normalized, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}

	return &Player{
		ID:       id,
		Name:     normalized,
		IsActive: true,
	}, nil
}

// NormalizeName trims the name and rejects blank input.
func NormalizeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrInvalidName
	}
	return trimmed, nil
}

func (p *Player) AddScore(points int) error {
	if points < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidScore, points)
	}
	p.Score += points
	return nil
}

// SubtractScore reverses previously credited points.
func (p *Player) SubtractScore(points int) error {
	if points < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidScore, points)
	}
	if points > p.Score {
		return fmt.Errorf("%w: player=%s score=%d cannot drop by %d", ErrInvalidScore, p.ID, p.Score, points)
	}
	p.Score -= points
	return nil
}

func (p *Player) ResetScore() {
	p.Score = 0
}

func (p *Player) SetActive(active bool) {
	p.IsActive = active
}

func (p *Player) Rename(name string) error {
	normalized, err := NormalizeName(name)
	if err != nil {
		return err
	}
	p.Name = normalized
	return nil
}

func (p Player) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: player id is required", ErrInvalidName)
	}
	if _, err := NormalizeName(p.Name); err != nil {
		return err
	}
	if p.Score < 0 {
		return fmt.Errorf("%w: player=%s score=%d", ErrInvalidScore, p.ID, p.Score)
	}
	return nil
}

func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
