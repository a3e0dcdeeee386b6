package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"sync/atomic"
)

// Generator creates opaque IDs suitable for external references.
type Generator interface {
	NewID() (string, error)
}

type RandomGenerator struct{}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

func (g *RandomGenerator) NewID() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	return hex.EncodeToString(buf), nil
}

// Prefixed tags ids with an entity prefix, e.g. "match_3f9c...".
type Prefixed struct {
	prefix string
	next   Generator
}

func WithPrefix(prefix string, next Generator) *Prefixed {
	return &Prefixed{prefix: prefix, next: next}
}

func (g *Prefixed) NewID() (string, error) {
	raw, err := g.next.NewID()
	if err != nil {
		return "", err
	}
	return g.prefix + "_" + raw, nil
}

// Sequence yields 1, 2, 3... and is meant for deterministic tests and
// fixtures.
type Sequence struct {
	n atomic.Int64
}

func (s *Sequence) NewID() (string, error) {
	return strconv.FormatInt(s.n.Add(1), 10), nil
}
