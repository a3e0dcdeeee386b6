package pairing

// Rand is the randomness the engine needs. *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// shuffle returns a uniformly permuted copy using Fisher–Yates.
func shuffle[T any](rng Rand, in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// pickN removes n uniformly chosen elements from in. It returns the picked
// elements and the remainder, both in their original relative order.
func pickN[T any](rng Rand, in []T, n int) (picked, rest []T) {
	rest = make([]T, len(in))
	copy(rest, in)
	for range n {
		idx := rng.Intn(len(rest))
		picked = append(picked, rest[idx])
		rest = append(rest[:idx], rest[idx+1:]...)
	}
	return picked, rest
}
