// Package random provides the seeded pseudorandom generator and weighted
// selection primitives backing every test-observable draw in the engine.
package random

import (
	"errors"
	"math"
)

const (
	lehmerModulus    int64 = 2147483647 // 2^31 - 1, a Mersenne prime
	lehmerMultiplier int64 = 16807
)

// ErrNonPositiveWeight signals a malformed option list. Weights summing to
// zero or below indicate an authoring defect, not a runtime condition.
var ErrNonPositiveWeight = errors.New("total weight must be positive")

// Source is a Park-Miller linear-congruential generator. Identical seeds
// produce identical streams, which every selector relies on for
// reproducible tests.
type Source struct {
	state int64
}

// New creates a Source from any integer seed. Seeds of zero or below are
// shifted into the valid (0, modulus) range rather than rejected.
func New(seed int64) *Source {
	state := seed % lehmerModulus
	if state <= 0 {
		state += lehmerModulus - 1
	}
	return &Source{state: state}
}

// Float64 returns the next value in (0, 1), exclusive of both ends.
func (s *Source) Float64() float64 {
	s.state = (s.state * lehmerMultiplier) % lehmerModulus
	return float64(s.state-1) / float64(lehmerModulus-1)
}

// Weighted pairs a value with its positive sampling weight.
type Weighted[T any] struct {
	Value  T
	Weight float64
}

// PickWeighted selects one option by cumulative-distribution inversion: the
// rng draw is scaled by the total weight and the first option whose running
// sum reaches that threshold wins. Selection probability is exactly
// proportional to weight.
func PickWeighted[T any](options []Weighted[T], rng func() float64) (T, error) {
	var zero T
	total := 0.0
	for _, option := range options {
		total += option.Weight
	}
	if total <= 0 {
		return zero, ErrNonPositiveWeight
	}

	threshold := rng() * total
	cumulative := 0.0
	for _, option := range options {
		cumulative += option.Weight
		if threshold <= cumulative {
			return option.Value, nil
		}
	}

	return options[len(options)-1].Value, nil
}

// PickIndex returns a uniform index in [0, n) via floor(rng() * n).
func PickIndex(n int, rng func() float64) int {
	idx := int(math.Floor(rng() * float64(n)))
	if idx >= n {
		idx = n - 1
	}
	return idx
}
