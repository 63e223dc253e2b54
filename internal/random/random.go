package random

import "math"

// Source is a seeded, reproducible number generator used for spawn placement.
// It is not safe for concurrent use.
type Source struct {
	seed int64
}

// New returns a source starting at the given seed.
func New(seed int64) *Source {
	return &Source{seed: seed}
}

// Float64 returns the next value in [0, 1).
func (s *Source) Float64() float64 {
	x := math.Sin(float64(s.seed)) * 10000
	s.seed++
	return x - math.Floor(x)
}

// Range returns an integer in [min, max], both bounds inclusive.
func (s *Source) Range(min, max int) int {
	if max < min {
		min, max = max, min
	}
	return int(math.Floor(s.Float64()*float64(max-min+1))) + min
}
