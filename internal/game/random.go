package game

import (
	"math/rand"
	"time"
)

// RandomSource supplies uniform values in [0, 1) for collision jitter.
type RandomSource interface {
	Float64() float64
}

// NewRandomSource returns a seeded source. Not safe for concurrent use; each
// simulation owns its own.
func NewRandomSource(seed int64) RandomSource {
	return rand.New(rand.NewSource(seed)) //nolint:gosec // Game physics jitter, not security critical
}

// NewTimeSeededSource seeds from the wall clock.
func NewTimeSeededSource() RandomSource {
	return NewRandomSource(time.Now().UnixNano())
}

// FixedSource always returns the same value. FixedSource(0.5) disables jitter.
type FixedSource float64

func (f FixedSource) Float64() float64 {
	return float64(f)
}

// jitter maps a uniform sample to [-magnitude, magnitude].
func jitter(src RandomSource, magnitude float64) float64 {
	if src == nil || magnitude == 0 {
		return 0
	}
	r := src.Float64()
	if r < 0 {
		r = 0
	} else if r > 1 {
		r = 1
	}
	return (r - 0.5) * 2 * magnitude
}
