// Package jitter provides randomized wait durations for scan workers.
//
// Each worker owns its own generator so that workers never contend on a
// shared source of randomness.
package jitter

import (
	"math/rand/v2"
	"time"
)

// golden is the 64-bit golden ratio, used to derive the second PCG word.
const golden = 0x9e3779b97f4a7c15

// Jitter yields durations uniformly distributed in [0, max).
// A Jitter is not safe for concurrent use.
type Jitter struct {
	max time.Duration
	rng *rand.Rand
}

// New creates a Jitter bounded by maxWait and seeded with seed.
func New(maxWait time.Duration, seed uint64) *Jitter {
	return &Jitter{
		max: maxWait,
		rng: rand.New(rand.NewPCG(seed, seed^golden)),
	}
}

// NewRandom creates a Jitter with a random seed.
func NewRandom(maxWait time.Duration) *Jitter {
	return New(maxWait, rand.Uint64())
}

// Next returns the next wait duration. It is zero when the bound is not positive.
func (j *Jitter) Next() time.Duration {
	if j.max <= 0 {
		return 0
	}
	return time.Duration(j.rng.Int64N(int64(j.max)))
}
