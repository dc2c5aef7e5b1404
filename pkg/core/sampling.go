package core

import (
	"math/rand"

	"github.com/sasha-s/go-deadlock"
)

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
}

// RandomSampler wraps a standard Go random generator.
// It is not safe for concurrent use; give each worker its own.
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler creates a sampler with its own source seeded by seed
func NewSeededSampler(seed int64) *RandomSampler {
	return NewRandomSampler(rand.New(rand.NewSource(seed)))
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// LockedSampler serializes access to another Sampler so that one random
// stream may be shared between goroutines
type LockedSampler struct {
	mu    deadlock.Mutex
	inner Sampler
}

// NewLockedSampler wraps inner. A sampler that is already locked is returned as is.
func NewLockedSampler(inner Sampler) *LockedSampler {
	if locked, ok := inner.(*LockedSampler); ok {
		return locked
	}
	return &LockedSampler{inner: inner}
}

// Get1D returns the next value of the wrapped sampler
func (l *LockedSampler) Get1D() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inner.Get1D()
}

// Get2D returns the next pair of the wrapped sampler, drawn under one lock
func (l *LockedSampler) Get2D() Vec2 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inner.Get2D()
}

// ConstantSampler returns the same value for every dimension. With a value
// of 0.5 it removes pixel jitter, which makes renders reproducible. Do not
// hand it to rejection samplers such as RandomInUnitSphere: 0.5 maps to the
// origin, which they never accept.
type ConstantSampler struct {
	Value float64
}

// Get1D returns the constant value
func (c ConstantSampler) Get1D() float64 {
	return c.Value
}

// Get2D returns the constant value in both dimensions
func (c ConstantSampler) Get2D() Vec2 {
	return NewVec2(c.Value, c.Value)
}
