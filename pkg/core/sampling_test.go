package core

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandomSampler_Range(t *testing.T) {
	sampler := NewRandomSampler(rand.New(rand.NewSource(42)))
	for i := 0; i < 1000; i++ {
		v := sampler.Get1D()
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)

		p := sampler.Get2D()
		assert.GreaterOrEqual(t, p.X, 0.0)
		assert.Less(t, p.Y, 1.0)
	}
}

func TestRandomSampler_Deterministic(t *testing.T) {
	a := NewSeededSampler(99)
	b := NewSeededSampler(99)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Get1D(), b.Get1D())
	}
}

func TestLockedSampler_ConcurrentUse(t *testing.T) {
	sampler := NewLockedSampler(NewSeededSampler(1))

	var wg sync.WaitGroup
	results := make([][]float64, 8)
	for w := range results {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				results[w] = append(results[w], sampler.Get1D())
			}
		}(w)
	}
	wg.Wait()

	seen := make(map[float64]bool)
	for _, values := range results {
		assert.Len(t, values, 500)
		for _, v := range values {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.Less(t, v, 1.0)
			seen[v] = true
		}
	}
	// Every draw came from one stream, so values do not repeat
	assert.Len(t, seen, 8*500)
}

func TestNewLockedSampler_DoesNotWrapTwice(t *testing.T) {
	locked := NewLockedSampler(ConstantSampler{Value: 0.25})
	assert.Same(t, locked, NewLockedSampler(locked))
	assert.Equal(t, 0.25, locked.Get1D())
	assert.Equal(t, NewVec2(0.25, 0.25), locked.Get2D())
}

func TestConstantSampler(t *testing.T) {
	s := ConstantSampler{Value: 0.25}
	assert.Equal(t, 0.25, s.Get1D())
	assert.Equal(t, NewVec2(0.25, 0.25), s.Get2D())
}
