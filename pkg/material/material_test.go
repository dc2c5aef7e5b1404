package material

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/df07/go-raytracer/pkg/core"
)

// sequenceSampler replays fixed values in order, wrapping around
type sequenceSampler struct {
	values []float64
	next   int
}

func (s *sequenceSampler) Get1D() float64 {
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

func (s *sequenceSampler) Get2D() core.Vec2 {
	return core.NewVec2(s.Get1D(), s.Get1D())
}

func assertVecNear(t *testing.T, expected, actual core.Vec3, delta float64) {
	t.Helper()
	assert.InDelta(t, expected.X, actual.X, delta, "X of %v vs %v", expected, actual)
	assert.InDelta(t, expected.Y, actual.Y, delta, "Y of %v vs %v", expected, actual)
	assert.InDelta(t, expected.Z, actual.Z, delta, "Z of %v vs %v", expected, actual)
}

// Every material satisfies the shared capability
var (
	_ core.Material = (*Lambertian)(nil)
	_ core.Material = (*Metal)(nil)
	_ core.Material = (*Dielectric)(nil)
)
