package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-raytracer/pkg/core"
)

func TestHittableList_Empty(t *testing.T) {
	world := NewHittableList()
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	hit, isHit := world.Hit(ray, validT)
	assert.False(t, isHit)
	assert.Nil(t, hit)
}

func TestHittableList_NearestHitIndependentOfOrder(t *testing.T) {
	near := &stubMaterial{name: "near"}
	far := &stubMaterial{name: "far"}

	// Overlapping spheres along the -z axis
	nearSphere := NewSphere(core.NewVec3(0, 0, -1), 0.5, near)
	farSphere := NewSphere(core.NewVec3(0, 0, -1.6), 0.5, far)

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	orders := map[string]*HittableList{
		"near first": NewHittableList(nearSphere, farSphere),
		"far first":  NewHittableList(farSphere, nearSphere),
	}

	for name, world := range orders {
		t.Run(name, func(t *testing.T) {
			hit, isHit := world.Hit(ray, validT)
			require.True(t, isHit)
			assert.InDelta(t, 0.5, hit.T, 1e-9)
			assert.Same(t, near, hit.Material)
		})
	}
}

func TestHittableList_SharedMaterial(t *testing.T) {
	shared := &stubMaterial{name: "shared"}
	world := NewHittableList()
	world.Add(NewSphere(core.NewVec3(-2, 0, -1), 0.5, shared))
	world.Add(NewSphere(core.NewVec3(2, 0, -1), 0.5, shared))
	assert.Equal(t, 2, world.Len())

	left, ok := world.Hit(core.NewRay(core.NewVec3(-2, 0, 0), core.NewVec3(0, 0, -1)), validT)
	require.True(t, ok)
	right, ok := world.Hit(core.NewRay(core.NewVec3(2, 0, 0), core.NewVec3(0, 0, -1)), validT)
	require.True(t, ok)

	assert.Same(t, left.Material, right.Material)

	world.Clear()
	assert.Equal(t, 0, world.Len())
}

func TestHittableList_Nested(t *testing.T) {
	inner := NewHittableList(NewSphere(core.NewVec3(0, 0, -3), 0.5, nil))
	world := NewHittableList(inner, NewSphere(core.NewVec3(0, 0, -1), 0.5, nil))

	hit, isHit := world.Hit(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)), validT)
	require.True(t, isHit)
	assert.InDelta(t, 0.5, hit.T, 1e-9)
}
