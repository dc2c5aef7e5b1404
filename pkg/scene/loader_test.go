package scene

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-raytracer/pkg/core"
	"github.com/df07/go-raytracer/pkg/geometry"
	"github.com/df07/go-raytracer/pkg/material"
	"github.com/df07/go-raytracer/pkg/renderer"
)

const twoSpheres = `
camera:
  image_width: 64
  vfov: 45
  look_from: [0, 1, 3]
materials:
  matte:
    type: lambertian
    albedo: [0.5, 0.25, 0.125]
  brushed:
    type: metal
    albedo: [0.9, 0.9, 0.9]
    fuzz: 3
objects:
  - {center: [0, 0, -1], radius: 0.5, material: matte}
  - {type: sphere, center: [1, 0, -1], radius: 0.5, material: brushed}
  - {type: sphere, center: [0, -100.5, -1], radius: 100, material: matte}
`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(twoSpheres), "fallback")
	require.NoError(t, err)

	assert.Equal(t, "fallback", s.Name)
	require.Equal(t, 3, s.World.Len())

	// Unset camera keys keep their defaults
	expected := renderer.DefaultCameraConfig()
	expected.ImageWidth = 64
	expected.VFov = 45
	expected.LookFrom = core.NewVec3(0, 1, 3)
	assert.Equal(t, expected, s.Camera)

	first := s.World.Objects[0].(*geometry.Sphere)
	assert.Equal(t, core.NewVec3(0, 0, -1), first.Center)
	assert.Equal(t, 0.5, first.Radius)
	assert.Equal(t, core.NewVec3(0.5, 0.25, 0.125), first.Material.(*material.Lambertian).Albedo)

	metal := s.World.Objects[1].(*geometry.Sphere).Material.(*material.Metal)
	assert.Equal(t, 1.0, metal.Fuzzness, "fuzz is clamped")

	// Spheres naming the same material share one instance
	assert.Same(t, first.Material, s.World.Objects[2].(*geometry.Sphere).Material)
}

func TestParse_Dielectrics(t *testing.T) {
	s, err := Parse([]byte(`
materials:
  clear: {type: dielectric, refraction_index: 1.5}
  green: {type: dielectric, refraction_index: 1.33, tint: [0.2, 1, 0.2]}
objects:
  - {center: [0, 0, -1], radius: 0.5, material: clear}
  - {center: [0, 0, -2], radius: 0.5, material: green}
`), "glass")
	require.NoError(t, err)

	clearGlass := s.World.Objects[0].(*geometry.Sphere).Material.(*material.Dielectric)
	assert.Equal(t, 1.5, clearGlass.RefractiveIndex)
	assert.Equal(t, core.NewVec3(1, 1, 1), clearGlass.Tint)

	green := s.World.Objects[1].(*geometry.Sphere).Material.(*material.Dielectric)
	assert.Equal(t, 1.33, green.RefractiveIndex)
	assert.Equal(t, core.NewVec3(0.2, 1, 0.2), green.Tint)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		expected error
	}{
		{"empty file", ``, ErrInvalidScene},
		{"unknown key", "lights: []\n", ErrInvalidScene},
		{"short vector", "camera: {look_at: [0, 1]}\n", ErrInvalidScene},
		{"bad camera", "camera: {image_width: 0}\n", renderer.ErrInvalidConfig},
		{"oversized image", "camera: {aspect_ratio: 1e-9}\n", renderer.ErrInvalidConfig},
		{"unknown material type", "materials: {x: {type: plastic}}\n", ErrUnknownMaterial},
		{"missing reference", "objects: [{center: [0, 0, 0], radius: 1, material: nope}]\n", ErrUnknownMaterial},
		{"missing albedo", "materials: {x: {type: lambertian}}\n", ErrInvalidScene},
		{"metal without albedo", "materials: {x: {type: metal, fuzz: 0.1}}\n", ErrInvalidScene},
		{"zero refraction index", "materials: {x: {type: dielectric, refraction_index: 0}}\n", ErrInvalidScene},
		{"unsupported object", `
materials: {m: {type: lambertian, albedo: [1, 1, 1]}}
objects: [{type: cube, center: [0, 0, 0], radius: 1, material: m}]
`, ErrInvalidScene},
		{"zero radius", `
materials: {m: {type: lambertian, albedo: [1, 1, 1]}}
objects: [{center: [0, 0, 0], radius: 0, material: m}]
`, ErrInvalidScene},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse([]byte(tt.yaml), "broken")
			require.ErrorIs(t, err, tt.expected)
			assert.Nil(t, s)
		})
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "two_spheres.yml")
	require.NoError(t, os.WriteFile(path, []byte(twoSpheres), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "two_spheres", s.Name)
	assert.Equal(t, 3, s.World.Len())

	named := filepath.Join(dir, "named.yaml")
	require.NoError(t, os.WriteFile(named, []byte("name: custom\n"), 0o644))
	s, err = Load(named)
	require.NoError(t, err)
	assert.Equal(t, "custom", s.Name)
	assert.Equal(t, 0, s.World.Len())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
