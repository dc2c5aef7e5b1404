package scene

import (
	"github.com/df07/go-raytracer/pkg/core"
	"github.com/df07/go-raytracer/pkg/geometry"
	"github.com/df07/go-raytracer/pkg/material"
	"github.com/df07/go-raytracer/pkg/renderer"
)

// DefaultSpheresSeed fixes the layout of the built-in spheres scene
const DefaultSpheresSeed = 1

// gridExtent is the half width of the grid of small spheres
const gridExtent = 11

// NewSpheresScene creates a field of small random spheres around three large
// ones, viewed with depth of field. The layout depends only on seed.
func NewSpheresScene(seed int64) *Scene {
	cameraConfig := renderer.DefaultCameraConfig()
	cameraConfig.AspectRatio = 16.0 / 9.0
	cameraConfig.ImageWidth = 400
	cameraConfig.SamplesPerPixel = 100
	cameraConfig.MaxDepth = 50
	cameraConfig.VFov = 20
	cameraConfig.LookFrom = core.NewVec3(13, 2, 3)
	cameraConfig.LookAt = core.NewVec3(0, 0, 0)
	cameraConfig.VUp = core.NewVec3(0, 1, 0)
	cameraConfig.DefocusAngle = 0.6
	cameraConfig.FocusDist = 10.0

	sampler := core.NewSeededSampler(seed)
	between := func(lo, hi float64) float64 {
		return lo + (hi-lo)*sampler.Get1D()
	}

	world := geometry.NewHittableList()
	world.Add(geometry.NewSphere(core.NewVec3(0, -1000, 0), 1000, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))))

	// One glass material serves every small glass sphere
	glass := material.NewDielectric(1.5)
	clearing := core.NewVec3(4, 0.2, 0)

	for a := -gridExtent; a < gridExtent; a++ {
		for b := -gridExtent; b < gridExtent; b++ {
			chooseMat := sampler.Get1D()
			center := core.NewVec3(float64(a)+0.9*sampler.Get1D(), 0.2, float64(b)+0.9*sampler.Get1D())

			// Keep the space around the big metal sphere clear
			if center.Subtract(clearing).Length() <= 0.9 {
				continue
			}

			var sphereMaterial core.Material
			switch {
			case chooseMat < 0.8:
				albedo := core.RandomVec3(sampler, 0, 1).MultiplyVec(core.RandomVec3(sampler, 0, 1))
				sphereMaterial = material.NewLambertian(albedo)
			case chooseMat < 0.95:
				albedo := core.RandomVec3(sampler, 0.5, 1)
				sphereMaterial = material.NewMetal(albedo, between(0, 0.5))
			default:
				sphereMaterial = glass
			}
			world.Add(geometry.NewSphere(center, 0.2, sphereMaterial))
		}
	}

	world.Add(geometry.NewSphere(core.NewVec3(0, 1, 0), 1.0, glass))
	world.Add(geometry.NewSphere(core.NewVec3(-4, 1, 0), 1.0, material.NewLambertian(core.NewVec3(0.4, 0.2, 0.1))))
	world.Add(geometry.NewSphere(core.NewVec3(4, 1, 0), 1.0, material.NewMetal(core.NewVec3(0.7, 0.6, 0.5), 0.0)))

	return &Scene{
		Name:   "spheres",
		World:  world,
		Camera: cameraConfig,
	}
}
