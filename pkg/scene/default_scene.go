package scene

import (
	"github.com/df07/go-raytracer/pkg/core"
	"github.com/df07/go-raytracer/pkg/geometry"
	"github.com/df07/go-raytracer/pkg/material"
	"github.com/df07/go-raytracer/pkg/renderer"
)

// NewDefaultScene creates three spheres on a large ground sphere: diffuse
// in the center, a hollow glass ball on the left and fuzzy gold on the right.
func NewDefaultScene() *Scene {
	cameraConfig := renderer.DefaultCameraConfig()
	cameraConfig.AspectRatio = 16.0 / 9.0
	cameraConfig.ImageWidth = 400
	cameraConfig.SamplesPerPixel = 100
	cameraConfig.MaxDepth = 50
	cameraConfig.VFov = 20
	cameraConfig.LookFrom = core.NewVec3(-2, 2, 1)
	cameraConfig.LookAt = core.NewVec3(0, 0, -1)
	cameraConfig.VUp = core.NewVec3(0, 1, 0)
	cameraConfig.DefocusAngle = 10.0
	cameraConfig.FocusDist = 3.4

	// Create materials
	materialGround := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0))
	materialCenter := material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))
	materialLeft := material.NewDielectric(1.50)
	materialBubble := material.NewDielectric(1.00 / 1.50) // Air inside glass
	materialRight := material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 1.0)

	world := geometry.NewHittableList(
		geometry.NewSphere(core.NewVec3(0.0, -100.5, -1.0), 100.0, materialGround),
		geometry.NewSphere(core.NewVec3(0.0, 0.0, -1.2), 0.5, materialCenter),
		geometry.NewSphere(core.NewVec3(-1.0, 0.0, -1.0), 0.5, materialLeft),
		geometry.NewSphere(core.NewVec3(-1.0, 0.0, -1.0), 0.4, materialBubble),
		geometry.NewSphere(core.NewVec3(1.0, 0.0, -1.0), 0.5, materialRight),
	)

	return &Scene{
		Name:   "default",
		World:  world,
		Camera: cameraConfig,
	}
}
