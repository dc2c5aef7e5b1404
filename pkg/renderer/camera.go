package renderer

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/df07/go-raytracer/pkg/core"
)

// Camera turns pixel coordinates into sample rays. All derived geometry is
// computed once in NewCamera and never changes afterwards, so a Camera can
// be shared by every render worker.
type Camera struct {
	config CameraConfig

	imageHeight       int
	pixelSamplesScale float64   // Color scale factor for a sum of pixel samples
	center            core.Vec3 // Camera center
	pixel00           core.Vec3 // Location of pixel (0, 0)
	pixelDeltaU       core.Vec3 // Offset to pixel to the right
	pixelDeltaV       core.Vec3 // Offset to pixel below
	defocusDiskU      core.Vec3 // Defocus disk horizontal radius
	defocusDiskV      core.Vec3 // Defocus disk vertical radius
	w                 core.Vec3 // Points opposite the view direction

	logger zerolog.Logger
}

// NewCamera validates config and derives the projection geometry
func NewCamera(config CameraConfig) (*Camera, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.TileSize == 0 {
		config.TileSize = DefaultTileSize
	}

	imageHeight := config.ImageHeight()
	center := config.LookFrom

	// Viewport dimensions from the vertical field of view at the focus plane
	theta := degreesToRadians(config.VFov)
	h := math.Tan(theta / 2)
	viewportHeight := 2 * h * config.FocusDist
	viewportWidth := viewportHeight * float64(config.ImageWidth) / float64(imageHeight)

	// Orthonormal camera frame
	w := config.LookFrom.Subtract(config.LookAt).Unit()
	u := config.VUp.Cross(w).Unit()
	v := w.Cross(u)

	// Vectors across the horizontal and down the vertical viewport edges
	viewportU := u.Multiply(viewportWidth)
	viewportV := v.Negate().Multiply(viewportHeight)

	pixelDeltaU := viewportU.Divide(float64(config.ImageWidth))
	pixelDeltaV := viewportV.Divide(float64(imageHeight))

	viewportUpperLeft := center.
		Subtract(w.Multiply(config.FocusDist)).
		Subtract(viewportU.Divide(2)).
		Subtract(viewportV.Divide(2))
	pixel00 := viewportUpperLeft.Add(pixelDeltaU.Add(pixelDeltaV).Multiply(0.5))

	// A non-positive angle collapses the disk to the center (pinhole)
	defocusRadius := 0.0
	if config.DefocusAngle > 0 {
		defocusRadius = config.FocusDist * math.Tan(degreesToRadians(config.DefocusAngle/2))
	}

	return &Camera{
		config:            config,
		imageHeight:       imageHeight,
		pixelSamplesScale: 1.0 / float64(config.SamplesPerPixel),
		center:            center,
		pixel00:           pixel00,
		pixelDeltaU:       pixelDeltaU,
		pixelDeltaV:       pixelDeltaV,
		defocusDiskU:      u.Multiply(defocusRadius),
		defocusDiskV:      v.Multiply(defocusRadius),
		w:                 w,
		logger:            zerolog.Nop(),
	}, nil
}

// SetLogger sets the logger used while rendering
func (c *Camera) SetLogger(logger zerolog.Logger) {
	c.logger = logger
}

// Config returns the validated configuration the camera was built from
func (c *Camera) Config() CameraConfig {
	return c.config
}

// Width returns the image width in pixels
func (c *Camera) Width() int {
	return c.config.ImageWidth
}

// Height returns the image height in pixels
func (c *Camera) Height() int {
	return c.imageHeight
}

// Center returns the camera position
func (c *Camera) Center() core.Vec3 {
	return c.center
}

// GetCameraForward returns the viewing direction
func (c *Camera) GetCameraForward() core.Vec3 {
	return c.w.Negate()
}

// GetRay builds a ray for pixel (i, j), jittered uniformly within the pixel
// and starting from a random point on the defocus disk.
//
// The disk sample is always taken: with a zero defocus angle the disk basis
// vectors are zero and the origin is exactly the camera center.
func (c *Camera) GetRay(i, j int, sampler core.Sampler) core.Ray {
	offset := sampler.Get2D()
	pixelSample := c.pixel00.
		Add(c.pixelDeltaU.Multiply(float64(i) + offset.X - 0.5)).
		Add(c.pixelDeltaV.Multiply(float64(j) + offset.Y - 0.5))

	rayOrigin := c.defocusDiskSample(sampler)
	return core.NewRay(rayOrigin, pixelSample.Subtract(rayOrigin))
}

// defocusDiskSample returns a random point in the camera defocus disk
func (c *Camera) defocusDiskSample(sampler core.Sampler) core.Vec3 {
	p := core.RandomInUnitDisk(sampler)
	return c.center.Add(c.defocusDiskU.Multiply(p.X)).Add(c.defocusDiskV.Multiply(p.Y))
}

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180.0
}
