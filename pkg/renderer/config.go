package renderer

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-raytracer/pkg/core"
)

// ErrInvalidConfig is wrapped by every configuration validation failure
var ErrInvalidConfig = errors.New("invalid camera config")

// DefaultTileSize is the edge length of a render tile in pixels
const DefaultTileSize = 16

// MaxImagePixels bounds width*height so a config cannot ask for an image
// buffer that does not fit in memory (8192x8192)
const MaxImagePixels = 1 << 26

// CameraConfig holds every user-facing camera and sampling parameter.
// Scalar fields can be overridden from the environment (see envconfig tags);
// vectors come from scene files or code.
type CameraConfig struct {
	AspectRatio     float64 `envconfig:"ASPECT_RATIO"`      // Ratio of image width over height
	ImageWidth      int     `envconfig:"IMAGE_WIDTH"`       // Rendered image width in pixels
	SamplesPerPixel int     `envconfig:"SAMPLES_PER_PIXEL"` // Random samples for each pixel
	MaxDepth        int     `envconfig:"MAX_DEPTH"`         // Maximum ray bounces

	VFov     float64   `envconfig:"VFOV"` // Vertical field of view in degrees
	LookFrom core.Vec3 `ignored:"true"`   // Point the camera looks from
	LookAt   core.Vec3 `ignored:"true"`   // Point the camera looks at
	VUp      core.Vec3 `ignored:"true"`   // Camera-relative up direction

	DefocusAngle float64 `envconfig:"DEFOCUS_ANGLE"` // Cone angle of rays through each pixel, degrees
	FocusDist    float64 `envconfig:"FOCUS_DIST"`    // Distance to the plane of perfect focus

	Workers  int   `envconfig:"WORKERS"`   // Parallel workers (0 = CPU count)
	TileSize int   `envconfig:"TILE_SIZE"` // Tile edge in pixels (0 = DefaultTileSize)
	Seed     int64 `envconfig:"SEED"`      // Base seed; tile i draws from Seed+i
}

// DefaultCameraConfig returns the documented defaults
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		AspectRatio:     1.0,
		ImageWidth:      100,
		SamplesPerPixel: 10,
		MaxDepth:        10,
		VFov:            90,
		LookFrom:        core.NewVec3(0, 0, 0),
		LookAt:          core.NewVec3(0, 0, -1),
		VUp:             core.NewVec3(0, 1, 0),
		DefocusAngle:    0,
		FocusDist:       10,
		Workers:         0,
		TileSize:        DefaultTileSize,
		Seed:            42,
	}
}

// ImageHeight returns max(1, round(width / aspect ratio)). Only meaningful
// for a config that passed Validate.
func (c CameraConfig) ImageHeight() int {
	return int(c.imageHeight())
}

// imageHeight computes the height in float64 so oversized results can be
// detected before converting to int
func (c CameraConfig) imageHeight() float64 {
	return math.Max(1, math.Round(float64(c.ImageWidth)/c.AspectRatio))
}

// Validate reports the first invalid parameter, wrapped in ErrInvalidConfig
func (c CameraConfig) Validate() error {
	switch {
	case c.ImageWidth <= 0:
		return fmt.Errorf("%w: image width must be positive, got %d", ErrInvalidConfig, c.ImageWidth)
	case !(c.AspectRatio > 0) || math.IsInf(c.AspectRatio, 0):
		return fmt.Errorf("%w: aspect ratio must be positive and finite, got %g", ErrInvalidConfig, c.AspectRatio)
	case float64(c.ImageWidth)*c.imageHeight() > MaxImagePixels:
		return fmt.Errorf("%w: %d pixels wide at aspect ratio %g exceeds %d pixels",
			ErrInvalidConfig, c.ImageWidth, c.AspectRatio, MaxImagePixels)
	case c.SamplesPerPixel <= 0:
		return fmt.Errorf("%w: samples per pixel must be positive, got %d", ErrInvalidConfig, c.SamplesPerPixel)
	case c.MaxDepth < 0:
		return fmt.Errorf("%w: max depth must not be negative, got %d", ErrInvalidConfig, c.MaxDepth)
	case !(c.VFov > 0 && c.VFov < 180):
		return fmt.Errorf("%w: vertical field of view must be in (0, 180) degrees, got %g", ErrInvalidConfig, c.VFov)
	case !(c.FocusDist > 0) || math.IsInf(c.FocusDist, 0):
		return fmt.Errorf("%w: focus distance must be positive and finite, got %g", ErrInvalidConfig, c.FocusDist)
	case math.IsNaN(c.DefocusAngle) || c.DefocusAngle >= 180:
		return fmt.Errorf("%w: defocus angle must be below 180 degrees, got %g", ErrInvalidConfig, c.DefocusAngle)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, c.Workers)
	case c.TileSize < 0:
		return fmt.Errorf("%w: tile size must not be negative, got %d", ErrInvalidConfig, c.TileSize)
	case !c.LookFrom.IsFinite() || !c.LookAt.IsFinite() || !c.VUp.IsFinite():
		return fmt.Errorf("%w: camera vectors must be finite", ErrInvalidConfig)
	}

	// Both of these would otherwise normalize a zero-length vector
	viewDir := c.LookFrom.Subtract(c.LookAt)
	if viewDir.NearZero() {
		return fmt.Errorf("%w: look-from %v and look-at %v coincide", ErrInvalidConfig, c.LookFrom, c.LookAt)
	}
	if c.VUp.Cross(viewDir).NearZero() {
		return fmt.Errorf("%w: up vector %v is zero or parallel to the view direction", ErrInvalidConfig, c.VUp)
	}

	return nil
}
