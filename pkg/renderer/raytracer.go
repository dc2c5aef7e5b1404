package renderer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"time"

	"github.com/df07/go-raytracer/pkg/core"
)

// shadowAcneEpsilon is the smallest accepted hit parameter. Floating point
// error in a scattered ray's origin would otherwise re-hit the same surface.
const shadowAcneEpsilon = 0.001

// ErrNonFiniteColor reports a pixel whose estimate came out NaN or infinite
var ErrNonFiniteColor = errors.New("non-finite pixel color")

var (
	skyWhite = core.NewVec3(1.0, 1.0, 1.0)
	skyBlue  = core.NewVec3(0.5, 0.7, 1.0)

	// intensity bounds a gamma-encoded channel before quantization
	intensity = core.NewInterval(0.000, 0.999)
)

// RayColor returns the radiance carried back along r. The bounce budget
// depth is the only thing that ends the recursion.
func RayColor(r core.Ray, depth int, world core.Hittable, sampler core.Sampler) core.Vec3 {
	// If we've exceeded the ray bounce limit, no more light is gathered
	if depth <= 0 {
		return core.Vec3{}
	}

	hit, isHit := world.Hit(r, core.NewInterval(shadowAcneEpsilon, math.Inf(1)))
	if !isHit {
		return BackgroundColor(r)
	}

	scatter, didScatter := hit.Material.Scatter(r, *hit, sampler)
	if !didScatter {
		return core.Vec3{} // Material absorbed the ray
	}

	return scatter.Attenuation.MultiplyVec(RayColor(scatter.Scattered, depth-1, world, sampler))
}

// BackgroundColor blends white to sky blue on the ray's normalized height
func BackgroundColor(r core.Ray) core.Vec3 {
	unitDirection := r.Direction.Unit()
	a := 0.5 * (unitDirection.Y + 1.0)
	return skyWhite.Multiply(1.0 - a).Add(skyBlue.Multiply(a))
}

// LinearToGamma applies gamma-2 encoding; non-positive input maps to zero
func LinearToGamma(linear float64) float64 {
	if linear > 0 {
		return math.Sqrt(linear)
	}
	return 0
}

// QuantizeChannel gamma-encodes a linear channel and maps it to 0..255
func QuantizeChannel(linear float64) uint8 {
	return uint8(256 * intensity.Clamp(LinearToGamma(linear)))
}

// vec3ToColor converts a linear color to an opaque 8-bit RGBA pixel
func vec3ToColor(colorVec core.Vec3) color.RGBA {
	return color.RGBA{
		R: QuantizeChannel(colorVec.X),
		G: QuantizeChannel(colorVec.Y),
		B: QuantizeChannel(colorVec.Z),
		A: 255,
	}
}

// samplePixel averages SamplesPerPixel independent estimates for pixel (i, j)
func (c *Camera) samplePixel(i, j int, world core.Hittable, sampler core.Sampler) core.Vec3 {
	var ps PixelStats
	for sample := 0; sample < c.config.SamplesPerPixel; sample++ {
		ray := c.GetRay(i, j, sampler)
		ps.AddSample(RayColor(ray, c.config.MaxDepth, world, sampler))
	}
	return ps.ColorAccum.Multiply(c.pixelSamplesScale)
}

// renderBounds renders the pixels inside bounds into img. Callers running
// several renderBounds at once must use non-overlapping bounds.
func (c *Camera) renderBounds(bounds image.Rectangle, img *image.RGBA, world core.Hittable, sampler core.Sampler) (RenderStats, error) {
	for j := bounds.Min.Y; j < bounds.Max.Y; j++ {
		for i := bounds.Min.X; i < bounds.Max.X; i++ {
			pixelColor := c.samplePixel(i, j, world, sampler)
			if !pixelColor.IsFinite() {
				return RenderStats{}, fmt.Errorf("%w: pixel (%d, %d) is %v", ErrNonFiniteColor, i, j, pixelColor)
			}
			img.SetRGBA(i, j, vec3ToColor(pixelColor))
		}
	}

	pixels := bounds.Dx() * bounds.Dy()
	return RenderStats{
		TotalPixels:  pixels,
		TotalSamples: pixels * c.config.SamplesPerPixel,
	}, nil
}

// Render computes every pixel in parallel and returns the finished image.
// Tiles are spread over the worker pool, each with its own seeded sampler;
// the call returns only after every tile is done.
func (c *Camera) Render(world core.Hittable) (*image.RGBA, RenderStats, error) {
	return c.RenderContext(context.Background(), world, nil)
}

// RenderContext is Render with cancellation and an optional tile progress
// callback. A cancelled render returns ctx's error and no image.
func (c *Camera) RenderContext(ctx context.Context, world core.Hittable, progress ProgressFunc) (*image.RGBA, RenderStats, error) {
	return c.renderTiles(ctx, world, func(tile *Tile) core.Sampler { return tile.Sampler }, progress)
}

// RenderShared renders tiles in parallel like RenderContext, but every
// worker draws from the one given sampler, which is wrapped in a
// core.LockedSampler. Output then depends on scheduling, so it is only
// reproducible with a single worker.
func (c *Camera) RenderShared(ctx context.Context, world core.Hittable, sampler core.Sampler, progress ProgressFunc) (*image.RGBA, RenderStats, error) {
	shared := core.NewLockedSampler(sampler)
	return c.renderTiles(ctx, world, func(*Tile) core.Sampler { return shared }, progress)
}

func (c *Camera) renderTiles(ctx context.Context, world core.Hittable, samplerFor func(*Tile) core.Sampler, progress ProgressFunc) (*image.RGBA, RenderStats, error) {
	startTime := time.Now()
	img := image.NewRGBA(image.Rect(0, 0, c.Width(), c.Height()))
	tiles := NewTileGrid(c.Width(), c.Height(), c.config.TileSize, c.config.Seed)

	pool := NewWorkerPool(c.config.Workers, c.logger)
	c.logger.Info().
		Int("width", c.Width()).
		Int("height", c.Height()).
		Int("samples", c.config.SamplesPerPixel).
		Int("maxDepth", c.config.MaxDepth).
		Int("tiles", len(tiles)).
		Int("workers", pool.NumWorkers()).
		Msg("rendering")

	stats, err := pool.Run(ctx, tiles, func(tile *Tile) (RenderStats, error) {
		return c.renderBounds(tile.Bounds, img, world, samplerFor(tile))
	}, progress)
	if err != nil {
		return nil, RenderStats{}, err
	}

	stats.Duration = time.Since(startTime)
	c.logger.Info().
		Dur("elapsed", stats.Duration).
		Int("pixels", stats.TotalPixels).
		Int("samples", stats.TotalSamples).
		Msg("render complete")

	return img, stats, nil
}

// RenderWithSampler renders the whole image on the calling goroutine using
// the given sampler. It is the deterministic counterpart of Render.
func (c *Camera) RenderWithSampler(world core.Hittable, sampler core.Sampler) (*image.RGBA, RenderStats, error) {
	startTime := time.Now()
	img := image.NewRGBA(image.Rect(0, 0, c.Width(), c.Height()))

	stats, err := c.renderBounds(img.Bounds(), img, world, sampler)
	if err != nil {
		return nil, RenderStats{}, err
	}
	stats.Tiles = 1
	stats.Workers = 1
	stats.Duration = time.Since(startTime)

	return img, stats, nil
}
