package main

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/df07/go-raytracer/pkg/core"
	"github.com/df07/go-raytracer/pkg/renderer"
	"github.com/df07/go-raytracer/pkg/scene"
)

// envPrefix namespaces environment overrides, e.g. RAYTRACER_IMAGE_WIDTH
const envPrefix = "RAYTRACER"

// Options are the command line flags. Zero values keep the scene's setting.
type Options struct {
	Scene   string `help:"Built-in scene name or path to a YAML scene file." default:"default" short:"s"`
	Output  string `help:"Output PNG path (default output/<scene>/render_<timestamp>_<id>.png)." short:"o"`
	Width   int    `help:"Image width in pixels." short:"w"`
	Samples int    `help:"Samples per pixel." short:"n"`
	Depth   int    `help:"Maximum ray bounces (-1 keeps the scene's)." default:"-1"`
	Workers int    `help:"Parallel render workers."`
	Seed    int64  `help:"Base random seed."`
	Shared  bool   `help:"Draw every tile from one shared random stream; output then varies with scheduling."`
	List    bool   `help:"List the built-in scenes and exit."`
	Debug   bool   `help:"Whether to enable debug logging."`
}

func main() {
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(consoleWriter)

	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var opts Options
	kong.Parse(&opts,
		kong.Name("raytracer"),
		kong.Description("Render a scene of spheres to a PNG image."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	if opts.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Warn().Msg("debug logging enabled")
	}

	if opts.List {
		for _, name := range scene.Names() {
			fmt.Println(name)
		}
		return
	}

	path, err := run(opts, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("render failed")
	}
	log.Info().Str("path", path).Msg("render saved")
}

// run loads the scene, renders it and writes the PNG, returning its path
func run(opts Options, logger zerolog.Logger) (string, error) {
	s, err := scene.Load(opts.Scene)
	if err != nil {
		return "", err
	}

	config, err := resolveConfig(s.Camera, opts)
	if err != nil {
		return "", err
	}

	camera, err := renderer.NewCamera(config)
	if err != nil {
		return "", err
	}

	renderID := uuid.New()
	logger = logger.With().
		Str("render", renderID.String()).
		Str("scene", s.Name).
		Logger()
	camera.SetLogger(logger)

	var img *image.RGBA
	var stats renderer.RenderStats
	if opts.Shared {
		img, stats, err = camera.RenderShared(context.Background(), s.World, core.NewSeededSampler(config.Seed), nil)
	} else {
		img, stats, err = camera.Render(s.World)
	}
	if err != nil {
		return "", err
	}
	logger.Info().
		Int("width", img.Bounds().Dx()).
		Int("height", img.Bounds().Dy()).
		Float64("samplesPerPixel", stats.AverageSamples()).
		Int("tiles", stats.Tiles).
		Int("workers", stats.Workers).
		Dur("elapsed", stats.Duration).
		Msg("render finished")

	path := opts.Output
	if path == "" {
		path = filepath.Join(outputDir(s.Name), outputFilename(time.Now(), renderID))
	}
	if err := writePNG(path, img); err != nil {
		return "", err
	}
	return path, nil
}

// resolveConfig layers environment overrides and then flags on top of the
// scene's camera configuration
func resolveConfig(base renderer.CameraConfig, opts Options) (renderer.CameraConfig, error) {
	config := base
	if err := envconfig.Process(envPrefix, &config); err != nil {
		return renderer.CameraConfig{}, fmt.Errorf("environment overrides: %w", err)
	}

	if opts.Width > 0 {
		config.ImageWidth = opts.Width
	}
	if opts.Samples > 0 {
		config.SamplesPerPixel = opts.Samples
	}
	if opts.Depth >= 0 {
		config.MaxDepth = opts.Depth
	}
	if opts.Workers > 0 {
		config.Workers = opts.Workers
	}
	if opts.Seed != 0 {
		config.Seed = opts.Seed
	}
	return config, nil
}

// outputDir returns the per-scene output directory; writePNG creates it
func outputDir(sceneName string) string {
	return filepath.Join("output", filepath.Base(sceneName))
}

// outputFilename names a render by time and the first block of its id
func outputFilename(now time.Time, renderID uuid.UUID) string {
	return fmt.Sprintf("render_%s_%s.png", now.Format("20060102_150405"), renderID.String()[:8])
}

func writePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}

	if err := png.Encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return file.Close()
}
