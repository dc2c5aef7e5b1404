package scene

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/df07/go-raytracer/pkg/core"
	"github.com/df07/go-raytracer/pkg/geometry"
	"github.com/df07/go-raytracer/pkg/material"
	"github.com/df07/go-raytracer/pkg/renderer"
)

//go:embed scenes/glass.yaml
var glassSceneFile []byte

// sceneFile is the on-disk layout of a scene description
type sceneFile struct {
	Name      string                  `yaml:"name"`
	Camera    cameraFile              `yaml:"camera"`
	Materials map[string]materialFile `yaml:"materials"`
	Objects   []objectFile            `yaml:"objects"`
}

// cameraFile overrides DefaultCameraConfig field by field; nil means unset
type cameraFile struct {
	AspectRatio     *float64 `yaml:"aspect_ratio"`
	ImageWidth      *int     `yaml:"image_width"`
	SamplesPerPixel *int     `yaml:"samples_per_pixel"`
	MaxDepth        *int     `yaml:"max_depth"`
	VFov            *float64 `yaml:"vfov"`
	LookFrom        *vec3    `yaml:"look_from"`
	LookAt          *vec3    `yaml:"look_at"`
	VUp             *vec3    `yaml:"vup"`
	DefocusAngle    *float64 `yaml:"defocus_angle"`
	FocusDist       *float64 `yaml:"focus_dist"`
	Seed            *int64   `yaml:"seed"`
}

type materialFile struct {
	Type            string   `yaml:"type"`
	Albedo          *vec3    `yaml:"albedo"`
	Fuzz            float64  `yaml:"fuzz"`
	RefractionIndex *float64 `yaml:"refraction_index"`
	Tint            *vec3    `yaml:"tint"`
}

type objectFile struct {
	Type     string  `yaml:"type"`
	Center   vec3    `yaml:"center"`
	Radius   float64 `yaml:"radius"`
	Material string  `yaml:"material"`
}

// vec3 decodes a three element YAML sequence
type vec3 core.Vec3

func (v *vec3) UnmarshalYAML(node *yaml.Node) error {
	var xyz []float64
	if err := node.Decode(&xyz); err != nil {
		return err
	}
	if len(xyz) != 3 {
		return fmt.Errorf("line %d: vector needs 3 components, got %d", node.Line, len(xyz))
	}
	*v = vec3(core.NewVec3(xyz[0], xyz[1], xyz[2]))
	return nil
}

// LoadFile reads a YAML scene description from path. The scene is named
// after the file unless the file sets a name.
func LoadFile(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene file: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Parse(data, name)
}

// Parse builds a scene from a YAML description. Unknown keys are rejected.
func Parse(data []byte, defaultName string) (*Scene, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var file sceneFile
	if err := decoder.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty scene file", ErrInvalidScene)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidScene, err)
	}

	cameraConfig := file.Camera.apply(renderer.DefaultCameraConfig())
	if err := cameraConfig.Validate(); err != nil {
		return nil, fmt.Errorf("scene camera: %w", err)
	}

	// Build each named material once; spheres share them by pointer
	materials := make(map[string]core.Material, len(file.Materials))
	for _, name := range slices.Sorted(maps.Keys(file.Materials)) {
		m, err := file.Materials[name].build()
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", name, err)
		}
		materials[name] = m
	}

	world := geometry.NewHittableList()
	for i, object := range file.Objects {
		if object.Type != "" && object.Type != "sphere" {
			return nil, fmt.Errorf("%w: object %d has unsupported type %q", ErrInvalidScene, i, object.Type)
		}
		if object.Radius <= 0 {
			return nil, fmt.Errorf("%w: object %d radius must be positive, got %g", ErrInvalidScene, i, object.Radius)
		}
		m, ok := materials[object.Material]
		if !ok {
			return nil, fmt.Errorf("%w: object %d references %q", ErrUnknownMaterial, i, object.Material)
		}
		world.Add(geometry.NewSphere(core.Vec3(object.Center), object.Radius, m))
	}

	name := file.Name
	if name == "" {
		name = defaultName
	}
	return &Scene{Name: name, World: world, Camera: cameraConfig}, nil
}

// apply returns base with every set field replaced
func (c cameraFile) apply(base renderer.CameraConfig) renderer.CameraConfig {
	if c.AspectRatio != nil {
		base.AspectRatio = *c.AspectRatio
	}
	if c.ImageWidth != nil {
		base.ImageWidth = *c.ImageWidth
	}
	if c.SamplesPerPixel != nil {
		base.SamplesPerPixel = *c.SamplesPerPixel
	}
	if c.MaxDepth != nil {
		base.MaxDepth = *c.MaxDepth
	}
	if c.VFov != nil {
		base.VFov = *c.VFov
	}
	if c.LookFrom != nil {
		base.LookFrom = core.Vec3(*c.LookFrom)
	}
	if c.LookAt != nil {
		base.LookAt = core.Vec3(*c.LookAt)
	}
	if c.VUp != nil {
		base.VUp = core.Vec3(*c.VUp)
	}
	if c.DefocusAngle != nil {
		base.DefocusAngle = *c.DefocusAngle
	}
	if c.FocusDist != nil {
		base.FocusDist = *c.FocusDist
	}
	if c.Seed != nil {
		base.Seed = *c.Seed
	}
	return base
}

func (m materialFile) build() (core.Material, error) {
	switch m.Type {
	case "lambertian":
		if m.Albedo == nil {
			return nil, fmt.Errorf("%w: lambertian needs an albedo", ErrInvalidScene)
		}
		return material.NewLambertian(core.Vec3(*m.Albedo)), nil
	case "metal":
		if m.Albedo == nil {
			return nil, fmt.Errorf("%w: metal needs an albedo", ErrInvalidScene)
		}
		return material.NewMetal(core.Vec3(*m.Albedo), m.Fuzz), nil
	case "dielectric":
		if m.RefractionIndex == nil || !(*m.RefractionIndex > 0) {
			return nil, fmt.Errorf("%w: dielectric needs a positive refraction_index", ErrInvalidScene)
		}
		if m.Tint != nil {
			return material.NewTintedDielectric(*m.RefractionIndex, core.Vec3(*m.Tint)), nil
		}
		return material.NewDielectric(*m.RefractionIndex), nil
	default:
		return nil, fmt.Errorf("%w: type %q", ErrUnknownMaterial, m.Type)
	}
}
