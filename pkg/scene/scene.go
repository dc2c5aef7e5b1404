package scene

import (
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/df07/go-raytracer/pkg/geometry"
	"github.com/df07/go-raytracer/pkg/renderer"
)

var (
	// ErrUnknownScene is returned when a name matches no built-in scene
	ErrUnknownScene = errors.New("unknown scene")
	// ErrUnknownMaterial is returned for an unknown material type or reference
	ErrUnknownMaterial = errors.New("unknown material")
	// ErrInvalidScene is returned for a scene file that is structurally wrong
	ErrInvalidScene = errors.New("invalid scene")
)

// Scene contains everything needed to render an image: the objects and the
// camera parameters chosen for them.
type Scene struct {
	Name   string
	World  *geometry.HittableList
	Camera renderer.CameraConfig
}

// builtins maps scene names to their builders
var builtins = map[string]func() (*Scene, error){
	"default": func() (*Scene, error) { return NewDefaultScene(), nil },
	"spheres": func() (*Scene, error) { return NewSpheresScene(DefaultSpheresSeed), nil },
	"empty":   func() (*Scene, error) { return NewEmptyScene(), nil },
	"glass":   func() (*Scene, error) { return Parse(glassSceneFile, "glass") },
}

// Names returns the built-in scene names in sorted order
func Names() []string {
	return slices.Sorted(maps.Keys(builtins))
}

// Load returns a built-in scene by name, or reads a scene file when
// nameOrPath has a .yaml or .yml extension.
func Load(nameOrPath string) (*Scene, error) {
	switch strings.ToLower(filepath.Ext(nameOrPath)) {
	case ".yaml", ".yml":
		return LoadFile(nameOrPath)
	}

	build, ok := builtins[nameOrPath]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownScene, nameOrPath, strings.Join(Names(), ", "))
	}
	return build()
}

// NewEmptyScene creates a scene with no objects; every ray sees the sky
func NewEmptyScene() *Scene {
	return &Scene{
		Name:   "empty",
		World:  geometry.NewHittableList(),
		Camera: renderer.DefaultCameraConfig(),
	}
}
