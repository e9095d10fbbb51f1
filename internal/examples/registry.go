// Package examples holds the runnable demo scenes and the registry the CLI
// lists and runs them from.
package examples

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"GopherStage/internal/bootstrap"

	"go.uber.org/zap"
)

// RunFunc builds a demo on env and starts its render loop.
type RunFunc func(ctx context.Context, env *Env) (*bootstrap.LoopHandle, error)

type Group struct {
	Key   string
	Title string
}

var (
	GroupBasicAnimations = Group{Key: "basicAnimations", Title: "Basic Animations"}
	GroupCameras         = Group{Key: "cameras", Title: "Cameras"}
	GroupGeometries      = Group{Key: "geometries", Title: "Geometries"}
	GroupDebug           = Group{Key: "debug", Title: "Debug Panel"}
	GroupTextures        = Group{Key: "textures", Title: "Textures and Materials"}
	GroupModels          = Group{Key: "models", Title: "Imported Models"}
	GroupTerrain         = Group{Key: "terrain", Title: "Procedural Terrain"}
	GroupRaycaster       = Group{Key: "raycaster", Title: "Raycaster"}
	GroupPhysics         = Group{Key: "physics", Title: "Physics"}
)

// Groups is the listing order.
var Groups = []Group{
	GroupBasicAnimations,
	GroupCameras,
	GroupGeometries,
	GroupDebug,
	GroupTextures,
	GroupModels,
	GroupTerrain,
	GroupRaycaster,
	GroupPhysics,
}

type Example struct {
	Name        string
	DisplayName string
	Group       Group
	Run         RunFunc
}

var ErrUnknownExample = errors.New("unknown example")

type Registry struct {
	examples map[string]Example
	order    []string
}

func NewRegistry() *Registry {
	return &Registry{examples: make(map[string]Example)}
}

// Register adds ex. Names must be unique and non-empty.
func (r *Registry) Register(ex Example) error {
	if ex.Name == "" || ex.Run == nil {
		return fmt.Errorf("register example %q: name and run func are required", ex.Name)
	}
	if _, exists := r.examples[ex.Name]; exists {
		return fmt.Errorf("register example %q: already registered", ex.Name)
	}
	if ex.DisplayName == "" {
		ex.DisplayName = ex.Name
	}
	r.examples[ex.Name] = ex
	r.order = append(r.order, ex.Name)
	return nil
}

func (r *Registry) MustRegister(ex Example) {
	if err := r.Register(ex); err != nil {
		panic(err)
	}
}

// Names returns every registered name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.examples))
	for name := range r.examples {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Lookup(name string) (Example, bool) {
	ex, ok := r.examples[name]
	return ex, ok
}

// Listing is one group and its examples in registration order.
type Listing struct {
	Group    Group
	Examples []Example
}

// Grouped lists examples by group in Groups order. Groups without examples
// are left out; examples of unknown groups come last.
func (r *Registry) Grouped() []Listing {
	byKey := make(map[string]*Listing)
	var out []*Listing
	for _, g := range Groups {
		l := &Listing{Group: g}
		byKey[g.Key] = l
		out = append(out, l)
	}
	for _, name := range r.order {
		ex := r.examples[name]
		l, ok := byKey[ex.Group.Key]
		if !ok {
			l = &Listing{Group: ex.Group}
			byKey[ex.Group.Key] = l
			out = append(out, l)
		}
		l.Examples = append(l.Examples, ex)
	}

	listings := make([]Listing, 0, len(out))
	for _, l := range out {
		if len(l.Examples) > 0 {
			listings = append(listings, *l)
		}
	}
	return listings
}

// Run starts the named example.
func (r *Registry) Run(ctx context.Context, name string, env *Env) (*bootstrap.LoopHandle, error) {
	ex, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownExample, name)
	}
	env.Log.Info("Running example", zap.String("name", ex.Name), zap.String("group", ex.Group.Key))
	return ex.Run(ctx, env)
}

// Default returns a registry with every built-in demo.
func Default() *Registry {
	r := NewRegistry()
	r.MustRegister(Example{Name: "minimalSetup", DisplayName: "Minimal Setup", Group: GroupBasicAnimations, Run: MinimalSetup})
	r.MustRegister(Example{Name: "cubeGroupScene", DisplayName: "Cube Group Scene", Group: GroupBasicAnimations, Run: CubeGroupScene})
	r.MustRegister(Example{Name: "animateCubeWithTime", DisplayName: "Animate Cube With Time", Group: GroupBasicAnimations, Run: AnimateCubeWithTime})
	r.MustRegister(Example{Name: "animateCubeWithClock", DisplayName: "Animate Cube With Clock", Group: GroupBasicAnimations, Run: AnimateCubeWithClock})
	r.MustRegister(Example{Name: "perspectiveCamera", DisplayName: "Perspective Camera", Group: GroupCameras, Run: PerspectiveCamera})
	r.MustRegister(Example{Name: "orthographicCamera", DisplayName: "Orthographic Camera", Group: GroupCameras, Run: OrthographicCamera})
	r.MustRegister(Example{Name: "movePerspectiveCameraWithMouse", DisplayName: "Move Perspective Camera With Mouse", Group: GroupCameras, Run: MovePerspectiveCameraWithMouse})
	r.MustRegister(Example{Name: "orbitControls", DisplayName: "Orbit Controls", Group: GroupCameras, Run: OrbitControls})
	r.MustRegister(Example{Name: "triangle", DisplayName: "Triangle", Group: GroupGeometries, Run: Triangle})
	r.MustRegister(Example{Name: "messyObject", DisplayName: "Messy Object", Group: GroupGeometries, Run: MessyObject})
	r.MustRegister(Example{Name: "debugPanel", DisplayName: "Debug Panel Tweaks", Group: GroupDebug, Run: DebugPanel})
	r.MustRegister(Example{Name: "textureLoader", DisplayName: "Texture Loader", Group: GroupTextures, Run: TextureLoader})
	r.MustRegister(Example{Name: "importModel", DisplayName: "Import OBJ Model", Group: GroupModels, Run: ImportModel})
	r.MustRegister(Example{Name: "noiseTerrain", DisplayName: "Perlin Noise Terrain", Group: GroupTerrain, Run: NoiseTerrain})
	r.MustRegister(Example{Name: "oceanWaves", DisplayName: "Gerstner Ocean Waves", Group: GroupTerrain, Run: OceanWaves})
	r.MustRegister(Example{Name: "raycasterLine", DisplayName: "Raycaster Line", Group: GroupRaycaster, Run: RaycasterLine})
	r.MustRegister(Example{Name: "raycasterHover", DisplayName: "Raycaster Mouse Hover", Group: GroupRaycaster, Run: RaycasterHover})
	r.MustRegister(Example{Name: "bouncingBall", DisplayName: "Bouncing Ball", Group: GroupPhysics, Run: BouncingBall})
	return r
}
