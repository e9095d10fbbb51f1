package examples

import (
	"context"
	"fmt"

	"GopherStage/internal/behaviour"
	"GopherStage/internal/bootstrap"
	"GopherStage/internal/clock"
	"GopherStage/internal/host"
	"GopherStage/internal/renderer"
	"GopherStage/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

var (
	colorIdle  = mgl32.Vec3{1, 0, 0}
	colorHit   = mgl32.Vec3{0, 0, 1}
	colorClick = mgl32.Vec3{0, 1, 0}
)

// raycastTargets adds three bobbing spheres to setup and returns them with
// the behaviours that move them.
func raycastTargets(env *Env, setup *bootstrap.Setup) ([]*scene.Mesh, *behaviour.Manager) {
	behaviours := behaviour.NewManager(behaviour.WithLogger(env.Log))
	targets := make([]*scene.Mesh, 0, 3)
	for i := 0; i < 3; i++ {
		sphere := scene.NewMesh(fmt.Sprintf("sphere-%d", i), scene.Sphere(0.5, 16, 16), scene.NewBasicMaterial(colorIdle))
		sphere.SetPosition(float32(i-1)*2, 0, 0)
		setup.Scene.Add(sphere)
		targets = append(targets, sphere)
		behaviours.Add(behaviour.NewOscillator(sphere, 1, 1.5, env.Rand.Float32()+0.3))
	}
	env.OnClose(behaviours.Clear)
	return targets, behaviours
}

func raycastSetup(env *Env) (*bootstrap.Setup, error) {
	setup, err := env.surface()
	if err != nil {
		return nil, err
	}
	setup.Camera = env.Stage.AttachDefaultCamera(setup.Scene, setup.Renderer)
	setup.Camera.LookAt(mgl32.Vec3{})
	return setup, nil
}

// RaycasterLine casts a fixed ray along +X and colors the spheres it hits.
func RaycasterLine(ctx context.Context, env *Env) (*bootstrap.LoopHandle, error) {
	setup, err := raycastSetup(env)
	if err != nil {
		return nil, err
	}
	targets, behaviours := raycastTargets(env, setup)
	ray := scene.Ray{Origin: mgl32.Vec3{-3, 0, 0}, Direction: mgl32.Vec3{1, 0, 0}}

	return env.orbit(ctx, setup, func(frame clock.Frame) {
		behaviours.Update(frame)
		for _, t := range targets {
			t.Material.Color = colorIdle
		}
		for _, hit := range scene.IntersectMeshes(ray, targets) {
			hit.Mesh.Material.Color = colorHit
		}
	}), nil
}

// Hover tracks the mesh under the pointer across frames. Nothing is
// hovered until the first Move.
type Hover struct {
	// X and Y are the pointer position in pixels within a Width x Height
	// surface, origin top-left.
	X, Y          float32
	Width, Height int
	Active        bool
	Current       *scene.Mesh
}

// Move records a pointer position and activates the hover.
func (h *Hover) Move(x, y float32, width, height int) {
	h.X, h.Y = x, y
	h.Width, h.Height = width, height
	h.Active = true
}

// Update picks the nearest hit under the pointer and recolors on enter and
// leave. It returns the meshes entered and left this frame, if any.
func (h *Hover) Update(cam *renderer.Camera, targets []*scene.Mesh) (entered, left *scene.Mesh) {
	if !h.Active || h.Width <= 0 || h.Height <= 0 {
		return nil, nil
	}
	hits := scene.IntersectMeshes(cam.ScreenToRay(h.X, h.Y, h.Width, h.Height), targets)
	if len(hits) == 0 {
		if h.Current != nil {
			left = h.Current
			left.Material.Color = colorIdle
			h.Current = nil
		}
		return nil, left
	}

	nearest := hits[0].Mesh
	if nearest == h.Current {
		return nil, nil
	}
	if h.Current != nil {
		left = h.Current
		left.Material.Color = colorIdle
	}
	h.Current = nearest
	nearest.Material.Color = colorHit
	return nearest, left
}

// Click marks the hovered mesh.
func (h *Hover) Click() {
	if h.Current != nil {
		h.Current.Material.Color = colorClick
	}
}

// RaycasterHover highlights the sphere under the pointer and marks it green
// on click.
func RaycasterHover(ctx context.Context, env *Env) (*bootstrap.LoopHandle, error) {
	setup, err := raycastSetup(env)
	if err != nil {
		return nil, err
	}
	targets, behaviours := raycastTargets(env, setup)

	hover := &Hover{}
	cancel := setup.Surface.OnPointer(func(ev host.PointerEvent) {
		switch ev.Kind {
		case host.PointerMove:
			w, h := setup.Surface.Size()
			hover.Move(float32(ev.X), float32(ev.Y), w, h)
		case host.PointerDown:
			if ev.Button == host.ButtonPrimary {
				hover.Click()
			}
		}
	})
	env.OnClose(cancel)

	cam := setup.Camera
	return env.orbit(ctx, setup, func(frame clock.Frame) {
		behaviours.Update(frame)
		entered, left := hover.Update(cam, targets)
		if left != nil {
			env.Log.Debug("Pointer left mesh", zap.String("mesh", left.Name))
		}
		if entered != nil {
			env.Log.Debug("Pointer entered mesh", zap.String("mesh", entered.Name))
		}
	}), nil
}
