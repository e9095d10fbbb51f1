package examples

import (
	"context"
	"math"

	"GopherStage/internal/behaviour"
	"GopherStage/internal/bootstrap"
	"GopherStage/internal/clock"
	"GopherStage/internal/host"
	"GopherStage/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
)

// OrbitControls lets the pointer orbit, pan and zoom around the cube.
func OrbitControls(ctx context.Context, env *Env) (*bootstrap.LoopHandle, error) {
	setup, err := env.cube()
	if err != nil {
		return nil, err
	}
	return env.orbit(ctx, setup, nil), nil
}

func aspectOf(rend renderer.Render) float32 {
	w, h := rend.Size()
	if w <= 0 || h <= 0 {
		return 1
	}
	return float32(w) / float32(h)
}

// PerspectiveCamera renders the cube through its own camera. Anything past
// the far plane at 100 is clipped.
func PerspectiveCamera(ctx context.Context, env *Env) (*bootstrap.LoopHandle, error) {
	setup, err := env.cube()
	if err != nil {
		return nil, err
	}
	cam := renderer.NewPerspectiveCamera(75, aspectOf(setup.Renderer), 0.1, 100)
	cam.Position[2] = 3
	env.OnClose(env.Stage.TrackResize(cam, setup.Renderer))
	return env.loop(ctx, setup.Renderer, setup.Scene, cam, nil), nil
}

// OrthographicCamera shows the spinning cube without perspective, so near
// and far faces keep the same size.
func OrthographicCamera(ctx context.Context, env *Env) (*bootstrap.LoopHandle, error) {
	setup, err := env.cube()
	if err != nil {
		return nil, err
	}
	cam := renderer.NewOrthographicCamera(1, aspectOf(setup.Renderer), 0.1, 100)
	cam.SetPosition(2, 2, 3)
	cam.LookAt(setup.Mesh.WorldPosition())
	env.OnClose(env.Stage.TrackResize(cam, setup.Renderer))

	behaviours := behaviour.NewManager(behaviour.WithLogger(env.Log))
	behaviours.Add(behaviour.NewRotator(setup.Mesh, mgl32.Vec3{0, 1, 0}))
	env.OnClose(behaviours.Clear)
	return env.loop(ctx, setup.Renderer, setup.Scene, cam, behaviours.Update), nil
}

// CursorOrbit places a camera on a circle of radius 3 around the origin.
// cursor is the pointer offset from the surface center in [-0.5, 0.5]; X
// turns the camera once around per surface width and Y lifts it.
func CursorOrbit(cursor mgl32.Vec2) mgl32.Vec3 {
	angle := float64(cursor.X()) * 2 * math.Pi
	return mgl32.Vec3{
		float32(math.Sin(angle)) * 3,
		cursor.Y() * 5,
		float32(math.Cos(angle)) * 3,
	}
}

// MovePerspectiveCameraWithMouse circles the camera around the cube as the
// pointer moves, keeping the cube in view.
func MovePerspectiveCameraWithMouse(ctx context.Context, env *Env) (*bootstrap.LoopHandle, error) {
	setup, err := env.cube()
	if err != nil {
		return nil, err
	}

	var cursor mgl32.Vec2
	cancel := setup.Surface.OnPointer(func(ev host.PointerEvent) {
		if ev.Kind != host.PointerMove {
			return
		}
		w, h := setup.Surface.Size()
		if w <= 0 || h <= 0 {
			return
		}
		cursor = mgl32.Vec2{
			-(float32(ev.X/float64(w)) - 0.5),
			float32(ev.Y/float64(h)) - 0.5,
		}
	})
	env.OnClose(cancel)

	cam, mesh := setup.Camera, setup.Mesh
	return env.loop(ctx, setup.Renderer, setup.Scene, cam, func(clock.Frame) {
		cam.Position = CursorOrbit(cursor)
		cam.LookAt(mesh.WorldPosition())
	}), nil
}
