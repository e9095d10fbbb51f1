package examples

import (
	"context"
	"fmt"
	"math"

	"GopherStage/internal/behaviour"
	"GopherStage/internal/bootstrap"
	"GopherStage/internal/clock"
	"GopherStage/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

// MinimalSetup renders the red cube.
func MinimalSetup(ctx context.Context, env *Env) (*bootstrap.LoopHandle, error) {
	setup, err := env.cube()
	if err != nil {
		return nil, err
	}
	return env.loop(ctx, setup.Renderer, setup.Scene, setup.Camera, nil), nil
}

// CubeGroupScene shows three colored cubes in one group.
func CubeGroupScene(ctx context.Context, env *Env) (*bootstrap.LoopHandle, error) {
	setup, err := env.surface()
	if err != nil {
		return nil, err
	}

	group := scene.NewGroup("cubes")
	for i, color := range []mgl32.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}} {
		cube := scene.NewMesh(fmt.Sprintf("cube-%d", i), scene.Box(1, 1, 1), scene.NewBasicMaterial(color))
		cube.SetPosition(float32(i-1)*1.5, 0, 0)
		group.Add(cube)
	}
	cam := env.Stage.AttachDefaultCamera(setup.Scene, setup.Renderer, bootstrap.WithFocalObject(group))
	return env.loop(ctx, setup.Renderer, setup.Scene, cam, nil), nil
}

// AnimateCubeWithTime spins the cube by frame delta, so the speed is the
// same at any refresh rate.
func AnimateCubeWithTime(ctx context.Context, env *Env) (*bootstrap.LoopHandle, error) {
	setup, err := env.cube()
	if err != nil {
		return nil, err
	}
	mesh := setup.Mesh
	return env.loop(ctx, setup.Renderer, setup.Scene, setup.Camera, func(frame clock.Frame) {
		ms := float32(frame.Delta.Seconds() * 1000)
		mesh.Rotate(0, 0.001*ms, 0)
	}), nil
}

// AnimateCubeWithClock sets the cube's rotation from the elapsed time and
// circles the camera around it.
func AnimateCubeWithClock(ctx context.Context, env *Env) (*bootstrap.LoopHandle, error) {
	setup, err := env.cube()
	if err != nil {
		return nil, err
	}

	behaviours := behaviour.NewManager(behaviour.WithLogger(env.Log))
	behaviours.Add(behaviour.NewRotator(setup.Mesh, mgl32.Vec3{0, math.Pi, 0}))
	cam, mesh := setup.Camera, setup.Mesh
	behaviours.Add(behaviour.Func(func(frame clock.Frame) {
		t := float64(frame.ElapsedSeconds())
		cam.Position[0] = float32(math.Cos(t))
		cam.Position[1] = float32(math.Sin(t))
		cam.LookAt(mesh.WorldPosition())
	}))
	env.OnClose(behaviours.Clear)

	return env.loop(ctx, setup.Renderer, setup.Scene, setup.Camera, behaviours.Update), nil
}
