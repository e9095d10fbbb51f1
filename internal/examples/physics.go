package examples

import (
	"context"
	"math"
	"time"

	"GopherStage/internal/behaviour"
	"GopherStage/internal/bootstrap"
	"GopherStage/internal/clock"
	"GopherStage/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	ballRadius = 0.5
	dropHeight = 3
)

// BouncingBall drops a sphere onto a floor with fixed-step physics and
// drops it again once it comes to rest.
func BouncingBall(ctx context.Context, env *Env) (*bootstrap.LoopHandle, error) {
	setup, err := env.surface()
	if err != nil {
		return nil, err
	}

	floor := scene.NewMesh("floor", scene.Plane(10, 10, 1, 1), scene.NewBasicMaterial(mgl32.Vec3{0.27, 0.27, 0.27}))
	floor.SetRotation(-math.Pi/2, 0, 0)
	setup.Scene.Add(floor)

	ball := scene.NewMesh("ball", scene.Sphere(ballRadius, 16, 16), scene.NewBasicMaterial(mgl32.Vec3{1, 0, 0}))
	ball.SetPosition(0, dropHeight, 0)
	setup.Mesh = ball
	setup.Material = ball.Material

	setup.Camera = env.Stage.AttachDefaultCamera(setup.Scene, setup.Renderer,
		bootstrap.WithFocalObject(ball), bootstrap.WithDepthOffset(8))
	setup.Camera.Position[1] = 2
	setup.Camera.LookAt(mgl32.Vec3{0, 1, 0})

	step := env.Config.Loop.FixedStep()
	if step <= 0 {
		step = time.Second / 50
	}
	bouncer := behaviour.NewBouncer(ball, ballRadius, 0.6)

	folder := env.Panel.Folder("physics")
	folder.AddFloat("gravity", &bouncer.Gravity).Range(1, 30).Step(0.1)
	folder.AddFloat("restitution", &bouncer.Restitution).Range(0, 0.95).Step(0.01)

	behaviours := behaviour.NewManager(behaviour.WithLogger(env.Log), behaviour.WithFixedStep(step))
	behaviours.Add(bouncer)
	behaviours.Add(behaviour.Func(func(clock.Frame) {
		if bouncer.Resting() {
			ball.Position[1] = dropHeight
		}
	}))
	env.OnClose(behaviours.Clear)

	return env.orbit(ctx, setup, behaviours.Update), nil
}
