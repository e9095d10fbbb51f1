package examples

import (
	"context"
	"math"

	"GopherStage/internal/bootstrap"
	"GopherStage/internal/clock"
)

// DebugPanel exposes the cube's transform and material on the debug panel.
func DebugPanel(ctx context.Context, env *Env) (*bootstrap.LoopHandle, error) {
	setup, err := env.cube()
	if err != nil {
		return nil, err
	}
	mesh, mat, cam := setup.Mesh, setup.Material, setup.Camera

	cube := env.Panel.Folder("cube")
	for i, axis := range []string{"x", "y", "z"} {
		cube.AddFloat(axis, &mesh.Position[i]).Range(-3, 3).Step(0.01)
	}
	cube.AddBool("visible", &mesh.Visible)
	cube.AddBool("wireframe", &mat.Wireframe)
	cube.AddColor("color", &mat.Color)

	var spin float32
	cube.AddFloat("spin", &spin).Range(0, 10).Step(0.1).Name("Spin (turns/s)")

	camera := env.Panel.Folder("camera")
	fov := cam.Fov
	camera.AddFloat("fov", &fov).Range(10, 120).Step(1).OnChange(cam.SetFov)

	return env.orbit(ctx, setup, func(frame clock.Frame) {
		if spin > 0 {
			mesh.Rotate(0, 2*math.Pi*spin*frame.DeltaSeconds(), 0)
		}
	}), nil
}
