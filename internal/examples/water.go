package examples

import (
	"context"

	"GopherStage/internal/behaviour"
	"GopherStage/internal/bootstrap"
	"GopherStage/internal/water"
)

// OceanWaves animates a Gerstner wave surface tuned from the debug panel.
// It starts from the [water] config section and writes the tuned values
// back to env.Config when closed.
func OceanWaves(ctx context.Context, env *Env) (*bootstrap.LoopHandle, error) {
	setup, err := env.surface()
	if err != nil {
		return nil, err
	}

	ocean := water.NewSimulation(env.Config.Water.Size, env.Config.Water.BaseAmplitude, water.DefaultResolution)
	ocean.ApplyConfig(env.Config.Water)
	env.OnClose(func() { env.Config.Water = ocean.GetConfig() })
	setup.Mesh = ocean.Mesh
	setup.Material = ocean.Mesh.Material

	cam := env.Stage.AttachDefaultCamera(setup.Scene, setup.Renderer,
		bootstrap.WithFocalObject(ocean.Mesh), bootstrap.WithDepthOffset(8))
	cam.Position[1] = 4
	cam.LookAt(ocean.Mesh.WorldPosition())
	setup.Camera = cam

	folder := env.Panel.Folder("water")
	folder.AddFloat("height", &ocean.Height).Range(0, 4).Step(0.05)
	folder.AddFloat("speed", &ocean.SpeedMultiplier).Range(0, 5).Step(0.1)
	folder.AddColor("color", &setup.Material.Color)
	folder.AddBool("wireframe", &setup.Material.Wireframe)

	behaviours := behaviour.NewManager(behaviour.WithLogger(env.Log))
	behaviours.Add(ocean)
	env.OnClose(behaviours.Clear)

	return env.orbit(ctx, setup, behaviours.Update), nil
}
