package examples

import (
	"context"
	"math"

	"GopherStage/internal/assets"
	"GopherStage/internal/bootstrap"
	"GopherStage/internal/clock"
	"GopherStage/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// ModelOBJ is loaded relative to the assets root.
const ModelOBJ = "models/pyramid.obj"

const modelSource = "model"

// ImportModel loads an OBJ model onto a floor and adds it to the scene once
// it arrives. A failed load leaves the floor alone.
func ImportModel(ctx context.Context, env *Env) (*bootstrap.LoopHandle, error) {
	if env.Loader == nil {
		return nil, errNoLoader
	}
	setup, err := env.surface()
	if err != nil {
		return nil, err
	}

	floor := scene.NewMesh("floor", scene.Plane(10, 10, 1, 1), scene.NewBasicMaterial(mgl32.Vec3{0.27, 0.27, 0.27}))
	floor.SetRotation(-math.Pi/2, 0, 0)
	setup.Scene.Add(floor)

	setup.Camera = env.Stage.AttachDefaultCamera(setup.Scene, setup.Renderer)
	setup.Camera.SetPosition(3, 3, 3)
	setup.Camera.LookAt(mgl32.Vec3{})

	loadCtx, cancel := context.WithCancel(ctx)
	env.OnClose(cancel)
	res := assets.NewResources(loadCtx, env.Loader, []assets.Source{
		{Name: modelSource, Kind: assets.KindGeometry, Path: ModelOBJ},
	})
	env.Log.Info("Loading model", zap.String("path", ModelOBJ))

	ready := res.Ready()
	pending := true
	return env.orbit(ctx, setup, func(clock.Frame) {
		if !pending {
			return
		}
		select {
		case <-ready.Done():
		default:
			return
		}
		pending = false
		geo, ok := res.Geometry(modelSource)
		if !ok {
			env.Log.Error("Could not load model", zap.String("path", ModelOBJ), zap.Error(res.Err(modelSource)))
			return
		}
		model := scene.NewMesh(modelSource, geo, scene.NewBasicMaterial(mgl32.Vec3{1, 0.8, 0}))
		setup.Scene.Add(model)
		env.Log.Info("Model added", zap.String("path", ModelOBJ), zap.Int("vertices", geo.VertexCount()))
	}), nil
}
