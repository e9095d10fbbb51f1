package examples

import (
	"context"

	"GopherStage/internal/bootstrap"
	"GopherStage/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

const messyTriangles = 100

// customMesh builds an unindexed triangle soup as a red wireframe.
func customMesh(name string, positions []float32) *scene.Mesh {
	geo := &scene.Geometry{Name: name, Positions: positions}
	geo.Indices = make([]uint32, geo.VertexCount())
	for i := range geo.Indices {
		geo.Indices[i] = uint32(i)
	}
	geo.ComputeVertexNormals()
	geo.MarkDirty()

	mat := scene.NewBasicMaterial(mgl32.Vec3{1, 0, 0})
	mat.Wireframe = true
	return scene.NewMesh(name, geo, mat)
}

// customScene frames mesh with orbit controls. A depth of 0 keeps the
// default camera distance.
func customScene(ctx context.Context, env *Env, mesh *scene.Mesh, depth float32) (*bootstrap.LoopHandle, error) {
	setup, err := env.surface()
	if err != nil {
		return nil, err
	}
	setup.Mesh = mesh
	setup.Material = mesh.Material
	opts := []bootstrap.CameraOption{bootstrap.WithFocalObject(mesh)}
	if depth > 0 {
		opts = append(opts, bootstrap.WithDepthOffset(depth))
	}
	setup.Camera = env.Stage.AttachDefaultCamera(setup.Scene, setup.Renderer, opts...)
	return env.orbit(ctx, setup, nil), nil
}

// Triangle draws one hand-built triangle.
func Triangle(ctx context.Context, env *Env) (*bootstrap.LoopHandle, error) {
	mesh := customMesh("triangle", []float32{0, 0, 0, 0, 1, 0, 1, 0, 0})
	return customScene(ctx, env, mesh, 0)
}

// MessyObject scatters random triangles through a cube of side 100.
func MessyObject(ctx context.Context, env *Env) (*bootstrap.LoopHandle, error) {
	positions := make([]float32, messyTriangles*3*3)
	for i := range positions {
		positions[i] = (env.Rand.Float32() - 0.5) * messyTriangles
	}
	return customScene(ctx, env, customMesh("messy", positions), 140)
}
