package examples

import (
	"context"

	"GopherStage/internal/bootstrap"
	"GopherStage/internal/clock"
	"GopherStage/internal/scene"

	"github.com/aquilax/go-perlin"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	terrainSize     = 10
	terrainSegments = 64
)

// Terrain displaces a plane with 2D Perlin noise. The noise field scrolls
// over time.
type Terrain struct {
	Mesh      *scene.Mesh
	Amplitude float32
	Scale     float32
	// Speed is how far the noise field scrolls per second, in noise units.
	Speed float32

	noise *perlin.Perlin
}

func NewTerrain(seed int64) *Terrain {
	geo := scene.Plane(terrainSize, terrainSize, terrainSegments, terrainSegments)
	mat := scene.NewBasicMaterial(mgl32.Vec3{0.3, 0.7, 0.2})
	mat.Wireframe = true
	mesh := scene.NewMesh("terrain", geo, mat)
	// lay the plane flat; local Z becomes height
	mesh.SetRotation(-mgl32.DegToRad(90), 0, 0)

	return &Terrain{
		Mesh:      mesh,
		Amplitude: 1.2,
		Scale:     0.25,
		Speed:     0.3,
		noise:     perlin.NewPerlin(2, 2, 3, seed),
	}
}

// Height samples the noise field at plane coordinates x, y.
func (t *Terrain) Height(x, y, offset float32) float32 {
	n := t.noise.Noise2D(float64((x+offset)*t.Scale), float64(y*t.Scale))
	return float32(n) * t.Amplitude
}

// Update rewrites every vertex height for the given scroll offset.
func (t *Terrain) Update(offset float32) {
	geo := t.Mesh.Geometry
	for i := 0; i < geo.VertexCount(); i++ {
		p := geo.Position(i)
		p[2] = t.Height(p[0], p[1], offset)
		geo.SetPosition(i, p)
	}
	geo.ComputeVertexNormals()
	geo.MarkDirty()
}

// NoiseTerrain renders a scrolling Perlin landscape with orbit controls.
func NoiseTerrain(ctx context.Context, env *Env) (*bootstrap.LoopHandle, error) {
	setup, err := env.surface()
	if err != nil {
		return nil, err
	}

	terrain := NewTerrain(env.Rand.Int63())
	terrain.Update(0)
	setup.Mesh = terrain.Mesh
	setup.Material = terrain.Mesh.Material

	cam := env.Stage.AttachDefaultCamera(setup.Scene, setup.Renderer,
		bootstrap.WithFocalObject(terrain.Mesh), bootstrap.WithDepthOffset(8))
	cam.Position[1] = 5
	cam.LookAt(terrain.Mesh.WorldPosition())
	setup.Camera = cam

	folder := env.Panel.Folder("terrain")
	folder.AddFloat("amplitude", &terrain.Amplitude).Range(0, 5).Step(0.1)
	folder.AddFloat("scale", &terrain.Scale).Range(0.05, 1).Step(0.01)
	folder.AddFloat("speed", &terrain.Speed).Range(0, 3).Step(0.1)
	folder.AddBool("wireframe", &setup.Material.Wireframe)

	return env.orbit(ctx, setup, func(frame clock.Frame) {
		terrain.Update(frame.ElapsedSeconds() * terrain.Speed)
	}), nil
}
