package bootstrap

import (
	"GopherStage/internal/host"
	"GopherStage/internal/renderer"
	"GopherStage/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

// Setup is everything a single-object demo starts from.
type Setup struct {
	Renderer renderer.Render
	Scene    *scene.Scene
	Surface  host.Surface
	Mesh     *scene.Mesh
	Material *scene.Material
	Camera   *renderer.Camera
}

type cubeOptions struct {
	viewport       ViewportConfig
	resizeTracking bool
	texture        *scene.Texture
	surfaceOpts    []SurfaceOption
}

type CubeOption func(*cubeOptions)

func WithViewport(vp ViewportConfig) CubeOption {
	return func(o *cubeOptions) { o.viewport = vp }
}

// WithTexture maps tex onto the cube instead of the solid red color.
func WithTexture(tex *scene.Texture) CubeOption {
	return func(o *cubeOptions) { o.texture = tex }
}

func WithCubeResizeTracking(enabled bool) CubeOption {
	return func(o *cubeOptions) { o.resizeTracking = enabled }
}

func WithSurfaceOptions(opts ...SurfaceOption) CubeOption {
	return func(o *cubeOptions) { o.surfaceOpts = append(o.surfaceOpts, opts...) }
}

// CubeSetup creates a surface with a unit cube at the origin and a default
// camera looking at it.
func (s *Stage) CubeSetup(canvasID string, opts ...CubeOption) (*Setup, error) {
	o := cubeOptions{resizeTracking: true}
	for _, opt := range opts {
		opt(&o)
	}

	rend, sc, surface, err := s.CreateRenderSurface(canvasID, o.viewport, o.surfaceOpts...)
	if err != nil {
		return nil, err
	}

	material := scene.NewBasicMaterial(mgl32.Vec3{1, 0, 0})
	if o.texture != nil {
		material.Color = mgl32.Vec3{1, 1, 1}
		material.Map = o.texture
	}
	mesh := scene.NewMesh("cube", scene.Box(1, 1, 1), material)
	cam := s.AttachDefaultCamera(sc, rend, WithFocalObject(mesh), WithResizeTracking(o.resizeTracking))

	return &Setup{
		Renderer: rend,
		Scene:    sc,
		Surface:  surface,
		Mesh:     mesh,
		Material: material,
		Camera:   cam,
	}, nil
}
