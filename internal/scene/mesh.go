package scene

import (
	"image"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Mesh draws a Geometry with a Material.
type Mesh struct {
	Object
	Geometry *Geometry
	Material *Material
}

func NewMesh(name string, geometry *Geometry, material *Material) *Mesh {
	if material == nil {
		material = NewBasicMaterial(mgl32.Vec3{1, 1, 1})
	}
	return &Mesh{Object: NewObject(name), Geometry: geometry, Material: material}
}

func (m *Mesh) Accept(v Visitor) bool { return v.VisitMesh(m) }

// WorldBoundingSphere returns the geometry's bounding sphere in world space.
// The radius is scaled by the largest world scale axis.
func (m *Mesh) WorldBoundingSphere() (mgl32.Vec3, float32) {
	if m.Geometry == nil {
		return m.WorldPosition(), 0
	}
	world := m.WorldMatrix()
	center := mgl32.TransformCoordinate(m.Geometry.BoundingCenter, world)
	sx := world.Col(0).Vec3().Len()
	sy := world.Col(1).Vec3().Len()
	sz := world.Col(2).Vec3().Len()
	return center, m.Geometry.BoundingRadius * max(sx, sy, sz)
}

// disposer runs release hooks once. Renderers register hooks to free GPU
// objects tied to a resource.
type disposer struct {
	mu       sync.Mutex
	hooks    []func()
	disposed bool
}

// OnDispose registers fn to run when the resource is disposed. If the
// resource is already disposed fn runs immediately.
func (d *disposer) OnDispose(fn func()) {
	d.mu.Lock()
	if d.disposed {
		d.mu.Unlock()
		fn()
		return
	}
	d.hooks = append(d.hooks, fn)
	d.mu.Unlock()
}

// Dispose runs every registered hook. Later calls do nothing.
func (d *disposer) Dispose() {
	d.mu.Lock()
	if d.disposed {
		d.mu.Unlock()
		return
	}
	d.disposed = true
	hooks := d.hooks
	d.hooks = nil
	d.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}

func (d *disposer) Disposed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.disposed
}

// Material is an unlit surface description: a base color optionally
// multiplied by a texture.
type Material struct {
	Name        string
	Color       mgl32.Vec3
	Opacity     float32
	Transparent bool
	Wireframe   bool
	Map         *Texture

	disposer
}

func NewBasicMaterial(color mgl32.Vec3) *Material {
	return &Material{Name: "basic", Color: color, Opacity: 1}
}

// Dispose releases the material and its texture.
func (m *Material) Dispose() {
	m.disposer.Dispose()
	if m.Map != nil {
		m.Map.Dispose()
	}
}

// Texture is image data a material samples. Source is the path or key it
// was loaded from and is used for cache lookups.
type Texture struct {
	Source string
	Image  image.Image
	Repeat mgl32.Vec2

	disposer
}

func NewTexture(source string, img image.Image) *Texture {
	return &Texture{Source: source, Image: img, Repeat: mgl32.Vec2{1, 1}}
}
