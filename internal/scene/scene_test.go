package scene

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddReparentsChild(t *testing.T) {
	a := NewGroup("a")
	b := NewGroup("b")
	m := NewMesh("m", Box(1, 1, 1), nil)

	a.Add(m)
	require.Same(t, &a.Object, m.Parent())

	b.Add(m)
	assert.Same(t, &b.Object, m.Parent())
	assert.False(t, a.Contains(m))
	assert.True(t, b.Contains(m))
	assert.Len(t, a.Children(), 0)
}

func TestRemoveUnknownChild(t *testing.T) {
	g := NewGroup("g")
	m := NewMesh("m", Box(1, 1, 1), nil)
	assert.False(t, g.Remove(m))
	g.Add(m)
	assert.True(t, g.Remove(m))
	assert.Nil(t, m.Parent())
}

func TestWorldPositionComposesParents(t *testing.T) {
	sc := NewScene()
	g := NewGroup("g")
	g.SetPosition(1, 2, 3)
	m := NewMesh("m", Box(1, 1, 1), nil)
	m.SetPosition(0, 1, 0)
	g.Add(m)
	sc.Add(g)

	assert.Equal(t, mgl32.Vec3{1, 3, 3}, m.WorldPosition())

	g.SetScale(2, 2, 2)
	assert.Equal(t, mgl32.Vec3{1, 4, 3}, m.WorldPosition())
}

func TestSetRotationY(t *testing.T) {
	o := NewObject("o")
	o.SetRotation(0, math.Pi/2, 0)
	p := mgl32.TransformCoordinate(mgl32.Vec3{1, 0, 0}, o.LocalMatrix())
	assert.InDelta(t, 0, p.X(), 1e-5)
	assert.InDelta(t, -1, p.Z(), 1e-5)
}

func TestZeroRotationTreatedAsIdentity(t *testing.T) {
	o := Object{Scale: mgl32.Vec3{1, 1, 1}}
	assert.Equal(t, mgl32.Ident4(), o.LocalMatrix())
	o.Rotate(0, math.Pi/2, 0)
	assert.InDelta(t, 1, o.Rotation.Len(), 1e-5)
}

func TestRotateMatchesSetRotation(t *testing.T) {
	a := NewObject("a")
	a.Rotate(0, math.Pi/2, 0)
	b := NewObject("b")
	b.SetRotation(0, math.Pi/2, 0)
	pa := mgl32.TransformCoordinate(mgl32.Vec3{1, 0, 0}, a.LocalMatrix())
	pb := mgl32.TransformCoordinate(mgl32.Vec3{1, 0, 0}, b.LocalMatrix())
	assert.InDelta(t, pb.X(), pa.X(), 1e-5)
	assert.InDelta(t, pb.Z(), pa.Z(), 1e-5)
}

func TestWalkVisitsParentsFirst(t *testing.T) {
	sc := NewScene()
	g := NewGroup("g")
	m1 := NewMesh("m1", Box(1, 1, 1), nil)
	m2 := NewMesh("m2", Box(1, 1, 1), nil)
	g.Add(m1)
	sc.Add(g, m2)

	var order []string
	Walk(sc, Funcs{
		Scene: func(s *Scene) { order = append(order, s.Name) },
		Group: func(g *Group) { order = append(order, g.Name) },
		Mesh:  func(m *Mesh) { order = append(order, m.Name) },
	})
	assert.Equal(t, []string{"scene", "g", "m1", "m2"}, order)
	assert.Equal(t, []*Mesh{m1, m2}, Meshes(sc))
}

func TestVisibleMeshesSkipsHiddenBranches(t *testing.T) {
	sc := NewScene()
	g := NewGroup("g")
	hidden := NewMesh("hidden", Box(1, 1, 1), nil)
	shown := NewMesh("shown", Box(1, 1, 1), nil)
	g.Add(hidden)
	sc.Add(g, shown)
	g.Visible = false

	assert.Equal(t, []*Mesh{shown}, VisibleMeshes(sc))
	assert.False(t, hidden.VisibleInWorld())
}

func TestDisposeRunsHooksOnce(t *testing.T) {
	geo := Box(1, 1, 1)
	mat := NewBasicMaterial(mgl32.Vec3{1, 0, 0})
	mat.Map = NewTexture("t.png", nil)
	sc := NewScene()
	sc.Add(NewMesh("a", geo, mat), NewMesh("b", geo, mat))

	var geoCalls, matCalls, texCalls int
	geo.OnDispose(func() { geoCalls++ })
	mat.OnDispose(func() { matCalls++ })
	mat.Map.OnDispose(func() { texCalls++ })

	Dispose(sc)
	Dispose(sc)

	assert.Equal(t, 1, geoCalls)
	assert.Equal(t, 1, matCalls)
	assert.Equal(t, 1, texCalls)
	assert.True(t, geo.Disposed())

	late := 0
	geo.OnDispose(func() { late++ })
	assert.Equal(t, 1, late)
}

func TestGeneratorCounts(t *testing.T) {
	tests := []struct {
		name      string
		geo       *Geometry
		vertices  int
		triangles int
	}{
		{"box", Box(1, 1, 1), 24, 12},
		{"sphere", Sphere(1, 32, 32), 33 * 33, 32 * 62},
		{"torus", Torus(1, 0.5, 16, 100), 17 * 101, 16 * 100 * 2},
		{"torusKnot", TorusKnot(1, 0.4, 100, 16, 2, 3), 101 * 17, 100 * 16 * 2},
		{"plane", Plane(2, 2, 4, 4), 25, 32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.vertices, tt.geo.VertexCount())
			assert.Equal(t, tt.triangles, tt.geo.TriangleCount())
			assert.NoError(t, tt.geo.Validate())
			assert.Len(t, tt.geo.Interleaved(), tt.vertices*FloatsPerVertex)
		})
	}
}

func TestBoxBoundingSphere(t *testing.T) {
	g := Box(1, 1, 1)
	assert.InDelta(t, 0, g.BoundingCenter.Len(), 1e-6)
	assert.InDelta(t, math.Sqrt(3)/2, g.BoundingRadius, 1e-5)
}

func TestBoxFaceWinding(t *testing.T) {
	g := Box(2, 2, 2)
	for i := 0; i < g.TriangleCount(); i++ {
		a, b, c := g.Triangle(i)
		face := b.Sub(a).Cross(c.Sub(a)).Normalize()
		center := a.Add(b).Add(c).Mul(1.0 / 3)
		assert.Greater(t, face.Dot(center), float32(0), "triangle %d faces inward", i)
	}
}

func TestMarkDirtyBumpsVersion(t *testing.T) {
	g := Plane(2, 2, 1, 1)
	before := g.BoundingRadius
	g.SetPosition(0, mgl32.Vec3{-1, 1, 4})
	g.MarkDirty()
	assert.Equal(t, uint64(1), g.Version)
	assert.Greater(t, g.BoundingRadius, before)
}

func TestComputeVertexNormalsOnPlane(t *testing.T) {
	g := Plane(1, 1, 2, 2)
	g.Normals = nil
	g.ComputeVertexNormals()
	for i := 0; i < g.VertexCount(); i++ {
		assert.InDelta(t, 1, g.Normals[i*3+2], 1e-5)
	}
}

func TestValidateRejectsBadIndex(t *testing.T) {
	g := &Geometry{Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, Indices: []uint32{0, 1, 3}}
	assert.Error(t, g.Validate())
}

func TestIntersectMeshesNearestFirst(t *testing.T) {
	near := NewMesh("near", Box(1, 1, 1), nil)
	far := NewMesh("far", Box(1, 1, 1), nil)
	far.SetPosition(0, 0, -3)
	hidden := NewMesh("hidden", Box(1, 1, 1), nil)
	hidden.SetPosition(0, 0, 2)
	hidden.Visible = false

	ray := Ray{Origin: mgl32.Vec3{0.1, 0.2, 5}, Direction: mgl32.Vec3{0, 0, -1}}
	hits := IntersectMeshes(ray, []*Mesh{far, hidden, near})

	require.Len(t, hits, 2)
	assert.Same(t, near, hits[0].Mesh)
	assert.InDelta(t, 4.5, hits[0].Distance, 1e-4)
	assert.InDelta(t, 0.5, hits[0].Point.Z(), 1e-4)
	assert.Same(t, far, hits[1].Mesh)
	assert.InDelta(t, 7.5, hits[1].Distance, 1e-4)
}

func TestIntersectMeshUsesWorldTransform(t *testing.T) {
	m := NewMesh("m", Box(1, 1, 1), nil)
	m.SetScale(2, 2, 2)
	ray := Ray{Origin: mgl32.Vec3{0.1, 0.2, 5}, Direction: mgl32.Vec3{0, 0, -1}}
	hit, ok := IntersectMesh(ray, m)
	require.True(t, ok)
	assert.InDelta(t, 4, hit.Distance, 1e-4)

	miss := Ray{Origin: mgl32.Vec3{3, 0, 5}, Direction: mgl32.Vec3{0, 0, -1}}
	_, ok = IntersectMesh(miss, m)
	assert.False(t, ok)
}

func TestIntersectSphereFromInside(t *testing.T) {
	d, ok := IntersectSphere(Ray{Direction: mgl32.Vec3{1, 0, 0}}, mgl32.Vec3{}, 2)
	require.True(t, ok)
	assert.InDelta(t, 2, d, 1e-5)
}
