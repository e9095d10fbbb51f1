package scene

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// Ray represents a ray in 3D space. Direction is expected to be normalized.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Intersection is a ray hit on a mesh.
type Intersection struct {
	Mesh     *Mesh
	Distance float32
	Point    mgl32.Vec3
	Triangle int
}

// IntersectSphere returns the distance to the nearest hit in front of the
// ray origin.
func IntersectSphere(ray Ray, center mgl32.Vec3, radius float32) (float32, bool) {
	oc := ray.Origin.Sub(center)
	a := ray.Direction.Dot(ray.Direction)
	b := 2.0 * oc.Dot(ray.Direction)
	c := oc.Dot(oc) - radius*radius
	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return 0, false
	}
	sqrtDisc := float32(math.Sqrt(float64(discriminant)))
	t1 := (-b - sqrtDisc) / (2 * a)
	t2 := (-b + sqrtDisc) / (2 * a)
	switch {
	case t1 > 0:
		return t1, true
	case t2 > 0:
		// origin inside the sphere
		return t2, true
	}
	return 0, false
}

// IntersectTriangle uses Möller-Trumbore and hits both faces.
func IntersectTriangle(ray Ray, v0, v1, v2 mgl32.Vec3) (float32, bool) {
	const epsilon = 0.0000001

	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)
	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)
	if a > -epsilon && a < epsilon {
		return 0, false
	}
	f := 1.0 / a
	s := ray.Origin.Sub(v0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return 0, false
	}
	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return 0, false
	}
	t := f * edge2.Dot(q)
	if t > epsilon {
		return t, true
	}
	return 0, false
}

// IntersectMesh tests the world bounding sphere first, then every triangle
// in world space, and returns the nearest hit.
func IntersectMesh(ray Ray, m *Mesh) (Intersection, bool) {
	if m.Geometry == nil || m.Geometry.TriangleCount() == 0 {
		return Intersection{}, false
	}
	center, radius := m.WorldBoundingSphere()
	if ray.Origin.Sub(center).Len() > radius {
		if _, ok := IntersectSphere(ray, center, radius); !ok {
			return Intersection{}, false
		}
	}
	world := m.WorldMatrix()
	best := Intersection{Mesh: m, Distance: float32(math.Inf(1)), Triangle: -1}
	for i := 0; i < m.Geometry.TriangleCount(); i++ {
		a, b, c := m.Geometry.Triangle(i)
		a = mgl32.TransformCoordinate(a, world)
		b = mgl32.TransformCoordinate(b, world)
		c = mgl32.TransformCoordinate(c, world)
		if t, ok := IntersectTriangle(ray, a, b, c); ok && t < best.Distance {
			best.Distance = t
			best.Triangle = i
		}
	}
	if best.Triangle < 0 {
		return Intersection{}, false
	}
	best.Point = ray.At(best.Distance)
	return best, true
}

// IntersectMeshes returns every hit, nearest first. Hidden meshes are skipped.
func IntersectMeshes(ray Ray, meshes []*Mesh) []Intersection {
	var hits []Intersection
	for _, m := range meshes {
		if m == nil || !m.VisibleInWorld() {
			continue
		}
		if hit, ok := IntersectMesh(ray, m); ok {
			hits = append(hits, hit)
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits
}
