package scene

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// FloatsPerVertex is the interleaved layout: position(3), uv(2), normal(3).
const FloatsPerVertex = 8

// Geometry is indexed triangle data. Positions and Normals hold three floats
// per vertex, UVs two.
type Geometry struct {
	Name      string
	Positions []float32
	Normals   []float32
	UVs       []float32
	Indices   []uint32

	// Local-space bounding sphere, kept current by ComputeBoundingSphere.
	BoundingCenter mgl32.Vec3
	BoundingRadius float32

	// Version increases whenever vertex data changes so uploaders know to
	// refresh GPU buffers.
	Version uint64

	disposer
}

func (g *Geometry) VertexCount() int {
	return len(g.Positions) / 3
}

func (g *Geometry) TriangleCount() int {
	return len(g.Indices) / 3
}

func (g *Geometry) Position(i int) mgl32.Vec3 {
	return mgl32.Vec3{g.Positions[i*3], g.Positions[i*3+1], g.Positions[i*3+2]}
}

func (g *Geometry) SetPosition(i int, p mgl32.Vec3) {
	g.Positions[i*3] = p[0]
	g.Positions[i*3+1] = p[1]
	g.Positions[i*3+2] = p[2]
}

// Triangle returns the local-space corners of triangle i.
func (g *Geometry) Triangle(i int) (mgl32.Vec3, mgl32.Vec3, mgl32.Vec3) {
	return g.Position(int(g.Indices[i*3])), g.Position(int(g.Indices[i*3+1])), g.Position(int(g.Indices[i*3+2]))
}

// MarkDirty recomputes the bounding sphere and bumps Version.
func (g *Geometry) MarkDirty() {
	g.ComputeBoundingSphere()
	g.Version++
}

// Validate checks that attribute lengths agree and indices are in range.
func (g *Geometry) Validate() error {
	n := g.VertexCount()
	if len(g.Positions)%3 != 0 {
		return errors.New("positions length is not a multiple of 3")
	}
	if len(g.Normals) != 0 && len(g.Normals) != n*3 {
		return errors.New("normals do not match vertex count")
	}
	if len(g.UVs) != 0 && len(g.UVs) != n*2 {
		return errors.New("uvs do not match vertex count")
	}
	if len(g.Indices)%3 != 0 {
		return errors.New("indices length is not a multiple of 3")
	}
	for _, idx := range g.Indices {
		if int(idx) >= n {
			return errors.New("index out of range")
		}
	}
	return nil
}

// ComputeBoundingSphere centers the sphere on the bounding box center.
func (g *Geometry) ComputeBoundingSphere() {
	n := g.VertexCount()
	if n == 0 {
		g.BoundingCenter = mgl32.Vec3{}
		g.BoundingRadius = 0
		return
	}
	minV := g.Position(0)
	maxV := minV
	for i := 1; i < n; i++ {
		p := g.Position(i)
		for k := 0; k < 3; k++ {
			minV[k] = min(minV[k], p[k])
			maxV[k] = max(maxV[k], p[k])
		}
	}
	center := minV.Add(maxV).Mul(0.5)
	var radius float32
	for i := 0; i < n; i++ {
		radius = max(radius, g.Position(i).Sub(center).Len())
	}
	g.BoundingCenter = center
	g.BoundingRadius = radius
}

// ComputeVertexNormals averages face normals into per-vertex normals.
func (g *Geometry) ComputeVertexNormals() {
	n := g.VertexCount()
	acc := make([]mgl32.Vec3, n)
	for t := 0; t < g.TriangleCount(); t++ {
		ia, ib, ic := g.Indices[t*3], g.Indices[t*3+1], g.Indices[t*3+2]
		a, b, c := g.Position(int(ia)), g.Position(int(ib)), g.Position(int(ic))
		face := b.Sub(a).Cross(c.Sub(a))
		acc[ia] = acc[ia].Add(face)
		acc[ib] = acc[ib].Add(face)
		acc[ic] = acc[ic].Add(face)
	}
	if len(g.Normals) != n*3 {
		g.Normals = make([]float32, n*3)
	}
	for i, v := range acc {
		if v.Len() > 0 {
			v = v.Normalize()
		}
		g.Normals[i*3] = v[0]
		g.Normals[i*3+1] = v[1]
		g.Normals[i*3+2] = v[2]
	}
}

// Interleaved packs vertex data as position, uv, normal per vertex. Missing
// attributes are zero filled.
func (g *Geometry) Interleaved() []float32 {
	n := g.VertexCount()
	out := make([]float32, 0, n*FloatsPerVertex)
	for i := 0; i < n; i++ {
		out = append(out, g.Positions[i*3], g.Positions[i*3+1], g.Positions[i*3+2])
		if len(g.UVs) == n*2 {
			out = append(out, g.UVs[i*2], g.UVs[i*2+1])
		} else {
			out = append(out, 0, 0)
		}
		if len(g.Normals) == n*3 {
			out = append(out, g.Normals[i*3], g.Normals[i*3+1], g.Normals[i*3+2])
		} else {
			out = append(out, 0, 0, 0)
		}
	}
	return out
}

type geometryBuilder struct {
	g *Geometry
}

func newBuilder(name string, vertices int) *geometryBuilder {
	return &geometryBuilder{g: &Geometry{
		Name:      name,
		Positions: make([]float32, 0, vertices*3),
		Normals:   make([]float32, 0, vertices*3),
		UVs:       make([]float32, 0, vertices*2),
	}}
}

func (b *geometryBuilder) vertex(p, n mgl32.Vec3, u, v float32) {
	b.g.Positions = append(b.g.Positions, p[0], p[1], p[2])
	b.g.Normals = append(b.g.Normals, n[0], n[1], n[2])
	b.g.UVs = append(b.g.UVs, u, v)
}

func (b *geometryBuilder) tri(a, c, d uint32) {
	b.g.Indices = append(b.g.Indices, a, c, d)
}

func (b *geometryBuilder) done() *Geometry {
	b.g.ComputeBoundingSphere()
	return b.g
}

// Box builds an axis-aligned box centered at the origin with four vertices
// per face so each face gets flat normals and its own uvs.
func Box(width, height, depth float32) *Geometry {
	half := mgl32.Vec3{width / 2, height / 2, depth / 2}
	faces := [6]struct{ n, u, v mgl32.Vec3 }{
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	}
	b := newBuilder("box", 24)
	for i, f := range faces {
		center := mulElem(f.n, half)
		u := mulElem(f.u, half)
		v := mulElem(f.v, half)
		b.vertex(center.Sub(u).Sub(v), f.n, 0, 0)
		b.vertex(center.Add(u).Sub(v), f.n, 1, 0)
		b.vertex(center.Add(u).Add(v), f.n, 1, 1)
		b.vertex(center.Sub(u).Add(v), f.n, 0, 1)
		base := uint32(i * 4)
		b.tri(base, base+1, base+2)
		b.tri(base, base+2, base+3)
	}
	return b.done()
}

// Sphere builds a UV sphere. The poles get a single triangle fan row each.
func Sphere(radius float32, widthSegments, heightSegments int) *Geometry {
	widthSegments = max(widthSegments, 3)
	heightSegments = max(heightSegments, 2)
	b := newBuilder("sphere", (widthSegments+1)*(heightSegments+1))
	for iy := 0; iy <= heightSegments; iy++ {
		v := float64(iy) / float64(heightSegments)
		for ix := 0; ix <= widthSegments; ix++ {
			u := float64(ix) / float64(widthSegments)
			p := mgl32.Vec3{
				float32(-float64(radius) * math.Cos(u*2*math.Pi) * math.Sin(v*math.Pi)),
				float32(float64(radius) * math.Cos(v*math.Pi)),
				float32(float64(radius) * math.Sin(u*2*math.Pi) * math.Sin(v*math.Pi)),
			}
			n := p
			if n.Len() > 0 {
				n = n.Normalize()
			}
			b.vertex(p, n, float32(u), float32(1-v))
		}
	}
	row := uint32(widthSegments + 1)
	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := uint32(iy)*row + uint32(ix) + 1
			c := uint32(iy)*row + uint32(ix)
			d := uint32(iy+1)*row + uint32(ix)
			e := uint32(iy+1)*row + uint32(ix) + 1
			if iy != 0 {
				b.tri(a, c, e)
			}
			if iy != heightSegments-1 {
				b.tri(c, d, e)
			}
		}
	}
	return b.done()
}

// Torus builds a torus in the XY plane. radius is from the center to the
// middle of the tube.
func Torus(radius, tube float32, radialSegments, tubularSegments int) *Geometry {
	radialSegments = max(radialSegments, 3)
	tubularSegments = max(tubularSegments, 3)
	b := newBuilder("torus", (radialSegments+1)*(tubularSegments+1))
	R, r := float64(radius), float64(tube)
	for j := 0; j <= radialSegments; j++ {
		for i := 0; i <= tubularSegments; i++ {
			u := float64(i) / float64(tubularSegments) * 2 * math.Pi
			v := float64(j) / float64(radialSegments) * 2 * math.Pi
			p := mgl32.Vec3{
				float32((R + r*math.Cos(v)) * math.Cos(u)),
				float32((R + r*math.Cos(v)) * math.Sin(u)),
				float32(r * math.Sin(v)),
			}
			center := mgl32.Vec3{float32(R * math.Cos(u)), float32(R * math.Sin(u)), 0}
			b.vertex(p, p.Sub(center).Normalize(), float32(i)/float32(tubularSegments), float32(j)/float32(radialSegments))
		}
	}
	row := uint32(tubularSegments + 1)
	for j := 1; j <= radialSegments; j++ {
		for i := 1; i <= tubularSegments; i++ {
			a := row*uint32(j) + uint32(i) - 1
			c := row*uint32(j-1) + uint32(i) - 1
			d := row*uint32(j-1) + uint32(i)
			e := row*uint32(j) + uint32(i)
			b.tri(a, c, e)
			b.tri(c, d, e)
		}
	}
	return b.done()
}

// TorusKnot builds a (p,q) torus knot tube.
func TorusKnot(radius, tube float32, tubularSegments, radialSegments, p, q int) *Geometry {
	tubularSegments = max(tubularSegments, 3)
	radialSegments = max(radialSegments, 3)
	if p == 0 {
		p = 2
	}
	if q == 0 {
		q = 3
	}
	b := newBuilder("torusKnot", (tubularSegments+1)*(radialSegments+1))
	curve := func(u float64) mgl32.Vec3 {
		quOverP := float64(q) / float64(p) * u
		cs := math.Cos(quOverP)
		R := float64(radius)
		return mgl32.Vec3{
			float32(R * (2 + cs) * 0.5 * math.Cos(u)),
			float32(R * (2 + cs) * 0.5 * math.Sin(u)),
			float32(R * math.Sin(quOverP) * 0.5),
		}
	}
	for i := 0; i <= tubularSegments; i++ {
		u := float64(i) / float64(tubularSegments) * float64(p) * 2 * math.Pi
		p1 := curve(u)
		p2 := curve(u + 0.01)
		t := p2.Sub(p1)
		n := p2.Add(p1)
		bn := t.Cross(n)
		n = bn.Cross(t)
		bn = bn.Normalize()
		n = n.Normalize()
		for j := 0; j <= radialSegments; j++ {
			v := float64(j) / float64(radialSegments) * 2 * math.Pi
			cx := float32(-float64(tube) * math.Cos(v))
			cy := float32(float64(tube) * math.Sin(v))
			pos := p1.Add(n.Mul(cx)).Add(bn.Mul(cy))
			b.vertex(pos, pos.Sub(p1).Normalize(), float32(i)/float32(tubularSegments), float32(j)/float32(radialSegments))
		}
	}
	row := uint32(radialSegments + 1)
	for i := 1; i <= tubularSegments; i++ {
		for j := 1; j <= radialSegments; j++ {
			a := row*uint32(i-1) + uint32(j-1)
			c := row*uint32(i) + uint32(j-1)
			d := row*uint32(i) + uint32(j)
			e := row*uint32(i-1) + uint32(j)
			b.tri(a, c, e)
			b.tri(c, d, e)
		}
	}
	return b.done()
}

// Plane builds a grid in the XY plane facing +Z.
func Plane(width, height float32, widthSegments, heightSegments int) *Geometry {
	gridX := max(widthSegments, 1)
	gridY := max(heightSegments, 1)
	segW := width / float32(gridX)
	segH := height / float32(gridY)
	b := newBuilder("plane", (gridX+1)*(gridY+1))
	normal := mgl32.Vec3{0, 0, 1}
	for iy := 0; iy <= gridY; iy++ {
		y := float32(iy)*segH - height/2
		for ix := 0; ix <= gridX; ix++ {
			x := float32(ix)*segW - width/2
			b.vertex(mgl32.Vec3{x, -y, 0}, normal, float32(ix)/float32(gridX), 1-float32(iy)/float32(gridY))
		}
	}
	row := uint32(gridX + 1)
	for iy := 0; iy < gridY; iy++ {
		for ix := 0; ix < gridX; ix++ {
			a := uint32(ix) + row*uint32(iy)
			c := uint32(ix) + row*uint32(iy+1)
			d := uint32(ix+1) + row*uint32(iy+1)
			e := uint32(ix+1) + row*uint32(iy)
			b.tri(a, c, e)
			b.tri(c, d, e)
		}
	}
	return b.done()
}

func mulElem(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}
