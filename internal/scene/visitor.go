package scene

// Visitor receives one call per node with the node's concrete type. Each
// method reports whether the walk should descend into that node's children.
// VisitNode receives node kinds defined outside this package, such as cameras.
type Visitor interface {
	VisitScene(s *Scene) bool
	VisitGroup(g *Group) bool
	VisitMesh(m *Mesh) bool
	VisitNode(n Node) bool
}

// Walk visits root and its descendants depth first, parents before children.
func Walk(root Node, v Visitor) {
	if root == nil {
		return
	}
	if !root.Accept(v) {
		return
	}
	for _, child := range root.Base().children {
		Walk(child, v)
	}
}

// Funcs adapts plain functions to a Visitor. Nil fields are skipped and the
// walk always descends.
type Funcs struct {
	Scene func(*Scene)
	Group func(*Group)
	Mesh  func(*Mesh)
	Node  func(Node)
}

func (f Funcs) VisitScene(s *Scene) bool {
	if f.Scene != nil {
		f.Scene(s)
	}
	return true
}

func (f Funcs) VisitGroup(g *Group) bool {
	if f.Group != nil {
		f.Group(g)
	}
	return true
}

func (f Funcs) VisitMesh(m *Mesh) bool {
	if f.Mesh != nil {
		f.Mesh(m)
	}
	return true
}

func (f Funcs) VisitNode(n Node) bool {
	if f.Node != nil {
		f.Node(n)
	}
	return true
}

// Meshes returns every mesh under root in walk order.
func Meshes(root Node) []*Mesh {
	var out []*Mesh
	Walk(root, Funcs{Mesh: func(m *Mesh) { out = append(out, m) }})
	return out
}

// VisibleMeshes returns meshes that are visible along their whole ancestry.
func VisibleMeshes(root Node) []*Mesh {
	var out []*Mesh
	Walk(root, visibleMeshes{out: &out})
	return out
}

type visibleMeshes struct {
	out *[]*Mesh
}

func (v visibleMeshes) VisitScene(s *Scene) bool { return s.Visible }
func (v visibleMeshes) VisitGroup(g *Group) bool { return g.Visible }
func (v visibleMeshes) VisitNode(n Node) bool    { return n.Base().Visible }
func (v visibleMeshes) VisitMesh(m *Mesh) bool {
	if !m.Visible {
		return false
	}
	*v.out = append(*v.out, m)
	return true
}

// ForEachMaterial calls fn for every mesh material under root, once per
// distinct material.
func ForEachMaterial(root Node, fn func(*Material)) {
	seen := make(map[*Material]bool)
	for _, m := range Meshes(root) {
		if m.Material == nil || seen[m.Material] {
			continue
		}
		seen[m.Material] = true
		fn(m.Material)
	}
}

// Dispose releases geometry, material and texture resources of every mesh
// under root. Shared resources are disposed once.
func Dispose(root Node) {
	geometries := make(map[*Geometry]bool)
	for _, m := range Meshes(root) {
		if m.Geometry != nil && !geometries[m.Geometry] {
			geometries[m.Geometry] = true
			m.Geometry.Dispose()
		}
	}
	ForEachMaterial(root, func(mat *Material) { mat.Dispose() })
}
