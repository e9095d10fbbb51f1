// Package scene is the scene graph: a tree of objects with TRS transforms,
// plus the geometry and material data meshes draw with.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Node is anything that can live in the scene graph.
type Node interface {
	// Base returns the embedded transform/hierarchy data.
	Base() *Object
	// Accept dispatches to the Visitor method for the concrete node kind and
	// reports whether the walk should descend into the node's children.
	Accept(v Visitor) bool
}

// Object holds the transform and hierarchy shared by every node kind.
// Embed it to make a new node kind.
type Object struct {
	Name     string
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
	Visible  bool

	parent   *Object
	children []Node
}

// NewObject returns an object at the origin with identity rotation and unit scale.
func NewObject(name string) Object {
	return Object{
		Name:     name,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
		Visible:  true,
	}
}

func (o *Object) Base() *Object { return o }

// Add attaches children, detaching them from any previous parent first.
func (o *Object) Add(children ...Node) {
	for _, child := range children {
		if child == nil {
			continue
		}
		cb := child.Base()
		if cb == o {
			continue
		}
		if cb.parent != nil {
			cb.parent.Remove(child)
		}
		cb.parent = o
		o.children = append(o.children, child)
	}
}

// Remove detaches child and reports whether it was a direct child.
func (o *Object) Remove(child Node) bool {
	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i], o.children[i+1:]...)
			child.Base().parent = nil
			return true
		}
	}
	return false
}

// Contains reports whether child is a direct child.
func (o *Object) Contains(child Node) bool {
	for _, c := range o.children {
		if c == child {
			return true
		}
	}
	return false
}

// Children returns a copy of the direct children.
func (o *Object) Children() []Node {
	return append([]Node(nil), o.children...)
}

func (o *Object) Parent() *Object {
	return o.parent
}

func (o *Object) SetPosition(x, y, z float32) {
	o.Position = mgl32.Vec3{x, y, z}
}

func (o *Object) SetScale(x, y, z float32) {
	o.Scale = mgl32.Vec3{x, y, z}
}

// SetRotation sets the rotation from XYZ Euler angles in radians.
func (o *Object) SetRotation(x, y, z float32) {
	o.Rotation = mgl32.AnglesToQuat(x, y, z, mgl32.XYZ)
}

// Rotate applies extra rotation around X, Y then Z, in radians.
func (o *Object) Rotate(angleX, angleY, angleZ float32) {
	if o.Rotation == (mgl32.Quat{}) {
		o.Rotation = mgl32.QuatIdent()
	}
	rx := mgl32.QuatRotate(angleX, mgl32.Vec3{1, 0, 0})
	ry := mgl32.QuatRotate(angleY, mgl32.Vec3{0, 1, 0})
	rz := mgl32.QuatRotate(angleZ, mgl32.Vec3{0, 0, 1})
	o.Rotation = o.Rotation.Mul(rx).Mul(ry).Mul(rz)
}

// LocalMatrix is translation * rotation * scale.
func (o *Object) LocalMatrix() mgl32.Mat4 {
	rot := o.Rotation
	if rot == (mgl32.Quat{}) {
		rot = mgl32.QuatIdent()
	}
	scale := mgl32.Scale3D(o.Scale[0], o.Scale[1], o.Scale[2])
	translation := mgl32.Translate3D(o.Position[0], o.Position[1], o.Position[2])
	return translation.Mul4(rot.Mat4()).Mul4(scale)
}

// WorldMatrix composes the local matrices from the root down to o.
func (o *Object) WorldMatrix() mgl32.Mat4 {
	m := o.LocalMatrix()
	for p := o.parent; p != nil; p = p.parent {
		m = p.LocalMatrix().Mul4(m)
	}
	return m
}

func (o *Object) WorldPosition() mgl32.Vec3 {
	return o.WorldMatrix().Col(3).Vec3()
}

// VisibleInWorld is false if o or any ancestor is hidden.
func (o *Object) VisibleInWorld() bool {
	for p := o; p != nil; p = p.parent {
		if !p.Visible {
			return false
		}
	}
	return true
}

// Group is a transform-only node used to move several children together.
type Group struct {
	Object
}

func NewGroup(name string) *Group {
	return &Group{Object: NewObject(name)}
}

func (g *Group) Accept(v Visitor) bool { return v.VisitGroup(g) }

// Scene is the root of a scene graph.
type Scene struct {
	Object
	Background mgl32.Vec3
}

func NewScene() *Scene {
	return &Scene{Object: NewObject("scene")}
}

func (s *Scene) Accept(v Visitor) bool { return v.VisitScene(s) }
