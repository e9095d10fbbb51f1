// camera.go
package renderer

import (
	"math"

	"GopherStage/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

// ProjectionKind selects how a Camera maps view space to clip space.
type ProjectionKind int

const (
	Perspective ProjectionKind = iota
	// Orthographic keeps sizes constant with distance.
	Orthographic
)

// Camera is a perspective or orthographic camera. It embeds scene.Object so
// it can be added to a scene. Orientation comes from Yaw and Pitch; the embedded Rotation is
// not used.
type Camera struct {
	scene.Object

	// HOT DATA - Accessed every frame for view/projection calculations
	Front      mgl32.Vec3 // Forward direction vector
	Up         mgl32.Vec3 // Up direction vector
	Right      mgl32.Vec3 // Right direction vector
	Projection mgl32.Mat4 // Projection matrix
	Pitch      float32    // Pitch angle in degrees
	Yaw        float32    // Yaw angle in degrees

	// COLD DATA - Configuration
	WorldUp     mgl32.Vec3  // World up vector (usually (0,1,0))
	Sensitivity float32     // Mouse sensitivity
	Fov         float32     // Vertical field of view in degrees
	Near        float32     // Near clipping plane
	Far         float32     // Far clipping plane
	AspectRatio float32     // Viewport width / height
	Target      *mgl32.Vec3 // Look-at target, nil when free-looking
	Kind        ProjectionKind
	HalfHeight  float32 // Orthographic half-height in world units
}

type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

type Frustum struct {
	Planes [6]Plane
}

// NewPerspectiveCamera looks down -Z from the origin.
func NewPerspectiveCamera(fov, aspect, near, far float32) *Camera {
	camera := newCamera(aspect, near, far)
	camera.Fov = fov
	camera.UpdateProjection()
	return camera
}

// NewOrthographicCamera views a box halfHeight tall above and below the
// center and halfHeight*aspect to each side. Changing the aspect ratio keeps
// the height.
func NewOrthographicCamera(halfHeight, aspect, near, far float32) *Camera {
	camera := newCamera(aspect, near, far)
	camera.Kind = Orthographic
	camera.HalfHeight = halfHeight
	camera.UpdateProjection()
	return camera
}

func newCamera(aspect, near, far float32) *Camera {
	camera := &Camera{
		Object:      scene.NewObject("camera"),
		Front:       mgl32.Vec3{0, 0, -1},
		Up:          mgl32.Vec3{0, 1, 0},
		WorldUp:     mgl32.Vec3{0, 1, 0},
		Yaw:         -90.0,
		Sensitivity: 0.1,
		Near:        near,
		Far:         far,
		AspectRatio: aspect,
	}
	camera.updateCameraVectors()
	return camera
}

// Accept makes the camera a scene node of its own kind.
func (c *Camera) Accept(v scene.Visitor) bool { return v.VisitNode(c) }

func (c *Camera) UpdateProjection() {
	aspect := c.AspectRatio
	if aspect <= 0 || math.IsNaN(float64(aspect)) || math.IsInf(float64(aspect), 0) {
		aspect = 1
	}
	if c.Kind == Orthographic {
		h := c.HalfHeight
		c.Projection = mgl32.Ortho(-h*aspect, h*aspect, -h, h, c.Near, c.Far)
		return
	}
	c.Projection = mgl32.Perspective(mgl32.DegToRad(c.Fov), aspect, c.Near, c.Far)
}

// Setter methods that automatically update projection
func (c *Camera) SetNear(near float32) {
	c.Near = near
	c.UpdateProjection()
}

func (c *Camera) SetFar(far float32) {
	c.Far = far
	c.UpdateProjection()
}

func (c *Camera) SetClipPlanes(near, far float32) {
	c.Near, c.Far = near, far
	c.UpdateProjection()
}

func (c *Camera) SetFov(fov float32) {
	c.Fov = fov
	c.UpdateProjection()
}

func (c *Camera) SetAspectRatio(aspectRatio float32) {
	c.AspectRatio = aspectRatio
	c.UpdateProjection()
}

// Eye is the camera's world position.
func (c *Camera) Eye() mgl32.Vec3 {
	return c.WorldPosition()
}

func (c *Camera) GetViewMatrix() mgl32.Mat4 {
	eye := c.Eye()
	return mgl32.LookAtV(eye, eye.Add(c.Front), c.Up)
}

func (c *Camera) GetProjectionMatrix() mgl32.Mat4 {
	return c.Projection
}

func (c *Camera) GetViewProjection() mgl32.Mat4 {
	return c.Projection.Mul4(c.GetViewMatrix())
}

// ProcessMouseMovement turns the camera by pointer deltas in pixels.
func (c *Camera) ProcessMouseMovement(xoffset, yoffset float32, constrainPitch bool) {
	c.Yaw += xoffset * c.Sensitivity
	c.Pitch += yoffset * c.Sensitivity
	if constrainPitch {
		c.Pitch = mgl32.Clamp(c.Pitch, -89.0, 89.0)
	}
	c.Target = nil
	c.updateCameraVectors()
}

// LookAt orients the camera towards target and remembers it. Looking at
// the camera's own position is ignored.
func (c *Camera) LookAt(target mgl32.Vec3) {
	direction := target.Sub(c.Eye())
	if direction.Len() == 0 {
		return
	}
	direction = direction.Normalize()
	c.Yaw = mgl32.RadToDeg(float32(math.Atan2(float64(direction.Z()), float64(direction.X()))))
	c.Pitch = mgl32.RadToDeg(float32(math.Asin(float64(mgl32.Clamp(direction.Y(), -1, 1)))))
	t := target
	c.Target = &t
	c.updateCameraVectors()
}

func (c *Camera) updateCameraVectors() {
	yawRad := float64(mgl32.DegToRad(c.Yaw))
	pitchRad := float64(mgl32.DegToRad(c.Pitch))

	front := mgl32.Vec3{
		float32(math.Cos(yawRad) * math.Cos(pitchRad)),
		float32(math.Sin(pitchRad)),
		float32(math.Sin(yawRad) * math.Cos(pitchRad)),
	}

	c.Front = front.Normalize()
	right := c.Front.Cross(c.WorldUp)
	if right.Len() < 1e-6 {
		// looking straight up or down
		right = mgl32.Vec3{1, 0, 0}
	}
	c.Right = right.Normalize()
	c.Up = c.Right.Cross(c.Front).Normalize()
}

func (c *Camera) CalculateFrustum() Frustum {
	var frustum Frustum
	vp := c.GetViewProjection()

	// Left Plane
	frustum.Planes[0] = Plane{
		Normal:   mgl32.Vec3{vp[3] + vp[0], vp[7] + vp[4], vp[11] + vp[8]},
		Distance: vp[15] + vp[12],
	}

	// Right Plane
	frustum.Planes[1] = Plane{
		Normal:   mgl32.Vec3{vp[3] - vp[0], vp[7] - vp[4], vp[11] - vp[8]},
		Distance: vp[15] - vp[12],
	}

	// Bottom Plane
	frustum.Planes[2] = Plane{
		Normal:   mgl32.Vec3{vp[3] + vp[1], vp[7] + vp[5], vp[11] + vp[9]},
		Distance: vp[15] + vp[13],
	}

	// Top Plane
	frustum.Planes[3] = Plane{
		Normal:   mgl32.Vec3{vp[3] - vp[1], vp[7] - vp[5], vp[11] - vp[9]},
		Distance: vp[15] - vp[13],
	}

	// Near Plane
	frustum.Planes[4] = Plane{
		Normal:   mgl32.Vec3{vp[3] + vp[2], vp[7] + vp[6], vp[11] + vp[10]},
		Distance: vp[15] + vp[14],
	}

	// Far Plane
	frustum.Planes[5] = Plane{
		Normal:   mgl32.Vec3{vp[3] - vp[2], vp[7] - vp[6], vp[11] - vp[10]},
		Distance: vp[15] - vp[14],
	}

	for i := 0; i < 6; i++ {
		length := frustum.Planes[i].Normal.Len()
		frustum.Planes[i].Normal = frustum.Planes[i].Normal.Mul(1.0 / length)
		frustum.Planes[i].Distance /= length
	}

	return frustum
}

func (p *Plane) DistanceToPoint(point mgl32.Vec3) float32 {
	return p.Normal.Dot(point) + p.Distance
}

func (f *Frustum) IntersectsSphere(center mgl32.Vec3, radius float32) bool {
	for _, plane := range f.Planes {
		if plane.DistanceToPoint(center) < -radius {
			return false
		}
	}
	return true
}

// ScreenToRay converts a pixel position in a width x height viewport to a
// world-space ray from the camera.
func (c *Camera) ScreenToRay(screenX, screenY float32, width, height int) scene.Ray {
	ndcX := 2.0*screenX/float32(width) - 1.0
	ndcY := 1.0 - 2.0*screenY/float32(height)
	return c.NDCToRay(mgl32.Vec2{ndcX, ndcY})
}

// NDCToRay builds a ray through normalized device coordinates in [-1, 1].
func (c *Camera) NDCToRay(ndc mgl32.Vec2) scene.Ray {
	if c.Kind == Orthographic {
		inv := c.GetViewProjection().Inv()
		near := mgl32.TransformCoordinate(mgl32.Vec3{ndc.X(), ndc.Y(), -1}, inv)
		far := mgl32.TransformCoordinate(mgl32.Vec3{ndc.X(), ndc.Y(), 1}, inv)
		return scene.Ray{Origin: near, Direction: far.Sub(near).Normalize()}
	}
	clipCoords := mgl32.Vec4{ndc.X(), ndc.Y(), -1.0, 1.0}

	eyeCoords := c.Projection.Inv().Mul4x1(clipCoords)
	eyeCoords = mgl32.Vec4{eyeCoords.X(), eyeCoords.Y(), -1.0, 0.0}

	worldDir := c.GetViewMatrix().Inv().Mul4x1(eyeCoords).Vec3().Normalize()
	return scene.Ray{Origin: c.Eye(), Direction: worldDir}
}
