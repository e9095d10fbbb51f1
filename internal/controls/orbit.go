// Package controls moves cameras in response to pointer input.
package controls

import (
	"context"
	"math"

	"GopherStage/internal/bootstrap"
	"GopherStage/internal/clock"
	"GopherStage/internal/host"
	"GopherStage/internal/renderer"
	"GopherStage/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// DefaultDampingFactor is the share of the pending motion applied per Update.
	DefaultDampingFactor = 0.05
	polarEpsilon         = 0.000001
	movedEpsilon         = 0.000001
)

type dragMode int

const (
	dragNone dragMode = iota
	dragRotate
	dragPan
)

// OrbitControls rotates the camera around Target on primary drag, pans on
// secondary or shift drag and dollies on wheel. Update must run once per
// frame to apply the motion.
type OrbitControls struct {
	Camera  *renderer.Camera
	Target  mgl32.Vec3
	Enabled bool

	EnableDamping bool
	DampingFactor float32
	RotateSpeed   float32
	ZoomSpeed     float32
	PanSpeed      float32
	MinDistance   float32
	MaxDistance   float32
	MinPolarAngle float32
	MaxPolarAngle float32

	surface host.Surface
	cancel  func()

	deltaTheta float32
	deltaPhi   float32
	scale      float32
	panOffset  mgl32.Vec3

	mode         dragMode
	lastX, lastY float64
}

// NewOrbitControls listens for pointer events on surface. The target starts
// at the camera's look-at target, or the origin.
func NewOrbitControls(cam *renderer.Camera, surface host.Surface) *OrbitControls {
	c := &OrbitControls{
		Camera:        cam,
		Enabled:       true,
		DampingFactor: DefaultDampingFactor,
		RotateSpeed:   1,
		ZoomSpeed:     1,
		PanSpeed:      1,
		MaxDistance:   float32(math.Inf(1)),
		MaxPolarAngle: math.Pi,
		scale:         1,
		surface:       surface,
	}
	if cam.Target != nil {
		c.Target = *cam.Target
	}
	if surface != nil {
		c.cancel = surface.OnPointer(c.HandlePointer)
	}
	return c
}

// Dispose stops listening for pointer events.
func (c *OrbitControls) Dispose() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mode = dragNone
}

func (c *OrbitControls) viewportHeight() float32 {
	if c.surface == nil {
		return 1
	}
	_, h := c.surface.Size()
	if h <= 0 {
		return 1
	}
	return float32(h)
}

func (c *OrbitControls) HandlePointer(ev host.PointerEvent) {
	if !c.Enabled {
		return
	}
	switch ev.Kind {
	case host.PointerDown:
		c.lastX, c.lastY = ev.X, ev.Y
		switch {
		case ev.Button == host.ButtonPrimary && !ev.Shift:
			c.mode = dragRotate
		case ev.Button == host.ButtonSecondary, ev.Button == host.ButtonPrimary && ev.Shift:
			c.mode = dragPan
		}
	case host.PointerMove:
		dx := float32(ev.X - c.lastX)
		dy := float32(ev.Y - c.lastY)
		c.lastX, c.lastY = ev.X, ev.Y
		switch c.mode {
		case dragRotate:
			h := c.viewportHeight()
			c.RotateLeft(2 * math.Pi * dx / h * c.RotateSpeed)
			c.RotateUp(2 * math.Pi * dy / h * c.RotateSpeed)
		case dragPan:
			c.Pan(dx*c.PanSpeed, dy*c.PanSpeed)
		}
	case host.PointerUp:
		c.mode = dragNone
	case host.PointerWheel:
		switch {
		case ev.DeltaY < 0:
			c.DollyIn(c.zoomScale())
		case ev.DeltaY > 0:
			c.DollyOut(c.zoomScale())
		}
	}
}

func (c *OrbitControls) zoomScale() float32 {
	return float32(math.Pow(0.95, float64(c.ZoomSpeed)))
}

// RotateLeft queues a rotation around the up axis, in radians.
func (c *OrbitControls) RotateLeft(angle float32) {
	c.deltaTheta -= angle
}

// RotateUp queues a rotation towards the poles, in radians.
func (c *OrbitControls) RotateUp(angle float32) {
	c.deltaPhi -= angle
}

// DollyIn moves the camera closer by factor (0 < factor < 1 is closer).
func (c *OrbitControls) DollyIn(factor float32) {
	c.scale *= factor
}

func (c *OrbitControls) DollyOut(factor float32) {
	if factor != 0 {
		c.scale /= factor
	}
}

// Pan queues a move of camera and target by a pointer delta in pixels.
func (c *OrbitControls) Pan(dx, dy float32) {
	offset := c.Camera.Position.Sub(c.Target)
	targetDistance := offset.Len() * float32(math.Tan(float64(mgl32.DegToRad(c.Camera.Fov/2))))
	h := c.viewportHeight()

	left := c.Camera.Right.Mul(-2 * dx * targetDistance / h)
	up := c.Camera.Up.Mul(2 * dy * targetDistance / h)
	c.panOffset = c.panOffset.Add(left).Add(up)
}

// Update applies queued motion to the camera and reports whether it moved.
func (c *OrbitControls) Update() bool {
	cam := c.Camera
	offset := cam.Position.Sub(c.Target)

	radius := offset.Len()
	var theta, phi float64
	if radius > 0 {
		theta = math.Atan2(float64(offset.X()), float64(offset.Z()))
		phi = math.Acos(float64(mgl32.Clamp(offset.Y()/radius, -1, 1)))
	}

	factor := float32(1)
	if c.EnableDamping {
		factor = c.DampingFactor
	}
	theta += float64(c.deltaTheta * factor)
	phi += float64(c.deltaPhi * factor)

	minPolar := math.Max(float64(c.MinPolarAngle), polarEpsilon)
	maxPolar := math.Min(float64(c.MaxPolarAngle), math.Pi-polarEpsilon)
	phi = math.Max(minPolar, math.Min(maxPolar, phi))

	radius = mgl32.Clamp(radius*c.scale, c.MinDistance, c.MaxDistance)

	c.Target = c.Target.Add(c.panOffset.Mul(factor))

	sinPhi := math.Sin(phi)
	offset = mgl32.Vec3{
		float32(float64(radius) * sinPhi * math.Sin(theta)),
		float32(float64(radius) * math.Cos(phi)),
		float32(float64(radius) * sinPhi * math.Cos(theta)),
	}

	prev := cam.Position
	cam.Position = c.Target.Add(offset)
	cam.LookAt(c.Target)

	if c.EnableDamping {
		c.deltaTheta *= 1 - c.DampingFactor
		c.deltaPhi *= 1 - c.DampingFactor
		c.panOffset = c.panOffset.Mul(1 - c.DampingFactor)
	} else {
		c.deltaTheta, c.deltaPhi = 0, 0
		c.panOffset = mgl32.Vec3{}
	}
	c.scale = 1

	d := cam.Position.Sub(prev)
	return d.Dot(d) > movedEpsilon
}

// ApplyOrbitControl attaches damped orbit controls to cam and starts a render
// loop that updates them before fn on every frame. The caller disposes the
// controls once the loop is stopped.
func ApplyOrbitControl(ctx context.Context, stage *bootstrap.Stage, surface host.Surface, rend renderer.Render, sc *scene.Scene, cam *renderer.Camera, fn bootstrap.FrameFunc) (*OrbitControls, *bootstrap.LoopHandle) {
	controls := NewOrbitControls(cam, surface)
	controls.EnableDamping = true
	controls.Update()

	handle := stage.RunRenderLoop(ctx, rend, sc, cam, func(frame clock.Frame) {
		controls.Update()
		if fn != nil {
			fn(frame)
		}
	})
	return controls, handle
}
