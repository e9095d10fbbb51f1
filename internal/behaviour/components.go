package behaviour

import (
	"math"
	"time"

	"GopherStage/internal/clock"
	"GopherStage/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

// BaseComponent binds a behaviour to a scene node. Scripts embed it and
// override what they need.
type BaseComponent struct {
	Node     scene.Node
	Disabled bool
}

func (c *BaseComponent) Start()                   {}
func (c *BaseComponent) Update(frame clock.Frame) {}

func (c *BaseComponent) object() *scene.Object {
	if c.Node == nil || c.Disabled {
		return nil
	}
	return c.Node.Base()
}

// Rotator sets the node's rotation to Rate times the elapsed time, so the
// spin speed does not depend on the frame rate. Rate is in radians per second
// around each axis.
type Rotator struct {
	BaseComponent
	Rate mgl32.Vec3
}

func NewRotator(node scene.Node, rate mgl32.Vec3) *Rotator {
	return &Rotator{BaseComponent: BaseComponent{Node: node}, Rate: rate}
}

func (r *Rotator) Update(frame clock.Frame) {
	obj := r.object()
	if obj == nil {
		return
	}
	t := frame.ElapsedSeconds()
	obj.SetRotation(r.Rate.X()*t, r.Rate.Y()*t, r.Rate.Z()*t)
}

// Oscillator moves the node along one axis on a sine wave around the
// position it had when it started.
type Oscillator struct {
	BaseComponent
	Axis      int
	Amplitude float32
	// Frequency is in radians per second.
	Frequency float32

	origin float32
}

func NewOscillator(node scene.Node, axis int, amplitude, frequency float32) *Oscillator {
	return &Oscillator{
		BaseComponent: BaseComponent{Node: node},
		Axis:          axis,
		Amplitude:     amplitude,
		Frequency:     frequency,
	}
}

func (o *Oscillator) Start() {
	if obj := o.object(); obj != nil {
		o.origin = obj.Position[o.Axis]
	}
}

func (o *Oscillator) Update(frame clock.Frame) {
	obj := o.object()
	if obj == nil {
		return
	}
	phase := float64(frame.ElapsedSeconds() * o.Frequency)
	obj.Position[o.Axis] = o.origin + float32(math.Sin(phase))*o.Amplitude
}

// Bouncer drops the node under gravity and bounces it off a floor. It only
// moves in FixedUpdate, so the motion does not depend on the frame rate.
type Bouncer struct {
	BaseComponent
	// Gravity pulls down in units per second squared.
	Gravity float32
	// Restitution is the share of speed kept by each bounce.
	Restitution float32
	// Floor is the lowest y of the node's origin.
	Floor    float32
	Velocity float32
}

func NewBouncer(node scene.Node, floor, restitution float32) *Bouncer {
	return &Bouncer{
		BaseComponent: BaseComponent{Node: node},
		Gravity:       9.8,
		Restitution:   restitution,
		Floor:         floor,
	}
}

func (b *Bouncer) FixedUpdate(step time.Duration) {
	obj := b.object()
	if obj == nil {
		return
	}
	dt := float32(step.Seconds())
	b.Velocity -= b.Gravity * dt
	y := obj.Position[1] + b.Velocity*dt
	if y <= b.Floor {
		y = b.Floor
		b.Velocity = -b.Velocity * b.Restitution
		// too slow to leave the floor again
		if b.Velocity < b.Gravity*dt {
			b.Velocity = 0
		}
	}
	obj.Position[1] = y
}

// Resting reports whether the node has stopped on the floor.
func (b *Bouncer) Resting() bool {
	obj := b.object()
	return obj != nil && b.Velocity == 0 && obj.Position[1] == b.Floor
}
