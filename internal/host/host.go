// Package host abstracts the windowing environment the stage renders into:
// named drawing surfaces, the viewport, the device pixel ratio, resize events,
// display-synchronised frame scheduling and fullscreen presentation.
//
// Everything a Host exposes is driven from one thread. Listener and frame
// callbacks are invoked from Run and never concurrently with each other.
package host

import (
	"context"
	"time"
)

// FrameCallback receives the host's timestamp for the tick it was scheduled on.
type FrameCallback func(now time.Duration)

// ResizeCallback receives the new logical viewport size.
type ResizeCallback func(width, height int)

type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
	PointerWheel
)

type PointerButton int

const (
	ButtonPrimary PointerButton = iota
	ButtonSecondary
	ButtonMiddle
)

// PointerEvent is a mouse/touch event in surface coordinates (pixels, origin
// top-left). DeltaY is the wheel delta for PointerWheel events.
type PointerEvent struct {
	Kind   PointerKind
	Button PointerButton
	X, Y   float64
	DeltaY float64
	Shift  bool
}

// Surface is a drawable region identified by a string, the equivalent of a
// canvas element.
type Surface interface {
	ID() string
	Size() (width, height int)
	// OnDoubleClick registers fn for double activation; the returned func removes it.
	OnDoubleClick(fn func()) (cancel func())
	OnPointer(fn func(PointerEvent)) (cancel func())
	RequestFullscreen() error
}

type Host interface {
	// Surface resolves a surface by identifier.
	Surface(id string) (Surface, bool)
	// ViewportSize is the current logical size of the viewport.
	ViewportSize() (width, height int)
	DevicePixelRatio() float64
	OnResize(fn ResizeCallback) (cancel func())
	// Now is the host clock frame timestamps are taken from.
	Now() time.Duration
	// RequestAnimationFrame schedules fn once, on the next display refresh.
	RequestAnimationFrame(fn FrameCallback)
	// FullscreenSurface is the surface currently in fullscreen, or nil.
	FullscreenSurface() Surface
	ExitFullscreen() error
	// Run drives events and frames until ctx is done or the host is closed.
	Run(ctx context.Context) error
}
