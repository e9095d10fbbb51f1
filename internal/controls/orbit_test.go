package controls

import (
	"context"
	"math"
	"testing"

	"GopherStage/internal/bootstrap"
	"GopherStage/internal/clock"
	"GopherStage/internal/host"
	"GopherStage/internal/renderer"
	"GopherStage/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newCamera() *renderer.Camera {
	cam := renderer.NewPerspectiveCamera(75, 800.0/600.0, 0.1, 2000)
	cam.Position = mgl32.Vec3{0, 0, 3}
	return cam
}

func newSurface() (*host.Headless, *host.HeadlessSurface) {
	h := host.NewHeadless(800, 600)
	return h, h.AddSurface("c")
}

func assertVec(t *testing.T, want, got mgl32.Vec3, delta float64) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want[i], got[i], delta, "component %d of %v", i, got)
	}
}

func TestUpdateWithoutInputKeepsCamera(t *testing.T) {
	_, surface := newSurface()
	cam := newCamera()
	c := NewOrbitControls(cam, surface)

	assert.False(t, c.Update())
	assertVec(t, mgl32.Vec3{0, 0, 3}, cam.Position, 1e-5)
	assertVec(t, mgl32.Vec3{0, 0, -1}, cam.Front, 1e-5)
}

func TestRotateLeftWithoutDamping(t *testing.T) {
	_, surface := newSurface()
	cam := newCamera()
	c := NewOrbitControls(cam, surface)

	c.RotateLeft(math.Pi / 2)
	assert.True(t, c.Update())
	assertVec(t, mgl32.Vec3{-3, 0, 0}, cam.Position, 1e-4)
	assertVec(t, mgl32.Vec3{1, 0, 0}, cam.Front, 1e-4)

	// applied motion is consumed
	assert.False(t, c.Update())
}

func TestDampingConverges(t *testing.T) {
	_, surface := newSurface()
	cam := newCamera()
	c := NewOrbitControls(cam, surface)
	c.EnableDamping = true

	c.RotateLeft(1)
	c.Update()
	assertVec(t, mgl32.Vec3{3 * float32(math.Sin(-0.05)), 0, 3 * float32(math.Cos(0.05))}, cam.Position, 1e-4)

	for i := 0; i < 300; i++ {
		c.Update()
	}
	assertVec(t, mgl32.Vec3{3 * float32(math.Sin(-1)), 0, 3 * float32(math.Cos(1))}, cam.Position, 1e-2)
	assert.InDelta(t, 3, cam.Position.Len(), 1e-4)
}

func TestPolarAngleIsClamped(t *testing.T) {
	_, surface := newSurface()
	cam := newCamera()
	c := NewOrbitControls(cam, surface)

	c.MaxPolarAngle = math.Pi / 2
	c.RotateUp(-1)
	c.Update()
	assert.InDelta(t, 0, cam.Position.Y(), 1e-4)
	assert.InDelta(t, 3, cam.Position.Z(), 1e-4)

	c.RotateUp(10)
	c.Update()
	assert.InDelta(t, 3, cam.Position.Y(), 1e-4)
	assert.InDelta(t, 3, cam.Position.Len(), 1e-4)
}

func TestDistanceIsClamped(t *testing.T) {
	_, surface := newSurface()
	cam := newCamera()
	c := NewOrbitControls(cam, surface)
	c.MinDistance = 2
	c.MaxDistance = 5

	c.DollyIn(0.1)
	c.Update()
	assert.InDelta(t, 2, cam.Position.Z(), 1e-4)

	c.DollyOut(0.01)
	c.Update()
	assert.InDelta(t, 5, cam.Position.Z(), 1e-4)
}

func TestWheelZooms(t *testing.T) {
	_, surface := newSurface()
	cam := newCamera()
	c := NewOrbitControls(cam, surface)

	surface.Pointer(host.PointerEvent{Kind: host.PointerWheel, DeltaY: -1})
	c.Update()
	assert.InDelta(t, 2.85, cam.Position.Z(), 1e-4)

	surface.Pointer(host.PointerEvent{Kind: host.PointerWheel, DeltaY: 1})
	c.Update()
	assert.InDelta(t, 3, cam.Position.Z(), 1e-4)
}

func TestPrimaryDragRotates(t *testing.T) {
	_, surface := newSurface()
	cam := newCamera()
	c := NewOrbitControls(cam, surface)

	surface.Pointer(host.PointerEvent{Kind: host.PointerDown, Button: host.ButtonPrimary, X: 400, Y: 300})
	surface.Pointer(host.PointerEvent{Kind: host.PointerMove, X: 460, Y: 300})
	surface.Pointer(host.PointerEvent{Kind: host.PointerUp, X: 460, Y: 300})
	surface.Pointer(host.PointerEvent{Kind: host.PointerMove, X: 600, Y: 300})
	c.Update()

	angle := 0.2 * math.Pi
	assertVec(t, mgl32.Vec3{-3 * float32(math.Sin(angle)), 0, 3 * float32(math.Cos(angle))}, cam.Position, 1e-4)
	assert.Equal(t, mgl32.Vec3{}, c.Target)
}

func TestDragPans(t *testing.T) {
	for name, down := range map[string]host.PointerEvent{
		"secondary":     {Kind: host.PointerDown, Button: host.ButtonSecondary, X: 400, Y: 300},
		"shift primary": {Kind: host.PointerDown, Button: host.ButtonPrimary, Shift: true, X: 400, Y: 300},
	} {
		t.Run(name, func(t *testing.T) {
			_, surface := newSurface()
			cam := newCamera()
			c := NewOrbitControls(cam, surface)

			surface.Pointer(down)
			surface.Pointer(host.PointerEvent{Kind: host.PointerMove, X: 500, Y: 300})
			c.Update()

			shift := 2 * 100 * 3 * math.Tan(37.5*math.Pi/180) / 600
			assert.InDelta(t, -shift, c.Target.X(), 1e-4)
			assert.InDelta(t, c.Target.X(), cam.Position.X(), 1e-4)
			assert.InDelta(t, 3, cam.Position.Z(), 1e-4)
		})
	}
}

func TestDisabledAndDisposedIgnoreInput(t *testing.T) {
	_, surface := newSurface()
	cam := newCamera()
	c := NewOrbitControls(cam, surface)

	c.Enabled = false
	surface.Pointer(host.PointerEvent{Kind: host.PointerWheel, DeltaY: -1})
	assert.False(t, c.Update())

	c.Enabled = true
	c.Dispose()
	surface.Pointer(host.PointerEvent{Kind: host.PointerWheel, DeltaY: -1})
	assert.False(t, c.Update())
	assert.InDelta(t, 3, cam.Position.Z(), 1e-5)
}

func TestApplyOrbitControl(t *testing.T) {
	h, surface := newSurface()
	rec := renderer.NewRecordingRenderer(renderer.Options{}, 0)
	stage := bootstrap.New(h, func(host.Surface, renderer.Options) (renderer.Render, error) {
		return rec, nil
	}, bootstrap.WithLogger(zaptest.NewLogger(t)))

	sc := scene.NewScene()
	cam := newCamera()
	calls := 0
	controls, handle := ApplyOrbitControl(context.Background(), stage, surface, rec, sc, cam, func(clock.Frame) { calls++ })
	t.Cleanup(controls.Dispose)
	require.True(t, controls.EnableDamping)
	assert.Equal(t, 1, calls)

	surface.Pointer(host.PointerEvent{Kind: host.PointerDown, Button: host.ButtonPrimary, X: 400, Y: 300})
	surface.Pointer(host.PointerEvent{Kind: host.PointerMove, X: 460, Y: 300})
	surface.Pointer(host.PointerEvent{Kind: host.PointerUp, X: 460, Y: 300})

	h.StepN(10)
	assert.Equal(t, 11, calls)
	assert.Equal(t, uint64(11), handle.Frames())
	assert.Less(t, cam.Position.X(), float32(0))
	assert.InDelta(t, 3, cam.Position.Len(), 1e-4)

	// the camera state is rendered in the tick it was updated in
	last, ok := rec.Last()
	require.True(t, ok)
	assertVec(t, cam.Position, last.CameraPosition, 1e-5)

	handle.Stop()
	h.StepN(3)
	assert.Equal(t, 11, calls)
}
