package bootstrap

import (
	"context"
	"errors"
	"testing"
	"time"

	"GopherStage/internal/clock"
	"GopherStage/internal/host"
	"GopherStage/internal/renderer"
	"GopherStage/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type testStage struct {
	*Stage
	host  *host.Headless
	built []*renderer.RecordingRenderer
}

func newTestStage(t *testing.T, ratio float64) *testStage {
	t.Helper()
	ts := &testStage{host: host.NewHeadless(800, 600, host.WithDevicePixelRatio(ratio))}
	ts.host.AddSurface("c")
	factory := func(surface host.Surface, opts renderer.Options) (renderer.Render, error) {
		r := renderer.NewRecordingRenderer(opts, 0)
		ts.built = append(ts.built, r)
		return r, nil
	}
	ts.Stage = New(ts.host, factory, WithLogger(zaptest.NewLogger(t)))
	return ts
}

func (ts *testStage) recorder(t *testing.T, rend renderer.Render) *renderer.RecordingRenderer {
	t.Helper()
	r, ok := rend.(*renderer.RecordingRenderer)
	require.True(t, ok)
	return r
}

type composer struct {
	width, height int
	ratio         float64
	calls         int
}

func (c *composer) SetSize(w, h int) {
	c.width, c.height = w, h
	c.calls++
}

func (c *composer) SetPixelRatio(r float64) { c.ratio = r }

func TestDefaultCameraScenario(t *testing.T) {
	ts := newTestStage(t, 1)

	rend, sc, surface, err := ts.CreateRenderSurface("c", ViewportConfig{Width: 800, Height: 600})
	require.NoError(t, err)
	assert.Equal(t, "c", surface.ID())

	mesh := scene.NewMesh("origin", scene.Box(1, 1, 1), nil)
	cam := ts.AttachDefaultCamera(sc, rend, WithFocalObject(mesh))

	assert.InDelta(t, 800.0/600.0, cam.AspectRatio, 1e-6)
	assert.Equal(t, mgl32.Vec3{0, 0, 3}, cam.Position)
	assert.InDelta(t, 0, cam.Front.Sub(mgl32.Vec3{0, 0, -1}).Len(), 1e-5)
	require.NotNil(t, cam.Target)
	assert.Equal(t, mgl32.Vec3{}, *cam.Target)
	assert.True(t, sc.Contains(mesh))
	assert.True(t, sc.Contains(cam))

	rec := ts.recorder(t, rend)
	assert.Equal(t, 1, rec.Frames(), "attach renders once")
	assert.Equal(t, float32(75), cam.Fov)
	assert.Equal(t, float32(0.1), cam.Near)
	assert.Equal(t, float32(2000), cam.Far)
}

func TestAspectFollowsResize(t *testing.T) {
	ts := newTestStage(t, 1)
	rend, sc, _, err := ts.CreateRenderSurface("c", ViewportConfig{Width: 800, Height: 600})
	require.NoError(t, err)
	cam := ts.AttachDefaultCamera(sc, rend)

	for _, size := range [][2]int{{1024, 768}, {300, 900}, {1920, 1080}, {1, 1}} {
		ts.host.Resize(size[0], size[1])
		assert.InDelta(t, float32(size[0])/float32(size[1]), cam.AspectRatio, 1e-6)
		want := mgl32.Perspective(mgl32.DegToRad(cam.Fov), cam.AspectRatio, cam.Near, cam.Far)
		assert.Equal(t, want, cam.Projection)
		w, h := rend.Size()
		assert.Equal(t, size[0], w)
		assert.Equal(t, size[1], h)
	}
}

func TestEffectivePixelRatioIsClamped(t *testing.T) {
	for _, device := range []float64{0.5, 1, 1.5, 2, 3, 5} {
		ts := newTestStage(t, device)
		rend, _, _, err := ts.CreateRenderSurface("c", ViewportConfig{Width: 800, Height: 600})
		require.NoError(t, err)
		assert.Equal(t, min(device, 2), rend.PixelRatio(), "device ratio %v", device)

		capped, _, _, err := ts.CreateRenderSurface("c", ViewportConfig{Width: 800, Height: 600, DevicePixelRatioCap: 1.5})
		require.NoError(t, err)
		assert.Equal(t, min(device, 1.5), capped.PixelRatio(), "device ratio %v", device)
	}
}

func TestResizeReappliesClampedRatio(t *testing.T) {
	ts := newTestStage(t, 1)
	rend, sc, _, err := ts.CreateRenderSurface("c", ViewportConfig{Width: 800, Height: 600, DevicePixelRatioCap: 1.25})
	require.NoError(t, err)
	ts.AttachDefaultCamera(sc, rend)

	ts.host.SetDevicePixelRatio(4)
	ts.host.Resize(640, 480)
	assert.Equal(t, 1.25, rend.PixelRatio())
	w, h := rend.DrawingBufferSize()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
}

func TestResizeIsIdempotent(t *testing.T) {
	ts := newTestStage(t, 3)
	rend, sc, _, err := ts.CreateRenderSurface("c", ViewportConfig{Width: 800, Height: 600})
	require.NoError(t, err)
	extra := &composer{}
	cam := ts.AttachDefaultCamera(sc, rend, WithResizeTargets(extra))

	ts.host.Resize(1280, 720)
	aspect, proj := cam.AspectRatio, cam.Projection
	w1, h1 := rend.Size()
	ratio := rend.PixelRatio()
	composerState := *extra

	ts.host.Resize(1280, 720)
	assert.Equal(t, aspect, cam.AspectRatio)
	assert.Equal(t, proj, cam.Projection)
	w2, h2 := rend.Size()
	assert.Equal(t, w1, w2)
	assert.Equal(t, h1, h2)
	assert.Equal(t, ratio, rend.PixelRatio())
	assert.Equal(t, composerState.width, extra.width)
	assert.Equal(t, composerState.ratio, extra.ratio)
	assert.Equal(t, 2.0, extra.ratio)
}

func TestResizeTrackingDisabled(t *testing.T) {
	ts := newTestStage(t, 1)
	rend, sc, _, err := ts.CreateRenderSurface("c", ViewportConfig{Width: 800, Height: 600})
	require.NoError(t, err)
	cam := ts.AttachDefaultCamera(sc, rend, WithResizeTracking(false))
	assert.Equal(t, 0, ts.host.ResizeListeners())

	ts.host.Resize(100, 100)
	assert.InDelta(t, 800.0/600.0, cam.AspectRatio, 1e-6)
}

func TestMissingSurfaceFailsFast(t *testing.T) {
	ts := newTestStage(t, 1)

	rend, sc, surface, err := ts.CreateRenderSurface("nope", ViewportConfig{Width: 800, Height: 600})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSurfaceNotFound))
	var notFound *SurfaceNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "nope", notFound.ID)
	assert.Nil(t, rend)
	assert.Nil(t, sc)
	assert.Nil(t, surface)
	assert.Empty(t, ts.built, "no renderer is constructed")
	assert.Equal(t, 0, ts.host.ResizeListeners())
}

func TestRendererFactoryError(t *testing.T) {
	boom := errors.New("no GL context")
	h := host.NewHeadless(800, 600)
	h.AddSurface("c")
	stage := New(h, func(host.Surface, renderer.Options) (renderer.Render, error) { return nil, boom })

	_, _, _, err := stage.CreateRenderSurface("c", ViewportConfig{})
	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, ErrSurfaceNotFound))
}

func TestZeroViewportUsesHostSize(t *testing.T) {
	ts := newTestStage(t, 1)
	rend, _, _, err := ts.CreateRenderSurface("c", ViewportConfig{})
	require.NoError(t, err)
	w, h := rend.Size()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
}

func TestSurfaceOptionsReachFactory(t *testing.T) {
	ts := newTestStage(t, 1)
	_, _, _, err := ts.CreateRenderSurface("c", ViewportConfig{},
		WithAntialias(true), WithPowerPreference(renderer.PowerHighPerformance))
	require.NoError(t, err)
	require.Len(t, ts.built, 1)
	assert.True(t, ts.built[0].Options.Antialias)
	assert.Equal(t, renderer.PowerHighPerformance, ts.built[0].Options.PowerPreference)
}

func TestFullscreenToggle(t *testing.T) {
	ts := newTestStage(t, 1)
	_, _, surface, err := ts.CreateRenderSurface("c", ViewportConfig{})
	require.NoError(t, err)
	hs := surface.(*host.HeadlessSurface)

	hs.DoubleClick()
	assert.Equal(t, surface, ts.host.FullscreenSurface())
	hs.DoubleClick()
	assert.Nil(t, ts.host.FullscreenSurface())
}

func TestFullscreenToggleDisabled(t *testing.T) {
	ts := newTestStage(t, 1)
	_, _, surface, err := ts.CreateRenderSurface("c", ViewportConfig{}, WithFullscreenToggle(false))
	require.NoError(t, err)

	surface.(*host.HeadlessSurface).DoubleClick()
	assert.Nil(t, ts.host.FullscreenSurface())
}

func TestFullscreenToggleCancel(t *testing.T) {
	ts := newTestStage(t, 1)
	_, _, surface, err := ts.CreateRenderSurface("c", ViewportConfig{}, WithFullscreenToggle(false))
	require.NoError(t, err)

	cancel := ts.EnableFullscreenToggle(surface)
	cancel()
	surface.(*host.HeadlessSurface).DoubleClick()
	assert.Nil(t, ts.host.FullscreenSurface())
}

func TestCallbackMutationVisibleInSameTick(t *testing.T) {
	ts := newTestStage(t, 1)
	setup, err := ts.CubeSetup("c", WithViewport(ViewportConfig{Width: 800, Height: 600}))
	require.NoError(t, err)
	rec := ts.recorder(t, setup.Renderer)

	handle := ts.RunRenderLoop(context.Background(), setup.Renderer, setup.Scene, setup.Camera, func(f clock.Frame) {
		setup.Mesh.SetPosition(float32(f.Index), 0, 0)
	})
	defer handle.Stop()

	ts.host.StepN(3)

	snaps := rec.Snapshots()
	// one render from AttachDefaultCamera, one synchronous first tick, three steps
	require.Len(t, snaps, 5)
	for i, snap := range snaps[1:] {
		assert.Equal(t, float32(i), snap.Meshes["cube"].X(), "tick %d", i)
	}
	assert.Equal(t, uint64(4), handle.Frames())
}

func TestFirstTickIsSynchronous(t *testing.T) {
	ts := newTestStage(t, 1)
	setup, err := ts.CubeSetup("c")
	require.NoError(t, err)

	var frames []clock.Frame
	handle := ts.RunRenderLoop(context.Background(), setup.Renderer, setup.Scene, setup.Camera, func(f clock.Frame) {
		frames = append(frames, f)
	})
	defer handle.Stop()

	require.Len(t, frames, 1)
	assert.Zero(t, frames[0].Delta)
	assert.Equal(t, 1, ts.host.PendingFrames())

	ts.host.Step()
	require.Len(t, frames, 2)
	assert.Equal(t, time.Second/60, frames[1].Delta)
}

func TestNilCallbackStillRenders(t *testing.T) {
	ts := newTestStage(t, 1)
	setup, err := ts.CubeSetup("c")
	require.NoError(t, err)

	handle := ts.RunRenderLoop(context.Background(), setup.Renderer, setup.Scene, setup.Camera, nil)
	defer handle.Stop()
	ts.host.StepN(2)
	assert.Equal(t, uint64(3), handle.Frames())
}

func TestStopEndsLoop(t *testing.T) {
	ts := newTestStage(t, 1)
	setup, err := ts.CubeSetup("c")
	require.NoError(t, err)
	rec := ts.recorder(t, setup.Renderer)

	calls := 0
	handle := ts.RunRenderLoop(context.Background(), setup.Renderer, setup.Scene, setup.Camera, func(clock.Frame) { calls++ })
	ts.host.Step()
	require.True(t, handle.Running())

	handle.Stop()
	handle.Stop()
	rendered := rec.Frames()
	ts.host.StepN(3)

	assert.False(t, handle.Running())
	assert.Equal(t, 2, calls)
	assert.Equal(t, rendered, rec.Frames())
	assert.Equal(t, 0, ts.host.PendingFrames())
	select {
	case <-handle.Done():
	default:
		t.Fatal("Done should be closed after Stop")
	}
}

func TestStopFromCallbackSkipsRender(t *testing.T) {
	ts := newTestStage(t, 1)
	setup, err := ts.CubeSetup("c")
	require.NoError(t, err)
	rec := ts.recorder(t, setup.Renderer)

	var handle *LoopHandle
	handle = ts.RunRenderLoop(context.Background(), setup.Renderer, setup.Scene, setup.Camera, func(f clock.Frame) {
		if f.Index == 1 {
			handle.Stop()
		}
	})
	ts.host.StepN(2)

	assert.Equal(t, uint64(1), handle.Frames())
	assert.Equal(t, 2, rec.Frames(), "attach render plus first tick")
}

func TestContextCancelStopsLoop(t *testing.T) {
	ts := newTestStage(t, 1)
	setup, err := ts.CubeSetup("c")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	handle := ts.RunRenderLoop(ctx, setup.Renderer, setup.Scene, setup.Camera, nil)
	ts.host.Step()
	cancel()

	select {
	case <-handle.Done():
	case <-time.After(time.Second):
		t.Fatal("loop did not stop after cancel")
	}
	before := handle.Frames()
	ts.host.StepN(2)
	assert.Equal(t, before, handle.Frames())
}

func TestCancelledContextNeverTicks(t *testing.T) {
	ts := newTestStage(t, 1)
	setup, err := ts.CubeSetup("c")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	handle := ts.RunRenderLoop(ctx, setup.Renderer, setup.Scene, setup.Camera, func(clock.Frame) { called = true })

	assert.False(t, called)
	assert.False(t, handle.Running())
	assert.Equal(t, 0, ts.host.PendingFrames())
}

func TestChainRunsInOrder(t *testing.T) {
	var order []int
	fn := Chain(func(clock.Frame) { order = append(order, 1) }, nil, func(clock.Frame) { order = append(order, 2) })
	fn(clock.Frame{})
	assert.Equal(t, []int{1, 2}, order)
}

func TestCubeSetup(t *testing.T) {
	ts := newTestStage(t, 1)
	setup, err := ts.CubeSetup("c")
	require.NoError(t, err)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, setup.Material.Color)
	assert.Nil(t, setup.Material.Map)
	assert.Equal(t, 24, setup.Mesh.Geometry.VertexCount())
	assert.Same(t, setup.Material, setup.Mesh.Material)

	tex := scene.NewTexture("door.png", nil)
	textured, err := ts.CubeSetup("c", WithTexture(tex))
	require.NoError(t, err)
	assert.Same(t, tex, textured.Material.Map)

	_, err = ts.CubeSetup("missing")
	assert.ErrorIs(t, err, ErrSurfaceNotFound)
}

func TestWithCameraReusesCamera(t *testing.T) {
	ts := newTestStage(t, 1)
	rend, sc, _, err := ts.CreateRenderSurface("c", ViewportConfig{Width: 1000, Height: 500})
	require.NoError(t, err)
	existing := renderer.NewPerspectiveCamera(40, 1, 1, 100)

	cam := ts.AttachDefaultCamera(sc, rend, WithCamera(existing), WithDepthOffset(7))
	assert.Same(t, existing, cam)
	assert.Equal(t, float32(40), cam.Fov)
	assert.Equal(t, float32(2), cam.AspectRatio)
	assert.Equal(t, float32(7), cam.Position.Z())
}

func TestUpdateRendererSizeRatioOnPlainSizer(t *testing.T) {
	var s sizerOnly
	UpdateRendererSizeRatio(&s, 10, 20, 3, 2)
	assert.Equal(t, [2]int{10, 20}, s.size)
}

type sizerOnly struct{ size [2]int }

func (s *sizerOnly) SetSize(w, h int) { s.size = [2]int{w, h} }

func TestEffectivePixelRatioDefaults(t *testing.T) {
	assert.Equal(t, 2.0, EffectivePixelRatio(5, 0))
	assert.Equal(t, 1.0, EffectivePixelRatio(0, 2))
	assert.Equal(t, 1.5, EffectivePixelRatio(1.5, -1))
}

func TestForgetRemovesStageListeners(t *testing.T) {
	ts := newTestStage(t, 1)
	for run := 0; run < 3; run++ {
		setup, err := ts.CubeSetup("c")
		require.NoError(t, err)
		assert.Equal(t, 2, ts.Listeners(setup.Renderer))
		assert.Equal(t, 1, ts.host.ResizeListeners())

		ts.Forget(setup.Renderer)
		assert.Equal(t, 0, ts.Listeners(setup.Renderer))
		assert.Equal(t, 0, ts.host.ResizeListeners(), "run %d", run)
		hs, _ := ts.host.Surface("c")
		assert.Equal(t, 0, hs.(*host.HeadlessSurface).DoubleClickListeners(), "run %d", run)
	}

	// a single live toggle still enters fullscreen on one double click
	_, _, surface, err := ts.CreateRenderSurface("c", ViewportConfig{})
	require.NoError(t, err)
	surface.(*host.HeadlessSurface).DoubleClick()
	assert.Equal(t, surface, ts.host.FullscreenSurface())
}

func TestContextCancelRacingStart(t *testing.T) {
	ts := newTestStage(t, 1)
	setup, err := ts.CubeSetup("c")
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		go cancel()
		handle := ts.RunRenderLoop(ctx, setup.Renderer, setup.Scene, setup.Camera, nil)
		select {
		case <-handle.Done():
		case <-time.After(time.Second):
			t.Fatalf("loop %d did not stop after cancel", i)
		}
		assert.False(t, handle.Running())
	}
}
