package examples

import (
	"context"
	"math/rand"

	"GopherStage/internal/assets"
	"GopherStage/internal/bootstrap"
	"GopherStage/internal/config"
	"GopherStage/internal/controls"
	"GopherStage/internal/debug"
	"GopherStage/internal/renderer"
	"GopherStage/internal/scene"

	"go.uber.org/zap"
)

// Env is what a demo runs against. It replaces the module level state the
// demos would otherwise share.
type Env struct {
	Stage  *bootstrap.Stage
	Config config.Config
	Panel  *debug.Panel
	Loader *assets.Loader
	Log    *zap.Logger
	Rand   *rand.Rand

	closers []func()
}

// NewEnv fills in a nop logger, an inactive panel and a time seeded Rand
// where they are missing.
func NewEnv(stage *bootstrap.Stage, cfg config.Config, panel *debug.Panel, loader *assets.Loader, seed int64) *Env {
	if panel == nil {
		panel = debug.New(false)
	}
	return &Env{
		Stage:  stage,
		Config: cfg,
		Panel:  panel,
		Loader: loader,
		Log:    stage.Logger(),
		Rand:   rand.New(rand.NewSource(seed)),
	}
}

func (e *Env) CanvasID() string {
	return e.Config.Host.CanvasID
}

func (e *Env) Viewport() bootstrap.ViewportConfig {
	return bootstrap.ViewportConfig{
		Width:               e.Config.Viewport.Width,
		Height:              e.Config.Viewport.Height,
		DevicePixelRatioCap: e.Config.Viewport.PixelRatioCap,
	}
}

// OnClose registers fn to run when the demo is torn down.
func (e *Env) OnClose(fn func()) {
	e.closers = append(e.closers, fn)
}

// Close runs the registered teardown in reverse order.
func (e *Env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
	e.closers = nil
}

func (e *Env) cube(opts ...bootstrap.CubeOption) (*bootstrap.Setup, error) {
	opts = append([]bootstrap.CubeOption{bootstrap.WithViewport(e.Viewport())}, opts...)
	setup, err := e.Stage.CubeSetup(e.CanvasID(), opts...)
	if err != nil {
		return nil, err
	}
	e.OnClose(func() {
		scene.Dispose(setup.Scene)
		e.Stage.Forget(setup.Renderer)
	})
	return setup, nil
}

// surface creates an empty scene on the configured canvas. The caller adds
// content and a camera.
func (e *Env) surface() (*bootstrap.Setup, error) {
	rend, sc, surface, err := e.Stage.CreateRenderSurface(e.CanvasID(), e.Viewport())
	if err != nil {
		return nil, err
	}
	e.OnClose(func() {
		scene.Dispose(sc)
		e.Stage.Forget(rend)
	})
	return &bootstrap.Setup{Renderer: rend, Scene: sc, Surface: surface}, nil
}

// orbit runs the loop with damped orbit controls, calling fn each frame.
func (e *Env) orbit(ctx context.Context, setup *bootstrap.Setup, fn bootstrap.FrameFunc) *bootstrap.LoopHandle {
	c, handle := controls.ApplyOrbitControl(ctx, e.Stage, setup.Surface, setup.Renderer, setup.Scene, setup.Camera, fn)
	e.OnClose(func() {
		handle.Stop()
		c.Dispose()
	})
	return handle
}

func (e *Env) loop(ctx context.Context, rend renderer.Render, sc *scene.Scene, cam *renderer.Camera, fn bootstrap.FrameFunc) *bootstrap.LoopHandle {
	handle := e.Stage.RunRenderLoop(ctx, rend, sc, cam, fn)
	e.OnClose(handle.Stop)
	return handle
}
