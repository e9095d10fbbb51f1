package bootstrap

import (
	"fmt"

	"GopherStage/internal/host"
	"GopherStage/internal/renderer"
	"GopherStage/internal/scene"

	"go.uber.org/zap"
)

// ViewportConfig sizes a render surface. Zero Width or Height takes the
// host's current viewport size; a cap of 0 or less means DefaultPixelRatioCap.
type ViewportConfig struct {
	Width               int
	Height              int
	DevicePixelRatioCap float64
}

type surfaceOptions struct {
	allowFullscreen bool
	antialias       bool
	powerPreference string
}

type SurfaceOption func(*surfaceOptions)

// WithFullscreenToggle controls the double-click fullscreen listener.
func WithFullscreenToggle(enabled bool) SurfaceOption {
	return func(o *surfaceOptions) { o.allowFullscreen = enabled }
}

func WithAntialias(enabled bool) SurfaceOption {
	return func(o *surfaceOptions) { o.antialias = enabled }
}

// WithPowerPreference is one of the renderer.Power* values.
func WithPowerPreference(pref string) SurfaceOption {
	return func(o *surfaceOptions) { o.powerPreference = pref }
}

// EffectivePixelRatio is min(device, cap), with cap <= 0 meaning the default.
// The ratio sizes the drawing buffer and offscreen targets; a window's GL
// viewport still covers its whole framebuffer.
func EffectivePixelRatio(device, ratioCap float64) float64 {
	if ratioCap <= 0 {
		ratioCap = DefaultPixelRatioCap
	}
	if device <= 0 {
		device = 1
	}
	return min(device, ratioCap)
}

// UpdateRendererSizeRatio sets size and the clamped pixel ratio on target.
// The ratio is only applied when target tracks one.
func UpdateRendererSizeRatio(target renderer.Sizer, width, height int, deviceRatio, ratioCap float64) {
	target.SetSize(width, height)
	if pr, ok := target.(renderer.PixelRatioSetter); ok {
		pr.SetPixelRatio(EffectivePixelRatio(deviceRatio, ratioCap))
	}
}

// CreateRenderSurface binds a new renderer and an empty scene to the surface
// named canvasID. An unknown id fails before any renderer is built.
func (s *Stage) CreateRenderSurface(canvasID string, vp ViewportConfig, opts ...SurfaceOption) (renderer.Render, *scene.Scene, host.Surface, error) {
	surface, ok := s.host.Surface(canvasID)
	if !ok {
		return nil, nil, nil, &SurfaceNotFoundError{ID: canvasID}
	}

	o := surfaceOptions{
		allowFullscreen: s.defaults.AllowFullscreen,
		antialias:       s.defaults.Antialias,
		powerPreference: s.defaults.PowerPreference,
	}
	for _, opt := range opts {
		opt(&o)
	}

	width, height := vp.Width, vp.Height
	if width == 0 || height == 0 {
		hw, hh := s.host.ViewportSize()
		if width == 0 {
			width = hw
		}
		if height == 0 {
			height = hh
		}
	}
	ratioCap := vp.DevicePixelRatioCap
	if ratioCap <= 0 {
		ratioCap = s.defaults.PixelRatioCap
	}

	rend, err := s.newRenderer(surface, renderer.Options{
		Antialias:       o.antialias,
		PowerPreference: o.powerPreference,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create renderer for %q: %w", canvasID, err)
	}
	s.bindingFor(rend).ratioCap = ratioCap
	UpdateRendererSizeRatio(rend, width, height, s.host.DevicePixelRatio(), ratioCap)

	if o.allowFullscreen {
		s.onForget(rend, s.EnableFullscreenToggle(surface))
	}

	s.log.Info("Render surface created",
		zap.String("canvas", canvasID),
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Float64("pixelRatio", rend.PixelRatio()))
	return rend, scene.NewScene(), surface, nil
}

// EnableFullscreenToggle flips surface between fullscreen and windowed on
// double activation. The returned func removes the listener.
func (s *Stage) EnableFullscreenToggle(surface host.Surface) func() {
	return surface.OnDoubleClick(func() {
		if s.host.FullscreenSurface() == nil {
			if err := surface.RequestFullscreen(); err != nil {
				s.log.Warn("Enter fullscreen failed", zap.String("surface", surface.ID()), zap.Error(err))
			}
			return
		}
		if err := s.host.ExitFullscreen(); err != nil {
			s.log.Warn("Exit fullscreen failed", zap.String("surface", surface.ID()), zap.Error(err))
		}
	})
}
