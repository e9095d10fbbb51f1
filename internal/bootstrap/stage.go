// Package bootstrap wires a renderer, scene and camera to a host surface and
// drives the per-frame loop that every demo shares.
package bootstrap

import (
	"errors"
	"fmt"

	"GopherStage/internal/config"
	"GopherStage/internal/host"
	"GopherStage/internal/logger"
	"GopherStage/internal/renderer"

	"go.uber.org/zap"
)

// DefaultPixelRatioCap limits the drawing buffer to twice the logical size.
// Higher device ratios cost fill rate without visible gain.
const DefaultPixelRatioCap = 2.0

// ErrSurfaceNotFound is matched by every *SurfaceNotFoundError.
var ErrSurfaceNotFound = errors.New("surface not found")

// SurfaceNotFoundError reports a canvas id the host does not know.
type SurfaceNotFoundError struct {
	ID string
}

func (e *SurfaceNotFoundError) Error() string {
	return fmt.Sprintf("surface %q not found", e.ID)
}

func (e *SurfaceNotFoundError) Is(target error) bool {
	return target == ErrSurfaceNotFound
}

// RendererFactory builds a renderer bound to a surface.
type RendererFactory func(surface host.Surface, opts renderer.Options) (renderer.Render, error)

// Defaults are the values applied when a call does not override them.
type Defaults struct {
	Fov             float32
	Near            float32
	Far             float32
	DepthOffset     float32
	PixelRatioCap   float64
	AllowFullscreen bool
	Antialias       bool
	PowerPreference string
}

// DefaultsFromConfig maps the config sections onto stage defaults.
func DefaultsFromConfig(cfg config.Config) Defaults {
	return Defaults{
		Fov:             cfg.Camera.Fov,
		Near:            cfg.Camera.Near,
		Far:             cfg.Camera.Far,
		DepthOffset:     cfg.Camera.DepthOffset,
		PixelRatioCap:   cfg.Viewport.PixelRatioCap,
		AllowFullscreen: cfg.Host.AllowFullscreen,
		Antialias:       cfg.Host.Antialias,
		PowerPreference: cfg.Host.PowerPreference,
	}
}

// Stage is the explicit context every bootstrap operation runs against.
// It is used from the host thread only.
type Stage struct {
	host        host.Host
	newRenderer RendererFactory
	defaults    Defaults
	log         *zap.Logger

	bound map[renderer.Render]*binding
}

// binding is what the stage registered on behalf of one renderer.
type binding struct {
	ratioCap float64
	// teardown removes host and surface listeners, run in reverse by Forget
	teardown []func()
}

type Option func(*Stage)

func WithLogger(l *zap.Logger) Option {
	return func(s *Stage) { s.log = l }
}

func WithDefaults(d Defaults) Option {
	return func(s *Stage) { s.defaults = d }
}

func WithConfig(cfg config.Config) Option {
	return WithDefaults(DefaultsFromConfig(cfg))
}

func New(h host.Host, factory RendererFactory, opts ...Option) *Stage {
	s := &Stage{
		host:        h,
		newRenderer: factory,
		defaults:    DefaultsFromConfig(config.Default()),
		bound:       make(map[renderer.Render]*binding),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Log
	}
	return s
}

func (s *Stage) Host() host.Host {
	return s.host
}

func (s *Stage) Defaults() Defaults {
	return s.defaults
}

func (s *Stage) Logger() *zap.Logger {
	return s.log
}

// Forget removes every listener the stage registered for rend, then cleans
// rend up.
func (s *Stage) Forget(rend renderer.Render) {
	if b, ok := s.bound[rend]; ok {
		for i := len(b.teardown) - 1; i >= 0; i-- {
			b.teardown[i]()
		}
		delete(s.bound, rend)
	}
	rend.Cleanup()
}

func (s *Stage) bindingFor(rend renderer.Render) *binding {
	b, ok := s.bound[rend]
	if !ok {
		b = &binding{ratioCap: s.defaults.PixelRatioCap}
		s.bound[rend] = b
	}
	return b
}

// onForget registers cancel to run when rend is forgotten.
func (s *Stage) onForget(rend renderer.Render, cancel func()) {
	b := s.bindingFor(rend)
	b.teardown = append(b.teardown, cancel)
}

// Listeners reports how many listeners the stage holds for rend.
func (s *Stage) Listeners(rend renderer.Render) int {
	if b, ok := s.bound[rend]; ok {
		return len(b.teardown)
	}
	return 0
}

func (s *Stage) capFor(rend renderer.Render) float64 {
	if b, ok := s.bound[rend]; ok {
		return b.ratioCap
	}
	return s.defaults.PixelRatioCap
}
