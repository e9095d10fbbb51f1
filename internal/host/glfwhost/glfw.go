// Package glfwhost implements host.Host on top of GLFW windows. Every method
// must be called from the main OS thread; callers lock it in an init func.
package glfwhost

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"GopherStage/internal/host"
	"GopherStage/internal/logger"

	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"
)

// doubleClickWindow is the longest gap between two presses that still counts
// as a double click.
const doubleClickWindow = 400 * time.Millisecond

type Options struct {
	Antialias bool
	// PowerPreference has no GLFW hint. "low-power" disables multisampling.
	PowerPreference string
}

type Host struct {
	windows    map[string]*Window
	primary    *Window
	resize     host.Listeners[host.ResizeCallback]
	frames     []host.FrameCallback
	fullscreen *Window
	opts       Options
	start      float64
}

func New(opts Options) (*Host, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("initialize glfw: %w", err)
	}

	glfw.WindowHint(glfw.Decorated, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.DepthBits, 24)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	if opts.Antialias && opts.PowerPreference != "low-power" {
		glfw.WindowHint(glfw.Samples, 4)
	}
	logger.Log.Debug("GLFW initialized",
		zap.Bool("antialias", opts.Antialias),
		zap.String("powerPreference", opts.PowerPreference))

	return &Host{
		windows: make(map[string]*Window),
		opts:    opts,
		start:   glfw.GetTime(),
	}, nil
}

// CreateSurface opens a window registered under id. The first window becomes
// the primary one: its size is the viewport and closing it ends Run.
func (h *Host) CreateSurface(id string, width, height int, title string) (*Window, error) {
	if _, exists := h.windows[id]; exists {
		return nil, fmt.Errorf("surface %q already exists", id)
	}

	var share *glfw.Window
	if h.primary != nil {
		share = h.primary.win
	}
	win, err := glfw.CreateWindow(width, height, title, nil, share)
	if err != nil {
		return nil, fmt.Errorf("create window %q: %w", id, err)
	}

	w := &Window{id: id, win: win, host: h}
	win.SetMouseButtonCallback(w.mouseButtonCallback)
	win.SetCursorPosCallback(w.cursorPosCallback)
	win.SetScrollCallback(w.scrollCallback)

	if h.primary == nil {
		h.primary = w
		win.MakeContextCurrent()
		glfw.SwapInterval(1)
		win.SetSizeCallback(h.sizeCallback)
	}
	h.windows[id] = w

	logger.Log.Info("Surface created",
		zap.String("id", id),
		zap.Int("width", width),
		zap.Int("height", height))
	return w, nil
}

func (h *Host) Surface(id string) (host.Surface, bool) {
	w, ok := h.windows[id]
	if !ok {
		return nil, false
	}
	return w, true
}

func (h *Host) ViewportSize() (int, int) {
	if h.primary == nil {
		return 0, 0
	}
	return h.primary.win.GetSize()
}

// DevicePixelRatio is framebuffer pixels per logical pixel, falling back to
// the monitor content scale when the window has no area.
func (h *Host) DevicePixelRatio() float64 {
	if h.primary == nil {
		return 1
	}
	w, _ := h.primary.win.GetSize()
	fw, _ := h.primary.win.GetFramebufferSize()
	if w > 0 && fw > 0 {
		return float64(fw) / float64(w)
	}
	sx, _ := h.primary.win.GetContentScale()
	if sx <= 0 {
		return 1
	}
	return float64(sx)
}

func (h *Host) OnResize(fn host.ResizeCallback) func() {
	return h.resize.Add(fn)
}

func (h *Host) sizeCallback(_ *glfw.Window, width, height int) {
	if width == 0 || height == 0 {
		// minimised
		return
	}
	for _, fn := range h.resize.Snapshot() {
		fn(width, height)
	}
}

func (h *Host) RequestAnimationFrame(fn host.FrameCallback) {
	h.frames = append(h.frames, fn)
}

func (h *Host) FullscreenSurface() host.Surface {
	if h.fullscreen == nil {
		return nil
	}
	return h.fullscreen
}

func (h *Host) ExitFullscreen() error {
	w := h.fullscreen
	if w == nil {
		return errors.New("no surface is fullscreen")
	}
	w.win.SetMonitor(nil, w.savedX, w.savedY, w.savedW, w.savedH, 0)
	h.fullscreen = nil
	return nil
}

// Now is the time since New.
func (h *Host) Now() time.Duration {
	return time.Duration((glfw.GetTime() - h.start) * float64(time.Second))
}

// Run polls events, dispatches resize and input callbacks, then runs the frame
// callbacks queued for this tick, draws the primary window's overlays and
// swaps buffers. SwapInterval(1) ties each
// iteration to the display refresh.
func (h *Host) Run(ctx context.Context) error {
	if h.primary == nil {
		return errors.New("no surface created")
	}
	for !h.primary.win.ShouldClose() {
		if ctx.Err() != nil {
			return nil
		}
		glfw.PollEvents()

		now := h.Now()
		fns := h.frames
		h.frames = nil
		for _, fn := range fns {
			fn(now)
		}
		for _, o := range h.primary.overlays.Snapshot() {
			o.Draw()
		}

		h.primary.win.SwapBuffers()
	}
	return nil
}

// Terminate destroys every window and shuts GLFW down.
func (h *Host) Terminate() {
	for id, w := range h.windows {
		w.win.Destroy()
		delete(h.windows, id)
	}
	h.primary = nil
	glfw.Terminate()
}

// Overlay draws on top of a window once the frame is rendered, for example
// a debug GUI. It sees pointer input first and may claim it.
type Overlay interface {
	HandlePointer(ev host.PointerEvent)
	// WantsPointer reports whether the overlay is under the pointer or
	// being dragged.
	WantsPointer() bool
	Draw()
}

// Window is a GLFW window exposed as a host.Surface.
type Window struct {
	id   string
	win  *glfw.Window
	host *Host

	doubleClick host.Listeners[func()]
	pointer     host.Listeners[func(host.PointerEvent)]
	overlays    host.Listeners[Overlay]

	lastPress  time.Time
	lastPressX float64
	lastPressY float64

	savedX, savedY, savedW, savedH int
}

func (w *Window) ID() string { return w.id }

func (w *Window) Size() (int, int) {
	return w.win.GetSize()
}

// MakeContextCurrent binds the window's GL context to the calling thread.
func (w *Window) MakeContextCurrent() {
	w.win.MakeContextCurrent()
}

// FramebufferSize is the drawable size in physical pixels.
func (w *Window) FramebufferSize() (int, int) {
	return w.win.GetFramebufferSize()
}

func (w *Window) OnDoubleClick(fn func()) func() {
	return w.doubleClick.Add(fn)
}

func (w *Window) OnPointer(fn func(host.PointerEvent)) func() {
	return w.pointer.Add(fn)
}

// AddOverlay draws o on the window every frame until the returned func is
// called.
func (w *Window) AddOverlay(o Overlay) func() {
	return w.overlays.Add(o)
}

func (w *Window) RequestFullscreen() error {
	monitor := glfw.GetPrimaryMonitor()
	if monitor == nil {
		return errors.New("no primary monitor")
	}
	mode := monitor.GetVideoMode()
	w.savedX, w.savedY = w.win.GetPos()
	w.savedW, w.savedH = w.win.GetSize()
	w.win.SetMonitor(monitor, 0, 0, mode.Width, mode.Height, mode.RefreshRate)
	w.host.fullscreen = w
	return nil
}

// emitPointer reports false when an overlay claimed ev.
func (w *Window) emitPointer(ev host.PointerEvent) bool {
	if claimedByOverlay(w.overlays.Snapshot(), ev) {
		return false
	}
	for _, fn := range w.pointer.Snapshot() {
		fn(ev)
	}
	return true
}

// claimedByOverlay hands ev to every overlay. Releases are never claimed so
// drags that started in the scene still end there.
func claimedByOverlay(overlays []Overlay, ev host.PointerEvent) bool {
	claimed := false
	for _, o := range overlays {
		o.HandlePointer(ev)
		if o.WantsPointer() {
			claimed = true
		}
	}
	return claimed && ev.Kind != host.PointerUp
}

func (w *Window) shiftDown() bool {
	return w.win.GetKey(glfw.KeyLeftShift) == glfw.Press || w.win.GetKey(glfw.KeyRightShift) == glfw.Press
}

func (w *Window) mouseButtonCallback(win *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	x, y := win.GetCursorPos()
	ev := host.PointerEvent{
		X:     x,
		Y:     y,
		Shift: mods&glfw.ModShift != 0,
	}
	switch button {
	case glfw.MouseButtonLeft:
		ev.Button = host.ButtonPrimary
	case glfw.MouseButtonRight:
		ev.Button = host.ButtonSecondary
	case glfw.MouseButtonMiddle:
		ev.Button = host.ButtonMiddle
	default:
		return
	}

	switch action {
	case glfw.Press:
		ev.Kind = host.PointerDown
		if w.emitPointer(ev) && button == glfw.MouseButtonLeft {
			w.detectDoubleClick(x, y)
		}
	case glfw.Release:
		ev.Kind = host.PointerUp
		w.emitPointer(ev)
	}
}

func (w *Window) detectDoubleClick(x, y float64) {
	now := time.Now()
	near := math.Abs(x-w.lastPressX) < 4 && math.Abs(y-w.lastPressY) < 4
	if !w.lastPress.IsZero() && now.Sub(w.lastPress) <= doubleClickWindow && near {
		w.lastPress = time.Time{}
		for _, fn := range w.doubleClick.Snapshot() {
			fn()
		}
		return
	}
	w.lastPress = now
	w.lastPressX, w.lastPressY = x, y
}

func (w *Window) cursorPosCallback(_ *glfw.Window, x, y float64) {
	w.emitPointer(host.PointerEvent{Kind: host.PointerMove, X: x, Y: y, Shift: w.shiftDown()})
}

func (w *Window) scrollCallback(win *glfw.Window, _, yoff float64) {
	x, y := win.GetCursorPos()
	// Browser wheel events report positive deltaY when scrolling down.
	w.emitPointer(host.PointerEvent{Kind: host.PointerWheel, X: x, Y: y, DeltaY: -yoff * 100, Shift: w.shiftDown()})
}

var _ host.Host = (*Host)(nil)
var _ host.Surface = (*Window)(nil)
