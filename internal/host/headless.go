package host

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrClosed = errors.New("host closed")

// Headless is an in-memory Host. Frames advance on Step or on a fixed-rate
// ticker inside Run, with a synthetic clock so timing is deterministic.
type Headless struct {
	mu         sync.Mutex
	surfaces   map[string]*HeadlessSurface
	width      int
	height     int
	ratio      float64
	interval   time.Duration
	now        time.Duration
	resize     Listeners[ResizeCallback]
	frames     frameQueue
	posted     []func()
	fullscreen *HeadlessSurface
	closed     bool
}

type HeadlessOption func(*Headless)

// WithFrameInterval sets the synthetic time between ticks (default 1/60s).
func WithFrameInterval(d time.Duration) HeadlessOption {
	return func(h *Headless) {
		if d > 0 {
			h.interval = d
		}
	}
}

func WithDevicePixelRatio(r float64) HeadlessOption {
	return func(h *Headless) {
		h.ratio = r
	}
}

func NewHeadless(width, height int, opts ...HeadlessOption) *Headless {
	h := &Headless{
		surfaces: make(map[string]*HeadlessSurface),
		width:    width,
		height:   height,
		ratio:    1,
		interval: time.Second / 60,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// AddSurface registers a surface that always covers the whole viewport.
func (h *Headless) AddSurface(id string) *HeadlessSurface {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := &HeadlessSurface{id: id, host: h}
	h.surfaces[id] = s
	return s
}

func (h *Headless) Surface(id string) (Surface, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.surfaces[id]
	if !ok {
		return nil, false
	}
	return s, true
}

func (h *Headless) ViewportSize() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.width, h.height
}

func (h *Headless) DevicePixelRatio() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ratio
}

func (h *Headless) SetDevicePixelRatio(r float64) {
	h.mu.Lock()
	h.ratio = r
	h.mu.Unlock()
}

func (h *Headless) OnResize(fn ResizeCallback) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	cancel := h.resize.Add(fn)
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		cancel()
	}
}

// ResizeListeners reports how many resize listeners are registered.
func (h *Headless) ResizeListeners() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.resize.Len()
}

// Resize changes the viewport and synchronously notifies resize listeners.
func (h *Headless) Resize(width, height int) {
	h.mu.Lock()
	h.width, h.height = width, height
	fns := h.resize.Snapshot()
	h.mu.Unlock()

	for _, fn := range fns {
		fn(width, height)
	}
}

func (h *Headless) RequestAnimationFrame(fn FrameCallback) {
	h.mu.Lock()
	h.frames.push(fn)
	h.mu.Unlock()
}

// PendingFrames reports how many callbacks wait for the next tick.
func (h *Headless) PendingFrames() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frames.len()
}

// Post queues fn to run on the host thread before the next tick's frames.
func (h *Headless) Post(fn func()) {
	h.mu.Lock()
	h.posted = append(h.posted, fn)
	h.mu.Unlock()
}

// Now is the synthetic time of the last tick.
func (h *Headless) Now() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.now
}

// Step runs posted work and then one frame tick. It returns the number of frame
// callbacks that ran.
func (h *Headless) Step() int {
	h.mu.Lock()
	posted := h.posted
	h.posted = nil
	h.mu.Unlock()
	for _, fn := range posted {
		fn()
	}

	h.mu.Lock()
	h.now += h.interval
	now := h.now
	fns := h.frames.take()
	h.mu.Unlock()

	for _, fn := range fns {
		fn(now)
	}
	return len(fns)
}

// StepN runs n ticks.
func (h *Headless) StepN(n int) {
	for i := 0; i < n; i++ {
		h.Step()
	}
}

func (h *Headless) FullscreenSurface() Surface {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.fullscreen == nil {
		return nil
	}
	return h.fullscreen
}

func (h *Headless) ExitFullscreen() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.fullscreen == nil {
		return errors.New("no surface is fullscreen")
	}
	h.fullscreen = nil
	return nil
}

func (h *Headless) Close() {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
}

// Run ticks at the frame interval until ctx is done or Close is called.
func (h *Headless) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		h.mu.Lock()
		closed := h.closed
		h.mu.Unlock()
		if closed {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			h.Step()
		}
	}
}

type HeadlessSurface struct {
	id          string
	host        *Headless
	doubleClick Listeners[func()]
	pointer     Listeners[func(PointerEvent)]
}

func (s *HeadlessSurface) ID() string { return s.id }

func (s *HeadlessSurface) Size() (int, int) {
	return s.host.ViewportSize()
}

func (s *HeadlessSurface) OnDoubleClick(fn func()) func() {
	s.host.mu.Lock()
	defer s.host.mu.Unlock()
	cancel := s.doubleClick.Add(fn)
	return func() {
		s.host.mu.Lock()
		defer s.host.mu.Unlock()
		cancel()
	}
}

func (s *HeadlessSurface) OnPointer(fn func(PointerEvent)) func() {
	s.host.mu.Lock()
	defer s.host.mu.Unlock()
	cancel := s.pointer.Add(fn)
	return func() {
		s.host.mu.Lock()
		defer s.host.mu.Unlock()
		cancel()
	}
}

func (s *HeadlessSurface) RequestFullscreen() error {
	s.host.mu.Lock()
	defer s.host.mu.Unlock()
	s.host.fullscreen = s
	return nil
}

// DoubleClickListeners reports how many double click listeners are registered.
func (s *HeadlessSurface) DoubleClickListeners() int {
	s.host.mu.Lock()
	defer s.host.mu.Unlock()
	return s.doubleClick.Len()
}

// PointerListeners reports how many pointer listeners are registered.
func (s *HeadlessSurface) PointerListeners() int {
	s.host.mu.Lock()
	defer s.host.mu.Unlock()
	return s.pointer.Len()
}

// DoubleClick simulates a double activation on the surface.
func (s *HeadlessSurface) DoubleClick() {
	s.host.mu.Lock()
	fns := s.doubleClick.Snapshot()
	s.host.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Pointer simulates a pointer event on the surface.
func (s *HeadlessSurface) Pointer(ev PointerEvent) {
	s.host.mu.Lock()
	fns := s.pointer.Snapshot()
	s.host.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}
