package bootstrap

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"GopherStage/internal/clock"
	"GopherStage/internal/renderer"
	"GopherStage/internal/scene"

	"go.uber.org/zap"
)

// FrameFunc runs once per tick, before that tick's render.
type FrameFunc func(frame clock.Frame)

// Chain runs fns in order as one FrameFunc. Nil entries are skipped.
func Chain(fns ...FrameFunc) FrameFunc {
	return func(frame clock.Frame) {
		for _, fn := range fns {
			if fn != nil {
				fn(frame)
			}
		}
	}
}

// LoopHandle controls a loop started by RunRenderLoop.
type LoopHandle struct {
	stopped   atomic.Bool
	frames    atomic.Uint64
	once      sync.Once
	done      chan struct{}
	mu        sync.Mutex
	stopAfter func() bool
	log       *zap.Logger
}

// Stop ends the loop. No callback or render starts after Stop returns on the
// host thread. Calling it more than once is harmless.
func (h *LoopHandle) Stop() {
	h.once.Do(func() {
		h.stopped.Store(true)
		h.mu.Lock()
		stopAfter := h.stopAfter
		h.mu.Unlock()
		if stopAfter != nil {
			stopAfter()
		}
		h.log.Debug("Render loop stopped", zap.Uint64("frames", h.Frames()))
		close(h.done)
	})
}

// Done is closed once the loop has stopped.
func (h *LoopHandle) Done() <-chan struct{} {
	return h.done
}

// Frames is the number of frames rendered so far.
func (h *LoopHandle) Frames() uint64 {
	return h.frames.Load()
}

func (h *LoopHandle) Running() bool {
	return !h.stopped.Load()
}

// RunRenderLoop calls fn and then renders sc through cam on every display
// refresh until the handle is stopped or ctx is done. The first tick runs
// before RunRenderLoop returns. fn may be nil.
func (s *Stage) RunRenderLoop(ctx context.Context, rend renderer.Render, sc *scene.Scene, cam *renderer.Camera, fn FrameFunc) *LoopHandle {
	h := &LoopHandle{done: make(chan struct{}), log: s.log}
	if ctx.Err() != nil {
		h.Stop()
		return h
	}
	// ctx may be cancelled before the assignment; Stop reads it under mu
	stopAfter := context.AfterFunc(ctx, h.Stop)
	h.mu.Lock()
	h.stopAfter = stopAfter
	h.mu.Unlock()

	clk := clock.New()
	var tick func(now time.Duration)
	tick = func(now time.Duration) {
		if !h.Running() || ctx.Err() != nil {
			h.Stop()
			return
		}
		frame := clk.Tick(now)
		if fn != nil {
			fn(frame)
		}
		// fn may have stopped the loop
		if !h.Running() {
			return
		}
		rend.Render(sc, cam)
		h.frames.Add(1)
		s.host.RequestAnimationFrame(tick)
	}

	s.log.Debug("Render loop started")
	tick(s.host.Now())
	return h
}
