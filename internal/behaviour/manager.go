// Package behaviour runs per-frame scripts attached to a stage's render loop.
package behaviour

import (
	"time"

	"GopherStage/internal/clock"

	"go.uber.org/zap"
)

// Behaviour is a script driven by a Manager. Start runs once, right before
// the first Update the behaviour receives.
type Behaviour interface {
	Start()
	Update(frame clock.Frame)
}

// FixedUpdater is implemented by behaviours that also need fixed time steps.
type FixedUpdater interface {
	FixedUpdate(step time.Duration)
}

// Destroyer is implemented by behaviours that release something on removal.
type Destroyer interface {
	OnDestroy()
}

// Func adapts a plain frame function to a Behaviour.
type Func func(frame clock.Frame)

func (f Func) Start() {}

func (f Func) Update(frame clock.Frame) { f(frame) }

// maxFixedSteps bounds the fixed updates run for one frame after a stall.
const maxFixedSteps = 5

type entry struct {
	behaviour Behaviour
	started   bool
	removed   bool
}

type Manager struct {
	entries   []*entry
	fixedStep time.Duration
	acc       time.Duration
	log       *zap.Logger
}

type Option func(*Manager)

// WithFixedStep enables FixedUpdate calls every step of frame time.
func WithFixedStep(step time.Duration) Option {
	return func(m *Manager) { m.fixedStep = step }
}

func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.log = l }
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{log: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Add registers b. Adding nil or an already registered behaviour does nothing.
// A behaviour added during Update starts on the next frame.
func (m *Manager) Add(b Behaviour) {
	if b == nil || m.index(b) >= 0 {
		return
	}
	m.entries = append(m.entries, &entry{behaviour: b})
}

func (m *Manager) index(b Behaviour) int {
	for i, e := range m.entries {
		if e.behaviour == b {
			return i
		}
	}
	return -1
}

// Remove unregisters b, keeping the order of the others, and calls its
// OnDestroy if it has one.
func (m *Manager) Remove(b Behaviour) {
	i := m.index(b)
	if i < 0 {
		return
	}
	e := m.entries[i]
	e.removed = true
	m.entries = append(m.entries[:i:i], m.entries[i+1:]...)
	destroy(e.behaviour)
}

// Clear removes all behaviours.
func (m *Manager) Clear() {
	entries := m.entries
	m.entries = nil
	m.acc = 0
	for _, e := range entries {
		e.removed = true
		destroy(e.behaviour)
	}
}

func (m *Manager) Len() int {
	return len(m.entries)
}

func destroy(b Behaviour) {
	if d, ok := b.(Destroyer); ok {
		d.OnDestroy()
	}
}

// Update starts new behaviours, updates all of them in insertion order and
// then runs any due fixed steps. It has the signature of a loop FrameFunc.
func (m *Manager) Update(frame clock.Frame) {
	entries := append([]*entry(nil), m.entries...)
	for _, e := range entries {
		if e.removed {
			continue
		}
		if !e.started {
			e.started = true
			e.behaviour.Start()
		}
		e.behaviour.Update(frame)
	}

	if m.fixedStep <= 0 {
		return
	}
	m.acc += frame.Delta
	steps := 0
	for m.acc >= m.fixedStep {
		m.acc -= m.fixedStep
		steps++
		if steps > maxFixedSteps {
			m.log.Debug("Dropping fixed steps", zap.Duration("behind", m.acc))
			m.acc = 0
			break
		}
		for _, e := range entries {
			if f, ok := e.behaviour.(FixedUpdater); ok && e.started && !e.removed {
				f.FixedUpdate(m.fixedStep)
			}
		}
	}
}
