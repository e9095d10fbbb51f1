package behaviour

import (
	"testing"
	"time"

	"GopherStage/internal/clock"
)

type MockBehaviour struct {
	startCalled   int
	updateCalled  int
	fixedCalled   int
	destroyCalled int
	onUpdate      func()
}

func (m *MockBehaviour) Start() { m.startCalled++ }

func (m *MockBehaviour) Update(clock.Frame) {
	m.updateCalled++
	if m.onUpdate != nil {
		m.onUpdate()
	}
}

func (m *MockBehaviour) FixedUpdate(time.Duration) { m.fixedCalled++ }

func (m *MockBehaviour) OnDestroy() { m.destroyCalled++ }

func TestManagerStartsOnce(t *testing.T) {
	m := NewManager()
	b := &MockBehaviour{}
	m.Add(b)

	if b.startCalled != 0 {
		t.Fatal("Start() should not run on Add")
	}

	m.Update(clock.Frame{})
	m.Update(clock.Frame{})

	if b.startCalled != 1 {
		t.Errorf("Expected Start() once, got %d", b.startCalled)
	}
	if b.updateCalled != 2 {
		t.Errorf("Expected 2 Update() calls, got %d", b.updateCalled)
	}
}

func TestManagerIgnoresDuplicatesAndNil(t *testing.T) {
	m := NewManager()
	b := &MockBehaviour{}
	m.Add(b)
	m.Add(b)
	m.Add(nil)

	if m.Len() != 1 {
		t.Errorf("Expected 1 behaviour, got %d", m.Len())
	}
}

func TestManagerUpdateOrder(t *testing.T) {
	m := NewManager()
	var order []int
	for i := 0; i < 3; i++ {
		i := i
		m.Add(Func(func(clock.Frame) { order = append(order, i) }))
	}
	m.Update(clock.Frame{})

	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Errorf("Expected insertion order, got %v", order)
	}
}

func TestManagerRemove(t *testing.T) {
	m := NewManager()
	a, b, c := &MockBehaviour{}, &MockBehaviour{}, &MockBehaviour{}
	m.Add(a)
	m.Add(b)
	m.Add(c)

	m.Remove(b)
	m.Update(clock.Frame{})

	if b.updateCalled != 0 {
		t.Error("Removed behaviour should not update")
	}
	if b.destroyCalled != 1 {
		t.Errorf("Expected OnDestroy() once, got %d", b.destroyCalled)
	}
	if a.updateCalled != 1 || c.updateCalled != 1 {
		t.Error("Remaining behaviours should update")
	}

	m.Remove(b)
	if b.destroyCalled != 1 {
		t.Error("Removing twice should not destroy twice")
	}
}

func TestManagerRemoveDuringUpdate(t *testing.T) {
	m := NewManager()
	victim := &MockBehaviour{}
	killer := &MockBehaviour{}
	killer.onUpdate = func() { m.Remove(victim) }
	m.Add(killer)
	m.Add(victim)

	m.Update(clock.Frame{})

	if victim.updateCalled != 0 {
		t.Error("Behaviour removed earlier in the frame should not update")
	}
}

func TestManagerAddDuringUpdate(t *testing.T) {
	m := NewManager()
	late := &MockBehaviour{}
	adder := &MockBehaviour{}
	adder.onUpdate = func() { m.Add(late) }
	m.Add(adder)

	m.Update(clock.Frame{})
	if late.updateCalled != 0 {
		t.Error("Behaviour added during Update should wait for the next frame")
	}

	m.Update(clock.Frame{})
	if late.startCalled != 1 || late.updateCalled != 1 {
		t.Errorf("Expected late behaviour to start and update once, got %d/%d", late.startCalled, late.updateCalled)
	}
}

func TestManagerClear(t *testing.T) {
	m := NewManager()
	a, b := &MockBehaviour{}, &MockBehaviour{}
	m.Add(a)
	m.Add(b)

	m.Clear()
	m.Update(clock.Frame{})

	if m.Len() != 0 {
		t.Errorf("Expected empty manager, got %d", m.Len())
	}
	if a.destroyCalled != 1 || b.destroyCalled != 1 {
		t.Error("Clear should destroy every behaviour")
	}
	if a.updateCalled != 0 {
		t.Error("Cleared behaviour should not update")
	}
}

func TestManagerFixedSteps(t *testing.T) {
	m := NewManager(WithFixedStep(10 * time.Millisecond))
	b := &MockBehaviour{}
	m.Add(b)

	m.Update(clock.Frame{Delta: 25 * time.Millisecond})
	if b.fixedCalled != 2 {
		t.Errorf("Expected 2 fixed steps, got %d", b.fixedCalled)
	}

	// 5ms carried over
	m.Update(clock.Frame{Delta: 5 * time.Millisecond})
	if b.fixedCalled != 3 {
		t.Errorf("Expected 3 fixed steps, got %d", b.fixedCalled)
	}

	m.Update(clock.Frame{Delta: time.Second})
	if b.fixedCalled != 3+maxFixedSteps {
		t.Errorf("Expected fixed steps capped at %d, got %d", maxFixedSteps, b.fixedCalled-3)
	}
}

func TestManagerWithoutFixedStep(t *testing.T) {
	m := NewManager()
	b := &MockBehaviour{}
	m.Add(b)
	m.Update(clock.Frame{Delta: time.Second})

	if b.fixedCalled != 0 {
		t.Error("FixedUpdate should not run without a fixed step")
	}
}
