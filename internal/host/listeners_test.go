package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListenersRemoveFreesSlot(t *testing.T) {
	var l Listeners[func() int]
	cancelA := l.Add(func() int { return 1 })
	l.Add(func() int { return 2 })
	cancelC := l.Add(func() int { return 3 })

	cancelA()
	cancelC()
	cancelC()
	assert.Equal(t, 1, l.Len())

	fns := l.Snapshot()
	if assert.Len(t, fns, 1) {
		assert.Equal(t, 2, fns[0]())
	}
}

func TestListenersRemoveDuringDispatch(t *testing.T) {
	var l Listeners[func()]
	var calls []string
	var cancelB func()
	l.Add(func() { calls = append(calls, "a"); cancelB() })
	cancelB = l.Add(func() { calls = append(calls, "b") })

	for _, fn := range l.Snapshot() {
		fn()
	}
	assert.Equal(t, []string{"a", "b"}, calls)
	assert.Equal(t, 1, l.Len())
}
