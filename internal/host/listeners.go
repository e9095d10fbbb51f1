package host

// Listeners is an ordered callback list with removal by token. Removing a
// listener while the list is being dispatched is allowed. The zero value is
// ready to use; it is not safe for concurrent use.
type Listeners[F any] struct {
	next  int
	items []listener[F]
}

type listener[F any] struct {
	id int
	fn F
}

// Add appends fn and returns the func that removes it again.
func (l *Listeners[F]) Add(fn F) func() {
	l.next++
	id := l.next
	l.items = append(l.items, listener[F]{id: id, fn: fn})
	return func() { l.remove(id) }
}

func (l *Listeners[F]) remove(id int) {
	for i, it := range l.items {
		if it.id == id {
			l.items = append(l.items[:i:i], l.items[i+1:]...)
			return
		}
	}
}

// Snapshot returns the callbacks registered right now.
func (l *Listeners[F]) Snapshot() []F {
	out := make([]F, len(l.items))
	for i, it := range l.items {
		out[i] = it.fn
	}
	return out
}

func (l *Listeners[F]) Len() int {
	return len(l.items)
}

// frameQueue holds callbacks for the next tick. Callbacks scheduled while a tick
// is being dispatched land in the following tick.
type frameQueue struct {
	pending []FrameCallback
}

func (q *frameQueue) push(fn FrameCallback) {
	q.pending = append(q.pending, fn)
}

func (q *frameQueue) take() []FrameCallback {
	out := q.pending
	q.pending = nil
	return out
}

func (q *frameQueue) len() int {
	return len(q.pending)
}
