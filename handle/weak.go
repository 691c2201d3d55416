package handle

import "sync"

// Weak is a non-owning observer table bound to a Shared table. Weak handles
// keep the control block alive but not the value: once the last strong
// reference drops, Upgrade returns Null and the value is gone.
type Weak[T any] struct {
	shared *Shared[T]
	mu     sync.RWMutex
	slots  []*control[T]
	free   []Handle
}

// NewWeak creates an observer table over s. Handles issued here live in a
// separate handle space from s's.
func NewWeak[T any](s *Shared[T]) *Weak[T] {
	return &Weak[T]{
		shared: s,
		slots:  make([]*control[T], 1),
	}
}

func (w *Weak[T]) alloc(c *control[T]) Handle {
	w.mu.Lock()
	defer w.mu.Unlock()
	if n := len(w.free); n > 0 {
		h := w.free[n-1]
		w.free = w.free[:n-1]
		w.slots[h] = c
		return h
	}
	w.slots = append(w.slots, c)
	return Handle(len(w.slots) - 1)
}

func (w *Weak[T]) ctrl(h Handle) *control[T] {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if h == Null || int(h) >= len(w.slots) {
		return nil
	}
	return w.slots[h]
}

// Downgrade creates a weak handle observing the value behind a shared
// handle. Downgrading a null or freed handle returns Null.
func (w *Weak[T]) Downgrade(shared Handle) Handle {
	c := w.shared.ctrl(shared)
	if c == nil {
		return Null
	}
	c.weak.Add(1)
	return w.alloc(c)
}

// Clone issues another weak handle observing the same value.
func (w *Weak[T]) Clone(h Handle) Handle {
	c := w.ctrl(h)
	if c == nil {
		return Null
	}
	c.weak.Add(1)
	return w.alloc(c)
}

// Upgrade attempts to recover shared ownership. It returns a new shared
// handle if the value is still alive, and Null once the last strong
// reference has dropped. The strong count is raced with concurrent drops,
// so the increment only succeeds against a nonzero count.
func (w *Weak[T]) Upgrade(h Handle) Handle {
	c := w.ctrl(h)
	if c == nil {
		return Null
	}
	for {
		n := c.strong.Load()
		if n == 0 {
			return Null
		}
		if c.strong.CompareAndSwap(n, n+1) {
			return w.shared.alloc(c)
		}
	}
}

// Drop releases a weak handle. Dropping a null or freed handle is a no-op.
func (w *Weak[T]) Drop(h Handle) bool {
	w.mu.Lock()
	if h == Null || int(h) >= len(w.slots) || w.slots[h] == nil {
		w.mu.Unlock()
		return false
	}
	c := w.slots[h]
	w.slots[h] = nil
	w.free = append(w.free, h)
	w.mu.Unlock()
	c.weak.Add(-1)
	return true
}

// Len reports the number of live weak handles.
func (w *Weak[T]) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	n := 0
	for i := 1; i < len(w.slots); i++ {
		if w.slots[i] != nil {
			n++
		}
	}
	return n
}
