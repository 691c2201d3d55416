package handle

import (
	"sync"
	"sync/atomic"
)

// control is the reference-count block behind a shared value. The strong
// count holds one implicit weak reference, so the block outlives the value
// while weak observers remain. constructed is atomic so a Get racing an
// Emplace on another goroutine observes the value only after it is written.
type control[T any] struct {
	value       T
	constructed atomic.Bool
	strong      atomic.Int32
	weak        atomic.Int32
	dtor        func(*T)
}

// release decrements the strong count and destroys the value on the last
// strong drop. Exactly one caller observes the transition to zero.
func (c *control[T]) release() {
	if c.strong.Add(-1) != 0 {
		return
	}
	if c.constructed.Load() {
		dropValue(c.dtor, &c.value)
	}
	c.weak.Add(-1)
}

// Shared is a shared-ownership table. Every handle holds one strong
// reference to a control block; Clone issues a new handle against the same
// block, and the value is destroyed exactly once, when the last strong
// reference drops.
type Shared[T any] struct {
	mu    sync.RWMutex
	slots []*control[T]
	free  []Handle
	dtor  func(*T)

	notifier
}

// NewShared creates a shared-ownership table. dtor runs once per value, on
// the last strong drop; nil falls back to the value's Dropper, if any.
func NewShared[T any](dtor func(*T)) *Shared[T] {
	return &Shared[T]{
		slots: make([]*control[T], 1),
		dtor:  dtor,
	}
}

func (s *Shared[T]) alloc(c *control[T]) Handle {
	s.mu.Lock()
	var h Handle
	if n := len(s.free); n > 0 {
		h = s.free[n-1]
		s.free = s.free[:n-1]
		s.slots[h] = c
	} else {
		s.slots = append(s.slots, c)
		h = Handle(len(s.slots) - 1)
	}
	s.mu.Unlock()
	s.notify(Event{Handle: h, Type: EventCreated})
	return h
}

func (s *Shared[T]) ctrl(h Handle) *control[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if h == Null || int(h) >= len(s.slots) {
		return nil
	}
	return s.slots[h]
}

func newControl[T any](dtor func(*T)) *control[T] {
	c := &control[T]{dtor: dtor}
	c.strong.Store(1)
	c.weak.Store(1)
	return c
}

// Uninit reserves a shared slot whose value has not been constructed. Drop
// on it frees the block without running the destructor.
func (s *Shared[T]) Uninit() Handle {
	return s.alloc(newControl(s.dtor))
}

// Emplace constructs the value behind an uninitialized shared handle. The
// value is written before the flag flips, so concurrent Gets never see a
// half-constructed value.
func (s *Shared[T]) Emplace(h Handle, v T) bool {
	c := s.ctrl(h)
	if c == nil || c.constructed.Load() {
		return false
	}
	c.value = v
	c.constructed.Store(true)
	return true
}

// Adopt takes shared ownership of a constructed value.
func (s *Shared[T]) Adopt(v T) Handle {
	c := newControl(s.dtor)
	c.value = v
	c.constructed.Store(true)
	return s.alloc(c)
}

// Clone issues a new handle holding an additional strong reference to the
// same value. Cloning a null or freed handle returns Null.
func (s *Shared[T]) Clone(h Handle) Handle {
	c := s.ctrl(h)
	if c == nil {
		return Null
	}
	c.strong.Add(1)
	return s.alloc(c)
}

// Get returns a pointer to the value of a constructed shared handle.
func (s *Shared[T]) Get(h Handle) (*T, bool) {
	c := s.ctrl(h)
	if c == nil || !c.constructed.Load() {
		return nil, false
	}
	return &c.value, true
}

// Drop releases one strong reference and frees the slot. The value is
// destroyed when the last strong reference goes away. Dropping a null or
// freed handle is a no-op.
func (s *Shared[T]) Drop(h Handle) bool {
	s.mu.Lock()
	if h == Null || int(h) >= len(s.slots) || s.slots[h] == nil {
		s.mu.Unlock()
		return false
	}
	c := s.slots[h]
	s.slots[h] = nil
	s.free = append(s.free, h)
	s.mu.Unlock()
	c.release()
	s.notify(Event{Handle: h, Type: EventDropped})
	return true
}

// Strong reports the strong count behind a handle, for diagnostics.
func (s *Shared[T]) Strong(h Handle) int32 {
	c := s.ctrl(h)
	if c == nil {
		return 0
	}
	return c.strong.Load()
}

// Len reports the number of occupied slots.
func (s *Shared[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for i := 1; i < len(s.slots); i++ {
		if s.slots[i] != nil {
			n++
		}
	}
	return n
}
