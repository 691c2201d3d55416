package handle

import "sync"

type slotState uint8

const (
	slotFree slotState = iota
	slotUninit
	slotLive
)

type uniqueSlot[T any] struct {
	value T
	state slotState
}

// Unique is an exclusive-ownership table. Each live handle owns its value;
// dropping the handle destroys the value exactly once unless it was released
// first. Slots are slab-allocated and recycled through a free list, so
// handles stay dense and lookups stay O(1).
type Unique[T any] struct {
	mu    sync.RWMutex
	slots []uniqueSlot[T]
	free  []Handle
	dtor  func(*T)

	notifier
}

// NewUnique creates an exclusive-ownership table. dtor runs once per value
// on Drop; nil falls back to the value's Dropper implementation, if any.
func NewUnique[T any](dtor func(*T)) *Unique[T] {
	return &Unique[T]{
		// slot 0 stays permanently free so Handle 0 is never issued.
		slots: make([]uniqueSlot[T], 1),
		dtor:  dtor,
	}
}

func (u *Unique[T]) alloc() Handle {
	if n := len(u.free); n > 0 {
		h := u.free[n-1]
		u.free = u.free[:n-1]
		return h
	}
	u.slots = append(u.slots, uniqueSlot[T]{})
	return Handle(len(u.slots) - 1)
}

// Uninit reserves a slot whose value has not been constructed yet. The only
// legal operations on it are Emplace and Drop; Get refuses it. Dropping an
// uninitialized slot frees it without running the destructor.
func (u *Unique[T]) Uninit() Handle {
	u.mu.Lock()
	h := u.alloc()
	u.slots[h].state = slotUninit
	u.mu.Unlock()
	u.notify(Event{Handle: h, Type: EventCreated})
	return h
}

// Emplace constructs the value for a slot reserved by Uninit, promoting it
// to live. Returns false if the handle is not an uninitialized slot.
func (u *Unique[T]) Emplace(h Handle, v T) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.validLocked(h) || u.slots[h].state != slotUninit {
		return false
	}
	u.slots[h].value = v
	u.slots[h].state = slotLive
	return true
}

// Adopt takes ownership of a constructed value and returns its handle.
func (u *Unique[T]) Adopt(v T) Handle {
	u.mu.Lock()
	h := u.alloc()
	u.slots[h] = uniqueSlot[T]{value: v, state: slotLive}
	u.mu.Unlock()
	u.notify(Event{Handle: h, Type: EventCreated})
	return h
}

// Get returns a pointer to the value of a live handle. The pointer is valid
// until the next mutating table operation; callers must not retain it across
// boundary calls.
func (u *Unique[T]) Get(h Handle) (*T, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	if !u.validLocked(h) || u.slots[h].state != slotLive {
		return nil, false
	}
	return &u.slots[h].value, true
}

// Release detaches the value from a live handle without destroying it. The
// slot is freed and ownership transfers to the caller; a later Drop of the
// same handle is a no-op.
func (u *Unique[T]) Release(h Handle) (T, bool) {
	var zero T
	u.mu.Lock()
	if !u.validLocked(h) || u.slots[h].state != slotLive {
		u.mu.Unlock()
		return zero, false
	}
	v := u.slots[h].value
	u.freeLocked(h)
	u.mu.Unlock()
	u.notify(Event{Handle: h, Type: EventReleased})
	return v, true
}

// Drop destroys the value of a live handle and frees its slot. Dropping an
// uninitialized slot frees it without running the destructor. Dropping a
// null, freed, or unknown handle is a no-op.
func (u *Unique[T]) Drop(h Handle) bool {
	u.mu.Lock()
	if !u.validLocked(h) || u.slots[h].state == slotFree {
		u.mu.Unlock()
		return false
	}
	live := u.slots[h].state == slotLive
	v := u.slots[h].value
	u.freeLocked(h)
	u.mu.Unlock()
	if live {
		dropValue(u.dtor, &v)
	}
	u.notify(Event{Handle: h, Type: EventDropped})
	return true
}

// Len reports the number of occupied slots, counting uninitialized ones.
func (u *Unique[T]) Len() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	n := 0
	for i := 1; i < len(u.slots); i++ {
		if u.slots[i].state != slotFree {
			n++
		}
	}
	return n
}

func (u *Unique[T]) validLocked(h Handle) bool {
	return h != Null && int(h) < len(u.slots)
}

func (u *Unique[T]) freeLocked(h Handle) {
	var zero T
	u.slots[h] = uniqueSlot[T]{value: zero, state: slotFree}
	u.free = append(u.free, h)
}
