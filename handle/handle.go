package handle

import "sync"

// Handle is an opaque reference to a value in an ownership table.
// Handle 0 is reserved and always invalid; it is the null state of every
// adapter family.
type Handle uint32

// Null is the empty handle. Provided for symmetry with the boundary surface:
// the null constructor of every adapter family returns it.
const Null Handle = 0

// Dropper is optionally implemented by values that need cleanup when their
// owning handle is dropped. Tables constructed without an explicit destructor
// fall back to it.
type Dropper interface {
	Drop()
}

// EventType identifies a lifecycle transition.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDropped
	EventReleased
)

// Event describes a handle lifecycle transition.
type Event struct {
	Handle Handle
	Type   EventType
}

// Observer receives lifecycle notifications.
type Observer interface {
	OnHandleEvent(Event)
}

// notifier is the observer list shared by the table kinds.
type notifier struct {
	observers []Observer
	mu        sync.RWMutex
}

func (n *notifier) Subscribe(o Observer) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.observers = append(n.observers, o)
}

func (n *notifier) Unsubscribe(o Observer) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, obs := range n.observers {
		if obs == o {
			n.observers = append(n.observers[:i], n.observers[i+1:]...)
			return
		}
	}
}

func (n *notifier) notify(e Event) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for _, o := range n.observers {
		o.OnHandleEvent(e)
	}
}

// dropValue invokes the table destructor, falling back to Dropper.
func dropValue[T any](dtor func(*T), v *T) {
	if dtor != nil {
		dtor(v)
		return
	}
	if d, ok := any(*v).(Dropper); ok {
		d.Drop()
	}
}
