package abi

import (
	"sync"

	"github.com/questline/modbridge/errors"
)

// Relocatable reports whether a value of t can be moved by raw byte copy
// without running per-element transfer logic. Scalars and enums qualify;
// strings and sequences own heap storage; owning handles would double-destroy
// if duplicated byte-for-byte. A record qualifies only if every field does.
func Relocatable(t Type) bool {
	switch typ := t.(type) {
	case Scalar:
		return true
	case *Enum:
		return true
	case Borrow:
		return true
	case *Record:
		for _, f := range typ.Fields {
			if !Relocatable(f.Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// firstNonRelocatable names the field that disqualifies a record, for error
// reporting.
func firstNonRelocatable(r *Record) string {
	for _, f := range r.Fields {
		if !Relocatable(f.Type) {
			return f.Name
		}
	}
	return ""
}

// Mover supplies explicit element transfer for a type that is not trivially
// relocatable. Move transfers src into dst and leaves src dead; Drop destroys
// a live element in place.
type Mover struct {
	Move func(dst, src []byte)
	Drop func(b []byte)
}

// ElemOps is the per-element transfer strategy the sequence adapter uses.
// For relocatable types Move is a plain copy and Drop is a no-op.
type ElemOps struct {
	Mover
	Size  uint32
	Align uint32
}

// movers holds explicit opt-ins, keyed by wire name.
var (
	moversMu sync.RWMutex
	movers   = make(map[string]Mover)
)

// RegisterMover opts a type into the sequence fast path with explicit
// move/drop callbacks. Overrides any previous registration for the name.
// Safe to call concurrently with ElementOps.
func RegisterMover(wireName string, m Mover) {
	moversMu.Lock()
	movers[wireName] = m
	moversMu.Unlock()
}

// ElementOps resolves the transfer strategy for a sequence element type.
// A type that is neither trivially relocatable nor explicitly opted in is
// rejected here, at binding time; the unchecked bulk path never exists for it.
func ElementOps(c *Calculator, t Type) (ElemOps, error) {
	info := c.Calculate(t)

	if !Complete(c, t) {
		return ElemOps{}, errors.IncompleteType(errors.PhaseLayout, t.WireName())
	}

	if Relocatable(t) {
		return ElemOps{
			Size:  info.Size,
			Align: info.Align,
			Mover: Mover{
				Move: func(dst, src []byte) {
					copy(dst, src)
				},
				Drop: func([]byte) {},
			},
		}, nil
	}

	moversMu.RLock()
	m, ok := movers[t.WireName()]
	moversMu.RUnlock()
	if ok {
		return ElemOps{Size: info.Size, Align: info.Align, Mover: m}, nil
	}

	field := t.WireName()
	if r, ok := t.(*Record); ok {
		field = firstNonRelocatable(r)
	}
	return ElemOps{}, errors.NotRelocatable(errors.PhaseLayout, t.WireName(), field)
}
