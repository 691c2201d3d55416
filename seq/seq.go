// Package seq implements the homogeneous sequence adapter. A Vector stores
// its elements contiguously in a host-side byte buffer at the element's wire
// stride, so whole-vector transfers to and from guest memory are a single
// bulk copy. The element type must be trivially relocatable or carry a
// registered mover; abi.ElementOps enforces that at construction, so the
// unchecked access path never exists for a type that cannot survive it.
package seq

import (
	"github.com/questline/modbridge/abi"
	"github.com/questline/modbridge/errors"
)

// Vector is a growable homogeneous sequence over a wire element type.
type Vector struct {
	ops  abi.ElemOps
	elem abi.Type
	data []byte
	n    int
}

// New creates an empty vector of the given element type. It fails if the
// element type has no valid transfer strategy.
func New(c *abi.Calculator, elem abi.Type) (*Vector, error) {
	ops, err := abi.ElementOps(c, elem)
	if err != nil {
		return nil, err
	}
	if ops.Size == 0 {
		return nil, errors.Unsupported(errors.PhaseLayout, "zero-size sequence element "+elem.WireName())
	}
	return &Vector{ops: ops, elem: elem}, nil
}

// Elem returns the element wire type.
func (v *Vector) Elem() abi.Type { return v.elem }

// Stride returns the per-element byte stride.
func (v *Vector) Stride() uint32 { return v.ops.Size }

// Len returns the number of elements.
func (v *Vector) Len() int { return v.n }

// Get returns the storage of element i as a live subslice of the vector's
// buffer. No bounds check is performed beyond the slice expression itself;
// the caller is expected to have validated i against Len. The slice is
// invalidated by the next PushBack.
func (v *Vector) Get(i int) []byte {
	off := i * int(v.ops.Size)
	return v.data[off : off+int(v.ops.Size)]
}

// At is the checked variant of Get.
func (v *Vector) At(i int) ([]byte, error) {
	if i < 0 || i >= v.n {
		return nil, errors.OutOfBounds(errors.PhaseInvoke, nil, i, v.n)
	}
	return v.Get(i), nil
}

// PushBack appends an element by moving src into the vector. src must hold
// exactly one element; it is left dead after the call.
func (v *Vector) PushBack(src []byte) error {
	stride := int(v.ops.Size)
	if len(src) != stride {
		return errors.InvalidInput(errors.PhaseInvoke, "element size mismatch for "+v.elem.WireName())
	}
	need := (v.n + 1) * stride
	if cap(v.data) < need {
		grown := make([]byte, need, growCap(cap(v.data), need))
		// Relocating the backing store is a bulk move of the live prefix.
		copy(grown, v.data[:v.n*stride])
		v.data = grown
	} else {
		v.data = v.data[:need]
	}
	v.ops.Move(v.data[v.n*stride:need], src)
	v.n++
	return nil
}

// PopBack moves the last element out into dst and shrinks the vector.
// Popping an empty vector fails; dst must hold exactly one element.
func (v *Vector) PopBack(dst []byte) error {
	if v.n == 0 {
		return errors.InvalidData(errors.PhaseInvoke, nil, "pop from empty sequence")
	}
	stride := int(v.ops.Size)
	if len(dst) != stride {
		return errors.InvalidInput(errors.PhaseInvoke, "element size mismatch for "+v.elem.WireName())
	}
	v.n--
	v.ops.Move(dst, v.data[v.n*stride:(v.n+1)*stride])
	v.data = v.data[:v.n*stride]
	return nil
}

// Bytes returns the live element storage as one contiguous slice, for bulk
// transfer into guest memory.
func (v *Vector) Bytes() []byte {
	return v.data[:v.n*int(v.ops.Size)]
}

// Drop destroys all remaining elements and empties the vector.
func (v *Vector) Drop() {
	stride := int(v.ops.Size)
	for i := 0; i < v.n; i++ {
		v.ops.Mover.Drop(v.data[i*stride : (i+1)*stride])
	}
	v.data = v.data[:0]
	v.n = 0
}

func growCap(cur, need int) int {
	if cur == 0 {
		return need
	}
	for cur < need {
		cur *= 2
	}
	return cur
}
