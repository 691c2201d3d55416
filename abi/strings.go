package abi

import (
	"unicode/utf8"

	modbridge "github.com/questline/modbridge"
	"github.com/questline/modbridge/errors"
)

// StrView is a (ptr, len) pair into guest linear memory. It is valid only for
// the duration of the call that received it and must never be stored.
type StrView struct {
	Ptr uint32
	Len uint32
}

// Bytes returns the viewed guest bytes. The slice aliases linear memory and
// shares StrView's call-scoped lifetime.
func (v StrView) Bytes(mem modbridge.Memory) ([]byte, error) {
	if v.Len == 0 {
		return nil, nil
	}
	return mem.Read(v.Ptr, v.Len)
}

// String copies the viewed text into a host-owned string, validating UTF-8.
func (v StrView) String(mem modbridge.Memory) (string, error) {
	b, err := v.Bytes(mem)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", errors.InvalidData(errors.PhaseMarshal, nil, "string is not valid UTF-8")
	}
	return string(b), nil
}

// WriteOwnedString allocates a guest-heap buffer through the guest's own
// allocator, copies s into it, and returns the (ptr, len) pair. The guest owns
// the buffer; callee text must not outlive the call as a view, so ownership
// transfer is the only safe way to return a string.
func WriteOwnedString(mem modbridge.Memory, alloc modbridge.Allocator, s string) (uint32, uint32, error) {
	if len(s) == 0 {
		return 0, 0, nil
	}

	ptr, err := alloc.Alloc(uint32(len(s)), 1)
	if err != nil {
		return 0, 0, errors.AllocationFailed(errors.PhaseMarshal, uint32(len(s)), 1)
	}

	if err := mem.Write(ptr, []byte(s)); err != nil {
		alloc.Free(ptr, uint32(len(s)), 1)
		return 0, 0, errors.Wrap(errors.PhaseMarshal, errors.KindOutOfBounds, err, "write string")
	}

	return ptr, uint32(len(s)), nil
}

// WriteCString writes s NUL-terminated into a caller-provided buffer of max
// bytes, truncating if needed. Mirrors the fixed-buffer text convention some
// native operations use instead of owned strings.
func WriteCString(mem modbridge.Memory, ptr, max uint32, s string) error {
	if max == 0 {
		return nil
	}
	b := []byte(s)
	if uint32(len(b)) >= max {
		b = b[:max-1]
	}
	if err := mem.Write(ptr, b); err != nil {
		return errors.Wrap(errors.PhaseMarshal, errors.KindOutOfBounds, err, "write text buffer")
	}
	return mem.WriteU8(ptr+uint32(len(b)), 0)
}
