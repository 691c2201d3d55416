// Package abi defines the boundary type mapping between host Go values and
// guest linear memory.
//
// Every type that crosses the boundary has three things: a guest-memory layout
// (size, alignment, field offsets), a flat representation (how many stack
// slots it occupies in a trampoline signature), and a relocatability verdict
// (whether raw byte copy may move it).
//
// # Layouts
//
// Layouts follow C struct rules: fields at aligned offsets in declaration
// order, record alignment is the max field alignment, size is padded to a
// multiple of the alignment. A Calculator caches computed layouts.
//
// # Relocatability
//
// A type is trivially relocatable when moving it by memcpy cannot break an
// invariant: scalars, enums, borrow handles, and records composed of them.
// Strings and sequences own heap storage; owning handles would double-destroy
// if duplicated. Non-relocatable types may opt in with RegisterMover; a type
// that is neither relocatable nor opted in is rejected by ElementOps at
// binding time, so the unchecked bulk path never exists for it.
//
// # Mirrors
//
// Host code works with mirror structs whose layout matches the guest layout
// exactly. CheckMirror verifies the correspondence at registration, and the
// mirror types carry compile-time size assertions besides; WriteRecord and
// ReadRecord are the only places raw reinterpretation happens.
//
// # Strings
//
// Strings received from the guest are StrView values, valid only for the
// receiving call. Strings returned to the guest are owned buffers allocated
// through the guest's allocator; the host never exposes views of its own
// memory.
package abi
