// Package host implements the trampoline layer: one guest-importable
// function per native operation, named "<type>$<operation>" inside a
// versioned namespace.
//
// Each trampoline reads already-flattened arguments off the call stack and
// writes results back the way the boundary mandates: floats and handles by
// register, enums and records through caller-provided return pointers, and
// strings as owned buffers allocated on the guest heap. Trampolines never
// return errors to the guest; a contract violation panics, which surfaces
// to the guest call as a trap.
//
// Hosts declare a signature string per trampoline. Registration parses the
// declared types, flattens them to core value types, and rejects the host
// on any mismatch with the implementation's declared stack shape; faults
// that would otherwise corrupt a call are caught before a guest exists.
package host
