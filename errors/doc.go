// Package errors provides structured error types for modbridge.
//
// Errors carry a Phase (where in processing) and a Kind (what went wrong) so
// callers can match with errors.Is without string comparison:
//
//	if errors.Is(err, &errors.Error{Phase: errors.PhaseRegister, Kind: errors.KindTypeMismatch}) {
//	    ...
//	}
//
// The boundary itself is non-throwing: trampolines never hand one of these to
// a guest. Everything here serves registration, loading, and host-side
// marshaling, where failing early with context beats a trap later.
package errors
