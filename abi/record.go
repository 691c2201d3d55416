package abi

import (
	"reflect"
	"unsafe"

	modbridge "github.com/questline/modbridge"
	"github.com/questline/modbridge/errors"
)

// mirrorBytes reinterprets a mirror struct as its raw bytes. Only legal for
// types that passed CheckMirror; the layout gates exist so this is the sole
// place raw reinterpretation happens.
func mirrorBytes(v any) ([]byte, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return nil, errors.InvalidInput(errors.PhaseMarshal, "mirror must be a non-nil struct pointer")
	}
	size := rv.Elem().Type().Size()
	return unsafe.Slice((*byte)(rv.UnsafePointer()), size), nil
}

// WriteRecord constructs a record in place at ptr in guest memory from its
// host mirror. This is the in-place construction path used for return
// pointers: results land in caller-provided storage, never in registers.
func WriteRecord(mem modbridge.Memory, ptr uint32, mirror any) error {
	b, err := mirrorBytes(mirror)
	if err != nil {
		return err
	}
	if err := mem.Write(ptr, b); err != nil {
		return errors.Wrap(errors.PhaseMarshal, errors.KindOutOfBounds, err, "write record")
	}
	return nil
}

// ReadRecord reads a record from guest memory into its host mirror.
func ReadRecord(mem modbridge.Memory, ptr uint32, mirror any) error {
	b, err := mirrorBytes(mirror)
	if err != nil {
		return err
	}
	data, err := mem.Read(ptr, uint32(len(b)))
	if err != nil {
		return errors.Wrap(errors.PhaseMarshal, errors.KindOutOfBounds, err, "read record")
	}
	copy(b, data)
	return nil
}

// WriteEnum constructs an enum discriminant in place at ptr. Enum results
// never travel by register; the discriminant is validated against the case
// count before it is written.
func WriteEnum(mem modbridge.Memory, ptr uint32, e *Enum, disc uint32) error {
	if int(disc) >= len(e.Cases) {
		return errors.InvalidEnum(errors.PhaseMarshal, nil, disc, e.Name)
	}
	if err := mem.WriteU32(ptr, disc); err != nil {
		return errors.Wrap(errors.PhaseMarshal, errors.KindOutOfBounds, err, "write enum")
	}
	return nil
}
