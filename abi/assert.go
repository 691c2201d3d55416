package abi

import (
	"reflect"

	"github.com/questline/modbridge/errors"
)

// scalarGoKinds maps wire scalar kinds to the Go kinds a mirror field may use.
var scalarGoKinds = map[Kind][]reflect.Kind{
	KindBool: {reflect.Bool, reflect.Uint8},
	KindU8:   {reflect.Uint8},
	KindS8:   {reflect.Int8},
	KindU16:  {reflect.Uint16},
	KindS16:  {reflect.Int16},
	KindU32:  {reflect.Uint32},
	KindS32:  {reflect.Int32},
	KindU64:  {reflect.Uint64},
	KindS64:  {reflect.Int64},
	KindF32:  {reflect.Float32},
	KindF64:  {reflect.Float64},
	KindChar: {reflect.Int32, reflect.Uint32},
}

// CheckMirror verifies that a Go struct is a faithful mirror of a record's
// guest-memory layout: same field count and order, matching scalar widths,
// matching offsets, matching total size. Bound records are bulk-copied between
// the mirror and guest memory, so any disagreement here would silently corrupt
// values; the check runs at registration, before a guest can exist.
func CheckMirror(c *Calculator, goType reflect.Type, rec *Record) error {
	if goType.Kind() != reflect.Struct {
		return errors.TypeMismatch(errors.PhaseRegister, []string{rec.Name}, goType.String(), rec.WireName())
	}

	if goType.NumField() != len(rec.Fields) {
		return errors.New(errors.PhaseRegister, errors.KindTypeMismatch).
			Path(rec.Name).
			GoType(goType.String()).
			WireType(rec.WireName()).
			Detail("mirror has %d fields, record has %d", goType.NumField(), len(rec.Fields)).
			Build()
	}

	info := c.Calculate(rec)

	for i, wf := range rec.Fields {
		gf := goType.Field(i)

		scalar, ok := wf.Type.(Scalar)
		if !ok {
			// Mirrors exist only for trivially relocatable records.
			if _, isEnum := wf.Type.(*Enum); !isEnum {
				return errors.NotRelocatable(errors.PhaseRegister, rec.WireName(), wf.Name)
			}
			scalar = Scalar{KindU32}
		}

		if !goKindAllowed(scalar.K, gf.Type.Kind()) {
			return errors.TypeMismatch(errors.PhaseRegister,
				[]string{rec.Name, wf.Name}, gf.Type.String(), wf.Type.WireName())
		}

		wireOff := info.FieldOffs[wf.Name]
		if uint32(gf.Offset) != wireOff {
			return errors.New(errors.PhaseRegister, errors.KindTypeMismatch).
				Path(rec.Name, wf.Name).
				GoType(goType.String()).
				WireType(rec.WireName()).
				Detail("Go offset %d, wire offset %d", gf.Offset, wireOff).
				Build()
		}

		wireSize := scalarInfo(scalar.K).Size
		if uint32(gf.Type.Size()) != wireSize {
			return errors.New(errors.PhaseRegister, errors.KindTypeMismatch).
				Path(rec.Name, wf.Name).
				GoType(gf.Type.String()).
				WireType(wf.Type.WireName()).
				Detail("Go size %d, wire size %d", gf.Type.Size(), wireSize).
				Build()
		}
	}

	if uint32(goType.Size()) != info.Size {
		return errors.New(errors.PhaseRegister, errors.KindTypeMismatch).
			Path(rec.Name).
			GoType(goType.String()).
			WireType(rec.WireName()).
			Detail("Go size %d, wire size %d", goType.Size(), info.Size).
			Build()
	}

	return nil
}

func goKindAllowed(wire Kind, gk reflect.Kind) bool {
	for _, allowed := range scalarGoKinds[wire] {
		if allowed == gk {
			return true
		}
	}
	return false
}

// CheckHandleRep verifies that handle-bearing types flatten to exactly one
// 32-bit word, the representation every guest toolchain here assumes.
func CheckHandleRep(c *Calculator, t Type) error {
	k := t.Kind()
	if k != KindOwn && k != KindBorrow {
		return errors.InvalidInput(errors.PhaseRegister, "not a handle type: "+t.WireName())
	}
	info := c.Calculate(t)
	if info.Size != 4 || info.Align != 4 || FlatCount(t) != 1 {
		return errors.New(errors.PhaseRegister, errors.KindTypeMismatch).
			WireType(t.WireName()).
			Detail("handle must be one 32-bit word (size %d, align %d)", info.Size, info.Align).
			Build()
	}
	return nil
}
