package abi

// Info describes where a type lives in guest linear memory.
type Info struct {
	FieldOffs map[string]uint32
	Size      uint32
	Align     uint32
}

// AlignTo rounds offset up to the next multiple of align. align must be a
// power of two.
func AlignTo(offset, align uint32) uint32 {
	return (offset + align - 1) &^ (align - 1)
}

// Calculator computes and caches guest-memory layouts.
type Calculator struct {
	cache map[Type]Info
}

func NewCalculator() *Calculator {
	return &Calculator{
		cache: make(map[Type]Info),
	}
}

func (c *Calculator) Calculate(t Type) Info {
	switch typ := t.(type) {
	case Scalar:
		return scalarInfo(typ.K)
	case String:
		return Info{Size: 8, Align: 4} // [ptr: u32, len: u32]
	case *Enum:
		return Info{Size: 4, Align: 4} // u32 discriminant
	case *Seq:
		return Info{Size: 8, Align: 4} // [ptr: u32, len: u32]
	case Own, Borrow:
		return Info{Size: 4, Align: 4} // u32 handle
	case *Record:
		return c.calculateRecord(typ)
	default:
		return Info{Size: 0, Align: 1}
	}
}

func scalarInfo(k Kind) Info {
	switch k {
	case KindBool, KindU8, KindS8:
		return Info{Size: 1, Align: 1}
	case KindU16, KindS16:
		return Info{Size: 2, Align: 2}
	case KindU32, KindS32, KindF32, KindChar:
		return Info{Size: 4, Align: 4}
	case KindU64, KindS64, KindF64:
		return Info{Size: 8, Align: 8}
	default:
		return Info{Size: 0, Align: 1}
	}
}

func (c *Calculator) calculateRecord(r *Record) Info {
	if cached, ok := c.cache[r]; ok {
		return cached
	}

	if len(r.Fields) == 0 {
		info := Info{Size: 0, Align: 1}
		c.cache[r] = info
		return info
	}

	fieldOffs := make(map[string]uint32)
	maxAlign := uint32(1)
	offset := uint32(0)

	for _, field := range r.Fields {
		fieldLayout := c.Calculate(field.Type)

		offset = AlignTo(offset, fieldLayout.Align)
		fieldOffs[field.Name] = offset

		if fieldLayout.Align > maxAlign {
			maxAlign = fieldLayout.Align
		}

		offset += fieldLayout.Size
	}

	totalSize := AlignTo(offset, maxAlign)

	info := Info{
		Size:      totalSize,
		Align:     maxAlign,
		FieldOffs: fieldOffs,
	}
	c.cache[r] = info
	return info
}

// FlatCount is the number of stack slots a type occupies in a trampoline
// signature.
func FlatCount(t Type) int {
	return t.Kind().FlatCount()
}

// Complete reports whether a type has a usable layout at the point of binding.
// An empty record is the unit type and counts as complete; anything that
// computes to size zero otherwise does not.
func Complete(c *Calculator, t Type) bool {
	if r, ok := t.(*Record); ok && len(r.Fields) == 0 {
		return true
	}
	return c.Calculate(t).Size > 0
}
