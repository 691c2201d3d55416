package abi

type Kind uint8

const (
	KindBool Kind = iota
	KindU8
	KindS8
	KindU16
	KindS16
	KindU32
	KindS32
	KindU64
	KindS64
	KindF32
	KindF64
	KindChar
	KindString
	KindEnum
	KindRecord
	KindSeq
	KindOwn
	KindBorrow
)

var kindNames = [...]string{
	KindBool:   "bool",
	KindU8:     "u8",
	KindS8:     "s8",
	KindU16:    "u16",
	KindS16:    "s16",
	KindU32:    "u32",
	KindS32:    "s32",
	KindU64:    "u64",
	KindS64:    "s64",
	KindF32:    "f32",
	KindF64:    "f64",
	KindChar:   "char",
	KindString: "string",
	KindEnum:   "enum",
	KindRecord: "record",
	KindSeq:    "seq",
	KindOwn:    "own",
	KindBorrow: "borrow",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

func (k Kind) IsPrimitive() bool {
	return k <= KindChar
}

// FlatCount is the number of 64-bit stack slots the kind occupies when passed
// through a trampoline. Strings and sequences travel as (ptr, len) pairs;
// everything else is a single slot.
func (k Kind) FlatCount() int {
	switch k {
	case KindString, KindSeq:
		return 2
	default:
		return 1
	}
}
