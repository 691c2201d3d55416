package wasmenc

// Instruction helpers for function bodies.

const opEnd = 0x0b

var (
	I32Add   = []byte{0x6a}
	I32And   = []byte{0x71}
	F32Store = []byte{0x38, 0x02, 0x00} // align 4, offset 0
	I32Store = []byte{0x36, 0x02, 0x00}
	I32Load  = []byte{0x28, 0x02, 0x00}
	Drop     = []byte{0x1a}
)

func I32Const(v int32) []byte {
	return append([]byte{0x41}, EncodeSLEB128(v)...)
}

func Call(funcIdx uint32) []byte {
	return append([]byte{0x10}, EncodeULEB128(funcIdx)...)
}

func LocalGet(i uint32) []byte {
	return append([]byte{0x20}, EncodeULEB128(i)...)
}

func LocalSet(i uint32) []byte {
	return append([]byte{0x21}, EncodeULEB128(i)...)
}

func LocalTee(i uint32) []byte {
	return append([]byte{0x22}, EncodeULEB128(i)...)
}

func GlobalGet(i uint32) []byte {
	return append([]byte{0x23}, EncodeULEB128(i)...)
}

func GlobalSet(i uint32) []byte {
	return append([]byte{0x24}, EncodeULEB128(i)...)
}
