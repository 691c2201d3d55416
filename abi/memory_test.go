package abi

import (
	"encoding/binary"
	"fmt"
)

// fakeMemory is a byte-backed stand-in for guest linear memory.
type fakeMemory struct {
	data []byte
}

func newFakeMemory(size uint32) *fakeMemory {
	return &fakeMemory{data: make([]byte, size)}
}

func (m *fakeMemory) Read(offset, length uint32) ([]byte, error) {
	if uint64(offset)+uint64(length) > uint64(len(m.data)) {
		return nil, fmt.Errorf("memory read out of bounds: offset=%d, length=%d", offset, length)
	}
	return m.data[offset : offset+length], nil
}

func (m *fakeMemory) Write(offset uint32, data []byte) error {
	if uint64(offset)+uint64(len(data)) > uint64(len(m.data)) {
		return fmt.Errorf("memory write out of bounds: offset=%d, length=%d", offset, len(data))
	}
	copy(m.data[offset:], data)
	return nil
}

func (m *fakeMemory) ReadU8(offset uint32) (uint8, error) {
	b, err := m.Read(offset, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (m *fakeMemory) ReadU16(offset uint32) (uint16, error) {
	b, err := m.Read(offset, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (m *fakeMemory) ReadU32(offset uint32) (uint32, error) {
	b, err := m.Read(offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (m *fakeMemory) ReadU64(offset uint32) (uint64, error) {
	b, err := m.Read(offset, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (m *fakeMemory) WriteU8(offset uint32, value uint8) error {
	return m.Write(offset, []byte{value})
}

func (m *fakeMemory) WriteU16(offset uint32, value uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], value)
	return m.Write(offset, b[:])
}

func (m *fakeMemory) WriteU32(offset uint32, value uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], value)
	return m.Write(offset, b[:])
}

func (m *fakeMemory) WriteU64(offset uint32, value uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], value)
	return m.Write(offset, b[:])
}

// bumpAllocator hands out sequential regions of fakeMemory.
type bumpAllocator struct {
	next  uint32
	limit uint32
	freed []uint32
	fail  bool
}

func newBumpAllocator(start, limit uint32) *bumpAllocator {
	return &bumpAllocator{next: start, limit: limit}
}

func (a *bumpAllocator) Alloc(size, align uint32) (uint32, error) {
	if a.fail {
		return 0, fmt.Errorf("allocation refused")
	}
	ptr := AlignTo(a.next, align)
	if ptr+size > a.limit {
		return 0, fmt.Errorf("out of guest memory")
	}
	a.next = ptr + size
	return ptr, nil
}

func (a *bumpAllocator) Free(ptr, size, align uint32) {
	a.freed = append(a.freed, ptr)
}
