package host

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero/api"

	modbridge "github.com/questline/modbridge"
	"github.com/questline/modbridge/errors"
)

// WrapMemory adapts wazero linear memory to the root Memory interface.
func WrapMemory(mem api.Memory) modbridge.Memory {
	if mem == nil {
		return nil
	}
	return &memWrapper{mem: mem}
}

type memWrapper struct {
	mem api.Memory
}

func (m *memWrapper) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, fmt.Errorf("memory read out of bounds: offset=%d, length=%d", offset, length)
	}
	return data, nil
}

func (m *memWrapper) Write(offset uint32, data []byte) error {
	if !m.mem.Write(offset, data) {
		return fmt.Errorf("memory write out of bounds: offset=%d, length=%d", offset, len(data))
	}
	return nil
}

func (m *memWrapper) ReadU8(offset uint32) (uint8, error) {
	v, ok := m.mem.ReadByte(offset)
	if !ok {
		return 0, fmt.Errorf("memory read out of bounds: offset=%d", offset)
	}
	return v, nil
}

func (m *memWrapper) ReadU16(offset uint32) (uint16, error) {
	v, ok := m.mem.ReadUint16Le(offset)
	if !ok {
		return 0, fmt.Errorf("memory read out of bounds: offset=%d", offset)
	}
	return v, nil
}

func (m *memWrapper) ReadU32(offset uint32) (uint32, error) {
	v, ok := m.mem.ReadUint32Le(offset)
	if !ok {
		return 0, fmt.Errorf("memory read out of bounds: offset=%d", offset)
	}
	return v, nil
}

func (m *memWrapper) ReadU64(offset uint32) (uint64, error) {
	v, ok := m.mem.ReadUint64Le(offset)
	if !ok {
		return 0, fmt.Errorf("memory read out of bounds: offset=%d", offset)
	}
	return v, nil
}

func (m *memWrapper) WriteU8(offset uint32, value uint8) error {
	if !m.mem.WriteByte(offset, value) {
		return fmt.Errorf("memory write out of bounds: offset=%d", offset)
	}
	return nil
}

func (m *memWrapper) WriteU16(offset uint32, value uint16) error {
	if !m.mem.WriteUint16Le(offset, value) {
		return fmt.Errorf("memory write out of bounds: offset=%d", offset)
	}
	return nil
}

func (m *memWrapper) WriteU32(offset uint32, value uint32) error {
	if !m.mem.WriteUint32Le(offset, value) {
		return fmt.Errorf("memory write out of bounds: offset=%d", offset)
	}
	return nil
}

func (m *memWrapper) WriteU64(offset uint32, value uint64) error {
	if !m.mem.WriteUint64Le(offset, value) {
		return fmt.Errorf("memory write out of bounds: offset=%d", offset)
	}
	return nil
}

func (m *memWrapper) Size() uint32 {
	return m.mem.Size()
}

// mustMemory wraps the calling guest's memory, trapping the call if the
// guest exports none.
func mustMemory(mod api.Module) modbridge.Memory {
	mem := WrapMemory(mod.Memory())
	if mem == nil {
		panic(errors.NotInitialized(errors.PhaseMemory, "guest linear memory"))
	}
	return mem
}

// allocExports are tried in order when resolving the guest allocator.
var allocExports = []string{"cabi_realloc", "realloc"}

// WrapAllocator adapts the calling guest's exported realloc to the root
// Allocator interface. Strings returned to a guest are allocated through it
// so the guest heap owns the buffer.
func WrapAllocator(ctx context.Context, mod api.Module) (modbridge.Allocator, error) {
	for _, name := range allocExports {
		if fn := mod.ExportedFunction(name); fn != nil {
			return &allocWrapper{ctx: ctx, fn: fn}, nil
		}
	}
	return nil, errors.NotFound(errors.PhaseMemory, "guest allocator export", allocExports[0])
}

type allocWrapper struct {
	ctx context.Context
	fn  api.Function
}

func (a *allocWrapper) Alloc(size, align uint32) (uint32, error) {
	results, err := a.fn.Call(a.ctx, 0, 0, uint64(align), uint64(size))
	if err != nil {
		return 0, fmt.Errorf("allocation failed: %w", err)
	}
	if len(results) == 0 {
		return 0, fmt.Errorf("allocation returned no result")
	}
	return uint32(results[0]), nil
}

func (a *allocWrapper) Free(ptr, size, align uint32) {
	_, _ = a.fn.Call(a.ctx, uint64(ptr), uint64(size), uint64(align), 0)
}
