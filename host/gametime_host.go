package host

import (
	"context"
	"reflect"

	"github.com/tetratelabs/wazero/api"

	"github.com/questline/modbridge/abi"
	"github.com/questline/modbridge/calendar"
	"github.com/questline/modbridge/errors"
	"github.com/questline/modbridge/handle"
)

// GameTimeNamespace is the import namespace for the game-time ownership
// adapter families.
const GameTimeNamespace = "questline:engine/game-time@1.0.0"

// GameTimeHost exposes the unique, shared, and weak adapter families over
// game-time values. Values cross the boundary by copy through source and
// return pointers; the handles themselves are plain u32.
type GameTimeHost struct {
	unique *handle.Unique[calendar.GameTime]
	shared *handle.Shared[calendar.GameTime]
	weak   *handle.Weak[calendar.GameTime]
}

func NewGameTimeHost() (*GameTimeHost, error) {
	calc := abi.NewCalculator()
	if err := abi.CheckMirror(calc, reflect.TypeOf(calendar.GameTime{}), calendar.GameTimeType); err != nil {
		return nil, err
	}
	if err := abi.CheckHandleRep(calc, abi.Own{Resource: "game-time"}); err != nil {
		return nil, err
	}

	shared := handle.NewShared[calendar.GameTime](nil)
	return &GameTimeHost{
		unique: handle.NewUnique[calendar.GameTime](nil),
		shared: shared,
		weak:   handle.NewWeak(shared),
	}, nil
}

func (h *GameTimeHost) Namespace() string { return GameTimeNamespace }

// Tables returns the live handle counts per family, for diagnostics.
func (h *GameTimeHost) Tables() (unique, shared, weak int) {
	return h.unique.Len(), h.shared.Len(), h.weak.Len()
}

func (h *GameTimeHost) readValue(mod api.Module, src uint32) calendar.GameTime {
	var gt calendar.GameTime
	trapIf(abi.ReadRecord(mustMemory(mod), src, &gt))
	return gt
}

func (h *GameTimeHost) writeValue(mod api.Module, dst uint32, gt *calendar.GameTime) {
	trapIf(abi.WriteRecord(mustMemory(mod), dst, gt))
}

func nullConstructor(typ string) Trampoline {
	return Trampoline{
		Name:      typ + "$null",
		Signature: "func() -> u32",
		Results:   []api.ValueType{api.ValueTypeI32},
		Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
			stack[0] = uint64(handle.Null)
		},
	}
}

func (h *GameTimeHost) Trampolines() []Trampoline {
	var ts []Trampoline
	ts = append(ts, h.uniqueTrampolines()...)
	ts = append(ts, h.sharedTrampolines()...)
	ts = append(ts, h.weakTrampolines()...)
	return ts
}

func (h *GameTimeHost) uniqueTrampolines() []Trampoline {
	return []Trampoline{
		nullConstructor("game-time-unique"),
		{
			Name:      "game-time-unique$uninit",
			Signature: "func() -> u32",
			Results:   []api.ValueType{api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				stack[0] = uint64(h.unique.Uninit())
			},
		},
		{
			Name:      "game-time-unique$new",
			Signature: "func(src: u32) -> u32",
			Params:    []api.ValueType{api.ValueTypeI32},
			Results:   []api.ValueType{api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				gt := h.readValue(mod, api.DecodeU32(stack[0]))
				stack[0] = uint64(h.unique.Adopt(gt))
			},
		},
		{
			Name:      "game-time-unique$emplace",
			Signature: "func(self: u32, src: u32)",
			Params:    []api.ValueType{api.ValueTypeI32, api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				gt := h.readValue(mod, api.DecodeU32(stack[1]))
				if !h.unique.Emplace(handle.Handle(api.DecodeU32(stack[0])), gt) {
					panic(errors.InvalidInput(errors.PhaseInvoke, "emplace target is not an uninitialized slot"))
				}
			},
		},
		{
			Name:      "game-time-unique$get",
			Signature: "func(self: u32, ret: u32)",
			Params:    []api.ValueType{api.ValueTypeI32, api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				v, ok := h.unique.Get(handle.Handle(api.DecodeU32(stack[0])))
				if !ok {
					panic(errors.NotFound(errors.PhaseInvoke, "unique handle", "self"))
				}
				h.writeValue(mod, api.DecodeU32(stack[1]), v)
			},
		},
		{
			Name:      "game-time-unique$release",
			Signature: "func(self: u32, ret: u32)",
			Params:    []api.ValueType{api.ValueTypeI32, api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				v, ok := h.unique.Release(handle.Handle(api.DecodeU32(stack[0])))
				if !ok {
					panic(errors.NotFound(errors.PhaseInvoke, "unique handle", "self"))
				}
				h.writeValue(mod, api.DecodeU32(stack[1]), &v)
			},
		},
		{
			Name:      "game-time-unique$drop",
			Signature: "func(self: u32)",
			Params:    []api.ValueType{api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				h.unique.Drop(handle.Handle(api.DecodeU32(stack[0])))
			},
		},
	}
}

func (h *GameTimeHost) sharedTrampolines() []Trampoline {
	return []Trampoline{
		nullConstructor("game-time-shared"),
		{
			Name:      "game-time-shared$uninit",
			Signature: "func() -> u32",
			Results:   []api.ValueType{api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				stack[0] = uint64(h.shared.Uninit())
			},
		},
		{
			Name:      "game-time-shared$new",
			Signature: "func(src: u32) -> u32",
			Params:    []api.ValueType{api.ValueTypeI32},
			Results:   []api.ValueType{api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				gt := h.readValue(mod, api.DecodeU32(stack[0]))
				stack[0] = uint64(h.shared.Adopt(gt))
			},
		},
		{
			Name:      "game-time-shared$emplace",
			Signature: "func(self: u32, src: u32)",
			Params:    []api.ValueType{api.ValueTypeI32, api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				gt := h.readValue(mod, api.DecodeU32(stack[1]))
				if !h.shared.Emplace(handle.Handle(api.DecodeU32(stack[0])), gt) {
					panic(errors.InvalidInput(errors.PhaseInvoke, "emplace target is not an uninitialized slot"))
				}
			},
		},
		{
			Name:      "game-time-shared$clone",
			Signature: "func(self: u32) -> u32",
			Params:    []api.ValueType{api.ValueTypeI32},
			Results:   []api.ValueType{api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				stack[0] = uint64(h.shared.Clone(handle.Handle(api.DecodeU32(stack[0]))))
			},
		},
		{
			Name:      "game-time-shared$get",
			Signature: "func(self: u32, ret: u32)",
			Params:    []api.ValueType{api.ValueTypeI32, api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				v, ok := h.shared.Get(handle.Handle(api.DecodeU32(stack[0])))
				if !ok {
					panic(errors.NotFound(errors.PhaseInvoke, "shared handle", "self"))
				}
				h.writeValue(mod, api.DecodeU32(stack[1]), v)
			},
		},
		{
			Name:      "game-time-shared$drop",
			Signature: "func(self: u32)",
			Params:    []api.ValueType{api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				h.shared.Drop(handle.Handle(api.DecodeU32(stack[0])))
			},
		},
	}
}

func (h *GameTimeHost) weakTrampolines() []Trampoline {
	return []Trampoline{
		nullConstructor("game-time-weak"),
		{
			Name:      "game-time-weak$downgrade",
			Signature: "func(shared: u32) -> u32",
			Params:    []api.ValueType{api.ValueTypeI32},
			Results:   []api.ValueType{api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				stack[0] = uint64(h.weak.Downgrade(handle.Handle(api.DecodeU32(stack[0]))))
			},
		},
		{
			Name:      "game-time-weak$clone",
			Signature: "func(self: u32) -> u32",
			Params:    []api.ValueType{api.ValueTypeI32},
			Results:   []api.ValueType{api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				stack[0] = uint64(h.weak.Clone(handle.Handle(api.DecodeU32(stack[0]))))
			},
		},
		{
			Name:      "game-time-weak$upgrade",
			Signature: "func(self: u32) -> u32",
			Params:    []api.ValueType{api.ValueTypeI32},
			Results:   []api.ValueType{api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				stack[0] = uint64(h.weak.Upgrade(handle.Handle(api.DecodeU32(stack[0]))))
			},
		},
		{
			Name:      "game-time-weak$drop",
			Signature: "func(self: u32)",
			Params:    []api.ValueType{api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				h.weak.Drop(handle.Handle(api.DecodeU32(stack[0])))
			},
		},
	}
}
