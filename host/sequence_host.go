package host

import (
	"context"
	"reflect"

	"github.com/tetratelabs/wazero/api"

	"github.com/questline/modbridge/abi"
	"github.com/questline/modbridge/calendar"
	"github.com/questline/modbridge/errors"
	"github.com/questline/modbridge/handle"
	"github.com/questline/modbridge/seq"
)

// GameTimeVecNamespace is the import namespace for the game-time sequence
// adapter.
const GameTimeVecNamespace = "questline:engine/game-time-vec@1.0.0"

// GameTimeVecHost exposes host-side vectors of game-time values. Each vector
// is owned through a unique handle; elements cross the boundary by copy.
//
// get-unchecked and set-unchecked carry the sequence contract: the index
// must already be below size. Out-of-range access is a contract violation
// and traps, as does popping an empty vector.
type GameTimeVecHost struct {
	calc *abi.Calculator
	vecs *handle.Unique[*seq.Vector]
}

func NewGameTimeVecHost() (*GameTimeVecHost, error) {
	calc := abi.NewCalculator()
	if err := abi.CheckMirror(calc, reflect.TypeOf(calendar.GameTime{}), calendar.GameTimeType); err != nil {
		return nil, err
	}
	// The element strategy must exist before any vector does.
	if _, err := abi.ElementOps(calc, calendar.GameTimeType); err != nil {
		return nil, err
	}

	return &GameTimeVecHost{
		calc: calc,
		vecs: handle.NewUnique(func(v **seq.Vector) { (*v).Drop() }),
	}, nil
}

func (h *GameTimeVecHost) Namespace() string { return GameTimeVecNamespace }

// Len reports the number of live vectors, for diagnostics.
func (h *GameTimeVecHost) Len() int { return h.vecs.Len() }

func (h *GameTimeVecHost) resolve(self uint32) *seq.Vector {
	v, ok := h.vecs.Get(handle.Handle(self))
	if !ok {
		panic(errors.NotFound(errors.PhaseInvoke, "vector handle", "self"))
	}
	return *v
}

// element returns the storage of index i, trapping on contract violation.
func (h *GameTimeVecHost) element(v *seq.Vector, i uint32) []byte {
	b, err := v.At(int(i))
	trapIf(err)
	return b
}

func (h *GameTimeVecHost) Trampolines() []Trampoline {
	return []Trampoline{
		{
			Name:      "game-time-vec$new",
			Signature: "func() -> u32",
			Results:   []api.ValueType{api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				v, err := seq.New(h.calc, calendar.GameTimeType)
				trapIf(err)
				stack[0] = uint64(h.vecs.Adopt(v))
			},
		},
		{
			Name:      "game-time-vec$size",
			Signature: "func(self: u32) -> u32",
			Params:    []api.ValueType{api.ValueTypeI32},
			Results:   []api.ValueType{api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				stack[0] = uint64(h.resolve(api.DecodeU32(stack[0])).Len())
			},
		},
		{
			Name:      "game-time-vec$get-unchecked",
			Signature: "func(self: u32, index: u32, ret: u32)",
			Params:    []api.ValueType{api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				v := h.resolve(api.DecodeU32(stack[0]))
				el := h.element(v, api.DecodeU32(stack[1]))
				trapIf(mustMemory(mod).Write(api.DecodeU32(stack[2]), el))
			},
		},
		{
			Name:      "game-time-vec$set-unchecked",
			Signature: "func(self: u32, index: u32, src: u32)",
			Params:    []api.ValueType{api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				v := h.resolve(api.DecodeU32(stack[0]))
				el := h.element(v, api.DecodeU32(stack[1]))
				data, err := mustMemory(mod).Read(api.DecodeU32(stack[2]), v.Stride())
				trapIf(err)
				copy(el, data)
			},
		},
		{
			Name:      "game-time-vec$push-back",
			Signature: "func(self: u32, src: u32)",
			Params:    []api.ValueType{api.ValueTypeI32, api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				v := h.resolve(api.DecodeU32(stack[0]))
				data, err := mustMemory(mod).Read(api.DecodeU32(stack[1]), v.Stride())
				trapIf(err)
				el := make([]byte, v.Stride())
				copy(el, data)
				trapIf(v.PushBack(el))
			},
		},
		{
			Name:      "game-time-vec$pop-back",
			Signature: "func(self: u32, ret: u32)",
			Params:    []api.ValueType{api.ValueTypeI32, api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				v := h.resolve(api.DecodeU32(stack[0]))
				el := make([]byte, v.Stride())
				trapIf(v.PopBack(el))
				trapIf(mustMemory(mod).Write(api.DecodeU32(stack[1]), el))
			},
		},
		{
			Name:      "game-time-vec$drop",
			Signature: "func(self: u32)",
			Params:    []api.ValueType{api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				h.vecs.Drop(handle.Handle(api.DecodeU32(stack[0])))
			},
		},
	}
}
