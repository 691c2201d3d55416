package host

import (
	"context"
	"math"
	"reflect"
	"sync"

	"github.com/tetratelabs/wazero/api"

	"github.com/questline/modbridge/abi"
	"github.com/questline/modbridge/calendar"
	"github.com/questline/modbridge/errors"
	"github.com/questline/modbridge/handle"
)

// CalendarNamespace is the import namespace script mods use for calendar
// trampolines.
const CalendarNamespace = "questline:engine/calendar@1.0.0"

// CalendarHost binds a calendar to guest-importable trampolines. The bound
// calendar is observed through a borrow handle: get-singleton hands it out,
// the guest never owns it, and no drop operation exists for it.
//
// Detached calendars carry the full ownership surface: the calendar-unique,
// calendar-shared, and calendar-weak families own instances the guest
// creates, and their get/release operations hand out borrow handles the
// accessor trampolines accept. Destroying an owned calendar retires its
// borrow handle, so a stale borrow traps instead of resolving. Alloc, Free,
// and Drop expose the unique table host-side for tests and tooling.
type CalendarHost struct {
	cal       *calendar.Calendar
	borrows   *handle.Unique[*calendar.Calendar]
	unique    *handle.Unique[*calendar.Calendar]
	shared    *handle.Shared[*calendar.Calendar]
	weak      *handle.Weak[*calendar.Calendar]
	singleton handle.Handle

	mu    sync.Mutex
	byPtr map[*calendar.Calendar]handle.Handle
}

// NewCalendarHost binds cal. The game-time mirror layout and the borrow
// handle representation are checked here, so a bad build fails at
// registration and never reaches a guest call.
func NewCalendarHost(cal *calendar.Calendar) (*CalendarHost, error) {
	calc := abi.NewCalculator()
	if err := abi.CheckMirror(calc, reflect.TypeOf(calendar.GameTime{}), calendar.GameTimeType); err != nil {
		return nil, err
	}
	if err := abi.CheckHandleRep(calc, abi.Borrow{Resource: "calendar"}); err != nil {
		return nil, err
	}

	h := &CalendarHost{
		cal:     cal,
		borrows: handle.NewUnique[*calendar.Calendar](nil),
		byPtr:   make(map[*calendar.Calendar]handle.Handle),
	}
	forget := func(c **calendar.Calendar) { h.forgetBorrow(*c) }
	h.unique = handle.NewUnique(forget)
	h.shared = handle.NewShared(forget)
	h.weak = handle.NewWeak(h.shared)
	h.singleton = h.borrow(cal)
	return h, nil
}

func (h *CalendarHost) Namespace() string { return CalendarNamespace }

// Calendar returns the bound calendar.
func (h *CalendarHost) Calendar() *calendar.Calendar { return h.cal }

// Alloc creates a detached calendar and returns its unique-table handle.
func (h *CalendarHost) Alloc() handle.Handle {
	return h.unique.Adopt(calendar.New())
}

// Free releases a detached calendar without destroying it and returns it.
func (h *CalendarHost) Free(hd handle.Handle) (*calendar.Calendar, bool) {
	return h.unique.Release(hd)
}

// Drop destroys a detached calendar.
func (h *CalendarHost) Drop(hd handle.Handle) bool {
	return h.unique.Drop(hd)
}

// borrow hands out the observation handle for c, reusing the existing one
// when the same calendar was borrowed before. Accessor trampolines resolve
// their self parameter against these handles.
func (h *CalendarHost) borrow(c *calendar.Calendar) handle.Handle {
	h.mu.Lock()
	defer h.mu.Unlock()
	if hd, ok := h.byPtr[c]; ok {
		return hd
	}
	hd := h.borrows.Adopt(c)
	h.byPtr[c] = hd
	return hd
}

// forgetBorrow retires the observation handle of a destroyed calendar. Runs
// as the unique and shared table destructor.
func (h *CalendarHost) forgetBorrow(c *calendar.Calendar) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if hd, ok := h.byPtr[c]; ok {
		delete(h.byPtr, c)
		h.borrows.Release(hd)
	}
}

// resolve maps a guest-held borrow handle back to the calendar. An unknown
// handle is a contract violation and traps the guest call.
func (h *CalendarHost) resolve(self uint32) *calendar.Calendar {
	c, ok := h.borrows.Get(handle.Handle(self))
	if !ok {
		panic(errors.NotFound(errors.PhaseInvoke, "calendar borrow handle", "self"))
	}
	return *c
}

func trapIf(err error) {
	if err != nil {
		panic(err)
	}
}

// f32Getter builds a trampoline for the by-register float accessors.
func (h *CalendarHost) f32Getter(op string, get func(*calendar.Calendar) float32) Trampoline {
	return Trampoline{
		Name:      "calendar$" + op,
		Signature: "func(self: u32) -> f32",
		Params:    []api.ValueType{api.ValueTypeI32},
		Results:   []api.ValueType{api.ValueTypeF32},
		Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
			cal := h.resolve(api.DecodeU32(stack[0]))
			stack[0] = uint64(math.Float32bits(get(cal)))
		},
	}
}

// u32RetptrGetter builds a trampoline for accessors whose result is
// constructed in place through a caller-provided return pointer.
func (h *CalendarHost) u32RetptrGetter(op string, get func(*calendar.Calendar) uint32) Trampoline {
	return Trampoline{
		Name:      "calendar$" + op,
		Signature: "func(self: u32, ret: u32)",
		Params:    []api.ValueType{api.ValueTypeI32, api.ValueTypeI32},
		Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
			cal := h.resolve(api.DecodeU32(stack[0]))
			ret := api.DecodeU32(stack[1])
			trapIf(mustMemory(mod).WriteU32(ret, get(cal)))
		},
	}
}

// stringGetter builds a trampoline returning an owned string. The buffer is
// allocated on the guest heap through its exported allocator; the guest owns
// it, the host keeps no view.
func (h *CalendarHost) stringGetter(op string, get func(*calendar.Calendar) string) Trampoline {
	return Trampoline{
		Name:      "calendar$" + op,
		Signature: "func(self: u32) -> string",
		Params:    []api.ValueType{api.ValueTypeI32},
		Results:   []api.ValueType{api.ValueTypeI32, api.ValueTypeI32},
		Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
			cal := h.resolve(api.DecodeU32(stack[0]))
			alloc, err := WrapAllocator(ctx, mod)
			trapIf(err)
			ptr, n, err := abi.WriteOwnedString(mustMemory(mod), alloc, get(cal))
			trapIf(err)
			stack[0] = uint64(ptr)
			stack[1] = uint64(n)
		},
	}
}

func (h *CalendarHost) Trampolines() []Trampoline {
	ts := h.accessorTrampolines()
	ts = append(ts, h.uniqueTrampolines()...)
	ts = append(ts, h.sharedTrampolines()...)
	ts = append(ts, h.weakTrampolines()...)
	return ts
}

func (h *CalendarHost) accessorTrampolines() []Trampoline {
	return []Trampoline{
		{
			Name:      "calendar$get-singleton",
			Signature: "func() -> u32",
			Results:   []api.ValueType{api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				stack[0] = uint64(h.singleton)
			},
		},
		h.f32Getter("get-current-game-time", (*calendar.Calendar).CurrentGameTime),
		h.f32Getter("get-day", (*calendar.Calendar).Day),
		h.f32Getter("get-days-passed", (*calendar.Calendar).DaysPassed),
		h.f32Getter("get-hour", (*calendar.Calendar).Hour),
		h.f32Getter("get-hours-passed", (*calendar.Calendar).HoursPassed),
		h.f32Getter("get-timescale", (*calendar.Calendar).Timescale),
		{
			Name:      "calendar$get-day-of-week",
			Signature: "func(self: u32, ret: u32)",
			Params:    []api.ValueType{api.ValueTypeI32, api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				cal := h.resolve(api.DecodeU32(stack[0]))
				ret := api.DecodeU32(stack[1])
				trapIf(abi.WriteEnum(mustMemory(mod), ret, calendar.DayOfWeekType, uint32(cal.DayOfWeek())))
			},
		},
		h.u32RetptrGetter("get-month", (*calendar.Calendar).Month),
		h.u32RetptrGetter("get-year", (*calendar.Calendar).Year),
		h.stringGetter("get-day-name", (*calendar.Calendar).DayName),
		h.stringGetter("get-month-name", (*calendar.Calendar).MonthName),
		{
			Name:      "calendar$get-time",
			Signature: "func(self: u32, ret: u32)",
			Params:    []api.ValueType{api.ValueTypeI32, api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				cal := h.resolve(api.DecodeU32(stack[0]))
				ret := api.DecodeU32(stack[1])
				gt := cal.Time()
				trapIf(abi.WriteRecord(mustMemory(mod), ret, &gt))
			},
		},
		{
			Name:      "calendar$get-time-date-string",
			Signature: "func(self: u32, dest: u32, max: u32, show-year: bool)",
			Params:    []api.ValueType{api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				cal := h.resolve(api.DecodeU32(stack[0]))
				dest := api.DecodeU32(stack[1])
				max := api.DecodeU32(stack[2])
				showYear := api.DecodeU32(stack[3]) != 0
				s := cal.TimeDateString(showYear, max)
				trapIf(abi.WriteCString(mustMemory(mod), dest, max, s))
			},
		},
	}
}

func (h *CalendarHost) uniqueTrampolines() []Trampoline {
	return []Trampoline{
		nullConstructor("calendar-unique"),
		{
			Name:      "calendar-unique$uninit",
			Signature: "func() -> u32",
			Results:   []api.ValueType{api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				stack[0] = uint64(h.unique.Uninit())
			},
		},
		{
			Name:      "calendar-unique$new",
			Signature: "func() -> u32",
			Results:   []api.ValueType{api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				stack[0] = uint64(h.unique.Adopt(calendar.New()))
			},
		},
		{
			// Takes ownership of the calendar behind a borrow handle, the
			// inverse of release.
			Name:      "calendar-unique$raw",
			Signature: "func(src: u32) -> u32",
			Params:    []api.ValueType{api.ValueTypeI32},
			Results:   []api.ValueType{api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				c := h.resolve(api.DecodeU32(stack[0]))
				stack[0] = uint64(h.unique.Adopt(c))
			},
		},
		{
			Name:      "calendar-unique$emplace",
			Signature: "func(self: u32)",
			Params:    []api.ValueType{api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				if !h.unique.Emplace(handle.Handle(api.DecodeU32(stack[0])), calendar.New()) {
					panic(errors.InvalidInput(errors.PhaseInvoke, "emplace target is not an uninitialized slot"))
				}
			},
		},
		{
			Name:      "calendar-unique$get",
			Signature: "func(self: u32) -> u32",
			Params:    []api.ValueType{api.ValueTypeI32},
			Results:   []api.ValueType{api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				c, ok := h.unique.Get(handle.Handle(api.DecodeU32(stack[0])))
				if !ok {
					panic(errors.NotFound(errors.PhaseInvoke, "unique calendar handle", "self"))
				}
				stack[0] = uint64(h.borrow(*c))
			},
		},
		{
			Name:      "calendar-unique$release",
			Signature: "func(self: u32) -> u32",
			Params:    []api.ValueType{api.ValueTypeI32},
			Results:   []api.ValueType{api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				c, ok := h.unique.Release(handle.Handle(api.DecodeU32(stack[0])))
				if !ok {
					panic(errors.NotFound(errors.PhaseInvoke, "unique calendar handle", "self"))
				}
				stack[0] = uint64(h.borrow(c))
			},
		},
		{
			Name:      "calendar-unique$drop",
			Signature: "func(self: u32)",
			Params:    []api.ValueType{api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				h.unique.Drop(handle.Handle(api.DecodeU32(stack[0])))
			},
		},
	}
}

func (h *CalendarHost) sharedTrampolines() []Trampoline {
	return []Trampoline{
		nullConstructor("calendar-shared"),
		{
			Name:      "calendar-shared$uninit",
			Signature: "func() -> u32",
			Results:   []api.ValueType{api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				stack[0] = uint64(h.shared.Uninit())
			},
		},
		{
			Name:      "calendar-shared$new",
			Signature: "func() -> u32",
			Results:   []api.ValueType{api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				stack[0] = uint64(h.shared.Adopt(calendar.New()))
			},
		},
		{
			Name:      "calendar-shared$emplace",
			Signature: "func(self: u32)",
			Params:    []api.ValueType{api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				if !h.shared.Emplace(handle.Handle(api.DecodeU32(stack[0])), calendar.New()) {
					panic(errors.InvalidInput(errors.PhaseInvoke, "emplace target is not an uninitialized slot"))
				}
			},
		},
		{
			Name:      "calendar-shared$clone",
			Signature: "func(self: u32) -> u32",
			Params:    []api.ValueType{api.ValueTypeI32},
			Results:   []api.ValueType{api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				stack[0] = uint64(h.shared.Clone(handle.Handle(api.DecodeU32(stack[0]))))
			},
		},
		{
			Name:      "calendar-shared$get",
			Signature: "func(self: u32) -> u32",
			Params:    []api.ValueType{api.ValueTypeI32},
			Results:   []api.ValueType{api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				c, ok := h.shared.Get(handle.Handle(api.DecodeU32(stack[0])))
				if !ok {
					panic(errors.NotFound(errors.PhaseInvoke, "shared calendar handle", "self"))
				}
				stack[0] = uint64(h.borrow(*c))
			},
		},
		{
			Name:      "calendar-shared$drop",
			Signature: "func(self: u32)",
			Params:    []api.ValueType{api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				h.shared.Drop(handle.Handle(api.DecodeU32(stack[0])))
			},
		},
	}
}

func (h *CalendarHost) weakTrampolines() []Trampoline {
	return []Trampoline{
		nullConstructor("calendar-weak"),
		{
			Name:      "calendar-weak$downgrade",
			Signature: "func(shared: u32) -> u32",
			Params:    []api.ValueType{api.ValueTypeI32},
			Results:   []api.ValueType{api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				stack[0] = uint64(h.weak.Downgrade(handle.Handle(api.DecodeU32(stack[0]))))
			},
		},
		{
			Name:      "calendar-weak$clone",
			Signature: "func(self: u32) -> u32",
			Params:    []api.ValueType{api.ValueTypeI32},
			Results:   []api.ValueType{api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				stack[0] = uint64(h.weak.Clone(handle.Handle(api.DecodeU32(stack[0]))))
			},
		},
		{
			Name:      "calendar-weak$upgrade",
			Signature: "func(self: u32) -> u32",
			Params:    []api.ValueType{api.ValueTypeI32},
			Results:   []api.ValueType{api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				stack[0] = uint64(h.weak.Upgrade(handle.Handle(api.DecodeU32(stack[0]))))
			},
		},
		{
			Name:      "calendar-weak$drop",
			Signature: "func(self: u32)",
			Params:    []api.ValueType{api.ValueTypeI32},
			Fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				h.weak.Drop(handle.Handle(api.DecodeU32(stack[0])))
			},
		},
	}
}
