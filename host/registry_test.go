package host

import (
	"context"
	"testing"

	"github.com/tetratelabs/wazero/api"

	"github.com/questline/modbridge/calendar"
)

type stubHost struct {
	ns          string
	trampolines []Trampoline
}

func (s *stubHost) Namespace() string        { return s.ns }
func (s *stubHost) Trampolines() []Trampoline { return s.trampolines }

func noopFn(ctx context.Context, mod api.Module, stack []uint64) {}

func validStub() *stubHost {
	return &stubHost{
		ns: "test:pkg/iface@1.0.0",
		trampolines: []Trampoline{
			{
				Name:      "thing$get-value",
				Signature: "func(self: u32) -> f32",
				Params:    []api.ValueType{api.ValueTypeI32},
				Results:   []api.ValueType{api.ValueTypeF32},
				Fn:        noopFn,
			},
		},
	}
}

func TestRegisterValidHost(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(validStub()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if got := r.Namespaces(); len(got) != 1 || got[0] != "test:pkg/iface@1.0.0" {
		t.Fatalf("Namespaces = %v", got)
	}
	if !r.Provides("test:pkg/iface@1.0.0", "thing$get-value") {
		t.Fatal("Provides returned false for registered trampoline")
	}
	if r.Provides("test:pkg/iface@1.0.0", "thing$other") {
		t.Fatal("Provides returned true for unknown trampoline")
	}
}

func TestRegisterRejectsBadNamespace(t *testing.T) {
	r := NewRegistry()
	for _, ns := range []string{"", "noversion:pkg/iface", "Upper:pkg/iface@1.0.0"} {
		s := validStub()
		s.ns = ns
		if err := r.Register(s); err == nil {
			t.Fatalf("Register accepted namespace %q", ns)
		}
	}
}

func TestRegisterRejectsBadTrampolineName(t *testing.T) {
	r := NewRegistry()
	s := validStub()
	s.trampolines[0].Name = "get-value" // missing the type prefix
	if err := r.Register(s); err == nil {
		t.Fatal("Register accepted trampoline without <type>$ prefix")
	}
}

func TestRegisterRejectsSignatureMismatch(t *testing.T) {
	r := NewRegistry()
	s := validStub()
	// Declared signature says f32 result; implementation claims i32.
	s.trampolines[0].Results = []api.ValueType{api.ValueTypeI32}
	if err := r.Register(s); err == nil {
		t.Fatal("Register accepted flat-type mismatch")
	}
}

func TestRegisterRejectsDuplicateNamespace(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(validStub()); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if err := r.Register(validStub()); err == nil {
		t.Fatal("second Register of same namespace succeeded")
	}
}

func TestRegisterRejectsMissingFn(t *testing.T) {
	r := NewRegistry()
	s := validStub()
	s.trampolines[0].Fn = nil
	if err := r.Register(s); err == nil {
		t.Fatal("Register accepted trampoline without implementation")
	}
}

func TestCalendarHostRegisters(t *testing.T) {
	h, err := NewCalendarHost(calendar.New())
	if err != nil {
		t.Fatalf("NewCalendarHost: %v", err)
	}
	r := NewRegistry()
	if err := r.Register(h); err != nil {
		t.Fatalf("Register calendar host: %v", err)
	}

	want := []string{
		"calendar$get-singleton",
		"calendar$get-current-game-time",
		"calendar$get-day",
		"calendar$get-days-passed",
		"calendar$get-hour",
		"calendar$get-hours-passed",
		"calendar$get-timescale",
		"calendar$get-day-of-week",
		"calendar$get-month",
		"calendar$get-year",
		"calendar$get-day-name",
		"calendar$get-month-name",
		"calendar$get-time",
		"calendar$get-time-date-string",
		"calendar-unique$null",
		"calendar-unique$uninit",
		"calendar-unique$new",
		"calendar-unique$raw",
		"calendar-unique$emplace",
		"calendar-unique$get",
		"calendar-unique$release",
		"calendar-unique$drop",
		"calendar-shared$null",
		"calendar-shared$uninit",
		"calendar-shared$new",
		"calendar-shared$emplace",
		"calendar-shared$clone",
		"calendar-shared$get",
		"calendar-shared$drop",
		"calendar-weak$null",
		"calendar-weak$downgrade",
		"calendar-weak$clone",
		"calendar-weak$upgrade",
		"calendar-weak$drop",
	}
	for _, name := range want {
		if !r.Provides(CalendarNamespace, name) {
			t.Errorf("calendar host does not provide %s", name)
		}
	}
}

func TestGameTimeHostRegisters(t *testing.T) {
	h, err := NewGameTimeHost()
	if err != nil {
		t.Fatalf("NewGameTimeHost: %v", err)
	}
	r := NewRegistry()
	if err := r.Register(h); err != nil {
		t.Fatalf("Register game-time host: %v", err)
	}

	for _, name := range []string{
		"game-time-unique$null",
		"game-time-unique$uninit",
		"game-time-unique$new",
		"game-time-unique$emplace",
		"game-time-unique$get",
		"game-time-unique$release",
		"game-time-unique$drop",
		"game-time-shared$clone",
		"game-time-shared$get",
		"game-time-weak$downgrade",
		"game-time-weak$upgrade",
	} {
		if !r.Provides(GameTimeNamespace, name) {
			t.Errorf("game-time host does not provide %s", name)
		}
	}
}

func TestGameTimeVecHostRegisters(t *testing.T) {
	h, err := NewGameTimeVecHost()
	if err != nil {
		t.Fatalf("NewGameTimeVecHost: %v", err)
	}
	r := NewRegistry()
	if err := r.Register(h); err != nil {
		t.Fatalf("Register vector host: %v", err)
	}
	for _, name := range []string{
		"game-time-vec$new",
		"game-time-vec$size",
		"game-time-vec$get-unchecked",
		"game-time-vec$set-unchecked",
		"game-time-vec$push-back",
		"game-time-vec$pop-back",
		"game-time-vec$drop",
	} {
		if !r.Provides(GameTimeVecNamespace, name) {
			t.Errorf("vector host does not provide %s", name)
		}
	}
}

func TestCalendarHostDetachedLifecycle(t *testing.T) {
	h, err := NewCalendarHost(calendar.New())
	if err != nil {
		t.Fatalf("NewCalendarHost: %v", err)
	}

	hd := h.Alloc()
	if hd == 0 {
		t.Fatal("Alloc returned null handle")
	}
	cal, ok := h.Free(hd)
	if !ok || cal == nil {
		t.Fatal("Free did not return the detached calendar")
	}
	if h.Drop(hd) {
		t.Fatal("Drop after Free reported work")
	}

	hd2 := h.Alloc()
	if !h.Drop(hd2) {
		t.Fatal("Drop of live detached calendar failed")
	}
}
