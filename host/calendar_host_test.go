package host

import (
	"context"
	"math"
	"testing"

	"github.com/questline/modbridge/calendar"
	"github.com/questline/modbridge/handle"
)

func findTrampoline(t *testing.T, h Host, name string) Trampoline {
	t.Helper()
	for _, tr := range h.Trampolines() {
		if tr.Name == name {
			return tr
		}
	}
	t.Fatalf("host provides no trampoline %s", name)
	return Trampoline{}
}

// call runs a trampoline the way a bound guest would, with arguments and
// results carried on a raw value stack. The calendar family trampolines
// never touch linear memory, so no module is needed.
func call(t *testing.T, tr Trampoline, args ...uint64) uint64 {
	t.Helper()
	stack := make([]uint64, 4)
	copy(stack, args)
	tr.Fn(context.Background(), nil, stack)
	return stack[0]
}

func mustTrap(t *testing.T, what string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("%s did not trap", what)
		}
	}()
	fn()
}

func TestCalendarUniqueFamily(t *testing.T) {
	h, err := NewCalendarHost(calendar.New())
	if err != nil {
		t.Fatalf("NewCalendarHost: %v", err)
	}

	null := findTrampoline(t, h, "calendar-unique$null")
	uniqueNew := findTrampoline(t, h, "calendar-unique$new")
	get := findTrampoline(t, h, "calendar-unique$get")
	drop := findTrampoline(t, h, "calendar-unique$drop")
	getHour := findTrampoline(t, h, "calendar$get-hour")

	if call(t, null) != uint64(handle.Null) {
		t.Fatal("null constructor returned a live handle")
	}

	self := call(t, uniqueNew)
	if self == uint64(handle.Null) {
		t.Fatal("new returned null handle")
	}

	// get hands out a borrow the accessor trampolines resolve.
	borrow := call(t, get, self)
	if hour := math.Float32frombits(uint32(call(t, getHour, borrow))); hour != 0 {
		t.Fatalf("fresh calendar hour = %v, want 0", hour)
	}
	if call(t, get, self) != borrow {
		t.Fatal("repeated get minted a second borrow for the same calendar")
	}

	// Drop retires the borrow along with the calendar.
	call(t, drop, self)
	mustTrap(t, "accessor on retired borrow", func() { call(t, getHour, borrow) })
	mustTrap(t, "get on dropped handle", func() { call(t, get, self) })
}

func TestCalendarUniqueUninitEmplace(t *testing.T) {
	h, err := NewCalendarHost(calendar.New())
	if err != nil {
		t.Fatalf("NewCalendarHost: %v", err)
	}

	uninit := findTrampoline(t, h, "calendar-unique$uninit")
	emplace := findTrampoline(t, h, "calendar-unique$emplace")
	get := findTrampoline(t, h, "calendar-unique$get")
	drop := findTrampoline(t, h, "calendar-unique$drop")

	self := call(t, uninit)
	mustTrap(t, "get before emplace", func() { call(t, get, self) })
	call(t, emplace, self)
	if call(t, get, self) == uint64(handle.Null) {
		t.Fatal("get after emplace returned null borrow")
	}
	mustTrap(t, "second emplace", func() { call(t, emplace, self) })
	call(t, drop, self)
}

func TestCalendarUniqueReleaseAndRaw(t *testing.T) {
	h, err := NewCalendarHost(calendar.New())
	if err != nil {
		t.Fatalf("NewCalendarHost: %v", err)
	}

	uniqueNew := findTrampoline(t, h, "calendar-unique$new")
	release := findTrampoline(t, h, "calendar-unique$release")
	raw := findTrampoline(t, h, "calendar-unique$raw")
	drop := findTrampoline(t, h, "calendar-unique$drop")
	getHour := findTrampoline(t, h, "calendar$get-hour")

	self := call(t, uniqueNew)
	borrow := call(t, release, self)

	// Ownership left the table; the calendar stays reachable through the
	// borrow and the freed slot refuses further operations.
	mustTrap(t, "release of released handle", func() { call(t, release, self) })
	if hour := math.Float32frombits(uint32(call(t, getHour, borrow))); hour != 0 {
		t.Fatalf("released calendar hour = %v, want 0", hour)
	}

	// raw re-adopts the borrowed calendar into unique ownership.
	readopted := call(t, raw, borrow)
	if readopted == uint64(handle.Null) {
		t.Fatal("raw returned null for live borrow")
	}
	call(t, drop, readopted)
	mustTrap(t, "accessor after re-adopted drop", func() { call(t, getHour, borrow) })
}

func TestCalendarSharedWeakFamilies(t *testing.T) {
	h, err := NewCalendarHost(calendar.New())
	if err != nil {
		t.Fatalf("NewCalendarHost: %v", err)
	}

	sharedNew := findTrampoline(t, h, "calendar-shared$new")
	clone := findTrampoline(t, h, "calendar-shared$clone")
	get := findTrampoline(t, h, "calendar-shared$get")
	drop := findTrampoline(t, h, "calendar-shared$drop")
	downgrade := findTrampoline(t, h, "calendar-weak$downgrade")
	upgrade := findTrampoline(t, h, "calendar-weak$upgrade")
	weakDrop := findTrampoline(t, h, "calendar-weak$drop")
	getHour := findTrampoline(t, h, "calendar$get-hour")

	s1 := call(t, sharedNew)
	s2 := call(t, clone, s1)
	if s2 == uint64(handle.Null) || s2 == s1 {
		t.Fatalf("clone = %d, want fresh live handle", s2)
	}
	if call(t, get, s1) != call(t, get, s2) {
		t.Fatal("clone observes a different calendar")
	}

	wk := call(t, downgrade, s1)
	if wk == uint64(handle.Null) {
		t.Fatal("downgrade of live shared handle returned null")
	}

	// Upgrade recovers strong ownership while any strong handle lives.
	call(t, drop, s1)
	s3 := call(t, upgrade, wk)
	if s3 == uint64(handle.Null) {
		t.Fatal("upgrade returned null while clone still alive")
	}
	borrow := call(t, get, s3)
	if hour := math.Float32frombits(uint32(call(t, getHour, borrow))); hour != 0 {
		t.Fatalf("shared calendar hour = %v, want 0", hour)
	}

	// Last strong drop destroys the calendar and expires the weak handle.
	call(t, drop, s2)
	call(t, drop, s3)
	if call(t, upgrade, wk) != uint64(handle.Null) {
		t.Fatal("upgrade succeeded after last strong drop")
	}
	mustTrap(t, "accessor on destroyed shared calendar", func() { call(t, getHour, borrow) })
	call(t, weakDrop, wk)
}
