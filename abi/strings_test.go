package abi

import (
	"testing"
)

func TestStrView_RoundTrip(t *testing.T) {
	mem := newFakeMemory(256)
	text := "Last Seed"
	if err := mem.Write(16, []byte(text)); err != nil {
		t.Fatal(err)
	}

	v := StrView{Ptr: 16, Len: uint32(len(text))}
	got, err := v.String(mem)
	if err != nil {
		t.Fatalf("String failed: %v", err)
	}
	if got != text {
		t.Fatalf("got %q, want %q", got, text)
	}
}

func TestStrView_Empty(t *testing.T) {
	mem := newFakeMemory(16)
	v := StrView{}

	b, err := v.Bytes(mem)
	if err != nil || b != nil {
		t.Fatalf("empty view: bytes=%v err=%v", b, err)
	}
	s, err := v.String(mem)
	if err != nil || s != "" {
		t.Fatalf("empty view: s=%q err=%v", s, err)
	}
}

func TestStrView_InvalidUTF8(t *testing.T) {
	mem := newFakeMemory(16)
	if err := mem.Write(0, []byte{0xff, 0xfe}); err != nil {
		t.Fatal(err)
	}

	v := StrView{Ptr: 0, Len: 2}
	if _, err := v.String(mem); err == nil {
		t.Fatal("expected invalid UTF-8 to be rejected")
	}
}

func TestWriteOwnedString(t *testing.T) {
	mem := newFakeMemory(256)
	alloc := newBumpAllocator(32, 256)

	ptr, length, err := WriteOwnedString(mem, alloc, "Morndas")
	if err != nil {
		t.Fatalf("WriteOwnedString failed: %v", err)
	}
	if length != 7 {
		t.Fatalf("length = %d, want 7", length)
	}

	got, err := mem.Read(ptr, length)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "Morndas" {
		t.Fatalf("guest buffer holds %q", got)
	}
}

func TestWriteOwnedString_EmptyAllocatesNothing(t *testing.T) {
	mem := newFakeMemory(16)
	alloc := newBumpAllocator(0, 16)

	ptr, length, err := WriteOwnedString(mem, alloc, "")
	if err != nil || ptr != 0 || length != 0 {
		t.Fatalf("empty string: ptr=%d len=%d err=%v", ptr, length, err)
	}
}

func TestWriteOwnedString_AllocationFailure(t *testing.T) {
	mem := newFakeMemory(16)
	alloc := newBumpAllocator(0, 16)
	alloc.fail = true

	if _, _, err := WriteOwnedString(mem, alloc, "x"); err == nil {
		t.Fatal("expected allocation failure to surface")
	}
}

func TestWriteCString_Truncates(t *testing.T) {
	mem := newFakeMemory(64)

	if err := WriteCString(mem, 0, 8, "a very long date string"); err != nil {
		t.Fatalf("WriteCString failed: %v", err)
	}

	b, _ := mem.Read(0, 8)
	if b[7] != 0 {
		t.Fatal("expected NUL terminator inside max bytes")
	}
	if string(b[:7]) != "a very " {
		t.Fatalf("truncated text = %q", b[:7])
	}
}

func TestRecord_InPlaceRoundTrip(t *testing.T) {
	mem := newFakeMemory(128)

	src := goodMirror{Flag: 1, Count: 77, Ratio: 2.5}
	if err := WriteRecord(mem, 24, &src); err != nil {
		t.Fatalf("WriteRecord failed: %v", err)
	}

	var dst goodMirror
	if err := ReadRecord(mem, 24, &dst); err != nil {
		t.Fatalf("ReadRecord failed: %v", err)
	}
	if dst != src {
		t.Fatalf("round trip mismatch: got %+v, want %+v", dst, src)
	}
}

func TestWriteEnum_ValidatesDiscriminant(t *testing.T) {
	mem := newFakeMemory(16)
	e := &Enum{Name: "day-of-week", Cases: []string{"sunday", "monday", "tuesday"}}

	if err := WriteEnum(mem, 0, e, 2); err != nil {
		t.Fatalf("valid discriminant rejected: %v", err)
	}
	got, _ := mem.ReadU32(0)
	if got != 2 {
		t.Fatalf("discriminant = %d, want 2", got)
	}

	if err := WriteEnum(mem, 0, e, 3); err == nil {
		t.Fatal("expected out-of-range discriminant to be rejected")
	}
}
