package abi

import (
	stderrors "errors"
	"testing"

	"github.com/questline/modbridge/errors"
)

func TestRelocatable(t *testing.T) {
	trivial := &Record{
		Name:   "trivial",
		Fields: []Field{{Name: "a", Type: S32}, {Name: "b", Type: F32}},
	}
	withString := &Record{
		Name:   "named",
		Fields: []Field{{Name: "id", Type: U32}, {Name: "label", Type: Str}},
	}
	withOwn := &Record{
		Name:   "holder",
		Fields: []Field{{Name: "h", Type: Own{Resource: "calendar"}}},
	}

	tests := []struct {
		typ  Type
		want bool
	}{
		{U32, true},
		{&Enum{Name: "day-of-week", Cases: []string{"sunday"}}, true},
		{Borrow{Resource: "calendar"}, true},
		{trivial, true},
		{Str, false},
		{&Seq{Elem: U32}, false},
		{Own{Resource: "calendar"}, false},
		{withString, false},
		{withOwn, false},
	}

	for _, tt := range tests {
		if got := Relocatable(tt.typ); got != tt.want {
			t.Errorf("Relocatable(%s) = %v, want %v", tt.typ.WireName(), got, tt.want)
		}
	}
}

func TestElementOps_BulkPath(t *testing.T) {
	rec := &Record{
		Name:   "point",
		Fields: []Field{{Name: "x", Type: F32}, {Name: "y", Type: F32}},
	}

	c := NewCalculator()
	ops, err := ElementOps(c, rec)
	if err != nil {
		t.Fatalf("ElementOps failed: %v", err)
	}
	if ops.Size != 8 || ops.Align != 4 {
		t.Fatalf("got size=%d align=%d, want 8/4", ops.Size, ops.Align)
	}

	src := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	dst := make([]byte, 8)
	ops.Move(dst, src)
	for i := range src {
		if dst[i] != src[i] {
			t.Fatalf("bulk move byte %d: got %d, want %d", i, dst[i], src[i])
		}
	}
	// Drop on the bulk path is a no-op; must not panic.
	ops.Drop(dst)
}

func TestElementOps_RefusesUnregistered(t *testing.T) {
	rec := &Record{
		Name:   "labeled",
		Fields: []Field{{Name: "label", Type: Str}},
	}

	c := NewCalculator()
	_, err := ElementOps(c, rec)
	if err == nil {
		t.Fatal("expected refusal for non-relocatable type without mover")
	}
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseLayout, Kind: errors.KindNotRelocatable}) {
		t.Fatalf("wrong error: %v", err)
	}
}

func TestElementOps_MoverOptIn(t *testing.T) {
	rec := &Record{
		Name:   "opted",
		Fields: []Field{{Name: "label", Type: Str}},
	}

	moved := 0
	dropped := 0
	RegisterMover("opted", Mover{
		Move: func(dst, src []byte) { copy(dst, src); moved++ },
		Drop: func([]byte) { dropped++ },
	})

	c := NewCalculator()
	ops, err := ElementOps(c, rec)
	if err != nil {
		t.Fatalf("ElementOps with mover failed: %v", err)
	}

	ops.Move(make([]byte, ops.Size), make([]byte, ops.Size))
	ops.Drop(make([]byte, ops.Size))
	if moved != 1 || dropped != 1 {
		t.Fatalf("mover callbacks: moved=%d dropped=%d", moved, dropped)
	}
}

func TestRegisterMoverConcurrent(t *testing.T) {
	rec := &Record{
		Name:   "churned",
		Fields: []Field{{Name: "label", Type: Str}},
	}
	RegisterMover("churned", Mover{
		Move: func(dst, src []byte) { copy(dst, src) },
		Drop: func([]byte) {},
	})

	c := NewCalculator()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			RegisterMover("churned", Mover{
				Move: func(dst, src []byte) { copy(dst, src) },
				Drop: func([]byte) {},
			})
		}
	}()
	for i := 0; i < 100; i++ {
		if _, err := ElementOps(c, rec); err != nil {
			t.Fatalf("ElementOps during registration churn: %v", err)
		}
	}
	<-done
}

func TestElementOps_IncompleteType(t *testing.T) {
	c := NewCalculator()
	_, err := ElementOps(c, Scalar{Kind(200)})
	if err == nil {
		t.Fatal("expected incomplete type to be rejected")
	}
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseLayout, Kind: errors.KindIncompleteType}) {
		t.Fatalf("wrong error: %v", err)
	}
}
