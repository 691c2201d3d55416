package calendar

import (
	"unsafe"

	"github.com/questline/modbridge/abi"
)

// DayOfWeek is the weekday discriminant. It crosses the boundary as a u32
// written through a caller-provided return pointer, never by register.
type DayOfWeek uint32

const (
	Sunday DayOfWeek = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var dayNames = [7]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

func (d DayOfWeek) String() string {
	if d > Saturday {
		return "unknown"
	}
	return dayNames[d]
}

// GameTime is the host mirror of the game-time boundary record: eight s32
// fields, 32 bytes, align 4. Month runs 0-11 and Weekday 0-6, following the
// broken-down-time convention of the engine it mirrors.
type GameTime struct {
	Second     int32
	Minute     int32
	Hour       int32
	DayOfMonth int32
	Month      int32
	Year       int32
	Weekday    int32
	DayOfYear  int32
}

// The boundary layout is load-bearing; a field added or reordered here must
// fail the build, not corrupt guest memory.
var _ = [1]struct{}{}[unsafe.Sizeof(GameTime{})-32]
var _ = [1]struct{}{}[unsafe.Offsetof(GameTime{}.DayOfYear)-28]

// DayOfWeekType is the wire enum for DayOfWeek.
var DayOfWeekType = &abi.Enum{
	Name:  "day-of-week",
	Cases: dayNames[:],
}

// GameTimeType is the wire record for GameTime.
var GameTimeType = &abi.Record{
	Name: "game-time",
	Fields: []abi.Field{
		{Name: "second", Type: abi.S32},
		{Name: "minute", Type: abi.S32},
		{Name: "hour", Type: abi.S32},
		{Name: "day-of-month", Type: abi.S32},
		{Name: "month", Type: abi.S32},
		{Name: "year", Type: abi.S32},
		{Name: "weekday", Type: abi.S32},
		{Name: "day-of-year", Type: abi.S32},
	},
}
