package calendar

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewDefaults(t *testing.T) {
	c := New()
	if c.Timescale() != DefaultTimescale {
		t.Fatalf("Timescale = %v, want %d", c.Timescale(), DefaultTimescale)
	}
	if c.Year() != 1 || c.Month() != 0 || c.Day() != 1 {
		t.Fatalf("initial date = year %d month %d day %v, want 1/0/1", c.Year(), c.Month(), c.Day())
	}
	if c.DaysPassed() != 0 || c.Hour() != 0 {
		t.Fatal("new calendar has nonzero elapsed time")
	}
}

func TestSingletonStable(t *testing.T) {
	if Singleton() != Singleton() {
		t.Fatal("Singleton returned distinct instances")
	}
}

func TestAdvanceAppliesTimescale(t *testing.T) {
	c := New()
	// One real hour at the default timescale is 20 game hours.
	c.Advance(3600)
	if got := c.Hour(); got != 20 {
		t.Fatalf("Hour = %v after one real hour, want 20", got)
	}
	if got := c.DaysPassed(); got < 0.83 || got > 0.84 {
		t.Fatalf("DaysPassed = %v, want ~0.8333", got)
	}
}

func TestAdvanceRollsOverDays(t *testing.T) {
	c := New()
	c.SetTimescale(1)
	// 30 real hours at timescale 1: one full day plus six hours.
	c.Advance(30 * 3600)
	if c.Day() != 2 {
		t.Fatalf("Day = %v, want 2", c.Day())
	}
	if got := c.Hour(); got < 5.99 || got > 6.01 {
		t.Fatalf("Hour = %v, want 6", got)
	}
	if got := c.HoursPassed(); got < 29.99 || got > 30.01 {
		t.Fatalf("HoursPassed = %v, want 30", got)
	}
}

func TestAdvanceRollsOverMonthsAndYears(t *testing.T) {
	c := New()
	c.Set(1, 11, 31, 23) // December 31, 23:00
	c.SetTimescale(1)
	c.Advance(2 * 3600)

	if c.Year() != 2 || c.Month() != 0 || c.Day() != 1 {
		t.Fatalf("after rollover: year %d month %d day %v, want 2/0/1", c.Year(), c.Month(), c.Day())
	}
}

func TestDayOfWeekTracksDaysPassed(t *testing.T) {
	c := New()
	c.SetTimescale(24) // one real hour = one game day
	if c.DayOfWeek() != Sunday {
		t.Fatalf("day 0 = %v, want Sunday", c.DayOfWeek())
	}
	c.Advance(3600)
	if c.DayOfWeek() != Monday {
		t.Fatalf("day 1 = %v, want Monday", c.DayOfWeek())
	}
	c.Advance(6 * 3600)
	if c.DayOfWeek() != Sunday {
		t.Fatalf("day 7 = %v, want Sunday again", c.DayOfWeek())
	}
	if c.DayName() != "Sunday" {
		t.Fatalf("DayName = %q", c.DayName())
	}
}

func TestTimeSnapshot(t *testing.T) {
	c := New()
	c.Set(3, 2, 17, 14.5) // March 17, year 3, 14:30

	got := c.Time()
	want := GameTime{
		Second:     0,
		Minute:     30,
		Hour:       14,
		DayOfMonth: 17,
		Month:      2,
		Year:       3,
		Weekday:    int32(c.DayOfWeek()),
		DayOfYear:  31 + 28 + 17 - 1,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Time() mismatch (-want +got):\n%s", diff)
	}
}

func TestMonthName(t *testing.T) {
	c := New()
	c.Set(1, 2, 17, 0)
	if c.MonthName() != "March" {
		t.Fatalf("MonthName = %q, want March", c.MonthName())
	}
	if c.Month() != 2 {
		t.Fatalf("Month = %d, want 2", c.Month())
	}
}

func TestTimeDateString(t *testing.T) {
	c := New()
	c.Set(201, 2, 17, 14.5)

	tests := []struct {
		name     string
		showYear bool
		max      uint32
		want     string
	}{
		{"with year", true, 64, "14:30, 17 March 201"},
		{"without year", false, 64, "14:30, 17 March"},
		{"truncated", true, 6, "14:30"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.TimeDateString(tt.showYear, tt.max)
			if got != tt.want {
				t.Fatalf("TimeDateString = %q, want %q", got, tt.want)
			}
			if uint32(len(got)) >= tt.max {
				t.Fatalf("result length %d not below max %d", len(got), tt.max)
			}
		})
	}
}

func TestSetClamps(t *testing.T) {
	c := New()
	c.Set(-5, 99, 99, 30)
	if c.Year() != 1 {
		t.Fatalf("Year = %d, want clamped to 1", c.Year())
	}
	if c.Month() != 11 {
		t.Fatalf("Month = %d, want clamped to 11", c.Month())
	}
	if c.Day() != 31 {
		t.Fatalf("Day = %v, want clamped to 31", c.Day())
	}
	if c.Hour() != 0 {
		t.Fatalf("Hour = %v, want wrapped to 0", c.Hour())
	}
}

func TestSetTimescaleIgnoresNonPositive(t *testing.T) {
	c := New()
	c.SetTimescale(0)
	c.SetTimescale(-3)
	if c.Timescale() != DefaultTimescale {
		t.Fatalf("Timescale = %v, want unchanged default", c.Timescale())
	}
}

func TestDayOfWeekString(t *testing.T) {
	if Saturday.String() != "Saturday" {
		t.Fatalf("Saturday.String() = %q", Saturday.String())
	}
	if !strings.EqualFold(DayOfWeek(99).String(), "unknown") {
		t.Fatalf("out-of-range weekday = %q", DayOfWeek(99).String())
	}
}
