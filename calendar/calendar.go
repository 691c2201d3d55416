// Package calendar implements the game-time calendar the boundary exposes to
// script mods. It is deterministic: time moves only through Advance and the
// explicit setters, never from the wall clock. The process-wide instance is
// host-owned; guests observe it through a borrow handle and never manage its
// lifetime.
package calendar

import (
	"fmt"
	"math"
	"sync"
)

// DefaultTimescale is the game-hours-per-real-hour ratio applied by Advance
// when none has been set.
const DefaultTimescale = 20

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

var monthDays = [12]int32{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// cumulative days before each month, for day-of-year
var monthStart = func() [12]int32 {
	var s [12]int32
	var acc int32
	for i, d := range monthDays {
		s[i] = acc
		acc += d
	}
	return s
}()

// Calendar is a mutable game-time clock. All methods are safe for concurrent
// use.
type Calendar struct {
	mu         sync.RWMutex
	year       int32
	month      int32 // 0-11
	day        int32 // 1-based day of month
	hour       float32
	daysPassed float32
	timescale  float32
}

// New creates a detached calendar at day one, hour zero, default timescale.
// Detached instances exist for tests and tooling; guests bind Singleton.
func New() *Calendar {
	return &Calendar{
		year:      1,
		day:       1,
		timescale: DefaultTimescale,
	}
}

var (
	singleton     *Calendar
	singletonOnce sync.Once
)

// Singleton returns the process-wide calendar. It is created on first use
// and lives for the life of the process.
func Singleton() *Calendar {
	singletonOnce.Do(func() {
		singleton = New()
	})
	return singleton
}

// CurrentGameTime returns the fractional count of game days elapsed.
func (c *Calendar) CurrentGameTime() float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.daysPassed
}

// DaysPassed returns the fractional count of game days elapsed.
func (c *Calendar) DaysPassed() float32 {
	return c.CurrentGameTime()
}

// Day returns the day of the month.
func (c *Calendar) Day() float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return float32(c.day)
}

// Hour returns the fractional hour of the day, in [0, 24).
func (c *Calendar) Hour() float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hour
}

// HoursPassed returns the fractional count of game hours elapsed.
func (c *Calendar) HoursPassed() float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.daysPassed * 24
}

// Month returns the month, 0-11.
func (c *Calendar) Month() uint32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return uint32(c.month)
}

// Year returns the year, 1-based.
func (c *Calendar) Year() uint32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return uint32(c.year)
}

// Timescale returns game hours per real hour.
func (c *Calendar) Timescale() float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.timescale
}

// SetTimescale sets game hours per real hour. Non-positive values are
// ignored.
func (c *Calendar) SetTimescale(ts float32) {
	if ts <= 0 {
		return
	}
	c.mu.Lock()
	c.timescale = ts
	c.mu.Unlock()
}

// DayOfWeek returns the weekday, derived from whole days passed.
func (c *Calendar) DayOfWeek() DayOfWeek {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.weekdayLocked()
}

func (c *Calendar) weekdayLocked() DayOfWeek {
	return DayOfWeek(uint32(c.daysPassed) % 7)
}

// DayName returns the English name of the current weekday.
func (c *Calendar) DayName() string {
	return c.DayOfWeek().String()
}

// MonthName returns the English name of the current month.
func (c *Calendar) MonthName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return monthNames[c.month]
}

// Time returns a broken-down snapshot of the current game time.
func (c *Calendar) Time() GameTime {
	c.mu.RLock()
	defer c.mu.RUnlock()

	h := int32(c.hour)
	minFrac := float64(c.hour) - float64(h)
	m := int32(minFrac * 60)
	s := int32(math.Round((minFrac*60 - float64(m)) * 60))
	if s >= 60 {
		s = 59
	}
	return GameTime{
		Second:     s,
		Minute:     m,
		Hour:       h,
		DayOfMonth: c.day,
		Month:      c.month,
		Year:       c.year,
		Weekday:    int32(c.weekdayLocked()),
		DayOfYear:  monthStart[c.month] + c.day - 1,
	}
}

// TimeDateString formats the current time and date into s, holding at most
// max bytes including the terminator the boundary layer appends. The
// returned string is already truncated to max-1 bytes.
func (c *Calendar) TimeDateString(showYear bool, max uint32) string {
	c.mu.RLock()
	h := int32(c.hour)
	m := int32((float64(c.hour) - float64(h)) * 60)
	day, month, year := c.day, c.month, c.year
	c.mu.RUnlock()

	var s string
	if showYear {
		s = fmt.Sprintf("%02d:%02d, %d %s %d", h, m, day, monthNames[month], year)
	} else {
		s = fmt.Sprintf("%02d:%02d, %d %s", h, m, day, monthNames[month])
	}
	if max > 0 && uint32(len(s)) >= max {
		s = s[:max-1]
	}
	return s
}

// Advance moves game time forward by realSeconds of real time, applying the
// timescale. Days, months, and years roll over; daysPassed accumulates
// fractionally.
func (c *Calendar) Advance(realSeconds float64) {
	if realSeconds <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	gameHours := realSeconds * float64(c.timescale) / 3600
	c.daysPassed += float32(gameHours / 24)
	c.hour += float32(gameHours)
	for c.hour >= 24 {
		c.hour -= 24
		c.day++
		if c.day > monthDays[c.month] {
			c.day = 1
			c.month++
			if c.month > 11 {
				c.month = 0
				c.year++
			}
		}
	}
}

// Set positions the calendar at an absolute date and hour. Out-of-range
// components are clamped. daysPassed is rebased to the day count since day
// one of year one.
func (c *Calendar) Set(year, month, day int32, hour float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if year < 1 {
		year = 1
	}
	if month < 0 {
		month = 0
	} else if month > 11 {
		month = 11
	}
	if day < 1 {
		day = 1
	} else if day > monthDays[month] {
		day = monthDays[month]
	}
	if hour < 0 {
		hour = 0
	} else if hour >= 24 {
		hour = 0
	}

	c.year = year
	c.month = month
	c.day = day
	c.hour = hour
	c.daysPassed = float32((year-1)*365+monthStart[month]+day-1) + hour/24
}
