// Package shifttime formats shift times on the 30 hour business day.
//
// A venue's day does not end at midnight: a shift from 19:00 to 03:00 belongs
// to the evening it started on and is shown as 19:00〜27:00. Display times
// therefore range from 00:00 to 29:45, hours 24 to 29 standing for 00 to 05
// of the following calendar day.
package shifttime

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultSeparator joins start and end in FormatShiftTime.
	DefaultSeparator = "〜"

	// StepMinutes is the granularity of the selectable times.
	StepMinutes = 15

	// DayHours is the length of the display day.
	DayHours = 30

	// DateLayout is the layout of business dates.
	DateLayout = "2006-01-02"

	// lateNightEnd is the first hour that is not shown as a next day hour.
	lateNightEnd = 6
)

var (
	// ErrInvalidTime is returned for strings that are not HH:MM.
	ErrInvalidTime = errors.New("invalid time, expected HH:MM")
	// ErrOutOfRange is returned for display times outside 00:00-29:59.
	ErrOutOfRange = errors.New("time out of range of the 30 hour day")
	// ErrEndNotAfterStart is returned when a shift ends before it starts.
	ErrEndNotAfterStart = errors.New("shift end must be after its start")
)

// GenerateTimeOptions returns every selectable display time, 00:00 to 29:45 in 15 minute steps.
func GenerateTimeOptions() []string {
	options := make([]string, 0, DayHours*60/StepMinutes)

	for hour := range DayHours {
		for minute := 0; minute < 60; minute += StepMinutes {
			options = append(options, fmt.Sprintf("%02d:%02d", hour, minute))
		}
	}

	return options
}

// IsOption reports whether s is one of GenerateTimeOptions.
func IsOption(s string) bool {
	m, err := ToMinutes(s)
	if err != nil {
		return false
	}

	return m%StepMinutes == 0 && len(s) == len("00:00")
}

// FormatShiftTime renders a shift as "start〜end" with early morning hours (00-05)
// shifted to 24-29. It returns "" when start or end is empty.
func FormatShiftTime(start, end string, separator ...string) string {
	if start == "" || end == "" {
		return ""
	}

	sep := DefaultSeparator
	if len(separator) > 0 {
		sep = separator[0]
	}

	return Normalize(start) + sep + Normalize(end)
}

// Normalize maps wall clock hours 0-5 to the display hours 24-29, so that
// "03:00" and "27:00" compare and sort alike. Anything it can not parse is
// returned unchanged.
func Normalize(t string) string {
	hourPart, minutePart, ok := strings.Cut(t, ":")
	if !ok {
		return t
	}

	hour, err := strconv.Atoi(hourPart)
	if err != nil {
		return t
	}

	if hour >= 0 && hour < lateNightEnd {
		hour += 24
	}

	return fmt.Sprintf("%02d:%s", hour, minutePart)
}

// ToMinutes converts a display time to minutes since the start of the business day.
func ToMinutes(t string) (int, error) {
	hourPart, minutePart, ok := strings.Cut(t, ":")
	if !ok || hourPart == "" || len(minutePart) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, t)
	}

	hour, err := strconv.Atoi(hourPart)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, t)
	}

	minute, err := strconv.Atoi(minutePart)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, t)
	}

	if hour < 0 || hour >= DayHours || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %q", ErrOutOfRange, t)
	}

	return hour*60 + minute, nil
}

// Duration returns the length of a shift in minutes. Both times are display
// times; a plain clock end such as "03:00" is read as the next day's 27:00.
func Duration(start, end string) (int, error) {
	s, err := ToMinutes(Normalize(start))
	if err != nil {
		return 0, err
	}

	e, err := ToMinutes(Normalize(end))
	if err != nil {
		return 0, err
	}

	if e <= s {
		return 0, ErrEndNotAfterStart
	}

	return e - s, nil
}

// Clock converts a display time back to a wall clock time and reports whether
// it falls on the next calendar day ("27:30" -> "03:30", true).
func Clock(display string) (string, bool, error) {
	m, err := ToMinutes(display)
	if err != nil {
		return "", false, err
	}

	nextDay := m >= 24*60
	if nextDay {
		m -= 24 * 60
	}

	return fmt.Sprintf("%02d:%02d", m/60, m%60), nextDay, nil
}

// BusinessDate returns the business date t belongs to: before 06:00 it is
// still the previous day.
func BusinessDate(t time.Time) string {
	if t.Hour() < lateNightEnd {
		t = t.AddDate(0, 0, -1)
	}

	return t.Format(DateLayout)
}
