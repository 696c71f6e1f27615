// Package calendar holds the date helpers shared by attendance and reporting:
// day keys, month bounds, clock parsing and duration formatting.
package calendar

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DayKeyLayout is the canonical YYYY-MM-DD representation of a calendar day.
const DayKeyLayout = "2006-01-02"

// DayKey returns the calendar day of t in loc as YYYY-MM-DD.
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DayKeyLayout)
}

// ParseDayKey parses a YYYY-MM-DD key into midnight of that day in loc.
func ParseDayKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DayKeyLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day key %q: %w", key, err)
	}
	return t, nil
}

// StartOfDay truncates t to midnight in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, loc)
}

// MonthRange describes the first and last day of a calendar month.
type MonthRange struct {
	Year     int
	Month    time.Month
	Start    time.Time
	End      time.Time
	StartKey string
	EndKey   string
}

// Month returns the bounds of the given month in loc. End is the last day at midnight.
func Month(year int, month time.Month, loc *time.Location) MonthRange {
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, -1)
	return MonthRange{
		Year:     year,
		Month:    month,
		Start:    start,
		End:      end,
		StartKey: start.Format(DayKeyLayout),
		EndKey:   end.Format(DayKeyLayout),
	}
}

// Contains reports whether key falls inside the month.
func (m MonthRange) Contains(key string) bool {
	return key >= m.StartKey && key <= m.EndKey
}

// DaysInMonth returns the number of days of month in year.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// IsWeekend reports whether t falls on a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// ParseClock parses an HH:MM wall-clock string.
func ParseClock(clock string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, 0, fmt.Errorf("invalid clock %q: expected HH:MM", clock)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid clock %q: hour out of range", clock)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid clock %q: minute out of range", clock)
	}
	return hour, minute, nil
}

// IsValidClock reports whether clock is a well-formed HH:MM value.
func IsValidClock(clock string) bool {
	_, _, err := ParseClock(clock)
	return err == nil
}

// On places an HH:MM clock on the calendar day of date, in date's location.
func On(date time.Time, clock string) (time.Time, error) {
	h, m, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), h, m, 0, 0, date.Location()), nil
}

// RoundMinutes converts d to whole minutes, rounding half up on the millisecond value.
func RoundMinutes(d time.Duration) int {
	ms := float64(d.Milliseconds())
	return int(math.Floor(ms/60000 + 0.5))
}

// FormatMinutes renders a minute count as "Xh Ym".
func FormatMinutes(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// MonthName returns the English month name, e.g. "January".
func MonthName(month time.Month) string {
	return month.String()
}
