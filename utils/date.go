package utils

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// EndOfDayOffset is the last representable millisecond of a calendar day.
const EndOfDayOffset = 24*time.Hour - time.Millisecond

// ParseDate parses a yyyy-MM-dd string as midnight UTC.
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, dateStr, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected yyyy-MM-dd", dateStr)
	}
	return t, nil
}

func MustParseDate(dateStr string) time.Time {
	t, _ := ParseDate(dateStr)
	return t
}

// StartOfDay truncates t to midnight of its UTC calendar day.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DayBounds returns [00:00:00.000, next 00:00:00.000) for the UTC day of t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := StartOfDay(t)
	return start, start.AddDate(0, 0, 1)
}

// EndOfDay returns 23:59:59.999 of the UTC day of t.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).Add(EndOfDayOffset)
}

// DateKey formats the UTC calendar date of t.
func DateKey(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

const secondsPerDay = 24 * 60 * 60

// DatesBetween lists every calendar date from start to end inclusive.
func DatesBetween(start, end time.Time) []string {
	var dates []string
	for d := StartOfDay(start); !d.After(StartOfDay(end)); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(DateLayout))
	}
	return dates
}

// DaysBetween counts the calendar dates from start to end inclusive without
// materialising them. A reversed range counts zero.
func DaysBetween(start, end time.Time) int {
	s, e := StartOfDay(start), StartOfDay(end)
	if e.Before(s) {
		return 0
	}
	return int((e.Unix()-s.Unix())/secondsPerDay) + 1
}

// LastDayOfMonth returns midnight UTC of the last day in t's month.
func LastDayOfMonth(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month()+1, 0, 0, 0, 0, 0, time.UTC)
}
