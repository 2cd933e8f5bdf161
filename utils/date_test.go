package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayBounds(t *testing.T) {
	ts := time.Date(2024, 3, 10, 23, 30, 0, 0, time.FixedZone("UTC-5", -5*3600))

	start, end := DayBounds(ts)

	// 23:30 at UTC-5 is already the 11th in UTC
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC), end)
	assert.Equal(t, "2024-03-11", DateKey(ts))
}

func TestEndOfDay(t *testing.T) {
	got := EndOfDay(MustParseDate("2024-02-29"))
	assert.Equal(t, time.Date(2024, 2, 29, 23, 59, 59, int(999*time.Millisecond), time.UTC), got)
}

func TestDatesBetween(t *testing.T) {
	dates := DatesBetween(MustParseDate("2024-01-30"), MustParseDate("2024-02-02"))
	assert.Equal(t, []string{"2024-01-30", "2024-01-31", "2024-02-01", "2024-02-02"}, dates)

	assert.Empty(t, DatesBetween(MustParseDate("2024-02-02"), MustParseDate("2024-02-01")))
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		want  int
	}{
		{name: "single day", start: "2024-03-05", end: "2024-03-05", want: 1},
		{name: "across leap day", start: "2024-02-28", end: "2024-03-01", want: 3},
		{name: "reversed", start: "2024-02-02", end: "2024-02-01", want: 0},
		{name: "whole calendar", start: "0001-01-01", end: "9999-12-31", want: 3652059},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysBetween(MustParseDate(tt.start), MustParseDate(tt.end)))
		})
	}

	start, end := MustParseDate("2024-01-30"), MustParseDate("2024-03-02")
	assert.Equal(t, len(DatesBetween(start, end)), DaysBetween(start, end))
}

func TestLastDayOfMonth(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		expected time.Time
	}{
		{"leap february", time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC), time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{"december rolls year", time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC), time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)},
		{"thirty day month", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LastDayOfMonth(tt.now))
		})
	}
}

func TestParseDate(t *testing.T) {
	_, err := ParseDate("2024-13-01")
	assert.Error(t, err)

	d, err := ParseDate("2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, d.Location())
}
