package core

import (
	"context"
	"testing"
	"time"

	"fieldtrack.com/fieldtrack/attendance/model"
	"fieldtrack.com/fieldtrack/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dates(t *testing.T, csv string) []time.Time {
	t.Helper()
	h, err := ParseHolidays(csv)
	require.NoError(t, err)
	return h
}

func TestParseHolidays(t *testing.T) {
	tests := []struct {
		name     string
		csv      string
		expected []string
		wantErr  bool
	}{
		{name: "empty", csv: "", expected: []string{}},
		{name: "single", csv: "2024-06-05", expected: []string{"2024-06-05"}},
		{name: "spaces and duplicates", csv: "2024-06-15, 2024-06-05 ,2024-06-15", expected: []string{"2024-06-05", "2024-06-15"}},
		{name: "trailing comma", csv: "2024-06-05,", expected: []string{"2024-06-05"}},
		{name: "invalid month", csv: "2024-13-01", wantErr: true},
		{name: "wrong layout", csv: "05/06/2024", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ParseHolidays(tt.csv)
			if tt.wantErr {
				var verr *ValidationError
				assert.ErrorAs(t, err, &verr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, utils.Map(res, utils.DateKey))
		})
	}
}

func TestDaysLeftInMonth(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		expected int
	}{
		{name: "mid month", now: time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC), expected: 20},
		{name: "first day midnight", now: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), expected: 29},
		{name: "last day morning", now: time.Date(2024, 6, 30, 6, 0, 0, 0, time.UTC), expected: 0},
		{name: "february leap year", now: time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC), expected: 28},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DaysLeftInMonth(tt.now))
		})
	}
}

func TestSummarize(t *testing.T) {
	start := utils.MustParseDate("2024-06-01")
	end := utils.MustParseDate("2024-06-30")
	holidays := "2024-06-05,2024-06-15,2024-06-20,2024-06-25"

	tests := []struct {
		name     string
		present  int
		holidays string
		now      time.Time
		expected AttendanceSummary
	}{
		{
			name:     "range in the past clamps to zero",
			present:  20,
			holidays: holidays,
			now:      time.Date(2024, 7, 10, 12, 0, 0, 0, time.UTC),
			expected: AttendanceSummary{Holidays: 4, PresentDays: 20, AbsentDays: 0, FutureHolidays: 0, WorkDays: 26},
		},
		{
			name:     "future holidays added back",
			present:  5,
			holidays: holidays,
			now:      time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC),
			expected: AttendanceSummary{Holidays: 4, PresentDays: 5, AbsentDays: 4, FutureHolidays: 3, WorkDays: 26},
		},
		{
			name:     "many present days clamp",
			present:  20,
			holidays: holidays,
			now:      time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC),
			expected: AttendanceSummary{Holidays: 4, PresentDays: 20, AbsentDays: 0, FutureHolidays: 3, WorkDays: 26},
		},
		{
			name:     "last day of month",
			present:  20,
			holidays: "",
			now:      time.Date(2024, 6, 30, 6, 0, 0, 0, time.UTC),
			expected: AttendanceSummary{Holidays: 0, PresentDays: 20, AbsentDays: 10, FutureHolidays: 0, WorkDays: 30},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Summarize(start, end, tt.present, dates(t, tt.holidays), tt.now)
			assert.Equal(t, tt.expected, res)
		})
	}
}

func TestSummarizeWholeCalendar(t *testing.T) {
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

	res := Summarize(utils.MustParseDate("0001-01-01"), utils.MustParseDate("9999-12-31"), 0, nil, now)

	assert.Equal(t, 3652059, res.WorkDays)
	assert.Equal(t, 3652059-DaysLeftInMonth(now), res.AbsentDays)
}

func TestComputeSummaryUsesClosedRange(t *testing.T) {
	events := &memEvents{}
	loc := model.Location{Lat: 1, Lng: 1}
	events.add("u1", model.PurposeCheckIn, time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC), loc)
	events.add("u1", "Client Meeting", time.Date(2024, 6, 3, 11, 0, 0, 0, time.UTC), loc)
	events.add("u1", model.PurposeCheckIn, time.Date(2024, 6, 4, 9, 0, 0, 0, time.UTC), loc)
	events.add("u1", model.PurposeCheckOut, time.Date(2024, 6, 30, 23, 59, 59, int(999*time.Millisecond), time.UTC), loc)
	events.add("u1", model.PurposeCheckIn, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), loc)
	events.add("u2", model.PurposeCheckIn, time.Date(2024, 6, 5, 9, 0, 0, 0, time.UTC), loc)

	agg := &Aggregator{Events: events, Now: fixedClock(time.Date(2024, 7, 10, 12, 0, 0, 0, time.UTC))}

	res, err := agg.ComputeSummary(context.Background(), "u1", utils.MustParseDate("2024-06-01"), utils.MustParseDate("2024-06-30"), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, res.PresentDays)
	assert.Equal(t, 30, res.WorkDays)
	assert.Equal(t, 6, res.AbsentDays)
}

func TestComputeSummaryRejectsReversedRange(t *testing.T) {
	agg := &Aggregator{Events: &memEvents{}, Now: time.Now}

	_, err := agg.ComputeSummary(context.Background(), "u1", utils.MustParseDate("2024-06-30"), utils.MustParseDate("2024-06-01"), nil)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}
