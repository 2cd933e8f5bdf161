package core

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"fieldtrack.com/fieldtrack/attendance/model"
	"fieldtrack.com/fieldtrack/utils"
)

type AttendanceSummary struct {
	Holidays       int `json:"holidays"`
	PresentDays    int `json:"present"`
	AbsentDays     int `json:"absent"`
	FutureHolidays int `json:"futureHolidays"`
	WorkDays       int `json:"workDays"`
}

// ParseHolidays reads a comma separated list of yyyy-MM-dd dates.
// Blank entries are skipped and duplicates collapse to one day.
func ParseHolidays(csv string) ([]time.Time, error) {
	var holidays []time.Time
	for _, raw := range strings.Split(csv, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		d, err := utils.ParseDate(raw)
		if err != nil {
			return nil, invalid("holidays", "%v", err)
		}
		holidays = append(holidays, d)
	}

	holidays = utils.UniqueBy(holidays, func(t time.Time) string { return utils.DateKey(t) })
	sort.Slice(holidays, func(i, j int) bool { return holidays[i].Before(holidays[j]) })
	return holidays, nil
}

// DaysLeftInMonth is the number of days, rounded up, from now until
// midnight of the last day of now's month.
func DaysLeftInMonth(now time.Time) int {
	diff := utils.LastDayOfMonth(now).Sub(now.UTC())
	return int(math.Ceil(diff.Hours() / 24))
}

// Summarize applies the attendance formula to already fetched data.
// presentDates are distinct calendar dates with at least one event.
//
//	workDays = days(start..end) - holidays
//	absent   = max(0, workDays - present - daysLeftInMonth + futureHolidays)
func Summarize(start, end time.Time, presentDates int, holidays []time.Time, now time.Time) AttendanceSummary {
	totalDays := utils.DaysBetween(start, end)
	workDays := totalDays - len(holidays)

	rangeEnd := utils.EndOfDay(end)
	future := utils.Filter(holidays, func(h time.Time) bool {
		return h.After(now) && !h.After(rangeEnd)
	})

	absent := workDays - presentDates - DaysLeftInMonth(now) + len(future)
	if absent < 0 {
		absent = 0
	}

	return AttendanceSummary{
		Holidays:       len(holidays),
		PresentDays:    presentDates,
		AbsentDays:     absent,
		FutureHolidays: len(future),
		WorkDays:       workDays,
	}
}

// ComputeSummary counts the user's present days over the closed range
// [startDate 00:00, endDate 23:59:59.999] and applies Summarize.
func (a *Aggregator) ComputeSummary(ctx context.Context, userID string, startDate, endDate time.Time, holidays []time.Time) (*AttendanceSummary, error) {
	if endDate.Before(startDate) {
		return nil, invalid("endDate", "must not be before startDate")
	}

	events, err := a.GetEventsInclusive(ctx, userID, startDate, endDate)
	if err != nil {
		return nil, err
	}

	present := utils.Set(events, func(e model.AttendanceEvent) string { return e.Date })
	summary := Summarize(startDate, endDate, len(present), holidays, a.Now())
	return &summary, nil
}
