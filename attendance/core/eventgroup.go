package core

import (
	"sort"

	"fieldtrack.com/fieldtrack/attendance/model"
	"fieldtrack.com/fieldtrack/utils"
)

// EventGroup is every event one user logged on one calendar day.
type EventGroup struct {
	UserID string
	Date   string
	Events []model.AttendanceEvent
}

func (eg *EventGroup) VisitCount() int {
	return len(utils.Filter(eg.Events, func(e model.AttendanceEvent) bool { return e.IsVisit() }))
}

// GroupEvents buckets events by date and user. Groups come back ordered by
// date, then user; events inside a group by timestamp.
func GroupEvents(events []model.AttendanceEvent) []*EventGroup {
	var groups []*EventGroup
	dategroups := utils.GroupBy(events, func(e model.AttendanceEvent) string { return e.Date })

	for date, evs := range dategroups {
		usergroups := utils.GroupBy(evs, func(e model.AttendanceEvent) string { return e.UserID })
		for userID, ue := range usergroups {
			sort.SliceStable(ue, func(i, j int) bool {
				return ue[i].Timestamp.Before(ue[j].Timestamp)
			})
			groups = append(groups, &EventGroup{UserID: userID, Date: date, Events: ue})
		}
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Date != groups[j].Date {
			return groups[i].Date < groups[j].Date
		}
		return groups[i].UserID < groups[j].UserID
	})
	return groups
}

// usersWith returns the IDs of users having at least one event with purpose.
func usersWith(events []model.AttendanceEvent, purposes ...string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, e := range events {
		for _, p := range purposes {
			if e.Purpose == p {
				set[e.UserID] = struct{}{}
				break
			}
		}
	}
	return set
}
