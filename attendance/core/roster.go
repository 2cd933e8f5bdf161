package core

import (
	"context"
	"sort"
	"strings"
	"time"

	"fieldtrack.com/fieldtrack/attendance/model"
	"fieldtrack.com/fieldtrack/utils"
)

// RosterScanner answers cross-user completeness questions for a day.
// Every query is a plain read; concurrent submissions may or may not show up.
type RosterScanner struct {
	Events EventStore
	Users  UserStore
	Now    Clock

	// ExcludedEmails never show up as missing a check-in or check-out.
	ExcludedEmails []string
	// ExcludedRegions are left out of every roster, compared case-insensitively.
	ExcludedRegions []string
}

type VisitCount struct {
	Date     string `json:"date"`
	UserID   string `json:"userId"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Region   string `json:"state"`
	Visits   int    `json:"visits"`
}

type RosterClassification struct {
	Date          string       `json:"date"`
	CheckedIn     []model.User `json:"checkedIn"`
	NotCheckedIn  []model.User `json:"notCheckedIn"`
	CheckedOut    []model.User `json:"checkedOut"`
	NotCheckedOut []model.User `json:"notCheckedOut"`
	OnLeave       []model.User `json:"onLeave"`
	Absent        []model.User `json:"absent"`
}

type DateCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type UserActivity struct {
	UserID           string      `json:"id"`
	FullName         string      `json:"fullName"`
	Email            string      `json:"email"`
	AttendanceByDate []DateCount `json:"attendanceByDate"`
}

type RegionActivity struct {
	Engineers []UserActivity `json:"engineers"`
	Dates     []string       `json:"dates"`
}

// snapshot is one read of the roster and the day's events.
type snapshot struct {
	date   string
	users  []model.User
	events []model.AttendanceEvent
}

func (rs *RosterScanner) take(ctx context.Context, day time.Time) (*snapshot, error) {
	users, err := rs.Users.ListUsers(ctx, UserQuery{Role: model.RoleUser})
	if err != nil {
		return nil, &PersistenceError{Op: "list users", Err: err}
	}
	date := utils.DateKey(day)
	events, err := rs.Events.ListEvents(ctx, EventQuery{DateFrom: date, DateTo: date})
	if err != nil {
		return nil, &PersistenceError{Op: "list attendance events", Err: err}
	}
	return &snapshot{
		date:   date,
		users:  utils.Filter(users, func(u model.User) bool { return !rs.regionExcluded(u.Region) }),
		events: events,
	}, nil
}

func (rs *RosterScanner) regionExcluded(region string) bool {
	for _, r := range rs.ExcludedRegions {
		if strings.EqualFold(strings.TrimSpace(r), strings.TrimSpace(region)) {
			return true
		}
	}
	return false
}

func (rs *RosterScanner) emailExcluded(email string) bool {
	for _, e := range rs.ExcludedEmails {
		if strings.EqualFold(strings.TrimSpace(e), strings.TrimSpace(email)) {
			return true
		}
	}
	return false
}

func dedupByEmail(users []model.User) []model.User {
	return utils.UniqueBy(users, func(u model.User) string { return strings.ToLower(u.Email) })
}

// missing lists users without any event of purpose that day, skipping
// anyone on leave and the email denylist.
func (rs *RosterScanner) missing(s *snapshot, purpose string) []model.User {
	done := usersWith(s.events, purpose, model.PurposeOnLeave)
	return dedupByEmail(utils.Filter(s.users, func(u model.User) bool {
		_, ok := done[u.ID]
		return !ok && !rs.emailExcluded(u.Email)
	}))
}

func (rs *RosterScanner) having(s *snapshot, purpose string) []model.User {
	done := usersWith(s.events, purpose)
	return dedupByEmail(utils.Filter(s.users, func(u model.User) bool {
		_, ok := done[u.ID]
		return ok && !rs.emailExcluded(u.Email)
	}))
}

func (rs *RosterScanner) absent(s *snapshot) []model.User {
	active := utils.Set(s.events, func(e model.AttendanceEvent) string { return e.UserID })
	return dedupByEmail(utils.Filter(s.users, func(u model.User) bool {
		_, ok := active[u.ID]
		return !ok
	}))
}

func (rs *RosterScanner) UsersWithoutCheckIn(ctx context.Context, day time.Time) ([]model.User, error) {
	s, err := rs.take(ctx, day)
	if err != nil {
		return nil, err
	}
	return rs.missing(s, model.PurposeCheckIn), nil
}

func (rs *RosterScanner) UsersWithoutCheckOut(ctx context.Context, day time.Time) ([]model.User, error) {
	s, err := rs.take(ctx, day)
	if err != nil {
		return nil, err
	}
	return rs.missing(s, model.PurposeCheckOut), nil
}

// UsersOnLeave returns everyone with an On Leave event that day, whatever
// their role or region.
func (rs *RosterScanner) UsersOnLeave(ctx context.Context, day time.Time) ([]model.User, error) {
	date := utils.DateKey(day)
	events, err := rs.Events.ListEvents(ctx, EventQuery{DateFrom: date, DateTo: date})
	if err != nil {
		return nil, &PersistenceError{Op: "list attendance events", Err: err}
	}

	onLeave := usersWith(events, model.PurposeOnLeave)
	if len(onLeave) == 0 {
		return []model.User{}, nil
	}
	ids := make([]string, 0, len(onLeave))
	for id := range onLeave {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	users, err := rs.Users.ListUsers(ctx, UserQuery{IDs: ids})
	if err != nil {
		return nil, &PersistenceError{Op: "list users", Err: err}
	}
	return dedupByEmail(users), nil
}

// UsersWithoutAnyAttendance returns active users with no event of any kind
// that day.
func (rs *RosterScanner) UsersWithoutAnyAttendance(ctx context.Context, day time.Time) ([]model.User, error) {
	s, err := rs.take(ctx, day)
	if err != nil {
		return nil, err
	}
	return rs.absent(s), nil
}

// Classify sorts the roster for one day into every category from a single
// read. CheckedIn and NotCheckedIn (likewise CheckedOut and NotCheckedOut)
// together cover every eligible user not on leave.
func (rs *RosterScanner) Classify(ctx context.Context, day time.Time) (*RosterClassification, error) {
	s, err := rs.take(ctx, day)
	if err != nil {
		return nil, err
	}

	onLeave := usersWith(s.events, model.PurposeOnLeave)
	return &RosterClassification{
		Date:          s.date,
		CheckedIn:     rs.having(s, model.PurposeCheckIn),
		NotCheckedIn:  rs.missing(s, model.PurposeCheckIn),
		CheckedOut:    rs.having(s, model.PurposeCheckOut),
		NotCheckedOut: rs.missing(s, model.PurposeCheckOut),
		OnLeave: dedupByEmail(utils.Filter(s.users, func(u model.User) bool {
			_, ok := onLeave[u.ID]
			return ok
		})),
		Absent: rs.absent(s),
	}, nil
}

// UserVisitCounts counts non-reserved events per user per day between the
// two dates inclusive. Only (user, day) pairs with at least one event appear.
func (rs *RosterScanner) UserVisitCounts(ctx context.Context, from, to time.Time) ([]VisitCount, error) {
	if to.IsZero() {
		to = from
	}
	if to.Before(from) {
		return nil, invalid("endDate", "must not be before startDate")
	}

	events, err := rs.Events.ListEvents(ctx, EventQuery{DateFrom: utils.DateKey(from), DateTo: utils.DateKey(to)})
	if err != nil {
		return nil, &PersistenceError{Op: "list attendance events", Err: err}
	}
	groups := GroupEvents(events)
	if len(groups) == 0 {
		return []VisitCount{}, nil
	}

	ids := utils.UniqueBy(utils.Map(groups, func(g *EventGroup) string { return g.UserID }), func(id string) string { return id })
	users, err := rs.Users.ListUsers(ctx, UserQuery{IDs: ids})
	if err != nil {
		return nil, &PersistenceError{Op: "list users", Err: err}
	}
	profiles := make(map[string]model.User, len(users))
	for _, u := range users {
		profiles[u.ID] = u
	}

	counts := make([]VisitCount, 0, len(groups))
	for _, g := range groups {
		u := profiles[g.UserID]
		counts = append(counts, VisitCount{
			Date:     g.Date,
			UserID:   g.UserID,
			FullName: u.FullName,
			Email:    u.Email,
			Region:   u.Region,
			Visits:   g.VisitCount(),
		})
	}

	sort.SliceStable(counts, func(i, j int) bool {
		if counts[i].Date != counts[j].Date {
			return counts[i].Date < counts[j].Date
		}
		return counts[i].FullName < counts[j].FullName
	})
	return counts, nil
}

// RegionActivity reports, for each standard user in region, how many events
// they logged on every date of month.
func (rs *RosterScanner) RegionActivity(ctx context.Context, region string, month time.Time) (*RegionActivity, error) {
	if strings.TrimSpace(region) == "" {
		return nil, invalid("state", "is required")
	}

	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	dates := utils.DatesBetween(first, utils.LastDayOfMonth(first))

	users, err := rs.Users.ListUsers(ctx, UserQuery{Role: model.RoleUser, Region: region})
	if err != nil {
		return nil, &PersistenceError{Op: "list users", Err: err}
	}
	activity := &RegionActivity{Engineers: []UserActivity{}, Dates: dates}
	if len(users) == 0 {
		return activity, nil
	}

	events, err := rs.Events.ListEvents(ctx, EventQuery{
		UserIDs:  utils.Map(users, func(u model.User) string { return u.ID }),
		DateFrom: dates[0],
		DateTo:   dates[len(dates)-1],
	})
	if err != nil {
		return nil, &PersistenceError{Op: "list attendance events", Err: err}
	}

	perUser := utils.GroupBy(events, func(e model.AttendanceEvent) string { return e.UserID })
	for _, u := range users {
		perDate := utils.GroupBy(perUser[u.ID], func(e model.AttendanceEvent) string { return e.Date })
		activity.Engineers = append(activity.Engineers, UserActivity{
			UserID:   u.ID,
			FullName: u.FullName,
			Email:    u.Email,
			AttendanceByDate: utils.Map(dates, func(d string) DateCount {
				return DateCount{Date: d, Count: len(perDate[d])}
			}),
		})
	}
	return activity, nil
}
