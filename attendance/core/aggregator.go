package core

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"fieldtrack.com/fieldtrack/attendance/model"
	"fieldtrack.com/fieldtrack/infrastructure/imaging"
	"fieldtrack.com/fieldtrack/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const DefaultMaxImageBytes = 10 * 1024

type Aggregator struct {
	Events    EventStore
	Users     UserStore
	Media     MediaStore
	Geocoder  Geocoder
	Distances *DistanceEngine
	Alerter   Alerter
	Now       Clock

	// MaxImageBytes caps the stored evidence photo.
	MaxImageBytes int
}

type RecordEventInput struct {
	UserID     string
	Purpose    string
	Location   string
	Image      []byte
	SubPurpose string
	Feedback   string
}

// EventWithDistance is an event annotated with the travel distance from the
// event before it on the same day. The first event of a day has none.
type EventWithDistance struct {
	model.AttendanceEvent
	DistanceFromPrevious *string `json:"distanceFromPrevious,omitempty"`
}

// EventWithUser is an event joined with its owner's profile.
type EventWithUser struct {
	model.AttendanceEvent
	User *model.User `json:"user,omitempty"`
}

func (a *Aggregator) alerter() Alerter {
	if a.Alerter == nil {
		return nopAlerter{}
	}
	return a.Alerter
}

func (a *Aggregator) maxImageBytes() int {
	if a.MaxImageBytes <= 0 {
		return DefaultMaxImageBytes
	}
	return a.MaxImageBytes
}

// RecordEvent stores one attendance submission. The evidence photo must
// upload before anything is written; the address lookup is best effort.
// Work continues even if ctx is cancelled by the caller going away.
func (a *Aggregator) RecordEvent(ctx context.Context, in RecordEventInput) (*model.AttendanceEvent, error) {
	ctx = context.WithoutCancel(ctx)

	if in.UserID == "" {
		return nil, invalid("userId", "is required")
	}
	purpose := strings.TrimSpace(in.Purpose)
	if purpose == "" {
		return nil, invalid("purpose", "is required")
	}
	loc, err := ParseLocation(in.Location)
	if err != nil {
		return nil, err
	}
	if len(in.Image) == 0 {
		return nil, invalid("image", "is required")
	}

	photo, err := imaging.CompressToSize(in.Image, a.maxImageBytes())
	if err != nil {
		return nil, invalid("image", "%v", err)
	}

	url, err := a.Media.Upload(ctx, photo, imaging.ContentType)
	if err != nil {
		log.Error().Err(err).Str("userId", in.UserID).Msg("evidence upload failed")
		return nil, &UpstreamError{Service: "media store", Err: err}
	}

	now := a.Now().UTC()
	event := &model.AttendanceEvent{
		ID:           uuid.NewString(),
		UserID:       in.UserID,
		Timestamp:    now,
		Date:         utils.DateKey(now),
		Location:     loc,
		LocationName: a.locationName(ctx, loc),
		Purpose:      purpose,
		SubPurpose:   strings.TrimSpace(in.SubPurpose),
		ImageURL:     url,
		Feedback:     in.Feedback,
		CreatedAt:    now,
	}

	if err := a.Events.InsertEvent(ctx, event); err != nil {
		log.Error().Err(err).Str("userId", in.UserID).Str("image", url).Msg("attendance event not saved, image orphaned")
		if aerr := a.alerter().Error(fmt.Sprintf("attendance event for user %s not saved, orphaned image %s: %v", in.UserID, url, err)); aerr != nil {
			log.Warn().Err(aerr).Msg("failed to post alert")
		}
		return nil, &PersistenceError{Op: "insert attendance event", Err: err}
	}

	log.Info().Str("userId", event.UserID).Str("purpose", event.Purpose).Str("date", event.Date).Msg("attendance recorded")
	return event, nil
}

func (a *Aggregator) locationName(ctx context.Context, loc model.Location) string {
	if a.Geocoder == nil {
		return model.UnknownLocation
	}
	name, err := a.Geocoder.ReverseGeocode(ctx, loc)
	if err != nil || strings.TrimSpace(name) == "" {
		log.Warn().Err(err).Float64("lat", loc.Lat).Float64("lng", loc.Lng).Msg("reverse geocode failed")
		return model.UnknownLocation
	}
	return name
}

// ParseLocation accepts {"lat":..,"lng":..} with numbers or numeric strings,
// or a plain "lat,lng" pair.
func ParseLocation(raw string) (model.Location, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return model.Location{}, invalid("location", "is required")
	}

	var lat, lng float64
	var okLat, okLng bool
	if strings.HasPrefix(raw, "{") {
		var fields map[string]any
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			return model.Location{}, invalid("location", "malformed JSON: %v", err)
		}
		lat, okLat = toFloat(fields["lat"])
		lng, okLng = toFloat(fields["lng"])
	} else {
		parts := strings.Split(raw, ",")
		if len(parts) != 2 {
			return model.Location{}, invalid("location", "expected \"lat,lng\"")
		}
		lat, okLat = toFloat(parts[0])
		lng, okLng = toFloat(parts[1])
	}

	if !okLat || !okLng {
		return model.Location{}, invalid("location", "lat and lng must be numbers")
	}
	if math.Abs(lat) > 90 || math.Abs(lng) > 180 {
		return model.Location{}, invalid("location", "coordinates out of range")
	}
	return model.Location{Lat: lat, Lng: lng}, nil
}

func (a *Aggregator) listEvents(ctx context.Context, q EventQuery) ([]model.AttendanceEvent, error) {
	events, err := a.Events.ListEvents(ctx, q)
	if err != nil {
		return nil, &PersistenceError{Op: "list attendance events", Err: err}
	}
	return events, nil
}

// GetEventsForDay returns the user's events in [00:00, next 00:00) UTC.
func (a *Aggregator) GetEventsForDay(ctx context.Context, userID string, day time.Time) ([]model.AttendanceEvent, error) {
	start, end := utils.DayBounds(day)
	return a.GetEventsHalfOpen(ctx, userID, start, end)
}

// GetEventsHalfOpen returns the user's events with start <= timestamp < end.
func (a *Aggregator) GetEventsHalfOpen(ctx context.Context, userID string, start, end time.Time) ([]model.AttendanceEvent, error) {
	return a.listEvents(ctx, EventQuery{UserIDs: []string{userID}, From: start, Before: end})
}

// GetEventsInclusive returns the user's events from startDate 00:00:00.000
// through endDate 23:59:59.999.
func (a *Aggregator) GetEventsInclusive(ctx context.Context, userID string, startDate, endDate time.Time) ([]model.AttendanceEvent, error) {
	return a.listEvents(ctx, EventQuery{
		UserIDs: []string{userID},
		From:    utils.StartOfDay(startDate),
		Through: utils.EndOfDay(endDate),
	})
}

func (a *Aggregator) ListAllEvents(ctx context.Context, userID string) ([]model.AttendanceEvent, error) {
	return a.listEvents(ctx, EventQuery{UserIDs: []string{userID}})
}

// AttachDistances annotates events (already in timestamp order) with the leg
// distance from the previous one, asking the mapping service once.
func (a *Aggregator) AttachDistances(ctx context.Context, events []model.AttendanceEvent) ([]EventWithDistance, error) {
	annotated := utils.Map(events, func(e model.AttendanceEvent) EventWithDistance {
		return EventWithDistance{AttendanceEvent: e}
	})
	if len(events) < 2 {
		return annotated, nil
	}

	points := utils.Map(events, func(e model.AttendanceEvent) model.Location { return e.Location })
	legs, err := a.Distances.ComputeLegDistances(ctx, points)
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(annotated); i++ {
		annotated[i].DistanceFromPrevious = utils.Ptr(legs[i-1])
	}
	return annotated, nil
}

func (a *Aggregator) IsFirstEntryToday(ctx context.Context, userID string) (bool, error) {
	events, err := a.GetEventsForDay(ctx, userID, a.Now())
	if err != nil {
		return false, err
	}
	return len(events) == 0, nil
}

// EventsByEmail returns every event of the user registered under email.
func (a *Aggregator) EventsByEmail(ctx context.Context, email string) ([]EventWithUser, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, invalid("email", "is required")
	}
	user, err := a.Users.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, &PersistenceError{Op: "find user by email", Err: err}
	}
	if user == nil {
		return nil, &NotFoundError{Resource: "user", Key: email}
	}

	events, err := a.ListAllEvents(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return utils.Map(events, func(e model.AttendanceEvent) EventWithUser {
		return EventWithUser{AttendanceEvent: e, User: user}
	}), nil
}

// RegionEvents returns the events of every user in region between startDate
// 00:00 and endDate 23:59:59.999, joined with the owners' profiles. A zero
// endDate means startDate only.
func (a *Aggregator) RegionEvents(ctx context.Context, region string, startDate, endDate time.Time) ([]EventWithUser, error) {
	if endDate.IsZero() {
		endDate = startDate
	}
	if endDate.Before(startDate) {
		return nil, invalid("endDate", "must not be before startDate")
	}

	users, err := a.Users.ListUsers(ctx, UserQuery{Region: region})
	if err != nil {
		return nil, &PersistenceError{Op: "list users", Err: err}
	}
	if len(users) == 0 {
		return []EventWithUser{}, nil
	}

	byID := make(map[string]*model.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	events, err := a.listEvents(ctx, EventQuery{
		UserIDs: utils.Map(users, func(u model.User) string { return u.ID }),
		From:    utils.StartOfDay(startDate),
		Through: utils.EndOfDay(endDate),
	})
	if err != nil {
		return nil, err
	}
	return utils.Map(events, func(e model.AttendanceEvent) EventWithUser {
		return EventWithUser{AttendanceEvent: e, User: byID[e.UserID]}
	}), nil
}
