package core

import (
	"context"
	"time"

	"fieldtrack.com/fieldtrack/attendance/model"
)

// EventQuery selects attendance events. Zero values leave a bound open.
// Before is an exclusive upper bound on Timestamp, Through an inclusive one;
// callers set at most one of them.
type EventQuery struct {
	UserIDs  []string
	From     time.Time
	Before   time.Time
	Through  time.Time
	DateFrom string
	DateTo   string
}

// EventStore is the append-only log of attendance events.
// ListEvents returns events in ascending timestamp order.
type EventStore interface {
	InsertEvent(ctx context.Context, event *model.AttendanceEvent) error
	ListEvents(ctx context.Context, q EventQuery) ([]model.AttendanceEvent, error)
}

// DistanceStore keeps one DistanceSummary per user per day.
// UpsertDistance must be an atomic insert-or-update on (UserID, Date).
// FindDistance returns nil, nil when no row exists.
type DistanceStore interface {
	UpsertDistance(ctx context.Context, summary *model.DistanceSummary) (*model.DistanceSummary, error)
	FindDistance(ctx context.Context, userID, date string) (*model.DistanceSummary, error)
}

type UserQuery struct {
	IDs    []string
	Role   string
	Region string
}

// UserStore reads user profiles. Find methods return nil, nil when absent.
type UserStore interface {
	ListUsers(ctx context.Context, q UserQuery) ([]model.User, error)
	FindUserByEmail(ctx context.Context, email string) (*model.User, error)
	SaveUser(ctx context.Context, user *model.User) error
}

type MediaStore interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
}

type Geocoder interface {
	ReverseGeocode(ctx context.Context, loc model.Location) (string, error)
}

// DistanceMatrix answers one PairDistance per origin/destination pair,
// aligned by index.
type DistanceMatrix interface {
	PairwiseDistances(ctx context.Context, origins, destinations []model.Location) ([]model.PairDistance, error)
}

// Alerter posts operational messages, e.g. to a chat channel.
type Alerter interface {
	Info(message string) error
	Error(message string) error
}

type nopAlerter struct{}

func (nopAlerter) Info(string) error  { return nil }
func (nopAlerter) Error(string) error { return nil }

// Clock returns the current instant.
type Clock func() time.Time
