package store

import "fieldtrack.com/fieldtrack/attendance/core"

// Store is everything a backend has to provide.
type Store interface {
	core.EventStore
	core.DistanceStore
	core.UserStore
}

var (
	_ Store = (*GormStore)(nil)
	_ Store = (*MongoStore)(nil)
)
