package model

import "time"

// Reserved purposes. Any other purpose is a site visit.
const (
	PurposeCheckIn  = "Check In"
	PurposeCheckOut = "Check Out"
	PurposeOnLeave  = "On Leave"
)

const UnknownLocation = "Unknown location"

type Location struct {
	Lat float64 `gorm:"column:lat" json:"lat" bson:"lat"`
	Lng float64 `gorm:"column:lng" json:"lng" bson:"lng"`
}

type AttendanceEvent struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id" bson:"_id"`
	UserID       string    `gorm:"type:varchar(36);not null;index:idx_events_user_ts,priority:1" json:"userId" bson:"userId"`
	Timestamp    time.Time `gorm:"not null;index:idx_events_user_ts,priority:2" json:"timestamp" bson:"timestamp"`
	Date         string    `gorm:"type:varchar(10);not null;index" json:"date" bson:"date"`
	Location     Location  `gorm:"embedded;embeddedPrefix:location_" json:"location" bson:"location"`
	LocationName string    `gorm:"type:varchar(512)" json:"locationName" bson:"locationName"`
	Purpose      string    `gorm:"type:varchar(100);not null;index" json:"purpose" bson:"purpose"`
	SubPurpose   string    `gorm:"type:varchar(255)" json:"subPurpose,omitempty" bson:"subPurpose,omitempty"`
	ImageURL     string    `gorm:"type:varchar(1024)" json:"image" bson:"image"`
	Feedback     string    `gorm:"type:text" json:"feedback,omitempty" bson:"feedback,omitempty"`

	CreatedAt time.Time `gorm:"not null;<-:create" json:"createdAt" bson:"createdAt"`
}

func (AttendanceEvent) TableName() string {
	return "attendance_events"
}

// IsVisit reports whether the event counts towards visit metrics.
func (e *AttendanceEvent) IsVisit() bool {
	return !IsReservedPurpose(e.Purpose)
}

func IsReservedPurpose(purpose string) bool {
	switch purpose {
	case PurposeCheckIn, PurposeCheckOut, PurposeOnLeave:
		return true
	}
	return false
}
