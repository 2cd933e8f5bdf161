package model

import (
	"time"

	"gorm.io/datatypes"
)

type Leg struct {
	From        string  `json:"from" bson:"from"`
	To          string  `json:"to" bson:"to"`
	DistanceKm  float64 `json:"distance" bson:"distance"`
	TransitTime string  `json:"transitTime,omitempty" bson:"transitTime,omitempty"`
}

// DistanceSummary is the travelled distance of one user on one day.
// At most one row exists per (UserID, Date).
type DistanceSummary struct {
	ID                    string                   `gorm:"primaryKey;type:varchar(36)" json:"id" bson:"_id"`
	UserID                string                   `gorm:"type:varchar(36);not null;uniqueIndex:idx_distance_user_date,priority:1" json:"userId" bson:"userId"`
	Date                  string                   `gorm:"type:varchar(10);not null;uniqueIndex:idx_distance_user_date,priority:2" json:"date" bson:"date"`
	TotalDistance         float64                  `gorm:"not null" json:"totalDistance" bson:"totalDistance"`
	PointToPointDistances datatypes.JSONSlice[Leg] `json:"pointToPointDistances" bson:"pointToPointDistances"`

	UpdatedAt time.Time `gorm:"not null" json:"updatedAt" bson:"updatedAt"`
}

func (DistanceSummary) TableName() string {
	return "distance_summaries"
}

// PairDistance is one row of a distance matrix answer, aligned by index
// with the origin/destination pair it was computed for.
type PairDistance struct {
	Status       string
	DistanceText string
}
