package model

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID               string `gorm:"primaryKey;type:varchar(36)" json:"id" bson:"_id"`
	Email            string `gorm:"type:varchar(255);not null;uniqueIndex" json:"email" bson:"email"`
	FullName         string `gorm:"type:varchar(255)" json:"fullName" bson:"fullName"`
	PhoneNumber      string `gorm:"type:varchar(50)" json:"phoneNumber" bson:"phoneNumber"`
	ReportingManager string `gorm:"type:varchar(255)" json:"reportingManager" bson:"reportingManager"`
	Region           string `gorm:"type:varchar(100);index" json:"state" bson:"state"`
	Role             string `gorm:"type:varchar(20);not null;default:user;index" json:"role" bson:"role"`

	CreatedAt time.Time `gorm:"not null;<-:create" json:"createdAt" bson:"createdAt"`
}

func (User) TableName() string {
	return "users"
}
