package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttendanceModel struct {
	ID             string    `gorm:"type:uuid;primary_key" json:"id"`
	UserID         string    `gorm:"type:uuid;not null;uniqueIndex:idx_attendance_user_date,priority:1" json:"user_id"`
	CheckDate      string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_attendance_user_date,priority:2" json:"check_date"`
	Latitude       float64   `gorm:"not null" json:"latitude"`
	Longitude      float64   `gorm:"not null" json:"longitude"`
	DistanceMeters float64   `gorm:"not null" json:"distance_meters"`
	PointsAwarded  int       `gorm:"not null;default:0" json:"points_awarded"`
	CheckedInAt    time.Time `gorm:"not null;index" json:"checked_in_at"`
}

func (AttendanceModel) TableName() string {
	return "attendances"
}

func (a *AttendanceModel) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}
