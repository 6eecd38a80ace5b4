package entity

import "time"

// Attendance is one member check-in. CheckDate is the facility-local date;
// a member has at most one attendance per CheckDate.
type Attendance struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	CheckDate      string    `json:"check_date"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	DistanceMeters float64   `json:"distance_meters"`
	PointsAwarded  int       `json:"points_awarded"`
	CheckedInAt    time.Time `json:"checked_in_at"`
}
