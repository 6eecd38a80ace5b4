package persistent

import (
	"itnfit/services/attendance/internal/entity"
	"itnfit/services/attendance/internal/model"
)

func ToAttendanceEntity(m *model.AttendanceModel) *entity.Attendance {
	if m == nil {
		return nil
	}

	return &entity.Attendance{
		ID:             m.ID,
		UserID:         m.UserID,
		CheckDate:      m.CheckDate,
		Latitude:       m.Latitude,
		Longitude:      m.Longitude,
		DistanceMeters: m.DistanceMeters,
		PointsAwarded:  m.PointsAwarded,
		CheckedInAt:    m.CheckedInAt,
	}
}

func ToAttendanceModel(e *entity.Attendance) *model.AttendanceModel {
	if e == nil {
		return nil
	}

	return &model.AttendanceModel{
		ID:             e.ID,
		UserID:         e.UserID,
		CheckDate:      e.CheckDate,
		Latitude:       e.Latitude,
		Longitude:      e.Longitude,
		DistanceMeters: e.DistanceMeters,
		PointsAwarded:  e.PointsAwarded,
		CheckedInAt:    e.CheckedInAt,
	}
}
