package persistent

import (
	"context"
	"errors"

	"itnfit/services/attendance/internal/entity"
	"itnfit/services/attendance/internal/model"

	"gorm.io/gorm"
)

var ErrAlreadyCheckedIn = errors.New("attendance already recorded for this date")

type AttendanceRepository interface {
	Create(ctx context.Context, attendance *entity.Attendance) (*entity.Attendance, error)
	FindByUserAndDate(ctx context.Context, userID, checkDate string) (*entity.Attendance, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Attendance, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	ClearReward(ctx context.Context, id string) error
}

type attendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) Create(ctx context.Context, attendance *entity.Attendance) (*entity.Attendance, error) {
	attendanceModel := ToAttendanceModel(attendance)
	if err := r.db.WithContext(ctx).Create(attendanceModel).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyCheckedIn
		}
		return nil, err
	}
	return ToAttendanceEntity(attendanceModel), nil
}

// FindByUserAndDate returns nil, nil when the member has not checked in.
func (r *attendanceRepository) FindByUserAndDate(ctx context.Context, userID, checkDate string) (*entity.Attendance, error) {
	var attendanceModel model.AttendanceModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND check_date = ?", userID, checkDate).
		First(&attendanceModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ToAttendanceEntity(&attendanceModel), nil
}

func (r *attendanceRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Attendance, error) {
	var attendanceModels []model.AttendanceModel
	query := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("checked_in_at DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	if err := query.Find(&attendanceModels).Error; err != nil {
		return nil, err
	}

	attendances := make([]*entity.Attendance, len(attendanceModels))
	for i := range attendanceModels {
		attendances[i] = ToAttendanceEntity(&attendanceModels[i])
	}
	return attendances, nil
}

func (r *attendanceRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.AttendanceModel{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// ClearReward records that no points were granted for the check-in.
func (r *attendanceRepository) ClearReward(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&model.AttendanceModel{}).
		Where("id = ?", id).
		Update("points_awarded", 0).Error
}
