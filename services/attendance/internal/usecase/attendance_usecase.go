package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"itnfit/pkg/geofence"
	"itnfit/pkg/logger"
	"itnfit/pkg/queue"
	"itnfit/services/attendance/internal/entity"
	"itnfit/services/attendance/internal/repo/persistent"

	"github.com/redis/go-redis/v9"
)

const (
	dedupeTTL         = 26 * time.Hour
	rewardDescription = "Attendance check-in"
	rewardSource      = "attendance"
)

var ErrAlreadyCheckedIn = errors.New("already checked in today")

// CheckFailedError reports which attendance checks did not pass.
type CheckFailedError struct {
	Result geofence.Result
}

func (e *CheckFailedError) Error() string {
	var reasons []string
	if !e.Result.QRValid {
		reasons = append(reasons, "invalid QR code")
	}
	if !e.Result.WithinRange {
		reasons = append(reasons, fmt.Sprintf("%.0fm from the facility", e.Result.DistanceMeters))
	}
	if !e.Result.OperatingHours {
		reasons = append(reasons, "outside operating hours")
	}
	return "check-in rejected: " + strings.Join(reasons, ", ")
}

// EarnPublisher hands earn tasks to the points service; *queue.Client
// implements it.
type EarnPublisher interface {
	PublishEarnTask(task queue.EarnTask) error
}

type CheckInResult struct {
	Attendance   *entity.Attendance `json:"attendance"`
	Check        geofence.Result    `json:"check"`
	RewardQueued bool               `json:"reward_queued"`
}

type AttendanceUseCase interface {
	Validate(latitude, longitude float64, qrCode string) geofence.Result
	CheckIn(ctx context.Context, userID, qrCode string, latitude, longitude float64) (*CheckInResult, error)
	GetHistory(ctx context.Context, userID string, limit, offset int) ([]*entity.Attendance, int64, error)
}

type attendanceUseCase struct {
	attendanceRepo persistent.AttendanceRepository
	validator      *geofence.Validator
	redisClient    *redis.Client
	publisher      EarnPublisher
	reward         int
	logger         *logger.Logger
	now            func() time.Time
}

// NewAttendanceUseCase builds the check-in flow. redisClient and publisher
// may be nil: without Redis the database index alone rejects repeats, and
// without a publisher check-ins are recorded unrewarded.
func NewAttendanceUseCase(
	attendanceRepo persistent.AttendanceRepository,
	validator *geofence.Validator,
	redisClient *redis.Client,
	publisher EarnPublisher,
	reward int,
	logger *logger.Logger,
) AttendanceUseCase {
	return &attendanceUseCase{
		attendanceRepo: attendanceRepo,
		validator:      validator,
		redisClient:    redisClient,
		publisher:      publisher,
		reward:         reward,
		logger:         logger,
		now:            time.Now,
	}
}

func (uc *attendanceUseCase) Validate(latitude, longitude float64, qrCode string) geofence.Result {
	return uc.validator.Check(latitude, longitude, strings.TrimSpace(qrCode), uc.now())
}

func (uc *attendanceUseCase) CheckIn(ctx context.Context, userID, qrCode string, latitude, longitude float64) (*CheckInResult, error) {
	now := uc.now()
	result := uc.validator.Check(latitude, longitude, strings.TrimSpace(qrCode), now)
	if !result.OK() {
		return nil, &CheckFailedError{Result: result}
	}

	checkDate := uc.validator.LocalDate(now)
	key := dedupeKey(userID, checkDate)

	claimed, err := uc.claimDay(ctx, key)
	if err != nil {
		uc.logger.Warn("Check-in dedupe unavailable for user %s: %v", userID, err)
	} else if !claimed {
		return nil, ErrAlreadyCheckedIn
	}

	points := 0
	if uc.publisher != nil {
		points = uc.reward
	}

	attendance, err := uc.attendanceRepo.Create(ctx, &entity.Attendance{
		UserID:         userID,
		CheckDate:      checkDate,
		Latitude:       latitude,
		Longitude:      longitude,
		DistanceMeters: result.DistanceMeters,
		PointsAwarded:  points,
		CheckedInAt:    now.UTC(),
	})
	if errors.Is(err, persistent.ErrAlreadyCheckedIn) {
		return nil, ErrAlreadyCheckedIn
	}
	if err != nil {
		uc.releaseDay(key)
		uc.logger.Error("Failed to record attendance for user %s: %v", userID, err)
		return nil, fmt.Errorf("failed to record attendance: %w", err)
	}

	queued := uc.queueReward(ctx, attendance)

	uc.logger.Info("User %s checked in on %s at %.1fm", userID, checkDate, result.DistanceMeters)
	return &CheckInResult{
		Attendance:   attendance,
		Check:        result,
		RewardQueued: queued,
	}, nil
}

// queueReward hands the reward to the points service. When that fails the
// stored record is reset to zero points so it never claims an unpaid reward.
func (uc *attendanceUseCase) queueReward(ctx context.Context, attendance *entity.Attendance) bool {
	if uc.publisher == nil || attendance.PointsAwarded <= 0 {
		return false
	}

	err := uc.publisher.PublishEarnTask(queue.EarnTask{
		UserID:      attendance.UserID,
		Amount:      attendance.PointsAwarded,
		Description: rewardDescription,
		Reference:   "attendance:" + attendance.ID,
		Source:      rewardSource,
		CreatedAt:   attendance.CheckedInAt,
	})
	if err != nil {
		uc.logger.Error("Failed to queue attendance reward for %s: %v", attendance.ID, err)
		if err := uc.attendanceRepo.ClearReward(ctx, attendance.ID); err != nil {
			uc.logger.Error("Failed to clear reward on attendance %s: %v", attendance.ID, err)
			return false
		}
		attendance.PointsAwarded = 0
		return false
	}
	return true
}

// claimDay reports whether this call is the first check-in of the day.
func (uc *attendanceUseCase) claimDay(ctx context.Context, key string) (bool, error) {
	if uc.redisClient == nil {
		return false, errors.New("redis not configured")
	}
	return uc.redisClient.SetNX(ctx, key, uc.now().Unix(), dedupeTTL).Result()
}

func (uc *attendanceUseCase) releaseDay(key string) {
	if uc.redisClient == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := uc.redisClient.Del(ctx, key).Err(); err != nil {
		uc.logger.Warn("Failed to release check-in key %s: %v", key, err)
	}
}

func (uc *attendanceUseCase) GetHistory(ctx context.Context, userID string, limit, offset int) ([]*entity.Attendance, int64, error) {
	attendances, err := uc.attendanceRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		uc.logger.Error("Failed to list attendance for user %s: %v", userID, err)
		return nil, 0, fmt.Errorf("failed to get attendance history: %w", err)
	}

	total, err := uc.attendanceRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance: %w", err)
	}
	return attendances, total, nil
}

func dedupeKey(userID, checkDate string) string {
	return fmt.Sprintf("attendance:%s:%s", userID, checkDate)
}
