package persistent

import (
	"context"
	"errors"
	"time"

	"itnfit/services/points/internal/entity"
	"itnfit/services/points/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound            = errors.New("record not found")
	ErrNotPending          = errors.New("usage request is not pending")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDuplicateReference  = errors.New("duplicate transaction reference")
)

type PointsRepository interface {
	GetBalance(ctx context.Context, userID string) (int, error)
	GetTransactions(ctx context.Context, userID string, limit, offset int) ([]*entity.Transaction, error)
	FindTransactionByReference(ctx context.Context, reference string) (*entity.Transaction, error)
	// Credit adds transaction.Amount to the user's balance and appends the
	// transaction in one database transaction.
	Credit(ctx context.Context, transaction *entity.Transaction) (*entity.Transaction, error)

	CreateUsageRequest(ctx context.Context, req *entity.UsageRequest) (*entity.UsageRequest, error)
	GetUsageRequest(ctx context.Context, id string) (*entity.UsageRequest, error)
	FindPendingByCode(ctx context.Context, code string) (*entity.UsageRequest, error)
	ListPendingByUser(ctx context.Context, userID string) ([]*entity.UsageRequest, error)
	CodeInUse(ctx context.Context, code string) (bool, error)
	MarkExpired(ctx context.Context, id string) (bool, error)
	DeletePending(ctx context.Context, id string) (bool, error)
	// CompleteUsage marks a pending request completed, debits the balance and
	// appends the use transaction atomically. Nothing changes unless the
	// request is still pending and the balance covers the amount.
	CompleteUsage(ctx context.Context, requestID, staffID, description string, at time.Time) (*entity.Transaction, error)
}

type pointsRepository struct {
	db *gorm.DB
}

func NewPointsRepository(db *gorm.DB) PointsRepository {
	return &pointsRepository{db: db}
}

func (r *pointsRepository) GetBalance(ctx context.Context, userID string) (int, error) {
	var balance model.BalanceModel
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return balance.Points, nil
}

func (r *pointsRepository) GetTransactions(ctx context.Context, userID string, limit, offset int) ([]*entity.Transaction, error) {
	var transactionModels []model.TransactionModel
	query := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	if err := query.Find(&transactionModels).Error; err != nil {
		return nil, err
	}

	transactions := make([]*entity.Transaction, len(transactionModels))
	for i := range transactionModels {
		transactions[i] = ToTransactionEntity(&transactionModels[i])
	}
	return transactions, nil
}

func (r *pointsRepository) FindTransactionByReference(ctx context.Context, reference string) (*entity.Transaction, error) {
	var transactionModel model.TransactionModel
	err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&transactionModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return ToTransactionEntity(&transactionModel), nil
}

func (r *pointsRepository) Credit(ctx context.Context, transaction *entity.Transaction) (*entity.Transaction, error) {
	var created *model.TransactionModel

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if transaction.Reference != "" {
			var count int64
			if err := tx.Model(&model.TransactionModel{}).Where("reference = ?", transaction.Reference).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrDuplicateReference
			}
		}

		balance := model.BalanceModel{
			UserID:    transaction.UserID,
			Points:    transaction.Amount,
			UpdatedAt: transaction.CreatedAt,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"points":     gorm.Expr("point_balances.points + ?", transaction.Amount),
				"updated_at": transaction.CreatedAt,
			}),
		}).Create(&balance).Error
		if err != nil {
			return err
		}

		var after model.BalanceModel
		if err := tx.Where("user_id = ?", transaction.UserID).First(&after).Error; err != nil {
			return err
		}

		transactionModel := ToTransactionModel(transaction)
		transactionModel.BalanceAfter = after.Points
		if err := tx.Create(transactionModel).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateReference
			}
			return err
		}
		created = transactionModel
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ToTransactionEntity(created), nil
}

func (r *pointsRepository) CreateUsageRequest(ctx context.Context, req *entity.UsageRequest) (*entity.UsageRequest, error) {
	requestModel := ToUsageRequestModel(req)
	if err := r.db.WithContext(ctx).Create(requestModel).Error; err != nil {
		return nil, err
	}
	return ToUsageRequestEntity(requestModel), nil
}

func (r *pointsRepository) GetUsageRequest(ctx context.Context, id string) (*entity.UsageRequest, error) {
	var requestModel model.UsageRequestModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&requestModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return ToUsageRequestEntity(&requestModel), nil
}

func (r *pointsRepository) FindPendingByCode(ctx context.Context, code string) (*entity.UsageRequest, error) {
	var requestModel model.UsageRequestModel
	err := r.db.WithContext(ctx).
		Where("verification_code = ? AND status = ?", code, string(entity.UsageRequestPending)).
		First(&requestModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return ToUsageRequestEntity(&requestModel), nil
}

func (r *pointsRepository) ListPendingByUser(ctx context.Context, userID string) ([]*entity.UsageRequest, error) {
	var requestModels []model.UsageRequestModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, string(entity.UsageRequestPending)).
		Order("created_at DESC").Order("id DESC").
		Find(&requestModels).Error
	if err != nil {
		return nil, err
	}

	requests := make([]*entity.UsageRequest, len(requestModels))
	for i := range requestModels {
		requests[i] = ToUsageRequestEntity(&requestModels[i])
	}
	return requests, nil
}

func (r *pointsRepository) CodeInUse(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.UsageRequestModel{}).
		Where("verification_code = ? AND status = ?", code, string(entity.UsageRequestPending)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *pointsRepository) MarkExpired(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.UsageRequestModel{}).
		Where("id = ? AND status = ?", id, string(entity.UsageRequestPending)).
		Update("status", string(entity.UsageRequestExpired))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *pointsRepository) DeletePending(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, string(entity.UsageRequestPending)).
		Delete(&model.UsageRequestModel{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *pointsRepository) CompleteUsage(ctx context.Context, requestID, staffID, description string, at time.Time) (*entity.Transaction, error) {
	var created *model.TransactionModel

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req model.UsageRequestModel
		if err := tx.Where("id = ?", requestID).First(&req).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		result := tx.Model(&model.UsageRequestModel{}).
			Where("id = ? AND status = ?", requestID, string(entity.UsageRequestPending)).
			Updates(map[string]interface{}{
				"status":       string(entity.UsageRequestCompleted),
				"staff_id":     optional(staffID),
				"completed_at": at,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotPending
		}

		result = tx.Model(&model.BalanceModel{}).
			Where("user_id = ? AND points >= ?", req.UserID, req.Amount).
			Updates(map[string]interface{}{
				"points":     gorm.Expr("points - ?", req.Amount),
				"updated_at": at,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrInsufficientBalance
		}

		var after model.BalanceModel
		if err := tx.Where("user_id = ?", req.UserID).First(&after).Error; err != nil {
			return err
		}

		code := req.VerificationCode
		transactionModel := &model.TransactionModel{
			UserID:           req.UserID,
			Type:             string(entity.TransactionTypeUse),
			Amount:           -req.Amount,
			BalanceAfter:     after.Points,
			Description:      description,
			VerificationCode: &code,
			StaffID:          optional(staffID),
			Status:           string(entity.TransactionStatusCompleted),
			CreatedAt:        at,
		}
		if err := tx.Create(transactionModel).Error; err != nil {
			return err
		}
		created = transactionModel
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ToTransactionEntity(created), nil
}
