package persistent

import (
	"itnfit/services/points/internal/entity"
	"itnfit/services/points/internal/model"
)

func ToTransactionEntity(m *model.TransactionModel) *entity.Transaction {
	if m == nil {
		return nil
	}

	return &entity.Transaction{
		ID:               m.ID,
		UserID:           m.UserID,
		Type:             entity.TransactionType(m.Type),
		Amount:           m.Amount,
		BalanceAfter:     m.BalanceAfter,
		Description:      m.Description,
		VerificationCode: deref(m.VerificationCode),
		StaffID:          deref(m.StaffID),
		Reference:        deref(m.Reference),
		Status:           entity.TransactionStatus(m.Status),
		CreatedAt:        m.CreatedAt,
	}
}

func ToTransactionModel(e *entity.Transaction) *model.TransactionModel {
	if e == nil {
		return nil
	}

	return &model.TransactionModel{
		ID:               e.ID,
		UserID:           e.UserID,
		Type:             string(e.Type),
		Amount:           e.Amount,
		BalanceAfter:     e.BalanceAfter,
		Description:      e.Description,
		VerificationCode: optional(e.VerificationCode),
		StaffID:          optional(e.StaffID),
		Reference:        optional(e.Reference),
		Status:           string(e.Status),
		CreatedAt:        e.CreatedAt,
	}
}

func ToUsageRequestEntity(m *model.UsageRequestModel) *entity.UsageRequest {
	if m == nil {
		return nil
	}

	return &entity.UsageRequest{
		ID:               m.ID,
		UserID:           m.UserID,
		UserName:         m.UserName,
		Amount:           m.Amount,
		VerificationCode: m.VerificationCode,
		Status:           entity.UsageRequestStatus(m.Status),
		StaffID:          deref(m.StaffID),
		CreatedAt:        m.CreatedAt,
		ExpiresAt:        m.ExpiresAt,
		CompletedAt:      m.CompletedAt,
	}
}

func ToUsageRequestModel(e *entity.UsageRequest) *model.UsageRequestModel {
	if e == nil {
		return nil
	}

	return &model.UsageRequestModel{
		ID:               e.ID,
		UserID:           e.UserID,
		UserName:         e.UserName,
		Amount:           e.Amount,
		VerificationCode: e.VerificationCode,
		Status:           string(e.Status),
		StaffID:          optional(e.StaffID),
		CreatedAt:        e.CreatedAt,
		ExpiresAt:        e.ExpiresAt,
		CompletedAt:      e.CompletedAt,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
