package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BalanceModel struct {
	UserID    string    `gorm:"type:uuid;primary_key" json:"user_id"`
	Points    int       `gorm:"not null;default:0;check:points >= 0" json:"points"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (BalanceModel) TableName() string {
	return "point_balances"
}

type TransactionModel struct {
	ID               string    `gorm:"type:uuid;primary_key" json:"id"`
	UserID           string    `gorm:"type:uuid;not null;index:idx_point_tx_user_created,priority:1" json:"user_id"`
	Type             string    `gorm:"type:varchar(10);not null" json:"type"`
	Amount           int       `gorm:"not null" json:"amount"`
	BalanceAfter     int       `gorm:"not null" json:"balance_after"`
	Description      string    `gorm:"type:varchar(255)" json:"description"`
	VerificationCode *string   `gorm:"type:varchar(16);index" json:"verification_code,omitempty"`
	StaffID          *string   `gorm:"type:uuid" json:"staff_id,omitempty"`
	Reference        *string   `gorm:"type:varchar(128);uniqueIndex" json:"reference,omitempty"`
	Status           string    `gorm:"type:varchar(20);not null" json:"status"`
	CreatedAt        time.Time `gorm:"index:idx_point_tx_user_created,priority:2,sort:desc" json:"created_at"`
}

func (TransactionModel) TableName() string {
	return "point_transactions"
}

func (t *TransactionModel) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

type UsageRequestModel struct {
	ID               string     `gorm:"type:uuid;primary_key" json:"id"`
	UserID           string     `gorm:"type:uuid;not null;index" json:"user_id"`
	UserName         string     `gorm:"type:varchar(100)" json:"user_name"`
	Amount           int        `gorm:"not null" json:"amount"`
	VerificationCode string     `gorm:"type:varchar(16);not null;index" json:"verification_code"`
	Status           string     `gorm:"type:varchar(20);not null;index" json:"status"`
	StaffID          *string    `gorm:"type:uuid" json:"staff_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	ExpiresAt        time.Time  `gorm:"not null" json:"expires_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

func (UsageRequestModel) TableName() string {
	return "point_usage_requests"
}

func (r *UsageRequestModel) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}
