package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PointBalance and PointTransaction mirror the ledger tables owned by the
// points service.
type PointBalance struct {
	UserID    string    `gorm:"type:uuid;primary_key" json:"user_id"`
	Points    int       `gorm:"not null;default:0" json:"points"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PointBalance) TableName() string {
	return "point_balances"
}

type PointTransaction struct {
	ID           string    `gorm:"type:uuid;primary_key" json:"id"`
	UserID       string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Type         string    `gorm:"type:varchar(10);not null" json:"type"`
	Amount       int       `gorm:"not null" json:"amount"`
	BalanceAfter int       `gorm:"not null" json:"balance_after"`
	Description  string    `gorm:"type:varchar(255)" json:"description"`
	Reference    *string   `gorm:"type:varchar(128);uniqueIndex" json:"reference,omitempty"`
	Status       string    `gorm:"type:varchar(20);not null" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

func (PointTransaction) TableName() string {
	return "point_transactions"
}

func (t *PointTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}
