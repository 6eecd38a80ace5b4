package entity

import "time"

type TransactionType string

const (
	TransactionTypeEarn TransactionType = "earn"
	TransactionTypeUse  TransactionType = "use"
)

type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
)

type UsageRequestStatus string

const (
	UsageRequestPending   UsageRequestStatus = "pending"
	UsageRequestCompleted UsageRequestStatus = "completed"
	UsageRequestExpired   UsageRequestStatus = "expired"
)

type Balance struct {
	UserID    string    `json:"user_id"`
	Points    int       `json:"points"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Transaction is an append-only ledger entry. Amount is signed: positive
// for earn, negative for use.
type Transaction struct {
	ID               string            `json:"id"`
	UserID           string            `json:"user_id"`
	Type             TransactionType   `json:"type"`
	Amount           int               `json:"amount"`
	BalanceAfter     int               `json:"balance_after"`
	Description      string            `json:"description"`
	VerificationCode string            `json:"verification_code,omitempty"`
	StaffID          string            `json:"staff_id,omitempty"`
	Reference        string            `json:"reference,omitempty"`
	Status           TransactionStatus `json:"status"`
	CreatedAt        time.Time         `json:"created_at"`
}

// UsageRequest is a member's time-boxed intent to redeem points, confirmed
// by staff through its verification code.
type UsageRequest struct {
	ID               string             `json:"id"`
	UserID           string             `json:"user_id"`
	UserName         string             `json:"user_name"`
	Amount           int                `json:"amount"`
	VerificationCode string             `json:"verification_code"`
	Status           UsageRequestStatus `json:"status"`
	StaffID          string             `json:"staff_id,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	ExpiresAt        time.Time          `json:"expires_at"`
	CompletedAt      *time.Time         `json:"completed_at,omitempty"`
}

func (r *UsageRequest) IsExpiredAt(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

func (r *UsageRequest) IsPending() bool {
	return r.Status == UsageRequestPending
}
