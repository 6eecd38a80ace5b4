package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"itnfit/pkg/event"
	"itnfit/pkg/logger"
	"itnfit/services/points/internal/entity"
	"itnfit/services/points/internal/repo/persistent"
)

const (
	DefaultUsageRequestTTL = 5 * time.Minute
	redemptionDescription  = "Point redemption"
	maxCodeAttempts        = 8
)

type PointsUseCase interface {
	GetBalance(ctx context.Context, userID string) (int, error)
	GetHistory(ctx context.Context, userID string, limit, offset int) ([]*entity.Transaction, error)
	Earn(ctx context.Context, userID string, amount int, description string) (*entity.Transaction, error)
	EarnWithReference(ctx context.Context, userID string, amount int, description, reference string) (*entity.Transaction, error)

	CreateUsageRequest(ctx context.Context, userID, userName string, amount int) (*entity.UsageRequest, error)
	GetUsageRequest(ctx context.Context, requestID string) (*entity.UsageRequest, error)
	ListPendingRequests(ctx context.Context, userID string) ([]*entity.UsageRequest, error)
	LookupPendingRequest(ctx context.Context, code string) (*entity.UsageRequest, error)
	ConfirmUsage(ctx context.Context, code, staffID string) (*entity.Transaction, error)
	CancelRequest(ctx context.Context, requestID string) error

	Subscribe(handler func(event.Event)) func()
}

type Option func(*pointsUseCase)

func WithClock(now func() time.Time) Option {
	return func(uc *pointsUseCase) {
		uc.now = now
	}
}

func WithCodeGenerator(gen func() (string, error)) Option {
	return func(uc *pointsUseCase) {
		uc.newCode = gen
	}
}

func WithUsageRequestTTL(ttl time.Duration) Option {
	return func(uc *pointsUseCase) {
		if ttl > 0 {
			uc.ttl = ttl
		}
	}
}

type pointsUseCase struct {
	pointsRepo persistent.PointsRepository
	bus        *event.Bus
	logger     *logger.Logger
	locks      *userLocks
	now        func() time.Time
	newCode    func() (string, error)
	ttl        time.Duration
}

func NewPointsUseCase(pointsRepo persistent.PointsRepository, bus *event.Bus, logger *logger.Logger, opts ...Option) PointsUseCase {
	uc := &pointsUseCase{
		pointsRepo: pointsRepo,
		bus:        bus,
		logger:     logger,
		locks:      newUserLocks(),
		now:        func() time.Time { return time.Now().UTC() },
		newCode:    NewVerificationCode,
		ttl:        DefaultUsageRequestTTL,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *pointsUseCase) GetBalance(ctx context.Context, userID string) (int, error) {
	balance, err := uc.pointsRepo.GetBalance(ctx, userID)
	if err != nil {
		uc.logger.Error("Failed to get balance for user %s: %v", userID, err)
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

func (uc *pointsUseCase) GetHistory(ctx context.Context, userID string, limit, offset int) ([]*entity.Transaction, error) {
	transactions, err := uc.pointsRepo.GetTransactions(ctx, userID, limit, offset)
	if err != nil {
		uc.logger.Error("Failed to get transactions for user %s: %v", userID, err)
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	return transactions, nil
}

func (uc *pointsUseCase) Earn(ctx context.Context, userID string, amount int, description string) (*entity.Transaction, error) {
	return uc.EarnWithReference(ctx, userID, amount, description, "")
}

// EarnWithReference credits the user once per non-empty reference; repeating
// a reference returns the transaction recorded the first time.
func (uc *pointsUseCase) EarnWithReference(ctx context.Context, userID string, amount int, description, reference string) (*entity.Transaction, error) {
	if userID == "" {
		return nil, ErrInvalidUser
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	unlock := uc.locks.Lock(userID)
	defer unlock()

	transaction, err := uc.pointsRepo.Credit(ctx, &entity.Transaction{
		UserID:      userID,
		Type:        entity.TransactionTypeEarn,
		Amount:      amount,
		Description: description,
		Reference:   reference,
		Status:      entity.TransactionStatusCompleted,
		CreatedAt:   uc.now(),
	})
	if errors.Is(err, persistent.ErrDuplicateReference) {
		existing, findErr := uc.pointsRepo.FindTransactionByReference(ctx, reference)
		if findErr != nil {
			return nil, fmt.Errorf("failed to load earn for reference %s: %w", reference, findErr)
		}
		return existing, nil
	}
	if err != nil {
		uc.logger.Error("Failed to credit %d points to user %s: %v", amount, userID, err)
		return nil, fmt.Errorf("failed to earn points: %w", err)
	}

	uc.publish(event.PointsEarned, userID, "")
	return transaction, nil
}

func (uc *pointsUseCase) CreateUsageRequest(ctx context.Context, userID, userName string, amount int) (*entity.UsageRequest, error) {
	if userID == "" {
		return nil, ErrInvalidUser
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	unlock := uc.locks.Lock(userID)
	defer unlock()

	balance, err := uc.pointsRepo.GetBalance(ctx, userID)
	if err != nil {
		uc.logger.Error("Failed to get balance for user %s: %v", userID, err)
		return nil, fmt.Errorf("failed to create usage request: %w", err)
	}
	if amount > balance {
		return nil, ErrInsufficientBalance
	}

	code, err := uc.allocateCode(ctx)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	req, err := uc.pointsRepo.CreateUsageRequest(ctx, &entity.UsageRequest{
		UserID:           userID,
		UserName:         userName,
		Amount:           amount,
		VerificationCode: code,
		Status:           entity.UsageRequestPending,
		CreatedAt:        now,
		ExpiresAt:        now.Add(uc.ttl),
	})
	if err != nil {
		uc.logger.Error("Failed to store usage request for user %s: %v", userID, err)
		return nil, fmt.Errorf("failed to create usage request: %w", err)
	}

	uc.publish(event.UsageRequestCreated, userID, req.ID)
	return req, nil
}

// allocateCode draws codes until one is not held by a pending request.
func (uc *pointsUseCase) allocateCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := uc.newCode()
		if err != nil {
			uc.logger.Error("Failed to generate verification code: %v", err)
			return "", fmt.Errorf("failed to generate verification code: %w", err)
		}
		code = NormalizeCode(code)

		inUse, err := uc.pointsRepo.CodeInUse(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check verification code: %w", err)
		}
		if !inUse {
			return code, nil
		}
	}
	uc.logger.Warn("Verification code space exhausted after %d attempts", maxCodeAttempts)
	return "", ErrCodeExhausted
}

func (uc *pointsUseCase) GetUsageRequest(ctx context.Context, requestID string) (*entity.UsageRequest, error) {
	req, err := uc.pointsRepo.GetUsageRequest(ctx, requestID)
	if errors.Is(err, persistent.ErrNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get usage request: %w", err)
	}
	if req.IsPending() && req.IsExpiredAt(uc.now()) {
		uc.expire(ctx, req)
	}
	return req, nil
}

func (uc *pointsUseCase) ListPendingRequests(ctx context.Context, userID string) ([]*entity.UsageRequest, error) {
	requests, err := uc.pointsRepo.ListPendingByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list usage requests: %w", err)
	}

	now := uc.now()
	live := requests[:0]
	for _, req := range requests {
		if req.IsExpiredAt(now) {
			uc.expire(ctx, req)
			continue
		}
		live = append(live, req)
	}
	return live, nil
}

// LookupPendingRequest finds the pending request for code. A request found
// past its deadline is moved to expired here; nothing expires requests in
// the background.
func (uc *pointsUseCase) LookupPendingRequest(ctx context.Context, code string) (*entity.UsageRequest, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, ErrRequestNotFound
	}

	req, err := uc.pointsRepo.FindPendingByCode(ctx, code)
	if errors.Is(err, persistent.ErrNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up usage request: %w", err)
	}

	if req.IsExpiredAt(uc.now()) {
		uc.expire(ctx, req)
		return nil, ErrRequestExpired
	}
	return req, nil
}

// ConfirmUsage redeems the request behind code on behalf of staffID. At most
// one confirmation per code succeeds; a failed confirmation changes nothing
// except moving an overdue request to expired.
func (uc *pointsUseCase) ConfirmUsage(ctx context.Context, code, staffID string) (*entity.Transaction, error) {
	req, err := uc.LookupPendingRequest(ctx, code)
	if err != nil {
		return nil, err
	}

	unlock := uc.locks.Lock(req.UserID)
	defer unlock()

	// the deadline may have passed while waiting for the lock
	now := uc.now()
	if req.IsExpiredAt(now) {
		uc.expire(ctx, req)
		return nil, ErrRequestExpired
	}

	transaction, err := uc.pointsRepo.CompleteUsage(ctx, req.ID, staffID, redemptionDescription, now)
	switch {
	case errors.Is(err, persistent.ErrNotPending), errors.Is(err, persistent.ErrNotFound):
		return nil, ErrRequestNotFound
	case errors.Is(err, persistent.ErrInsufficientBalance):
		return nil, ErrInsufficientBalance
	case err != nil:
		uc.logger.Error("Failed to confirm usage request %s: %v", req.ID, err)
		return nil, fmt.Errorf("failed to confirm usage: %w", err)
	}

	uc.logger.Info("Usage request %s confirmed by staff %s: %d points from user %s", req.ID, staffID, req.Amount, req.UserID)
	uc.publish(event.UsageRequestCompleted, req.UserID, req.ID)
	return transaction, nil
}

// CancelRequest removes a pending request. It does not check who asks;
// callers verify ownership first.
func (uc *pointsUseCase) CancelRequest(ctx context.Context, requestID string) error {
	req, err := uc.pointsRepo.GetUsageRequest(ctx, requestID)
	if errors.Is(err, persistent.ErrNotFound) {
		return ErrRequestNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get usage request: %w", err)
	}

	deleted, err := uc.pointsRepo.DeletePending(ctx, requestID)
	if err != nil {
		uc.logger.Error("Failed to cancel usage request %s: %v", requestID, err)
		return fmt.Errorf("failed to cancel usage request: %w", err)
	}
	if !deleted {
		return ErrRequestNotFound
	}

	uc.publish(event.UsageRequestCancelled, req.UserID, req.ID)
	return nil
}

func (uc *pointsUseCase) Subscribe(handler func(event.Event)) func() {
	return uc.bus.Subscribe(handler)
}

func (uc *pointsUseCase) expire(ctx context.Context, req *entity.UsageRequest) {
	changed, err := uc.pointsRepo.MarkExpired(ctx, req.ID)
	if err != nil {
		uc.logger.Error("Failed to expire usage request %s: %v", req.ID, err)
		return
	}
	req.Status = entity.UsageRequestExpired
	if changed {
		uc.publish(event.UsageRequestExpired, req.UserID, req.ID)
	}
}

func (uc *pointsUseCase) publish(eventType, userID, requestID string) {
	uc.bus.Publish(event.Event{
		Type:      eventType,
		UserID:    userID,
		RequestID: requestID,
		At:        uc.now(),
	})
}

// DisplayName falls back to a short form of the user id when the token
// carries no name.
func DisplayName(name, userID string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	if len(userID) > 8 {
		return userID[:8]
	}
	return userID
}
