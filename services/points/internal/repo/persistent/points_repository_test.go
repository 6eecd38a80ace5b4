package persistent

import (
	"context"
	"fmt"
	"testing"
	"time"

	"itnfit/services/points/internal/entity"
	"itnfit/services/points/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// per-test in-memory database so tests do not share state
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.BalanceModel{}, &model.TransactionModel{}, &model.UsageRequestModel{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

var baseTime = time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)

func credit(t *testing.T, repo PointsRepository, userID string, amount int, at time.Time) *entity.Transaction {
	t.Helper()
	tx, err := repo.Credit(context.Background(), &entity.Transaction{
		UserID:      userID,
		Type:        entity.TransactionTypeEarn,
		Amount:      amount,
		Description: "test earn",
		Status:      entity.TransactionStatusCompleted,
		CreatedAt:   at,
	})
	require.NoError(t, err)
	return tx
}

func pendingRequest(t *testing.T, repo PointsRepository, userID, code string, amount int) *entity.UsageRequest {
	t.Helper()
	req, err := repo.CreateUsageRequest(context.Background(), &entity.UsageRequest{
		UserID:           userID,
		UserName:         "Kim",
		Amount:           amount,
		VerificationCode: code,
		Status:           entity.UsageRequestPending,
		CreatedAt:        baseTime,
		ExpiresAt:        baseTime.Add(5 * time.Minute),
	})
	require.NoError(t, err)
	return req
}

func TestGetBalance_MissingUserIsZero(t *testing.T) {
	repo := NewPointsRepository(setupTestDB(t))

	balance, err := repo.GetBalance(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, 0, balance)
}

func TestCredit_CreatesAndAccumulates(t *testing.T) {
	repo := NewPointsRepository(setupTestDB(t))
	ctx := context.Background()

	first := credit(t, repo, "user-1", 100, baseTime)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, 100, first.BalanceAfter)

	second := credit(t, repo, "user-1", 50, baseTime.Add(time.Second))
	assert.Equal(t, 150, second.BalanceAfter)

	balance, err := repo.GetBalance(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 150, balance)
}

func TestCredit_DuplicateReference(t *testing.T) {
	repo := NewPointsRepository(setupTestDB(t))
	ctx := context.Background()

	tx := &entity.Transaction{
		UserID:    "user-1",
		Type:      entity.TransactionTypeEarn,
		Amount:    100,
		Reference: "attendance:1",
		Status:    entity.TransactionStatusCompleted,
		CreatedAt: baseTime,
	}
	_, err := repo.Credit(ctx, tx)
	require.NoError(t, err)

	_, err = repo.Credit(ctx, &entity.Transaction{
		UserID:    "user-1",
		Type:      entity.TransactionTypeEarn,
		Amount:    100,
		Reference: "attendance:1",
		Status:    entity.TransactionStatusCompleted,
		CreatedAt: baseTime.Add(time.Second),
	})
	assert.ErrorIs(t, err, ErrDuplicateReference)

	balance, err := repo.GetBalance(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 100, balance)

	found, err := repo.FindTransactionByReference(ctx, "attendance:1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", found.UserID)
}

func TestGetTransactions_NewestFirst(t *testing.T) {
	repo := NewPointsRepository(setupTestDB(t))
	ctx := context.Background()

	credit(t, repo, "user-1", 10, baseTime)
	credit(t, repo, "user-1", 20, baseTime.Add(time.Minute))
	credit(t, repo, "user-1", 30, baseTime.Add(2*time.Minute))
	credit(t, repo, "user-2", 99, baseTime.Add(3*time.Minute))

	history, err := repo.GetTransactions(ctx, "user-1", 0, 0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, 30, history[0].Amount)
	assert.Equal(t, 20, history[1].Amount)
	assert.Equal(t, 10, history[2].Amount)

	page, err := repo.GetTransactions(ctx, "user-1", 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, 20, page[0].Amount)
}

func TestGetTransactions_SameTimestampIsStable(t *testing.T) {
	repo := NewPointsRepository(setupTestDB(t))
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		credit(t, repo, "user-1", 10, baseTime)
	}

	first, err := repo.GetTransactions(ctx, "user-1", 0, 0)
	require.NoError(t, err)
	require.Len(t, first, 4)
	for i := 1; i < len(first); i++ {
		assert.Greater(t, first[i-1].ID, first[i].ID)
	}

	// pages stitch together without repeats or gaps
	var paged []string
	for offset := 0; offset < 4; offset += 2 {
		page, err := repo.GetTransactions(ctx, "user-1", 2, offset)
		require.NoError(t, err)
		for _, tx := range page {
			paged = append(paged, tx.ID)
		}
	}
	ids := make([]string, len(first))
	for i, tx := range first {
		ids[i] = tx.ID
	}
	assert.Equal(t, ids, paged)
}

func TestCompleteUsage_Success(t *testing.T) {
	repo := NewPointsRepository(setupTestDB(t))
	ctx := context.Background()

	credit(t, repo, "user-1", 2450, baseTime)
	req := pendingRequest(t, repo, "user-1", "AB12CD", 500)

	tx, err := repo.CompleteUsage(ctx, req.ID, "staff-1", "Point redemption", baseTime.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, -500, tx.Amount)
	assert.Equal(t, 1950, tx.BalanceAfter)
	assert.Equal(t, "AB12CD", tx.VerificationCode)
	assert.Equal(t, "staff-1", tx.StaffID)
	assert.Equal(t, entity.TransactionTypeUse, tx.Type)

	stored, err := repo.GetUsageRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.UsageRequestCompleted, stored.Status)
	assert.Equal(t, "staff-1", stored.StaffID)
	require.NotNil(t, stored.CompletedAt)

	balance, err := repo.GetBalance(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1950, balance)
}

func TestCompleteUsage_SecondCallFails(t *testing.T) {
	repo := NewPointsRepository(setupTestDB(t))
	ctx := context.Background()

	credit(t, repo, "user-1", 1000, baseTime)
	req := pendingRequest(t, repo, "user-1", "AB12CD", 300)

	_, err := repo.CompleteUsage(ctx, req.ID, "staff-1", "Point redemption", baseTime)
	require.NoError(t, err)

	_, err = repo.CompleteUsage(ctx, req.ID, "staff-2", "Point redemption", baseTime)
	assert.ErrorIs(t, err, ErrNotPending)

	balance, err := repo.GetBalance(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 700, balance)
}

func TestCompleteUsage_InsufficientBalanceRollsBack(t *testing.T) {
	repo := NewPointsRepository(setupTestDB(t))
	ctx := context.Background()

	credit(t, repo, "user-1", 100, baseTime)
	req := pendingRequest(t, repo, "user-1", "AB12CD", 300)

	_, err := repo.CompleteUsage(ctx, req.ID, "staff-1", "Point redemption", baseTime)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	stored, err := repo.GetUsageRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.UsageRequestPending, stored.Status)

	history, err := repo.GetTransactions(ctx, "user-1", 0, 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestCompleteUsage_UnknownRequest(t *testing.T) {
	repo := NewPointsRepository(setupTestDB(t))

	_, err := repo.CompleteUsage(context.Background(), uuid.NewString(), "staff-1", "Point redemption", baseTime)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPendingLookupAndCodeInUse(t *testing.T) {
	repo := NewPointsRepository(setupTestDB(t))
	ctx := context.Background()

	req := pendingRequest(t, repo, "user-1", "ZZ99ZZ", 10)

	inUse, err := repo.CodeInUse(ctx, "ZZ99ZZ")
	require.NoError(t, err)
	assert.True(t, inUse)

	found, err := repo.FindPendingByCode(ctx, "ZZ99ZZ")
	require.NoError(t, err)
	assert.Equal(t, req.ID, found.ID)

	expired, err := repo.MarkExpired(ctx, req.ID)
	require.NoError(t, err)
	assert.True(t, expired)

	again, err := repo.MarkExpired(ctx, req.ID)
	require.NoError(t, err)
	assert.False(t, again)

	inUse, err = repo.CodeInUse(ctx, "ZZ99ZZ")
	require.NoError(t, err)
	assert.False(t, inUse)

	_, err = repo.FindPendingByCode(ctx, "ZZ99ZZ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeletePending(t *testing.T) {
	repo := NewPointsRepository(setupTestDB(t))
	ctx := context.Background()

	req := pendingRequest(t, repo, "user-1", "CANCEL", 10)
	other := pendingRequest(t, repo, "user-1", "KEEPME", 20)

	pending, err := repo.ListPendingByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	deleted, err := repo.DeletePending(ctx, req.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = repo.GetUsageRequest(ctx, req.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	deleted, err = repo.DeletePending(ctx, req.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	pending, err = repo.ListPendingByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, other.ID, pending[0].ID)
}
