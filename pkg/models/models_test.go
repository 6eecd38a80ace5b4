package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_BeforeCreate(t *testing.T) {
	user := &User{
		Email:    "test@example.com",
		Name:     "Test Member",
		Password: "password",
		Role:     RoleMember,
		IsActive: true,
	}

	// BeforeCreate should set ID if empty
	err := user.BeforeCreate(nil)
	assert.NoError(t, err)
	assert.NotEmpty(t, user.ID)
}

func TestUser_BeforeCreate_WithID(t *testing.T) {
	existingID := "existing-id-123"
	user := &User{
		ID:       existingID,
		Email:    "test@example.com",
		Password: "password",
	}

	err := user.BeforeCreate(nil)
	assert.NoError(t, err)
	// ID should remain unchanged if already set
	assert.Equal(t, existingID, user.ID)
}

func TestPointTransaction_BeforeCreate(t *testing.T) {
	tx := &PointTransaction{UserID: "user-1", Type: "earn", Amount: 100}

	err := tx.BeforeCreate(nil)
	assert.NoError(t, err)
	assert.NotEmpty(t, tx.ID)
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "users", User{}.TableName())
	assert.Equal(t, "point_balances", PointBalance{}.TableName())
	assert.Equal(t, "point_transactions", PointTransaction{}.TableName())
}
