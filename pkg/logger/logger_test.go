package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	logger := New()
	assert.NotNil(t, logger)
	assert.NotNil(t, logger.info)
	assert.NotNil(t, logger.error)
	assert.NotNil(t, logger.warn)
}

func TestNewNop(t *testing.T) {
	logger := NewNop()
	assert.NotNil(t, logger)

	assert.NotPanics(t, func() {
		logger.Info("Test message: %s", "info")
		logger.Error("Test error: %s", "error")
		logger.Warn("Test warning: %s", "warning")
	})
}

func TestLogger_Formatting(t *testing.T) {
	logger := New()

	assert.NotPanics(t, func() {
		logger.Info("User %s checked in with reward %d", "member-1", 100)
		logger.Error("Failed to confirm code %s: %v", "AB12CD", "expired")
		logger.Warn("Warning: %s count is %d", "pending", 5)
	})
}

func TestLogger_With(t *testing.T) {
	logger := NewNop().With("service", "points")
	assert.NotNil(t, logger)
	assert.NotPanics(t, func() {
		logger.Info("scoped %s", "message")
	})
}
