package amqp

import (
	"context"
	"errors"
	"time"

	"itnfit/pkg/logger"
	"itnfit/pkg/queue"
	"itnfit/services/points/internal/usecase"
)

const handleTimeout = 10 * time.Second

// TaskSource delivers earn tasks; *queue.Client implements it.
type TaskSource interface {
	ConsumeEarnTasks(handler func(task queue.EarnTask) error) error
}

// EarnConsumer applies earn tasks published by other services to the ledger.
type EarnConsumer struct {
	pointsUseCase usecase.PointsUseCase
	logger        *logger.Logger
}

func NewEarnConsumer(pointsUseCase usecase.PointsUseCase, logger *logger.Logger) *EarnConsumer {
	return &EarnConsumer{
		pointsUseCase: pointsUseCase,
		logger:        logger,
	}
}

func (c *EarnConsumer) Start(source TaskSource) error {
	return source.ConsumeEarnTasks(c.Handle)
}

// Handle credits one task. Validation failures are permanent, so they are
// logged and acknowledged instead of being retried.
func (c *EarnConsumer) Handle(task queue.EarnTask) error {
	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	transaction, err := c.pointsUseCase.EarnWithReference(ctx, task.UserID, task.Amount, task.Description, task.Reference)
	if errors.Is(err, usecase.ErrInvalidAmount) || errors.Is(err, usecase.ErrInvalidUser) {
		c.logger.Warn("Discarding earn task from %s for user %s: %v", task.Source, task.UserID, err)
		return nil
	}
	if err != nil {
		return err
	}

	c.logger.Info("Credited %d points to user %s from %s (balance %d)", task.Amount, task.UserID, task.Source, transaction.BalanceAfter)
	return nil
}
