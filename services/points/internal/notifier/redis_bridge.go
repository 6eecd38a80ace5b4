package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"itnfit/pkg/event"
	"itnfit/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const publishTimeout = 2 * time.Second

// Channel is the Redis pub/sub channel carrying a user's ledger changes.
func Channel(userID string) string {
	return fmt.Sprintf("points:%s", userID)
}

// RedisBridge republishes ledger events on Redis so that WebSocket clients
// connected to any replica hear about them.
type RedisBridge struct {
	redisClient *redis.Client
	logger      *logger.Logger
}

func NewRedisBridge(redisClient *redis.Client, logger *logger.Logger) *RedisBridge {
	return &RedisBridge{
		redisClient: redisClient,
		logger:      logger,
	}
}

// Handle is meant to be passed to Subscribe.
func (b *RedisBridge) Handle(ev event.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		b.logger.Error("Failed to marshal points event: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := b.redisClient.Publish(ctx, Channel(ev.UserID), payload).Err(); err != nil {
		b.logger.Error("Failed to publish points event %s for user %s: %v", ev.Type, ev.UserID, err)
	}
}
