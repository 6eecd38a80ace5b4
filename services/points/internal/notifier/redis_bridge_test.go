package notifier

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"itnfit/pkg/event"
	"itnfit/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisBridge_PublishesToUserChannel(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	pubsub := client.Subscribe(ctx, Channel("user-1"))
	defer pubsub.Close()
	_, err := pubsub.Receive(ctx)
	require.NoError(t, err)

	bridge := NewRedisBridge(client, logger.NewNop())
	at := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	bridge.Handle(event.Event{Type: event.UsageRequestCompleted, UserID: "user-1", RequestID: "req-1", At: at})

	select {
	case msg := <-pubsub.Channel():
		assert.Equal(t, "points:user-1", msg.Channel)
		var got event.Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, event.UsageRequestCompleted, got.Type)
		assert.Equal(t, "req-1", got.RequestID)
		assert.True(t, at.Equal(got.At))
	case <-time.After(time.Second):
		t.Fatal("no message published")
	}
}

func TestRedisBridge_RedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	bridge := NewRedisBridge(client, logger.NewNop())
	assert.NotPanics(t, func() {
		bridge.Handle(event.Event{Type: event.PointsEarned, UserID: "user-1"})
	})
}
