package queue

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEarnTask(t *testing.T) {
	body, err := json.Marshal(EarnTask{
		UserID:      "user-1",
		Amount:      100,
		Description: "Attendance check-in",
		Reference:   "attendance:abc",
		Source:      "attendance",
		CreatedAt:   time.Date(2024, 3, 4, 1, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	task, err := DecodeEarnTask(body)
	require.NoError(t, err)
	assert.Equal(t, "user-1", task.UserID)
	assert.Equal(t, 100, task.Amount)
	assert.Equal(t, "attendance:abc", task.Reference)
}

func TestDecodeEarnTask_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "{"},
		{"missing user", `{"amount": 10}`},
		{"zero amount", `{"user_id": "user-1", "amount": 0}`},
		{"negative amount", `{"user_id": "user-1", "amount": -5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeEarnTask([]byte(tt.body))
			assert.Error(t, err)
		})
	}
}

func TestSettleEarnTask(t *testing.T) {
	valid := []byte(`{"user_id": "user-1", "amount": 100, "reference": "attendance:abc"}`)

	tests := []struct {
		name       string
		body       []byte
		handlerErr error
		want       settlement
	}{
		{name: "handled", body: valid, want: settleAck},
		{name: "malformed", body: []byte("{"), want: settleDrop},
		{name: "handler failure", body: valid, handlerErr: errors.New("database down"), want: settleRequeue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := settleEarnTask(tt.body, func(EarnTask) error { return tt.handlerErr })
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSettleEarnTask_RepeatedFailuresKeepRequeueing(t *testing.T) {
	valid := []byte(`{"user_id": "user-1", "amount": 100, "reference": "attendance:abc"}`)
	calls := 0
	failing := func(EarnTask) error {
		calls++
		return errors.New("database down")
	}

	for i := 0; i < 3; i++ {
		got, err := settleEarnTask(valid, failing)
		assert.Equal(t, settleRequeue, got)
		assert.Error(t, err)
	}
	assert.Equal(t, 3, calls)
}
