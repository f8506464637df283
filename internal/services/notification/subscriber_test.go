package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-menu/internal/logger"
	"smart-menu/internal/messaging"
	"smart-menu/internal/models"
)

type replayConsumer struct {
	messages [][]byte
	results  []error
	closed   bool
	handled  chan struct{}
}

func (c *replayConsumer) StartConsuming(ctx context.Context, handler messaging.MessageHandler) error {
	for _, body := range c.messages {
		c.results = append(c.results, handler(ctx, "order.test", body))
	}
	close(c.handled)
	<-ctx.Done()
	return ctx.Err()
}

func (c *replayConsumer) Close() error {
	c.closed = true
	return nil
}

func event(eventType models.EventType, oldStatus, newStatus models.OrderStatus) *models.OrderEvent {
	return &models.OrderEvent{
		Type:         eventType,
		OrderID:      1,
		Token:        "AB12CD34",
		CustomerName: "Ana",
		TableNumber:  7,
		Total:        decimal.RequireFromString("64.7"),
		OldStatus:    oldStatus,
		NewStatus:    newStatus,
		ChangedBy:    "admin",
		Timestamp:    time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC),
	}
}

func TestFormatEvent(t *testing.T) {
	tests := []struct {
		name  string
		event *models.OrderEvent
		want  string
	}{
		{"created", event(models.EventOrderCreated, "", models.StatusPending), "New order AB12CD34 for table 7 (Ana), total 64.70."},
		{"updated", event(models.EventOrderUpdated, "", models.StatusPending), "Order AB12CD34 was updated, total now 64.70."},
		{"deleted", event(models.EventOrderDeleted, "", models.StatusPending), "Order AB12CD34 was deleted by admin."},
		{"confirmed", event(models.EventStatusChanged, models.StatusPending, models.StatusConfirmed), "Order AB12CD34 for table 7 was confirmed."},
		{"preparing", event(models.EventStatusChanged, models.StatusConfirmed, models.StatusPreparing), "Order AB12CD34 is now being prepared."},
		{"ready", event(models.EventStatusChanged, models.StatusPreparing, models.StatusReady), "ready to be served at table 7"},
		{"delivered", event(models.EventStatusChanged, models.StatusReady, models.StatusDelivered), "Order AB12CD34 was delivered."},
		{"cancelled", event(models.EventStatusChanged, models.StatusPending, models.StatusCancelled), "Order AB12CD34 has been cancelled."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatEvent(tt.event)
			assert.Contains(t, got, "[2024-05-01 12:30:00]")
			assert.Contains(t, got, tt.want)
		})
	}
}

func TestSubscriber_Start(t *testing.T) {
	valid, err := json.Marshal(event(models.EventOrderCreated, "", models.StatusPending))
	require.NoError(t, err)

	consumer := &replayConsumer{messages: [][]byte{valid, []byte("{not json"), []byte(`{"type":"created"}`)}, handled: make(chan struct{})}
	var out bytes.Buffer
	sub := NewSubscriber(consumer, logger.NewWithWriter("test", io.Discard), &out)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sub.Start(ctx) }()

	select {
	case <-consumer.handled:
	case <-time.After(time.Second):
		t.Fatal("messages were not handled")
	}
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("subscriber did not stop after cancel")
	}

	assert.True(t, consumer.closed)
	assert.Contains(t, out.String(), "New order AB12CD34")
	require.Len(t, consumer.results, 3)
	assert.NoError(t, consumer.results[0])
	assert.True(t, errors.Is(consumer.results[1], messaging.ErrPoisonMessage))
	assert.True(t, errors.Is(consumer.results[2], messaging.ErrPoisonMessage))
}
