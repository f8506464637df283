package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"smart-menu/internal/logger"
	"smart-menu/internal/messaging"
	"smart-menu/internal/models"
)

// Consumer delivers broker messages to a handler until ctx is done
type Consumer interface {
	StartConsuming(ctx context.Context, handler messaging.MessageHandler) error
	Close() error
}

// Subscriber prints a human-readable line for every order event
type Subscriber struct {
	consumer Consumer
	logger   *logger.Logger
	out      io.Writer
}

// NewSubscriber creates a new notification subscriber writing to out
func NewSubscriber(consumer Consumer, log *logger.Logger, out io.Writer) *Subscriber {
	return &Subscriber{
		consumer: consumer,
		logger:   log,
		out:      out,
	}
}

// Start consumes order events until ctx is cancelled
func (s *Subscriber) Start(ctx context.Context) error {
	requestID := logger.GenerateRequestID()
	s.logger.Info("service_started", "Notification subscriber started", requestID, nil)

	err := s.consumer.StartConsuming(ctx, s.handleEvent)
	if closeErr := s.consumer.Close(); closeErr != nil {
		s.logger.Error("consumer_close_failed", "Failed to close consumer", requestID, closeErr, nil)
	}

	if errors.Is(err, context.Canceled) {
		s.logger.Info("graceful_shutdown", "Notification subscriber stopped", requestID, nil)
		return nil
	}
	return err
}

func (s *Subscriber) handleEvent(ctx context.Context, routingKey string, body []byte) error {
	var event models.OrderEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("decode %s event: %v: %w", routingKey, err, messaging.ErrPoisonMessage)
	}
	if event.Token == "" {
		return fmt.Errorf("%s event without token: %w", routingKey, messaging.ErrPoisonMessage)
	}

	if _, err := fmt.Fprintln(s.out, FormatEvent(&event)); err != nil {
		return fmt.Errorf("write notification: %w", err)
	}

	s.logger.Info("notification_displayed", "Notification displayed", "", map[string]interface{}{
		"type":       event.Type,
		"token":      event.Token,
		"old_status": event.OldStatus,
		"new_status": event.NewStatus,
		"changed_by": event.ChangedBy,
	})
	return nil
}

// FormatEvent renders an order event as one console line
func FormatEvent(event *models.OrderEvent) string {
	timestamp := event.Timestamp.Format("2006-01-02 15:04:05")

	switch event.Type {
	case models.EventOrderCreated:
		return fmt.Sprintf("🧾 [%s] New order %s for table %d (%s), total %s.",
			timestamp, event.Token, event.TableNumber, event.CustomerName, event.Total.StringFixed(2))
	case models.EventOrderUpdated:
		return fmt.Sprintf("✏️ [%s] Order %s was updated, total now %s.",
			timestamp, event.Token, event.Total.StringFixed(2))
	case models.EventOrderDeleted:
		return fmt.Sprintf("🗑️ [%s] Order %s was deleted by %s.", timestamp, event.Token, event.ChangedBy)
	}

	switch event.NewStatus {
	case models.StatusConfirmed:
		return fmt.Sprintf("👍 [%s] Order %s for table %d was confirmed.", timestamp, event.Token, event.TableNumber)
	case models.StatusPreparing:
		return fmt.Sprintf("🍳 [%s] Order %s is now being prepared.", timestamp, event.Token)
	case models.StatusReady:
		return fmt.Sprintf("✅ [%s] Order %s is ready to be served at table %d!", timestamp, event.Token, event.TableNumber)
	case models.StatusDelivered:
		return fmt.Sprintf("🎉 [%s] Order %s was delivered. Enjoy your meal!", timestamp, event.Token)
	case models.StatusCancelled:
		return fmt.Sprintf("❌ [%s] Order %s has been cancelled.", timestamp, event.Token)
	default:
		return fmt.Sprintf("📋 [%s] Order %s status changed from '%s' to '%s' by %s.",
			timestamp, event.Token, event.OldStatus, event.NewStatus, event.ChangedBy)
	}
}
