package tracking

import (
	"context"
	"errors"
	"fmt"

	"smart-menu/internal/logger"
	"smart-menu/internal/models"
)

const (
	MinTokenLength = 6
	MaxTokenLength = 10
)

var (
	ErrNotFound     = models.ErrOrderNotFound
	ErrInvalidToken = fmt.Errorf("token must be %d to %d characters", MinTokenLength, MaxTokenLength)
)

// Service provides order lookups
type Service struct {
	store  Store
	logger *logger.Logger
}

// NewService creates a new tracking service
func NewService(store Store, logger *logger.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

// GetOrderByToken returns the order with the given token, matched case-insensitively
func (s *Service) GetOrderByToken(ctx context.Context, token, requestID string) (*models.Order, error) {
	token = models.NormalizeToken(token)
	if token == "" {
		return nil, ErrNotFound
	}

	order, err := s.store.GetByToken(ctx, token)
	if err != nil {
		return nil, s.wrap(err, "get order by token", requestID, map[string]interface{}{"token": token})
	}
	return order, nil
}

// LookupToken validates a customer-entered token before looking it up
func (s *Service) LookupToken(ctx context.Context, token, requestID string) (*models.Order, error) {
	token = models.NormalizeToken(token)
	if len(token) < MinTokenLength || len(token) > MaxTokenLength {
		return nil, ErrInvalidToken
	}
	return s.GetOrderByToken(ctx, token, requestID)
}

// GetOrder returns the order with the given id
func (s *Service) GetOrder(ctx context.Context, id int64, requestID string) (*models.Order, error) {
	order, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, s.wrap(err, "get order by id", requestID, map[string]interface{}{"order_id": id})
	}
	return order, nil
}

// ListOrders returns all orders, newest first
func (s *Service) ListOrders(ctx context.Context, requestID string) ([]*models.Order, error) {
	orders, err := s.store.List(ctx)
	if err != nil {
		return nil, s.wrap(err, "list orders", requestID, nil)
	}
	return orders, nil
}

// GetOrderStatus returns the compact status view of an order
func (s *Service) GetOrderStatus(ctx context.Context, token, requestID string) (*models.OrderTrackingResponse, error) {
	order, err := s.GetOrderByToken(ctx, token, requestID)
	if err != nil {
		return nil, err
	}

	return &models.OrderTrackingResponse{
		Token:         order.Token,
		CurrentStatus: order.Status,
		PaymentStatus: order.PaymentStatus,
		TableNumber:   order.TableNumber,
		UpdatedAt:     order.UpdatedAt,
	}, nil
}

// GetOrderHistory retrieves the complete status history of an order
func (s *Service) GetOrderHistory(ctx context.Context, token, requestID string) ([]models.OrderStatusHistory, error) {
	token = models.NormalizeToken(token)
	if token == "" {
		return nil, ErrNotFound
	}

	history, err := s.store.History(ctx, token)
	if err != nil {
		return nil, s.wrap(err, "get order history", requestID, map[string]interface{}{"token": token})
	}
	if history == nil {
		history = []models.OrderStatusHistory{}
	}
	return history, nil
}

// HealthCheck reports whether the backing store is reachable
func (s *Service) HealthCheck(ctx context.Context) bool {
	return s.store.Ping(ctx) == nil
}

func (s *Service) wrap(err error, op, requestID string, fields map[string]interface{}) error {
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	s.logger.Error("db_query_failed", "Failed to "+op, requestID, err, fields)
	return fmt.Errorf("%s: %w", op, err)
}
