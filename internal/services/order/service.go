package order

import (
	"context"
	"errors"
	"fmt"

	"smart-menu/internal/catalog"
	"smart-menu/internal/logger"
	"smart-menu/internal/models"
	"smart-menu/internal/payment"
	"smart-menu/internal/services/order/validation"
)

// ChangedBy is recorded in the status log for transitions made by this service
const ChangedBy = "order-service"

// Repository persists orders. Create and Update must write the order, its items and
// the status log atomically.
type Repository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	Update(ctx context.Context, order *models.Order) error
	UpdateStatus(ctx context.Context, order *models.Order, changedBy, notes string) error
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}

// PaymentGateway creates the hosted checkout session for a new order
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req payment.CheckoutRequest) (*payment.Session, error)
}

// EventPublisher announces order mutations
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event *models.OrderEvent) error
}

// Placement is the result of creating an order
type Placement struct {
	Order       *models.Order
	CheckoutURL string
}

// Service implements order creation and the admin mutations
type Service struct {
	repo      Repository
	payments  PaymentGateway
	events    EventPublisher
	validator *validation.Validator
	logger    *logger.Logger
	newToken  func() string
}

// NewService creates a new order service. events may be nil when messaging is disabled.
func NewService(repo Repository, payments PaymentGateway, events EventPublisher, menu *catalog.Catalog, log *logger.Logger) *Service {
	return &Service{
		repo:      repo,
		payments:  payments,
		events:    events,
		validator: validation.New(menu),
		logger:    log,
		newToken:  NewToken,
	}
}

// CreateOrder validates req, opens a checkout session and persists the order.
// A token collision surfaces as ErrTokenConflict and no automatic retry is made.
func (s *Service) CreateOrder(ctx context.Context, req *models.OrderRequest, requestID string) (*Placement, error) {
	normalized, err := s.validator.Validate(req)
	if err != nil {
		return nil, err
	}

	order := newOrder(normalized)
	order.Token = s.newToken()

	session, err := s.payments.CreateCheckoutSession(ctx, checkoutRequest(order))
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	order.PaymentSessionID = session.ID

	s.logger.Debug("checkout_session_created", "Checkout session created", requestID, map[string]interface{}{
		"token":      order.Token,
		"session_id": session.ID,
	})

	// Once a session exists the write is not tied to the caller's lifetime.
	if err := s.repo.Create(context.WithoutCancel(ctx), order); err != nil {
		s.logger.Error("order_persist_failed", "Failed to persist order after checkout session was created", requestID, err, map[string]interface{}{
			"token":             order.Token,
			"orphan_session_id": session.ID,
			"token_conflict":    errors.Is(err, ErrTokenConflict),
			"order_total":       order.Total.String(),
			"order_items_count": len(order.Items),
		})
		return nil, fmt.Errorf("persist order: %w", err)
	}

	s.logger.Info("order_created", "Order created", requestID, map[string]interface{}{
		"order_id":     order.ID,
		"token":        order.Token,
		"total":        order.Total.String(),
		"table_number": order.TableNumber,
	})

	s.publish(ctx, models.NewOrderEvent(models.EventOrderCreated, order, "", ChangedBy), requestID)

	return &Placement{Order: order, CheckoutURL: session.URL}, nil
}

// UpdateOrder replaces the customer data and items of a pending order. The token and
// payment session are kept.
func (s *Service) UpdateOrder(ctx context.Context, id int64, req *models.OrderRequest, requestID string) (*models.Order, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != models.StatusPending {
		return nil, ErrNotEditable
	}

	normalized, err := s.validator.Validate(req)
	if err != nil {
		return nil, err
	}

	updated := newOrder(normalized)
	updated.ID = current.ID
	updated.Token = current.Token
	updated.Status = current.Status
	updated.PaymentStatus = current.PaymentStatus
	updated.PaymentSessionID = current.PaymentSessionID
	updated.CreatedAt = current.CreatedAt

	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}

	s.logger.Info("order_updated", "Order updated", requestID, map[string]interface{}{
		"order_id": updated.ID,
		"token":    updated.Token,
		"total":    updated.Total.String(),
	})

	s.publish(ctx, models.NewOrderEvent(models.EventOrderUpdated, updated, "", ChangedBy), requestID)

	return updated, nil
}

// UpdateStatus moves an order along its lifecycle and optionally sets the payment status
func (s *Service) UpdateStatus(ctx context.Context, id int64, req *models.StatusUpdateRequest, changedBy, requestID string) (*models.Order, error) {
	next, ok := models.ParseOrderStatus(req.Status)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, req.Status)
	}

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	paymentStatus := order.PaymentStatus
	if req.PaymentStatus != "" {
		paymentStatus, ok = models.ParsePaymentStatus(req.PaymentStatus)
		if !ok {
			return nil, fmt.Errorf("%w: payment status %q", ErrInvalidStatus, req.PaymentStatus)
		}
	}

	if next != order.Status && !order.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, next)
	}
	if next == order.Status && paymentStatus == order.PaymentStatus {
		return order, nil
	}

	old := order.Status
	order.Status = next
	order.PaymentStatus = paymentStatus

	notes := fmt.Sprintf("status %s -> %s", old, next)
	if err := s.repo.UpdateStatus(ctx, order, changedBy, notes); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	s.logger.Info("order_status_changed", "Order status changed", requestID, map[string]interface{}{
		"order_id":       order.ID,
		"old_status":     old,
		"new_status":     next,
		"payment_status": paymentStatus,
		"changed_by":     changedBy,
	})

	s.publish(ctx, models.NewOrderEvent(models.EventStatusChanged, order, old, changedBy), requestID)

	return order, nil
}

// DeleteOrder removes an order and its items
func (s *Service) DeleteOrder(ctx context.Context, id int64, requestID string) error {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("order_deleted", "Order deleted", requestID, map[string]interface{}{
		"order_id": id,
		"token":    order.Token,
	})

	s.publish(ctx, models.NewOrderEvent(models.EventOrderDeleted, order, order.Status, ChangedBy), requestID)

	return nil
}

// HealthCheck reports whether the backing store is reachable
func (s *Service) HealthCheck(ctx context.Context) bool {
	return s.repo.Ping(ctx) == nil
}

func (s *Service) publish(ctx context.Context, event *models.OrderEvent, requestID string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishOrderEvent(ctx, event); err != nil {
		s.logger.Error("event_publish_failed", "Failed to publish order event", requestID, err, map[string]interface{}{
			"routing_key": event.RoutingKey(),
			"order_id":    event.OrderID,
		})
	}
}

func newOrder(req *models.OrderRequest) *models.Order {
	order := &models.Order{
		CustomerName:  req.CustomerName,
		CustomerAge:   req.CustomerAge,
		TableNumber:   req.TableNumber,
		Total:         req.Total,
		Status:        models.StatusPending,
		PaymentStatus: models.PaymentPending,
		Items:         make([]models.OrderItem, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   item.ID,
			Name:        item.Name,
			Price:       item.Price,
			Quantity:    item.Quantity,
			IsAlcoholic: item.IsAlcoholic,
		})
	}
	return order
}

func checkoutRequest(order *models.Order) payment.CheckoutRequest {
	req := payment.CheckoutRequest{
		Token:        order.Token,
		CustomerName: order.CustomerName,
		CustomerAge:  order.CustomerAge,
		TableNumber:  order.TableNumber,
		Items:        make([]payment.LineItem, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		req.Items = append(req.Items, payment.LineItem{
			Name:      item.Name,
			UnitPrice: item.Price,
			Quantity:  item.Quantity,
		})
	}
	return req
}
