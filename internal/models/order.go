package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Money travels as plain JSON numbers, the way clients send it.
	decimal.MarshalJSONWithoutQuotes = true
}

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// PaymentStatus represents the state of the checkout session behind an order
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusDelivered},
}

// ParseOrderStatus converts a raw status string, reporting whether it is known
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch status := OrderStatus(s); status {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusReady, StatusDelivered, StatusCancelled:
		return status, true
	}
	return "", false
}

// ParsePaymentStatus converts a raw payment status string, reporting whether it is known
func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch status := PaymentStatus(s); status {
	case PaymentPending, PaymentPaid, PaymentFailed:
		return status, true
	}
	return "", false
}

// CanTransitionTo reports whether an order may move from s to next
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible
func (s OrderStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// OrderItem is a persisted order line
type OrderItem struct {
	ID          int64           `json:"id,omitempty" db:"id"`
	OrderID     int64           `json:"order_id,omitempty" db:"order_id"`
	ProductID   string          `json:"product_id" db:"product_id"`
	Name        string          `json:"name" db:"name"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Quantity    int             `json:"quantity" db:"quantity"`
	IsAlcoholic bool            `json:"is_alcoholic" db:"is_alcoholic"`
}

// Subtotal returns price times quantity
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order represents a customer order
type Order struct {
	ID               int64           `json:"id" db:"id"`
	Token            string          `json:"token" db:"token"`
	CustomerName     string          `json:"customer_name" db:"customer_name"`
	CustomerAge      int             `json:"customer_age" db:"customer_age"`
	TableNumber      int             `json:"table_number" db:"table_number"`
	Total            decimal.Decimal `json:"total" db:"total"`
	Status           OrderStatus     `json:"status" db:"status"`
	PaymentStatus    PaymentStatus   `json:"payment_status" db:"payment_status"`
	PaymentSessionID string          `json:"-" db:"payment_session_id"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
	Items            []OrderItem     `json:"items"`
}

// ItemsTotal sums the order lines
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// OrderRequestItem is a cart line as submitted by a client
type OrderRequestItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	IsAlcoholic bool            `json:"isAlcoholic,omitempty"`
}

// OrderRequest is the checkout payload submitted once per order
type OrderRequest struct {
	CustomerName string             `json:"customerName"`
	CustomerAge  int                `json:"customerAge"`
	TableNumber  int                `json:"tableNumber"`
	Items        []OrderRequestItem `json:"items"`
	Total        decimal.Decimal    `json:"total"`
}

// StatusUpdateRequest is the admin payload for a lifecycle transition
type StatusUpdateRequest struct {
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status,omitempty"`
}

// OrderStatusHistory represents an entry in the order status log
type OrderStatusHistory struct {
	Status    OrderStatus `json:"status" db:"status"`
	ChangedBy string      `json:"changed_by" db:"changed_by"`
	ChangedAt time.Time   `json:"timestamp" db:"changed_at"`
	Notes     *string     `json:"notes,omitempty" db:"notes"`
}

// CheckoutResponse is returned by the create-payment function
type CheckoutResponse struct {
	CheckoutURL string `json:"checkoutUrl"`
	Token       string `json:"token"`
	OrderID     int64  `json:"orderId"`
}

// NormalizeToken trims and uppercases a token supplied by a customer
func NormalizeToken(token string) string {
	return strings.ToUpper(strings.TrimSpace(token))
}

// OrderTrackingResponse is the compact status view of an order
type OrderTrackingResponse struct {
	Token         string        `json:"token"`
	CurrentStatus OrderStatus   `json:"current_status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	TableNumber   int           `json:"table_number"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
