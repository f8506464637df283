// Package payment creates hosted checkout sessions for new orders.
package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"smart-menu/internal/config"
	"smart-menu/internal/logger"
)

// LineItem is one priced line of a checkout session
type LineItem struct {
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// CheckoutRequest describes the order a checkout session is opened for
type CheckoutRequest struct {
	Token        string
	CustomerName string
	CustomerAge  int
	TableNumber  int
	Items        []LineItem
}

// Session is a created checkout session
type Session struct {
	ID  string
	URL string
}

// Gateway creates checkout sessions. Implementations must honour ctx cancellation.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*Session, error)
}

// URLs holds the redirect targets handed to the provider
type URLs struct {
	Success string
	Cancel  string
}

// RedirectURLs derives the success and cancel targets for an order token
func RedirectURLs(baseURL, token string) URLs {
	base := strings.TrimRight(baseURL, "/")
	return URLs{
		Success: fmt.Sprintf("%s/order/%s", base, token),
		Cancel:  base + "/checkout",
	}
}

// NewGateway returns the Stripe gateway when a secret key is configured and the
// local gateway otherwise
func NewGateway(cfg *config.Config, log *logger.Logger) Gateway {
	if cfg.Payment.SecretKey == "" {
		log.Warn("payment_gateway_local", "No payment secret key configured, checkout sessions are simulated", "startup", nil)
		return NewLocalGateway(cfg.Server.PublicBaseURL)
	}
	return NewStripeGateway(cfg.Payment.SecretKey, cfg.Payment.Currency, cfg.Server.PublicBaseURL)
}

// toMinorUnits converts an amount to integer cents
func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
