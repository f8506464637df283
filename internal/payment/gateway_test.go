package payment

import (
	"context"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-menu/internal/config"
	"smart-menu/internal/logger"
)

func TestRedirectURLs(t *testing.T) {
	urls := RedirectURLs("https://menu.example.com/", "AB12CD34")

	assert.Equal(t, "https://menu.example.com/order/AB12CD34", urls.Success)
	assert.Equal(t, "https://menu.example.com/checkout", urls.Cancel)
}

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		amount string
		want   int64
	}{
		{"25.90", 2590},
		{"9.9", 990},
		{"0.015", 2},
		{"100", 10000},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, toMinorUnits(decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestLocalGateway_CreateCheckoutSession(t *testing.T) {
	g := NewLocalGateway("http://localhost:3000")
	req := CheckoutRequest{
		Token: "AB12CD34",
		Items: []LineItem{{Name: "Burger Clássico", UnitPrice: decimal.RequireFromString("25.90"), Quantity: 2}},
	}

	s, err := g.CreateCheckoutSession(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "local_AB12CD34", s.ID)
	assert.Equal(t, "http://localhost:3000/order/AB12CD34", s.URL)

	_, err = g.CreateCheckoutSession(context.Background(), CheckoutRequest{Token: "AB12CD34"})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.CreateCheckoutSession(ctx, req)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewGateway(t *testing.T) {
	log := logger.NewWithWriter("test", io.Discard)
	cfg := &config.Config{}
	cfg.Server.PublicBaseURL = "http://localhost:3000"
	cfg.Payment.Currency = "brl"

	assert.IsType(t, &LocalGateway{}, NewGateway(cfg, log))

	cfg.Payment.SecretKey = "sk_test_123"
	assert.IsType(t, &StripeGateway{}, NewGateway(cfg, log))
}
