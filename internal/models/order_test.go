package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusReady, false},
		{StatusConfirmed, StatusPreparing, true},
		{StatusPreparing, StatusReady, true},
		{StatusReady, StatusDelivered, true},
		{StatusReady, StatusCancelled, false},
		{StatusDelivered, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOrderStatus_IsTerminal(t *testing.T) {
	assert.True(t, StatusDelivered.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
}

func TestParseOrderStatus(t *testing.T) {
	status, ok := ParseOrderStatus("confirmed")
	assert.True(t, ok)
	assert.Equal(t, StatusConfirmed, status)

	_, ok = ParseOrderStatus("CONFIRMADO")
	assert.False(t, ok)
}

func TestOrder_ItemsTotal(t *testing.T) {
	order := &Order{Items: []OrderItem{
		{Name: "Burger Clássico", Price: decimal.RequireFromString("25.90"), Quantity: 2},
		{Name: "Batata Frita", Price: decimal.RequireFromString("12.90"), Quantity: 1},
	}}

	assert.True(t, order.ItemsTotal().Equal(decimal.RequireFromString("64.70")), "got %s", order.ItemsTotal())
}

func TestOrderRequest_DecodesNumericMoney(t *testing.T) {
	var req OrderRequest
	err := json.Unmarshal([]byte(`{"customerName":"Ana","customerAge":30,"tableNumber":4,
		"items":[{"id":"burger","name":"Burger","price":25.90,"quantity":2}],"total":51.80}`), &req)
	require.NoError(t, err)

	assert.True(t, req.Total.Equal(decimal.RequireFromString("51.8")))
	assert.True(t, req.Items[0].Price.Equal(decimal.RequireFromString("25.9")))

	out, err := json.Marshal(OrderItem{Name: "Burger", Price: decimal.RequireFromString("25.90"), Quantity: 1})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"price":25.9`)
}

func TestNormalizeToken(t *testing.T) {
	assert.Equal(t, "AB12CD34", NormalizeToken("  ab12cd34\n"))
	assert.Equal(t, "", NormalizeToken("   "))
}
