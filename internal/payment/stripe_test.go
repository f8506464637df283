package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

type recordedCall struct {
	method string
	path   string
	auth   string
	form   url.Values
}

// stripeServer answers checkout session requests with status and body, recording what it received
func stripeServer(t *testing.T, status int, body string) (*StripeGateway, *[]recordedCall) {
	t.Helper()

	var (
		mu    sync.Mutex
		calls []recordedCall
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		mu.Lock()
		calls = append(calls, recordedCall{method: r.Method, path: r.URL.Path, auth: r.Header.Get("Authorization"), form: r.PostForm})
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		HTTPClient:        srv.Client(),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	return newStripeGateway(backend, "sk_test_123", "brl", "https://menu.example.com"), &calls
}

func checkout() CheckoutRequest {
	return CheckoutRequest{
		Token:        "AB12CD34",
		CustomerName: "Ana Maria",
		CustomerAge:  25,
		TableNumber:  7,
		Items: []LineItem{
			{Name: "Burger Clássico", UnitPrice: decimal.RequireFromString("25.90"), Quantity: 2},
			{Name: "Batata Frita", UnitPrice: decimal.RequireFromString("12.9"), Quantity: 1},
		},
	}
}

func TestStripeGateway_CreateCheckoutSession(t *testing.T) {
	g, calls := stripeServer(t, http.StatusOK,
		`{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.stripe.test/cs_test_1"}`)

	s, err := g.CreateCheckoutSession(context.Background(), checkout())
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", s.ID)
	assert.Equal(t, "https://checkout.stripe.test/cs_test_1", s.URL)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, http.MethodPost, call.method)
	assert.Equal(t, "/v1/checkout/sessions", call.path)
	assert.Equal(t, "Bearer sk_test_123", call.auth)

	form := call.form
	assert.Equal(t, "payment", form.Get("mode"))
	assert.Equal(t, "https://menu.example.com/order/AB12CD34", form.Get("success_url"))
	assert.Equal(t, "https://menu.example.com/checkout", form.Get("cancel_url"))

	assert.Equal(t, "brl", form.Get("line_items[0][price_data][currency]"))
	assert.Equal(t, "Burger Clássico", form.Get("line_items[0][price_data][product_data][name]"))
	assert.Equal(t, "2590", form.Get("line_items[0][price_data][unit_amount]"))
	assert.Equal(t, "2", form.Get("line_items[0][quantity]"))
	assert.Equal(t, "1290", form.Get("line_items[1][price_data][unit_amount]"))
	assert.Equal(t, "1", form.Get("line_items[1][quantity]"))

	assert.Equal(t, "AB12CD34", form.Get("metadata[token]"))
	assert.Equal(t, "Ana Maria", form.Get("metadata[customer_name]"))
	assert.Equal(t, "25", form.Get("metadata[customer_age]"))
	assert.Equal(t, "7", form.Get("metadata[table_number]"))
}

func TestStripeGateway_ProviderError(t *testing.T) {
	g, calls := stripeServer(t, http.StatusBadRequest,
		`{"error":{"type":"invalid_request_error","message":"Invalid currency"}}`)

	s, err := g.CreateCheckoutSession(context.Background(), checkout())
	assert.Nil(t, s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create stripe checkout session")

	var stripeErr *stripe.Error
	require.ErrorAs(t, err, &stripeErr)
	assert.Equal(t, stripe.ErrorTypeInvalidRequest, stripeErr.Type)
	assert.Len(t, *calls, 1)
}
