package payment

import (
	"context"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
)

// StripeGateway creates Stripe Checkout sessions in payment mode
type StripeGateway struct {
	client   session.Client
	currency string
	baseURL  string
}

// NewStripeGateway creates a gateway authenticated with secretKey
func NewStripeGateway(secretKey, currency, baseURL string) *StripeGateway {
	return newStripeGateway(stripe.GetBackend(stripe.APIBackend), secretKey, currency, baseURL)
}

func newStripeGateway(backend stripe.Backend, secretKey, currency, baseURL string) *StripeGateway {
	return &StripeGateway{
		client:   session.Client{B: backend, Key: secretKey},
		currency: currency,
		baseURL:  baseURL,
	}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*Session, error) {
	urls := RedirectURLs(g.baseURL, req.Token)

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(urls.Success),
		CancelURL:  stripe.String(urls.Cancel),
	}
	params.Context = ctx
	params.AddMetadata("token", req.Token)
	params.AddMetadata("customer_name", req.CustomerName)
	params.AddMetadata("customer_age", strconv.Itoa(req.CustomerAge))
	params.AddMetadata("table_number", strconv.Itoa(req.TableNumber))

	for _, item := range req.Items {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(g.currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
				UnitAmount: stripe.Int64(toMinorUnits(item.UnitPrice)),
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}

	s, err := g.client.New(params)
	if err != nil {
		return nil, fmt.Errorf("create stripe checkout session: %w", err)
	}
	return &Session{ID: s.ID, URL: s.URL}, nil
}
