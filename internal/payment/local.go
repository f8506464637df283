package payment

import (
	"context"
	"errors"
)

// LocalGateway simulates a provider for development: the checkout URL points
// straight at the order page
type LocalGateway struct {
	baseURL string
}

func NewLocalGateway(baseURL string) *LocalGateway {
	return &LocalGateway{baseURL: baseURL}
}

func (g *LocalGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, errors.New("checkout session requires at least one line item")
	}

	return &Session{
		ID:  "local_" + req.Token,
		URL: RedirectURLs(g.baseURL, req.Token).Success,
	}, nil
}
