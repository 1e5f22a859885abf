package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// Stripe Checkout（embedded）を使う本番ゲートウェイ。
type StripeGateway struct {
	api      *client.API
	currency string
}

func NewStripeGateway(secretKey string, currency string) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	if currency == "" {
		currency = "jpy"
	}
	return &StripeGateway{api: api, currency: currency}
}

func (g *StripeGateway) CreateSession(ctx context.Context, items []SessionItem) (Session, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(items))
	for _, it := range items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(it.Quantity),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(g.currency),
				UnitAmount: stripe.Int64(it.UnitPrice),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(it.Name),
				},
			},
		})
	}

	params := &stripe.CheckoutSessionParams{
		Params:               stripe.Params{Context: ctx},
		UIMode:               stripe.String(string(stripe.CheckoutSessionUIModeEmbedded)),
		RedirectOnCompletion: stripe.String("never"),
		Mode:                 stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:            lineItems,
	}

	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return Session{}, fmt.Errorf("create checkout session: %w", err)
	}
	return Session{ID: sess.ID, ClientSecret: sess.ClientSecret}, nil
}

func (g *StripeGateway) SessionStatus(ctx context.Context, sessionID string) (Status, error) {
	params := &stripe.CheckoutSessionParams{
		Params: stripe.Params{Context: ctx},
	}
	sess, err := g.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return Status{}, fmt.Errorf("get checkout session: %w", err)
	}
	return Status{
		ID:            sess.ID,
		Status:        string(sess.Status),
		PaymentStatus: string(sess.PaymentStatus),
	}, nil
}
