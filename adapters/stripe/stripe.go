// Package stripe implements the payment gateway port on Stripe.
package stripe

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/customer"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/avelez/boxkeep/core"
)

type Gateway struct {
	webhookSecret string
}

var _ core.PaymentGateway = (*Gateway)(nil)

// New configures the Stripe client. The secret key is package-global in
// stripe-go, so one Gateway per process.
func New(secretKey, webhookSecret string) *Gateway {
	stripe.Key = secretKey
	return &Gateway{
		webhookSecret: webhookSecret,
	}
}

func (g *Gateway) CreateCustomer(ctx context.Context, email, name string, metadata map[string]string) (string, error) {
	params := &stripe.CustomerParams{
		Email:    stripe.String(email),
		Name:     stripe.String(name),
		Metadata: metadata,
	}
	params.Context = ctx

	cust, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create customer: %w", err)
	}
	return cust.ID, nil
}

func (g *Gateway) CreateCheckoutSession(ctx context.Context, p core.CheckoutParams) (*core.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:     stripe.String(string(stripe.CheckoutSessionModePayment)),
		Customer: stripe.String(p.CustomerID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(p.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
		Metadata:   p.Metadata,
	}
	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return &core.CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// VerifyWebhook checks the Stripe-Signature header over the exact raw body.
// On success the checkout session metadata is lifted out of the event
// payload so callers never touch Stripe types.
func (g *Gateway) VerifyWebhook(payload []byte, signature string) (*core.WebhookEvent, error) {
	if g.webhookSecret == "" {
		return nil, core.ErrWebhookNotConfigured
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		signature,
		g.webhookSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrWebhookSignature, err)
	}

	out := &core.WebhookEvent{
		ID:   event.ID,
		Type: string(event.Type),
	}
	if string(event.Type) == "checkout.session.completed" {
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrWebhookSignature, err)
		}
		out.Metadata = sess.Metadata
	}
	return out, nil
}
