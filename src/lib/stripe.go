package lib

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

var ErrSignatureInvalid = errors.New("webhook signature verification failed")

type CheckoutParams struct {
	BookingID  string
	Name       string
	UnitAmount int64
	Currency   string
	SuccessURL string
	CancelURL  string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// PaymentEvent is the part of a verified gateway event the API acts on.
type PaymentEvent struct {
	ID        string
	Type      string
	SessionID string
	BookingID string
}

type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, params *CheckoutParams) (*CheckoutSession, error)
	// ParseWebhook verifies signature against the unmodified request body.
	ParseWebhook(payload []byte, signature string) (*PaymentEvent, error)
}

const EventCheckoutSessionCompleted = "checkout.session.completed"

type StripeGateway struct {
	client        *stripe.Client
	webhookSecret string
}

func NewStripeGateway(secretKey, webhookSecret string) *StripeGateway {
	return &StripeGateway{
		client:        stripe.NewClient(secretKey),
		webhookSecret: webhookSecret,
	}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, params *CheckoutParams) (*CheckoutSession, error) {
	createParams := &stripe.CheckoutSessionCreateParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(params.SuccessURL),
		CancelURL:  stripe.String(params.CancelURL),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
					Currency: stripe.String(params.Currency),
					ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
						Name: stripe.String(params.Name),
					},
					UnitAmount: stripe.Int64(params.UnitAmount),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{
			"bookingId": params.BookingID,
		},
	}
	cs, err := g.client.V1CheckoutSessions.Create(ctx, createParams)
	if err != nil {
		return nil, fmt.Errorf("creating checkout session: %w", err)
	}
	return &CheckoutSession{ID: cs.ID, URL: cs.URL}, nil
}

func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*PaymentEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSignatureInvalid, err.Error())
	}
	pe := &PaymentEvent{ID: event.ID, Type: string(event.Type)}
	if event.Type == EventCheckoutSessionCompleted {
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			return nil, fmt.Errorf("parsing CheckoutSession: %w", err)
		}
		pe.SessionID = cs.ID
		pe.BookingID = cs.Metadata["bookingId"]
	}
	return pe, nil
}
