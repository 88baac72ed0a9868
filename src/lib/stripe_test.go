package lib

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

const testWebhookSecret = "whsec_test_secret"

func signedEvent(t *testing.T, secret string, event map[string]any) *webhook.SignedPayload {
	t.Helper()
	event["object"] = "event"
	event["api_version"] = stripe.APIVersion
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	})
}

func TestStripeGatewayParseWebhook(t *testing.T) {
	g := NewStripeGateway("sk_test_123", testWebhookSecret)

	signed := signedEvent(t, testWebhookSecret, map[string]any{
		"id":   "evt_1",
		"type": "checkout.session.completed",
		"data": map[string]any{
			"object": map[string]any{
				"id":       "cs_test_1",
				"object":   "checkout.session",
				"metadata": map[string]string{"bookingId": "booking-1"},
			},
		},
	})
	event, err := g.ParseWebhook(signed.Payload, signed.Header)
	require.NoError(t, err)
	assert.Equal(t, "evt_1", event.ID)
	assert.Equal(t, EventCheckoutSessionCompleted, event.Type)
	assert.Equal(t, "cs_test_1", event.SessionID)
	assert.Equal(t, "booking-1", event.BookingID)

	signed = signedEvent(t, testWebhookSecret, map[string]any{
		"id":   "evt_2",
		"type": "payment_intent.created",
		"data": map[string]any{"object": map[string]any{"id": "pi_1", "object": "payment_intent"}},
	})
	event, err = g.ParseWebhook(signed.Payload, signed.Header)
	require.NoError(t, err)
	assert.Equal(t, "payment_intent.created", event.Type)
	assert.Empty(t, event.BookingID)
}

func TestStripeGatewayRejectsBadSignature(t *testing.T) {
	g := NewStripeGateway("sk_test_123", testWebhookSecret)
	signed := signedEvent(t, "whsec_other", map[string]any{
		"id":   "evt_3",
		"type": "checkout.session.completed",
		"data": map[string]any{"object": map[string]any{"id": "cs_1", "object": "checkout.session"}},
	})

	_, err := g.ParseWebhook(signed.Payload, signed.Header)
	assert.ErrorIs(t, err, ErrSignatureInvalid)

	_, err = g.ParseWebhook(signed.Payload, "")
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}
