package controllers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickstay/src/lib"
	"quickstay/src/models"
	"quickstay/src/models/scopes"
	"quickstay/src/types"
)

func TestHandleCheckoutCompleted(t *testing.T) {
	database := newTestDB(t)
	f := seed(t, database)
	booking := addBooking(t, database, f, "2024-01-01", "2024-01-02")
	other := addBooking(t, database, f, "2024-02-01", "2024-02-02")
	c := NewPaymentController(database, nop)
	event := &lib.PaymentEvent{ID: "evt_1", Type: lib.EventCheckoutSessionCompleted, SessionID: "cs_1", BookingID: booking.ID}

	// delivered twice
	for i := 0; i < 2; i++ {
		require.NoError(t, c.HandleEvent(context.Background(), event))

		var stored models.Booking
		require.NoError(t, database.Where("id = ?", booking.ID).Take(&stored).Error)
		assert.True(t, stored.IsPaid)
		assert.Equal(t, types.PAYMENT_STRIPE, stored.PaymentMethod)
		assert.Equal(t, types.BOOKING_CONFIRMED, stored.Status)
	}

	var untouched models.Booking
	require.NoError(t, database.Where("id = ?", other.ID).Take(&untouched).Error)
	assert.False(t, untouched.IsPaid)
}

func TestHandleEventIgnored(t *testing.T) {
	database := newTestDB(t)
	f := seed(t, database)
	booking := addBooking(t, database, f, "2024-01-01", "2024-01-02")
	c := NewPaymentController(database, nop)
	ctx := context.Background()

	assert.NoError(t, c.HandleEvent(ctx, &lib.PaymentEvent{ID: "evt_2", Type: lib.EventCheckoutSessionCompleted, SessionID: "cs_2"}))
	assert.NoError(t, c.HandleEvent(ctx, &lib.PaymentEvent{ID: "evt_3", Type: "payment_intent.created"}))
	assert.NoError(t, c.HandleEvent(ctx, &lib.PaymentEvent{ID: "evt_4", Type: lib.EventCheckoutSessionCompleted, BookingID: "missing"}))

	var stored models.Booking
	require.NoError(t, database.Where("id = ?", booking.ID).Take(&stored).Error)
	assert.False(t, stored.IsPaid)
	assert.Equal(t, types.PAYMENT_UNSET, stored.PaymentMethod)
}

func TestPaymentAfterCancelDoesNotConfirm(t *testing.T) {
	database := newTestDB(t)
	f := seed(t, database)
	ctx := context.Background()
	bookings := NewBookingController(database, lib.NewLocalRoomLocker(), &fakeMailer{}, testConfig(), nop)
	checkout := NewCheckoutController(database, &fakeGateway{session: &lib.CheckoutSession{ID: "cs_3", URL: "https://checkout.stripe.test/cs_3"}}, "usd", nop)
	payments := NewPaymentController(database, nop)
	in := &CreateBookingInput{RoomID: f.room.ID, CheckIn: day("2024-03-01"), CheckOut: day("2024-03-03"), Guests: 1, User: f.guest}

	first, err := bookings.Create(ctx, in)
	require.NoError(t, err)
	_, err = checkout.CreateSession(ctx, first.ID, f.guest.ID, "https://quickstay.test")
	require.NoError(t, err)
	_, err = bookings.Cancel(ctx, first.ID, f.guest.ID)
	require.NoError(t, err)

	second, err := bookings.Create(ctx, in)
	require.NoError(t, err)

	// the hosted page opened before the cancel is still payable
	event := &lib.PaymentEvent{ID: "evt_5", Type: lib.EventCheckoutSessionCompleted, SessionID: "cs_3", BookingID: first.ID}
	require.NoError(t, payments.HandleEvent(ctx, event))

	var stored models.Booking
	require.NoError(t, database.Where("id = ?", first.ID).Take(&stored).Error)
	assert.Equal(t, types.BOOKING_CANCELLED, stored.Status)
	assert.False(t, stored.IsPaid)

	var holding []models.Booking
	require.NoError(t, database.
		Model(&models.Booking{}).
		Scopes(scopes.Overlapping(f.room.ID, in.CheckIn, in.CheckOut), scopes.Holding).
		Find(&holding).
		Error)
	require.Len(t, holding, 1)
	assert.Equal(t, second.ID, holding[0].ID)
}
