package controllers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"quickstay/src/lib"
	"quickstay/src/models"
	"quickstay/src/models/scopes"
	"quickstay/src/types"
	"quickstay/src/utils"
)

type CheckoutController struct {
	db       *gorm.DB
	gateway  lib.PaymentGateway
	currency string
	logger   *zap.Logger
}

func NewCheckoutController(db *gorm.DB, gateway lib.PaymentGateway, currency string, logger *zap.Logger) *CheckoutController {
	return &CheckoutController{db: db, gateway: gateway, currency: currency, logger: logger}
}

// CreateSession opens a hosted payment page for bookingID and returns its URL.
func (c *CheckoutController) CreateSession(ctx context.Context, bookingID, userID, origin string) (string, error) {
	db := c.db.WithContext(ctx)
	var booking models.Booking
	err := db.
		Model(&models.Booking{}).
		Scopes(scopes.WithID(bookingID)).
		Preload("Room").
		Preload("Hotel").
		First(&booking).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: booking %s", ErrNotFound, bookingID)
		}
		return "", fmt.Errorf("retrieving booking %s: %w", bookingID, err)
	}
	if booking.UserID != userID {
		return "", fmt.Errorf("%w: booking belongs to another user", ErrForbidden)
	}
	if booking.Status == types.BOOKING_CANCELLED {
		return "", fmt.Errorf("%w: booking %s is cancelled", ErrForbidden, booking.ID)
	}
	if booking.IsPaid {
		return "", fmt.Errorf("%w: booking %s is already paid", ErrForbidden, booking.ID)
	}
	if booking.Hotel == nil || booking.Room == nil {
		return "", fmt.Errorf("%w: room or hotel of booking %s", ErrNotFound, bookingID)
	}

	origin = strings.TrimRight(origin, "/")
	session, err := c.gateway.CreateCheckoutSession(ctx, &lib.CheckoutParams{
		BookingID:  booking.ID,
		Name:       booking.Hotel.Name,
		UnitAmount: utils.ToMinorUnits(booking.TotalPrice),
		Currency:   c.currency,
		SuccessURL: origin + "/loader/my-bookings",
		CancelURL:  origin + "/my-bookings",
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUpstreamFailure, err.Error())
	}

	if err := db.
		Model(&models.Booking{}).
		Scopes(scopes.WithID(booking.ID)).
		Update("checkout_session_id", session.ID).
		Error; err != nil {
		// the session is usable without the stored id
		c.logger.Warn("could not store checkout session id", zap.String("booking", booking.ID), zap.Error(err))
	}
	c.logger.Info("checkout session created", zap.String("booking", booking.ID), zap.String("session", session.ID))
	return session.URL, nil
}
