package controllers

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"quickstay/src/lib"
	"quickstay/src/models"
	"quickstay/src/models/scopes"
	"quickstay/src/types"
)

type PaymentController struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewPaymentController(db *gorm.DB, logger *zap.Logger) *PaymentController {
	return &PaymentController{db: db, logger: logger}
}

// HandleEvent applies a verified gateway event. Redelivered events rewrite
// the same values. Cancelled bookings are never confirmed; their payment is
// logged for a refund. Only persistence failures are returned so the gateway retries.
func (c *PaymentController) HandleEvent(ctx context.Context, event *lib.PaymentEvent) error {
	if event.Type != lib.EventCheckoutSessionCompleted {
		c.logger.Info("ignoring payment event", zap.String("event", event.ID), zap.String("type", event.Type))
		return nil
	}
	if event.BookingID == "" {
		c.logger.Warn("checkout session without bookingId metadata",
			zap.String("event", event.ID),
			zap.String("session", event.SessionID),
		)
		return nil
	}

	res := c.db.
		WithContext(ctx).
		Model(&models.Booking{}).
		Scopes(scopes.WithID(event.BookingID)).
		Where("status <> ?", types.BOOKING_CANCELLED).
		Updates(map[string]any{
			"is_paid":        true,
			"payment_method": types.PAYMENT_STRIPE,
			"status":         types.BOOKING_CONFIRMED,
		})
	if res.Error != nil {
		return fmt.Errorf("marking booking %s paid: %w", event.BookingID, res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		err := c.db.
			WithContext(ctx).
			Model(&models.Booking{}).
			Scopes(scopes.WithID(event.BookingID)).
			Count(&count).
			Error
		if err != nil {
			return fmt.Errorf("looking up booking %s: %w", event.BookingID, err)
		}
		if count > 0 {
			c.logger.Warn("paid checkout session for cancelled booking, refund required",
				zap.String("booking", event.BookingID),
				zap.String("session", event.SessionID),
				zap.String("event", event.ID),
			)
			return nil
		}
		c.logger.Warn("paid checkout session for unknown booking",
			zap.String("booking", event.BookingID),
			zap.String("session", event.SessionID),
		)
		return nil
	}
	c.logger.Info("booking paid", zap.String("booking", event.BookingID), zap.String("session", event.SessionID))
	return nil
}
