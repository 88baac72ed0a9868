package controllers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"quickstay/src/config"
	"quickstay/src/lib"
	"quickstay/src/models"
	"quickstay/src/models/scopes"
	"quickstay/src/types"
	"quickstay/src/utils"
)

const mailTimeout = 15 * time.Second

var confirmationTemplate = template.Must(template.New("booking-confirmation").Parse(`<h2>Your Booking Details</h2>
<p>Dear {{.Username}},</p>
<p>Thank you for your booking! Here are your details:</p>
<ul>
  <li><strong>Booking ID:</strong> {{.BookingID}}</li>
  <li><strong>Hotel Name:</strong> {{.HotelName}}</li>
  <li><strong>Location:</strong> {{.Address}}</li>
  <li><strong>Date:</strong> {{.CheckIn}}</li>
  <li><strong>Booking Amount:</strong> {{.Currency}} {{printf "%.2f" .Amount}}</li>
</ul>
<p>We look forward to welcoming you!</p>
<p>If you need to make any changes, feel free to contact us.</p>
`))

type CreateBookingInput struct {
	RoomID   string
	CheckIn  time.Time
	CheckOut time.Time
	Guests   int
	User     *models.User
}

// Dashboard totals cover bookings that still hold their room. Cancelled
// bookings are listed and counted separately.
type Dashboard struct {
	TotalBookings     int              `json:"totalBookings"`
	TotalRevenue      float64          `json:"totalRevenue"`
	CancelledBookings int              `json:"cancelledBookings"`
	Bookings      []models.Booking `json:"bookings"`
}

type BookingController struct {
	db     *gorm.DB
	locker lib.RoomLocker
	mailer lib.Mailer
	logger *zap.Logger

	senderEmail    string
	senderName     string
	currencySymbol string
}

func NewBookingController(db *gorm.DB, locker lib.RoomLocker, mailer lib.Mailer, cfg *config.Config, logger *zap.Logger) *BookingController {
	return &BookingController{
		db:             db,
		locker:         locker,
		mailer:         mailer,
		logger:         logger,
		senderEmail:    cfg.SenderEmail,
		senderName:     cfg.SenderName,
		currencySymbol: cfg.CurrencySymbol,
	}
}

// Create books a room for the caller. Two concurrent requests for the same
// dates both pass the overlap query unless a RoomLocker serializes them.
// Requests are not idempotent; a retried request books again.
func (c *BookingController) Create(ctx context.Context, in *CreateBookingInput) (*models.Booking, error) {
	nights := utils.Nights(in.CheckIn, in.CheckOut)
	if nights <= 0 {
		return nil, ErrInvalidDateRange
	}
	if in.Guests < 1 {
		return nil, fmt.Errorf("%w: guests must be positive, got %d", ErrInvalidInput, in.Guests)
	}

	booking, hotel, err := c.reserve(ctx, in, nights)
	if err != nil {
		return nil, err
	}
	c.logger.Info("booking created",
		zap.String("booking", booking.ID),
		zap.String("room", booking.RoomID),
		zap.String("user", booking.UserID),
		zap.Int("nights", nights),
		zap.Float64("total", booking.TotalPrice),
	)

	if err := c.sendConfirmation(ctx, in.User, booking, hotel); err != nil {
		c.logger.Warn("booking confirmation email failed", zap.String("booking", booking.ID), zap.Error(err))
	}
	return booking, nil
}

func (c *BookingController) reserve(ctx context.Context, in *CreateBookingInput, nights int) (*models.Booking, *models.Hotel, error) {
	release, err := c.locker.Lock(ctx, in.RoomID)
	if err != nil {
		if errors.Is(err, lib.ErrLockHeld) {
			return nil, nil, ErrBookingBusy
		}
		return nil, nil, fmt.Errorf("%w: %s", ErrUpstreamFailure, err.Error())
	}
	defer release()

	db := c.db.WithContext(ctx)
	free, err := roomIsFree(db, in.RoomID, in.CheckIn, in.CheckOut)
	if err != nil {
		return nil, nil, err
	}
	if !free {
		return nil, nil, ErrRoomUnavailable
	}

	var room models.Room
	err = db.
		Model(&models.Room{}).
		Scopes(scopes.WithID(in.RoomID)).
		Preload("Hotel").
		First(&room).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: room %s", ErrNotFound, in.RoomID)
		}
		return nil, nil, fmt.Errorf("retrieving room %s: %w", in.RoomID, err)
	}
	if room.Hotel == nil {
		return nil, nil, fmt.Errorf("%w: hotel of room %s", ErrNotFound, room.ID)
	}
	if !room.IsAvailable {
		return nil, nil, ErrRoomUnavailable
	}

	booking := &models.Booking{
		UserID:        in.User.ID,
		RoomID:        room.ID,
		HotelID:       room.HotelID,
		Guests:        in.Guests,
		CheckInDate:   in.CheckIn,
		CheckOutDate:  in.CheckOut,
		TotalPrice:    utils.TotalPrice(room.PricePerNight, nights),
		Status:        types.BOOKING_PENDING,
		PaymentMethod: types.PAYMENT_UNSET,
	}
	if err := db.Create(booking).Error; err != nil {
		return nil, nil, fmt.Errorf("saving booking: %w", err)
	}
	return booking, room.Hotel, nil
}

func (c *BookingController) sendConfirmation(ctx context.Context, user *models.User, booking *models.Booking, hotel *models.Hotel) error {
	var body bytes.Buffer
	err := confirmationTemplate.Execute(&body, map[string]any{
		"Username":  user.Username,
		"BookingID": booking.ID,
		"HotelName": hotel.Name,
		"Address":   hotel.Address,
		"CheckIn":   utils.FormatDate(booking.CheckInDate),
		"Currency":  c.currencySymbol,
		"Amount":    booking.TotalPrice,
	})
	if err != nil {
		return fmt.Errorf("rendering confirmation: %w", err)
	}
	mctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mailTimeout)
	defer cancel()
	return c.mailer.Send(mctx, &lib.SendMailInput{
		From:     c.senderEmail,
		FromName: c.senderName,
		To:       []string{user.Email},
		Subject:  "Hotel Booking Details",
		Body:     body.String(),
		Html:     true,
	})
}

func (c *BookingController) ListForUser(ctx context.Context, userID string) ([]models.Booking, error) {
	bookings := make([]models.Booking, 0)
	err := c.db.
		WithContext(ctx).
		Model(&models.Booking{}).
		Where("user_id = ?", userID).
		Preload("Room").
		Preload("Hotel").
		Scopes(scopes.NewestFirst).
		Find(&bookings).
		Error
	if err != nil {
		return nil, fmt.Errorf("listing bookings of user %s: %w", userID, err)
	}
	return bookings, nil
}

// HotelDashboard sums every booking that still holds its room, paid or not.
func (c *BookingController) HotelDashboard(ctx context.Context, ownerID string) (*Dashboard, error) {
	db := c.db.WithContext(ctx)
	hotel, err := ownedHotel(db, ownerID)
	if err != nil {
		return nil, err
	}
	bookings := make([]models.Booking, 0)
	err = db.
		Model(&models.Booking{}).
		Where("hotel_id = ?", hotel.ID).
		Preload("Room").
		Preload("Hotel").
		Preload("User").
		Scopes(scopes.NewestFirst).
		Find(&bookings).
		Error
	if err != nil {
		return nil, fmt.Errorf("listing bookings of hotel %s: %w", hotel.ID, err)
	}
	dashboard := &Dashboard{Bookings: bookings}
	for _, b := range bookings {
		if b.Status == types.BOOKING_CANCELLED {
			dashboard.CancelledBookings++
			continue
		}
		dashboard.TotalBookings++
		dashboard.TotalRevenue += b.TotalPrice
	}
	return dashboard, nil
}

// Cancel releases an unpaid booking owned by userID.
func (c *BookingController) Cancel(ctx context.Context, bookingID, userID string) (*models.Booking, error) {
	var booking models.Booking
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Model(&models.Booking{}).
			Scopes(scopes.WithID(bookingID)).
			First(&booking).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: booking %s", ErrNotFound, bookingID)
			}
			return err
		}
		if booking.UserID != userID {
			return fmt.Errorf("%w: booking belongs to another user", ErrForbidden)
		}
		if booking.IsPaid {
			return fmt.Errorf("%w: paid bookings cannot be cancelled", ErrForbidden)
		}
		if booking.Status == types.BOOKING_CANCELLED {
			return nil
		}
		res := tx.
			Model(&models.Booking{}).
			Scopes(scopes.WithID(bookingID)).
			Where("is_paid = ?", false).
			Update("status", types.BOOKING_CANCELLED)
		if res.Error != nil {
			return res.Error
		}
		// paid between the read and the update
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: paid bookings cannot be cancelled", ErrForbidden)
		}
		booking.Status = types.BOOKING_CANCELLED
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.logger.Info("booking cancelled", zap.String("booking", bookingID), zap.String("user", userID))
	return &booking, nil
}
