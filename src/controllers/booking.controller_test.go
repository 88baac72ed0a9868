package controllers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickstay/src/lib"
	"quickstay/src/models"
	"quickstay/src/types"
)

func newBookingController(t *testing.T, locker lib.RoomLocker, mailer lib.Mailer) (*BookingController, *fixture) {
	database := newTestDB(t)
	f := seed(t, database)
	return NewBookingController(database, locker, mailer, testConfig(), nop), f
}

func TestCreateBooking(t *testing.T) {
	mailer := &fakeMailer{}
	c, f := newBookingController(t, lib.NoopRoomLocker{}, mailer)

	booking, err := c.Create(context.Background(), &CreateBookingInput{
		RoomID:   f.room.ID,
		CheckIn:  day("2024-01-01"),
		CheckOut: day("2024-01-03"),
		Guests:   2,
		User:     f.guest,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, booking.ID)
	assert.Equal(t, 200.0, booking.TotalPrice)
	assert.Equal(t, f.hotel.ID, booking.HotelID)
	assert.Equal(t, f.guest.ID, booking.UserID)
	assert.False(t, booking.IsPaid)
	assert.Equal(t, types.PAYMENT_UNSET, booking.PaymentMethod)
	assert.Equal(t, types.BOOKING_PENDING, booking.Status)

	require.Len(t, mailer.sent, 1)
	mail := mailer.sent[0]
	assert.Equal(t, []string{f.guest.Email}, mail.To)
	assert.True(t, mail.Html)
	assert.Contains(t, mail.Body, booking.ID)
	assert.Contains(t, mail.Body, "Seaside Inn")
	assert.Contains(t, mail.Body, "1 Beach Rd")
	assert.Contains(t, mail.Body, "2024-01-01")
	assert.Contains(t, mail.Body, "$ 200.00")
}

func TestCreateBookingPrice(t *testing.T) {
	c, f := newBookingController(t, lib.NoopRoomLocker{}, &fakeMailer{})

	booking, err := c.Create(context.Background(), &CreateBookingInput{
		RoomID:   f.room.ID,
		CheckIn:  day("2024-03-10"),
		CheckOut: day("2024-03-13"),
		Guests:   1,
		User:     f.guest,
	})
	require.NoError(t, err)
	assert.Equal(t, 300.0, booking.TotalPrice)
}

func TestCreateBookingRejectsEmptyStay(t *testing.T) {
	c, f := newBookingController(t, lib.NoopRoomLocker{}, &fakeMailer{})

	for _, out := range []string{"2024-01-01", "2023-12-31"} {
		_, err := c.Create(context.Background(), &CreateBookingInput{
			RoomID:   f.room.ID,
			CheckIn:  day("2024-01-01"),
			CheckOut: day(out),
			Guests:   1,
			User:     f.guest,
		})
		assert.ErrorIs(t, err, ErrInvalidDateRange)
	}

	var count int64
	require.NoError(t, c.db.Model(&models.Booking{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateBookingOverlap(t *testing.T) {
	c, f := newBookingController(t, lib.NoopRoomLocker{}, &fakeMailer{})
	addBooking(t, c.db, f, "2024-01-01", "2024-01-03")

	_, err := c.Create(context.Background(), &CreateBookingInput{
		RoomID:   f.room.ID,
		CheckIn:  day("2024-01-03"),
		CheckOut: day("2024-01-04"),
		Guests:   1,
		User:     f.guest,
	})
	assert.ErrorIs(t, err, ErrRoomUnavailable)
}

func TestCreateBookingUnknownRoom(t *testing.T) {
	c, f := newBookingController(t, lib.NoopRoomLocker{}, &fakeMailer{})

	_, err := c.Create(context.Background(), &CreateBookingInput{
		RoomID:   "missing",
		CheckIn:  day("2024-01-01"),
		CheckOut: day("2024-01-02"),
		Guests:   1,
		User:     f.guest,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateBookingRoomWithdrawn(t *testing.T) {
	c, f := newBookingController(t, lib.NoopRoomLocker{}, &fakeMailer{})
	require.NoError(t, c.db.Model(&models.Room{}).Where("id = ?", f.room.ID).Update("is_available", false).Error)

	_, err := c.Create(context.Background(), &CreateBookingInput{
		RoomID:   f.room.ID,
		CheckIn:  day("2024-01-01"),
		CheckOut: day("2024-01-02"),
		Guests:   1,
		User:     f.guest,
	})
	assert.ErrorIs(t, err, ErrRoomUnavailable)
}

func TestCreateBookingSurvivesMailFailure(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("relay down")}
	c, f := newBookingController(t, lib.NoopRoomLocker{}, mailer)

	booking, err := c.Create(context.Background(), &CreateBookingInput{
		RoomID:   f.room.ID,
		CheckIn:  day("2024-01-01"),
		CheckOut: day("2024-01-02"),
		Guests:   1,
		User:     f.guest,
	})
	require.NoError(t, err)
	assert.Len(t, mailer.sent, 1)

	var stored models.Booking
	require.NoError(t, c.db.Where("id = ?", booking.ID).Take(&stored).Error)
	assert.Equal(t, 100.0, stored.TotalPrice)
}

func TestCreateBookingRejectsNoGuests(t *testing.T) {
	c, f := newBookingController(t, lib.NoopRoomLocker{}, &fakeMailer{})

	_, err := c.Create(context.Background(), &CreateBookingInput{
		RoomID:   f.room.ID,
		CheckIn:  day("2024-01-01"),
		CheckOut: day("2024-01-02"),
		Guests:   0,
		User:     f.guest,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	var count int64
	require.NoError(t, c.db.Model(&models.Booking{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateBookingLockHeld(t *testing.T) {
	c, f := newBookingController(t, heldLocker{}, &fakeMailer{})

	_, err := c.Create(context.Background(), &CreateBookingInput{
		RoomID:   f.room.ID,
		CheckIn:  day("2024-01-01"),
		CheckOut: day("2024-01-02"),
		Guests:   1,
		User:     f.guest,
	})
	assert.ErrorIs(t, err, ErrBookingBusy)
}

func concurrentBookings(t *testing.T, c *BookingController, f *fixture, n int) (successes int, failures []error) {
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		start = make(chan struct{})
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := c.Create(context.Background(), &CreateBookingInput{
				RoomID:   f.room.ID,
				CheckIn:  day("2024-05-01"),
				CheckOut: day("2024-05-04"),
				Guests:   1,
				User:     f.guest,
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			failures = append(failures, err)
		}()
	}
	close(start)
	wg.Wait()
	return successes, failures
}

func TestConcurrentBookingsWithRoomLock(t *testing.T) {
	c, f := newBookingController(t, lib.NewLocalRoomLocker(), &fakeMailer{})

	successes, failures := concurrentBookings(t, c, f, 8)

	assert.Equal(t, 1, successes)
	for _, err := range failures {
		assert.True(t, errors.Is(err, ErrRoomUnavailable) || errors.Is(err, ErrBookingBusy), err)
	}
}

// Without a lock the overlap check and the insert are separate statements, so
// several requests may all succeed. This only characterizes that behavior.
func TestConcurrentBookingsWithoutRoomLock(t *testing.T) {
	c, f := newBookingController(t, lib.NoopRoomLocker{}, &fakeMailer{})

	successes, failures := concurrentBookings(t, c, f, 8)

	assert.GreaterOrEqual(t, successes, 1)
	assert.Equal(t, 8, successes+len(failures))
	t.Logf("unserialized: %d of 8 bookings succeeded", successes)
}

func TestListForUser(t *testing.T) {
	c, f := newBookingController(t, lib.NoopRoomLocker{}, &fakeMailer{})
	now := time.Now().UTC()
	older := addBooking(t, c.db, f, "2024-01-01", "2024-01-02", func(b *models.Booking) { b.CreatedAt = now.Add(-time.Hour) })
	newer := addBooking(t, c.db, f, "2024-02-01", "2024-02-02", func(b *models.Booking) { b.CreatedAt = now })
	addBooking(t, c.db, f, "2024-03-01", "2024-03-02", func(b *models.Booking) { b.UserID = f.owner.ID })

	bookings, err := c.ListForUser(context.Background(), f.guest.ID)
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, newer.ID, bookings[0].ID)
	assert.Equal(t, older.ID, bookings[1].ID)
	require.NotNil(t, bookings[0].Room)
	require.NotNil(t, bookings[0].Hotel)
	assert.Equal(t, "Seaside Inn", bookings[0].Hotel.Name)
}

func TestHotelDashboard(t *testing.T) {
	c, f := newBookingController(t, lib.NoopRoomLocker{}, &fakeMailer{})
	addBooking(t, c.db, f, "2024-01-01", "2024-01-03", func(b *models.Booking) { b.IsPaid = true })
	addBooking(t, c.db, f, "2024-02-01", "2024-02-02")
	addBooking(t, c.db, f, "2024-03-01", "2024-03-02", func(b *models.Booking) { b.Status = types.BOOKING_CANCELLED })

	dashboard, err := c.HotelDashboard(context.Background(), f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, dashboard.TotalBookings)
	assert.Equal(t, 1, dashboard.CancelledBookings)
	assert.Equal(t, 300.0, dashboard.TotalRevenue, "unpaid bookings count towards revenue")
	require.Len(t, dashboard.Bookings, 3)
	assert.NotNil(t, dashboard.Bookings[0].User)

	_, err = c.HotelDashboard(context.Background(), f.guest.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCancelBooking(t *testing.T) {
	c, f := newBookingController(t, lib.NoopRoomLocker{}, &fakeMailer{})
	unpaid := addBooking(t, c.db, f, "2024-01-01", "2024-01-03")
	paid := addBooking(t, c.db, f, "2024-02-01", "2024-02-03", func(b *models.Booking) { b.IsPaid = true })
	ctx := context.Background()

	_, err := c.Cancel(ctx, unpaid.ID, f.owner.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = c.Cancel(ctx, paid.ID, f.guest.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = c.Cancel(ctx, "missing", f.guest.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	cancelled, err := c.Cancel(ctx, unpaid.ID, f.guest.ID)
	require.NoError(t, err)
	assert.Equal(t, types.BOOKING_CANCELLED, cancelled.Status)

	ok, err := NewAvailabilityController(c.db).IsAvailable(ctx, f.room.ID, day("2024-01-01"), day("2024-01-02"))
	require.NoError(t, err)
	assert.True(t, ok)
}
