package controllers

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"quickstay/src/config"
	"quickstay/src/db"
	"quickstay/src/lib"
	"quickstay/src/models"
	"quickstay/src/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "quickstay.db") + "?_busy_timeout=5000"
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Migrate(database))
	t.Cleanup(func() { sqlDB.Close() })
	return database
}

func testConfig() *config.Config {
	return &config.Config{
		APIEnv:         "test",
		StripeCurrency: "usd",
		CurrencySymbol: "$",
		SenderEmail:    "bookings@quickstay.test",
		SenderName:     "QuickStay",
	}
}

func day(s string) time.Time {
	t, err := time.Parse(config.DATE_PARSE_FORMAT, s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

type fixture struct {
	owner *models.User
	guest *models.User
	hotel *models.Hotel
	room  *models.Room
}

func seed(t *testing.T, database *gorm.DB) *fixture {
	t.Helper()
	f := &fixture{
		owner: &models.User{ID: "user_owner", Username: "owner", Email: "owner@quickstay.test", Image: "o.png", Role: types.ROLE_HOTEL_OWNER},
		guest: &models.User{ID: "user_guest", Username: "guest", Email: "guest@quickstay.test", Image: "g.png", Role: types.ROLE_USER},
	}
	require.NoError(t, database.Create(f.owner).Error)
	require.NoError(t, database.Create(f.guest).Error)
	f.hotel = &models.Hotel{Name: "Seaside Inn", Slug: "seaside-inn", Address: "1 Beach Rd", Contact: "555-0100", City: "Lisbon", OwnerID: f.owner.ID}
	require.NoError(t, database.Create(f.hotel).Error)
	f.room = &models.Room{HotelID: f.hotel.ID, RoomType: types.ROOM_DOUBLE_BED, PricePerNight: 100, Amenities: types.StringList{"Free WiFi"}, IsAvailable: true}
	require.NoError(t, database.Create(f.room).Error)
	return f
}

func addBooking(t *testing.T, database *gorm.DB, f *fixture, in, out string, mutate ...func(*models.Booking)) *models.Booking {
	t.Helper()
	b := &models.Booking{
		UserID:       f.guest.ID,
		RoomID:       f.room.ID,
		HotelID:      f.hotel.ID,
		Guests:       2,
		CheckInDate:  day(in),
		CheckOutDate: day(out),
		TotalPrice:   100 * float64(day(out).Sub(day(in)).Hours()/24),
		Status:       types.BOOKING_PENDING,
	}
	for _, m := range mutate {
		m(b)
	}
	require.NoError(t, database.Create(b).Error)
	return b
}

type fakeMailer struct {
	mu   sync.Mutex
	err  error
	sent []*lib.SendMailInput
}

func (m *fakeMailer) Send(ctx context.Context, input *lib.SendMailInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, input)
	return m.err
}

type heldLocker struct{}

func (heldLocker) Lock(context.Context, string) (func(), error) {
	return nil, lib.ErrLockHeld
}

type fakeGateway struct {
	params  *lib.CheckoutParams
	session *lib.CheckoutSession
	err     error
}

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, params *lib.CheckoutParams) (*lib.CheckoutSession, error) {
	g.params = params
	if g.err != nil {
		return nil, g.err
	}
	return g.session, nil
}

func (g *fakeGateway) ParseWebhook(payload []byte, signature string) (*lib.PaymentEvent, error) {
	return nil, errors.New("not implemented")
}

type memoryImages struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (s *memoryImages) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if _, err := io.ReadAll(body); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, key)
	return "https://cdn.quickstay.test/" + key, nil
}

var nop = zap.NewNop()
