package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

type Timestamps struct {
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StringList is an ordered list of strings stored as a JSON array column.
type StringList []string

func (a StringList) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	valueString, err := json.Marshal(a)
	return string(valueString), err
}

func (a *StringList) Scan(value any) error {
	var b []byte
	switch v := value.(type) {
	case nil:
		*a = StringList{}
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, a)
}

func (StringList) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "postgres":
		return "jsonb"
	default:
		return "text"
	}
}

// Contains reports whether s is in the list.
func (a StringList) Contains(s string) bool {
	for _, v := range a {
		if v == s {
			return true
		}
	}
	return false
}

// Set returns a copy without blanks or duplicates, first occurrence wins.
func (a StringList) Set() StringList {
	out := make(StringList, 0, len(a))
	for _, v := range a {
		v = strings.TrimSpace(v)
		if v == "" || out.Contains(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// FlexInt accepts both 2 and "2" in JSON bodies; form clients send numbers as strings.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid integer %q", s)
	}
	*f = FlexInt(n)
	return nil
}

type Role string

const (
	ROLE_USER        Role = "user"
	ROLE_HOTEL_OWNER Role = "hotelOwner"
)

type RoomType string

const (
	ROOM_SINGLE_BED   RoomType = "Single Bed"
	ROOM_DOUBLE_BED   RoomType = "Double Bed"
	ROOM_LUXURY       RoomType = "Luxury Room"
	ROOM_FAMILY_SUITE RoomType = "Family Suite"
)

type BookingStatus string

const (
	BOOKING_PENDING   BookingStatus = "pending"
	BOOKING_CONFIRMED BookingStatus = "confirmed"
	BOOKING_CANCELLED BookingStatus = "cancelled"
)

type PaymentMethod string

const (
	PAYMENT_UNSET    PaymentMethod = ""
	PAYMENT_STRIPE   PaymentMethod = "Stripe"
	PAYMENT_AT_HOTEL PaymentMethod = "Pay At Hotel"
)

const MaxRoomImages = 4

const MaxRecentSearchedCities = 3

type SimpleRequestParams struct {
	ID string `uri:"id" binding:"required"`
}

type CheckAvailabilityRequestBody struct {
	Room         string `json:"room" binding:"required"`
	CheckInDate  string `json:"checkInDate" binding:"required,bookingdate"`
	CheckOutDate string `json:"checkOutDate" binding:"required,bookingdate"`
}

type CreateBookingRequestBody struct {
	Room         string  `json:"room" binding:"required"`
	CheckInDate  string  `json:"checkInDate" binding:"required,bookingdate"`
	CheckOutDate string  `json:"checkOutDate" binding:"required,bookingdate"`
	Guests       FlexInt `json:"guests" binding:"required,min=1"`
}

type StripePaymentRequestBody struct {
	BookingID string `json:"bookingId" binding:"required"`
}

type RegisterHotelRequestBody struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address" binding:"required"`
	Contact string `json:"contact" binding:"required"`
	City    string `json:"city" binding:"required"`
}

type CreateRoomRequestBody struct {
	RoomType      string  `form:"roomType" binding:"required,oneof='Single Bed' 'Double Bed' 'Luxury Room' 'Family Suite'"`
	PricePerNight float64 `form:"pricePerNight" binding:"required,gt=0"`
	Amenities     string  `form:"amenities"`
}

type ToggleAvailabilityRequestBody struct {
	RoomID string `json:"roomId" binding:"required"`
}

type StoreRecentSearchRequestBody struct {
	RecentSearchedCity string `json:"recentSearchedCity" binding:"required"`
}
