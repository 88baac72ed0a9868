package models

import (
	"time"

	"quickstay/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Booking struct {
	ID                string              `gorm:"primarykey;size:36" json:"_id"`
	UserID            string              `gorm:"size:191;not null;index" json:"userId"`
	RoomID            string              `gorm:"size:36;not null;index:idx_booking_room_dates,priority:1" json:"roomId"`
	HotelID           string              `gorm:"size:36;not null;index" json:"hotelId"`
	Guests            int                 `gorm:"not null" json:"guests"`
	CheckInDate       time.Time           `gorm:"not null;index:idx_booking_room_dates,priority:2" json:"checkInDate"`
	CheckOutDate      time.Time           `gorm:"not null;index:idx_booking_room_dates,priority:3" json:"checkOutDate"`
	TotalPrice        float64             `gorm:"not null" json:"totalPrice"`
	Status            types.BookingStatus `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	PaymentMethod     types.PaymentMethod `gorm:"type:varchar(32);not null;default:''" json:"paymentMethod"`
	IsPaid            bool                `gorm:"not null;default:false" json:"isPaid"`
	CheckoutSessionID *string             `json:"-"`

	User  *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Room  *Room  `gorm:"foreignKey:RoomID" json:"room,omitempty"`
	Hotel *Hotel `gorm:"foreignKey:HotelID" json:"hotel,omitempty"`

	types.Timestamps
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
