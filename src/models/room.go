package models

import (
	"quickstay/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Room struct {
	ID            string           `gorm:"primarykey;size:36" json:"_id"`
	HotelID       string           `gorm:"size:36;not null;index" json:"hotelId"`
	RoomType      types.RoomType   `gorm:"type:varchar(32);not null" json:"roomType"`
	PricePerNight float64          `gorm:"not null" json:"pricePerNight"`
	Amenities     types.StringList `json:"amenities"`
	Images        types.StringList `json:"images"`
	IsAvailable   bool             `gorm:"not null;default:true" json:"isAvailable"`

	Hotel *Hotel `gorm:"foreignKey:HotelID" json:"hotel,omitempty"`

	types.Timestamps
}

func (r *Room) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
