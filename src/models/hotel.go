package models

import (
	"quickstay/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Hotel struct {
	ID      string `gorm:"primarykey;size:36" json:"_id"`
	Name    string `gorm:"not null" json:"name"`
	Slug    string `gorm:"index" json:"slug"`
	Address string `gorm:"not null" json:"address"`
	Contact string `gorm:"not null" json:"contact"`
	City    string `gorm:"not null;index" json:"city"`
	OwnerID string `gorm:"size:191;not null;uniqueIndex" json:"owner"`

	Owner *User   `gorm:"foreignKey:OwnerID" json:"ownerDetails,omitempty"`
	Rooms []*Room `gorm:"foreignKey:HotelID" json:"-"`

	types.Timestamps
}

func (h *Hotel) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}
