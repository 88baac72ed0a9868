package models

import (
	"quickstay/src/types"
)

// User mirrors an identity provider account. ID is the provider's subject id.
type User struct {
	ID                   string           `gorm:"primarykey;size:191" json:"_id"`
	Username             string           `gorm:"not null" json:"username"`
	Email                string           `gorm:"not null" json:"email"`
	Image                string           `gorm:"not null" json:"image"`
	Role                 types.Role       `gorm:"type:varchar(16);not null;default:'user'" json:"role"`
	RecentSearchedCities types.StringList `json:"recentSearchedCities"`

	Bookings []Booking `gorm:"foreignKey:UserID" json:"-"`

	types.Timestamps
}
