package scopes

import (
	"time"

	"quickstay/src/types"

	"gorm.io/gorm"
)

func WithID(id string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ?", id)
	}
}

// Overlapping matches bookings of roomID whose stay touches [checkIn, checkOut].
// Both ends are inclusive, so a checkout on the same day as another check-in collides.
func Overlapping(roomID string, checkIn, checkOut time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Where("room_id = ?", roomID).
			Where("check_in_date <= ?", checkOut).
			Where("check_out_date >= ?", checkIn)
	}
}

// Holding excludes bookings that no longer hold their room.
func Holding(db *gorm.DB) *gorm.DB {
	return db.Where("status <> ?", types.BOOKING_CANCELLED)
}

func NewestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC")
}

func Available(db *gorm.DB) *gorm.DB {
	return db.Where("is_available = ?", true)
}
