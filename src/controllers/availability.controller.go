package controllers

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"quickstay/src/models"
	"quickstay/src/models/scopes"
)

type AvailabilityController struct {
	db *gorm.DB
}

func NewAvailabilityController(db *gorm.DB) *AvailabilityController {
	return &AvailabilityController{db: db}
}

// IsAvailable reports whether no holding booking of roomID touches [checkIn, checkOut].
// It does not check that the room exists.
func (c *AvailabilityController) IsAvailable(ctx context.Context, roomID string, checkIn, checkOut time.Time) (bool, error) {
	return roomIsFree(c.db.WithContext(ctx), roomID, checkIn, checkOut)
}

func roomIsFree(tx *gorm.DB, roomID string, checkIn, checkOut time.Time) (bool, error) {
	var count int64
	err := tx.
		Model(&models.Booking{}).
		Scopes(scopes.Overlapping(roomID, checkIn, checkOut), scopes.Holding).
		Count(&count).
		Error
	if err != nil {
		return false, fmt.Errorf("checking availability of room %s: %w", roomID, err)
	}
	return count == 0, nil
}
