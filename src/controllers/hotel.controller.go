package controllers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"quickstay/src/models"
	"quickstay/src/models/scopes"
	"quickstay/src/types"
)

type HotelController struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewHotelController(db *gorm.DB, logger *zap.Logger) *HotelController {
	return &HotelController{db: db, logger: logger}
}

// Register creates the owner's hotel and promotes the owner. An owner has at most one hotel.
func (c *HotelController) Register(ctx context.Context, ownerID string, in *types.RegisterHotelRequestBody) (*models.Hotel, error) {
	hotel := &models.Hotel{
		Name:    strings.TrimSpace(in.Name),
		Slug:    slug.Make(in.Name),
		Address: strings.TrimSpace(in.Address),
		Contact: strings.TrimSpace(in.Contact),
		City:    strings.TrimSpace(in.City),
		OwnerID: ownerID,
	}
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Hotel{}).Where("owner_id = ?", ownerID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyRegistered
		}
		if err := tx.Create(hotel).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyRegistered
			}
			return fmt.Errorf("saving hotel: %w", err)
		}
		return tx.
			Model(&models.User{}).
			Scopes(scopes.WithID(ownerID)).
			Update("role", types.ROLE_HOTEL_OWNER).
			Error
	})
	if err != nil {
		return nil, err
	}
	c.logger.Info("hotel registered", zap.String("hotel", hotel.ID), zap.String("owner", ownerID))
	return hotel, nil
}

func (c *HotelController) Owned(ctx context.Context, ownerID string) (*models.Hotel, error) {
	return ownedHotel(c.db.WithContext(ctx), ownerID)
}

func ownedHotel(tx *gorm.DB, ownerID string) (*models.Hotel, error) {
	var hotel models.Hotel
	if err := tx.Where("owner_id = ?", ownerID).Take(&hotel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoHotel
		}
		return nil, fmt.Errorf("retrieving hotel of %s: %w", ownerID, err)
	}
	return &hotel, nil
}
