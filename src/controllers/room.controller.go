package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"quickstay/src/lib"
	"quickstay/src/models"
	"quickstay/src/models/scopes"
	"quickstay/src/types"
)

type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type CreateRoomInput struct {
	RoomType      types.RoomType
	PricePerNight float64
	Amenities     []string
	Images        []Upload
}

type RoomController struct {
	db     *gorm.DB
	images lib.ImageStore
	logger *zap.Logger
}

func NewRoomController(db *gorm.DB, images lib.ImageStore, logger *zap.Logger) *RoomController {
	return &RoomController{db: db, images: images, logger: logger}
}

func (c *RoomController) Create(ctx context.Context, ownerID string, in *CreateRoomInput) (*models.Room, error) {
	if len(in.Images) > types.MaxRoomImages {
		return nil, fmt.Errorf("%w: at most %d images per room", ErrInvalidInput, types.MaxRoomImages)
	}
	if in.PricePerNight <= 0 {
		return nil, fmt.Errorf("%w: price per night must be positive", ErrInvalidInput)
	}
	db := c.db.WithContext(ctx)
	hotel, err := ownedHotel(db, ownerID)
	if err != nil {
		return nil, err
	}

	urls := make([]string, len(in.Images))
	g, gctx := errgroup.WithContext(ctx)
	for i, img := range in.Images {
		g.Go(func() error {
			key := fmt.Sprintf("rooms/%s/%s%s", hotel.ID, uuid.NewString(), strings.ToLower(path.Ext(img.Filename)))
			url, err := c.images.Upload(gctx, key, img.ContentType, img.Body)
			if err != nil {
				return fmt.Errorf("%w: uploading %s: %s", ErrUpstreamFailure, img.Filename, err.Error())
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	room := &models.Room{
		HotelID:       hotel.ID,
		RoomType:      in.RoomType,
		PricePerNight: in.PricePerNight,
		Amenities:     types.StringList(in.Amenities).Set(),
		Images:        urls,
		IsAvailable:   true,
	}
	if err := db.Create(room).Error; err != nil {
		return nil, fmt.Errorf("saving room: %w", err)
	}
	c.logger.Info("room created", zap.String("room", room.ID), zap.String("hotel", hotel.ID))
	return room, nil
}

// ListAvailable returns bookable rooms, newest first, with hotel and owner.
func (c *RoomController) ListAvailable(ctx context.Context) ([]models.Room, error) {
	rooms := make([]models.Room, 0)
	err := c.db.
		WithContext(ctx).
		Model(&models.Room{}).
		Scopes(scopes.Available, scopes.NewestFirst).
		Preload("Hotel").
		Preload("Hotel.Owner", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "image")
		}).
		Find(&rooms).
		Error
	if err != nil {
		return nil, fmt.Errorf("listing rooms: %w", err)
	}
	return rooms, nil
}

func (c *RoomController) ListForOwner(ctx context.Context, ownerID string) ([]models.Room, error) {
	db := c.db.WithContext(ctx)
	hotel, err := ownedHotel(db, ownerID)
	if err != nil {
		return nil, err
	}
	rooms := make([]models.Room, 0)
	err = db.
		Model(&models.Room{}).
		Where("hotel_id = ?", hotel.ID).
		Preload("Hotel").
		Scopes(scopes.NewestFirst).
		Find(&rooms).
		Error
	if err != nil {
		return nil, fmt.Errorf("listing rooms of hotel %s: %w", hotel.ID, err)
	}
	return rooms, nil
}

// ToggleAvailability flips IsAvailable on a room of the owner's hotel.
func (c *RoomController) ToggleAvailability(ctx context.Context, ownerID, roomID string) (*models.Room, error) {
	var room models.Room
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		hotel, err := ownedHotel(tx, ownerID)
		if err != nil {
			return err
		}
		if err := tx.Scopes(scopes.WithID(roomID)).Take(&room).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: room %s", ErrNotFound, roomID)
			}
			return err
		}
		if room.HotelID != hotel.ID {
			return fmt.Errorf("%w: room belongs to another hotel", ErrForbidden)
		}
		room.IsAvailable = !room.IsAvailable
		return tx.
			Model(&models.Room{}).
			Scopes(scopes.WithID(roomID)).
			Update("is_available", room.IsAvailable).
			Error
	})
	if err != nil {
		return nil, err
	}
	return &room, nil
}
