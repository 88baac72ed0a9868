package controllers

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"quickstay/src/lib"
	"quickstay/src/models"
	"quickstay/src/models/scopes"
	"quickstay/src/types"
	"quickstay/src/utils"
)

const (
	defaultEmail    = "noemail@example.com"
	defaultUsername = "user"
	avatarURL       = "https://api.dicebear.com/7.x/identicon/svg?seed=%s"
)

const (
	ClerkUserCreated = "user.created"
	ClerkUserUpdated = "user.updated"
	ClerkUserDeleted = "user.deleted"
)

type UserController struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewUserController(db *gorm.DB, logger *zap.Logger) *UserController {
	return &UserController{db: db, logger: logger}
}

// GetOrCreate returns the user for identity, inserting it on first sight.
// Concurrent first requests converge on a single row.
func (c *UserController) GetOrCreate(ctx context.Context, identity *lib.Identity) (*models.User, error) {
	if identity == nil || identity.Subject == "" {
		return nil, ErrUnauthenticated
	}
	db := c.db.WithContext(ctx)
	var user models.User
	err := db.Scopes(scopes.WithID(identity.Subject)).Take(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("retrieving user %s: %w", identity.Subject, err)
	}

	fresh := newUser(identity.Subject, identity.Email, identity.Username, identity.Image)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(fresh).Error; err != nil {
		return nil, fmt.Errorf("provisioning user %s: %w", identity.Subject, err)
	}
	if err := db.Scopes(scopes.WithID(identity.Subject)).Take(&user).Error; err != nil {
		return nil, fmt.Errorf("reading provisioned user %s: %w", identity.Subject, err)
	}
	c.logger.Info("provisioned user", zap.String("user", user.ID), zap.String("email", user.Email))
	return &user, nil
}

func newUser(id, email, username, image string) *models.User {
	if email == "" {
		email = defaultEmail
	}
	if username == "" {
		username = utils.UsernameFromEmail(email, defaultUsername)
	}
	if image == "" {
		image = fmt.Sprintf(avatarURL, username)
	}
	return &models.User{
		ID:                   id,
		Username:             username,
		Email:                email,
		Image:                image,
		Role:                 types.ROLE_USER,
		RecentSearchedCities: types.StringList{},
	}
}

// SyncFromWebhook mirrors identity provider lifecycle events into the users table.
func (c *UserController) SyncFromWebhook(ctx context.Context, event *lib.ClerkEvent) error {
	db := c.db.WithContext(ctx)
	data := event.Data
	if data.ID == "" {
		return fmt.Errorf("%s event without user id", event.Type)
	}
	switch event.Type {
	case ClerkUserCreated:
		u := newUser(data.ID, data.PrimaryEmail(), data.DisplayName(), data.ImageURL)
		err := db.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"username", "email", "image", "updated_at"}),
			}).
			Create(u).
			Error
		if err != nil {
			return fmt.Errorf("creating user %s: %w", data.ID, err)
		}
	case ClerkUserUpdated:
		updates := map[string]any{}
		if email := data.PrimaryEmail(); email != "" {
			updates["email"] = email
		}
		if name := data.DisplayName(); name != "" {
			updates["username"] = name
		}
		if data.ImageURL != "" {
			updates["image"] = data.ImageURL
		}
		if len(updates) == 0 {
			return nil
		}
		if err := db.Model(&models.User{}).Scopes(scopes.WithID(data.ID)).Updates(updates).Error; err != nil {
			return fmt.Errorf("updating user %s: %w", data.ID, err)
		}
	case ClerkUserDeleted:
		if err := db.Scopes(scopes.WithID(data.ID)).Delete(&models.User{}).Error; err != nil {
			return fmt.Errorf("deleting user %s: %w", data.ID, err)
		}
	default:
		c.logger.Debug("ignoring identity event", zap.String("type", event.Type))
		return nil
	}
	c.logger.Info("synced user from identity webhook", zap.String("type", event.Type), zap.String("user", data.ID))
	return nil
}

// StoreRecentSearch appends city, dropping the oldest entry beyond the limit.
func (c *UserController) StoreRecentSearch(ctx context.Context, userID, city string) (types.StringList, error) {
	var cities types.StringList
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Scopes(scopes.WithID(userID)).Take(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: user %s", ErrNotFound, userID)
			}
			return err
		}
		cities = append(user.RecentSearchedCities, city)
		if over := len(cities) - types.MaxRecentSearchedCities; over > 0 {
			cities = cities[over:]
		}
		return tx.
			Model(&models.User{}).
			Scopes(scopes.WithID(userID)).
			Update("recent_searched_cities", cities).
			Error
	})
	if err != nil {
		return nil, err
	}
	return cities, nil
}
