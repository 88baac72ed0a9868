package db

import (
	"fmt"

	"quickstay/src/config"
	"quickstay/src/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to postgres using the configured DSN.
func Open(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		TranslateError: true,
		// users are deleted by identity webhooks while their bookings stay
		DisableForeignKeyConstraintWhenMigrating: true,
	}
	if !cfg.IsLocal() {
		gormCfg.Logger = logger.Default.LogMode(logger.Warn)
	}
	_db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	sqlDB, err := _db.DB()
	if err != nil {
		return nil, fmt.Errorf("establishing connection to database: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	return _db, nil
}

// Migrate creates or updates the users, hotels, rooms and bookings tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Hotel{},
		&models.Room{},
		&models.Booking{},
	)
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
