package boot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"quickstay/src/config"
	"quickstay/src/db"
	"quickstay/src/lib"
	awslib "quickstay/src/lib/aws"
)

const LocalUploadsDir = "uploads"

// Collaborators are the external services the API talks to.
type Collaborators struct {
	Verifier lib.IdentityVerifier
	Webhooks *lib.SvixVerifier
	Gateway  lib.PaymentGateway
	Mailer   lib.Mailer
	Locker   lib.RoomLocker
	Images   lib.ImageStore

	closers []func()
}

func (c *Collaborators) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func InitDb(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	database, err := db.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(database); err != nil {
		return nil, fmt.Errorf("error migration: %w", err)
	}
	logger.Info("database ready")
	return database, nil
}

func InitCollaborators(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Collaborators, error) {
	c := &Collaborators{
		Gateway: lib.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret),
	}

	if cfg.ClerkJWKSURL == "" {
		return nil, errors.New("CLERK_JWKS_URL is required")
	}
	verifier, err := lib.NewClerkVerifier(cfg.ClerkJWKSURL, cfg.ClerkIssuer, logger)
	if err != nil {
		return nil, err
	}
	c.Verifier = verifier
	c.closers = append(c.closers, verifier.Close)

	if cfg.ClerkWebhookSecret != "" {
		if c.Webhooks, err = lib.NewSvixVerifier(cfg.ClerkWebhookSecret); err != nil {
			c.Close()
			return nil, err
		}
	} else {
		logger.Warn("CLERK_WEBHOOK_SECRET not set, identity webhook disabled")
	}

	if c.Mailer, err = initMailer(ctx, cfg, logger); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initLocker(ctx, cfg, logger); err != nil {
		c.Close()
		return nil, err
	}
	if c.Images, err = initImages(ctx, cfg, logger); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func initMailer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (lib.Mailer, error) {
	switch cfg.MailTransport {
	case "smtp":
		return lib.NewSMTPMailer(cfg, logger)
	case "ses":
		return awslib.NewSESMailer(ctx, logger)
	case "log", "":
		return &lib.LogMailer{Logger: logger}, nil
	default:
		return nil, fmt.Errorf("unknown MAIL_TRANSPORT %q", cfg.MailTransport)
	}
}

func (c *Collaborators) initLocker(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	switch cfg.RoomLock {
	case "redis":
		client, err := lib.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return err
		}
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pctx).Err(); err != nil {
			client.Close()
			return fmt.Errorf("connecting to redis: %w", err)
		}
		c.closers = append(c.closers, func() { client.Close() })
		c.Locker = lib.NewRedisRoomLocker(client, cfg.RoomLockTTL, logger)
	case "local":
		c.Locker = lib.NewLocalRoomLocker()
	case "none", "":
		c.Locker = lib.NoopRoomLocker{}
	default:
		return fmt.Errorf("unknown ROOM_LOCK %q", cfg.RoomLock)
	}
	logger.Info("room lock configured", zap.String("mode", cfg.RoomLock))
	return nil
}

func initImages(ctx context.Context, cfg *config.Config, logger *zap.Logger) (lib.ImageStore, error) {
	if cfg.S3Bucket == "" {
		logger.Warn("S3_BUCKET not set, storing room images on disk", zap.String("dir", LocalUploadsDir))
		return &lib.DiskImageStore{Dir: LocalUploadsDir, BaseURL: "/" + LocalUploadsDir}, nil
	}
	return awslib.NewS3ImageStore(ctx, cfg.S3Bucket, cfg.S3PublicBaseURL, logger)
}
