package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"quickstay/src/boot"
	"quickstay/src/config"
	"quickstay/src/controllers"
	"quickstay/src/db"
	"quickstay/src/lib"
	"quickstay/src/middlewares"
	"quickstay/src/utils"
)

const apiPrefix = "/api"

// webhookVerifier checks identity provider webhook signatures.
type webhookVerifier interface {
	Verify(payload []byte, headers http.Header) error
}

type server struct {
	cfg    *config.Config
	logger *zap.Logger

	verifier lib.IdentityVerifier
	webhooks webhookVerifier
	gateway  lib.PaymentGateway

	availability *controllers.AvailabilityController
	bookings     *controllers.BookingController
	checkout     *controllers.CheckoutController
	payments     *controllers.PaymentController
	users        *controllers.UserController
	hotels       *controllers.HotelController
	rooms        *controllers.RoomController
}

func newServer(cfg *config.Config, logger *zap.Logger, database *gorm.DB, c *boot.Collaborators) *server {
	s := &server{
		cfg:          cfg,
		logger:       logger,
		verifier:     c.Verifier,
		gateway:      c.Gateway,
		availability: controllers.NewAvailabilityController(database),
		bookings:     controllers.NewBookingController(database, c.Locker, c.Mailer, cfg, logger),
		checkout:     controllers.NewCheckoutController(database, c.Gateway, cfg.StripeCurrency, logger),
		payments:     controllers.NewPaymentController(database, logger),
		users:        controllers.NewUserController(database, logger),
		hotels:       controllers.NewHotelController(database, logger),
		rooms:        controllers.NewRoomController(database, c.Images, logger),
	}
	if c.Webhooks != nil {
		s.webhooks = c.Webhooks
	}
	return s
}

var bookingDateValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, err := utils.ParseDate(date)
	return err == nil
}

func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("bookingdate", bookingDateValidatorFunc)
	}
}

func setupRouter(s *server, logWriter io.Writer) *gin.Engine {
	registerValidators()

	router := gin.New()
	router.Use(gin.LoggerWithWriter(logWriter))
	router.Use(middlewares.Recovery(s.logger))
	router.Use(middlewares.SecureHeaders)
	router.Use(corsMiddleware(s.cfg))
	router.Use(middlewares.Maintenance(s.cfg.MaintenanceMode, s.logger))

	router.GET("/", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "API is working fine")
	})
	if s.cfg.S3Bucket == "" {
		router.Static("/"+boot.LocalUploadsDir, boot.LocalUploadsDir)
	}

	api := router.Group(apiPrefix)
	// webhooks read the raw body for signature checks
	stripeWebhookRoute(api, s)
	clerkWebhookRoute(api, s)

	protect := middlewares.Protect(s.verifier, s.users, s.logger)
	bookingHandlers(api.Group("/bookings"), s, protect)
	userHandlers(api.Group("/user"), s, protect)
	hotelHandlers(api.Group("/hotels"), s, protect)
	api.GET("/hotel/bookings", protect, s.hotelBookings)
	roomHandlers(api.Group("/rooms"), s, protect)
	return router
}

func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	if cfg.IsLocal() || cfg.AppHost == "" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.AppHost}
		corsCfg.AllowCredentials = true
	}
	return cors.New(corsCfg)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, controllers.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, controllers.ErrRoomUnavailable),
		errors.Is(err, controllers.ErrBookingBusy),
		errors.Is(err, controllers.ErrAlreadyRegistered):
		return http.StatusConflict
	case errors.Is(err, controllers.ErrInvalidDateRange),
		errors.Is(err, controllers.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, controllers.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, controllers.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, controllers.ErrSignatureInvalid):
		return http.StatusBadRequest
	case errors.Is(err, controllers.ErrUpstreamFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {success:false, message}. Server-side details stay in the log.
func (s *server) respondError(ctx *gin.Context, err error) {
	status := statusFor(err)
	message := err.Error()
	switch status {
	case http.StatusInternalServerError:
		s.logger.Error("request failed", zap.String("path", ctx.FullPath()), zap.Error(err))
		message = "Internal server error"
	case http.StatusBadGateway:
		s.logger.Error("upstream failure", zap.String("path", ctx.FullPath()), zap.Error(err))
		message = controllers.ErrUpstreamFailure.Error()
	default:
		s.logger.Debug("request rejected", zap.String("path", ctx.FullPath()), zap.Int("status", status), zap.Error(err))
	}
	ctx.JSON(status, gin.H{"success": false, "message": message})
}

func badRequest(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %s\n", err.Error())
	}
	logger, logWriter, err := lib.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Error initializing logger: %s\n", err.Error())
	}
	defer logger.Sync()
	if !cfg.IsLocal() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := boot.InitDb(cfg, logger)
	if err != nil {
		logger.Fatal("database unavailable", zap.Error(err))
	}
	defer db.Close(database)

	collaborators, err := boot.InitCollaborators(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("could not initialize collaborators", zap.Error(err))
	}
	defer collaborators.Close()

	router := setupRouter(newServer(cfg, logger, database, collaborators), logWriter)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.APIEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
