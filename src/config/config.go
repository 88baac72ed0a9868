package config

import (
	"fmt"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const DATE_PARSE_FORMAT = "2006-01-02"

type Config struct {
	APIEnv          string
	Port            string
	DatabaseURL     string
	AppHost         string
	LogDir          string
	MaintenanceMode bool

	StripeSecretKey     string
	StripeWebhookSecret string
	StripeCurrency      string
	CurrencySymbol      string

	SenderEmail   string
	SenderName    string
	MailTransport string
	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string

	ClerkJWKSURL       string
	ClerkIssuer        string
	ClerkWebhookSecret string

	RedisURL    string
	RoomLock    string
	RoomLockTTL time.Duration

	S3Bucket        string
	S3PublicBaseURL string
}

// Load reads the process environment. A .env file in the working directory is
// loaded first when present; it is required when API_ENV=local.
func Load() (*Config, error) {
	cwd, _ := os.Getwd()
	envFile := path.Join(cwd, ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	} else if os.Getenv("API_ENV") == "local" {
		return nil, fmt.Errorf("API_ENV=local but %s is missing", envFile)
	}

	smtpPort, err := strconv.Atoi(getenv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}
	lockTTL, err := time.ParseDuration(getenv("ROOM_LOCK_TTL", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid ROOM_LOCK_TTL: %w", err)
	}
	maintenance, _ := strconv.ParseBool(os.Getenv("MAINTENANCE_MODE"))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = GetDSN()
	}

	return &Config{
		APIEnv:          getenv("API_ENV", "local"),
		Port:            getenv("PORT", "3000"),
		DatabaseURL:     dsn,
		AppHost:         os.Getenv("APP_HOST"),
		LogDir:          getenv("LOG_DIR", "logs"),
		MaintenanceMode: maintenance,

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		StripeCurrency:      getenv("STRIPE_CURRENCY", "usd"),
		CurrencySymbol:      getenv("CURRENCY", "$"),

		SenderEmail:   os.Getenv("SENDER_EMAIL"),
		SenderName:    getenv("SENDER_NAME", "QuickStay"),
		MailTransport: getenv("MAIL_TRANSPORT", "log"),
		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPPort:      smtpPort,
		SMTPUsername:  os.Getenv("SMTP_USERNAME"),
		SMTPPassword:  os.Getenv("SMTP_PASSWORD"),

		ClerkJWKSURL:       os.Getenv("CLERK_JWKS_URL"),
		ClerkIssuer:        os.Getenv("CLERK_ISSUER"),
		ClerkWebhookSecret: os.Getenv("CLERK_WEBHOOK_SECRET"),

		RedisURL:    os.Getenv("REDIS_URL"),
		RoomLock:    getenv("ROOM_LOCK", "none"),
		RoomLockTTL: lockTTL,

		S3Bucket:        os.Getenv("S3_BUCKET"),
		S3PublicBaseURL: os.Getenv("S3_PUBLIC_BASE_URL"),
	}, nil
}

func (c *Config) IsLocal() bool {
	return c.APIEnv == "local"
}

// const dsn = "host=localhost user=postgres password=password dbname=quickstay port=5432 sslmode=disable TimeZone=UTC"

func GetDSN() string {
	DATABASE_HOST := getenv("DATABASE_HOST", "localhost")
	DATABASE_PORT := getenv("DATABASE_PORT", "5432")
	DATABASE_SSLMODE := getenv("DATABASE_SSLMODE", "disable")
	DATABASE_TIMEZONE := getenv("DATABASE_TIMEZONE", "UTC")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
