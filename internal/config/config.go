package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// MidtransConfig holds the payment gateway credentials
type MidtransConfig struct {
	ServerKey  string
	ClientKey  string
	Production bool
}

// SMTPConfig holds the outbound mail settings
type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
}

// Config is the application configuration, loaded once at startup.
// Booking policy values below are business rules, not constants; they are
// env-overridable so support can tune them without a deploy.
type Config struct {
	Env         string
	Port        string
	DatabaseURL string
	RedisURL    string

	FirebaseCredentialsPath string

	Midtrans MidtransConfig
	SMTP     SMTPConfig

	// Currency used for all package prices and gateway charges
	Currency string

	// MaxPartySize bounds number_of_people on a booking (policy: 1..10)
	MaxPartySize int

	// PendingBookingTTL is how long a (pending, pending) booking may sit
	// before the worker sweeps it
	PendingBookingTTL time.Duration

	// PaymentFinishURL is where the gateway sends the customer after checkout
	PaymentFinishURL string

	// GatewayTimeout bounds every round-trip to the payment gateway
	GatewayTimeout time.Duration
}

// Load reads configuration from the environment. Callers are expected to
// have run godotenv.Load() first.
func Load() (*Config, error) {
	cfg := &Config{
		Env:         getEnv("ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", "./firebase-service-account.json"),

		Midtrans: MidtransConfig{
			ServerKey:  os.Getenv("MIDTRANS_SERVER_KEY"),
			ClientKey:  os.Getenv("MIDTRANS_CLIENT_KEY"),
			Production: os.Getenv("MIDTRANS_IS_PRODUCTION") == "true",
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     os.Getenv("SMTP_PORT"),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASS"),
			From:     os.Getenv("EMAIL_FROM"),
		},

		Currency:          getEnv("CURRENCY", "IDR"),
		MaxPartySize:      getEnvInt("MAX_PARTY_SIZE", 10),
		PendingBookingTTL: getEnvDuration("PENDING_BOOKING_TTL", 48*time.Hour),
		PaymentFinishURL:  os.Getenv("PAYMENT_FINISH_URL"),
		GatewayTimeout:    getEnvDuration("GATEWAY_TIMEOUT", 15*time.Second),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required but not set")
	}
	if cfg.MaxPartySize < 1 {
		return nil, fmt.Errorf("MAX_PARTY_SIZE must be at least 1")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
