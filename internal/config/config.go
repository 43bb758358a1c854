package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	App     AppConfig
	DB      DBConfig
	SMTP    SMTPConfig
	Gateway GatewayConfig
}

type AppConfig struct {
	Addr string
	// BaseURL is the public base used to build verification links embedded in QR codes.
	BaseURL string
}

type DBConfig struct {
	DSN string
}

type SMTPConfig struct {
	Host          string
	Port          string
	User          string
	Pass          string
	TLSMode       string // "", "starttls", "tls"
	SkipVerifyTLS bool

	FromAddr string
	FromName string
}

type GatewayConfig struct {
	BaseURL string
	APIKey  string
	// CallbackSecret signs inbound webhook bodies (hex HMAC-SHA256 of the raw body).
	CallbackSecret string

	SuccessRedirectURL string
	FailureRedirectURL string

	// InvoiceDuration is used when a booking has no explicit expiry date.
	InvoiceDuration time.Duration
}

func Load() (Config, error) {
	cfg := Config{
		App: AppConfig{
			Addr:    envOr("APP_ADDR", ":8080"),
			BaseURL: envOr("APP_BASE_URL", "http://localhost:8080"),
		},
		DB: DBConfig{
			DSN: os.Getenv("DB_DSN"),
		},
		SMTP: SMTPConfig{
			Host:          envOr("SMTP_HOST", "localhost"),
			Port:          envOr("SMTP_PORT", "1025"),
			User:          os.Getenv("SMTP_USER"),
			Pass:          os.Getenv("SMTP_PASS"),
			TLSMode:       os.Getenv("SMTP_TLS_MODE"),
			SkipVerifyTLS: envBool("SMTP_SKIP_VERIFY_TLS"),
			FromAddr:      envOr("EMAIL_FROM", "no-reply@thelodgefamily.id"),
			FromName:      envOr("EMAIL_FROM_NAME", "The Lodge Family"),
		},
		Gateway: GatewayConfig{
			BaseURL:            envOr("GATEWAY_BASE_URL", "https://api.xendit.co"),
			APIKey:             os.Getenv("GATEWAY_API_KEY"),
			CallbackSecret:     os.Getenv("GATEWAY_CALLBACK_SECRET"),
			SuccessRedirectURL: envOr("GATEWAY_SUCCESS_REDIRECT_URL", "http://localhost:3000/payment/success"),
			FailureRedirectURL: envOr("GATEWAY_FAILURE_REDIRECT_URL", "http://localhost:3000/payment/failed"),
			InvoiceDuration:    envDuration("GATEWAY_INVOICE_DURATION", 24*time.Hour),
		},
	}

	if cfg.DB.DSN == "" {
		return Config{}, fmt.Errorf("config: DB_DSN is required")
	}
	if cfg.Gateway.APIKey == "" {
		return Config{}, fmt.Errorf("config: GATEWAY_API_KEY is required")
	}
	if cfg.Gateway.CallbackSecret == "" {
		return Config{}, fmt.Errorf("config: GATEWAY_CALLBACK_SECRET is required")
	}

	return cfg, nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envBool(k string) bool {
	v, err := strconv.ParseBool(os.Getenv(k))
	return err == nil && v
}

func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
