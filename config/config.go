package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the explicit configuration every component is constructed
// with. There are no package-level SDK handles anywhere in the server;
// main builds one Config and threads it through.
type Config struct {
	HTTPAddr    string
	DatabaseURL string
	RedisURL    string

	AppBaseURL string // public base URL the payment authority redirects back to
	Currency   string

	PaymentAPIURL string
	PaymentAPIKey string

	StateHashKey  []byte // base64, signs the checkout state token
	StateBlockKey []byte // base64, encrypts it

	AccessTokenSecret string
}

// FromEnv loads .env when present (development convenience, same as the
// rest of the deployment) and then reads everything from the process
// environment.
func FromEnv() (Config, error) {
	godotenv.Load()

	cfg := Config{
		HTTPAddr:          envDefault("HTTP_ADDR", ":8080"),
		DatabaseURL:       strings.TrimSpace(os.Getenv("DB_CONNECTION_STRING")),
		RedisURL:          envDefault("REDIS_URL", "localhost:6379"),
		AppBaseURL:        envDefault("APP_LIVE_URL", "http://localhost:8080"),
		Currency:          envDefault("CURRENCY", "bam"),
		PaymentAPIURL:     strings.TrimSpace(os.Getenv("PAYMENT_API_URL")),
		PaymentAPIKey:     strings.TrimSpace(os.Getenv("PAYMENT_API_KEY")),
		AccessTokenSecret: strings.TrimSpace(os.Getenv("ACCESS_TOKEN_SECRET")),
	}
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DB_CONNECTION_STRING is required")
	}
	if cfg.PaymentAPIURL == "" {
		return cfg, fmt.Errorf("PAYMENT_API_URL is required")
	}
	if cfg.AccessTokenSecret == "" {
		return cfg, fmt.Errorf("ACCESS_TOKEN_SECRET is required")
	}

	var err error
	cfg.StateHashKey, err = mustB64("STATE_HASH_KEY")
	if err != nil {
		return cfg, err
	}
	cfg.StateBlockKey, err = mustB64("STATE_BLOCK_KEY")
	if err != nil {
		return cfg, err
	}
	if n := len(cfg.StateBlockKey); n != 16 && n != 24 && n != 32 {
		return cfg, fmt.Errorf("STATE_BLOCK_KEY must decode to 16, 24 or 32 bytes (got %d)", n)
	}
	return cfg, nil
}

func envDefault(k, d string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d
	}
	return v
}

func mustB64(k string) ([]byte, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return nil, fmt.Errorf("%s is required (base64)", k)
	}
	b, err := base64.StdEncoding.DecodeString(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", k, err)
	}
	return b, nil
}
