package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

var ErrMissingAPIBaseURL = errors.New("API_BASE_URL is required")

type Config struct {
	APIBaseURL    string
	Addr          string
	SessionSecret string
	HTTPTimeout   time.Duration
	SessionIdle   time.Duration
	MaxUploadSize int64
	LogMode       string
	LogFile       string
	SecureCookie  bool
}

// Load reads the configuration from the environment, after an optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		APIBaseURL:    strings.TrimRight(strings.TrimSpace(os.Getenv("API_BASE_URL")), "/"),
		Addr:          getenv("APP_ADDR", ":8080"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		HTTPTimeout:   time.Duration(positiveInt("HTTP_TIMEOUT_SECONDS", 15)) * time.Second,
		SessionIdle:   time.Duration(positiveInt("SESSION_IDLE_MINUTES", 30)) * time.Minute,
		MaxUploadSize: int64(positiveInt("MAX_UPLOAD_MB", 5)) << 20,
		LogMode:       strings.ToLower(getenv("LOG_MODE", "development")),
		LogFile:       os.Getenv("LOG_FILE"),
		SecureCookie:  cast.ToBool(os.Getenv("COOKIE_SECURE")),
	}

	if cfg.APIBaseURL == "" {
		return nil, ErrMissingAPIBaseURL
	}
	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API_BASE_URL %q", cfg.APIBaseURL)
	}

	if cfg.SessionSecret == "" {
		// sessions do not survive a restart without a configured secret
		cfg.SessionSecret, err = randomSecret()
		if err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func (c *Config) Development() bool {
	return c.LogMode != "production"
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func positiveInt(k string, def int) int {
	n, err := cast.ToIntE(os.Getenv(k))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
