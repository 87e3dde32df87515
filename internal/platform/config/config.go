// Package config builds the application configuration from environment
// variables so main stays lean. Key material arrives base64-encoded so the
// multi-line PEM blocks survive .env files and container env plumbing.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
)

// Config is the full application configuration.
type Config struct {
	Addr           string
	FrontendOrigin string

	AccessTokenPrivateKey  []byte // PEM
	AccessTokenPublicKey   []byte // PEM
	RefreshTokenPrivateKey []byte // PEM
	RefreshTokenPublicKey  []byte // PEM

	AccessTokenMaxAgeMin  int
	RefreshTokenMaxAgeMin int

	CookieDomain string
	CookieSecure bool

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	DatabaseURL string
	RedisURL    string
}

// FromEnv reads the configuration from the environment. The four token keys
// are required; everything else has a development default.
func FromEnv() (Config, error) {
	cfg := Config{
		Addr:                  envOr("ADDR", ":8000"),
		FrontendOrigin:        envOr("FRONTEND_ORIGIN", "http://localhost:3000"),
		AccessTokenMaxAgeMin:  envInt("ACCESS_TOKEN_MAX_AGE", 15),
		RefreshTokenMaxAgeMin: envInt("REFRESH_TOKEN_MAX_AGE", 60),
		CookieDomain:          os.Getenv("COOKIE_DOMAIN"),
		CookieSecure:          os.Getenv("COOKIE_SECURE") == "true",
		GoogleClientID:        os.Getenv("GOOGLE_OAUTH_CLIENT_ID"),
		GoogleClientSecret:    os.Getenv("GOOGLE_OAUTH_CLIENT_SECRET"),
		GoogleRedirectURL:     os.Getenv("GOOGLE_OAUTH_REDIRECT_URL"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		RedisURL:              os.Getenv("REDIS_URL"),
	}

	var err error
	if cfg.AccessTokenPrivateKey, err = envPEM("ACCESS_TOKEN_PRIVATE_KEY"); err != nil {
		return Config{}, err
	}
	if cfg.AccessTokenPublicKey, err = envPEM("ACCESS_TOKEN_PUBLIC_KEY"); err != nil {
		return Config{}, err
	}
	if cfg.RefreshTokenPrivateKey, err = envPEM("REFRESH_TOKEN_PRIVATE_KEY"); err != nil {
		return Config{}, err
	}
	if cfg.RefreshTokenPublicKey, err = envPEM("REFRESH_TOKEN_PUBLIC_KEY"); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envPEM(key string) ([]byte, error) {
	v := os.Getenv(key)
	if v == "" {
		return nil, fmt.Errorf("%s is required", key)
	}
	decoded, err := base64.StdEncoding.DecodeString(v)
	if err != nil {
		return nil, fmt.Errorf("%s is not valid base64: %w", key, err)
	}
	return decoded, nil
}
