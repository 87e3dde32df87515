package config

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredKeys(t *testing.T) {
	t.Helper()
	encoded := base64.StdEncoding.EncodeToString([]byte("-----BEGIN FAKE-----\nabc\n-----END FAKE-----\n"))
	for _, key := range []string{
		"ACCESS_TOKEN_PRIVATE_KEY", "ACCESS_TOKEN_PUBLIC_KEY",
		"REFRESH_TOKEN_PRIVATE_KEY", "REFRESH_TOKEN_PUBLIC_KEY",
	} {
		t.Setenv(key, encoded)
	}
}

func TestFromEnvDefaults(t *testing.T) {
	setRequiredKeys(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Addr)
	assert.Equal(t, 15, cfg.AccessTokenMaxAgeMin)
	assert.Equal(t, 60, cfg.RefreshTokenMaxAgeMin)
	assert.False(t, cfg.CookieSecure)
	assert.Contains(t, string(cfg.AccessTokenPrivateKey), "BEGIN FAKE")
}

func TestFromEnvOverrides(t *testing.T) {
	setRequiredKeys(t)
	t.Setenv("ADDR", ":9999")
	t.Setenv("ACCESS_TOKEN_MAX_AGE", "30")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("COOKIE_DOMAIN", "example.com")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, 30, cfg.AccessTokenMaxAgeMin)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, "example.com", cfg.CookieDomain)
}

func TestFromEnvMissingKeyFails(t *testing.T) {
	setRequiredKeys(t)
	t.Setenv("REFRESH_TOKEN_PUBLIC_KEY", "")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REFRESH_TOKEN_PUBLIC_KEY")
}

func TestFromEnvRejectsBadBase64(t *testing.T) {
	setRequiredKeys(t)
	t.Setenv("ACCESS_TOKEN_PRIVATE_KEY", "not base64!!")

	_, err := FromEnv()
	require.Error(t, err)
}
