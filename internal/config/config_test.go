package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"APP_ENV", "APP_PORT", "MONGO_URI", "JWT_SECRET_KEY", "JWT_EXPIRES_IN", "JWT_PRIVATE_KEY_PATH",
		"CLIENT_URL", "CORS_ORIGINS", "GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "GOOGLE_CALLBACK_URL",
		"OAUTH_STATE_SECRET", "JWT_NEXT_KEY_ID", "JWT_NEXT_KEY_PATH",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDevelopmentDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, 168*time.Hour, cfg.JWTExpiresIn)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Equal(t, cfg.JWTSecret, cfg.OAuthStateSecret)
	assert.Equal(t, "http://localhost:5173", cfg.ClientURL)
	assert.Equal(t, "http://localhost:5000/api/auth/google/callback", cfg.GoogleCallbackURL)
	assert.False(t, cfg.GoogleConfigured())
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowedOrigins())
}

func TestLoadProductionListsMissing(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")

	_, err := Load()
	require.Error(t, err)
	for _, name := range []string{"JWT_SECRET_KEY", "MONGO_URI", "CLIENT_URL"} {
		assert.Contains(t, err.Error(), name)
	}

	t.Setenv("JWT_SECRET_KEY", "s3cret")
	t.Setenv("MONGO_URI", "mongodb://db:27017")
	t.Setenv("CLIENT_URL", "https://app.example.com")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"http://localhost:5173", "https://app.example.com"}, cfg.AllowedOrigins())
}

func TestRSAKeyReplacesSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("MONGO_URI", "mongodb://db:27017")
	t.Setenv("CLIENT_URL", "https://app.example.com")
	t.Setenv("JWT_PRIVATE_KEY_PATH", "/keys/active.pem")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.Missing())
}

func TestRSAKeyWithGoogleNeedsStateSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("MONGO_URI", "mongodb://db:27017")
	t.Setenv("CLIENT_URL", "https://app.example.com")
	t.Setenv("JWT_PRIVATE_KEY_PATH", "/keys/active.pem")
	t.Setenv("GOOGLE_CLIENT_ID", "id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")
	t.Setenv("GOOGLE_CALLBACK_URL", "https://api.example.com/api/auth/google/callback")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OAUTH_STATE_SECRET")

	t.Setenv("OAUTH_STATE_SECRET", "state-key")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "state-key", cfg.OAuthStateSecret)
}

func TestGoogleConfiguredAndOrigins(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_CLIENT_ID", "id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")
	t.Setenv("CORS_ORIGINS", "https://a.example.com,https://b.example.com")
	t.Setenv("JWT_EXPIRES_IN", "1h30m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.GoogleConfigured())
	assert.Equal(t, 90*time.Minute, cfg.JWTExpiresIn)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins())
}

func TestInvalidDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_EXPIRES_IN", "7d")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadNotifier(t *testing.T) {
	t.Setenv("RABBIT_CONCURRENCY", "8")
	cfg, err := LoadNotifier()
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, "user.registered,user.linked", cfg.BindKeys)
}
