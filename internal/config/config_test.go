package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("IAGO_JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "IAgo API", cfg.AppName)
	require.Equal(t, "8080", cfg.AppPort)
	require.Equal(t, 30*time.Minute, cfg.TokenTTL)
	require.Equal(t, 60*time.Second, cfg.AssistantTimeout)
	require.Equal(t, 2, cfg.AssistantRetries)
	require.Equal(t, 5*time.Minute, cfg.ScoresCacheTTL)
	require.Equal(t, 5, cfg.GenerateRateLimit)
	require.Equal(t, time.Minute, cfg.GenerateRateWindow)
	require.Equal(t, "configs/assistant.yaml", cfg.AssistantConfigPath)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("IAGO_JWT_SECRET", "test-secret")
	t.Setenv("IAGO_APP_PORT", "9999")
	t.Setenv("IAGO_TOKEN_TTL", "2h")
	t.Setenv("IAGO_ASSISTANT_RETRIES", "4")
	t.Setenv("IAGO_DATABASE_URL", "postgres://localhost/review")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "9999", cfg.AppPort)
	require.Equal(t, 2*time.Hour, cfg.TokenTTL)
	require.Equal(t, 4, cfg.AssistantRetries)
	require.Equal(t, "postgres://localhost/review", cfg.DatabaseURL)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("IAGO_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsInvalidDurations(t *testing.T) {
	t.Setenv("IAGO_JWT_SECRET", "test-secret")
	t.Setenv("IAGO_TOKEN_TTL", "not-a-duration")

	_, err := Load()
	require.Error(t, err)
}

func TestHTTPAddress(t *testing.T) {
	require.Equal(t, ":8080", Config{AppPort: "8080"}.HTTPAddress())
	require.Equal(t, ":9000", Config{AppPort: ":9000"}.HTTPAddress())
}
