package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	require.NoError(t, os.Setenv(key, value))
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		} else {
			_ = os.Unsetenv(key)
		}
	})
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	_ = os.Unsetenv(key)
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		}
	})
}

func setRequired(t *testing.T) {
	t.Helper()
	setEnv(t, "PAYSIM_API_KEY", "sk_test_123")
	setEnv(t, "PAYSIM_WEBHOOK_SECRET", "whsec_test")
	setEnv(t, "PUBLIC_SERVER_URL", "https://store.example.com")
}

func TestLoadRequiresAPIKey(t *testing.T) {
	setRequired(t)
	unsetEnv(t, "PAYSIM_API_KEY")
	_, err := Load()
	require.Error(t, err)
}

func TestLoadRequiresWebhookSecret(t *testing.T) {
	setRequired(t)
	unsetEnv(t, "PAYSIM_WEBHOOK_SECRET")
	_, err := Load()
	require.Error(t, err)
}

func TestLoadRequiresPublicServerURL(t *testing.T) {
	setRequired(t)
	unsetEnv(t, "PUBLIC_SERVER_URL")
	_, err := Load()
	require.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	unsetEnv(t, "APP_SERVICE_NAME")
	unsetEnv(t, "HTTP_PORT")
	unsetEnv(t, "PAYSIM_API_URL")
	unsetEnv(t, "PAYSIM_HTTP_TIMEOUT_SECONDS")
	unsetEnv(t, "FULFILLMENT_DEDUP_TTL_MINUTES")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "checkout-service", cfg.App.ServiceName)
	require.Equal(t, "https://store.example.com", cfg.App.PublicBaseURL)
	require.Equal(t, "3000", cfg.HTTP.Port)
	require.Equal(t, defaultPaySimBaseURL, cfg.PaySim.BaseURL)
	require.Equal(t, 10*time.Second, cfg.PaySim.HTTPTimeout)
	require.Equal(t, 60*time.Minute, cfg.Fulfillment.DedupTTL)
}

func TestLoadOverridesAndTrimsTrailingSlashes(t *testing.T) {
	setRequired(t)
	setEnv(t, "PUBLIC_SERVER_URL", "https://abc123.ngrok.io/")
	setEnv(t, "PAYSIM_API_URL", "https://paysim.internal/")
	setEnv(t, "HTTP_PORT", "8181")
	setEnv(t, "PAYSIM_HTTP_TIMEOUT_SECONDS", "3")
	setEnv(t, "FULFILLMENT_DEDUP_TTL_MINUTES", "5")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://abc123.ngrok.io", cfg.App.PublicBaseURL)
	require.Equal(t, "https://paysim.internal", cfg.PaySim.BaseURL)
	require.Equal(t, "8181", cfg.HTTP.Port)
	require.Equal(t, 3*time.Second, cfg.PaySim.HTTPTimeout)
	require.Equal(t, 5*time.Minute, cfg.Fulfillment.DedupTTL)
}
