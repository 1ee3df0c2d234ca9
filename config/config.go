package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App         AppConfig
	HTTP        ServerConfig
	Log         LogConfig
	PaySim      PaySimConfig
	Fulfillment FulfillmentConfig
}

type AppConfig struct {
	ServiceName string
	// PublicBaseURL is the externally reachable address of this service. The
	// provider redirects the buyer back to it, so it must be the address the
	// provider can reach, not a bind address.
	PublicBaseURL string
}

type ServerConfig struct {
	Host string
	Port string
}

type LogConfig struct {
	Level string
}

type PaySimConfig struct {
	BaseURL       string
	APIKey        string
	WebhookSecret string
	HTTPTimeout   time.Duration
}

type FulfillmentConfig struct {
	DedupTTL time.Duration
}

const defaultPaySimBaseURL = "https://paysim-backend.onrender.com"

func Load() (*Config, error) {
	_ = godotenv.Load()

	apiKey := os.Getenv("PAYSIM_API_KEY")
	if apiKey == "" {
		return nil, errors.New("PAYSIM_API_KEY environment variable is required")
	}
	webhookSecret := os.Getenv("PAYSIM_WEBHOOK_SECRET")
	if webhookSecret == "" {
		return nil, errors.New("PAYSIM_WEBHOOK_SECRET environment variable is required")
	}
	publicBaseURL := strings.TrimRight(strings.TrimSpace(os.Getenv("PUBLIC_SERVER_URL")), "/")
	if publicBaseURL == "" {
		return nil, errors.New("PUBLIC_SERVER_URL environment variable is required")
	}

	return &Config{
		App: AppConfig{
			ServiceName:   getEnv("APP_SERVICE_NAME", "checkout-service"),
			PublicBaseURL: publicBaseURL,
		},
		HTTP: ServerConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnv("HTTP_PORT", "3000"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		PaySim: PaySimConfig{
			BaseURL:       strings.TrimRight(getEnv("PAYSIM_API_URL", defaultPaySimBaseURL), "/"),
			APIKey:        apiKey,
			WebhookSecret: webhookSecret,
			HTTPTimeout:   getSecondsEnv("PAYSIM_HTTP_TIMEOUT_SECONDS", 10*time.Second),
		},
		Fulfillment: FulfillmentConfig{
			DedupTTL: getMinutesEnv("FULFILLMENT_DEDUP_TTL_MINUTES", 60*time.Minute),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getMinutesEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

func getSecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}
