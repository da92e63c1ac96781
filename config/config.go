package config

import (
	"log/slog"
	"os"
	"time"
)

type Config struct {
	// MongoDB configuration
	MongoURI     string
	DatabaseName string

	// Chat transport configuration
	BotToken       string
	WebhookSecret  string
	OperatorChatID string

	// Market data providers
	PriceAPIBase    string
	ExplorerAPIBase string
	ExplorerAPIKey  string
	QuoteCacheTTL   time.Duration
	ProviderTimeout time.Duration

	// Default admin account, created on first start if no operators exist
	AdminUsername string
	AdminPassword string

	// Server configuration
	Port string
}

func LoadConfig() *Config {
	cfg := &Config{
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DatabaseName:    getEnv("MONGO_DB_NAME", "crypto_support_bot"),
		BotToken:        getEnv("BOT_TOKEN", ""),
		WebhookSecret:   getEnv("WEBHOOK_SECRET", "webhook_secret_token"),
		OperatorChatID:  getEnv("OPERATOR_CHAT_ID", ""),
		PriceAPIBase:    getEnv("PRICE_API_BASE", "https://api.coingecko.com/api/v3"),
		ExplorerAPIBase: getEnv("EXPLORER_API_BASE", "https://api.etherscan.io/api"),
		ExplorerAPIKey:  getEnv("EXPLORER_API_KEY", ""),
		QuoteCacheTTL:   getDuration("QUOTE_CACHE_TTL", 60*time.Second),
		ProviderTimeout: getDuration("PROVIDER_TIMEOUT", 10*time.Second),
		AdminUsername:   getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:   getEnv("ADMIN_PASSWORD", ""),
		Port:            getEnv("PORT", "8080"),
	}

	// Validate required configuration
	if cfg.BotToken == "" {
		slog.Error("BOT_TOKEN not set")
	}
	if cfg.OperatorChatID == "" {
		slog.Warn("OPERATOR_CHAT_ID not set, forwarded messages will only reach the dashboard")
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		slog.Warn("Invalid duration value, using default", "key", key, "value", value)
	}
	return defaultValue
}
