package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Discord Bot
	DiscordToken string

	// Data files
	DataDir       string
	UserDataFile  string
	ShopItemsFile string

	// Optional Postgres backend for user records
	DatabaseURL string

	// Trading
	TradeTimeout time.Duration

	// Web Server (operator API)
	WebBind      string
	WebUIBaseURL string

	// Discord OAuth2 (operator API login)
	DiscordClientID     string
	DiscordClientSecret string
	DiscordRedirectURI  string

	// Session
	JWTSecret string
}

func Load() (*Config, error) {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	dataDir := getEnvDefault("DATA_DIR", "data")

	cfg := &Config{
		DiscordToken:        os.Getenv("DISCORD_TOKEN"),
		DataDir:             dataDir,
		UserDataFile:        getEnvDefault("USER_DATA_FILE", filepath.Join(dataDir, "userdata.json")),
		ShopItemsFile:       getEnvDefault("SHOP_ITEMS_FILE", filepath.Join(dataDir, "shopItems.json")),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		WebBind:             getEnvDefault("WEB_BIND", "0.0.0.0:3000"),
		DiscordClientID:     os.Getenv("DISCORD_CLIENT_ID"),
		DiscordClientSecret: os.Getenv("DISCORD_CLIENT_SECRET"),
		DiscordRedirectURI:  getEnvDefault("DISCORD_REDIRECT_URI", "http://localhost:3000/api/auth/callback"),
		JWTSecret:           getEnvDefault("JWT_SECRET", "dev-only-change-me"),
	}

	timeoutSeconds, err := strconv.Atoi(getEnvDefault("TRADE_TIMEOUT_SECONDS", "60"))
	if err != nil || timeoutSeconds <= 0 {
		return nil, fmt.Errorf("TRADE_TIMEOUT_SECONDS must be a positive integer")
	}
	cfg.TradeTimeout = time.Duration(timeoutSeconds) * time.Second

	// Extract base URL from redirect URI
	cfg.WebUIBaseURL = extractBaseURL(cfg.DiscordRedirectURI)

	if cfg.DiscordToken == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN is required")
	}

	return cfg, nil
}

// APIEnabled reports whether the operator HTTP API should be started. It
// requires the Discord OAuth2 application credentials.
func (c *Config) APIEnabled() bool {
	return c.DiscordClientID != "" && c.DiscordClientSecret != ""
}

func getEnvDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func extractBaseURL(redirectURI string) string {
	// Extract base URL from redirect URI using url.Parse
	// e.g., "http://localhost:3000/api/auth/callback" -> "http://localhost:3000"
	parsed, err := url.Parse(redirectURI)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "http://localhost:3000"
	}

	return fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host)
}
