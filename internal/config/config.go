package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// Discord Bot
	DiscordToken string `env:"DISCORD_TOKEN"`

	// Discord OAuth2 (admin web API)
	DiscordClientID     string `env:"DISCORD_CLIENT_ID"`
	DiscordClientSecret string `env:"DISCORD_CLIENT_SECRET"`
	DiscordRedirectURI  string `env:"DISCORD_REDIRECT_URI" envDefault:"http://localhost:3000/api/auth/callback"`

	// LINE Messaging API
	LineChannelSecret      string `env:"LINE_CHANNEL_SECRET"`
	LineChannelAccessToken string `env:"LINE_CHANNEL_ACCESS_TOKEN"`
	LineAPIBaseURL         string `env:"LINE_API_BASE_URL" envDefault:"https://api.line.me"`

	// Catalog storage. Without either, an in-memory catalog is used.
	DatabaseURL  string `env:"DATABASE_URL"`
	SQLitePath   string `env:"SQLITE_PATH"`
	SeedDefaults bool   `env:"SEED_DEFAULT_RESTAURANTS" envDefault:"true"`

	// Web Server
	WebBind      string `env:"WEB_BIND" envDefault:"0.0.0.0:3000"`
	WebUIBaseURL string

	// Session
	JWTSecret    string   `env:"JWT_SECRET" envDefault:"dev-only-change-me"`
	AdminUserIDs []string `env:"ADMIN_USER_IDS" envSeparator:","`

	// Orders
	ReminderAfter time.Duration `env:"ORDER_REMINDER_AFTER" envDefault:"0s"`
}

// defaultJWTSecret mirrors the JWT_SECRET envDefault. It is only acceptable
// while no admin routes can be reached.
const defaultJWTSecret = "dev-only-change-me"

func Load() (*Config, error) {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the configuration from the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.WebUIBaseURL = extractBaseURL(cfg.DiscordRedirectURI)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DiscordToken == "" && c.LineChannelSecret == "" {
		return errors.New("DISCORD_TOKEN or LINE_CHANNEL_SECRET is required")
	}
	if c.LineChannelSecret != "" && c.LineChannelAccessToken == "" {
		return errors.New("LINE_CHANNEL_ACCESS_TOKEN is required when LINE_CHANNEL_SECRET is set")
	}
	if c.DatabaseURL != "" && c.SQLitePath != "" {
		return errors.New("set only one of DATABASE_URL and SQLITE_PATH")
	}
	if len(c.AdminUserIDs) > 0 && (c.JWTSecret == "" || c.JWTSecret == defaultJWTSecret) {
		return errors.New("JWT_SECRET must be set to a non-default value when ADMIN_USER_IDS is set")
	}
	if c.ReminderAfter < 0 {
		return errors.New("ORDER_REMINDER_AFTER must not be negative")
	}
	return nil
}

// DiscordEnabled reports whether the Discord gateway bot should start.
func (c *Config) DiscordEnabled() bool {
	return c.DiscordToken != ""
}

// LineEnabled reports whether the LINE webhook should be served.
func (c *Config) LineEnabled() bool {
	return c.LineChannelSecret != ""
}

// AdminLoginEnabled reports whether the Discord OAuth2 admin login is configured.
func (c *Config) AdminLoginEnabled() bool {
	return c.DiscordClientID != "" && c.DiscordClientSecret != ""
}

// IsAdmin reports whether the Discord user may edit the catalog.
func (c *Config) IsAdmin(userID string) bool {
	for _, id := range c.AdminUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func extractBaseURL(redirectURI string) string {
	// e.g., "http://localhost:3000/api/auth/callback" -> "http://localhost:3000"
	parsed, err := url.Parse(redirectURI)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "http://localhost:3000"
	}

	return fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host)
}
