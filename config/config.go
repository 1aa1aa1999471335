package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Storage
	MongoURI string
	MongoDB  string

	// HTTP server
	HTTPPort  string
	JWTSecret string

	// Scraping
	UserAgent       string
	NavTimeout      time.Duration
	SelectorTimeout time.Duration
	RespectRobots   bool
	BrowserBin      string

	// Scheduler
	CheckHour   int    // wall-clock hour of the daily run
	Timezone    string // IANA zone name for CheckHour
	PacingDelay time.Duration

	// Email
	SendGridKey string
	FromEmail   string
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		MongoURI:        "mongodb://localhost:27017",
		MongoDB:         "productowl",
		HTTPPort:        "8080",
		UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
		NavTimeout:      30 * time.Second,
		SelectorTimeout: 5 * time.Second,
		RespectRobots:   false,
		CheckHour:       7,
		Timezone:        "Asia/Kolkata",
		PacingDelay:     2 * time.Second,
		FromEmail:       "alerts@productowl.app",
	}
}

// LoadFromEnv loads .env (if present) then overrides config from environment variables.
func (c *Config) LoadFromEnv() {
	// Auto-load .env file; silently ignored if missing
	_ = godotenv.Load()

	if v := os.Getenv("MONGODB_URI"); v != "" {
		c.MongoURI = v
	}
	if v := os.Getenv("MONGODB_DB"); v != "" {
		c.MongoDB = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.HTTPPort = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := os.Getenv("PRODUCTOWL_USER_AGENT"); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv("PRODUCTOWL_NAV_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.NavTimeout = d
		}
	}
	if v := os.Getenv("PRODUCTOWL_SELECTOR_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.SelectorTimeout = d
		}
	}
	if v := os.Getenv("PRODUCTOWL_RESPECT_ROBOTS"); v == "true" {
		c.RespectRobots = true
	}
	if v := os.Getenv("ROD_BROWSER_BIN"); v != "" {
		c.BrowserBin = v
	}
	if v := os.Getenv("PRODUCTOWL_CHECK_HOUR"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n <= 23 {
			c.CheckHour = n
		}
	}
	if v := os.Getenv("PRODUCTOWL_TIMEZONE"); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv("PRODUCTOWL_PACING_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.PacingDelay = d
		}
	}
	if v := os.Getenv("SENDGRID_API_KEY"); v != "" {
		c.SendGridKey = v
	}
	if v := os.Getenv("PRODUCTOWL_FROM_EMAIL"); v != "" {
		c.FromEmail = v
	}
}

// Location resolves the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
