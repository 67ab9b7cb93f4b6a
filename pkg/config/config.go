package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Scanner pipeline
	Scanner ScannerConfig

	// Market session
	Market MarketConfig

	// External APIs
	Yahoo YahooConfig

	// Symbol universe
	Universe UniverseConfig

	// Database (optional, universe source only)
	Database DatabaseConfig

	// Redis (optional, shared rate limit only)
	Redis RedisConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// ScannerConfig holds the validate → fetch → analyze pipeline settings.
// Values are fixed for the duration of one run.
type ScannerConfig struct {
	Workers       int           // worker pool width for both pools
	Timeout       time.Duration // per provider call
	MinDataPoints int           // minimum one-minute bars per ticker
	TopN          int           // report size
	Exchanges     []string      // default exchange selection
	Schedule      string        // cron expression for the scheduler command
}

// MarketConfig describes the trading session of the scanned market
type MarketConfig struct {
	Timezone   string // IANA name, e.g. Asia/Kolkata
	OpenTime   string // HH:MM local
	CloseTime  string // HH:MM local
	OpenHour   int    // before this local hour the previous session is used
	CutoffHour int    // at or after this local hour the previous session is used
}

// YahooConfig holds Yahoo Finance chart API configuration
type YahooConfig struct {
	BaseURL   string
	RateLimit float64 // requests per second, 0 disables the local limiter
}

// UniverseConfig points at optional symbol universe sources
type UniverseConfig struct {
	File string // YAML file overriding the built-in symbol lists
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Scanner: ScannerConfig{
			Workers:       getEnvAsInt("SCAN_WORKERS", 10),
			Timeout:       getEnvAsDuration("SCAN_TIMEOUT", "10s"),
			MinDataPoints: getEnvAsInt("SCAN_MIN_DATA_POINTS", 60),
			TopN:          getEnvAsInt("SCAN_TOP_N", 10),
			Exchanges:     getEnvAsList("SCAN_EXCHANGES", "NSE,BSE"),
			Schedule:      getEnv("SCAN_SCHEDULE", "0 */15 9-15 * * MON-FRI"),
		},

		Market: MarketConfig{
			Timezone:   getEnv("MARKET_TIMEZONE", "Asia/Kolkata"),
			OpenTime:   getEnv("MARKET_OPEN", "09:15"),
			CloseTime:  getEnv("MARKET_CLOSE", "15:30"),
			OpenHour:   getEnvAsInt("MARKET_OPEN_HOUR", 9),
			CutoffHour: getEnvAsInt("MARKET_CUTOFF_HOUR", 16),
		},

		Yahoo: YahooConfig{
			BaseURL:   getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
			RateLimit: getEnvAsFloat("YAHOO_RATE_LIMIT", 20),
		},

		Universe: UniverseConfig{
			File: getEnv("UNIVERSE_FILE", ""),
		},

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 5),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Monitoring
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Scanner.Workers < 1 {
		return fmt.Errorf("SCAN_WORKERS must be >= 1, got %d", c.Scanner.Workers)
	}
	if c.Scanner.Timeout <= 0 {
		return fmt.Errorf("SCAN_TIMEOUT must be positive")
	}
	if c.Scanner.MinDataPoints < 2 {
		return fmt.Errorf("SCAN_MIN_DATA_POINTS must be >= 2, got %d", c.Scanner.MinDataPoints)
	}

	if _, err := time.LoadLocation(c.Market.Timezone); err != nil {
		return fmt.Errorf("MARKET_TIMEZONE %q: %w", c.Market.Timezone, err)
	}
	open, err := ParseClock(c.Market.OpenTime)
	if err != nil {
		return fmt.Errorf("MARKET_OPEN: %w", err)
	}
	closeAt, err := ParseClock(c.Market.CloseTime)
	if err != nil {
		return fmt.Errorf("MARKET_CLOSE: %w", err)
	}
	if open >= closeAt {
		return fmt.Errorf("MARKET_OPEN (%s) must be before MARKET_CLOSE (%s)", c.Market.OpenTime, c.Market.CloseTime)
	}
	if c.Market.OpenHour < 0 || c.Market.CutoffHour > 24 || c.Market.OpenHour >= c.Market.CutoffHour {
		return fmt.Errorf("MARKET_OPEN_HOUR/MARKET_CUTOFF_HOUR out of range: %d/%d", c.Market.OpenHour, c.Market.CutoffHour)
	}

	return nil
}

// ParseClock parses an "HH:MM" wall clock into an offset from midnight
func ParseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q (expected HH:MM)", s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

// getEnvAsList splits a comma separated value, dropping empty items
func getEnvAsList(key string, defaultValue string) []string {
	valueStr := getEnv(key, defaultValue)

	var items []string
	for _, item := range strings.Split(valueStr, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
