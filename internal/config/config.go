package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Supported values for DB_DRIVER.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Supported values for INGEST_MODE.
const (
	IngestBatched = "batched"
	IngestAtomic  = "atomic"
)

// DatabaseConfig holds everything needed to open the primary database.
type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	Charset         string
	SSLMode         string
	SQLitePath      string
	Verbose         bool
	ForeignKeys     bool
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// AuthConfig covers tokens, cookies and one-time passwords.
type AuthConfig struct {
	SecretKey    string
	TokenTTL     time.Duration
	CookieSecure bool
	OTPTTL       time.Duration
	OTPStore     string // "memory" or "redis"
}

// RedisConfig is only used when OTP_STORE=redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MailConfig selects the mailer. An empty ResendAPIKey means codes are only logged.
type MailConfig struct {
	ResendAPIKey string
	ResendURL    string
	From         string
}

// Config is the full runtime configuration of the API and the seed tool.
type Config struct {
	Port           string
	Database       DatabaseConfig
	Auth           AuthConfig
	Redis          RedisConfig
	Mail           MailConfig
	AllowedOrigins []string
	WebhookSecret  string
	LogLevel       string
	LogFormat      string
	IngestMode     string
}

// Load reads the configuration from environment variables.
// Call godotenv.Load() before this if a .env file should be honoured.
func Load() *Config {
	return &Config{
		Port: getEnvOrDefault("PORT", "8080"),
		Database: DatabaseConfig{
			Driver:          strings.ToLower(getEnvOrDefault("DB_DRIVER", DriverMySQL)),
			Host:            getEnvOrDefault("DB_HOST", "localhost"),
			Port:            getEnvOrDefault("DB_PORT", "3306"),
			User:            getEnvOrDefault("DB_USER", "root"),
			Password:        os.Getenv("DB_PASSWORD"),
			Name:            getEnvOrDefault("DB_DATABASE", "xeno_shopify"),
			Charset:         getEnvOrDefault("DB_CHARSET", "utf8mb4"),
			SSLMode:         getEnvOrDefault("DB_SSLMODE", "disable"),
			SQLitePath:      getEnvOrDefault("DB_SQLITE_PATH", "tenantdesk.db"),
			Verbose:         parseBoolOrDefault("DB_VERBOSE", true),
			ForeignKeys:     parseBoolOrDefault("DB_FOREIGN_KEYS", true),
			MaxOpenConns:    parseIntOrDefault("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    parseIntOrDefault("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: parseDurationOrDefault("DB_CONN_MAX_LIFETIME", "5m"),
		},
		Auth: AuthConfig{
			SecretKey:    os.Getenv("SECRET_KEY"),
			TokenTTL:     parseDurationOrDefault("TOKEN_TTL", "360m"),
			CookieSecure: parseBoolOrDefault("COOKIE_SECURE", true),
			OTPTTL:       parseDurationOrDefault("OTP_TTL", "10m"),
			OTPStore:     strings.ToLower(getEnvOrDefault("OTP_STORE", "memory")),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       parseIntOrDefault("REDIS_DB", 0),
		},
		Mail: MailConfig{
			ResendAPIKey: os.Getenv("RESEND_API_KEY"),
			ResendURL:    getEnvOrDefault("RESEND_API_URL", "https://api.resend.com"),
			From:         getEnvOrDefault("MAIL_FROM", "onboarding@resend.dev"),
		},
		AllowedOrigins: parseListOrDefault("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:3001",
			"https://localhost:3000",
			"https://localhost:3001",
		}),
		WebhookSecret: os.Getenv("SHOPIFY_WEBHOOK_SECRET"),
		LogLevel:      getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:     getEnvOrDefault("LOG_FORMAT", "json"),
		IngestMode:    strings.ToLower(getEnvOrDefault("INGEST_MODE", IngestBatched)),
	}
}

// Validate rejects values that would only fail later at runtime.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	switch c.IngestMode {
	case IngestBatched, IngestAtomic:
	default:
		return fmt.Errorf("unsupported INGEST_MODE %q", c.IngestMode)
	}
	switch c.Auth.OTPStore {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported OTP_STORE %q", c.Auth.OTPStore)
	}
	return nil
}

// DSN builds the driver specific connection string.
func (d DatabaseConfig) DSN() string {
	switch d.Driver {
	case DriverPostgres:
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
	case DriverSQLite:
		// SQLite enforces foreign keys per connection, so every pooled connection needs the flag.
		if d.ForeignKeys && !strings.Contains(d.SQLitePath, "?") {
			return d.SQLitePath + "?_foreign_keys=on"
		}
		return d.SQLitePath
	default:
		// parseTime + loc=UTC so DATETIME columns come back as UTC instants.
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=true&loc=UTC",
			d.User, d.Password, d.Host, d.Port, d.Name, d.Charset)
	}
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseIntOrDefault parses an integer from environment variable or returns default
func parseIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// parseBoolOrDefault parses a boolean from environment variable or returns default
func parseBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// parseDurationOrDefault parses a duration from environment variable or returns default
func parseDurationOrDefault(key, defaultValue string) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	parsed, err := time.ParseDuration(defaultValue)
	if err != nil {
		return time.Hour
	}
	return parsed
}

func parseListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
