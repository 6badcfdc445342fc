// Package config handles loading application configuration from environment
// variables and an optional YAML file. All config is centralized here so no
// other package reads env vars directly. Sensible defaults are provided for
// development; the token signing secret has no default.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Supported password hashers.
const (
	HasherBcrypt   = "bcrypt"
	HasherArgon2id = "argon2id"
)

// Supported revocation store backends.
const (
	RevocationMariaDB = "mariadb"
	RevocationRedis   = "redis"
	RevocationMemory  = "memory"
)

// ErrMissingSecret is returned by Load when no token signing secret is
// configured. Callers treat it as fatal.
var ErrMissingSecret = errors.New("SECRET_KEY is required")

// Config holds all application configuration. Populated once at startup and
// passed to other packages via dependency injection; never mutated afterwards.
type Config struct {
	// Env is the runtime environment: "development" or "production".
	Env string

	// Port is the HTTP listen port (default: 8080).
	Port int

	// BaseURL is the public-facing URL, used as the allowed CORS origin.
	BaseURL string

	// LogLevel controls log verbosity: "debug", "info", "warn", "error".
	LogLevel string

	// TrustedProxies lists the CIDRs whose forwarding headers are believed
	// when resolving the client IP. Empty selects the built-in private ranges.
	TrustedProxies []string

	// Database holds MariaDB connection settings.
	Database DatabaseConfig

	// Redis holds Redis connection settings.
	Redis RedisConfig

	// Auth holds authentication-related settings.
	Auth AuthConfig
}

// DatabaseConfig holds MariaDB connection parameters. If DATABASE_URL is
// set, it takes precedence over the individual fields.
type DatabaseConfig struct {
	// Host is the MariaDB address in host:port format (default: "localhost:3306").
	// If no port is specified, 3306 is appended automatically.
	Host string

	User     string
	Password string
	Name     string

	// dsnOverride is set when DATABASE_URL is provided, bypassing individual fields.
	dsnOverride string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN returns the go-sql-driver/mysql connection string. If DATABASE_URL was
// set, it is returned as-is. Otherwise the DSN is built from the individual
// fields using the driver's Config.FormatDSN() to safely handle special
// characters in passwords.
func (d DatabaseConfig) DSN() string {
	if d.dsnOverride != "" {
		return d.dsnOverride
	}
	cfg := mysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = ensurePort(d.Host, "3306")
	cfg.DBName = d.Name
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

// ensurePort appends the default port if the host string doesn't include one.
func ensurePort(host, defaultPort string) string {
	_, _, err := net.SplitHostPort(host)
	if err != nil {
		return net.JoinHostPort(host, defaultPort)
	}
	return host
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	// URL is the Redis connection URL (e.g., "redis://localhost:6379").
	URL string
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	// SecretKey is the HMAC key used to sign and verify tokens.
	SecretKey string

	// TokenTTL is how long an issued token stays valid (default: 24h).
	TokenTTL time.Duration

	// CookieName is the cookie that carries the token (default: "token").
	CookieName string

	// PasswordHasher selects the hashing primitive: "bcrypt" or "argon2id".
	PasswordHasher string

	// BcryptCost is the bcrypt work factor (default: 10).
	BcryptCost int

	// RevocationBackend selects where revoked tokens are recorded:
	// "mariadb", "redis" or "memory".
	RevocationBackend string
}

// Load builds the configuration: defaults first, then the optional YAML file
// at configPath (skipped when empty), then environment variables. Returns an
// error if the secret is missing or a value is out of range.
func Load(configPath string) (*Config, error) {
	cfg := defaults()

	if configPath != "" {
		if err := applyFile(cfg, configPath); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// defaults returns the development configuration. SecretKey is left empty.
func defaults() *Config {
	return &Config{
		Env:      "development",
		Port:     8080,
		BaseURL:  "http://localhost:8080",
		LogLevel: "debug",
		Database: DatabaseConfig{
			Host:            "localhost:3306",
			User:            "authgate",
			Password:        "authgate",
			Name:            "authgate",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			URL: "redis://localhost:6379",
		},
		Auth: AuthConfig{
			TokenTTL:          24 * time.Hour,
			CookieName:        "token",
			PasswordHasher:    HasherBcrypt,
			BcryptCost:        10,
			RevocationBackend: RevocationMariaDB,
		},
	}
}

// applyEnv overlays environment variables onto cfg. Unset variables keep the
// current value.
func applyEnv(cfg *Config) {
	cfg.Env = getEnv("ENV", cfg.Env)
	cfg.Port = getEnvInt("PORT", cfg.Port)
	cfg.BaseURL = getEnv("BASE_URL", cfg.BaseURL)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.TrustedProxies = getEnvList("TRUSTED_PROXIES", cfg.TrustedProxies)

	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Name = getEnv("DB_NAME", cfg.Database.Name)
	cfg.Database.dsnOverride = getEnv("DATABASE_URL", cfg.Database.dsnOverride)
	cfg.Database.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", cfg.Database.MaxOpenConns)
	cfg.Database.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", cfg.Database.MaxIdleConns)
	cfg.Database.ConnMaxLifetime = getEnvDuration("DB_CONN_MAX_LIFETIME", cfg.Database.ConnMaxLifetime)

	cfg.Redis.URL = getEnv("REDIS_URL", cfg.Redis.URL)

	cfg.Auth.SecretKey = getEnv("SECRET_KEY", cfg.Auth.SecretKey)
	cfg.Auth.TokenTTL = getEnvDuration("TOKEN_TTL", cfg.Auth.TokenTTL)
	cfg.Auth.CookieName = getEnv("TOKEN_COOKIE_NAME", cfg.Auth.CookieName)
	cfg.Auth.PasswordHasher = strings.ToLower(getEnv("PASSWORD_HASHER", cfg.Auth.PasswordHasher))
	cfg.Auth.BcryptCost = getEnvInt("BCRYPT_COST", cfg.Auth.BcryptCost)
	cfg.Auth.RevocationBackend = strings.ToLower(getEnv("REVOCATION_BACKEND", cfg.Auth.RevocationBackend))
}

// Validate checks required fields and enumerations.
func (c *Config) Validate() error {
	if c.Auth.SecretKey == "" {
		return ErrMissingSecret
	}
	if !c.IsDevelopment() && len(c.Auth.SecretKey) < 32 {
		return fmt.Errorf("SECRET_KEY must be at least 32 characters outside development")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.Auth.TokenTTL)
	}
	if c.Auth.CookieName == "" {
		return fmt.Errorf("TOKEN_COOKIE_NAME must not be empty")
	}

	switch c.Auth.PasswordHasher {
	case HasherBcrypt, HasherArgon2id:
	default:
		return fmt.Errorf("unknown PASSWORD_HASHER %q", c.Auth.PasswordHasher)
	}

	switch c.Auth.RevocationBackend {
	case RevocationMariaDB, RevocationRedis, RevocationMemory:
	default:
		return fmt.Errorf("unknown REVOCATION_BACKEND %q", c.Auth.RevocationBackend)
	}

	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Env)
	return env == "development" || env == "dev"
}

// NeedsRedis reports whether any configured component talks to Redis.
func (c *Config) NeedsRedis() bool {
	return c.Auth.RevocationBackend == RevocationRedis
}

// --- Helper functions for reading environment variables ---

// getEnv reads a string env var or returns the default.
func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// getEnvInt reads an integer env var or returns the default.
func getEnvInt(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvList reads a comma-separated env var or returns the default.
func getEnvList(key string, defaultVal []string) []string {
	val, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(val) == "" {
		return defaultVal
	}
	var out []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// getEnvDuration reads a duration env var (e.g., "24h") or returns the default.
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
