package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config for YAML unmarshalling. Zero values mean "not
// set in the file" and leave the current value untouched.
type fileConfig struct {
	Env      string `yaml:"env"`
	Port     int    `yaml:"port"`
	BaseURL  string `yaml:"base_url"`
	LogLevel string `yaml:"log_level"`

	TrustedProxies []string `yaml:"trusted_proxies"`

	Database struct {
		Host            string `yaml:"host"`
		User            string `yaml:"user"`
		Password        string `yaml:"password"`
		Name            string `yaml:"name"`
		URL             string `yaml:"url"`
		MaxOpenConns    int    `yaml:"max_open_conns"`
		MaxIdleConns    int    `yaml:"max_idle_conns"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime"`
	} `yaml:"database"`

	Redis struct {
		URL string `yaml:"url"`
	} `yaml:"redis"`

	Auth struct {
		SecretKey         string `yaml:"secret_key"`
		TokenTTL          string `yaml:"token_ttl"`
		CookieName        string `yaml:"cookie_name"`
		PasswordHasher    string `yaml:"password_hasher"`
		BcryptCost        int    `yaml:"bcrypt_cost"`
		RevocationBackend string `yaml:"revocation_backend"`
	} `yaml:"auth"`
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding
// environment variable values. Unset variables expand to an empty string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envVarPattern.FindStringSubmatch(match)[1])
	})
}

// applyFile reads the YAML file at path and overlays every field it sets.
func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), &fc); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	setString(&cfg.Env, fc.Env)
	setInt(&cfg.Port, fc.Port)
	setString(&cfg.BaseURL, fc.BaseURL)
	setString(&cfg.LogLevel, fc.LogLevel)
	if len(fc.TrustedProxies) > 0 {
		cfg.TrustedProxies = fc.TrustedProxies
	}

	setString(&cfg.Database.Host, fc.Database.Host)
	setString(&cfg.Database.User, fc.Database.User)
	setString(&cfg.Database.Password, fc.Database.Password)
	setString(&cfg.Database.Name, fc.Database.Name)
	setString(&cfg.Database.dsnOverride, fc.Database.URL)
	setInt(&cfg.Database.MaxOpenConns, fc.Database.MaxOpenConns)
	setInt(&cfg.Database.MaxIdleConns, fc.Database.MaxIdleConns)
	if err := setDuration(&cfg.Database.ConnMaxLifetime, fc.Database.ConnMaxLifetime); err != nil {
		return fmt.Errorf("database.conn_max_lifetime: %w", err)
	}

	setString(&cfg.Redis.URL, fc.Redis.URL)

	setString(&cfg.Auth.SecretKey, fc.Auth.SecretKey)
	if err := setDuration(&cfg.Auth.TokenTTL, fc.Auth.TokenTTL); err != nil {
		return fmt.Errorf("auth.token_ttl: %w", err)
	}
	setString(&cfg.Auth.CookieName, fc.Auth.CookieName)
	setString(&cfg.Auth.PasswordHasher, fc.Auth.PasswordHasher)
	setInt(&cfg.Auth.BcryptCost, fc.Auth.BcryptCost)
	setString(&cfg.Auth.RevocationBackend, fc.Auth.RevocationBackend)

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}
