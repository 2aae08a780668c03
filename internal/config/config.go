// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// minAdminKeyLength is the shortest admin key accepted at startup.
const minAdminKeyLength = 16

// Config holds the application configuration.
// It is built once at process start and passed to whatever needs it.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Data      DataConfig
	Server    ServerConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string `env:"ENV" envDefault:"development"`
	// GroupName appears in notification subjects and signatures.
	GroupName string `env:"GROUP_NAME" envDefault:"Nexo"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// DataConfig holds on-disk storage configuration.
type DataConfig struct {
	// Path holds the sqlite database and the generated auth key (default: ~/Nexo/data).
	Path string `env:"DATA_PATH"`
}

// DatabasePath returns the sqlite database file location.
func (d DataConfig) DatabasePath() string {
	return filepath.Join(d.Path, "nexo.db")
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port         string        `env:"SERVER_PORT" envDefault:"8080"`
	PublicURL    string        `env:"SERVER_PUBLIC_URL" envDefault:"http://localhost:3000"` // Base URL used in registration links
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
	// CORSAllowedOrigins lists origins allowed to call the API from a browser.
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// AdminKey is the shared secret expected in the x-admin-key header.
	AdminKey string `env:"ADMIN_KEY"`
	// Secret is the hex-encoded PASETO v4 key for member sessions.
	// When empty a key is generated and persisted under the data path.
	Secret          string        `env:"AUTH_SECRET"`
	SessionDuration time.Duration `env:"SESSION_DURATION" envDefault:"24h"`
	InviteTTL       time.Duration `env:"INVITE_TTL" envDefault:"168h"`
}

// RateLimitConfig holds limits for unauthenticated endpoints.
type RateLimitConfig struct {
	IntakePerMinute int `env:"INTAKE_RATE_PER_MINUTE" envDefault:"10"`
	IntakeBurst     int `env:"INTAKE_RATE_BURST" envDefault:"5"`
	LoginPerMinute  int `env:"LOGIN_RATE_PER_MINUTE" envDefault:"20"`
	LoginBurst      int `env:"LOGIN_RATE_BURST" envDefault:"10"`
}

// LoadConfig loads configuration from the process arguments and environment.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	cfg, err := Parse(args)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Parse builds the configuration like Load but leaves validation to the
// caller. Offline tools validate with ValidateOffline.
func Parse(args []string) (*Config, error) {
	fs := flag.NewFlagSet("nexo", flag.ContinueOnError)

	envName := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fs.String("data-path", "", "Directory for the database and auth key")
	port := fs.String("port", "", "Server port (default: 8080)")
	publicURL := fs.String("public-url", "", "Public base URL used in registration links")
	adminKey := fs.String("admin-key", "", "Shared admin secret for the x-admin-key header")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Load .env file if it exists (silently ignore if not found).
	if err := loadEnvFile(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	// Flags win over everything else.
	overrides := map[*string]string{
		&cfg.App.Environment:  *envName,
		&cfg.Logger.Level:     *logLevel,
		&cfg.Data.Path:        *dataPath,
		&cfg.Server.Port:      *port,
		&cfg.Server.PublicURL: *publicURL,
		&cfg.Auth.AdminKey:    *adminKey,
	}
	for target, value := range overrides {
		if value != "" {
			*target = value
		}
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}
	cfg.Server.PublicURL = strings.TrimRight(cfg.Server.PublicURL, "/")

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if err := c.ValidateOffline(); err != nil {
		return err
	}

	if c.Server.Port == "" {
		return errors.New("SERVER_PORT cannot be empty")
	}

	if len(c.Auth.AdminKey) < minAdminKeyLength {
		return fmt.Errorf("ADMIN_KEY is required and must be at least %d characters", minAdminKeyLength)
	}

	if c.Auth.SessionDuration <= 0 {
		return errors.New("SESSION_DURATION must be positive")
	}

	if c.RateLimit.IntakePerMinute <= 0 || c.RateLimit.IntakeBurst <= 0 {
		return errors.New("intake rate limit and burst must be positive")
	}

	if c.RateLimit.LoginPerMinute <= 0 || c.RateLimit.LoginBurst <= 0 {
		return errors.New("login rate limit and burst must be positive")
	}

	return nil
}

// ValidateOffline checks the settings needed to work against the database
// without serving HTTP.
func (c *Config) ValidateOffline() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.Path == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	if u, err := url.Parse(c.Server.PublicURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid public URL: %q", c.Server.PublicURL)
	}

	if c.Auth.InviteTTL <= 0 {
		return errors.New("INVITE_TTL must be positive")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, returns defaultPath unchanged.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	expanded, err := expandPath(c.Data.Path, filepath.Join(homeDir, "Nexo", "data"))
	if err != nil {
		return err
	}
	c.Data.Path = expanded
	return nil
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
// Variables already present in the environment are left untouched.
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if _, set := os.LookupEnv(key); !set {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
