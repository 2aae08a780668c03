package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAdminKey = "0123456789abcdef-admin"

func validConfig() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Data:   DataConfig{Path: "/var/lib/nexo"},
		Server: ServerConfig{
			Port:      "8080",
			PublicURL: "https://nexo.example.com",
		},
		Auth: AuthConfig{
			AdminKey:        testAdminKey,
			SessionDuration: time.Hour,
			InviteTTL:       7 * 24 * time.Hour,
		},
		RateLimit: RateLimitConfig{IntakePerMinute: 10, IntakeBurst: 5, LoginPerMinute: 20, LoginBurst: 10},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"bad environment", func(c *Config) { c.App.Environment = "test" }, "invalid environment"},
		{"case sensitive environment", func(c *Config) { c.App.Environment = "PRODUCTION" }, "invalid environment"},
		{"bad log level", func(c *Config) { c.Logger.Level = "verbose" }, "invalid log level"},
		{"missing data path", func(c *Config) { c.Data.Path = "" }, "data path"},
		{"missing admin key", func(c *Config) { c.Auth.AdminKey = "" }, "ADMIN_KEY"},
		{"short admin key", func(c *Config) { c.Auth.AdminKey = "short" }, "ADMIN_KEY"},
		{"relative public url", func(c *Config) { c.Server.PublicURL = "/register" }, "public URL"},
		{"zero invite ttl", func(c *Config) { c.Auth.InviteTTL = 0 }, "INVITE_TTL"},
		{"zero session", func(c *Config) { c.Auth.SessionDuration = 0 }, "SESSION_DURATION"},
		{"zero intake rate", func(c *Config) { c.RateLimit.IntakePerMinute = 0 }, "rate limit"},
		{"zero login burst", func(c *Config) { c.RateLimit.LoginBurst = 0 }, "login rate limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ADMIN_KEY", testAdminKey)
	t.Setenv("DATA_PATH", t.TempDir())

	cfg, err := Load([]string{"-env-file", filepath.Join(t.TempDir(), "missing.env")})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "http://localhost:3000", cfg.Server.PublicURL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.InviteTTL)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionDuration)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, 10, cfg.RateLimit.IntakePerMinute)
	assert.Equal(t, "Nexo", cfg.App.GroupName)
}

func TestParse_OfflineNeedsNoAdminKey(t *testing.T) {
	t.Setenv("ADMIN_KEY", "")
	t.Setenv("DATA_PATH", t.TempDir())
	t.Setenv("INVITE_TTL", "48h")

	cfg, err := Parse([]string{"-env-file", filepath.Join(t.TempDir(), "missing.env"), "--public-url", "https://cli.example.com/"})
	require.NoError(t, err)

	require.NoError(t, cfg.ValidateOffline())
	assert.Error(t, cfg.Validate())
	assert.Equal(t, 48*time.Hour, cfg.Auth.InviteTTL)
	assert.Equal(t, "https://cli.example.com", cfg.Server.PublicURL)
}

func TestValidateOffline_Rejections(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.InviteTTL = 0
	require.ErrorContains(t, cfg.ValidateOffline(), "INVITE_TTL")

	cfg = validConfig()
	cfg.Auth.AdminKey = ""
	cfg.RateLimit = RateLimitConfig{}
	assert.NoError(t, cfg.ValidateOffline())
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "# comment\nSERVER_PORT=9000\nLOG_LEVEL=\"debug\"\nSERVER_PUBLIC_URL=https://from-file.example.com/\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	t.Setenv("ADMIN_KEY", testAdminKey)
	t.Setenv("DATA_PATH", dir)
	t.Setenv("SERVER_PORT", "9100") // env beats .env
	t.Cleanup(func() {
		_ = os.Unsetenv("LOG_LEVEL")
		_ = os.Unsetenv("SERVER_PUBLIC_URL")
	})

	cfg, err := Load([]string{"-env-file", envFile, "-log-level", "warn"})
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logger.Level)
	assert.Equal(t, "https://from-file.example.com", cfg.Server.PublicURL)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("ADMIN_KEY", testAdminKey)
	t.Setenv("DATA_PATH", t.TempDir())
	t.Setenv("INVITE_TTL", "a week")

	_, err := Load([]string{"-env-file", filepath.Join(t.TempDir(), "missing.env")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
}

func TestExpandPath(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/nexo", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(homeDir, "nexo"), got)

	got, err = expandPath("", "/default")
	require.NoError(t, err)
	assert.Equal(t, "/default", got)

	got, err = expandPath("/a/b/../c", "")
	require.NoError(t, err)
	assert.Equal(t, "/a/c", got)
}

func TestDataConfig_DatabasePath(t *testing.T) {
	assert.Equal(t, "/var/lib/nexo/nexo.db", DataConfig{Path: "/var/lib/nexo"}.DatabasePath())
}
