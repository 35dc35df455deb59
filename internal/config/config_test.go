package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:             "development",
		DBSSLMode:       "disable",
		JWTSecret:       "secure-secret-at-least-32-chars-long",
		DBPassword:      "secure-password",
		Port:            "5000",
		SessionTTLHours: 24,
		BcryptCost:      10,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"Development defaults", func(c *Config) {}, false},
		{"Missing port", func(c *Config) { c.Port = "" }, true},
		{"Missing secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"Zero session TTL", func(c *Config) { c.SessionTTLHours = 0 }, true},
		{"Bcrypt cost too low", func(c *Config) { c.BcryptCost = 1 }, true},
		{"Bcrypt cost too high", func(c *Config) { c.BcryptCost = 40 }, true},
		{"Production with disable SSL mode", func(c *Config) { c.Env = "production" }, true},
		{"Production with require SSL mode", func(c *Config) { c.Env = "production"; c.DBSSLMode = "require" }, false},
		{"Prod with default secret", func(c *Config) {
			c.Env = "prod"
			c.DBSSLMode = "verify-full"
			c.JWTSecret = defaultJWTSecret
		}, true},
		{"Production with weak DB password", func(c *Config) {
			c.Env = "production"
			c.DBSSLMode = "require"
			c.DBPassword = "password"
		}, true},
		{"Production with cheap bcrypt", func(c *Config) {
			c.Env = "production"
			c.DBSSLMode = "require"
			c.BcryptCost = 4
		}, true},
		{"Test with short secret", func(c *Config) { c.Env = "test"; c.JWTSecret = "short" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_SessionTTL(t *testing.T) {
	c := validConfig()
	c.SessionTTLHours = 3
	assert.Equal(t, 3*time.Hour, c.SessionTTL())
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	defer viper.Reset()
	t.Setenv("APP_ENV", "test")
	t.Setenv("PORT", "9999")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("SESSION_TTL_HOURS", "12")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9999", c.Port)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, 12, c.SessionTTLHours)
	assert.False(t, c.IsProduction())
}

func TestLoadConfig_MissingProfileFile(t *testing.T) {
	defer viper.Reset()
	t.Setenv("APP_ENV", "staging-that-does-not-exist")

	_, err := LoadConfig()
	assert.Error(t, err)
	_ = os.Unsetenv("APP_ENV")
}
