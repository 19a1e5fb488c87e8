package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Environment:         EnvDevelopment,
		ServerPort:          "8080",
		RequestTimeout:      30 * time.Second,
		DatabaseURL:         "postgres://localhost:5432/enrollment",
		IdentityBaseURL:     "https://identity.example.com",
		IdentityAPIKey:      "key",
		IdentityTokenSecret: "secret",
		MaxUploadSize:       10 * 1024 * 1024,
		ProfileTTL:          10 * time.Minute,
	}
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidateRequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing port", func(c *Config) { c.ServerPort = "" }},
		{"missing database url", func(c *Config) { c.DatabaseURL = "" }},
		{"missing identity base url", func(c *Config) { c.IdentityBaseURL = "" }},
		{"missing identity api key", func(c *Config) { c.IdentityAPIKey = "" }},
		{"missing token secret", func(c *Config) { c.IdentityTokenSecret = "" }},
		{"zero request timeout", func(c *Config) { c.RequestTimeout = 0 }},
		{"zero upload size", func(c *Config) { c.MaxUploadSize = 0 }},
		{"zero profile ttl", func(c *Config) { c.ProfileTTL = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateRejectsSeedingInProduction(t *testing.T) {
	cfg := validConfig()
	cfg.Environment = EnvProduction
	cfg.SeedOnStart = true
	assert.Error(t, cfg.Validate())

	cfg.SeedOnStart = false
	assert.NoError(t, cfg.Validate())
	assert.True(t, cfg.IsProduction())
}

func TestSplitCSV(t *testing.T) {
	assert.Nil(t, splitCSV("  "))
	assert.Equal(t, []string{"a", "b"}, splitCSV("a, b,"))
}
