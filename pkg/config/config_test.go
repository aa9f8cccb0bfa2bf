package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "eventhand", cfg.App.Name)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, []string{"CONFIRMED"}, cfg.Matching.BlockingStatuses)
	assert.Equal(t, 10*time.Minute, cfg.Matching.RatingCacheTTL)
	assert.Equal(t, 3, cfg.Booking.StepMaxRetries)
	assert.Equal(t, 10, cfg.Booking.DefaultPageSize)
	assert.False(t, cfg.Kafka.Enabled)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SERVER_PORT", "8088")
	t.Setenv("MATCHING_BLOCKING_STATUSES", "confirmed, pending")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("BOOKING_SWEEP_INTERVAL", "2m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8088, cfg.Server.Port)
	assert.Equal(t, []string{"CONFIRMED", "PENDING"}, cfg.Matching.BlockingStatuses)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 2*time.Minute, cfg.Booking.SweepInterval)
}

func TestLoadWithPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("APP_NAME=eventhand-test\nDATABASE_DBNAME=eventhand_test\n"), 0o600))

	cfg, err := LoadWithPath(path)
	require.NoError(t, err)
	assert.Equal(t, "eventhand-test", cfg.App.Name)
	assert.Equal(t, "eventhand_test", cfg.Database.DBName)
}

func TestLoadWithPath_MissingFile(t *testing.T) {
	_, err := LoadWithPath(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App:      AppConfig{Name: "eventhand", Environment: "development"},
			Server:   ServerConfig{Port: 3000},
			Database: DatabaseConfig{Host: "localhost", DBName: "eventhand"},
			JWT:      JWTConfig{Secret: "secret"},
			Booking:  BookingConfig{DefaultPageSize: 10, MaxPageSize: 100},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing app name", func(c *Config) { c.App.Name = "" }, true},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, true},
		{"missing db host", func(c *Config) { c.Database.Host = "" }, true},
		{"missing jwt secret", func(c *Config) { c.JWT.Secret = "" }, true},
		{"default secret in production", func(c *Config) {
			c.App.Environment = "production"
			c.JWT.Secret = defaultJWTSecret
		}, true},
		{"kafka without brokers", func(c *Config) { c.Kafka.Enabled = true }, true},
		{"page size over max", func(c *Config) { c.Booking.DefaultPageSize = 500 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
