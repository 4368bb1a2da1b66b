package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("ACCESS_TOKEN_EXPIRY", "")
	t.Setenv("REFRESH_TOKEN_EXPIRY", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("CORS_ORIGIN", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenExpiry)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenExpiry)
	assert.False(t, cfg.ResetDB)
	assert.Equal(t, "http://localhost:3000", cfg.CORSOrigin)
	assert.NotEqual(t, "*", cfg.CORSOrigin)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("ACCESS_TOKEN_EXPIRY", "1d")
	t.Setenv("REFRESH_TOKEN_EXPIRY", "240h")
	t.Setenv("S3_USE_PATH_STYLE", "true")
	t.Setenv("RESET_DB", "true")

	cfg := Load()

	assert.Equal(t, "9000", cfg.ServerPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 24*time.Hour, cfg.AccessTokenExpiry)
	assert.Equal(t, 240*time.Hour, cfg.RefreshTokenExpiry)
	assert.True(t, cfg.S3UsePathStyle)
	assert.True(t, cfg.ResetDB)
}

func TestGetEnvDuration_InvalidFallsBack(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"garbage", "soon"},
		{"zero days", "0d"},
		{"negative", "-5m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SOME_EXPIRY", tt.value)
			assert.Equal(t, time.Minute, getEnvDuration("SOME_EXPIRY", time.Minute))
		})
	}
}
