package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "ENVIRONMENT", "DATABASE_URL", "DATABASE_MAX_CONNS", "REDIS_URL",
		"JWT_SECRET", "JWT_TTL", "BCRYPT_COST", "ALLOWED_ORIGINS", "RATE_LIMIT_RPM",
		"STATS_REFRESH_INTERVAL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, time.Minute, cfg.StatsRefreshInterval)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("JWT_TTL", "90m")
	t.Setenv("ALLOWED_ORIGINS", " https://desk.college.edu , ,https://admin.college.edu")
	t.Setenv("RATE_LIMIT_RPM", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 90*time.Minute, cfg.JWTTTL)
	assert.Equal(t, []string{"https://desk.college.edu", "https://admin.college.edu"}, cfg.AllowedOrigins)
	assert.Equal(t, 120, cfg.RateLimitRPM, "unparseable values fall back to the default")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"port out of range", map[string]string{"PORT": "70000"}},
		{"bcrypt cost too low", map[string]string{"BCRYPT_COST": "2"}},
		{"negative ttl", map[string]string{"JWT_TTL": "-1h"}},
		{"zero stats interval", map[string]string{"STATS_REFRESH_INTERVAL": "0s"}},
		{"negative stats interval", map[string]string{"STATS_REFRESH_INTERVAL": "-5m"}},
		{"production without database", map[string]string{"ENVIRONMENT": "production", "JWT_SECRET": "s3cret"}},
		{"production with default secret", map[string]string{"ENVIRONMENT": "production", "DATABASE_URL": "postgres://db/complaints"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
