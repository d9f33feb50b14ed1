package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/taskhive_test?sslmode=disable")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Cache.Provider)
	assert.Equal(t, 4, cfg.Achievements.MaxConcurrentAggregators)
	assert.Equal(t, 5*time.Minute, cfg.Achievements.ViewCacheTTL)
	assert.Equal(t, "en", cfg.Achievements.DefaultLocale)
	assert.False(t, cfg.IsProduction())
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownCacheProvider(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/taskhive_test?sslmode=disable")
	t.Setenv("CACHE_PROVIDER", "memcached")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRequiresRedisURLForRedisProvider(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/taskhive_test?sslmode=disable")
	t.Setenv("CACHE_PROVIDER", "redis")
	t.Setenv("REDIS_URL", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestIsProduction(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/taskhive_test?sslmode=disable")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}
