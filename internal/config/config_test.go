package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("NFLDW_DATABASE_URL", "")
	_, err := Load()
	require.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/nfldw")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/nfldw", cfg.DatabaseURL)
	assert.Equal(t, 2, cfg.DBPoolMinConns)
	assert.Equal(t, 10, cfg.DBPoolMaxConns)
	assert.Equal(t, "raw", cfg.RawDir)
	assert.Equal(t, "transformed", cfg.TransformedDir)
	assert.Equal(t, 60, cfg.RequestsPerMinute)
	assert.Equal(t, 7*24*time.Hour, cfg.StagingRetention)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("NFLDW_DATABASE_URL", "postgres://warehouse/nfldw")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_POOL_MAX_CONNS", "25")
	t.Setenv("RAW_DIR", "/var/lib/nfldw/raw")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://warehouse/nfldw", cfg.DatabaseURL)
	assert.Equal(t, 25, cfg.DBPoolMaxConns)
	assert.Equal(t, "/var/lib/nfldw/raw", cfg.RawDir)
	assert.True(t, cfg.IsProduction())
}

func TestCurrentSeason(t *testing.T) {
	assert.Equal(t, 2025, CurrentSeason(time.Date(2025, time.September, 7, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2025, CurrentSeason(time.Date(2026, time.February, 8, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2026, CurrentSeason(time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)))
}
