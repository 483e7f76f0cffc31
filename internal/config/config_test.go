package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 30, cfg.Postgres.MaxOpen)
	assert.Equal(t, "cid-visitor-photos", cfg.Storage.BucketPhotos)
	assert.Equal(t, time.Hour, cfg.Security.JWTAccessTTL)
	assert.Equal(t, 720*time.Hour, cfg.Security.JWTRefreshTTL)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CIDVISITOR_ENVIRONMENT", "production")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
}
