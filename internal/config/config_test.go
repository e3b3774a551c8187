package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("ENV", "")
	t.Setenv("PAGE_SIZE", "")
	t.Setenv("JWT_TTL", "")
	t.Setenv("MEDIA_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, 6, cfg.PageSize)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "/media", cfg.MediaURL)
	assert.True(t, cfg.CSRFEnabled)
	assert.False(t, cfg.IsProd())
}

func TestLoad_CORSOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoad_InvalidPageSize(t *testing.T) {
	t.Setenv("PAGE_SIZE", "0")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("PAGE_SIZE", "abc")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoad_ProdRejectsDefaultSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", "a-real-secret")
	t.Setenv("CSRF_ENABLED", "false")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CSRF_ENABLED")
}
