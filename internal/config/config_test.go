package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gemini-3-flash-preview", cfg.AI.Model)
	assert.InDelta(t, 0.1, cfg.AI.Temperature, 1e-9)
	assert.Equal(t, 1, cfg.Enrichment.MaxAttempts)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AI_MODEL", "gemini-2.5-pro")
	t.Setenv("AI_TEMPERATURE", "0.7")
	t.Setenv("ENRICHMENT_MAX_ATTEMPTS", "3")
	t.Setenv("CACHE_CATEGORY_TTL_SECONDS", "10")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-pro", cfg.AI.Model)
	assert.InDelta(t, 0.7, cfg.AI.Temperature, 1e-9)
	assert.Equal(t, 3, cfg.Enrichment.MaxAttempts)
	assert.Equal(t, 10*time.Second, cfg.Cache.CategoryTTL())
}

func TestLoadRejectsZeroAttempts(t *testing.T) {
	t.Setenv("ENRICHMENT_MAX_ATTEMPTS", "0")
	_, err := Load()
	assert.Error(t, err)
}
