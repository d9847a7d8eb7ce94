package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STRIPE_API_KEY", "")

	cfg := Load()

	assert.Equal(t, "paysync", cfg.AppName)
	assert.Equal(t, "stripe", cfg.Provider.Name)
	assert.Equal(t, 100, cfg.Provider.PageSize)
	assert.Equal(t, 24*time.Hour, cfg.Reconcile.Lookback)
	assert.Nil(t, cfg.Reconcile.WindowStart)
	assert.Nil(t, cfg.Reconcile.WindowEnd)
	assert.False(t, cfg.HasProviderCredential())
}

func TestLoadProviderCredential(t *testing.T) {
	t.Setenv("STRIPE_API_KEY", " sk_test_abc ")

	cfg := Load()
	assert.True(t, cfg.HasProviderCredential())
	assert.Equal(t, "sk_test_abc", cfg.Provider.APIKey)
}

func TestLoadWindowOverrides(t *testing.T) {
	t.Setenv("RECONCILE_WINDOW_START", "2026-08-29T00:00:00Z")
	t.Setenv("RECONCILE_WINDOW_END", "2026-08-30T00:00:00Z")

	cfg := Load()
	require.NotNil(t, cfg.Reconcile.WindowStart)
	require.NotNil(t, cfg.Reconcile.WindowEnd)
	assert.Equal(t, time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC), *cfg.Reconcile.WindowStart)
	assert.Equal(t, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), *cfg.Reconcile.WindowEnd)
}

func TestLoadIgnoresMalformedOverrides(t *testing.T) {
	t.Setenv("RECONCILE_WINDOW_START", "yesterday")
	t.Setenv("PROVIDER_PAGE_SIZE", "lots")
	t.Setenv("RECONCILE_LOOKBACK", "-1h")

	cfg := Load()
	assert.Nil(t, cfg.Reconcile.WindowStart)
	assert.Equal(t, 100, cfg.Provider.PageSize)
	assert.Equal(t, 24*time.Hour, cfg.Reconcile.Lookback)
}
