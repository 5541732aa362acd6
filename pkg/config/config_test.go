package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slotSettings struct {
	Backend string        `env:"TEST_SLOT_BACKEND" envDefault:"redis"`
	TTL     time.Duration `env:"TEST_SLOT_TTL" envDefault:"720h"`
	Keys    []string      `env:"TEST_SLOT_KEYS" envDefault:"crystal-cart,crystal-wishlist" envSeparator:","`
	Events  bool          `env:"TEST_EVENTS_ENABLED" envDefault:"false"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg slotSettings
	require.NoError(t, Load(&cfg))

	assert.Equal(t, "redis", cfg.Backend)
	assert.Equal(t, 720*time.Hour, cfg.TTL)
	assert.Equal(t, []string{"crystal-cart", "crystal-wishlist"}, cfg.Keys)
	assert.False(t, cfg.Events)
}

func TestLoad_ProcessEnvironment(t *testing.T) {
	t.Setenv("TEST_SLOT_BACKEND", "memory")
	t.Setenv("TEST_SLOT_TTL", "90m")
	t.Setenv("TEST_EVENTS_ENABLED", "true")

	var cfg slotSettings
	require.NoError(t, Load(&cfg))

	assert.Equal(t, "memory", cfg.Backend)
	assert.Equal(t, 90*time.Minute, cfg.TTL)
	assert.True(t, cfg.Events)
}

func TestLoadFrom_IgnoresProcessEnvironment(t *testing.T) {
	t.Setenv("TEST_SLOT_BACKEND", "memory")

	var cfg slotSettings
	require.NoError(t, LoadFrom(&cfg, map[string]string{"TEST_SLOT_KEYS": "a,b,c"}))

	assert.Equal(t, "redis", cfg.Backend)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Keys)
}

func TestLoad_Errors(t *testing.T) {
	type required struct {
		URL string `env:"TEST_CATALOG_URL,required"`
	}

	var req required
	err := LoadFrom(&req, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")

	var cfg slotSettings
	err = LoadFrom(&cfg, map[string]string{"TEST_SLOT_TTL": "soon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}
