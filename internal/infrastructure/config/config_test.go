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
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.Auction.BiddingWindow)
	assert.Equal(t, time.Minute, cfg.Auction.SweepInterval)
	assert.Equal(t, "USD", cfg.Auction.Currency)
	assert.Equal(t, 10*time.Minute, cfg.Auction.VendorCacheTTL)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
auction:
  bidding_window: 2m
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 2*time.Minute, cfg.Auction.BiddingWindow)
	// Untouched keys keep their defaults.
	assert.Equal(t, time.Minute, cfg.Auction.SweepInterval)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o644))

	t.Setenv("WPE_SERVER__PORT", "7070")
	t.Setenv("WPE_AUCTION__CURRENCY", "EUR")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "EUR", cfg.Auction.Currency)
}

func TestLoad_EnvOverridesSnakeCaseKeys(t *testing.T) {
	// Single underscores belong to the key, double underscores nest.
	t.Setenv("WPE_AUCTION__BIDDING_WINDOW", "90s")
	t.Setenv("WPE_AUCTION__SWEEP_INTERVAL", "30s")
	t.Setenv("WPE_DATABASE__MAX_CONNS", "50")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 90*time.Second, cfg.Auction.BiddingWindow)
	assert.Equal(t, 30*time.Second, cfg.Auction.SweepInterval)
	assert.Equal(t, int32(50), cfg.Database.MaxConns)
}

func TestLoad_RejectsInvalidWindows(t *testing.T) {
	t.Setenv("WPE_AUCTION__BIDDING_WINDOW", "0s")
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
