package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 500, cfg.Ledger.MaxFills)
	assert.Equal(t, 10, cfg.Ledger.MaxPages)
	assert.Equal(t, 100, cfg.Ledger.PageSize)
	assert.True(t, cfg.Ledger.IncludePrices)
	assert.Equal(t, 10, cfg.Ledger.PriceLookupLimit)
	assert.Equal(t, 10*time.Second, cfg.Clob.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "values.yaml")
	body := `
db_dsn: postgres://file
ledger:
  max_fills: 50
  include_prices: false
  asset_ids: [a, b]
clob:
  timeout: 2s
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	t.Setenv("LEDGER_MAX_PAGES", "3")
	t.Setenv("DATABASE_DSN", "postgres://env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Ledger.MaxFills)
	assert.Equal(t, 3, cfg.Ledger.MaxPages)
	assert.False(t, cfg.Ledger.IncludePrices)
	assert.Equal(t, []string{"a", "b"}, cfg.Ledger.AssetIDs)
	assert.Equal(t, 2*time.Second, cfg.Clob.Timeout)
	assert.Equal(t, "postgres://env", cfg.DB)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Ledger.MaxFills)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "values.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ledger:\n  max_fills: 0\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
