package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:8545", cfg.RPCURL)
	assert.Equal(t, "0x5FbDB2315678afecb367f032d93F642f64180aa3", cfg.ContractAddress)
	assert.Equal(t, int64(31337), cfg.ChainID)
	assert.Equal(t, 5*time.Second, cfg.RefreshInterval)
	assert.Equal(t, 5, cfg.PageSize)
	assert.Equal(t, "TST", cfg.TokenSymbol)
	assert.False(t, cfg.RelayerMode)
	assert.Equal(t, ":8080", cfg.ListenAddr)
}

func TestLoadFromYAMLFile(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
ledger:
  rpc_url: http://10.0.0.1:8545
  chain_id: 11155111
engine:
  refresh_interval_seconds: 30
  page_size: 10
  token_symbol: ITT
  relayer_mode: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.1:8545", cfg.RPCURL)
	assert.Equal(t, int64(11155111), cfg.ChainID)
	assert.Equal(t, 30*time.Second, cfg.RefreshInterval)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, "ITT", cfg.TokenSymbol)
	assert.True(t, cfg.RelayerMode)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
ledger:
  rpc_url: http://10.0.0.1:8545
engine:
  page_size: 10
`)
	t.Setenv("LEDGER_RPC_URL", "http://env-wins:8545")
	t.Setenv("PAGE_SIZE", "25")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env-wins:8545", cfg.RPCURL)
	assert.Equal(t, 25, cfg.PageSize)
}

func TestLoadJSONFile(t *testing.T) {
	path := writeConfig(t, "config.json", `{"engine":{"token_symbol":"JTT"}}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "JTT", cfg.TokenSymbol)
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	path := writeConfig(t, "config.toml", "x = 1")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateRejectsBadContract(t *testing.T) {
	t.Setenv("LEDGER_CONTRACT_ADDRESS", "not-an-address")
	_, err := Load("")
	assert.Error(t, err)
}

func TestValidateRejectsSubSecondInterval(t *testing.T) {
	cfg := &Config{
		RPCURL:          "http://127.0.0.1:8545",
		ContractAddress: "0x5FbDB2315678afecb367f032d93F642f64180aa3",
		ChainID:         31337,
		RefreshInterval: 100 * time.Millisecond,
		PageSize:        5,
	}
	assert.Error(t, cfg.Validate())
}
