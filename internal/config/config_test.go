package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("build", pflag.ContinueOnError)
	flags.String("in", "", "")
	flags.String("out", "./data/graphs", "")
	flags.StringSlice("catalog", nil, "")
	flags.Bool("debug", false, "")
	flags.String("log-level", "info", "")
	flags.Int("concurrency", 4, "")
	return flags
}

func TestLoadBuildFlagsAndDefaults(t *testing.T) {
	flags := buildFlags()
	require.NoError(t, flags.Parse([]string{"--in", "tx.json", "--catalog", "a.yaml,b.yaml", "--debug"}))

	cfg, err := LoadBuild(writeConfig(t, "out: ./graphs\n"), flags)
	require.NoError(t, err)
	assert.Equal(t, "tx.json", cfg.In)
	assert.Equal(t, []string{"a.yaml", "b.yaml"}, cfg.Catalogs)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.False(t, cfg.KeepZeroAddress)
	assert.Equal(t, "./graphs", cfg.Out)
}

func TestLoadBuildFromConfigFile(t *testing.T) {
	path := writeConfig(t, `
in: ./data/decoded
catalog:
  - events.yaml
  - " "
pg-dsn: postgres://localhost/txflow
keep-zero-address: true
log-level: warn
`)

	cfg, err := LoadBuild(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "./data/decoded", cfg.In)
	assert.Equal(t, []string{"events.yaml"}, cfg.Catalogs)
	assert.Equal(t, "postgres://localhost/txflow", cfg.PGDSN)
	assert.True(t, cfg.KeepZeroAddress)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "./data/graphs", cfg.Out)
}

func TestLoadDecodeEnv(t *testing.T) {
	t.Setenv("TXFLOW_RPC", "http://localhost:8545")
	t.Setenv("TXFLOW_MAX_RETRIES", "2")

	cfg, err := LoadDecode(writeConfig(t, "tx: \"0xabc\"\nabi: x.json,y.json\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8545", cfg.RPCURL)
	assert.Equal(t, "0xabc", cfg.TxHash)
	assert.Equal(t, []string{"x.json", "y.json"}, cfg.ABIFiles)
	assert.Equal(t, 2, cfg.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryBackoff)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "./data/decoded", cfg.Out)
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := LoadBuild(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
