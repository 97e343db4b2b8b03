package config

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsonConfig = `{
  "log_config": {"level": "DEBUG", "use_console_logger": true},
  "db_config": {"dialect": "sqlite3", "url": "file::memory:", "max_idle_conns": 1, "max_open_conns": 1},
  "syncer_config": {
    "beacon_rpc_addrs": ["http://localhost:5052"],
    "rpc_addrs": ["http://localhost:8545"],
    "freeze_at": 30000,
    "slot_poll_interval_in_seconds": 6
  },
  "metrics_config": {"enable": true, "http_address": "127.0.0.1:9191"}
}`

const yamlConfig = `
log_config:
  level: INFO
  use_console_logger: true
db_config:
  dialect: mysql
  username: indexer
  url: tcp(localhost:3306)/kiln?parseTime=true
  max_idle_conns: 4
  max_open_conns: 8
syncer_config:
  beacon_rpc_addrs: ["http://localhost:5052"]
  rpc_addrs: ["http://localhost:8545"]
  start_slot: 10
  chain_name: kiln
  record_validator_count: true
cache_config:
  cache_size: 64
`

func writeConfig(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseJsonConfig(t *testing.T) {
	cfg := ParseConfigFromFile(writeConfig(t, "config.json", jsonConfig))
	cfg.Validate()

	require.NotNil(t, cfg.SyncerConfig.FreezeAt)
	assert.Equal(t, uint64(30000), *cfg.SyncerConfig.FreezeAt)
	assert.Nil(t, cfg.SyncerConfig.StartSlot)
	assert.Equal(t, 6*time.Second, cfg.SyncerConfig.GetSlotPollInterval())
	assert.Equal(t, DefaultBlockPollIntervalInSeconds*time.Second, cfg.SyncerConfig.GetBlockPollInterval())
	assert.Equal(t, uint64(DefaultMergeSlot), cfg.SyncerConfig.GetMergeSlot())
	assert.Equal(t, DefaultPresetBase, cfg.SyncerConfig.GetPresetBase())
	assert.Equal(t, DefaultValidatorBatchSize, cfg.SyncerConfig.GetValidatorBatchSize())
	assert.True(t, cfg.MetricsConfig.Enable)
	assert.Equal(t, uint64(DefaultCacheSize), cfg.CacheConfig.GetCacheSize())
}

func TestParseYamlConfig(t *testing.T) {
	cfg := ParseConfigFromFile(writeConfig(t, "config.yaml", yamlConfig))
	cfg.Validate()

	assert.Equal(t, DBDialectMysql, cfg.DBConfig.Dialect)
	require.NotNil(t, cfg.SyncerConfig.StartSlot)
	assert.Equal(t, uint64(10), *cfg.SyncerConfig.StartSlot)
	assert.Equal(t, "kiln", cfg.SyncerConfig.GetChainName())
	assert.True(t, cfg.SyncerConfig.RecordValidatorCount)
	assert.Equal(t, uint64(64), cfg.CacheConfig.GetCacheSize())
}

func TestValidatePanics(t *testing.T) {
	cfg := ParseConfigFromJson(jsonConfig)
	cfg.DBConfig.Dialect = "oracle"
	assert.Panics(t, cfg.Validate)

	cfg = ParseConfigFromJson(jsonConfig)
	cfg.SyncerConfig.RPCAddrs = nil
	assert.Panics(t, cfg.Validate)

	assert.Panics(t, func() { ParseConfigFromJson("{") })
}

func TestCheckFreezeAt(t *testing.T) {
	cfg := &SyncerConfig{}
	assert.ErrorIs(t, cfg.CheckFreezeAt(DefaultMergeSlot-1), ErrFreezeBeforeMerge)
	assert.NoError(t, cfg.CheckFreezeAt(DefaultMergeSlot))

	cfg.MergeSlot = 30
	assert.NoError(t, cfg.CheckFreezeAt(30))
	assert.ErrorIs(t, cfg.CheckFreezeAt(29), ErrFreezeBeforeMerge)
}

func TestMysqlDSN(t *testing.T) {
	assert.Equal(t, "u:p@tcp(h:3306)/db?clientFoundRows=true", MysqlDSN("u", "p", "tcp(h:3306)/db"))
	assert.Equal(t, "u:p@tcp(h:3306)/db?parseTime=true&clientFoundRows=true", MysqlDSN("u", "p", "tcp(h:3306)/db?parseTime=true"))
	assert.Equal(t, "u:p@tcp(h:3306)/db?clientFoundRows=false", MysqlDSN("u", "p", "tcp(h:3306)/db?clientFoundRows=false"))
}

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN("indexer", "p@ss/w:rd", "h:5432/kiln?sslmode=disable")
	u, err := url.Parse(dsn)
	require.NoError(t, err)
	assert.Equal(t, "postgres", u.Scheme)
	assert.Equal(t, "h:5432", u.Host)
	assert.Equal(t, "/kiln", u.Path)
	assert.Equal(t, "indexer", u.User.Username())
	password, ok := u.User.Password()
	require.True(t, ok)
	assert.Equal(t, "p@ss/w:rd", password)
}
