package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// ErrFreezeBeforeMerge is returned when the freeze slot is configured before the first slot carrying an execution payload.
var ErrFreezeBeforeMerge = errors.New("freeze slot is before the merge slot")

type Config struct {
	LogConfig     LogConfig     `json:"log_config" yaml:"log_config"`
	DBConfig      DBConfig      `json:"db_config" yaml:"db_config"`
	SyncerConfig  SyncerConfig  `json:"syncer_config" yaml:"syncer_config"`
	MetricsConfig MetricsConfig `json:"metrics_config" yaml:"metrics_config"`
	CacheConfig   CacheConfig   `json:"cache_config" yaml:"cache_config"`
}

func (c *Config) Validate() {
	c.LogConfig.Validate()
	c.DBConfig.Validate()
	c.SyncerConfig.Validate()
}

type SyncerConfig struct {
	BeaconRPCAddrs []string `json:"beacon_rpc_addrs" yaml:"beacon_rpc_addrs"` // BeaconRPCAddrs is a list of beacon chain RPC address
	RPCAddrs       []string `json:"rpc_addrs" yaml:"rpc_addrs"`               // RPCAddrs is a list of execution chain JSON-RPC address

	StartSlot  *uint64 `json:"start_slot" yaml:"start_slot"`   // StartSlot overrides the first slot synced, the store height is used when nil
	StartBlock *uint64 `json:"start_block" yaml:"start_block"` // StartBlock overrides the first execution block synced
	FreezeAt   *uint64 `json:"freeze_at" yaml:"freeze_at"`     // FreezeAt switches to bounded mode, syncing stops once this slot is reached

	MergeSlot  uint64 `json:"merge_slot" yaml:"merge_slot"` // MergeSlot is the first slot with an execution payload
	PresetBase string `json:"preset_base" yaml:"preset_base"`
	ChainName  string `json:"chain_name" yaml:"chain_name"`

	SlotPollIntervalInSeconds         uint64 `json:"slot_poll_interval_in_seconds" yaml:"slot_poll_interval_in_seconds"`
	BlockPollIntervalInSeconds        uint64 `json:"block_poll_interval_in_seconds" yaml:"block_poll_interval_in_seconds"`
	ValidatorRefreshIntervalInSeconds uint64 `json:"validator_refresh_interval_in_seconds" yaml:"validator_refresh_interval_in_seconds"`
	RPCTimeoutInSeconds               uint64 `json:"rpc_timeout_in_seconds" yaml:"rpc_timeout_in_seconds"`

	ValidatorBatchSize     int  `json:"validator_batch_size" yaml:"validator_batch_size"`
	DepositLinkConcurrency int  `json:"deposit_link_concurrency" yaml:"deposit_link_concurrency"`
	RecordValidatorCount   bool `json:"record_validator_count" yaml:"record_validator_count"` // RecordValidatorCount stores the validator set size with every slot
}

func (s *SyncerConfig) Validate() {
	if len(s.BeaconRPCAddrs) == 0 {
		panic("beacon rpc address should not be empty")
	}
	if len(s.RPCAddrs) == 0 {
		panic("execution rpc address should not be empty")
	}
	if s.ValidatorBatchSize < 0 {
		panic("validator_batch_size should not be negative")
	}
	if s.DepositLinkConcurrency < 0 {
		panic("deposit_link_concurrency should not be negative")
	}
}

func (s *SyncerConfig) GetMergeSlot() uint64 {
	if s.MergeSlot != 0 {
		return s.MergeSlot
	}
	return DefaultMergeSlot
}

func (s *SyncerConfig) GetPresetBase() string {
	if s.PresetBase != "" {
		return s.PresetBase
	}
	return DefaultPresetBase
}

func (s *SyncerConfig) GetChainName() string {
	if s.ChainName != "" {
		return s.ChainName
	}
	return DefaultChainName
}

func (s *SyncerConfig) GetSlotPollInterval() time.Duration {
	return secondsOrDefault(s.SlotPollIntervalInSeconds, DefaultSlotPollIntervalInSeconds)
}

func (s *SyncerConfig) GetBlockPollInterval() time.Duration {
	return secondsOrDefault(s.BlockPollIntervalInSeconds, DefaultBlockPollIntervalInSeconds)
}

func (s *SyncerConfig) GetValidatorRefreshInterval() time.Duration {
	return secondsOrDefault(s.ValidatorRefreshIntervalInSeconds, DefaultValidatorRefreshIntervalInSeconds)
}

func (s *SyncerConfig) GetRPCTimeout() time.Duration {
	return secondsOrDefault(s.RPCTimeoutInSeconds, DefaultRPCTimeoutInSeconds)
}

func (s *SyncerConfig) GetValidatorBatchSize() int {
	if s.ValidatorBatchSize != 0 {
		return s.ValidatorBatchSize
	}
	return DefaultValidatorBatchSize
}

func (s *SyncerConfig) GetDepositLinkConcurrency() int {
	if s.DepositLinkConcurrency != 0 {
		return s.DepositLinkConcurrency
	}
	return DefaultDepositLinkConcurrency
}

// CheckFreezeAt rejects a freeze slot that is before the merge, there would be no execution block to stop at.
func (s *SyncerConfig) CheckFreezeAt(freezeAt uint64) error {
	if freezeAt < s.GetMergeSlot() {
		return errors.Wrapf(ErrFreezeBeforeMerge, "freeze_at=%d, merge_slot=%d", freezeAt, s.GetMergeSlot())
	}
	return nil
}

func secondsOrDefault(seconds, def uint64) time.Duration {
	if seconds == 0 {
		seconds = def
	}
	return time.Duration(seconds) * time.Second
}

type MetricsConfig struct {
	Enable      bool   `json:"enable" yaml:"enable"`
	HttpAddress string `json:"http_address" yaml:"http_address"`
}

type CacheConfig struct {
	CacheSize uint64 `json:"cache_size" yaml:"cache_size"`
}

func (c *CacheConfig) GetCacheSize() uint64 {
	if c.CacheSize != 0 {
		return c.CacheSize
	}
	return DefaultCacheSize
}

type DBConfig struct {
	Dialect       string `json:"dialect" yaml:"dialect"`
	KeyType       string `json:"key_type" yaml:"key_type"`
	AWSRegion     string `json:"aws_region" yaml:"aws_region"`
	AWSSecretName string `json:"aws_secret_name" yaml:"aws_secret_name"`
	Username      string `json:"username" yaml:"username"`
	Password      string `json:"password" yaml:"password"`
	Url           string `json:"url" yaml:"url"`
	MaxIdleConns  int    `json:"max_idle_conns" yaml:"max_idle_conns"`
	MaxOpenConns  int    `json:"max_open_conns" yaml:"max_open_conns"`
}

func (cfg *DBConfig) Validate() {
	if cfg.Dialect != DBDialectMysql && cfg.Dialect != DBDialectPostgres && cfg.Dialect != DBDialectSqlite3 {
		panic(fmt.Sprintf("only %s, %s and %s supported", DBDialectMysql, DBDialectPostgres, DBDialectSqlite3))
	}
	if cfg.Dialect != DBDialectSqlite3 && (cfg.Username == "" || cfg.Url == "") {
		panic("db config is not correct, missing username and/or url")
	}
	if cfg.MaxIdleConns == 0 || cfg.MaxOpenConns == 0 {
		panic("db connections is not correct")
	}
}

type LogConfig struct {
	Level                        string `json:"level" yaml:"level"`
	Filename                     string `json:"filename" yaml:"filename"`
	MaxFileSizeInMB              int    `json:"max_file_size_in_mb" yaml:"max_file_size_in_mb"`
	MaxBackupsOfLogFiles         int    `json:"max_backups_of_log_files" yaml:"max_backups_of_log_files"`
	MaxAgeToRetainLogFilesInDays int    `json:"max_age_to_retain_log_files_in_days" yaml:"max_age_to_retain_log_files_in_days"`
	UseConsoleLogger             bool   `json:"use_console_logger" yaml:"use_console_logger"`
	UseFileLogger                bool   `json:"use_file_logger" yaml:"use_file_logger"`
	Compress                     bool   `json:"compress" yaml:"compress"`
}

func (cfg *LogConfig) Validate() {
	if cfg.UseFileLogger {
		if cfg.Filename == "" {
			panic("filename should not be empty if use file logger")
		}
		if cfg.MaxFileSizeInMB <= 0 {
			panic("max_file_size_in_mb should be larger than 0 if use file logger")
		}
		if cfg.MaxBackupsOfLogFiles <= 0 {
			panic("max_backups_off_log_files should be larger than 0 if use file logger")
		}
	}
}

func ParseConfigFromJson(content string) *Config {
	var config Config
	if err := json.Unmarshal([]byte(content), &config); err != nil {
		panic(err)
	}
	return &config
}

// ParseConfigFromFile reads a json config, or a yaml one when the file has a .yaml/.yml extension.
func ParseConfigFromFile(filePath string) *Config {
	bz, err := os.ReadFile(filePath)
	if err != nil {
		panic(err)
	}

	var config Config
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(bz, &config)
	default:
		err = json.Unmarshal(bz, &config)
	}
	if err != nil {
		panic(err)
	}
	return &config
}
