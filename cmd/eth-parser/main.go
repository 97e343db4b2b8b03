package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/merge-indexer/eth-parser/cache"
	"github.com/merge-indexer/eth-parser/config"
	"github.com/merge-indexer/eth-parser/db"
	"github.com/merge-indexer/eth-parser/external"
	"github.com/merge-indexer/eth-parser/logging"
	"github.com/merge-indexer/eth-parser/metrics"
	"github.com/merge-indexer/eth-parser/syncer"
	"github.com/merge-indexer/eth-parser/util"
)

func initFlags() {
	flag.String(config.FlagConfigPath, "", "config file path")
	flag.String(config.FlagConfigType, "", "config type, local or aws")
	flag.String(config.FlagConfigAwsRegion, "", "aws region")
	flag.String(config.FlagConfigAwsSecretKey, "", "aws secret key")
	flag.String(config.FlagConfigDbPass, "", "eth-parser db password")
	flag.String(config.FlagFromSlot, "", "first slot to sync, resumes from the db when empty")
	flag.String(config.FlagFromBlock, "", "first execution block to sync, resumes from the db when empty")
	flag.String(config.FlagFreezeAt, "", "stop syncing once this slot is reached")

	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
	pflag.Parse()
	err := viper.BindPFlags(pflag.CommandLine)
	if err != nil {
		panic(err)
	}
}

func printUsage() {
	fmt.Print("usage: ./eth-parser --config-type local --config-path configFile [--freeze-at slot]\n")
	fmt.Print("usage: ./eth-parser --config-type aws --aws-region awsRegion --aws-secret-key awsSecretKey [--freeze-at slot]\n")
}

// heightFlag overrides target with the flag value when the flag is set.
func heightFlag(name string, target **uint64) {
	value := viper.GetString(name)
	if value == "" {
		return
	}
	height, err := util.StringToUint64(value)
	if err != nil {
		panic(fmt.Sprintf("invalid --%s %q: %s", name, value, err.Error()))
	}
	*target = &height
}

func main() {
	var (
		cfg                        *config.Config
		configType, configFilePath string
	)
	initFlags()
	configType = viper.GetString(config.FlagConfigType)
	if configType == "" {
		configType = os.Getenv(config.ConfigType)
	}
	if configType == "" {
		configType = config.LocalConfig
	}
	if configType != config.AWSConfig && configType != config.LocalConfig {
		printUsage()
		return
	}
	if configType == config.AWSConfig {
		awsSecretKey := viper.GetString(config.FlagConfigAwsSecretKey)
		if awsSecretKey == "" {
			printUsage()
			return
		}
		awsRegion := viper.GetString(config.FlagConfigAwsRegion)
		if awsRegion == "" {
			printUsage()
			return
		}
		configContent, err := config.GetSecret(awsSecretKey, awsRegion)
		if err != nil {
			fmt.Printf("get aws config error, err=%s", err.Error())
			return
		}
		cfg = config.ParseConfigFromJson(configContent)
	} else {
		configFilePath = viper.GetString(config.FlagConfigPath)
		if configFilePath == "" {
			configFilePath = os.Getenv(config.ConfigFilePath)
			if configFilePath == "" {
				printUsage()
				return
			}
		}
		cfg = config.ParseConfigFromFile(configFilePath)
	}
	if cfg == nil {
		panic("failed to get configuration")
	}
	cfg.Validate()
	heightFlag(config.FlagFromSlot, &cfg.SyncerConfig.StartSlot)
	heightFlag(config.FlagFromBlock, &cfg.SyncerConfig.StartBlock)
	heightFlag(config.FlagFreezeAt, &cfg.SyncerConfig.FreezeAt)

	logging.InitLogger(&cfg.LogConfig)

	if cfg.SyncerConfig.FreezeAt != nil {
		if err := cfg.SyncerConfig.CheckFreezeAt(*cfg.SyncerConfig.FreezeAt); err != nil {
			logging.Logger.Critical(err.Error())
			os.Exit(1)
		}
	}

	password := viper.GetString(config.FlagConfigDbPass)
	if password == "" {
		password = os.Getenv(config.ConfigDBPass)
		if password == "" {
			password = config.GetDBPass(&cfg.DBConfig)
		}
	}
	gdb := config.InitDBWithConfig(&cfg.DBConfig, password, true)
	dao := db.NewSyncerSvcDB(gdb)

	slotCache, err := cache.NewLocalCache(cfg.CacheConfig.GetCacheSize())
	if err != nil {
		panic(err)
	}
	client := external.NewClient(&cfg.SyncerConfig)
	orchestrator := syncer.NewOrchestrator(&cfg.SyncerConfig, dao, client, slotCache)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err = orchestrator.ValidateChain(ctx); err != nil {
		logging.Logger.Criticalf("unsupported chain, err=%s", err.Error())
		os.Exit(1)
	}
	if err = orchestrator.CheckExecutionNode(ctx); err != nil {
		logging.Logger.Criticalf("unreachable execution node, err=%s", err.Error())
		os.Exit(1)
	}

	if cfg.MetricsConfig.Enable {
		m := metrics.NewMetrics(cfg.MetricsConfig.HttpAddress)
		m.Start()
		defer m.Stop()
	}

	if cfg.SyncerConfig.FreezeAt != nil {
		err = orchestrator.RunFrozen(ctx, *cfg.SyncerConfig.FreezeAt)
	} else {
		err = orchestrator.Run(ctx)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logging.Logger.Errorf("eth-parser stopped, err=%s", err.Error())
		return
	}
	logging.Logger.Info("eth-parser stopped")
}
