package config

const (
	FlagConfigPath         = "config-path"
	FlagConfigType         = "config-type"
	FlagConfigAwsRegion    = "aws-region"
	FlagConfigAwsSecretKey = "aws-secret-key"
	FlagConfigDbPass       = "db-pass"
	FlagFromSlot           = "from-slot"
	FlagFromBlock          = "from-block"
	FlagFreezeAt           = "freeze-at"

	ConfigType     = "CONFIG_TYPE"
	ConfigFilePath = "CONFIG_FILE_PATH"
	ConfigDBPass   = "DB_PASSWORD"

	AWSConfig   = "aws"
	LocalConfig = "local"

	KeyTypeAWSPrivateKey = "aws_private_key"

	DBDialectMysql    = "mysql"
	DBDialectPostgres = "postgres"
	DBDialectSqlite3  = "sqlite3"

	// DefaultMergeSlot is the first kiln slot whose block carries an execution payload
	DefaultMergeSlot  = 29151
	DefaultPresetBase = "mainnet"
	DefaultChainName  = "kiln"

	DefaultSlotPollIntervalInSeconds         = 12
	DefaultBlockPollIntervalInSeconds        = 12
	DefaultValidatorRefreshIntervalInSeconds = 384
	DefaultRPCTimeoutInSeconds               = 20

	DefaultValidatorBatchSize     = 1000
	DefaultDepositLinkConcurrency = 16
	DefaultCacheSize              = 1024
)
