package config

import (
	"encoding/json"
	"fmt"
	"log"
	neturl "net/url"
	"os"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/merge-indexer/eth-parser/db"
)

// InitDBWithConfig opens the store described by cfg and optionally migrates the tables.
func InitDBWithConfig(cfg *DBConfig, password string, migrate bool) *gorm.DB {
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // io writer
		logger.Config{
			SlowThreshold:             time.Second,   // Slow SQL threshold
			LogLevel:                  logger.Silent, // Log level
			IgnoreRecordNotFoundError: true,          // Ignore ErrRecordNotFound error for logger
			Colorful:                  true,
		},
	)

	var dialector gorm.Dialector
	switch cfg.Dialect {
	case DBDialectMysql:
		dialector = mysql.Open(MysqlDSN(cfg.Username, password, cfg.Url))
	case DBDialectPostgres:
		dialector = postgres.Open(PostgresDSN(cfg.Username, password, cfg.Url))
	case DBDialectSqlite3:
		dialector = sqlite.Open(cfg.Url)
	default:
		panic(fmt.Sprintf("unexpected DB dialect %s", cfg.Dialect))
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newLogger,
		TranslateError: true,
	})
	if err != nil {
		panic(fmt.Sprintf("open db error, err=%s", err.Error()))
	}
	dbConfig, err := gdb.DB()
	if err != nil {
		panic(err)
	}
	dbConfig.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConfig.SetMaxOpenConns(cfg.MaxOpenConns)

	if migrate {
		db.AutoMigrateDB(gdb)
	}
	return gdb
}

// MysqlDSN builds the mysql dsn, clientFoundRows makes an UPDATE report matched rows instead of changed rows
// so that re-linking a deposit reports 1 affected validator.
func MysqlDSN(username, password, url string) string {
	dsn := fmt.Sprintf("%s:%s@%s", username, password, url)
	if strings.Contains(dsn, "clientFoundRows") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&clientFoundRows=true"
	}
	return dsn + "?clientFoundRows=true"
}

// PostgresDSN builds a postgres url, the credentials are escaped.
func PostgresDSN(username, password, url string) string {
	return fmt.Sprintf("postgres://%s@%s", neturl.UserPassword(username, password).String(), url)
}

// GetDBPass resolves the db password from AWS Secrets Manager when configured so, otherwise from the config.
func GetDBPass(cfg *DBConfig) string {
	if cfg.KeyType == KeyTypeAWSPrivateKey {
		result, err := GetSecret(cfg.AWSSecretName, cfg.AWSRegion)
		if err != nil {
			panic(err)
		}
		type DBPass struct {
			DbPass string `json:"db_pass"`
		}
		var dbPassword DBPass
		err = json.Unmarshal([]byte(result), &dbPassword)
		if err != nil {
			panic(err)
		}
		return dbPassword.DbPass
	}
	return cfg.Password
}
