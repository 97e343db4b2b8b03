package logging

import (
	"fmt"
	"os"
	"strings"

	"github.com/op/go-logging"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/merge-indexer/eth-parser/config"
)

var (
	// Logger instance for quick declarative logging levels
	Logger = logging.MustGetLogger("eth-parser")

	// log levels that are available
	levels = map[string]logging.Level{
		"CRITICAL": logging.CRITICAL,
		"ERROR":    logging.ERROR,
		"WARNING":  logging.WARNING,
		"NOTICE":   logging.NOTICE,
		"INFO":     logging.INFO,
		"DEBUG":    logging.DEBUG,
	}

	format = logging.MustStringFormatter(
		`%{time:2006-01-02 15:04:05.000} %{shortfile} %{level:.4s} %{message}`,
	)
)

// InitLogger sets up the process wide logger from the log config, it must be called once before any sync task starts.
func InitLogger(cfg *config.LogConfig) {
	backends := make([]logging.Backend, 0)

	if cfg.UseConsoleLogger {
		consoleBackend := logging.NewLogBackend(os.Stdout, "", 0)
		backends = append(backends, leveled(consoleBackend, cfg.Level))
	}

	if cfg.UseFileLogger {
		fileBackend := logging.NewLogBackend(&lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxFileSizeInMB,
			MaxBackups: cfg.MaxBackupsOfLogFiles,
			MaxAge:     cfg.MaxAgeToRetainLogFilesInDays,
			Compress:   cfg.Compress,
		}, "", 0)
		backends = append(backends, leveled(fileBackend, cfg.Level))
	}

	if len(backends) == 0 {
		backends = append(backends, leveled(logging.NewLogBackend(os.Stdout, "", 0), cfg.Level))
	}
	logging.SetBackend(backends...)
}

func leveled(backend logging.Backend, level string) logging.LeveledBackend {
	formatted := logging.NewBackendFormatter(backend, format)
	leveledBackend := logging.AddModuleLevel(formatted)
	leveledBackend.SetLevel(ParseLevel(level), "")
	return leveledBackend
}

// ParseLevel maps a config level name to a logging level, unknown names fall back to INFO.
func ParseLevel(level string) logging.Level {
	if l, ok := levels[strings.ToUpper(strings.TrimSpace(level))]; ok {
		return l
	}
	if level != "" {
		fmt.Fprintf(os.Stderr, "unknown log level %q, using INFO\n", level)
	}
	return logging.INFO
}
