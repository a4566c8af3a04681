package sctx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"sync"
	"time"

	"github.com/screenlog/screenlog/internal/database"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	CONFIG_PATH = ".screenlog.config"
	DB_PATH     = ".screenlog.db"
)

const defaultScreenlogPath = ".screenlog"

var (
	screenlogLogger *logrus.Logger
	getLoggerOnce   sync.Once
)

func GetLogger() *logrus.Logger {
	getLoggerOnce.Do(func() {
		err := MakeScreenlogDir()
		if err != nil {
			panic(err)
		}

		lumberjackLogger := &lumberjack.Logger{
			Filename:   path.Join(GetScreenlogPath(), "screenlog.log"),
			MaxSize:    1, // MB
			MaxBackups: 10,
			MaxAge:     30, // days
		}

		logFormatter := new(logrus.TextFormatter)
		logFormatter.TimestampFormat = time.RFC3339
		logFormatter.FullTimestamp = true

		screenlogLogger = logrus.New()
		screenlogLogger.SetFormatter(logFormatter)
		screenlogLogger.SetLevel(logrus.InfoLevel)
		screenlogLogger.SetOutput(lumberjackLogger)
	})
	return screenlogLogger
}

func GetScreenlogPath() string {
	screenlogPath := os.Getenv("SCREENLOG_PATH")
	if screenlogPath != "" {
		return screenlogPath
	}

	userHome, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Errorf("failed to get user's home directory: %v", err))
	}

	return path.Join(userHome, defaultScreenlogPath)
}

func MakeScreenlogDir() error {
	err := os.MkdirAll(GetScreenlogPath(), 0o744)
	if err != nil {
		return fmt.Errorf("failed to create ~/.screenlog dir: %v", err)
	}
	return nil
}

func OpenLocalSqliteDb() (*database.DB, error) {
	err := MakeScreenlogDir()
	if err != nil {
		return nil, err
	}
	newLogger := logger.New(
		GetLogger().WithField("fromSQL", true),
		logger.Config{
			SlowThreshold:             100 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: false,
			Colorful:                  false,
		},
	)
	dbFilePath := path.Join(GetScreenlogPath(), DB_PATH)
	dsn := fmt.Sprintf("file:%s?mode=rwc&_journal_mode=WAL", dbFilePath)
	db, err := database.OpenSQLite(dsn, &gorm.Config{SkipDefaultTransaction: true, Logger: newLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	if err := db.AddDatabaseTables(); err != nil {
		return nil, err
	}
	db.Exec("PRAGMA journal_mode = WAL")
	return db, nil
}

type screenlogContextKey string

func MakeContext() context.Context {
	ctx := context.Background()
	config, err := GetConfig()
	if err != nil {
		panic(fmt.Errorf("failed to retrieve config: %v", err))
	}
	ctx = context.WithValue(ctx, screenlogContextKey("config"), config)
	db, err := OpenLocalSqliteDb()
	if err != nil {
		panic(fmt.Errorf("failed to open local DB: %v", err))
	}
	ctx = context.WithValue(ctx, screenlogContextKey("db"), db)
	return ctx
}

func GetConf(ctx context.Context) ClientConfig {
	v := ctx.Value(screenlogContextKey("config"))
	if v != nil {
		return v.(ClientConfig)
	}
	panic(fmt.Errorf("failed to find config in ctx"))
}

func GetDb(ctx context.Context) *database.DB {
	v := ctx.Value(screenlogContextKey("db"))
	if v != nil {
		return v.(*database.DB)
	}
	panic(fmt.Errorf("failed to find db in ctx"))
}

type ClientConfig struct {
	// The root directory that is scanned for new export files
	DataDir string `json:"data_dir"`
	// Directory name (under DataDir) that processed files are moved into
	ArchiveDirName string `json:"archive_dir_name"`
	// Directory names under DataDir that are never treated as device input
	ReservedDirNames []string `json:"reserved_dir_names"`
	// Prefix stripped from device folder and file names, e.g. "Activity "
	DeviceNamePrefix string `json:"device_name_prefix"`
}

func GetConfigContents() ([]byte, error) {
	dat, err := os.ReadFile(path.Join(GetScreenlogPath(), CONFIG_PATH))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}
	return dat, nil
}

func GetConfig() (ClientConfig, error) {
	data, err := GetConfigContents()
	if err != nil {
		return ClientConfig{}, err
	}
	var config ClientConfig
	err = json.Unmarshal(data, &config)
	if err != nil {
		return ClientConfig{}, fmt.Errorf("failed to parse config file: %v", err)
	}
	return ApplyDefaults(config), nil
}

func ApplyDefaults(config ClientConfig) ClientConfig {
	if config.DataDir == "" {
		config.DataDir = path.Join(GetScreenlogPath(), "data")
	}
	if config.ArchiveDirName == "" {
		config.ArchiveDirName = "processed"
	}
	if len(config.ReservedDirNames) == 0 {
		config.ReservedDirNames = []string{"db", "processed", "staging"}
	}
	if config.DeviceNamePrefix == "" {
		config.DeviceNamePrefix = "Activity "
	}
	return config
}

func SetConfig(config ClientConfig) error {
	serializedConfig, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %v", err)
	}
	err = MakeScreenlogDir()
	if err != nil {
		return err
	}
	configPath := path.Join(GetScreenlogPath(), CONFIG_PATH)
	stagedConfigPath := configPath + ".tmp"
	err = os.WriteFile(stagedConfigPath, serializedConfig, 0o644)
	if err != nil {
		return fmt.Errorf("failed to write config: %v", err)
	}
	err = os.Rename(stagedConfigPath, configPath)
	if err != nil {
		return fmt.Errorf("failed to replace config file with the updated version: %v", err)
	}
	return nil
}

func InitConfig() error {
	_, err := os.Stat(path.Join(GetScreenlogPath(), CONFIG_PATH))
	if errors.Is(err, os.ErrNotExist) {
		return SetConfig(ApplyDefaults(ClientConfig{}))
	}
	return err
}
