package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type LogLevel int

const (
	LogLevelSilent LogLevel = iota + 1
	LogLevelError
	LogLevelWarn
	LogLevelInfo
)

// ParseLogLevel maps a config value (silent, error, warn, info) to a LogLevel.
// Unknown values fall back to warn.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "silent":
		return LogLevelSilent
	case "error":
		return LogLevelError
	case "info":
		return LogLevelInfo
	default:
		return LogLevelWarn
	}
}

func (l LogLevel) gorm() logger.LogLevel {
	switch l {
	case LogLevelError:
		return logger.Error
	case LogLevelWarn:
		return logger.Warn
	case LogLevelInfo:
		return logger.Info
	case LogLevelSilent:
		return logger.Silent
	default:
		return logger.Info
	}
}

type DatabaseManager struct {
	DB       *gorm.DB
	Driver   string
	LogLevel LogLevel
}

// New opens the shared pool for driver (mysql, postgres or sqlite).
func New(driver, dsn string, maxConnection int, level LogLevel) (*DatabaseManager, error) {
	db, err := Connect(driver, dsn, level)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get pool: %w", err)
	}
	if maxConnection > 0 {
		sqlDB.SetMaxOpenConns(maxConnection)
		sqlDB.SetMaxIdleConns(maxConnection)
	}
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping pool: %w", err)
	}

	return &DatabaseManager{DB: db, Driver: driver, LogLevel: level}, nil
}

// Close closes the global pool
func (dm *DatabaseManager) Close() error {
	sqlDB, err := dm.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Exec runs fn with a session bound to ctx.
func (dm *DatabaseManager) Exec(ctx context.Context, fn func(db *gorm.DB) error) error {
	return fn(dm.DB.WithContext(ctx))
}
