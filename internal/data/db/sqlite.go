package db

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yungbote/adbroker-backend/internal/platform/logger"
)

// OpenSQLite opens a file-backed database. SQLite allows one writer at a time,
// so the pool is pinned to a single connection.
func OpenSQLite(path string, logg *logger.Logger) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	return openSQLite(dsn, logg)
}

// OpenSQLiteMemory opens a private in-memory database named name. Tests use it.
func OpenSQLiteMemory(name string, logg *logger.Logger) (*gorm.DB, error) {
	return openSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", name), logg)
}

func openSQLite(dsn string, logg *logger.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	logg.Debug("opened sqlite", "dsn", dsn)
	return db, nil
}
