package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/adbroker-backend/internal/clients/redis"
	"github.com/yungbote/adbroker-backend/internal/data/db"
	"github.com/yungbote/adbroker-backend/internal/data/docstore"
	"github.com/yungbote/adbroker-backend/internal/platform/logger"
)

var (
	openSQLite     = db.OpenSQLite
	openPostgres   = db.OpenPostgres
	newRedisClient = redis.NewClient
	autoMigrateAll = db.AutoMigrateAll
)

type StoreBootstrapErrorCode string

const (
	StoreBootstrapErrorInvalidDriver    StoreBootstrapErrorCode = "invalid_driver"
	StoreBootstrapErrorMissingRedisAddr StoreBootstrapErrorCode = "missing_redis_addr"
	StoreBootstrapErrorConnectFailed    StoreBootstrapErrorCode = "connect_failed"
	StoreBootstrapErrorMigrateFailed    StoreBootstrapErrorCode = "migrate_failed"
)

type StoreBootstrapError struct {
	Code   StoreBootstrapErrorCode
	Driver string
	Cause  error
}

func (e *StoreBootstrapError) Error() string {
	if e == nil {
		return "document store bootstrap failed"
	}
	return fmt.Sprintf("document store bootstrap failed (code=%s driver=%q): %v", e.Code, e.Driver, e.Cause)
}

func (e *StoreBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// StoreBundle is the selected document store plus the raw connection behind it,
// so metrics collectors can sample the pool.
type StoreBundle struct {
	Store docstore.Store
	DB    *gorm.DB
	Redis *goredis.Client
}

func (b StoreBundle) Close() error {
	if b.Store == nil {
		return nil
	}
	return b.Store.Close()
}

func resolveStore(ctx context.Context, log *logger.Logger, cfg Config) (StoreBundle, error) {
	driver := StoreDriver(strings.ToLower(strings.TrimSpace(string(cfg.StoreDriver))))
	opts := docstore.Options{MaxRetries: cfg.StoreMaxRetries}

	log.Info("Selecting document store", "driver", driver)

	var bundle StoreBundle
	switch driver {
	case StoreDriverSQLite, StoreDriverPostgres:
		var (
			gdb *gorm.DB
			err error
		)
		if driver == StoreDriverSQLite {
			gdb, err = openSQLite(cfg.SQLitePath, log)
		} else {
			gdb, err = openPostgres(cfg.Postgres, log)
		}
		if err != nil {
			return StoreBundle{}, storeBootstrapFailed(log, driver, StoreBootstrapErrorConnectFailed, err)
		}
		if err := autoMigrateAll(gdb); err != nil {
			if sqlDB, dbErr := gdb.DB(); dbErr == nil {
				_ = sqlDB.Close()
			}
			return StoreBundle{}, storeBootstrapFailed(log, driver, StoreBootstrapErrorMigrateFailed, err)
		}
		bundle = StoreBundle{Store: docstore.NewGormStore(gdb, log, opts), DB: gdb}
	case StoreDriverRedis:
		if strings.TrimSpace(cfg.RedisAddr) == "" {
			return StoreBundle{}, storeBootstrapFailed(log, driver, StoreBootstrapErrorMissingRedisAddr,
				errors.New("REDIS_ADDR is required for the redis store"))
		}
		rdb, err := newRedisClient(ctx, redis.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}, log)
		if err != nil {
			return StoreBundle{}, storeBootstrapFailed(log, driver, StoreBootstrapErrorConnectFailed, err)
		}
		bundle = StoreBundle{Store: docstore.NewRedisStore(rdb, cfg.RedisKeyPrefix, log, opts), Redis: rdb}
	default:
		return StoreBundle{}, storeBootstrapFailed(log, driver, StoreBootstrapErrorInvalidDriver,
			fmt.Errorf("unsupported store driver %q", driver))
	}
	log.Info("Document store ready", "driver", driver, "max_retries", cfg.StoreMaxRetries)
	return bundle, nil
}

func storeBootstrapFailed(log *logger.Logger, driver StoreDriver, code StoreBootstrapErrorCode, cause error) error {
	err := &StoreBootstrapError{Code: code, Driver: string(driver), Cause: cause}
	log.Error("Document store bootstrap failed", "driver", driver, "error_code", code, "error", cause)
	return err
}
