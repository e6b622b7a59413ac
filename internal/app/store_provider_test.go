package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"gorm.io/gorm"

	"github.com/yungbote/adbroker-backend/internal/data/db"
	"github.com/yungbote/adbroker-backend/internal/data/docstore"
	"github.com/yungbote/adbroker-backend/internal/platform/logger"
)

func requireBootstrapCode(t *testing.T, err error, want StoreBootstrapErrorCode) {
	t.Helper()
	if err == nil {
		t.Fatalf("resolveStore: expected error, got nil")
	}
	var got *StoreBootstrapError
	if !errors.As(err, &got) {
		t.Fatalf("expected StoreBootstrapError, got=%T", err)
	}
	if got.Code != want {
		t.Fatalf("code: want=%q got=%q", want, got.Code)
	}
}

func TestResolveStoreInvalidDriver(t *testing.T) {
	_, err := resolveStore(context.Background(), logger.Nop(), Config{StoreDriver: "mongo"})
	requireBootstrapCode(t, err, StoreBootstrapErrorInvalidDriver)
}

func TestResolveStoreRedisRequiresAddr(t *testing.T) {
	_, err := resolveStore(context.Background(), logger.Nop(), Config{StoreDriver: StoreDriverRedis})
	requireBootstrapCode(t, err, StoreBootstrapErrorMissingRedisAddr)
}

func TestResolveStoreSQLite(t *testing.T) {
	cfg := Config{StoreDriver: StoreDriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "broker.db")}
	bundle, err := resolveStore(context.Background(), logger.Nop(), cfg)
	if err != nil {
		t.Fatalf("resolveStore: %v", err)
	}
	defer bundle.Close()
	if bundle.DB == nil || bundle.Redis != nil {
		t.Fatalf("sqlite bundle should carry a gorm handle only")
	}
	if _, ok := bundle.Store.(*docstore.GormStore); !ok {
		t.Fatalf("store: want *docstore.GormStore got=%T", bundle.Store)
	}
	if !bundle.DB.Migrator().HasTable(&docstore.Document{}) {
		t.Fatalf("documents table was not migrated")
	}
}

func TestResolveStoreRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := Config{StoreDriver: "REDIS", RedisAddr: mr.Addr(), RedisKeyPrefix: "test"}
	bundle, err := resolveStore(context.Background(), logger.Nop(), cfg)
	if err != nil {
		t.Fatalf("resolveStore: %v", err)
	}
	defer bundle.Close()
	if _, ok := bundle.Store.(*docstore.RedisStore); !ok {
		t.Fatalf("store: want *docstore.RedisStore got=%T", bundle.Store)
	}
}

func TestResolveStorePostgresConnectFailed(t *testing.T) {
	prev := openPostgres
	openPostgres = func(db.PostgresConfig, *logger.Logger) (*gorm.DB, error) {
		return nil, errors.New("dial tcp: connection refused")
	}
	defer func() { openPostgres = prev }()

	_, err := resolveStore(context.Background(), logger.Nop(), Config{StoreDriver: StoreDriverPostgres})
	requireBootstrapCode(t, err, StoreBootstrapErrorConnectFailed)
}

func TestResolveStoreMigrateFailed(t *testing.T) {
	prev := autoMigrateAll
	autoMigrateAll = func(*gorm.DB) error { return errors.New("permission denied") }
	defer func() { autoMigrateAll = prev }()

	cfg := Config{StoreDriver: StoreDriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "broker.db")}
	_, err := resolveStore(context.Background(), logger.Nop(), cfg)
	requireBootstrapCode(t, err, StoreBootstrapErrorMigrateFailed)
}
