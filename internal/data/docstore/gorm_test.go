package docstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var memSeq atomic.Int64

func newTestGormStore(t *testing.T) *GormStore {
	t.Helper()
	dsn := fmt.Sprintf("file:docstore_%d?mode=memory&cache=shared", memSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&Document{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	s := NewGormStore(db, nil, Options{MaxRetries: 4, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond})
	t.Cleanup(func() { _ = s.Close() })
	return s
}

type counterDoc struct {
	N int `json:"n"`
}

func TestGormStoreCreatesAndVersionsDocuments(t *testing.T) {
	s := newTestGormStore(t)
	ctx := context.Background()

	snap, err := s.Snapshot(ctx, "total_queries")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	var c counterDoc
	if ok, err := snap.Decode("total_queries", &c); err != nil || ok {
		t.Fatalf("expected missing document, ok=%v err=%v", ok, err)
	}

	for i := 0; i < 2; i++ {
		err := s.Update(ctx, []string{"total_queries"}, func(tx *Txn) error {
			var cur counterDoc
			if _, err := tx.Decode("total_queries", &cur); err != nil {
				return err
			}
			cur.N++
			return tx.Put("total_queries", cur)
		})
		if err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
	}

	snap, err = s.Snapshot(ctx, "total_queries")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if ok, err := snap.Decode("total_queries", &c); err != nil || !ok {
		t.Fatalf("decode: ok=%v err=%v", ok, err)
	}
	if c.N != 2 {
		t.Fatalf("counter: want=2 got=%d", c.N)
	}
	if v := snap.Version("total_queries"); v != 2 {
		t.Fatalf("version: want=2 got=%d", v)
	}
}

func TestGormStoreRollsBackOnCallbackError(t *testing.T) {
	s := newTestGormStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Update(ctx, []string{"a", "b"}, func(tx *Txn) error {
		if err := tx.Put("a", counterDoc{N: 1}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}
	snap, err := s.Snapshot(ctx, "a", "b")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	var c counterDoc
	if ok, _ := snap.Decode("a", &c); ok {
		t.Fatalf("document a must not be committed")
	}
}

func TestGormStoreRejectsUndeclaredDocuments(t *testing.T) {
	s := newTestGormStore(t)
	err := s.Update(context.Background(), []string{"a"}, func(tx *Txn) error {
		return tx.Put("b", counterDoc{})
	})
	if !errors.Is(err, ErrUndeclared) {
		t.Fatalf("expected ErrUndeclared, got %v", err)
	}
}

func TestGormStoreConcurrentIncrementsAreNotLost(t *testing.T) {
	s := newTestGormStore(t)
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Update(ctx, []string{"ad_clicks"}, func(tx *Txn) error {
				var cur counterDoc
				if _, err := tx.Decode("ad_clicks", &cur); err != nil {
					return err
				}
				cur.N++
				return tx.Put("ad_clicks", cur)
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("update: %v", err)
		}
	}

	snap, err := s.Snapshot(ctx, "ad_clicks")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	var c counterDoc
	if _, err := snap.Decode("ad_clicks", &c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.N != workers {
		t.Fatalf("counter: want=%d got=%d", workers, c.N)
	}
}

func TestGormCommitDetectsStaleVersion(t *testing.T) {
	s := newTestGormStore(t)
	ctx := context.Background()
	if err := s.db.Create(&Document{Name: "categories_ads", Body: []byte(`{}`), Version: 3}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	cases := []change{
		{name: "categories_ads", body: []byte(`{"x":1}`), version: 2, exists: true, dirty: true},
		{name: "categories_ads", version: 2, exists: true},
		{name: "categories_ads", body: []byte(`{}`), dirty: true},
		{name: "categories_ads"},
	}
	for i, c := range cases {
		err := s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
			return s.commitOne(db, c, time.Now())
		})
		if !errors.Is(err, ErrConflict) {
			t.Fatalf("case %d: expected ErrConflict, got %v", i, err)
		}
	}

	ok := change{name: "categories_ads", body: []byte(`{"x":1}`), version: 3, exists: true, dirty: true}
	err := s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return s.commitOne(db, ok, time.Now())
	})
	if err != nil {
		t.Fatalf("matching version must commit: %v", err)
	}
}

func TestGormStoreCorruptBody(t *testing.T) {
	s := newTestGormStore(t)
	if err := s.db.Create(&Document{Name: "disease_counts", Body: []byte(`[1,2]`), Version: 1}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	snap, err := s.Snapshot(context.Background(), "disease_counts")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	var m map[string]int
	if _, err := snap.Decode("disease_counts", &m); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}
