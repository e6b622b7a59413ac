package docstore

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisStore(rdb, "adbroker:", nil, fastOptions(4))
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisStoreSeparatesPrefixFromName(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisStore(rdb, "adbroker", nil, fastOptions(4))
	t.Cleanup(func() { _ = s.Close() })

	err := s.Update(context.Background(), []string{"categories_ads"}, func(tx *Txn) error {
		return tx.Put("categories_ads", counterDoc{N: 1})
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !mr.Exists("adbroker:categories_ads") {
		t.Fatalf("expected key adbroker:categories_ads, have %v", mr.Keys())
	}
}

func TestRedisStoreRoundTrip(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	err := s.Update(ctx, []string{"total_queries"}, func(tx *Txn) error {
		return tx.Put("total_queries", counterDoc{N: 7})
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !mr.Exists("adbroker:total_queries") {
		t.Fatalf("expected prefixed key to exist")
	}

	snap, err := s.Snapshot(ctx, "total_queries", "query_costs")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	var c counterDoc
	if ok, err := snap.Decode("total_queries", &c); err != nil || !ok {
		t.Fatalf("decode: ok=%v err=%v", ok, err)
	}
	if c.N != 7 || snap.Version("total_queries") != 1 {
		t.Fatalf("unexpected doc %+v version=%d", c, snap.Version("total_queries"))
	}
	if ok, _ := snap.Decode("query_costs", &c); ok {
		t.Fatalf("query_costs must be missing")
	}
}

func TestRedisStoreRetriesAfterConcurrentWrite(t *testing.T) {
	s, _ := newTestRedisStore(t)
	ctx := context.Background()
	other := redis.NewClient(&redis.Options{Addr: s.rdb.Options().Addr})
	defer other.Close()

	if err := s.Update(ctx, []string{"ad_clicks"}, func(tx *Txn) error {
		return tx.Put("ad_clicks", counterDoc{N: 1})
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	attempts := 0
	err := s.Update(ctx, []string{"ad_clicks"}, func(tx *Txn) error {
		attempts++
		if attempts == 1 {
			// another writer lands between our read and our commit
			if err := other.Set(ctx, "adbroker:ad_clicks", `{"version":2,"body":{"n":10}}`, 0).Err(); err != nil {
				return err
			}
		}
		var cur counterDoc
		if _, err := tx.Decode("ad_clicks", &cur); err != nil {
			return err
		}
		cur.N++
		return tx.Put("ad_clicks", cur)
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("attempts: want=2 got=%d", attempts)
	}

	snap, err := s.Snapshot(ctx, "ad_clicks")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	var c counterDoc
	if _, err := snap.Decode("ad_clicks", &c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.N != 11 {
		t.Fatalf("counter: want=11 got=%d", c.N)
	}
}

func TestRedisStoreCorruptEnvelope(t *testing.T) {
	s, mr := newTestRedisStore(t)
	if err := mr.Set("adbroker:disease_times", "not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	_, err := s.Snapshot(context.Background(), "disease_times")
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}
