package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/yungbote/adbroker-backend/internal/platform/logger"
)

// envelope is the stored value of one redis key.
type envelope struct {
	Version int64           `json:"version"`
	Body    json.RawMessage `json:"body"`
}

// RedisStore keeps each document under "<prefix>:<name>" and commits with WATCH/MULTI.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	log    *logger.Logger
	opts   Options
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(rdb *redis.Client, prefix string, log *logger.Logger, opts Options) *RedisStore {
	if log == nil {
		log = logger.Nop()
	}
	if prefix != "" && !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return &RedisStore{rdb: rdb, prefix: prefix, log: log.With("component", "RedisDocStore"), opts: opts.withDefaults()}
}

func (s *RedisStore) keys(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = s.prefix + n
	}
	return out
}

func decodeEnvelope(name string, raw any) (envelope, bool, error) {
	if raw == nil {
		return envelope{}, false, nil
	}
	str, ok := raw.(string)
	if !ok {
		return envelope{}, false, fmt.Errorf("%w: %s: unexpected redis value %T", ErrCorrupt, name, raw)
	}
	var env envelope
	if err := json.Unmarshal([]byte(str), &env); err != nil {
		return envelope{}, false, fmt.Errorf("%w: %s: %v", ErrCorrupt, name, err)
	}
	return env, true, nil
}

func (s *RedisStore) Snapshot(ctx context.Context, names ...string) (*Snapshot, error) {
	if err := validateNames(names); err != nil {
		return nil, err
	}
	vals, err := s.rdb.MGet(ctx, s.keys(names)...).Result()
	if err != nil {
		return nil, err
	}
	snap := newSnapshot()
	for i, raw := range vals {
		env, ok, err := decodeEnvelope(names[i], raw)
		if err != nil {
			return nil, err
		}
		if ok {
			snap.set(names[i], env.Body, env.Version)
		}
	}
	return snap, nil
}

func (s *RedisStore) Update(ctx context.Context, names []string, fn func(tx *Txn) error) error {
	if err := validateNames(names); err != nil {
		return err
	}
	keys := s.keys(names)
	return s.opts.retry(ctx, func() error {
		err := s.rdb.Watch(ctx, func(rtx *redis.Tx) error {
			return s.attempt(ctx, rtx, names, keys, fn)
		}, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			s.log.Debug("document conflict, retrying", "documents", names)
			return fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return err
	})
}

func (s *RedisStore) attempt(ctx context.Context, rtx *redis.Tx, names, keys []string, fn func(tx *Txn) error) error {
	vals, err := rtx.MGet(ctx, keys...).Result()
	if err != nil {
		return err
	}
	txn := newTxn(names)
	for i, raw := range vals {
		env, ok, err := decodeEnvelope(names[i], raw)
		if err != nil {
			return err
		}
		if ok {
			txn.load(names[i], env.Body, env.Version)
		}
	}
	if err := fn(txn); err != nil {
		return err
	}
	if !txn.dirty() {
		return nil
	}
	_, err = rtx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, c := range txn.changes() {
			if !c.dirty {
				continue
			}
			b, err := json.Marshal(envelope{Version: c.version + 1, Body: c.body})
			if err != nil {
				return err
			}
			pipe.Set(ctx, s.prefix+c.name, b, 0)
		}
		return nil
	})
	return err
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
