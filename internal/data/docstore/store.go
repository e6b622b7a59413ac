// Package docstore persists named JSON documents with optimistic, versioned
// read-modify-write transactions. Every document carries a version; an update
// commits only if every document it read is still at the version it saw, and is
// retried from a fresh read otherwise.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
)

var (
	// ErrConflict means another writer committed one of the documents first.
	ErrConflict = errors.New("docstore: concurrent modification")
	// ErrCorrupt means a stored body could not be decoded.
	ErrCorrupt = errors.New("docstore: corrupt document")
	// ErrUndeclared means a transaction touched a document it did not lock.
	ErrUndeclared = errors.New("docstore: document not declared in transaction")
)

// Store is implemented by the gorm and redis backends.
type Store interface {
	// Snapshot reads the named documents at one consistent point.
	Snapshot(ctx context.Context, names ...string) (*Snapshot, error)
	// Update runs fn against the named documents and commits its Puts atomically.
	// fn may run more than once and must not have side effects outside tx.
	Update(ctx context.Context, names []string, fn func(tx *Txn) error) error
	Close() error
}

type Options struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxRetries <= 0 {
		o.MaxRetries = 8
	}
	if o.InitialBackoff <= 0 {
		o.InitialBackoff = 5 * time.Millisecond
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = 250 * time.Millisecond
	}
	return o
}

// retry re-runs attempt while it reports ErrConflict. Any other error stops immediately.
func (o Options) retry(ctx context.Context, attempt func() error) error {
	o = o.withDefaults()
	b := &backoff.ExponentialBackOff{
		InitialInterval:     o.InitialBackoff,
		RandomizationFactor: 0.5,
		Multiplier:          2,
		MaxInterval:         o.MaxBackoff,
	}
	tries := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		tries++
		err := attempt()
		if err == nil || errors.Is(err, ErrConflict) {
			return struct{}{}, err
		}
		return struct{}{}, backoff.Permanent(err)
	}, backoff.WithBackOff(b), backoff.WithMaxTries(uint(o.MaxRetries)))
	if err == nil {
		return nil
	}
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		err = perm.Unwrap()
	}
	if errors.Is(err, ErrConflict) {
		return fmt.Errorf("%w (gave up after %d attempts)", err, tries)
	}
	return err
}

func validateNames(names []string) error {
	if len(names) == 0 {
		return errors.New("docstore: at least one document name is required")
	}
	for _, n := range names {
		if n == "" {
			return errors.New("docstore: empty document name")
		}
	}
	return nil
}
