package testutil

import (
	"context"
	"sync"

	"github.com/yungbote/adbroker-backend/internal/data/aggregates"
	"github.com/yungbote/adbroker-backend/internal/data/docstore"
)

// InjectedTxRunner is a test helper for aggregate integration tests.
// It wraps a real runner and injects failures around the aggregate body. A
// FailCommit error is raised inside the transaction after the body succeeds,
// so the inner runner rolls everything back.
type InjectedTxRunner struct {
	Inner aggregates.TxRunner

	mu sync.Mutex

	FailBegin  error
	FailCommit error

	BeginCalls    int
	BodyCalls     int
	CommitCalls   int
	RollbackCalls int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) InTx(ctx context.Context, documents []string, fn func(tx *docstore.Txn) error) error {
	r.mu.Lock()
	r.BeginCalls++
	failBegin := r.FailBegin
	failCommit := r.FailCommit
	r.mu.Unlock()

	if failBegin != nil {
		return failBegin
	}
	body := func(tx *docstore.Txn) error {
		r.mu.Lock()
		r.BodyCalls++
		r.mu.Unlock()
		if err := fn(tx); err != nil {
			return err
		}
		return failCommit
	}
	var err error
	if r.Inner != nil {
		err = r.Inner.InTx(ctx, documents, body)
	} else {
		err = body(nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.RollbackCalls++
		return err
	}
	r.CommitCalls++
	return nil
}
