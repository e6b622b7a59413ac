package aggregates

import (
	"context"

	"github.com/yungbote/adbroker-backend/internal/data/docstore"
	domainagg "github.com/yungbote/adbroker-backend/internal/domain/aggregates"
)

// TxRunner provides a shared transaction boundary primitive for aggregate writes.
// fn may be invoked again after an optimistic conflict.
type TxRunner interface {
	InTx(ctx context.Context, documents []string, fn func(tx *docstore.Txn) error) error
}

type storeTxRunner struct {
	store docstore.Store
}

// NewStoreTxRunner returns a transaction runner backed by a document store.
func NewStoreTxRunner(store docstore.Store) TxRunner {
	return &storeTxRunner{store: store}
}

func (r *storeTxRunner) InTx(ctx context.Context, documents []string, fn func(tx *docstore.Txn) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.store == nil {
		return domainagg.NewError(domainagg.CodeInternal, "aggregate.tx", "transaction runner has nil store", nil)
	}
	return r.store.Update(ctx, documents, fn)
}
