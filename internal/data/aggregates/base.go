package aggregates

import (
	"context"
	"strings"
	"time"

	"github.com/yungbote/adbroker-backend/internal/data/docstore"
	domainagg "github.com/yungbote/adbroker-backend/internal/domain/aggregates"
	"github.com/yungbote/adbroker-backend/internal/platform/logger"
)

type BaseDeps struct {
	Store  docstore.Store
	Log    *logger.Logger
	Runner TxRunner
	Hooks  Hooks
	Now    func() time.Time
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewStoreTxRunner(d.Store)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	return d
}

func executeWrite(ctx context.Context, deps BaseDeps, op string, documents []string, fn func(tx *docstore.Txn) error) error {
	start := time.Now()
	deps = deps.withDefaults()
	op = strings.TrimSpace(op)
	if op == "" {
		op = "aggregate.write"
	}
	attempts := 0
	err := deps.Runner.InTx(ctx, documents, func(tx *docstore.Txn) error {
		attempts++
		return fn(tx)
	})
	for i := 1; i < attempts; i++ {
		deps.Hooks.IncRetry(op)
	}
	mapped := MapError(op, err)

	status := "success"
	if mapped != nil {
		status = aggregateErrorStatus(mapped)
		if domainagg.IsCode(mapped, domainagg.CodeConflict) {
			deps.Hooks.IncConflict(op)
		}
		if domainagg.IsCode(mapped, domainagg.CodePersistence) || domainagg.IsCode(mapped, domainagg.CodeInternal) {
			deps.Log.Error("aggregate write failed", "op", op, "error", err)
		}
	}
	deps.Hooks.ObserveOperation(op, status, time.Since(start))
	return mapped
}

func aggregateErrorStatus(err error) string {
	if err == nil {
		return "success"
	}
	code := strings.TrimSpace(string(domainagg.CodeOf(err)))
	if code == "" {
		code = strings.TrimSpace(string(domainagg.CodeOf(MapError("aggregate.status", err))))
	}
	if code == "" {
		return "failure"
	}
	return code
}
