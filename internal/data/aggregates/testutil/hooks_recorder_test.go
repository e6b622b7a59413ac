package testutil

import (
	"sync"
	"testing"
	"time"
)

func TestHooksRecorderCountsPerOperation(t *testing.T) {
	h := &HooksRecorder{}
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.IncConflict("Broker.Category.Purchase")
			h.IncRetry("Broker.Category.Purchase")
		}()
	}
	wg.Wait()
	h.ObserveOperation("Broker.Category.Purchase", "success", time.Millisecond)
	h.ObserveOperation("Broker.Category.RecordClick", "not_found", time.Millisecond)

	if got := h.Conflicts("Broker.Category.Purchase"); got != 20 {
		t.Fatalf("conflicts: want=20 got=%d", got)
	}
	if got := h.Retries("Broker.Category.Purchase"); got != 20 {
		t.Fatalf("retries: want=20 got=%d", got)
	}
	if got := h.Statuses("Broker.Category.RecordClick"); len(got) != 1 || got[0] != "not_found" {
		t.Fatalf("statuses: %v", got)
	}
	if len(h.Operations()) != 2 {
		t.Fatalf("operations: %v", h.Operations())
	}
}
