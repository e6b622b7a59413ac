package docstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func fastOptions(max int) Options {
	return Options{MaxRetries: max, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}
}

func TestRetryStopsAfterSuccess(t *testing.T) {
	calls := 0
	err := fastOptions(5).retry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return fmt.Errorf("%w: attempt %d", ErrConflict, calls)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls: want=3 got=%d", calls)
	}
}

func TestRetryDoesNotRepeatPermanentErrors(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := fastOptions(5).retry(context.Background(), func() error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls: want=1 got=%d", calls)
	}
}

func TestRetryGivesUpWithConflict(t *testing.T) {
	calls := 0
	err := fastOptions(3).retry(context.Background(), func() error {
		calls++
		return ErrConflict
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls: want=3 got=%d", calls)
	}
}

func TestTxnDecodeSeesOwnWrites(t *testing.T) {
	tx := newTxn([]string{"uncategorized"})
	if err := tx.Put("uncategorized", map[string]int{"gout": 2}); err != nil {
		t.Fatalf("put: %v", err)
	}
	var got map[string]int
	ok, err := tx.Decode("uncategorized", &got)
	if err != nil || !ok {
		t.Fatalf("decode: ok=%v err=%v", ok, err)
	}
	if got["gout"] != 2 {
		t.Fatalf("unexpected body: %v", got)
	}
	if !tx.dirty() {
		t.Fatalf("expected dirty txn")
	}
}
