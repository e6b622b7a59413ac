package mock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/adbroker-backend/internal/inference/engine"
)

func TestScriptedRepliesInOrder(t *testing.T) {
	boom := errors.New("boom")
	e := Scripted(Text("1. Gout", 10, 2), Reply{Err: boom})
	ctx := context.Background()

	res, err := e.GenerateText(ctx, "m", []engine.Message{{Role: "user", Content: "toe"}}, engine.GenerateOptions{})
	if err != nil || res.Text != "1. Gout" || res.Usage.InputTokens != 10 {
		t.Fatalf("first reply=%+v err=%v", res, err)
	}
	if _, err := e.GenerateText(ctx, "m", nil, engine.GenerateOptions{}); !errors.Is(err, boom) {
		t.Fatalf("second reply err=%v", err)
	}
	if _, err := e.GenerateText(ctx, "m", nil, engine.GenerateOptions{}); !errors.Is(err, ErrExhausted) {
		t.Fatalf("third reply err=%v", err)
	}
	if got := len(e.Calls()); got != 3 {
		t.Fatalf("calls=%d", got)
	}
}

func TestBlockingReplyHonorsDeadline(t *testing.T) {
	e := Scripted(Reply{Block: true})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := e.GenerateText(ctx, "m", nil, engine.GenerateOptions{}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err=%v", err)
	}
}

func TestDefaultEngineAnswersSentinel(t *testing.T) {
	res, err := New().GenerateText(context.Background(), "m", nil, engine.GenerateOptions{})
	if err != nil || res.Text != "NO DISEASES" {
		t.Fatalf("res=%+v err=%v", res, err)
	}
}
