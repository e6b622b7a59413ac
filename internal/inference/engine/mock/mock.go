package mock

import (
	"context"
	"errors"
	"sync"

	"github.com/yungbote/adbroker-backend/internal/inference/engine"
)

// ErrExhausted is returned once a scripted engine has no replies left.
var ErrExhausted = errors.New("mock engine: no scripted replies left")

// Engine replays scripted results in order. With no script it answers every
// call with Default.
type Engine struct {
	Default engine.Result

	mu      sync.Mutex
	script  []Reply
	calls   []Call
	scripts bool
}

type Reply struct {
	Result engine.Result
	Err    error
	// Block waits for ctx cancellation before answering.
	Block bool
}

type Call struct {
	Model    string
	Messages []engine.Message
}

func New() *Engine {
	return &Engine{Default: engine.Result{Text: "NO DISEASES"}}
}

// Scripted returns an engine that plays replies in order and then fails with ErrExhausted.
func Scripted(replies ...Reply) *Engine {
	return &Engine{script: replies, scripts: true}
}

// Text is shorthand for a successful reply with the given usage.
func Text(text string, inputTokens, outputTokens int) Reply {
	return Reply{Result: engine.Result{Text: text, Usage: engine.Usage{InputTokens: inputTokens, OutputTokens: outputTokens}}}
}

func (e *Engine) GenerateText(ctx context.Context, model string, messages []engine.Message, _ engine.GenerateOptions) (engine.Result, error) {
	e.mu.Lock()
	e.calls = append(e.calls, Call{Model: model, Messages: append([]engine.Message(nil), messages...)})
	if !e.scripts {
		e.mu.Unlock()
		return e.Default, ctx.Err()
	}
	if len(e.script) == 0 {
		e.mu.Unlock()
		return engine.Result{}, ErrExhausted
	}
	r := e.script[0]
	e.script = e.script[1:]
	e.mu.Unlock()

	if r.Block {
		<-ctx.Done()
		return engine.Result{}, ctx.Err()
	}
	if r.Err != nil {
		return engine.Result{}, r.Err
	}
	return r.Result, nil
}

func (e *Engine) Calls() []Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Call(nil), e.calls...)
}
