package engine

import "context"

type Message struct {
	Role    string
	Content string
}

type GenerateOptions struct {
	Temperature float64
	MaxTokens   int
}

// Usage is the token report attached to one completion.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

type Result struct {
	Text  string
	Usage Usage
}

// Engine is a text-generation backend. Implementations must honor ctx
// cancellation so callers can bound each call.
type Engine interface {
	GenerateText(ctx context.Context, model string, messages []Message, opts GenerateOptions) (Result, error)
}
