package llm

import (
	"context"

	"collabboard/internal/tools"
)

// Request is a single-turn completion with function calling.
type Request struct {
	System      string
	User        string
	Tools       []tools.Definition
	Temperature float32
	MaxTokens   int
}

// Response holds the model's text (possibly empty) and its tool calls in
// the order the model returned them.
type Response struct {
	Text      string
	ToolCalls []tools.Call
}

// Client is a chat model that can call tools. Implementations make exactly
// one upstream request per Complete and never retry.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, req Request) (*Response, error)

func (f ClientFunc) Complete(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}
