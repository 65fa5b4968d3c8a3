package handlers

import (
	"context"

	"collabboard/internal/agent"
)

// Commander runs one board command. *agent.Orchestrator implements it.
type Commander interface {
	Handle(ctx context.Context, cmd agent.Command) (*agent.Result, error)
}

// CommanderFunc adapts a function to Commander.
type CommanderFunc func(ctx context.Context, cmd agent.Command) (*agent.Result, error)

func (f CommanderFunc) Handle(ctx context.Context, cmd agent.Command) (*agent.Result, error) {
	return f(ctx, cmd)
}
