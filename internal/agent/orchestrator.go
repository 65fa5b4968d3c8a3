package agent

import (
	"context"

	"go.uber.org/zap"

	"collabboard/internal/apperr"
	"collabboard/internal/llm"
	"collabboard/internal/logging"
	"collabboard/internal/mapper"
	"collabboard/internal/object"
	"collabboard/internal/tools"
)

// FallbackMessage is returned when the model calls tools without saying anything.
const FallbackMessage = "Done!"

// Command is one natural-language request against a board snapshot.
type Command struct {
	Text     string
	Board    []object.BoardObject
	BoardID  string
	Viewport *object.Point
}

// Result is the ordered list of edits plus a summary for the user.
type Result struct {
	Actions []object.Action
	Message string
}

// Options tune the model call and bulk generation.
type Options struct {
	Temperature  float32
	MaxTokens    int
	MaxBulkCount int
}

// Orchestrator turns a Command into a Result with one model call. It holds
// no per-request state and is safe for concurrent use.
type Orchestrator struct {
	client  llm.Client
	catalog *tools.Catalog
	mapper  *mapper.Mapper
	bulk    *mapper.Generator
	logger  *zap.Logger
	opts    Options
}

func New(client llm.Client, catalog *tools.Catalog, logger *zap.Logger, opts Options) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		client:  client,
		catalog: catalog,
		mapper:  mapper.New(catalog),
		bulk:    mapper.NewGenerator(opts.MaxBulkCount, logger),
		logger:  logger,
		opts:    opts,
	}
}

// WithGenerator replaces the bulk generator.
func (o *Orchestrator) WithGenerator(g *mapper.Generator) *Orchestrator {
	o.bulk = g
	return o
}

// Handle runs the command. A failed model call fails the whole command with
// UPSTREAM_LLM_FAILURE; a bad individual tool call is logged and skipped.
func (o *Orchestrator) Handle(ctx context.Context, cmd Command) (*Result, error) {
	logger := logging.FromContext(ctx, o.logger)

	userMsg, err := BuildUserMessage(cmd)
	if err != nil {
		return nil, apperr.NewInternal(err)
	}

	resp, err := o.client.Complete(ctx, llm.Request{
		System:      SystemPrompt,
		User:        userMsg,
		Tools:       o.catalog.Definitions(),
		Temperature: o.opts.Temperature,
		MaxTokens:   o.opts.MaxTokens,
	})
	if err != nil {
		logger.Error("AI command error", zap.Error(err))
		return nil, apperr.NewUpstreamLLMFailure(err)
	}

	actions := make([]object.Action, 0, len(resp.ToolCalls))
	for _, call := range resp.ToolCalls {
		actions = append(actions, o.expand(cmd, call, logger)...)
	}

	message := resp.Text
	if message == "" {
		message = FallbackMessage
	}

	logger.Info("AI command handled",
		zap.String("board_id", cmd.BoardID),
		zap.Int("tool_calls", len(resp.ToolCalls)),
		zap.Int("actions", len(actions)))

	return &Result{Actions: actions, Message: message}, nil
}

// expand turns one tool call into zero or more actions.
func (o *Orchestrator) expand(cmd Command, call tools.Call, logger *zap.Logger) []object.Action {
	switch out := o.mapper.Map(call).(type) {
	case mapper.Mapped:
		return []object.Action{out.Action}

	case mapper.Deferred:
		switch args := out.Args.(type) {
		case tools.BulkCreateArgs:
			return o.bulk.Generate(args)
		case tools.DeleteAllArgs:
			return deleteAll(cmd.Board)
		default:
			logger.Warn("no handler for deferred tool call", zap.String("tool", call.Name))
			return nil
		}

	case mapper.Failed:
		logger.Warn("Error processing tool call",
			zap.String("tool", out.Name),
			zap.String("code", string(apperr.From(out.Err).Code)),
			zap.Error(out.Err))
		return nil

	default:
		return nil
	}
}

// deleteAll emits one delete per snapshot object, in snapshot order. A
// repeated id is deleted once.
func deleteAll(board []object.BoardObject) []object.Action {
	actions := make([]object.Action, 0, len(board))
	seen := make(map[string]bool, len(board))
	for _, b := range board {
		if seen[b.ID] {
			continue
		}
		seen[b.ID] = true
		actions = append(actions, object.NewDelete(b.ID))
	}
	return actions
}
