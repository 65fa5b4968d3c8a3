// Package mcpserver exposes the board tool catalog over the Model Context
// Protocol. A call returns the actions the relay would emit for the same
// tool call from the model.
package mcpserver

import (
	"context"
	"encoding/json"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"collabboard/internal/apperr"
	"collabboard/internal/mapper"
	"collabboard/internal/object"
	"collabboard/internal/tools"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	mapper *mapper.Mapper
	bulk   *mapper.Generator
	logger *zap.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(catalog *tools.Catalog, bulk *mapper.Generator, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		mapper: mapper.New(catalog),
		bulk:   bulk,
		logger: logger,
	}
}

// ActionsResult is the success payload of every tool.
type ActionsResult struct {
	Actions []object.Action `json:"actions"`
}

// NewServer creates an MCP server with one tool per catalog operation.
func NewServer(catalog *tools.Catalog, bulk *mapper.Generator, version string, logger *zap.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"collabboard",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	h := NewHandlers(catalog, bulk, logger)
	for _, def := range catalog.Definitions() {
		s.AddTool(mcp.NewToolWithRawSchema(def.Name, def.Description, def.Parameters), h.Handle(def.Name))
	}
	return s
}

// Run serves s on stdin/stdout until ctx is done.
func Run(ctx context.Context, s *server.MCPServer, stdin io.Reader, stdout io.Writer) error {
	return server.NewStdioServer(s).Listen(ctx, stdin, stdout)
}

// Handle returns the handler for the named tool.
func (h *Handlers) Handle(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := json.Marshal(req.GetRawArguments())
		if err != nil {
			return errorResult(apperr.NewMalformedToolArguments(name, err)), nil
		}

		call := tools.Call{Name: name, Arguments: raw}
		var actions []object.Action

		switch out := h.mapper.Map(call).(type) {
		case mapper.Mapped:
			actions = []object.Action{out.Action}
		case mapper.Deferred:
			switch args := out.Args.(type) {
			case tools.BulkCreateArgs:
				actions = h.bulk.Generate(args)
			default:
				return errorResult(apperr.NewInvalidRequest(name + " needs a board snapshot and is only available through the command endpoint")), nil
			}
		case mapper.Failed:
			h.logger.Warn("Error processing tool call", zap.String("tool", name), zap.Error(out.Err))
			return errorResult(out.Err), nil
		}

		return mcp.NewToolResultJSON(ActionsResult{Actions: actions})
	}
}

// errorResult creates an MCP error result. Only the classified message is
// exposed.
func errorResult(err error) *mcp.CallToolResult {
	e := apperr.From(err)
	payload := map[string]any{
		"error": map[string]any{
			"code":    e.Code,
			"message": e.Message,
			"status":  e.Status,
		},
	}
	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}
