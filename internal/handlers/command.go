package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"collabboard/internal/agent"
	"collabboard/internal/apperr"
	"collabboard/internal/auth"
	"collabboard/internal/logging"
	"collabboard/internal/middleware"
	"collabboard/internal/object"
)

// CommandHandler: POST /api/ai/command
type CommandHandler struct {
	commander Commander
	validator *object.Validator
	limits    agent.RequestLimits
	logger    *zap.Logger
}

func NewCommandHandler(commander Commander, validator *object.Validator, limits agent.RequestLimits, logger *zap.Logger) *CommandHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandHandler{
		commander: commander,
		validator: validator,
		limits:    limits,
		logger:    logger,
	}
}

func (h *CommandHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req agent.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, middleware.BodyError(err))
		return
	}

	resp, err := h.Run(r.Context(), &req)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, resp)
}

// Run validates a decoded request and executes it. Shared with the
// WebSocket channel.
func (h *CommandHandler) Run(ctx context.Context, req *agent.Request) (*agent.Response, error) {
	logger := logging.FromContext(ctx, h.logger)

	if err := req.Validate(h.validator, h.limits); err != nil {
		return nil, apperr.NewInvalidRequest(err.Error())
	}

	cmd := req.ToCommand()
	if id, ok := auth.FromContext(ctx); ok {
		logger.Info("AI command",
			zap.String("uid", id.UID),
			zap.String("board_id", cmd.BoardID),
			zap.Int("board_objects", len(cmd.Board)))
	}

	res, err := h.commander.Handle(ctx, cmd)
	if err != nil {
		if appErr := apperr.From(err); appErr.Code == apperr.CodeInternal {
			logger.Error("AI command failed", zap.Error(err))
		}
		return nil, err
	}

	resp := agent.NewResponse(res)
	return &resp, nil
}
