package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"collabboard/internal/agent"
	"collabboard/internal/apperr"
	"collabboard/internal/auth"
	"collabboard/internal/logging"
	"collabboard/internal/middleware"
)

// Deps: everything the HTTP surface needs
type Deps struct {
	Commands       *CommandHandler
	Verifier       auth.Verifier
	Limiter        *middleware.ClientLimiter
	AllowedOrigins []string
	MaxBodyBytes   int64
	Logger         *zap.Logger

	// WebSocket serves /ws/ai when set. It authenticates on its own.
	WebSocket http.Handler
}

// NewRouter: the HTTP routes wrapped in the shared middleware
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	protected := func(h http.Handler) http.Handler {
		return middleware.Chain(h,
			middleware.Authenticate(d.Verifier, logger),
			middleware.RateLimit(d.Limiter, logger),
			middleware.MaxBody(d.MaxBodyBytes),
		)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", HandleHealth)
	mux.Handle("POST /api/ai/command", protected(d.Commands))
	mux.Handle("GET /api/ai/me", protected(http.HandlerFunc(HandleWhoAmI)))
	if d.WebSocket != nil {
		mux.Handle("GET /ws/ai", d.WebSocket)
	}

	return middleware.Chain(mux,
		middleware.RequestID(logger),
		middleware.SecurityHeaders,
		middleware.CORS(d.AllowedOrigins),
	)
}

// Message types on the WebSocket channel.
const (
	MsgCommand   = "command"
	MsgGetUserID = "getUserId"
	MsgResult    = "result"
	MsgError     = "error"
)

// inboundMessage: a client message; command fields sit at the top level
type inboundMessage struct {
	Type      string `json:"type"`
	RequestID string `json:"requestId,omitempty"`
	agent.Request
}

// ResultMessage: reply to a command
type ResultMessage struct {
	Type      string `json:"type"`
	RequestID string `json:"requestId,omitempty"`
	agent.Response
}

// ErrorMessage: reply to a message that failed
type ErrorMessage struct {
	Type      string      `json:"type"`
	RequestID string      `json:"requestId,omitempty"`
	Error     apperr.Code `json:"error"`
	Detail    string      `json:"detail"`
}

func errorMessage(requestID string, err error) ErrorMessage {
	env, _ := apperr.EnvelopeFor(err)
	return ErrorMessage{Type: MsgError, RequestID: requestID, Error: env.Error, Detail: env.Detail}
}

// MessageRouter: routes WebSocket messages to handlers by type
type MessageRouter struct {
	commands *CommandHandler
	logger   *zap.Logger
}

func NewMessageRouter(commands *CommandHandler, logger *zap.Logger) *MessageRouter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageRouter{commands: commands, logger: logger}
}

// Route: handles one message and returns the reply to send. Every message
// gets exactly one reply.
func (mr *MessageRouter) Route(ctx context.Context, msg []byte) any {
	var in inboundMessage
	if err := json.Unmarshal(msg, &in); err != nil {
		return errorMessage("", apperr.NewInvalidRequest("invalid message"))
	}

	switch in.Type {
	case MsgCommand:
		resp, err := mr.commands.Run(ctx, &in.Request)
		if err != nil {
			logging.FromContext(ctx, mr.logger).Info("command rejected",
				zap.String("request_id", in.RequestID),
				zap.String("code", string(apperr.From(err).Code)))
			return errorMessage(in.RequestID, err)
		}
		return ResultMessage{Type: MsgResult, RequestID: in.RequestID, Response: *resp}
	case MsgGetUserID:
		id, _ := auth.FromContext(ctx)
		return userIDReply(id)
	default:
		return errorMessage(in.RequestID, apperr.NewInvalidRequest(fmt.Sprintf("unknown message type: %s", in.Type)))
	}
}
