package agent

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"collabboard/internal/object"
)

// DefaultBoardID is used when a request names no board.
const DefaultBoardID = "default-board"

// Request is the wire form of a command, shared by the HTTP and WebSocket
// transports.
type Request struct {
	Command        string               `json:"command" validate:"required"`
	BoardState     []object.BoardObject `json:"boardState" validate:"required,dive"`
	BoardID        string               `json:"boardId,omitempty" validate:"max=256"`
	ViewportCenter *object.Point        `json:"viewportCenter,omitempty"`
}

// Response is the wire form of a handled command. Error is always null on
// success; failures use the error envelope instead.
type Response struct {
	Actions []object.Action `json:"actions"`
	Message string          `json:"message"`
	Error   *string         `json:"error"`
}

// RequestLimits bound the size of a single request.
type RequestLimits struct {
	MaxBoardObjects int
	MaxCommandChars int
}

// Validate checks the request's structure and size. It returns a message
// suitable for the caller.
func (r *Request) Validate(v *object.Validator, limits RequestLimits) error {
	if strings.TrimSpace(r.Command) == "" {
		return fmt.Errorf("'command' is required")
	}
	if limits.MaxCommandChars > 0 && utf8.RuneCountInString(r.Command) > limits.MaxCommandChars {
		return fmt.Errorf("'command' exceeds %d characters", limits.MaxCommandChars)
	}
	if limits.MaxBoardObjects > 0 && len(r.BoardState) > limits.MaxBoardObjects {
		return fmt.Errorf("'boardState' exceeds %d objects", limits.MaxBoardObjects)
	}
	return v.ValidateStruct(r)
}

// ToCommand converts the wire request, applying the default board id.
func (r *Request) ToCommand() Command {
	boardID := r.BoardID
	if boardID == "" {
		boardID = DefaultBoardID
	}
	return Command{
		Text:     r.Command,
		Board:    r.BoardState,
		BoardID:  boardID,
		Viewport: r.ViewportCenter,
	}
}

// NewResponse converts a Result to the wire form.
func NewResponse(res *Result) Response {
	actions := res.Actions
	if actions == nil {
		actions = []object.Action{}
	}
	return Response{Actions: actions, Message: res.Message}
}
