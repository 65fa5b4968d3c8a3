package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"collabboard/internal/apperr"
	"collabboard/internal/auth"
)

// Authenticator: verifies the first message of a new connection
type Authenticator struct {
	verifier auth.Verifier
}

// NewAuthenticator: creates a new authenticator
func NewAuthenticator(verifier auth.Verifier) *Authenticator {
	return &Authenticator{verifier: verifier}
}

// authMessage: {"type":"authenticate","token":"..."}
type authMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// Authenticate: reads the authenticate message within timeout and verifies
// its token. Errors are *apperr.Error values safe to send to the client.
func (a *Authenticator) Authenticate(ctx context.Context, conn *websocket.Conn, timeout time.Duration) (*auth.Identity, error) {
	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, err
	}
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("receive auth message: %w", err)
	}
	if err := conn.SetReadDeadline(time.Time{}); err != nil {
		return nil, err
	}

	var m authMessage
	if err := json.Unmarshal(msg, &m); err != nil {
		return nil, apperr.NewInvalidRequest("invalid auth message")
	}
	if m.Type != "authenticate" {
		return nil, apperr.NewInvalidRequest(fmt.Sprintf("expected authenticate message, got: %s", m.Type))
	}

	return auth.VerifyToken(ctx, a.verifier, m.Token)
}
