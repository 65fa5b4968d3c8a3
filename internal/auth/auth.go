package auth

import (
	"context"
	"errors"
	"strings"

	"collabboard/internal/apperr"
)

// ErrUnknownToken is returned by verifiers that do not recognise a token.
var ErrUnknownToken = errors.New("unknown token")

// Identity is the authenticated caller.
type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email,omitempty"`
}

// Verifier checks an opaque bearer token with an identity provider.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(ctx context.Context, token string) (*Identity, error)

func (f VerifierFunc) Verify(ctx context.Context, token string) (*Identity, error) {
	return f(ctx, token)
}

// ParseBearer extracts the token from an Authorization header value.
// Anything other than "Bearer <token>" is AUTH_HEADER_MALFORMED.
func ParseBearer(header string) (string, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", apperr.NewAuthHeaderMalformed()
	}
	token := strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", apperr.NewAuthHeaderMalformed()
	}
	return token, nil
}

// Authenticate parses the header and verifies the token. Verifier failures
// of any kind become TOKEN_INVALID; the cause is kept for logging.
func Authenticate(ctx context.Context, v Verifier, header string) (*Identity, error) {
	token, err := ParseBearer(header)
	if err != nil {
		return nil, err
	}
	return VerifyToken(ctx, v, token)
}

// VerifyToken verifies a bare token, as sent over the WebSocket channel.
func VerifyToken(ctx context.Context, v Verifier, token string) (*Identity, error) {
	if token == "" {
		return nil, apperr.NewTokenInvalid(ErrUnknownToken)
	}
	id, err := v.Verify(ctx, token)
	if err != nil {
		return nil, apperr.NewTokenInvalid(err)
	}
	if id == nil || id.UID == "" {
		return nil, apperr.NewTokenInvalid(errors.New("verifier returned no uid"))
	}
	return id, nil
}

type ctxKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored by WithIdentity.
func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(*Identity)
	return id, ok && id != nil
}
