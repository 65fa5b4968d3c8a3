package auth

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"collabboard/internal/config"
)

// StaticVerifier checks tokens against a fixed table. Used in development
// and tests.
type StaticVerifier struct {
	tokens map[string]Identity
}

// NewStaticVerifier builds a verifier from token -> "uid:email" entries.
// The email part is optional.
func NewStaticVerifier(table map[string]string) (*StaticVerifier, error) {
	tokens := make(map[string]Identity, len(table))
	for token, who := range table {
		uid, email, _ := strings.Cut(who, ":")
		if token == "" || uid == "" {
			return nil, fmt.Errorf("static token entry %q: token and uid are required", who)
		}
		tokens[token] = Identity{UID: uid, Email: email}
	}
	return &StaticVerifier{tokens: tokens}, nil
}

func (v *StaticVerifier) Verify(_ context.Context, token string) (*Identity, error) {
	for known, id := range v.tokens {
		if subtle.ConstantTimeCompare([]byte(known), []byte(token)) == 1 {
			return &id, nil
		}
	}
	return nil, ErrUnknownToken
}

// RemoteVerifier asks an identity endpoint about each token. The endpoint
// receives the bearer token unchanged and answers {"uid", "email"} with 200
// for a valid token.
type RemoteVerifier struct {
	url    string
	client *http.Client
}

const maxVerifyResponse = 64 << 10

func NewRemoteVerifier(url string, client *http.Client) *RemoteVerifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &RemoteVerifier{url: url, client: client}
}

func (v *RemoteVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxVerifyResponse))
	if err != nil {
		return nil, fmt.Errorf("read verify response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("verify endpoint: %s", resp.Status)
	}

	var id Identity
	if err := json.Unmarshal(body, &id); err != nil {
		return nil, fmt.Errorf("decode verify response: %w", err)
	}
	return &id, nil
}

// NewVerifier builds the verifier selected by cfg.Mode.
func NewVerifier(cfg config.AuthConfig, client *http.Client) (Verifier, error) {
	switch cfg.Mode {
	case "", "static":
		return NewStaticVerifier(cfg.StaticTokens)
	case "remote":
		if cfg.VerifyURL == "" {
			return nil, fmt.Errorf("auth mode remote requires a verify url")
		}
		return NewRemoteVerifier(cfg.VerifyURL, client), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q (use: static, remote)", cfg.Mode)
	}
}
