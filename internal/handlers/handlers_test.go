package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"collabboard/internal/agent"
	"collabboard/internal/apperr"
	"collabboard/internal/auth"
	"collabboard/internal/llm"
	"collabboard/internal/middleware"
	"collabboard/internal/object"
	"collabboard/internal/tools"
)

const validBody = `{"command":"add a note","boardState":[{"id":"n1","type":"stickyNote","x":1,"y":2}]}`

type fixture struct {
	handler http.Handler
	seen    []agent.Command
}

func newFixture(t *testing.T, commander Commander) *fixture {
	t.Helper()
	f := &fixture{}
	if commander == nil {
		commander = CommanderFunc(func(ctx context.Context, cmd agent.Command) (*agent.Result, error) {
			f.seen = append(f.seen, cmd)
			return &agent.Result{
				Actions: []object.Action{object.NewDelete("n1")},
				Message: "Removed it.",
			}, nil
		})
	}

	verifier, err := auth.NewStaticVerifier(map[string]string{"good": "u-1:u1@example.com"})
	require.NoError(t, err)

	commands := NewCommandHandler(commander, object.NewValidator(),
		agent.RequestLimits{MaxBoardObjects: 3, MaxCommandChars: 100}, zap.NewNop())

	f.handler = NewRouter(Deps{
		Commands:       commands,
		Verifier:       verifier,
		Limiter:        middleware.NewClientLimiter(600, 100),
		AllowedOrigins: []string{"http://localhost:5173"},
		MaxBodyBytes:   1024,
		Logger:         zap.NewNop(),
	})
	return f
}

func (f *fixture) post(body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/ai/command", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func envelope(t *testing.T, rec *httptest.ResponseRecorder) apperr.Envelope {
	t.Helper()
	var env apperr.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestCommand_WhenValid_ShouldReturnActions(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.post(validBody, "good")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t,
		`{"actions":[{"type":"delete","objectId":"n1"}],"message":"Removed it.","error":null}`,
		rec.Body.String())

	require.Len(t, f.seen, 1)
	assert.Equal(t, "add a note", f.seen[0].Text)
	assert.Equal(t, agent.DefaultBoardID, f.seen[0].BoardID)
	assert.Nil(t, f.seen[0].Viewport)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestCommand_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		token  string
		status int
		code   apperr.Code
	}{
		{name: "no auth", body: validBody, status: 401, code: apperr.CodeAuthHeaderMalformed},
		{name: "bad token", body: validBody, token: "bad", status: 401, code: apperr.CodeTokenInvalid},
		{name: "not json", body: `{"command":`, token: "good", status: 400, code: apperr.CodeInvalidRequest},
		{name: "missing board", body: `{"command":"x"}`, token: "good", status: 400, code: apperr.CodeInvalidRequest},
		{name: "unknown object type", body: `{"command":"x","boardState":[{"id":"a","type":"blob"}]}`, token: "good", status: 400, code: apperr.CodeInvalidRequest},
		{
			name:   "too many objects",
			body:   `{"command":"x","boardState":[{"id":"a","type":"text"},{"id":"b","type":"text"},{"id":"c","type":"text"},{"id":"d","type":"text"}]}`,
			token:  "good",
			status: 400,
			code:   apperr.CodeInvalidRequest,
		},
		{name: "too large", body: `{"command":"` + strings.Repeat("x", 2000) + `","boardState":[]}`, token: "good", status: 413, code: apperr.CodePayloadTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			rec := f.post(tt.body, tt.token)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, envelope(t, rec).Error)
			assert.Empty(t, f.seen)
		})
	}
}

func TestCommand_WhenLLMFails_ShouldReturnGeneric500(t *testing.T) {
	client := llm.ClientFunc(func(ctx context.Context, req llm.Request) (*llm.Response, error) {
		return nil, errors.New("openai api: 401 Unauthorized: Incorrect API key provided: sk-live-abc")
	})
	orch := agent.New(client, tools.MustCatalog(), zap.NewNop(), agent.Options{MaxBulkCount: 10})
	f := newFixture(t, orch)

	rec := f.post(validBody, "good")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"UPSTREAM_LLM_FAILURE","detail":"AI request failed"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "sk-live")
}

func TestCommand_EndToEndWithOrchestrator(t *testing.T) {
	client := llm.ClientFunc(func(ctx context.Context, req llm.Request) (*llm.Response, error) {
		return &llm.Response{
			Text: "Moved it.",
			ToolCalls: []tools.Call{
				{Name: "moveObject", Arguments: json.RawMessage(`{"objectId":"n1","x":50,"y":60}`)},
			},
		}, nil
	})
	orch := agent.New(client, tools.MustCatalog(), zap.NewNop(), agent.Options{MaxBulkCount: 10})
	f := newFixture(t, orch)

	rec := f.post(validBody, "good")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t,
		`{"actions":[{"type":"update","objectId":"n1","properties":{"x":50,"y":60}}],"message":"Moved it.","error":null}`,
		rec.Body.String())
}

func TestHealth(t *testing.T) {
	f := newFixture(t, nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestWhoAmI(t *testing.T) {
	f := newFixture(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/ai/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"uid":"u-1","email":"u1@example.com"}`, rec.Body.String())
}

func TestPreflight(t *testing.T) {
	f := newFixture(t, nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/ai/command", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "authorization,content-type")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMessageRouter(t *testing.T) {
	commands := NewCommandHandler(CommanderFunc(func(ctx context.Context, cmd agent.Command) (*agent.Result, error) {
		return &agent.Result{Actions: []object.Action{object.NewDelete(cmd.Board[0].ID)}, Message: "ok"}, nil
	}), object.NewValidator(), agent.RequestLimits{}, zap.NewNop())
	mr := NewMessageRouter(commands, zap.NewNop())
	ctx := auth.WithIdentity(context.Background(), &auth.Identity{UID: "u-7"})

	tests := []struct {
		name string
		msg  string
		want string
	}{
		{
			name: "command",
			msg:  `{"type":"command","requestId":"r1","command":"clear","boardState":[{"id":"a","type":"frame"}]}`,
			want: `{"type":"result","requestId":"r1","actions":[{"type":"delete","objectId":"a"}],"message":"ok","error":null}`,
		},
		{
			name: "invalid command",
			msg:  `{"type":"command","requestId":"r2","command":"","boardState":[]}`,
			want: `{"type":"error","requestId":"r2","error":"INVALID_REQUEST","detail":"'command' is required"}`,
		},
		{
			name: "user id",
			msg:  `{"type":"getUserId"}`,
			want: `{"type":"userId","userId":"u-7"}`,
		},
		{
			name: "unknown type",
			msg:  `{"type":"cursor","requestId":"r3"}`,
			want: `{"type":"error","requestId":"r3","error":"INVALID_REQUEST","detail":"unknown message type: cursor"}`,
		},
		{
			name: "garbage",
			msg:  `not json`,
			want: `{"type":"error","error":"INVALID_REQUEST","detail":"invalid message"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := mr.Route(ctx, []byte(tt.msg))
			b, err := json.Marshal(reply)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(b))
		})
	}
}
