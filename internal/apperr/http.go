package apperr

import (
	"encoding/json"
	"net/http"
)

// Envelope is the JSON body of every error response.
type Envelope struct {
	Error  Code   `json:"error"`
	Detail string `json:"detail"`
}

// EnvelopeFor classifies err and returns its caller-safe envelope and status.
func EnvelopeFor(err error) (Envelope, int) {
	e := From(err)
	return Envelope{Error: e.Code, Detail: e.Message}, e.Status
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Write sends err as an error envelope. Only Message reaches the caller.
func Write(w http.ResponseWriter, err error) {
	env, status := EnvelopeFor(err)
	WriteJSON(w, status, env)
}
