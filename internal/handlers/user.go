package handlers

import (
	"net/http"

	"collabboard/internal/apperr"
	"collabboard/internal/auth"
)

// HandleHealth: GET /health, unauthenticated liveness probe
func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	apperr.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleWhoAmI: GET /api/ai/me, echoes the verified identity
func HandleWhoAmI(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		apperr.Write(w, apperr.NewAuthHeaderMalformed())
		return
	}
	apperr.WriteJSON(w, http.StatusOK, id)
}

// userIDReply: answer to a getUserId message
func userIDReply(id *auth.Identity) map[string]any {
	reply := map[string]any{
		"type":   "userId",
		"userId": "",
	}
	if id != nil {
		reply["userId"] = id.UID
	}
	return reply
}
