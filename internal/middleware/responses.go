package middleware

import (
	"encoding/json"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type errorBody struct {
	Status    int    `json:"status"`
	Message   string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

// WriteError answers htmx callers with a JSON body they can surface in place
// and everyone else with plain text. The request id is echoed either way.
func WriteError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	reqID := chimw.GetReqID(r.Context())
	if reqID != "" {
		w.Header().Set("X-Request-Id", reqID)
	}
	w.Header().Set("Cache-Control", "no-store")
	if IsHTMX(r.Context()) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(errorBody{Status: code, Message: msg, RequestID: reqID})
		return
	}
	http.Error(w, msg, code)
}
