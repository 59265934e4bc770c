package middleware

import (
	"encoding/json"
	"net/http"
)

// HTMX marks requests coming from htmx so handlers/middlewares can adapt responses
func HTMX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		is := r.Header.Get("HX-Request") == "true"
		ctx := WithHTMX(r.Context(), is)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Trigger sets the HX-Trigger response header with the given client events.
// Must be called before the response body is written.
func Trigger(w http.ResponseWriter, events map[string]any) {
	if len(events) == 0 {
		return
	}
	raw, err := json.Marshal(events)
	if err != nil {
		return
	}
	w.Header().Set("HX-Trigger", string(raw))
}

// Redirect sends the client to target: via HX-Redirect for htmx requests, 303 otherwise.
func Redirect(w http.ResponseWriter, r *http.Request, target string) {
	if IsHTMX(r.Context()) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// Refresh asks htmx callers to reload the page. htmx leaves the DOM alone on
// 4xx responses, so stale fragments fall back to a full render this way.
func Refresh(w http.ResponseWriter, r *http.Request) {
	if IsHTMX(r.Context()) {
		w.Header().Set("HX-Refresh", "true")
	}
}
