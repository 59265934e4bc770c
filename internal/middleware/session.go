package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"
)

const sessionCookieName = "COLORCRAFT_WEB_SESSION"

// SessionData is persisted in the signed session cookie. Large or transient
// state (generation payloads, mounted views) lives in server-side stores keyed by ID.
type SessionData struct {
	ID        string    `json:"id"`
	Locale    string    `json:"locale,omitempty"`
	Theme     string    `json:"theme,omitempty"`
	CSRFToken string    `json:"csrf,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	// internal dirty flag; not serialized
	dirty bool `json:"-"`
}

// SessionOptions configures cookie signing.
type SessionOptions struct {
	SigningKey string
	Secure     bool
}

var sessionCfg = struct {
	mu     sync.RWMutex
	key    []byte
	secure bool
}{}

// ConfigureSession installs the cookie signing key. When no key is provided a
// process-ephemeral one is generated and ephemeral is reported as true.
func ConfigureSession(opts SessionOptions) (ephemeral bool) {
	key := []byte(strings.TrimSpace(opts.SigningKey))
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			key = []byte("insecure-dev-key-please-set-COLORCRAFT_WEB_SESSION_SIGNING_KEY")
		}
		ephemeral = true
	}
	sessionCfg.mu.Lock()
	sessionCfg.key = key
	sessionCfg.secure = opts.Secure
	sessionCfg.mu.Unlock()
	return ephemeral
}

func sessionSettings() ([]byte, bool) {
	sessionCfg.mu.RLock()
	key, secure := sessionCfg.key, sessionCfg.secure
	sessionCfg.mu.RUnlock()
	if len(key) == 0 {
		ConfigureSession(SessionOptions{})
		return sessionSettings()
	}
	return key, secure
}

// Session loads or initializes a session and stores it in request context.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sd, fromCookie := readSessionCookie(r)
		if sd.ID == "" {
			sd.ID = randID()
			sd.CreatedAt = time.Now().UTC()
			sd.UpdatedAt = sd.CreatedAt
			sd.CSRFToken = newCSRFToken()
			sd.dirty = true
		}
		ctx := WithSession(r.Context(), sd)
		rw := NewResponseRecorder(w)
		// ensure cookie is set just before first write if needed
		rw.SetBeforeWrite(func(w http.ResponseWriter) {
			if sd.dirty || !fromCookie {
				writeSessionCookie(w, sd)
			}
		})
		next.ServeHTTP(rw, r.WithContext(ctx))
		// If nothing was written yet (e.g., HEAD), persist cookie now
		if !rw.Wrote() && (sd.dirty || !fromCookie) {
			writeSessionCookie(w, sd)
		}
	})
}

// WithSession attaches sd to ctx, as Session does for incoming requests.
func WithSession(ctx context.Context, sd *SessionData) context.Context {
	return context.WithValue(ctx, ctxKeySession, sd)
}

// GetSession returns session data from context
func GetSession(r *http.Request) *SessionData {
	return SessionFromContext(r.Context())
}

// SessionFromContext returns the session attached by Session, or an empty
// detached value when the middleware did not run.
func SessionFromContext(ctx context.Context) *SessionData {
	if v := ctx.Value(ctxKeySession); v != nil {
		if sd, ok := v.(*SessionData); ok {
			return sd
		}
	}
	return &SessionData{}
}

// MarkDirty flags the session for writing at end of request
func (s *SessionData) MarkDirty() { s.dirty = true; s.UpdatedAt = time.Now().UTC() }

// readSessionCookie parses and verifies the session cookie
func readSessionCookie(r *http.Request) (*SessionData, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return &SessionData{}, false
	}
	payloadPart, sigPart, ok := strings.Cut(c.Value, ".")
	if !ok {
		return &SessionData{}, false
	}
	payloadB, err := base64.RawURLEncoding.DecodeString(payloadPart)
	if err != nil {
		return &SessionData{}, false
	}
	sigB, err := base64.RawURLEncoding.DecodeString(sigPart)
	if err != nil {
		return &SessionData{}, false
	}
	key, _ := sessionSettings()
	mac := hmac.New(sha256.New, key)
	mac.Write(payloadB)
	if !hmac.Equal(sigB, mac.Sum(nil)) {
		return &SessionData{}, false
	}
	var sd SessionData
	if err := json.Unmarshal(payloadB, &sd); err != nil {
		return &SessionData{}, false
	}
	return &sd, true
}

func writeSessionCookie(w http.ResponseWriter, sd *SessionData) {
	key, secure := sessionSettings()
	b, _ := json.Marshal(sd)
	payload := base64.RawURLEncoding.EncodeToString(b)
	mac := hmac.New(sha256.New, key)
	mac.Write(b)
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    payload + "." + sig,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(30 * 24 * time.Hour),
	})
}

func randID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
