// Package theme holds the light/dark preference shared by every view.
//
// Consumers read the preference through Reader, obtained from the request
// context. Only the holder of the *Controller (the toggle endpoint) can
// change it.
package theme

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"finitefield.org/colorcraft-web/internal/middleware"
)

const (
	dark  = "dark"
	light = "light"

	// ClientHintHeader carries the browser's prefers-color-scheme value.
	ClientHintHeader = "Sec-CH-Prefers-Color-Scheme"
)

// Preference is the persisted theme choice.
type Preference struct {
	IsDark bool
}

// String returns "dark" or "light".
func (p Preference) String() string {
	if p.IsDark {
		return dark
	}
	return light
}

// Parse maps "dark"/"light" to a preference; ok is false for anything else.
func Parse(v string) (Preference, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case dark:
		return Preference{IsDark: true}, true
	case light:
		return Preference{}, true
	}
	return Preference{}, false
}

// Reader is the read-only view handed to templates and handlers.
type Reader interface {
	IsDark() bool
}

// Controller owns the preference for one request and persists toggles.
type Controller struct {
	mu      sync.Mutex
	pref    Preference
	persist func(Preference)
}

// NewController returns a controller seeded with initial. persist, when set,
// is called with the new value after every toggle.
func NewController(initial Preference, persist func(Preference)) *Controller {
	return &Controller{pref: initial, persist: persist}
}

// IsDark reports the current preference.
func (c *Controller) IsDark() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pref.IsDark
}

// Toggle flips the preference and returns the new IsDark value.
func (c *Controller) Toggle() bool {
	c.mu.Lock()
	c.pref.IsDark = !c.pref.IsDark
	next := c.pref
	c.mu.Unlock()
	if c.persist != nil {
		c.persist(next)
	}
	return next.IsDark
}

type readOnly struct{ c *Controller }

func (r readOnly) IsDark() bool { return r.c.IsDark() }

type ctxKey struct{}

// WithController attaches c to ctx.
func WithController(ctx context.Context, c *Controller) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext returns a read-only view of the request's preference.
// Without a controller on the context the light theme is reported.
func FromContext(ctx context.Context) Reader {
	if c, ok := ctx.Value(ctxKey{}).(*Controller); ok && c != nil {
		return readOnly{c: c}
	}
	return readOnly{c: NewController(Preference{}, nil)}
}

// ControllerFromContext returns the writable controller. Only the toggle
// endpoint should call this.
func ControllerFromContext(ctx context.Context) (*Controller, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Controller)
	return c, ok && c != nil
}

// Middleware loads the preference from the session, initializing it once from
// the client hint or fallback, and installs a Controller on the request context.
// Must run after middleware.Session.
func Middleware(fallback Preference) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := middleware.GetSession(r)
			pref, ok := Parse(s.Theme)
			if !ok {
				pref = fallback
				if hinted, ok := Parse(r.Header.Get(ClientHintHeader)); ok {
					pref = hinted
				}
				s.Theme = pref.String()
				s.MarkDirty()
			}
			w.Header().Set("Accept-CH", ClientHintHeader)
			w.Header().Add("Vary", ClientHintHeader)

			c := NewController(pref, func(p Preference) {
				s.Theme = p.String()
				s.MarkDirty()
			})
			next.ServeHTTP(w, r.WithContext(WithController(r.Context(), c)))
		})
	}
}
