package result

import (
	"errors"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"finitefield.org/colorcraft-web/internal/navstate"
	"finitefield.org/colorcraft-web/internal/platform"
)

// ErrNotFound reports an unknown, expired or foreign view id.
var ErrNotFound = errors.New("result: view not found")

// Mounted couples a view with the browser outbox that receives its platform calls.
type Mounted struct {
	View    *View
	Browser *platform.Browser
}

type registryEntry struct {
	Mounted
	session string
	expires time.Time
}

// Registry tracks the live result view of each session. Mounting a new view
// for a session tears down the previous one.
type Registry struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	newID     func() string
	views     map[string]*registryEntry
	bySession map[string]string
}

// RegistryOption customizes a Registry.
type RegistryOption func(*Registry)

// WithClock overrides the expiry clock.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithIDGenerator overrides view id generation.
func WithIDGenerator(gen func() string) RegistryOption {
	return func(r *Registry) {
		if gen != nil {
			r.newID = gen
		}
	}
}

// NewRegistry returns a registry whose idle views expire after ttl.
func NewRegistry(ttl time.Duration, opts ...RegistryOption) *Registry {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	r := &Registry{
		ttl:       ttl,
		now:       time.Now,
		newID:     func() string { return ulid.Make().String() },
		views:     make(map[string]*registryEntry),
		bySession: make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ImagePath is the endpoint serving a view's image as an attachment.
func ImagePath(viewID string) string {
	return "/result/" + viewID + "/image"
}

// Mount creates and registers a Populated view for payload, releasing the
// session's previous view.
func (r *Registry) Mount(sessionID string, payload navstate.GenerationResult, opts Options) Mounted {
	id := r.newID()
	browser := platform.NewBrowser(platform.WithSaveHref(func(string) string { return ImagePath(id) }))
	m := Mounted{
		View:    NewView(id, &payload, browser, opts),
		Browser: browser,
	}

	r.mu.Lock()
	prev := r.detachLocked(sessionID)
	r.views[id] = &registryEntry{Mounted: m, session: sessionID, expires: r.now().Add(r.ttl)}
	r.bySession[sessionID] = id
	r.mu.Unlock()

	if prev != nil {
		prev.View.Unmount()
	}
	return m
}

// Get returns the view id owned by sessionID and extends its lifetime.
func (r *Registry) Get(sessionID, viewID string) (Mounted, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.views[viewID]
	if !ok || e.session != sessionID || !r.now().Before(e.expires) {
		return Mounted{}, ErrNotFound
	}
	e.expires = r.now().Add(r.ttl)
	return e.Mounted, nil
}

// Current returns the session's live view, if any.
func (r *Registry) Current(sessionID string) (Mounted, bool) {
	r.mu.Lock()
	id, ok := r.bySession[sessionID]
	r.mu.Unlock()
	if !ok {
		return Mounted{}, false
	}
	m, err := r.Get(sessionID, id)
	return m, err == nil
}

// Release unmounts the session's view. It is called when the session
// navigates to another page.
func (r *Registry) Release(sessionID string) bool {
	r.mu.Lock()
	prev := r.detachLocked(sessionID)
	r.mu.Unlock()
	if prev == nil {
		return false
	}
	prev.View.Unmount()
	return true
}

// Sweep unmounts expired views and returns how many were removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	now := r.now()
	var expired []*registryEntry
	for id, e := range r.views {
		if !now.Before(e.expires) {
			expired = append(expired, e)
			delete(r.views, id)
			if r.bySession[e.session] == id {
				delete(r.bySession, e.session)
			}
		}
	}
	r.mu.Unlock()

	for _, e := range expired {
		e.View.Unmount()
	}
	return len(expired)
}

// Len returns the number of registered views.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

func (r *Registry) detachLocked(sessionID string) *registryEntry {
	id, ok := r.bySession[sessionID]
	if !ok {
		return nil
	}
	delete(r.bySession, sessionID)
	e := r.views[id]
	delete(r.views, id)
	return e
}
