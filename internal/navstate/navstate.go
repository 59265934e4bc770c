// Package navstate hands transient payloads from one view to the next.
//
// State is kept in memory, keyed by session, and consumed by the first
// reader. Nothing here is persisted or URL-encoded.
package navstate

import (
	"errors"
	"strings"
	"sync"
	"time"
)

// ErrNotFound reports that no pending state exists for the session.
var ErrNotFound = errors.New("navstate: no pending state")

// GenerationResult is produced by the create flow and consumed by the result view.
type GenerationResult struct {
	Prompt         string
	Style          string
	Complexity     string
	Theme          string // optional
	GeneratedImage string // URI, usually a data: URI
}

// HasImage reports whether the payload carries a generated image.
func (g GenerationResult) HasImage() bool {
	return strings.TrimSpace(g.GeneratedImage) != ""
}

// HasTheme reports whether the optional theme was supplied.
func (g GenerationResult) HasTheme() bool {
	return strings.TrimSpace(g.Theme) != ""
}

// Seed returns the inputs needed to pre-fill the create form.
func (g GenerationResult) Seed() FormSeed {
	return FormSeed{
		Prompt:     g.Prompt,
		Style:      g.Style,
		Complexity: g.Complexity,
		Theme:      g.Theme,
	}
}

// FormSeed pre-fills the create form (regenerate, templates).
type FormSeed struct {
	Prompt     string
	Style      string
	Complexity string
	Theme      string
}

type kind uint8

const (
	kindResult kind = iota + 1
	kindSeed
)

type slotKey struct {
	session string
	kind    kind
}

type slot struct {
	value   any
	expires time.Time
}

// Store keeps at most one pending value of each kind per session.
type Store struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	slots map[slotKey]slot
}

// NewStore returns a store whose entries expire after ttl.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Store{
		ttl:   ttl,
		now:   time.Now,
		slots: make(map[slotKey]slot),
	}
}

// SetClock overrides the time source (tests).
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now == nil {
		now = time.Now
	}
	s.now = now
}

// PutResult replaces the pending generation result for the session.
func (s *Store) PutResult(sessionID string, res GenerationResult) {
	s.put(sessionID, kindResult, res)
}

// TakeResult removes and returns the pending generation result.
func (s *Store) TakeResult(sessionID string) (GenerationResult, error) {
	v, err := s.take(sessionID, kindResult)
	if err != nil {
		return GenerationResult{}, err
	}
	return v.(GenerationResult), nil
}

// PutSeed replaces the pending create-form seed for the session.
func (s *Store) PutSeed(sessionID string, seed FormSeed) {
	s.put(sessionID, kindSeed, seed)
}

// TakeSeed removes and returns the pending create-form seed.
func (s *Store) TakeSeed(sessionID string) (FormSeed, error) {
	v, err := s.take(sessionID, kindSeed)
	if err != nil {
		return FormSeed{}, err
	}
	return v.(FormSeed), nil
}

// Sweep drops expired entries and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for k, v := range s.slots {
		if !now.Before(v.expires) {
			delete(s.slots, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of pending entries, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}

func (s *Store) put(sessionID string, k kind, v any) {
	if sessionID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[slotKey{session: sessionID, kind: k}] = slot{value: v, expires: s.now().Add(s.ttl)}
}

func (s *Store) take(sessionID string, k kind) (any, error) {
	if sessionID == "" {
		return nil, ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := slotKey{session: sessionID, kind: k}
	v, ok := s.slots[key]
	if !ok {
		return nil, ErrNotFound
	}
	delete(s.slots, key)
	if !s.now().Before(v.expires) {
		return nil, ErrNotFound
	}
	return v.value, nil
}
