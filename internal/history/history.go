// Package history keeps each session's recent generations in memory.
package history

import (
	"errors"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"finitefield.org/colorcraft-web/internal/navstate"
)

// ErrNotFound is returned for unknown entry ids.
var ErrNotFound = errors.New("history: entry not found")

// DefaultLimit bounds entries kept per session.
const DefaultLimit = 12

// Entry is one past generation.
type Entry struct {
	ID        string
	Result    navstate.GenerationResult
	CreatedAt time.Time
}

// Store is a bounded, newest-first list per session.
type Store struct {
	mu      sync.Mutex
	limit   int
	now     func() time.Time
	entries map[string][]Entry
}

// NewStore returns a store keeping at most limit entries per session.
func NewStore(limit int) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Store{limit: limit, now: time.Now, entries: make(map[string][]Entry)}
}

// Add records res for the session and returns the new entry.
func (s *Store) Add(sessionID string, res navstate.GenerationResult) Entry {
	e := Entry{ID: ulid.Make().String(), Result: res, CreatedAt: s.now().UTC()}
	if sessionID == "" {
		return e
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list := append([]Entry{e}, s.entries[sessionID]...)
	if len(list) > s.limit {
		list = list[:s.limit]
	}
	s.entries[sessionID] = list
	return e
}

// List returns the session's entries, newest first.
func (s *Store) List(sessionID string) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.entries[sessionID]...)
}

// Get returns one entry of the session.
func (s *Store) Get(sessionID, id string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries[sessionID] {
		if e.ID == id {
			return e, nil
		}
	}
	return Entry{}, ErrNotFound
}
