package main

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// keyedLimiter hands out one token bucket per key (session id).
type keyedLimiter struct {
	limit rate.Limit
	burst int
	idle  time.Duration
	clock func() time.Time

	mu    sync.Mutex
	store map[string]*limiterEntry
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// newKeyedLimiter allows perWindow events per window and key. A non-positive
// perWindow disables limiting.
func newKeyedLimiter(perWindow int, window time.Duration) *keyedLimiter {
	if perWindow <= 0 || window <= 0 {
		return nil
	}
	return &keyedLimiter{
		limit: rate.Every(window / time.Duration(perWindow)),
		burst: perWindow,
		idle:  2 * window,
		clock: time.Now,
		store: make(map[string]*limiterEntry),
	}
}

func (l *keyedLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = "anonymous"
	}
	now := l.clock()
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.store[key]
	if !ok {
		l.pruneLocked(now)
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.store[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

func (l *keyedLimiter) pruneLocked(now time.Time) {
	for key, e := range l.store {
		if now.Sub(e.lastSeen) > l.idle {
			delete(l.store, key)
		}
	}
}
