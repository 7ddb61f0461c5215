package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/use-agent/rankcheck/tracker"
)

// Session is one operator's lookup context: a single tracker slot plus an
// optional callback for completions.
type Session struct {
	ID          string
	CallbackURL string
	Tracker     *tracker.Tracker
	CreatedAt   time.Time
}

// entry holds a session with its last access timestamp.
type entry struct {
	session  *Session
	lastSeen time.Time
}

// Factory builds the tracker for a new session.
type Factory func(id, callbackURL string) *tracker.Tracker

// Registry is an in-memory session store. It is safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	store       map[string]*entry
	maxSessions int
	ttl         time.Duration
	factory     Factory
	done        chan struct{}
	closeOnce   sync.Once
}

// NewRegistry creates a Registry holding at most maxSessions sessions.
// A background goroutine runs every minute to close and evict sessions
// untouched for longer than ttl.
func NewRegistry(maxSessions int, ttl time.Duration, factory Factory) *Registry {
	r := &Registry{
		store:       make(map[string]*entry),
		maxSessions: maxSessions,
		ttl:         ttl,
		factory:     factory,
		done:        make(chan struct{}),
	}

	go r.cleanupLoop()
	return r
}

// Create registers a new idle session. If the registry is at capacity the
// least recently used session is evicted to make room.
func (r *Registry) Create(callbackURL string) *Session {
	id := uuid.NewString()
	s := &Session{
		ID:          id,
		CallbackURL: callbackURL,
		Tracker:     r.factory(id, callbackURL),
		CreatedAt:   time.Now(),
	}

	var evicted *Session
	r.mu.Lock()
	if len(r.store) >= r.maxSessions {
		evicted = r.evictOldestLocked()
	}
	r.store[id] = &entry{session: s, lastSeen: s.CreatedAt}
	r.mu.Unlock()

	if evicted != nil {
		go evicted.Tracker.Close()
	}
	return s
}

// Get returns the session and marks it as used.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.store[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = time.Now()
	return e.session, true
}

// Delete removes a session and cancels its in-flight lookups.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	e, ok := r.store[id]
	delete(r.store, id)
	r.mu.Unlock()

	if ok {
		e.session.Tracker.Close()
	}
	return ok
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.store)
}

// Close stops the cleanup loop and closes every session.
func (r *Registry) Close() {
	r.closeOnce.Do(func() { close(r.done) })

	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.store))
	for id, e := range r.store {
		sessions = append(sessions, e.session)
		delete(r.store, id)
	}
	r.mu.Unlock()

	for _, s := range sessions {
		s.Tracker.Close()
	}
}

func (r *Registry) evictOldestLocked() *Session {
	var oldestID string
	var oldest time.Time
	for id, e := range r.store {
		if oldestID == "" || e.lastSeen.Before(oldest) {
			oldestID, oldest = id, e.lastSeen
		}
	}
	if oldestID == "" {
		return nil
	}
	s := r.store[oldestID].session
	delete(r.store, oldestID)
	return s
}

// evictExpired removes sessions last used before now-ttl and returns them.
func (r *Registry) evictExpired(now time.Time) []*Session {
	cutoff := now.Add(-r.ttl)
	var expired []*Session
	r.mu.Lock()
	for id, e := range r.store {
		if e.lastSeen.Before(cutoff) {
			expired = append(expired, e.session)
			delete(r.store, id)
		}
	}
	r.mu.Unlock()
	return expired
}

// cleanupLoop evicts idle sessions every minute.
func (r *Registry) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-r.done:
			return
		case now := <-ticker.C:
			for _, s := range r.evictExpired(now) {
				s.Tracker.Close()
			}
		}
	}
}
