package portal

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultIdleTimeout is how long a session survives without a request.
const DefaultIdleTimeout = 24 * time.Hour

type entry struct {
	session  *Session
	lastSeen time.Time
}

// Sessions holds one state machine per browser, in memory only. Sessions idle
// for longer than the idle timeout are dropped when new ones are created.
type Sessions struct {
	allow   *AllowList
	fetcher CreationsFetcher
	logger  *slog.Logger
	idle    time.Duration
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

func NewSessions(allow *AllowList, fetcher CreationsFetcher, logger *slog.Logger) *Sessions {
	return &Sessions{
		allow:    allow,
		fetcher:  fetcher,
		logger:   logger,
		idle:     DefaultIdleTimeout,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// Lookup returns the live session for id without creating one.
func (s *Sessions) Lookup(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if s.expired(e, now) {
		delete(s.sessions, id)
		return nil, false
	}
	e.lastSeen = now
	return e.session, true
}

// Get returns the session for id, creating a fresh one under a new id when id
// is empty, unknown or expired.
func (s *Sessions) Get(id string) (string, *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.sessions[id]; ok && !s.expired(e, now) {
		e.lastSeen = now
		return id, e.session
	}

	s.sweep(now)
	id = uuid.NewString()
	sess := NewSession(s.allow, s.fetcher, s.logger.With("session", id))
	s.sessions[id] = &entry{session: sess, lastSeen: now}
	return id, sess
}

func (s *Sessions) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Sessions) expired(e *entry, now time.Time) bool {
	return now.Sub(e.lastSeen) > s.idle
}

// sweep must be called with mu held.
func (s *Sessions) sweep(now time.Time) {
	for id, e := range s.sessions {
		if s.expired(e, now) {
			delete(s.sessions, id)
		}
	}
}
