package widget

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrSessionNotFound is returned when no state is stored for a session ID.
	ErrSessionNotFound = errors.New("widget session not found")
)

type sessionEntry struct {
	state     ViewState
	updatedAt time.Time
}

// SessionStore is a concurrency-safe in-memory map from session ID to the
// widget's ViewState. It keeps only the latest state per session.
type SessionStore struct {
	mu sync.RWMutex

	data map[string]sessionEntry

	// retention configuration
	maxSessions int           // max number of sessions kept
	maxAge      time.Duration // max idle time of a session

	now func() time.Time
}

// NewSessionStore creates a new SessionStore with optional limits.
// Limits <= 0 are treated as unlimited.
func NewSessionStore(maxSessions int, maxAge time.Duration) *SessionStore {
	return &SessionStore{
		data:        make(map[string]sessionEntry),
		maxSessions: maxSessions,
		maxAge:      maxAge,
		now:         time.Now,
	}
}

// NewID returns a fresh random session ID.
func (s *SessionStore) NewID() string {
	return uuid.NewString()
}

// Save replaces the state stored for id and enforces retention.
func (s *SessionStore) Save(id string, state ViewState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.data[id] = sessionEntry{state: state, updatedAt: now}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := now.Add(-s.maxAge)
		for k, e := range s.data {
			if e.updatedAt.Before(cutoff) {
				delete(s.data, k)
			}
		}
	}

	// Enforce retention by count, dropping the least recently updated sessions.
	for s.maxSessions > 0 && len(s.data) > s.maxSessions {
		var (
			oldestKey string
			oldestAt  time.Time
		)
		for k, e := range s.data {
			if k == id {
				continue
			}
			if oldestKey == "" || e.updatedAt.Before(oldestAt) {
				oldestKey, oldestAt = k, e.updatedAt
			}
		}
		if oldestKey == "" {
			break
		}
		delete(s.data, oldestKey)
	}
}

// Get returns the state stored for id.
func (s *SessionStore) Get(id string) (ViewState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[id]
	if !ok {
		return ViewState{}, ErrSessionNotFound
	}
	if s.maxAge > 0 && e.updatedAt.Before(s.now().Add(-s.maxAge)) {
		return ViewState{}, ErrSessionNotFound
	}
	return e.state, nil
}

// Len reports the number of stored sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
