package memory

import (
	"context"
	"sync"
	"time"

	"scholarship-test-service/internal/domain"
)

// SessionStore is an in-memory auth session store keyed by token.
type SessionStore struct {
	clock    func() time.Time
	mu       sync.RWMutex
	sessions map[string]sessionEntry
}

type sessionEntry struct {
	userID    int64
	expiresAt time.Time
}

func NewSessionStore() *SessionStore {
	return NewSessionStoreWithClock(time.Now)
}

// NewSessionStoreWithClock allows deterministic expiry in tests.
func NewSessionStoreWithClock(clock func() time.Time) *SessionStore {
	return &SessionStore{
		clock:    clock,
		sessions: make(map[string]sessionEntry),
	}
}

func (s *SessionStore) Create(_ context.Context, token string, userID int64, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = sessionEntry{userID: userID, expiresAt: s.clock().Add(ttl)}
	return nil
}

func (s *SessionStore) Lookup(_ context.Context, token string) (int64, error) {
	now := s.clock()
	s.mu.RLock()
	entry, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return 0, domain.ErrSessionNotFound
	}
	if !entry.expiresAt.After(now) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return 0, domain.ErrSessionNotFound
	}
	return entry.userID, nil
}

func (s *SessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}
