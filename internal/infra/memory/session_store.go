package memory

import (
	"context"
	"sync"

	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Put(session *app.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID()] = session
}

func (s *SessionStore) Get(sessionID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	return session, ok
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Each visits a stable copy of the registered sessions.
func (s *SessionStore) Each(fn func(*app.Session)) {
	s.mu.RLock()
	list := make([]*app.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		list = append(list, session)
	}
	s.mu.RUnlock()
	for _, session := range list {
		fn(session)
	}
}

// Record is a no-op: the live session already is the state.
func (s *SessionStore) Record(context.Context, domain.SessionState) {}
