package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Live sessions stay in a local map; the timer and state machine run in-process.
//   - Every recorded transition writes a JSON snapshot to quiz:session:{id}
//     with a TTL, so dashboards and other instances can read progress.
//   - Snapshots are best-effort; a Redis outage never fails a quiz operation.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Put(session *app.Session) {
	s.mu.Lock()
	s.sessions[session.ID()] = session
	s.mu.Unlock()
	s.Record(context.Background(), session.State())
}

func (s *SessionStore) Get(sessionID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	return session, ok
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	_ = s.client.Del(context.Background(), key(sessionID)).Err()
}

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

// Record writes the snapshot; errors are dropped.
func (s *SessionStore) Record(ctx context.Context, state domain.SessionState) {
	raw, err := json.Marshal(state)
	if err != nil {
		return
	}
	_ = s.client.Set(ctx, key(state.SessionID), raw, s.ttl).Err()
}

// Snapshot reads the last recorded state of a session, which may belong to
// another instance.
func (s *SessionStore) Snapshot(ctx context.Context, sessionID string) (domain.SessionState, error) {
	raw, err := s.client.Get(ctx, key(sessionID)).Bytes()
	if err == redis.Nil {
		return domain.SessionState{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.SessionState{}, fmt.Errorf("read snapshot: %w", err)
	}
	var state domain.SessionState
	if err := json.Unmarshal(raw, &state); err != nil {
		return domain.SessionState{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return state, nil
}

func key(sessionID string) string {
	return "quiz:session:" + sessionID
}
