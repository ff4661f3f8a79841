package redis

import (
	"context"
	"sync"
	"time"

	"github.com/Laurent-studi/rtfmlara-sub002/internal/app"
	"github.com/Laurent-studi/rtfmlara-sub002/internal/domain"
	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Sessions themselves stay in a local in-memory map so the state machine
//     keeps its single-writer lock discipline inside one process.
//   - Redis reserves join codes with SET NX, which makes code generation
//     collision-free across instances, and marks session liveness with a TTL.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
	mu     sync.RWMutex
	byID   map[string]*app.Session
	byCode map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client: client,
		ttl:    ttl,
		byID:   make(map[string]*app.Session),
		byCode: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Put(session *app.Session) error {
	ok, err := s.client.SetNX(context.Background(), s.codeKey(session.JoinCode()), session.ID(), s.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrCodeTaken
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[session.ID()] = session
	s.byCode[session.JoinCode()] = session
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.liveKey(session.ID()), "1", s.ttl).Err()
	return nil
}

func (s *SessionStore) Get(sessionID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.byID[sessionID]
	return session, ok
}

func (s *SessionStore) GetByCode(joinCode string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.byCode[joinCode]
	return session, ok
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.byID[sessionID]
	if !ok {
		return
	}
	delete(s.byID, sessionID)
	delete(s.byCode, session.JoinCode())
	_ = s.client.Del(context.Background(), s.liveKey(sessionID), s.codeKey(session.JoinCode())).Err()
}

func (s *SessionStore) liveKey(sessionID string) string {
	return "session:live:" + sessionID
}

func (s *SessionStore) codeKey(joinCode string) string {
	return "session:code:" + joinCode
}
