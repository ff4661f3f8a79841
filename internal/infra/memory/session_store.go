package memory

import (
	"sync"

	"github.com/Laurent-studi/rtfmlara-sub002/internal/app"
	"github.com/Laurent-studi/rtfmlara-sub002/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
// Sessions are reachable by id and by join code; the code index is what
// keeps newly generated codes collision-free.
type SessionStore struct {
	mu     sync.RWMutex
	byID   map[string]*app.Session
	byCode map[string]*app.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		byID:   make(map[string]*app.Session),
		byCode: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Put(session *app.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.byCode[session.JoinCode()]; ok && !existing.Phase().Terminal() {
		return domain.ErrCodeTaken
	}
	s.byID[session.ID()] = session
	s.byCode[session.JoinCode()] = session
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
}
