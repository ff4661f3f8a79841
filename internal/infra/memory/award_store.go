package memory

import (
	"context"
	"sync"

	"github.com/Laurent-studi/rtfmlara-sub002/internal/domain"
)

// AwardStore is an in-memory implementation of app.AwardStore. The
// (user, achievable) key is checked and written under one lock, so of two
// racing CreateAward calls exactly one observes created=true.
type AwardStore struct {
	mu           sync.RWMutex
	awards       map[string]map[string]domain.Award // userID -> achievableID -> award
	trophyTotals map[string]int
}

func NewAwardStore() *AwardStore {
	return &AwardStore{
		awards:       make(map[string]map[string]domain.Award),
		trophyTotals: make(map[string]int),
	}
}

func (s *AwardStore) CreateAward(_ context.Context, award domain.Award) (domain.Award, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.awards[award.UserID][award.AchievableID]; ok {
		return existing, false, nil
	}
	if s.awards[award.UserID] == nil {
		s.awards[award.UserID] = make(map[string]domain.Award)
	}
	s.awards[award.UserID][award.AchievableID] = award
	return award, true, nil
}

func (s *AwardStore) AwardsFor(_ context.Context, userID string) ([]domain.Award, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Award, 0, len(s.awards[userID]))
	for _, award := range s.awards[userID] {
		out = append(out, award)
	}
	return out, nil
}

func (s *AwardStore) SaveTrophyTotal(_ context.Context, userID string, total int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trophyTotals[userID] = total
	return nil
}

// TrophyTotal returns the persisted trophy point aggregate for a user.
func (s *AwardStore) TrophyTotal(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trophyTotals[userID]
}
