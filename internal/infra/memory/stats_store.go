package memory

import (
	"context"
	"sync"

	"github.com/Laurent-studi/rtfmlara-sub002/internal/domain"
)

// StatsStore aggregates per-user completion statistics in memory. It serves
// as both the recorder the session service writes on completion and the
// source the achievement evaluator reads criteria from.
type StatsStore struct {
	mu    sync.RWMutex
	stats map[string]domain.UserStats
}

func NewStatsStore() *StatsStore {
	return &StatsStore{stats: make(map[string]domain.UserStats)}
}

func (s *StatsStore) UserStats(_ context.Context, userID string) (domain.UserStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if stats, ok := s.stats[userID]; ok {
		return stats, nil
	}
	return domain.UserStats{UserID: userID}, nil
}

func (s *StatsStore) RecordCompletion(_ context.Context, userID string, score int) (domain.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := s.stats[userID]
	stats.UserID = userID
	stats.QuizzesCompleted++
	stats.TotalScore += score
	stats.CurrentStreak++
	if score > stats.BestScore {
		stats.BestScore = score
	}
	s.stats[userID] = stats
	return stats, nil
}

// ResetStreak clears the consecutive-completion counter, e.g. when a user
// abandons a session.
func (s *StatsStore) ResetStreak(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := s.stats[userID]
	stats.CurrentStreak = 0
	s.stats[userID] = stats
}
