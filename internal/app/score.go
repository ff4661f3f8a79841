package app

import (
	"math"
	"sort"

	"github.com/Laurent-studi/rtfmlara-sub002/internal/domain"
)

const (
	defaultQuestionPoints = 1000
	defaultTimeLimitMs    = 30000
)

// ScoreAnswer computes the points for one answer. Correct answers decay
// linearly with elapsed time and never go negative; incorrect answers and
// timeouts score zero.
func ScoreAnswer(correct bool, elapsedMs, timeLimitMs, maxPoints int, multiplier float64) int {
	if !correct {
		return 0
	}
	if timeLimitMs <= 0 {
		timeLimitMs = defaultTimeLimitMs
	}
	remaining := 1.0 - float64(elapsedMs)/float64(timeLimitMs)
	if remaining < 0 {
		remaining = 0
	}
	// Clients report elapsed time; a negative value must not score above the ceiling.
	if remaining > 1 {
		remaining = 1
	}
	points := int(math.Round(float64(maxPoints) * multiplier * remaining))
	if points < 0 {
		points = 0
	}
	return points
}

// evaluateSelection checks a selection against a question's correct-answer set.
// Every chosen option must exist; correctness is set-equality, so multi-select
// questions get no partial credit.
func evaluateSelection(question domain.Question, optionIDs []string) (bool, error) {
	if len(optionIDs) == 0 {
		return false, nil
	}
	known := make(map[string]bool, len(question.Options))
	for _, opt := range question.Options {
		known[opt.ID] = opt.Correct
	}

	chosen := make(map[string]struct{}, len(optionIDs))
	for _, id := range optionIDs {
		if _, ok := known[id]; !ok {
			return false, domain.ErrOptionNotFound
		}
		chosen[id] = struct{}{}
	}

	correct := question.CorrectOptionIDs()
	if len(chosen) != len(correct) {
		return false, nil
	}
	for _, id := range correct {
		if _, ok := chosen[id]; !ok {
			return false, nil
		}
	}
	return true, nil
}

// questionPoints resolves the per-question maximum with its default.
func questionPoints(q domain.Question) int {
	if q.Points > 0 {
		return q.Points
	}
	return defaultQuestionPoints
}

// rankParticipants orders score ledgers into a total order: score descending,
// ties broken by earliest join, then by participant ID so two calls over the
// same state always agree.
func rankParticipants(participants []*domain.Participant) []domain.LeaderboardEntry {
	sorted := make([]*domain.Participant, len(participants))
	copy(sorted, participants)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		if !sorted[i].JoinedAt.Equal(sorted[j].JoinedAt) {
			return sorted[i].JoinedAt.Before(sorted[j].JoinedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})

	entries := make([]domain.LeaderboardEntry, len(sorted))
	for i, p := range sorted {
		entries[i] = domain.LeaderboardEntry{
			ParticipantID: p.ID,
			DisplayName:   p.DisplayName,
			Score:         p.Score,
			Rank:          i + 1,
		}
	}
	return entries
}
