package app

import (
	"context"
	"time"

	"github.com/Laurent-studi/rtfmlara-sub002/internal/domain"
)

// StatsSource serves freshly aggregated user statistics for criteria checks.
type StatsSource interface {
	UserStats(ctx context.Context, userID string) (domain.UserStats, error)
}

// AwardStore persists awards with (user, achievable) uniqueness. CreateAward
// reports created=false when the award already existed, returning the stored
// row unchanged; a concurrent duplicate attempt must observe the winner's row
// rather than erroring.
type AwardStore interface {
	CreateAward(ctx context.Context, award domain.Award) (domain.Award, bool, error)
	AwardsFor(ctx context.Context, userID string) ([]domain.Award, error)
	SaveTrophyTotal(ctx context.Context, userID string, total int) error
}

// Rule pairs an achievable with its machine-evaluable unlock criteria.
// Criteria must be bounded and side-effect-free.
type Rule struct {
	Achievable domain.Achievable
	Criteria   func(domain.UserStats) bool
}

// AchievementEvaluator checks unlock criteria against user statistics and
// issues awards at most once per (user, achievable).
type AchievementEvaluator struct {
	rules  []Rule
	awards AwardStore
	stats  StatsSource
	now    func() time.Time
}

func NewAchievementEvaluator(rules []Rule, awards AwardStore, stats StatsSource) *AchievementEvaluator {
	return &AchievementEvaluator{rules: rules, awards: awards, stats: stats, now: time.Now}
}

// NewAchievementEvaluatorWithClock is test-only for deterministic timestamps.
func NewAchievementEvaluatorWithClock(rules []Rule, awards AwardStore, stats StatsSource, now func() time.Time) *AchievementEvaluator {
	ev := NewAchievementEvaluator(rules, awards, stats)
	ev.now = now
	return ev
}

// EvaluateUser runs every rule the user has not yet earned and returns the
// awards created by this call. Re-evaluating never duplicates: the store's
// uniqueness check wins every race. Trophy awards additionally recompute and
// persist the user's trophy point total.
func (e *AchievementEvaluator) EvaluateUser(ctx context.Context, userID string) ([]domain.Award, error) {
	stats, err := e.stats.UserStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	existing, err := e.awards.AwardsFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	earned := make(map[string]struct{}, len(existing))
	for _, award := range existing {
		earned[award.AchievableID] = struct{}{}
	}

	var created []domain.Award
	trophyTouched := false
	for _, rule := range e.rules {
		if _, ok := earned[rule.Achievable.AchievableID()]; ok {
			continue
		}
		if !rule.Criteria(stats) {
			continue
		}
		award, fresh, err := e.awards.CreateAward(ctx, domain.Award{
			AchievableID: rule.Achievable.AchievableID(),
			UserID:       userID,
			EarnedAt:     e.now(),
			Payload:      map[string]string{"name": rule.Achievable.AchievableName()},
		})
		if err != nil {
			return created, err
		}
		if fresh {
			created = append(created, award)
			if _, isTrophy := rule.Achievable.(domain.Trophy); isTrophy {
				trophyTouched = true
			}
		}
	}

	if trophyTouched {
		if err := e.recomputeTrophyTotal(ctx, userID); err != nil {
			return created, err
		}
	}
	return created, nil
}

// recomputeTrophyTotal rebuilds the denormalized trophy point total from the
// authoritative award rows instead of incrementing an ambient counter.
func (e *AchievementEvaluator) recomputeTrophyTotal(ctx context.Context, userID string) error {
	awards, err := e.awards.AwardsFor(ctx, userID)
	if err != nil {
		return err
	}
	byID := make(map[string]domain.Achievable, len(e.rules))
	for _, rule := range e.rules {
		byID[rule.Achievable.AchievableID()] = rule.Achievable
	}
	total := 0
	for _, award := range awards {
		if trophy, ok := byID[award.AchievableID].(domain.Trophy); ok {
			total += trophy.Points
		}
	}
	return e.awards.SaveTrophyTotal(ctx, userID, total)
}

// DefaultRules is the built-in unlock set: join milestones as badges, score
// and streak milestones as trophies.
func DefaultRules() []Rule {
	return []Rule{
		{
			Achievable: domain.Badge{ID: "first-steps", Name: "First Steps", Description: "Complete your first quiz"},
			Criteria:   func(s domain.UserStats) bool { return s.QuizzesCompleted >= 1 },
		},
		{
			Achievable: domain.Badge{ID: "regular", Name: "Regular", Description: "Complete ten quizzes"},
			Criteria:   func(s domain.UserStats) bool { return s.QuizzesCompleted >= 10 },
		},
		{
			Achievable: domain.Trophy{ID: "point-collector", Name: "Point Collector", Description: "Accumulate 10,000 points", Points: 500},
			Criteria:   func(s domain.UserStats) bool { return s.TotalScore >= 10000 },
		},
		{
			Achievable: domain.Trophy{ID: "on-fire", Name: "On Fire", Description: "Complete five quizzes in a row", Points: 250},
			Criteria:   func(s domain.UserStats) bool { return s.CurrentStreak >= 5 },
		},
	}
}
