package domain

import "time"

// Achievable is the sealed variant over unlockable kinds. Badges are honorary;
// trophies additionally carry points that feed the user's trophy total.
type Achievable interface {
	AchievableID() string
	AchievableName() string
	achievable()
}

// Badge is an unlockable with no point value.
type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (b Badge) AchievableID() string   { return b.ID }
func (b Badge) AchievableName() string { return b.Name }
func (Badge) achievable()              {}

// Trophy is an unlockable worth points.
type Trophy struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Points      int    `json:"points"`
}

func (t Trophy) AchievableID() string   { return t.ID }
func (t Trophy) AchievableName() string { return t.Name }
func (Trophy) achievable()              {}

// Award binds a user to an achievable. At most one exists per (user, achievable).
type Award struct {
	AchievableID string            `json:"achievableId"`
	UserID       string            `json:"userId"`
	EarnedAt     time.Time         `json:"earnedAt"`
	Payload      map[string]string `json:"payload,omitempty"`
}

// UserStats is the aggregate the achievement evaluator reads its criteria from.
type UserStats struct {
	UserID           string `json:"userId"`
	QuizzesCompleted int    `json:"quizzesCompleted"`
	TotalScore       int    `json:"totalScore"`
	BestScore        int    `json:"bestScore"`
	CurrentStreak    int    `json:"currentStreak"`
}
