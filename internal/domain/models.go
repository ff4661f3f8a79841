package domain

import "time"

// Phase is the orchestrator's position in the session lifecycle.
type Phase string

const (
	PhasePending      Phase = "pending"
	PhaseActive       Phase = "active"
	PhaseIntermission Phase = "intermission"
	PhaseEnded        Phase = "ended"
)

// Terminal reports whether no further mutating command is accepted.
func (p Phase) Terminal() bool { return p == PhaseEnded }

// Settings carries per-session presenter configuration.
type Settings struct {
	// ShowLeaderboard inserts an intermission phase between questions.
	ShowLeaderboard bool `json:"showLeaderboard"`
	// Multiplier scales every awarded score; 0 means the default of 1.0.
	Multiplier float64 `json:"multiplier"`
	// TimeLimitMs overrides the quiz's per-question time limit when > 0.
	TimeLimitMs int `json:"timeLimitMs"`
}

// EffectiveMultiplier resolves the zero value to the default multiplier.
func (s Settings) EffectiveMultiplier() float64 {
	if s.Multiplier <= 0 {
		return 1.0
	}
	return s.Multiplier
}

// Participant is one joined entrant in a session and their accumulated score.
type Participant struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"sessionId"`
	UserID      string    `json:"userId,omitempty"` // empty for anonymous entrants
	DisplayName string    `json:"displayName"`
	Score       int       `json:"score"`
	JoinedAt    time.Time `json:"joinedAt"`
}

// AnswerRecord is immutable evidence of one participant's response to one question.
type AnswerRecord struct {
	ParticipantID string    `json:"participantId"`
	QuestionID    string    `json:"questionId"`
	OptionIDs     []string  `json:"optionIds"`
	Correct       bool      `json:"correct"`
	ElapsedMs     int       `json:"elapsedMs"`
	Points        int       `json:"points"`
	SubmittedAt   time.Time `json:"submittedAt"`
}

// AnswerSubmission models the scoring signal from clients.
type AnswerSubmission struct {
	QuestionID string
	OptionIDs  []string
	ElapsedMs  int
}

// AnswerResult summarizes the outcome of a submission for a single participant.
type AnswerResult struct {
	QuestionID string `json:"questionId"`
	Accepted   bool   `json:"accepted"`
	Correct    bool   `json:"correct"`
	Awarded    int    `json:"awarded"`
	TotalScore int    `json:"totalScore"`
}

// LeaderboardEntry is a derived, snapshot-friendly view of a participant.
type LeaderboardEntry struct {
	ParticipantID string `json:"participantId"`
	DisplayName   string `json:"displayName"`
	Score         int    `json:"score"`
	Rank          int    `json:"rank"`
}

// Leaderboard captures the ordered scoreboard for a session.
type Leaderboard struct {
	SessionID string             `json:"sessionId"`
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// Option represents a possible answer for a question.
type Option struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Question models an MCQ question. Multi-select questions carry several
// correct options; correctness is set-equality over the chosen option IDs.
type Question struct {
	ID          string   `json:"id"`
	Prompt      string   `json:"prompt"`
	Options     []Option `json:"options"`
	MultiSelect bool     `json:"multiSelect"`
	Points      int      `json:"points"`      // defaults to 1000 if zero
	TimeLimitMs int      `json:"timeLimitMs"` // defaults to the quiz-level limit if zero
}

// CorrectOptionIDs returns the IDs of every correct option.
func (q Question) CorrectOptionIDs() []string {
	var ids []string
	for _, opt := range q.Options {
		if opt.Correct {
			ids = append(ids, opt.ID)
		}
	}
	return ids
}

// Quiz is an ordered collection of questions plus session-facing defaults.
type Quiz struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Questions   []Question `json:"questions"`
	TimeLimitMs int        `json:"timeLimitMs"` // per-question default
}

// SessionSnapshot is the consistent, fully-derived view served to pollers.
type SessionSnapshot struct {
	SessionID        string            `json:"sessionId"`
	JoinCode         string            `json:"joinCode"`
	Phase            Phase             `json:"phase"`
	QuestionIndex    int               `json:"questionIndex"`
	TotalQuestions   int               `json:"totalQuestions"`
	ParticipantCount int               `json:"participantCount"`
	Deadline         *time.Time        `json:"deadline,omitempty"`
	CurrentQuestion  *SnapshotQuestion `json:"currentQuestion,omitempty"`
	Leaderboard      *Leaderboard      `json:"leaderboard,omitempty"`
}

// SnapshotQuestion is the client-facing question view. Correct flags are
// withheld until the session has ended.
type SnapshotQuestion struct {
	ID          string           `json:"id"`
	Prompt      string           `json:"prompt"`
	Options     []SnapshotOption `json:"options"`
	MultiSelect bool             `json:"multiSelect"`
	TimeLimitMs int              `json:"timeLimitMs"`
}

type SnapshotOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}
