package app

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/Laurent-studi/rtfmlara-sub002/internal/domain"
)

// SessionRepository abstracts how live sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	// Put stores a new session, failing with domain.ErrCodeTaken when its
	// join code collides with an active session.
	Put(session *Session) error
	Get(sessionID string) (*Session, bool)
	GetByCode(joinCode string) (*Session, bool)
	Delete(sessionID string)
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// StatsRecorder persists per-user aggregates when a session completes and
// serves them back to the achievement evaluator.
type StatsRecorder interface {
	StatsSource
	RecordCompletion(ctx context.Context, userID string, score int) (domain.UserStats, error)
}

// SessionService contains the live session use cases: lifecycle commands,
// answer submission, snapshots, and the post-session achievement trigger.
type SessionService struct {
	sessions  SessionRepository
	quizzes   QuizRepository
	stats     StatsRecorder
	evaluator *AchievementEvaluator
	retention time.Duration
}

func NewSessionService(sessions SessionRepository, quizzes QuizRepository) *SessionService {
	return &SessionService{sessions: sessions, quizzes: quizzes}
}

// WithAchievements attaches the evaluator run when sessions end.
func (s *SessionService) WithAchievements(stats StatsRecorder, evaluator *AchievementEvaluator) *SessionService {
	s.stats = stats
	s.evaluator = evaluator
	return s
}

// WithRetention bounds how long an ended session stays queryable before its
// store entry (and with it the join code) is released. Zero keeps sessions
// for the life of the process.
func (s *SessionService) WithRetention(d time.Duration) *SessionService {
	s.retention = d
	return s
}

// Create starts a new pending session for a quiz with a collision-free join code.
func (s *SessionService) Create(ctx context.Context, quizID, presenterID string, settings domain.Settings) (domain.SessionSnapshot, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.SessionSnapshot{}, err
	}
	if len(quiz.Questions) == 0 {
		return domain.SessionSnapshot{}, domain.ErrQuizNotFound
	}

	id, err := newSessionID()
	if err != nil {
		return domain.SessionSnapshot{}, err
	}

	for attempt := 0; attempt < codeGenAttempts; attempt++ {
		code, err := GenerateJoinCode()
		if err != nil {
			return domain.SessionSnapshot{}, err
		}
		session := NewSession(id, code, presenterID, quiz, settings)
		if err := s.sessions.Put(session); err != nil {
			if errors.Is(err, domain.ErrCodeTaken) {
				continue
			}
			return domain.SessionSnapshot{}, err
		}
		return session.snapshot(), nil
	}
	return domain.SessionSnapshot{}, domain.ErrCodeTaken
}

// Join registers an entrant, anonymous (display name only) or identified.
func (s *SessionService) Join(ctx context.Context, joinCode, userID, displayName string) (domain.Participant, error) {
	session, ok := s.sessions.GetByCode(joinCode)
	if !ok {
		return domain.Participant{}, domain.ErrSessionNotFound
	}
	return session.join(userID, displayName)
}

// Start begins the first question. Presenter-only.
func (s *SessionService) Start(ctx context.Context, joinCode, callerID string) (domain.SessionSnapshot, error) {
	session, ok := s.sessions.GetByCode(joinCode)
	if !ok {
		return domain.SessionSnapshot{}, domain.ErrSessionNotFound
	}
	return session.start(callerID)
}

// Advance moves the session to its next phase. Presenter-only. When the
// advance exhausts the questions the post-session hooks run before returning.
func (s *SessionService) Advance(ctx context.Context, joinCode, callerID string) (domain.SessionSnapshot, error) {
	session, ok := s.sessions.GetByCode(joinCode)
	if !ok {
		return domain.SessionSnapshot{}, domain.ErrSessionNotFound
	}
	snap, err := session.advance(callerID)
	if err != nil {
		return domain.SessionSnapshot{}, err
	}
	if snap.Phase.Terminal() {
		s.finalize(ctx, session)
		s.scheduleCleanup(session)
	}
	return snap, nil
}

// End force-terminates the session and returns the final leaderboard view.
func (s *SessionService) End(ctx context.Context, joinCode, callerID string) (domain.SessionSnapshot, error) {
	session, ok := s.sessions.GetByCode(joinCode)
	if !ok {
		return domain.SessionSnapshot{}, domain.ErrSessionNotFound
	}
	snap, err := session.end(callerID)
	if err != nil {
		return domain.SessionSnapshot{}, err
	}
	s.finalize(ctx, session)
	s.scheduleCleanup(session)
	return snap, nil
}

// Submit records one answer for the active question and returns the scoring
// outcome. Typed rejections leave all session state untouched.
func (s *SessionService) Submit(ctx context.Context, joinCode, participantID string, submission domain.AnswerSubmission) (domain.AnswerResult, error) {
	session, ok := s.sessions.GetByCode(joinCode)
	if !ok {
		return domain.AnswerResult{}, domain.ErrSessionNotFound
	}
	return session.submit(participantID, submission)
}

// Snapshot returns the consistent derived view for pollers.
func (s *SessionService) Snapshot(ctx context.Context, joinCode string) (domain.SessionSnapshot, error) {
	session, ok := s.sessions.GetByCode(joinCode)
	if !ok {
		return domain.SessionSnapshot{}, domain.ErrSessionNotFound
	}
	return session.snapshot(), nil
}

// Leaderboard ranks the session's participants. Pure read, safe to call
// repeatedly and concurrently.
func (s *SessionService) Leaderboard(ctx context.Context, joinCode string) (domain.Leaderboard, error) {
	session, ok := s.sessions.GetByCode(joinCode)
	if !ok {
		return domain.Leaderboard{}, domain.ErrSessionNotFound
	}
	return session.leaderboard(), nil
}

// Watch returns a channel receiving snapshot updates for a session.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *SessionService) Watch(_ context.Context, joinCode string) (<-chan domain.SessionSnapshot, func(), error) {
	session, ok := s.sessions.GetByCode(joinCode)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// finalize runs once the session is terminal: record aggregates for every
// identified participant, then evaluate achievements. The session transition
// itself is one-way, so this cannot run twice for the same session.
func (s *SessionService) finalize(ctx context.Context, session *Session) {
	if s.stats == nil || s.evaluator == nil {
		return
	}
	for _, participant := range session.finalParticipants() {
		if participant.UserID == "" {
			continue
		}
		if _, err := s.stats.RecordCompletion(ctx, participant.UserID, participant.Score); err != nil {
			log.Printf("record completion for %s: %v", participant.UserID, err)
			continue
		}
		if _, err := s.evaluator.EvaluateUser(ctx, participant.UserID); err != nil {
			log.Printf("evaluate achievements for %s: %v", participant.UserID, err)
		}
	}
}

// scheduleCleanup deletes the ended session from the store once the
// retention window passes, so its join code can be reused.
func (s *SessionService) scheduleCleanup(session *Session) {
	if s.retention <= 0 {
		return
	}
	time.AfterFunc(s.retention, func() {
		s.sessions.Delete(session.ID())
	})
}
