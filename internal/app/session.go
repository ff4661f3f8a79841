package app

import (
	"strconv"
	"sync"
	"time"

	"github.com/Laurent-studi/rtfmlara-sub002/internal/domain"
)

// Session is the single-writer owner of one live quiz run. All mutating
// commands serialize on its lock; snapshot and leaderboard reads take the
// read lock and never block each other.
type Session struct {
	id          string
	joinCode    string
	presenterID string
	quiz        domain.Quiz
	settings    domain.Settings
	createdAt   time.Time
	now         func() time.Time

	mu            sync.RWMutex
	phase         domain.Phase
	questionIndex int
	deadline      time.Time
	participants  map[string]*domain.Participant
	identities    map[string]string // user-or-name key -> participant id
	names         map[string]string // display name -> participant id
	answers       map[string]map[string]domain.AnswerRecord
	subscribers   map[chan domain.SessionSnapshot]struct{}
	nextSeq       int
}

// NewSession is exported for infrastructure layers that need to seed sessions.
func NewSession(id, joinCode, presenterID string, quiz domain.Quiz, settings domain.Settings) *Session {
	return newSessionWithClock(id, joinCode, presenterID, quiz, settings, time.Now)
}

// NewSessionWithClock is test-only for deterministic timestamps.
func NewSessionWithClock(id, joinCode, presenterID string, quiz domain.Quiz, settings domain.Settings, now func() time.Time) *Session {
	return newSessionWithClock(id, joinCode, presenterID, quiz, settings, now)
}

func newSessionWithClock(id, joinCode, presenterID string, quiz domain.Quiz, settings domain.Settings, now func() time.Time) *Session {
	return &Session{
		id:           id,
		joinCode:     joinCode,
		presenterID:  presenterID,
		quiz:         quiz,
		settings:     settings,
		createdAt:    now(),
		now:          now,
		phase:        domain.PhasePending,
		participants: make(map[string]*domain.Participant),
		identities:   make(map[string]string),
		names:        make(map[string]string),
		answers:      make(map[string]map[string]domain.AnswerRecord),
		subscribers:  make(map[chan domain.SessionSnapshot]struct{}),
	}
}

func (s *Session) ID() string       { return s.id }
func (s *Session) JoinCode() string { return s.joinCode }
func (s *Session) QuizID() string   { return s.quiz.ID }

// Phase returns the current lifecycle phase.
func (s *Session) Phase() domain.Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// IsEmpty reports whether the session has no participants.
func (s *Session) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.participants) == 0
}

// join registers an entrant. The (user-or-name) identity is unique per
// session; rejoining with the same identity returns the existing participant
// so retried join commands stay idempotent. A display name already held by a
// different identity is rejected so the leaderboard never shows two entrants
// under one name.
func (s *Session) join(userID, displayName string) (domain.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase.Terminal() {
		return domain.Participant{}, domain.ErrPhaseMismatch
	}

	identity := "name:" + displayName
	if userID != "" {
		identity = "user:" + userID
	}
	if id, ok := s.identities[identity]; ok {
		return *s.participants[id], nil
	}
	if _, taken := s.names[displayName]; taken {
		return domain.Participant{}, domain.ErrParticipantExists
	}

	s.nextSeq++
	participant := &domain.Participant{
		ID:          s.id + "-p" + strconv.Itoa(s.nextSeq),
		SessionID:   s.id,
		UserID:      userID,
		DisplayName: displayName,
		JoinedAt:    s.now(),
	}
	s.participants[participant.ID] = participant
	s.identities[identity] = participant.ID
	s.names[displayName] = participant.ID
	s.broadcastLocked()
	return *participant, nil
}

// start moves Pending -> Active(0) and arms the first deadline.
func (s *Session) start(callerID string) (domain.SessionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if callerID != s.presenterID {
		return domain.SessionSnapshot{}, domain.ErrUnauthorized
	}
	if s.phase != domain.PhasePending {
		return domain.SessionSnapshot{}, domain.ErrInvalidTransition
	}

	s.phase = domain.PhaseActive
	s.questionIndex = 0
	s.armDeadlineLocked()
	return s.broadcastLocked(), nil
}

// advance moves the session forward one step: into an intermission when the
// settings ask for a leaderboard between questions, onto the next question,
// or into the terminal phase when questions are exhausted.
func (s *Session) advance(callerID string) (domain.SessionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if callerID != s.presenterID {
		return domain.SessionSnapshot{}, domain.ErrUnauthorized
	}

	switch s.phase {
	case domain.PhaseActive:
		if s.questionIndex+1 >= len(s.quiz.Questions) {
			s.phase = domain.PhaseEnded
		} else if s.settings.ShowLeaderboard {
			s.phase = domain.PhaseIntermission
		} else {
			s.questionIndex++
			s.armDeadlineLocked()
		}
	case domain.PhaseIntermission:
		s.phase = domain.PhaseActive
		s.questionIndex++
		s.armDeadlineLocked()
	default:
		return domain.SessionSnapshot{}, domain.ErrInvalidTransition
	}
	return s.broadcastLocked(), nil
}

// end force-terminates from any non-terminal phase.
func (s *Session) end(callerID string) (domain.SessionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if callerID != s.presenterID {
		return domain.SessionSnapshot{}, domain.ErrUnauthorized
	}
	if s.phase.Terminal() {
		return domain.SessionSnapshot{}, domain.ErrInvalidTransition
	}
	s.phase = domain.PhaseEnded
	return s.broadcastLocked(), nil
}

// submit records one answer for the currently active question. The ledger
// accepts at most one record per (participant, question); a losing racer
// observes ErrDuplicateSubmission and the score stays untouched.
func (s *Session) submit(participantID string, sub domain.AnswerSubmission) (domain.AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	participant, ok := s.participants[participantID]
	if !ok {
		return domain.AnswerResult{}, domain.ErrParticipantNotFound
	}

	question, err := s.currentQuestionLocked(sub.QuestionID)
	if err != nil {
		return domain.AnswerResult{}, err
	}

	if _, exists := s.answers[participantID][sub.QuestionID]; exists {
		return domain.AnswerResult{}, domain.ErrDuplicateSubmission
	}

	correct, err := evaluateSelection(question, sub.OptionIDs)
	if err != nil {
		return domain.AnswerResult{}, err
	}

	points := ScoreAnswer(correct, sub.ElapsedMs, s.timeLimitMsLocked(question), questionPoints(question), s.settings.EffectiveMultiplier())

	if s.answers[participantID] == nil {
		s.answers[participantID] = make(map[string]domain.AnswerRecord)
	}
	s.answers[participantID][sub.QuestionID] = domain.AnswerRecord{
		ParticipantID: participantID,
		QuestionID:    sub.QuestionID,
		OptionIDs:     append([]string(nil), sub.OptionIDs...),
		Correct:       correct,
		ElapsedMs:     sub.ElapsedMs,
		Points:        points,
		SubmittedAt:   s.now(),
	}
	participant.Score += points

	s.broadcastLocked()
	return domain.AnswerResult{
		QuestionID: sub.QuestionID,
		Accepted:   true,
		Correct:    correct,
		Awarded:    points,
		TotalScore: participant.Score,
	}, nil
}

// currentQuestionLocked validates that the submission targets the question
// the session is currently active on.
func (s *Session) currentQuestionLocked(questionID string) (domain.Question, error) {
	if s.phase != domain.PhaseActive {
		return domain.Question{}, domain.ErrPhaseMismatch
	}
	current := s.quiz.Questions[s.questionIndex]
	if current.ID == questionID {
		return current, nil
	}
	for _, q := range s.quiz.Questions {
		if q.ID == questionID {
			// Known question, but not the one on screen.
			return domain.Question{}, domain.ErrPhaseMismatch
		}
	}
	return domain.Question{}, domain.ErrQuestionNotFound
}

// timeLimitMsLocked resolves the limit for a question: session override,
// question-level limit, quiz default, built-in default, in that order.
func (s *Session) timeLimitMsLocked(q domain.Question) int {
	if s.settings.TimeLimitMs > 0 {
		return s.settings.TimeLimitMs
	}
	if q.TimeLimitMs > 0 {
		return q.TimeLimitMs
	}
	if s.quiz.TimeLimitMs > 0 {
		return s.quiz.TimeLimitMs
	}
	return defaultTimeLimitMs
}

func (s *Session) armDeadlineLocked() {
	q := s.quiz.Questions[s.questionIndex]
	s.deadline = s.now().Add(time.Duration(s.timeLimitMsLocked(q)) * time.Millisecond)
}

// leaderboard is a pure read over committed records.
func (s *Session) leaderboard() domain.Leaderboard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.leaderboardLocked()
}

func (s *Session) leaderboardLocked() domain.Leaderboard {
	participants := make([]*domain.Participant, 0, len(s.participants))
	for _, p := range s.participants {
		participants = append(participants, p)
	}
	return domain.Leaderboard{
		SessionID: s.id,
		Entries:   rankParticipants(participants),
		UpdatedAt: s.now(),
	}
}

// snapshot builds the consistent view served to pollers.
func (s *Session) snapshot() domain.SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() domain.SessionSnapshot {
	snap := domain.SessionSnapshot{
		SessionID:        s.id,
		JoinCode:         s.joinCode,
		Phase:            s.phase,
		QuestionIndex:    s.questionIndex,
		TotalQuestions:   len(s.quiz.Questions),
		ParticipantCount: len(s.participants),
	}

	switch s.phase {
	case domain.PhaseActive:
		q := s.quiz.Questions[s.questionIndex]
		deadline := s.deadline
		snap.Deadline = &deadline
		snap.CurrentQuestion = s.publicQuestionLocked(q)
	case domain.PhaseIntermission, domain.PhaseEnded:
		lb := s.leaderboardLocked()
		snap.Leaderboard = &lb
	}
	return snap
}

// publicQuestionLocked strips correct flags; they stay hidden until reveal.
func (s *Session) publicQuestionLocked(q domain.Question) *domain.SnapshotQuestion {
	options := make([]domain.SnapshotOption, len(q.Options))
	for i, opt := range q.Options {
		options[i] = domain.SnapshotOption{ID: opt.ID, Text: opt.Text}
	}
	return &domain.SnapshotQuestion{
		ID:          q.ID,
		Prompt:      q.Prompt,
		Options:     options,
		MultiSelect: q.MultiSelect,
		TimeLimitMs: s.timeLimitMsLocked(q),
	}
}

// finalParticipants returns the frozen entrant list once the session ended.
func (s *Session) finalParticipants() []domain.Participant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Participant, 0, len(s.participants))
	for _, p := range s.participants {
		out = append(out, *p)
	}
	return out
}

func (s *Session) subscribe() (<-chan domain.SessionSnapshot, func()) {
	ch := make(chan domain.SessionSnapshot, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := s.snapshotLocked()
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked() domain.SessionSnapshot {
	snap := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// Drop the stale snapshot so a slow watcher never blocks commands.
			// The retry must not block either; another sender may have
			// reclaimed the freed slot while we hold the write lock.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
	return snap
}
