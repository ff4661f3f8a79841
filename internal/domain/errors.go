package domain

import "errors"

var (
	// ErrInvalidTransition is returned when a lifecycle command violates the phase rules.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrUnauthorized is returned when a non-presenter attempts a presenter-only command.
	ErrUnauthorized = errors.New("caller is not the session presenter")
	// ErrPhaseMismatch is returned for submissions outside the active question window.
	ErrPhaseMismatch = errors.New("submission outside active question phase")
	// ErrDuplicateSubmission is returned when a participant resubmits a question.
	ErrDuplicateSubmission = errors.New("answer already submitted for question")
	// ErrSessionNotFound is returned when no session matches the id or join code.
	ErrSessionNotFound = errors.New("session not found")
	// ErrParticipantNotFound is returned when a participant tries to act before joining.
	ErrParticipantNotFound = errors.New("participant not found in session")
	// ErrParticipantExists is returned when a display name is already held
	// by a different participant in the session.
	ErrParticipantExists = errors.New("participant already joined")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuestionNotFound indicates a submitted question ID is invalid.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrOptionNotFound indicates a submitted option ID is invalid.
	ErrOptionNotFound = errors.New("option not found")
	// ErrCodeTaken indicates a generated join code collided with an active session.
	ErrCodeTaken = errors.New("join code already in use")
)
