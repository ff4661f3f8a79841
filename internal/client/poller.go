// Package client implements the host/participant side of the synchronization
// contract: snapshots are polled on an interval that adapts to the session
// phase, and commands are plain idempotent POSTs.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Laurent-studi/rtfmlara-sub002/internal/domain"
)

const (
	// DefaultPendingInterval is the tight cadence used while waiting for the
	// presenter to start; participants see the first question promptly.
	DefaultPendingInterval = 500 * time.Millisecond
	// DefaultActiveInterval is the relaxed cadence once the session runs.
	DefaultActiveInterval = 2 * time.Second
)

// Poller drives repeated snapshot fetches for one session.
type Poller struct {
	baseURL         string
	joinCode        string
	httpClient      *http.Client
	pendingInterval time.Duration
	activeInterval  time.Duration
}

// Option configures a Poller.
type Option func(*Poller)

// WithHTTPClient overrides the default http client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Poller) { p.httpClient = c }
}

// WithIntervals overrides the adaptive poll cadences.
func WithIntervals(pending, active time.Duration) Option {
	return func(p *Poller) {
		p.pendingInterval = pending
		p.activeInterval = active
	}
}

func NewPoller(baseURL, joinCode string, opts ...Option) *Poller {
	p := &Poller{
		baseURL:         baseURL,
		joinCode:        joinCode,
		httpClient:      &http.Client{Timeout: 10 * time.Second},
		pendingInterval: DefaultPendingInterval,
		activeInterval:  DefaultActiveInterval,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run polls until the session ends or ctx is canceled. onChange fires for the
// initial snapshot and whenever the phase or question index moves.
func (p *Poller) Run(ctx context.Context, onChange func(domain.SessionSnapshot)) error {
	var last *domain.SessionSnapshot
	for {
		snap, err := p.Snapshot(ctx)
		if err != nil {
			return err
		}
		if last == nil || snap.Phase != last.Phase || snap.QuestionIndex != last.QuestionIndex {
			onChange(snap)
		}
		if snap.Phase == domain.PhaseEnded {
			return nil
		}
		last = &snap

		interval := p.activeInterval
		if snap.Phase == domain.PhasePending {
			interval = p.pendingInterval
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

// Snapshot fetches the current consistent view once.
func (p *Poller) Snapshot(ctx context.Context) (domain.SessionSnapshot, error) {
	var snap domain.SessionSnapshot
	err := p.do(ctx, http.MethodGet, p.url("snapshot"), nil, &snap)
	return snap, err
}

// Join enters the session as a participant.
func (p *Poller) Join(ctx context.Context, userID, displayName string) (domain.Participant, error) {
	var participant domain.Participant
	err := p.do(ctx, http.MethodPost, p.url("join"), map[string]string{
		"userId":      userID,
		"displayName": displayName,
	}, &participant)
	return participant, err
}

// Start begins the session. Presenter-only.
func (p *Poller) Start(ctx context.Context, presenterID string) (domain.SessionSnapshot, error) {
	return p.presenterCommand(ctx, "start", presenterID)
}

// Advance moves to the next phase. Presenter-only.
func (p *Poller) Advance(ctx context.Context, presenterID string) (domain.SessionSnapshot, error) {
	return p.presenterCommand(ctx, "advance", presenterID)
}

// End force-terminates the session. Presenter-only.
func (p *Poller) End(ctx context.Context, presenterID string) (domain.SessionSnapshot, error) {
	return p.presenterCommand(ctx, "end", presenterID)
}

// SubmitAnswer sends one timed answer.
func (p *Poller) SubmitAnswer(ctx context.Context, participantID, questionID string, optionIDs []string, elapsed time.Duration) (domain.AnswerResult, error) {
	var result domain.AnswerResult
	err := p.do(ctx, http.MethodPost, p.url("answers"), map[string]any{
		"participantId": participantID,
		"questionId":    questionID,
		"optionIds":     optionIDs,
		"elapsedMs":     int(elapsed.Milliseconds()),
	}, &result)
	return result, err
}

func (p *Poller) presenterCommand(ctx context.Context, verb, presenterID string) (domain.SessionSnapshot, error) {
	var snap domain.SessionSnapshot
	err := p.do(ctx, http.MethodPost, p.url(verb), map[string]string{"presenterId": presenterID}, &snap)
	return snap, err
}

func (p *Poller) url(suffix string) string {
	return fmt.Sprintf("%s/sessions/%s/%s", p.baseURL, p.joinCode, suffix)
}

func (p *Poller) do(ctx context.Context, method, url string, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s", method, url, apiErr.Error)
		}
		return fmt.Errorf("%s %s: status %d", method, url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
