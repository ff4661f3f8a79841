package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Laurent-studi/rtfmlara-sub002/internal/app"
	"github.com/Laurent-studi/rtfmlara-sub002/internal/domain"
	"github.com/Laurent-studi/rtfmlara-sub002/internal/infra/memory"
	transport "github.com/Laurent-studi/rtfmlara-sub002/internal/transport/http"
)

func newGateway(t *testing.T) (*httptest.Server, *app.SessionService) {
	t.Helper()
	sessions := memory.NewSessionStore()
	quizzes := memory.NewQuizRepository(memory.NewStaticQuizLoader(map[string]domain.Quiz{
		"quiz-1": {
			ID:          "quiz-1",
			TimeLimitMs: 10000,
			Questions: []domain.Question{
				{
					ID:     "q1",
					Prompt: "Pick right",
					Options: []domain.Option{
						{ID: "o1", Text: "wrong", Correct: false},
						{ID: "o2", Text: "right", Correct: true},
					},
					Points: 1000,
				},
			},
		},
	}), time.Minute)
	service := app.NewSessionService(sessions, quizzes)

	mux := http.NewServeMux()
	transport.NewHandler(service).Register(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, service
}

func TestPollerObservesPhaseChanges(t *testing.T) {
	server, service := newGateway(t)
	ctx := context.Background()

	created, err := service.Create(ctx, "quiz-1", "host-1", domain.Settings{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	poller := NewPoller(server.URL, created.JoinCode, WithIntervals(10*time.Millisecond, 10*time.Millisecond))

	// Drive the presenter side on a separate goroutine while the poller runs.
	go func() {
		time.Sleep(30 * time.Millisecond)
		if _, err := poller.Start(ctx, "host-1"); err != nil {
			t.Errorf("start: %v", err)
			return
		}
		time.Sleep(30 * time.Millisecond)
		if _, err := poller.Advance(ctx, "host-1"); err != nil {
			t.Errorf("advance: %v", err)
		}
	}()

	var phases []domain.Phase
	runCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := poller.Run(runCtx, func(snap domain.SessionSnapshot) {
		phases = append(phases, snap.Phase)
	}); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(phases) < 3 {
		t.Fatalf("expected pending/active/ended transitions, got %v", phases)
	}
	if phases[0] != domain.PhasePending || phases[len(phases)-1] != domain.PhaseEnded {
		t.Fatalf("unexpected phase sequence: %v", phases)
	}
}

func TestPollerCommandsAndSubmission(t *testing.T) {
	server, service := newGateway(t)
	ctx := context.Background()

	created, err := service.Create(ctx, "quiz-1", "host-1", domain.Settings{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	poller := NewPoller(server.URL, created.JoinCode)

	alice, err := poller.Join(ctx, "u1", "Alice")
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	snap, err := poller.Start(ctx, "host-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if snap.CurrentQuestion == nil {
		t.Fatalf("expected question in start response")
	}

	result, err := poller.SubmitAnswer(ctx, alice.ID, snap.CurrentQuestion.ID, []string{"o2"}, 2*time.Second)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !result.Correct || result.Awarded != 800 {
		t.Fatalf("expected 800 points, got %+v", result)
	}

	// Duplicate submission surfaces the server-side rejection as an error.
	if _, err := poller.SubmitAnswer(ctx, alice.ID, snap.CurrentQuestion.ID, []string{"o2"}, time.Second); err == nil {
		t.Fatalf("expected error for duplicate submission")
	}

	final, err := poller.End(ctx, "host-1")
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if final.Phase != domain.PhaseEnded {
		t.Fatalf("expected ended, got %v", final.Phase)
	}
}
