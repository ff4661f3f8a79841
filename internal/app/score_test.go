package app

import (
	"testing"
	"time"

	"github.com/Laurent-studi/rtfmlara-sub002/internal/domain"
)

func TestScoreAnswerBoundsAndDecay(t *testing.T) {
	const (
		timeLimit  = 10000
		maxPoints  = 1000
		multiplier = 1.0
	)

	prev := maxPoints + 1
	for elapsed := 0; elapsed <= timeLimit; elapsed += 500 {
		points := ScoreAnswer(true, elapsed, timeLimit, maxPoints, multiplier)
		if points < 0 || points > maxPoints {
			t.Fatalf("elapsed=%d: points %d out of [0,%d]", elapsed, points, maxPoints)
		}
		if points > prev {
			t.Fatalf("elapsed=%d: points %d increased from %d", elapsed, points, prev)
		}
		prev = points
	}
}

func TestScoreAnswerScenario(t *testing.T) {
	// maxPoints=1000, timeLimit=10s, answered at 2s: round(1000*0.8)=800.
	if got := ScoreAnswer(true, 2000, 10000, 1000, 1.0); got != 800 {
		t.Fatalf("expected 800, got %d", got)
	}
	if got := ScoreAnswer(false, 2000, 10000, 1000, 1.0); got != 0 {
		t.Fatalf("incorrect answer must score 0, got %d", got)
	}
	// Past the deadline the floor holds at zero.
	if got := ScoreAnswer(true, 15000, 10000, 1000, 1.0); got != 0 {
		t.Fatalf("late answer must floor at 0, got %d", got)
	}
	// Multiplier scales the ceiling.
	if got := ScoreAnswer(true, 0, 10000, 1000, 2.0); got != 2000 {
		t.Fatalf("expected 2000 with 2x multiplier, got %d", got)
	}
	// Negative elapsed (client-reported) is capped at the ceiling.
	if got := ScoreAnswer(true, -5000, 10000, 1000, 1.0); got != 1000 {
		t.Fatalf("negative elapsed must cap at 1000, got %d", got)
	}
	if got := ScoreAnswer(true, -1000000, 10000, 1000, 2.5); got != 2500 {
		t.Fatalf("negative elapsed must cap at 2500 with multiplier, got %d", got)
	}
}

func TestEvaluateSelectionSetEquality(t *testing.T) {
	question := domain.Question{
		ID:          "q1",
		MultiSelect: true,
		Options: []domain.Option{
			{ID: "a", Correct: true},
			{ID: "b", Correct: true},
			{ID: "c", Correct: false},
		},
	}

	cases := []struct {
		name    string
		chosen  []string
		correct bool
	}{
		{"exact set", []string{"a", "b"}, true},
		{"order irrelevant", []string{"b", "a"}, true},
		{"missing one", []string{"a"}, false},
		{"extra wrong option", []string{"a", "b", "c"}, false},
		{"only wrong", []string{"c"}, false},
		{"empty", nil, false},
	}
	for _, tc := range cases {
		correct, err := evaluateSelection(question, tc.chosen)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if correct != tc.correct {
			t.Fatalf("%s: expected correct=%v, got %v", tc.name, tc.correct, correct)
		}
	}

	if _, err := evaluateSelection(question, []string{"zz"}); err != domain.ErrOptionNotFound {
		t.Fatalf("expected ErrOptionNotFound for unknown option, got %v", err)
	}
}

func TestRankParticipantsTotalOrder(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	participants := []*domain.Participant{
		{ID: "p1", DisplayName: "A", Score: 500, JoinedAt: base},
		{ID: "p2", DisplayName: "B", Score: 500, JoinedAt: base.Add(time.Second)},
		{ID: "p3", DisplayName: "C", Score: 800, JoinedAt: base.Add(2 * time.Second)},
	}

	entries := rankParticipants(participants)
	if entries[0].ParticipantID != "p3" || entries[0].Rank != 1 {
		t.Fatalf("expected p3 first, got %+v", entries[0])
	}
	// A joined before B; equal scores rank A above B.
	if entries[1].ParticipantID != "p1" || entries[2].ParticipantID != "p2" {
		t.Fatalf("expected tie broken by join order, got %+v", entries)
	}

	// Idempotent read: ranking twice with no writes gives identical results.
	again := rankParticipants(participants)
	for i := range entries {
		if entries[i] != again[i] {
			t.Fatalf("rank not idempotent at %d: %+v vs %+v", i, entries[i], again[i])
		}
	}
}
