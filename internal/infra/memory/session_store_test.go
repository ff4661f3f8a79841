package memory

import (
	"testing"

	"github.com/Laurent-studi/rtfmlara-sub002/internal/app"
	"github.com/Laurent-studi/rtfmlara-sub002/internal/domain"
)

func storeQuiz() domain.Quiz {
	return domain.Quiz{
		ID: "quiz-1",
		Questions: []domain.Question{
			{ID: "q1", Options: []domain.Option{{ID: "o1", Correct: true}}},
		},
	}
}

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()
	session := app.NewSession("sess-1", "ABC234", "host-1", storeQuiz(), domain.Settings{})

	if err := store.Put(session); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, ok := store.Get("sess-1"); !ok {
		t.Fatalf("expected session by id")
	}
	if _, ok := store.GetByCode("ABC234"); !ok {
		t.Fatalf("expected session by code")
	}

	store.Delete("sess-1")
	if _, ok := store.Get("sess-1"); ok {
		t.Fatalf("expected session removed")
	}
	if _, ok := store.GetByCode("ABC234"); ok {
		t.Fatalf("expected code index cleared")
	}
}

func TestSessionStoreRejectsDuplicateCode(t *testing.T) {
	store := NewSessionStore()

	first := app.NewSession("sess-1", "ABC234", "host-1", storeQuiz(), domain.Settings{})
	if err := store.Put(first); err != nil {
		t.Fatalf("put first: %v", err)
	}

	second := app.NewSession("sess-2", "ABC234", "host-2", storeQuiz(), domain.Settings{})
	if err := store.Put(second); err != domain.ErrCodeTaken {
		t.Fatalf("expected ErrCodeTaken, got %v", err)
	}
}
