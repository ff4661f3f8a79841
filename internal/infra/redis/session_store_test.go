package redis

import (
	"testing"
	"time"

	"github.com/Laurent-studi/rtfmlara-sub002/internal/app"
	"github.com/Laurent-studi/rtfmlara-sub002/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestSessionStoreReservesCode(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, time.Minute)

	session := app.NewSession("sess-1", "ABC234", "host-1", sampleQuiz(), domain.Settings{})
	if err := store.Put(session); err != nil {
		t.Fatalf("put: %v", err)
	}
	if !mr.Exists("session:code:ABC234") {
		t.Fatalf("expected code reservation key")
	}
	if !mr.Exists("session:live:sess-1") {
		t.Fatalf("expected liveness key")
	}

	// The same code cannot be reserved twice while the first session lives.
	clash := app.NewSession("sess-2", "ABC234", "host-2", sampleQuiz(), domain.Settings{})
	if err := store.Put(clash); err != domain.ErrCodeTaken {
		t.Fatalf("expected ErrCodeTaken, got %v", err)
	}

	store.Delete("sess-1")
	if mr.Exists("session:code:ABC234") || mr.Exists("session:live:sess-1") {
		t.Fatalf("expected keys removed after delete")
	}
}

func TestSessionStoreLookupByCode(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, time.Minute)

	session := app.NewSession("sess-1", "XYZ789", "host-1", sampleQuiz(), domain.Settings{})
	if err := store.Put(session); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok := store.GetByCode("XYZ789")
	if !ok || got.ID() != "sess-1" {
		t.Fatalf("expected lookup by code, got ok=%v", ok)
	}
}
