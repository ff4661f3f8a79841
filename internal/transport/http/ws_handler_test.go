package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/Laurent-studi/rtfmlara-sub002/internal/domain"
	"github.com/gorilla/websocket"
)

func TestWebSocketWatchFlow(t *testing.T) {
	server := newTestServer(t)

	var created domain.SessionSnapshot
	postJSON(t, server.URL+"/sessions", map[string]any{"quizId": "quiz-1", "presenterId": "host-1"}, &created)

	u := "ws" + server.URL[len("http"):] + "/ws?code=" + created.JoinCode
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Initial snapshot arrives immediately.
	snap := readSnapshot(conn, t)
	if snap.Phase != domain.PhasePending {
		t.Fatalf("expected pending, got %v", snap.Phase)
	}

	postJSON(t, server.URL+"/sessions/"+created.JoinCode+"/start", map[string]string{"presenterId": "host-1"}, nil)

	snap = readSnapshot(conn, t)
	if snap.Phase != domain.PhaseActive || snap.CurrentQuestion == nil {
		t.Fatalf("expected active snapshot with question, got %+v", snap)
	}

	postJSON(t, server.URL+"/sessions/"+created.JoinCode+"/end", map[string]string{"presenterId": "host-1"}, nil)

	snap = readSnapshot(conn, t)
	if snap.Phase != domain.PhaseEnded || snap.Leaderboard == nil {
		t.Fatalf("expected terminal snapshot with leaderboard, got %+v", snap)
	}
}

func TestWebSocketUnknownCode(t *testing.T) {
	server := newTestServer(t)

	u := "ws" + server.URL[len("http"):] + "/ws?code=NOPE42"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected dial failure for unknown code")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 handshake, got %+v", resp)
	}
}

func readSnapshot(conn *websocket.Conn, t *testing.T) domain.SessionSnapshot {
	t.Helper()
	var msg struct {
		Type    string                 `json:"type"`
		Payload domain.SessionSnapshot `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if msg.Type != "snapshot" {
		t.Fatalf("expected snapshot message, got %s", msg.Type)
	}
	return msg.Payload
}
