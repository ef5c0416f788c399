package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_SubscribeAndBroadcast(t *testing.T) {
	hub := NewHub(func(*http.Request) bool { return true })
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	conn := dial(t, srv)
	if err := conn.WriteJSON(ClientMsg{Type: "subscribe", PredictionID: "p1"}); err != nil {
		t.Fatal(err)
	}

	// espera a assinatura ser registrada pelo reader do hub
	waitFor(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.subs["p1"]) == 1
	})

	hub.Broadcast(Update{PredictionID: "p1", Type: "live", Payload: map[string]string{"score": "1-0"}})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got Update
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatal(err)
	}
	if got.PredictionID != "p1" || got.Type != "live" {
		t.Errorf("update = %+v", got)
	}
}

func TestHub_BroadcastSkipsOtherPredictions(t *testing.T) {
	hub := NewHub(func(*http.Request) bool { return true })
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	conn := dial(t, srv)
	if err := conn.WriteJSON(ClientMsg{Type: "subscribe", PredictionID: "p1"}); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.subs["p1"]) == 1
	})

	hub.Broadcast(Update{PredictionID: "p2", Type: "resolved"})
	hub.Broadcast(Update{PredictionID: "p1", Type: "resolved"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got Update
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatal(err)
	}
	if got.PredictionID != "p1" {
		t.Errorf("received update for %q, want p1 only", got.PredictionID)
	}
}

func TestHub_Ping(t *testing.T) {
	hub := NewHub(func(*http.Request) bool { return true })
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	conn := dial(t, srv)
	if err := conn.WriteJSON(ClientMsg{Type: "ping"}); err != nil {
		t.Fatal(err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got map[string]string
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatal(err)
	}
	if got["type"] != "pong" {
		t.Errorf("reply = %v", got)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
