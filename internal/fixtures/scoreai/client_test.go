package scoreai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestClient(t *testing.T, answer string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth header = %q", got)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": answer}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	c := New(srv.URL, "test-key", "gpt-4o-mini", zap.NewNop())
	c.limiter.SetLimit(1000)
	return c
}

func TestFinalScore_ParsesAnswer(t *testing.T) {
	c := newTestClient(t, "2-1")

	hg, ag, ok, err := c.FinalScore(context.Background(), "Lyon", "Nice", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if !ok || hg != 2 || ag != 1 {
		t.Errorf("got %d-%d ok=%v, want 2-1 ok=true", hg, ag, ok)
	}
}

func TestFinalScore_Unknown(t *testing.T) {
	c := newTestClient(t, "UNKNOWN")

	_, _, ok, err := c.FinalScore(context.Background(), "Lyon", "Nice", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("ok = true, want false for UNKNOWN answer")
	}
}

func TestFinalScore_NoKeyDisablesLookup(t *testing.T) {
	c := New("http://unused", "", "gpt-4o-mini", zap.NewNop())

	_, _, ok, err := c.FinalScore(context.Background(), "Lyon", "Nice", time.Now())
	if err != nil || ok {
		t.Errorf("ok=%v err=%v, want disabled lookup", ok, err)
	}
}
