package sportsdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/pronotracker/resolution-engine/internal/fixtures"
)

const dayPayload = `{
  "events": [
    {
      "strHomeTeam": "Granada", "strAwayTeam": "Sevilla",
      "intHomeScore": "0", "intAwayScore": "3",
      "strStatus": "Match Finished", "strProgress": ""
    },
    {
      "strHomeTeam": "Betis", "strAwayTeam": "Valencia",
      "intHomeScore": "1", "intAwayScore": "0",
      "strStatus": "", "strProgress": "67"
    },
    {
      "strHomeTeam": "Osasuna", "strAwayTeam": "Getafe",
      "intHomeScore": null, "intAwayScore": null,
      "strStatus": "Postponed", "strProgress": ""
    }
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, "3", time.Millisecond, zap.NewNop())
}

func TestFixturesByDate_MapsVerboseStatuses(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		_, _ = w.Write([]byte(dayPayload))
	})

	fx, err := c.FixturesByDate(context.Background(), time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(gotPath, "/3/eventsday.php?d=2026-03-14") {
		t.Errorf("path = %q", gotPath)
	}
	if len(fx) != 3 {
		t.Fatalf("len = %d, want 3", len(fx))
	}

	if fx[0].Status != fixtures.StatusFinished || fx[0].Score() != "0-3" {
		t.Errorf("finished = %+v", fx[0])
	}
	if fx[1].Status != fixtures.StatusInProgress || fx[1].Elapsed != 67 || fx[1].Score() != "1-0" {
		t.Errorf("live = %+v", fx[1])
	}
	if fx[2].Status != fixtures.StatusAbnormal || fx[2].HomeGoals != nil {
		t.Errorf("postponed = %+v", fx[2])
	}
	for _, f := range fx {
		if f.Source != "thesportsdb" {
			t.Errorf("source = %q", f.Source)
		}
	}
}

func TestFixturesByDate_NullEvents(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"events": null}`))
	})

	fx, err := c.FixturesByDate(context.Background(), time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if len(fx) != 0 {
		t.Errorf("len = %d, want 0", len(fx))
	}
}

func TestFixturesByDate_RateLimited(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := c.FixturesByDate(context.Background(), time.Now())
	if !errors.Is(err, fixtures.ErrRateLimited) {
		t.Errorf("err = %v, want ErrRateLimited", err)
	}
}
