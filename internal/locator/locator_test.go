package locator

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/pronotracker/resolution-engine/internal/fixtures"
)

type fakeProvider struct {
	name   string
	byDate map[string][]fixtures.RawFixture
	err    error
	calls  int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) FixturesByDate(_ context.Context, date time.Time) ([]fixtures.RawFixture, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.byDate[date.Format("2006-01-02")], nil
}

type fakeAI struct {
	hg, ag int
	ok     bool
	calls  int
}

func (f *fakeAI) Name() string { return "ai" }

func (f *fakeAI) FinalScore(context.Context, string, string, time.Time) (int, int, bool, error) {
	f.calls++
	return f.hg, f.ag, f.ok, nil
}

type memCache struct {
	data map[string][]fixtures.RawFixture
}

func newMemCache() *memCache { return &memCache{data: map[string][]fixtures.RawFixture{}} }

func (m *memCache) Get(_ context.Context, provider string, date time.Time, dst *[]fixtures.RawFixture) (bool, error) {
	fx, ok := m.data[provider+date.Format("2006-01-02")]
	if ok {
		*dst = fx
	}
	return ok, nil
}

func (m *memCache) Set(_ context.Context, provider string, date time.Time, fx []fixtures.RawFixture) error {
	m.data[provider+date.Format("2006-01-02")] = fx
	return nil
}

func intp(n int) *int { return &n }

var day = time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)

func finishedFixture(home, away string, hg, ag int, source string) fixtures.RawFixture {
	return fixtures.RawFixture{
		HomeTeam: home, AwayTeam: away,
		HomeGoals: intp(hg), AwayGoals: intp(ag),
		Status: fixtures.StatusFinished, Source: source,
	}
}

func TestLocate_PrimaryHit(t *testing.T) {
	primary := &fakeProvider{name: "primary", byDate: map[string][]fixtures.RawFixture{
		"2026-03-14": {
			finishedFixture("Lens", "Brest", 1, 0, "primary"),
			finishedFixture("Manchester City FC", "Everton FC", 2, 1, "primary"),
		},
	}}
	secondary := &fakeProvider{name: "secondary"}
	l := New(zap.NewNop(), []fixtures.Provider{primary, secondary}, nil, newMemCache(), 0.4)

	fx, err := l.Locate(context.Background(), "Man City", "Everton", day)
	if err != nil {
		t.Fatal(err)
	}
	if fx.HomeTeam != "Manchester City FC" || fx.Score() != "2-1" {
		t.Errorf("fixture = %+v", fx)
	}
	if secondary.calls != 0 {
		t.Errorf("secondary called %d times, want 0 (short-circuit)", secondary.calls)
	}
}

func TestLocate_NextDayRetry(t *testing.T) {
	primary := &fakeProvider{name: "primary", byDate: map[string][]fixtures.RawFixture{
		"2026-03-15": {finishedFixture("Lyon", "Nice", 3, 0, "primary")},
	}}
	l := New(zap.NewNop(), []fixtures.Provider{primary}, nil, newMemCache(), 0.4)

	fx, err := l.Locate(context.Background(), "Lyon", "Nice", day)
	if err != nil {
		t.Fatal(err)
	}
	if fx.Score() != "3-0" {
		t.Errorf("fixture = %+v", fx)
	}
	if primary.calls != 2 {
		t.Errorf("primary calls = %d, want 2 (date then date+1)", primary.calls)
	}
}

func TestLocate_SecondaryFallbackOnRateLimit(t *testing.T) {
	primary := &fakeProvider{name: "primary", err: fixtures.ErrRateLimited}
	secondary := &fakeProvider{name: "secondary", byDate: map[string][]fixtures.RawFixture{
		"2026-03-14": {finishedFixture("Granada", "Sevilla", 0, 3, "secondary")},
	}}
	l := New(zap.NewNop(), []fixtures.Provider{primary, secondary}, nil, newMemCache(), 0.4)

	fx, err := l.Locate(context.Background(), "Granada CF", "Sevilla FC", day)
	if err != nil {
		t.Fatal(err)
	}
	if fx.Source != "secondary" {
		t.Errorf("source = %q, want secondary", fx.Source)
	}
}

func TestLocate_OrientationSwap(t *testing.T) {
	primary := &fakeProvider{name: "primary", byDate: map[string][]fixtures.RawFixture{
		"2026-03-14": {finishedFixture("Nice", "Lyon", 0, 2, "primary")},
	}}
	l := New(zap.NewNop(), []fixtures.Provider{primary}, nil, newMemCache(), 0.4)

	// pronostic cadastrado com mandante invertido
	fx, err := l.Locate(context.Background(), "Lyon", "Nice", day)
	if err != nil {
		t.Fatal(err)
	}
	if fx.HomeTeam != "Nice" {
		t.Errorf("fixture = %+v", fx)
	}
}

func TestLocate_NotFoundBelowThreshold(t *testing.T) {
	primary := &fakeProvider{name: "primary", byDate: map[string][]fixtures.RawFixture{
		"2026-03-14": {finishedFixture("Real Madrid", "Osasuna", 4, 0, "primary")},
	}}
	l := New(zap.NewNop(), []fixtures.Provider{primary}, nil, newMemCache(), 0.4)

	_, err := l.Locate(context.Background(), "FC Andorra", "Granada CF", day)
	if !errors.Is(err, ErrNoFixture) {
		t.Errorf("err = %v, want ErrNoFixture", err)
	}
}

func TestLocate_AIFallback(t *testing.T) {
	primary := &fakeProvider{name: "primary"}
	ai := &fakeAI{hg: 1, ag: 1, ok: true}
	l := New(zap.NewNop(), []fixtures.Provider{primary}, ai, newMemCache(), 0.4)

	fx, err := l.Locate(context.Background(), "FC Andorra", "Granada CF", day)
	if err != nil {
		t.Fatal(err)
	}
	if fx.Source != "ai" || fx.Status != fixtures.StatusFinished || fx.Score() != "1-1" {
		t.Errorf("fixture = %+v", fx)
	}
}

func TestLocate_DateCacheAvoidsRefetch(t *testing.T) {
	primary := &fakeProvider{name: "primary", byDate: map[string][]fixtures.RawFixture{
		"2026-03-14": {
			finishedFixture("Lens", "Brest", 1, 0, "primary"),
			finishedFixture("Reims", "Metz", 2, 2, "primary"),
		},
	}}
	l := New(zap.NewNop(), []fixtures.Provider{primary}, nil, newMemCache(), 0.4)

	if _, err := l.Locate(context.Background(), "Lens", "Brest", day); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Locate(context.Background(), "Reims", "Metz", day); err != nil {
		t.Fatal(err)
	}
	if primary.calls != 1 {
		t.Errorf("primary calls = %d, want 1 (second lookup served from cache)", primary.calls)
	}
}
