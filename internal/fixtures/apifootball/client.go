package apifootball

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pronotracker/resolution-engine/internal/fixtures"
)

// Cliente do provedor primário (API-Football v3). Auto-limita o espaçamento
// entre chamadas pra não tomar 429/403 do fornecedor.

type Client struct {
	baseURL    string
	apiKey     string
	log        *zap.Logger
	httpc      *http.Client
	limiter    *rate.Limiter
	maxRetries uint64
}

func New(baseURL, apiKey string, minInterval time.Duration, log *zap.Logger) *Client {
	if minInterval <= 0 {
		minInterval = time.Second
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		log:        log,
		httpc:      &http.Client{Timeout: 8 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(minInterval), 1),
		maxRetries: 2,
	}
}

func (c *Client) Name() string { return "api-football" }

// FixturesByDate baixa todos os fixtures do dia. 429/5xx entram em backoff
// exponencial; outros status não são retentados (tratados como "sem dados").
func (c *Client) FixturesByDate(ctx context.Context, date time.Time) ([]fixtures.RawFixture, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var out []fixtures.RawFixture
	op := func() error {
		fx, err := c.fetch(ctx, date)
		if err != nil {
			var se *statusError
			if errors.As(err, &se) && !se.retryable() {
				return backoff.Permanent(err)
			}
			return err
		}
		out = fx
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		var se *statusError
		if errors.As(err, &se) && (se.code == http.StatusTooManyRequests || se.code == http.StatusForbidden) {
			return nil, fmt.Errorf("%s: %w", c.Name(), fixtures.ErrRateLimited)
		}
		return nil, fmt.Errorf("%s fixtures: %w", c.Name(), err)
	}

	c.log.Debug("fixtures fetched",
		zap.String("provider", c.Name()),
		zap.String("date", date.Format("2006-01-02")),
		zap.Int("count", len(out)),
	)
	return out, nil
}

type apiResponse struct {
	Response []struct {
		Fixture struct {
			Status struct {
				Short   string `json:"short"`
				Elapsed *int   `json:"elapsed"`
			} `json:"status"`
		} `json:"fixture"`
		Teams struct {
			Home struct {
				Name string `json:"name"`
			} `json:"home"`
			Away struct {
				Name string `json:"name"`
			} `json:"away"`
		} `json:"teams"`
		Goals struct {
			Home *int `json:"home"`
			Away *int `json:"away"`
		} `json:"goals"`
	} `json:"response"`
}

func (c *Client) fetch(ctx context.Context, date time.Time) ([]fixtures.RawFixture, error) {
	url := fmt.Sprintf("%s/fixtures?date=%s", c.baseURL, date.Format("2006-01-02"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-apisports-key", c.apiKey)

	res, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, &statusError{code: res.StatusCode}
	}

	var body apiResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, err
	}

	out := make([]fixtures.RawFixture, 0, len(body.Response))
	for _, item := range body.Response {
		elapsed := 0
		if item.Fixture.Status.Elapsed != nil {
			elapsed = *item.Fixture.Status.Elapsed
		}
		out = append(out, fixtures.RawFixture{
			HomeTeam:  item.Teams.Home.Name,
			AwayTeam:  item.Teams.Away.Name,
			HomeGoals: item.Goals.Home,
			AwayGoals: item.Goals.Away,
			Status:    mapStatus(item.Fixture.Status.Short),
			Elapsed:   elapsed,
			Source:    c.Name(),
		})
	}
	return out, nil
}

// mapStatus converte os códigos curtos da API-Football pro vocabulário comum
func mapStatus(short string) fixtures.MatchStatus {
	switch strings.ToUpper(short) {
	case "NS", "TBD":
		return fixtures.StatusNotStarted
	case "1H", "HT", "2H", "ET", "BT", "P", "SUSP", "INT", "LIVE":
		return fixtures.StatusInProgress
	case "FT", "AET", "PEN":
		return fixtures.StatusFinished
	case "PST", "CANC", "ABD", "AWD", "WO":
		return fixtures.StatusAbnormal
	}
	return fixtures.StatusUnknown
}

type statusError struct{ code int }

func (e *statusError) Error() string { return fmt.Sprintf("http %d", e.code) }

func (e *statusError) retryable() bool {
	return e.code == http.StatusTooManyRequests || e.code >= 500
}
