package sportsdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pronotracker/resolution-engine/internal/fixtures"
)

// Cliente do provedor secundário (TheSportsDB). API independente, limite de
// chamadas independente do primário; usado quando o primário não encontra o
// fixture em nenhuma das duas datas tentadas.

type Client struct {
	baseURL string
	apiKey  string
	sport   string
	log     *zap.Logger
	httpc   *http.Client
	limiter *rate.Limiter
}

func New(baseURL, apiKey string, minInterval time.Duration, log *zap.Logger) *Client {
	if minInterval <= 0 {
		minInterval = 2 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		sport:   "Soccer",
		log:     log,
		httpc:   &http.Client{Timeout: 8 * time.Second},
		limiter: rate.NewLimiter(rate.Every(minInterval), 1),
	}
}

func (c *Client) Name() string { return "thesportsdb" }

type dayResponse struct {
	Events []struct {
		HomeTeam  string  `json:"strHomeTeam"`
		AwayTeam  string  `json:"strAwayTeam"`
		HomeScore *string `json:"intHomeScore"`
		AwayScore *string `json:"intAwayScore"`
		Status    string  `json:"strStatus"`
		Progress  string  `json:"strProgress"`
	} `json:"events"`
}

func (c *Client) FixturesByDate(ctx context.Context, date time.Time) ([]fixtures.RawFixture, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s/eventsday.php?d=%s&s=%s",
		c.baseURL, c.apiKey, date.Format("2006-01-02"), c.sport)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	res, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s fixtures: %w", c.Name(), err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusTooManyRequests || res.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%s: %w", c.Name(), fixtures.ErrRateLimited)
	case res.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%s fixtures: http %d", c.Name(), res.StatusCode)
	}

	var body dayResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%s fixtures: %w", c.Name(), err)
	}

	// "events": null quando não há jogos indexados no dia
	out := make([]fixtures.RawFixture, 0, len(body.Events))
	for _, ev := range body.Events {
		out = append(out, fixtures.RawFixture{
			HomeTeam:  ev.HomeTeam,
			AwayTeam:  ev.AwayTeam,
			HomeGoals: parseScore(ev.HomeScore),
			AwayGoals: parseScore(ev.AwayScore),
			Status:    mapStatus(ev.Status, ev.Progress),
			Elapsed:   parseElapsed(ev.Progress),
			Source:    c.Name(),
		})
	}

	c.log.Debug("fixtures fetched",
		zap.String("provider", c.Name()),
		zap.String("date", date.Format("2006-01-02")),
		zap.Int("count", len(out)),
	)
	return out, nil
}

// mapStatus converte o vocabulário verboso do TheSportsDB ("Match Finished",
// "Not Started", minuto corrente em strProgress) pro vocabulário comum
func mapStatus(status, progress string) fixtures.MatchStatus {
	s := strings.ToUpper(strings.TrimSpace(status))
	switch s {
	case "MATCH FINISHED", "FT", "AET", "PEN", "FINISHED":
		return fixtures.StatusFinished
	case "NOT STARTED", "NS", "":
		if parseElapsed(progress) > 0 {
			return fixtures.StatusInProgress
		}
		return fixtures.StatusNotStarted
	case "POSTPONED", "CANCELLED", "CANCELED", "ABANDONED", "SUSPENDED":
		return fixtures.StatusAbnormal
	case "1H", "2H", "HT", "ET", "IN PROGRESS", "LIVE":
		return fixtures.StatusInProgress
	}
	// status numérico = minuto da partida
	if _, err := strconv.Atoi(s); err == nil {
		return fixtures.StatusInProgress
	}
	return fixtures.StatusUnknown
}

func parseScore(s *string) *int {
	if s == nil || *s == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(*s))
	if err != nil {
		return nil
	}
	return &n
}

func parseElapsed(progress string) int {
	n, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(progress, "'")))
	if err != nil {
		return 0
	}
	return n
}
