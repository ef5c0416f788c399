package scoreai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pronotracker/resolution-engine/internal/fixtures"
)

// Fallback não estruturado: quando nenhum provedor estruturado indexou o
// fixture, pergunta o placar final a um endpoint estilo chat-completions.
// Só devolve um placar, nunca metadados do fixture; o locator marca o
// resultado com a tag "ai" e confiança mais baixa.

type Client struct {
	url     string
	apiKey  string
	model   string
	log     *zap.Logger
	httpc   *http.Client
	limiter *rate.Limiter
}

func New(url, apiKey, model string, log *zap.Logger) *Client {
	return &Client{
		url:     url,
		apiKey:  apiKey,
		model:   model,
		log:     log,
		httpc:   &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
}

func (c *Client) Name() string { return "ai" }

var scoreRe = regexp.MustCompile(`(\d+)\s*-\s*(\d+)`)

type chatRequest struct {
	Model       string    `json:"model"`
	Temperature float64   `json:"temperature"`
	Messages    []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// FinalScore pergunta o placar final de um jogo já encerrado.
// ok=false quando o modelo não conhece o resultado; isso não é erro.
func (c *Client) FinalScore(ctx context.Context, home, away string, date time.Time) (homeGoals, awayGoals int, ok bool, err error) {
	if c.apiKey == "" {
		return 0, 0, false, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, 0, false, err
	}

	prompt := fmt.Sprintf(
		"Final score of the football match %s vs %s played on %s. Answer only with the score in the form H-A (home first) or UNKNOWN.",
		home, away, date.Format("2006-01-02"),
	)
	payload, _ := json.Marshal(chatRequest{
		Model:       c.model,
		Temperature: 0,
		Messages: []message{
			{Role: "system", Content: "You are a football results database. Answer with a score or UNKNOWN, nothing else."},
			{Role: "user", Content: prompt},
		},
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return 0, 0, false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	res, err := c.httpc.Do(req)
	if err != nil {
		return 0, 0, false, fmt.Errorf("scoreai: %w", err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusTooManyRequests:
		return 0, 0, false, fmt.Errorf("scoreai: %w", fixtures.ErrRateLimited)
	case res.StatusCode != http.StatusOK:
		return 0, 0, false, fmt.Errorf("scoreai: http %d", res.StatusCode)
	}

	var body chatResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return 0, 0, false, fmt.Errorf("scoreai: %w", err)
	}
	if len(body.Choices) == 0 {
		return 0, 0, false, nil
	}

	content := body.Choices[0].Message.Content
	m := scoreRe.FindStringSubmatch(content)
	if m == nil {
		c.log.Debug("ai lookup inconclusive",
			zap.String("home", home), zap.String("away", away), zap.String("answer", content))
		return 0, 0, false, nil
	}

	hg, _ := strconv.Atoi(m[1])
	ag, _ := strconv.Atoi(m[2])
	return hg, ag, true, nil
}
