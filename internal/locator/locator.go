package locator

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pronotracker/resolution-engine/internal/fixtures"
	"github.com/pronotracker/resolution-engine/internal/teammatch"
)

// ErrNoFixture indica que nenhuma fonte indexou o jogo. Não é uma falha:
// é desfecho esperado para ligas não cobertas e jogos fora da retenção
// dos provedores — o pronostic segue elegível no próximo passe.
var ErrNoFixture = errors.New("no fixture found")

// ScoreResolver é o fallback não estruturado: devolve só um placar final,
// sem metadados de fixture
type ScoreResolver interface {
	Name() string
	FinalScore(ctx context.Context, home, away string, date time.Time) (homeGoals, awayGoals int, ok bool, err error)
}

// Locator orquestra os provedores em ordem de prioridade com cache por data
// e corta no primeiro match confiante
type Locator struct {
	log       *zap.Logger
	providers []fixtures.Provider // índice 0 = primário
	ai        ScoreResolver       // pode ser nil
	cache     DateCache
	minScore  float64

	// serializa o download do mesmo dia entre workers concorrentes
	mu sync.Mutex
}

func New(log *zap.Logger, providers []fixtures.Provider, ai ScoreResolver, cache DateCache, minScore float64) *Locator {
	if minScore <= 0 {
		// constante empírica; ajustável via RESOLVER_MIN_MATCH_SCORE
		minScore = 0.4
	}
	return &Locator{log: log, providers: providers, ai: ai, cache: cache, minScore: minScore}
}

// Locate procura o fixture real correspondente aos nomes editoriais.
// Ordem: primário na data, primário na data+1 (desencontro de fuso entre
// entrada editorial e kickoff do provedor), secundário na data, fallback IA.
func (l *Locator) Locate(ctx context.Context, home, away string, kickoff time.Time) (fixtures.RawFixture, error) {
	type attempt struct {
		provider fixtures.Provider
		date     time.Time
	}
	day := kickoff.UTC()

	var attempts []attempt
	if len(l.providers) > 0 {
		primary := l.providers[0]
		attempts = append(attempts,
			attempt{primary, day},
			attempt{primary, day.AddDate(0, 0, 1)},
		)
		for _, p := range l.providers[1:] {
			attempts = append(attempts, attempt{p, day})
		}
	}

	for _, at := range attempts {
		fxs, err := l.fixturesFor(ctx, at.provider, at.date)
		if err != nil {
			// 429/rede: pula pro próximo fallback, o passe não aborta
			l.log.Warn("provider lookup failed",
				zap.String("provider", at.provider.Name()),
				zap.String("date", at.date.Format("2006-01-02")),
				zap.Error(err),
			)
			continue
		}

		best, score := bestMatch(fxs, home, away)
		l.log.Debug("provider answer",
			zap.String("provider", at.provider.Name()),
			zap.String("date", at.date.Format("2006-01-02")),
			zap.Float64("score", score),
			zap.Int("fixtures", len(fxs)),
		)
		if score >= l.minScore {
			l.log.Info("fixture located",
				zap.String("source", best.Source),
				zap.Float64("score", score),
				zap.String("home", best.HomeTeam),
				zap.String("away", best.AwayTeam),
			)
			return best, nil
		}
	}

	if l.ai != nil {
		hg, ag, ok, err := l.ai.FinalScore(ctx, home, away, day)
		switch {
		case err != nil:
			l.log.Warn("ai lookup failed", zap.Error(err))
		case ok:
			l.log.Info("fixture located",
				zap.String("source", l.ai.Name()),
				zap.String("home", home),
				zap.String("away", away),
			)
			return fixtures.RawFixture{
				HomeTeam:  home,
				AwayTeam:  away,
				HomeGoals: &hg,
				AwayGoals: &ag,
				Status:    fixtures.StatusFinished,
				Source:    l.ai.Name(),
			}, nil
		}
	}

	return fixtures.RawFixture{}, ErrNoFixture
}

// fixturesFor baixa (ou lê do cache) o dia inteiro de fixtures do provedor.
// O mutex cobre o fetch: dois workers pedindo o mesmo dia geram um download só.
func (l *Locator) fixturesFor(ctx context.Context, p fixtures.Provider, date time.Time) ([]fixtures.RawFixture, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cache != nil {
		var cached []fixtures.RawFixture
		if ok, err := l.cache.Get(ctx, p.Name(), date, &cached); err == nil && ok {
			return cached, nil
		}
	}

	fxs, err := p.FixturesByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	if l.cache != nil {
		if err := l.cache.Set(ctx, p.Name(), date, fxs); err != nil {
			l.log.Warn("fixture cache set failed", zap.Error(err))
		}
	}
	return fxs, nil
}

// bestMatch escolhe o fixture com maior soma de similaridade, testando as
// duas orientações (o mandante editorial pode ser o visitante real)
func bestMatch(fxs []fixtures.RawFixture, home, away string) (fixtures.RawFixture, float64) {
	var best fixtures.RawFixture
	bestScore := 0.0
	for _, fx := range fxs {
		direct := teammatch.Similarity(fx.HomeTeam, home) + teammatch.Similarity(fx.AwayTeam, away)
		swapped := teammatch.Similarity(fx.HomeTeam, away) + teammatch.Similarity(fx.AwayTeam, home)
		if s := math.Max(direct, swapped); s > bestScore {
			best, bestScore = fx, s
		}
	}
	return best, bestScore
}
