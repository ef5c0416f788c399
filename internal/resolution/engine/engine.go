package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pronotracker/resolution-engine/internal/betrules"
	"github.com/pronotracker/resolution-engine/internal/fixtures"
	"github.com/pronotracker/resolution-engine/internal/locator"
	"github.com/pronotracker/resolution-engine/internal/resolution/model"
	"github.com/pronotracker/resolution-engine/internal/teammatch"
	"github.com/pronotracker/resolution-engine/pkg/contracts/events"
)

// Coordenador da resolução: varre os pronostics abertos, localiza o fixture,
// classifica a aposta e aplica as transições de estado, publicando eventos.

type Repo interface {
	FindOpen(ctx context.Context, sports []string) ([]model.Prediction, error)
	UpdateLive(ctx context.Context, id, score string) (bool, error)
	Resolve(ctx context.Context, id, status, finalScore string) (affected int64, applied bool, err error)
}

type Locator interface {
	Locate(ctx context.Context, home, away string, kickoff time.Time) (fixtures.RawFixture, error)
}

type Publisher interface {
	PublishLive(ctx context.Context, e events.PredictionLive) error
	PublishResolved(ctx context.Context, e events.PredictionResolved) error
}

// Stats é o agregado devolvido ao gatilho admin
type Stats struct {
	Checked int `json:"checked"`
	Updated int `json:"updated"`
	Live    int `json:"live"`
}

type Engine struct {
	Log     *zap.Logger
	Repo    Repo
	Locator Locator
	Pub     Publisher

	Sports     []string
	Workers    int           // workers concorrentes por passe
	PassBudget time.Duration // orçamento de wall-clock de um passe

	// callbacks de métricas (counter++), ligados no main
	OnChecked      func()
	OnLive         func()
	OnResolved     func(status string)
	OnUnrecognized func()
	OnNotFound     func()
	OnError        func(stage string)
}

// Run agenda passes recorrentes até o contexto encerrar
func (e *Engine) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := e.RunPass(ctx); err != nil {
				e.Log.Error("resolution pass failed", zap.Error(err))
			}
		}
	}
}

// RunPass executa um passe completo. Pronostics são independentes entre si e
// processados em paralelo; estourado o orçamento, itens novos deixam de ser
// iniciados mas os em andamento terminam (nada aborta no meio da escrita).
func (e *Engine) RunPass(ctx context.Context) (Stats, error) {
	preds, err := e.Repo.FindOpen(ctx, e.Sports)
	if err != nil {
		return Stats{}, fmt.Errorf("load open predictions: %w", err)
	}

	budget := e.PassBudget
	if budget <= 0 {
		budget = 2 * time.Minute
	}
	deadline := time.Now().Add(budget)

	workers := e.Workers
	if workers <= 0 {
		workers = 4
	}

	var (
		mu    sync.Mutex
		stats Stats
	)

	g := new(errgroup.Group)
	g.SetLimit(workers)

	for i := range preds {
		if ctx.Err() != nil {
			break
		}
		if time.Now().After(deadline) {
			e.Log.Warn("pass budget exhausted", zap.Int("skipped", len(preds)-i))
			break
		}

		p := preds[i]
		g.Go(func() error {
			// isolamento por item: falha de um pronostic não derruba o passe
			res := e.resolveOne(ctx, p)
			mu.Lock()
			stats.Checked++
			if res.live {
				stats.Live++
			}
			if res.resolved {
				stats.Updated++
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	e.Log.Info("resolution pass finished",
		zap.Int("checked", stats.Checked),
		zap.Int("live", stats.Live),
		zap.Int("updated", stats.Updated),
	)
	return stats, nil
}

type itemResult struct {
	live     bool
	resolved bool
}

func (e *Engine) resolveOne(ctx context.Context, p model.Prediction) itemResult {
	if e.OnChecked != nil {
		e.OnChecked()
	}
	log := e.Log.With(
		zap.String("prediction_id", p.ID),
		zap.String("home", p.HomeTeam),
		zap.String("away", p.AwayTeam),
	)

	fx, err := e.Locator.Locate(ctx, p.HomeTeam, p.AwayTeam, p.KickoffAt)
	if errors.Is(err, locator.ErrNoFixture) {
		// desfecho esperado: o pronostic segue elegível no próximo passe
		if e.OnNotFound != nil {
			e.OnNotFound()
		}
		return itemResult{}
	}
	if err != nil {
		log.Warn("fixture lookup failed", zap.Error(err))
		if e.OnError != nil {
			e.OnError("locate")
		}
		return itemResult{}
	}

	switch fx.Status {
	case fixtures.StatusInProgress:
		return e.applyLive(ctx, log, p, fx)
	case fixtures.StatusFinished:
		return e.applyFinal(ctx, log, p, fx)
	case fixtures.StatusAbnormal:
		return e.applyVoid(ctx, log, p)
	}
	return itemResult{}
}

func (e *Engine) applyLive(ctx context.Context, log *zap.Logger, p model.Prediction, fx fixtures.RawFixture) itemResult {
	score := fx.Score()
	if score == "" {
		return itemResult{}
	}

	changed, err := e.Repo.UpdateLive(ctx, p.ID, score)
	if err != nil {
		log.Warn("live update failed", zap.Error(err))
		if e.OnError != nil {
			e.OnError("persist")
		}
		return itemResult{}
	}
	if !changed {
		return itemResult{}
	}

	ev := events.PredictionLive{
		PredictionID: p.ID,
		HomeTeam:     p.HomeTeam,
		AwayTeam:     p.AwayTeam,
		Score:        score,
		Elapsed:      fx.Elapsed,
		Bet:          p.Bet,
		Odds:         p.Odds,
	}
	if err := e.Pub.PublishLive(ctx, ev); err != nil {
		log.Warn("publish live failed", zap.Error(err))
		if e.OnError != nil {
			e.OnError("publish")
		}
	}
	if e.OnLive != nil {
		e.OnLive()
	}
	return itemResult{live: true}
}

func (e *Engine) applyFinal(ctx context.Context, log *zap.Logger, p model.Prediction, fx fixtures.RawFixture) itemResult {
	if fx.HomeGoals == nil || fx.AwayGoals == nil {
		log.Warn("finished fixture without goals", zap.String("source", fx.Source))
		return itemResult{}
	}

	sem, err := betrules.Classify(p.Bet, p.HomeTeam, p.AwayTeam)
	if errors.Is(err, betrules.ErrUnrecognized) {
		// nunca liquidar no chute: fica PENDING pra revisão editorial
		log.Warn("unrecognized bet description", zap.String("bet", p.Bet))
		if e.OnUnrecognized != nil {
			e.OnUnrecognized()
		}
		return itemResult{}
	}
	if err != nil {
		log.Warn("classify failed", zap.Error(err))
		return itemResult{}
	}

	// orientação: o mandante editorial pode ser o visitante no fixture real
	teamAHome := teammatch.Similarity(p.HomeTeam, fx.HomeTeam) >= teammatch.Similarity(p.HomeTeam, fx.AwayTeam)

	verdict := betrules.Evaluate(sem, *fx.HomeGoals, *fx.AwayGoals, teamAHome)
	status := model.StatusLost
	if verdict == betrules.VerdictWon {
		status = model.StatusWon
	}

	affected, applied, err := e.Repo.Resolve(ctx, p.ID, status, fx.Score())
	if err != nil {
		// persistência falhou: o próximo passe agendado tenta de novo
		log.Warn("resolve persist failed", zap.Error(err))
		if e.OnError != nil {
			e.OnError("persist")
		}
		return itemResult{}
	}
	if !applied {
		// outro passe fechou primeiro; status terminal não é re-entrado
		return itemResult{}
	}

	ev := events.PredictionResolved{
		PredictionID: p.ID,
		Status:       status,
		FinalScore:   fx.Score(),
		Bet:          p.Bet,
		Odds:         p.Odds,
		UserBets:     affected,
	}
	if err := e.Pub.PublishResolved(ctx, ev); err != nil {
		log.Warn("publish resolved failed", zap.Error(err))
		if e.OnError != nil {
			e.OnError("publish")
		}
	}
	if e.OnResolved != nil {
		e.OnResolved(status)
	}

	log.Info("prediction resolved",
		zap.String("status", status),
		zap.String("score", fx.Score()),
		zap.String("source", fx.Source),
		zap.Int64("user_bets", affected),
	)
	return itemResult{resolved: true}
}

// applyVoid cobre adiamento/cancelamento/abandono: a causa é ambígua, então
// o motor anula e deixa a decisão final pro operador
func (e *Engine) applyVoid(ctx context.Context, log *zap.Logger, p model.Prediction) itemResult {
	affected, applied, err := e.Repo.Resolve(ctx, p.ID, model.StatusVoid, "")
	if err != nil {
		log.Warn("void persist failed", zap.Error(err))
		if e.OnError != nil {
			e.OnError("persist")
		}
		return itemResult{}
	}
	if !applied {
		return itemResult{}
	}

	ev := events.PredictionResolved{
		PredictionID: p.ID,
		Status:       model.StatusVoid,
		Bet:          p.Bet,
		Odds:         p.Odds,
		UserBets:     affected,
	}
	if err := e.Pub.PublishResolved(ctx, ev); err != nil {
		log.Warn("publish resolved failed", zap.Error(err))
	}
	if e.OnResolved != nil {
		e.OnResolved(model.StatusVoid)
	}

	log.Info("prediction voided", zap.Int64("user_bets", affected))
	return itemResult{resolved: true}
}
