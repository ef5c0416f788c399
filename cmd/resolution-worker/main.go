package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/pronotracker/resolution-engine/internal/fixtures"
	"github.com/pronotracker/resolution-engine/internal/fixtures/apifootball"
	"github.com/pronotracker/resolution-engine/internal/fixtures/scoreai"
	"github.com/pronotracker/resolution-engine/internal/fixtures/sportsdb"
	"github.com/pronotracker/resolution-engine/internal/locator"
	"github.com/pronotracker/resolution-engine/internal/resolution/engine"
	"github.com/pronotracker/resolution-engine/internal/resolution/httpapi"
	"github.com/pronotracker/resolution-engine/internal/resolution/producer"
	"github.com/pronotracker/resolution-engine/internal/resolution/repo"
	sharedcache "github.com/pronotracker/resolution-engine/internal/shared/cache"
	"github.com/pronotracker/resolution-engine/internal/shared/config"
	"github.com/pronotracker/resolution-engine/internal/shared/db"
	"github.com/pronotracker/resolution-engine/internal/shared/kafka"
	"github.com/pronotracker/resolution-engine/internal/shared/logger"
	"github.com/pronotracker/resolution-engine/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	// Inicializa dependências: Postgres, Redis e Kafka
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	liveWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicPredictionLive)
	defer liveWriter.Close()
	resolvedWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicPredictionResolved)
	defer resolvedWriter.Close()

	// Provedores de fixtures em ordem de preferência (o primeiro é o primário)
	providers := []fixtures.Provider{
		apifootball.New(cfg.APIFootballURL, cfg.APIFootballKey, cfg.APIFootballInterval, log),
		sportsdb.New(cfg.SportsDBURL, cfg.SportsDBKey, cfg.SportsDBInterval, log),
	}
	ai := scoreai.New(cfg.ScoreAIURL, cfg.ScoreAIKey, cfg.ScoreAIModel, log)
	dateCache := locator.NewRedisDateCache(redisClient, cfg.FixtureCacheTTL)
	loc := locator.New(log, providers, ai, dateCache, cfg.MinMatchScore)

	repository := repo.NewPostgres(pg)
	pub := producer.NewPublisher(log, liveWriter, resolvedWriter, redisClient, cfg.RedisPubSubChannel)

	// Métricas Prometheus do motor
	checked := prometheus.NewCounter(prometheus.CounterOpts{Name: "resolver_predictions_checked_total", Help: "pronostics inspecionados por passe"})
	liveUpd := prometheus.NewCounter(prometheus.CounterOpts{Name: "resolver_live_updates_total", Help: "atualizações de placar ao vivo"})
	resolved := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "resolver_resolutions_total", Help: "pronostics fechados por status"}, []string{"status"})
	unrecognized := prometheus.NewCounter(prometheus.CounterOpts{Name: "resolver_unrecognized_bets_total", Help: "apostas sem família reconhecida"})
	notFound := prometheus.NewCounter(prometheus.CounterOpts{Name: "resolver_fixture_not_found_total", Help: "pronostics sem fixture localizado"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "resolver_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(checked, liveUpd, resolved, unrecognized, notFound, errorsBy)

	eng := &engine.Engine{
		Log:        log,
		Repo:       repository,
		Locator:    loc,
		Pub:        pub,
		Sports:     cfg.Sports,
		Workers:    cfg.Workers,
		PassBudget: cfg.PassBudget,

		OnChecked:      func() { checked.Inc() },
		OnLive:         func() { liveUpd.Inc() },
		OnResolved:     func(status string) { resolved.WithLabelValues(status).Inc() },
		OnUnrecognized: func() { unrecognized.Inc() },
		OnNotFound:     func() { notFound.Inc() },
		OnError:        func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	// API admin: gatilho manual e correção de operador
	api := &httpapi.API{Log: log, Engine: eng, Corrector: repository, Pub: pub}
	apiSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: api.Router(),
	}

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("pg: %w", err)
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	})

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Passe agendado roda em paralelo ao servidor admin
	go eng.Run(ctx, cfg.PassInterval)

	go func() {
		<-ctx.Done()
		shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shCancel()
		_ = apiSrv.Shutdown(shCtx)
	}()

	log.Info("resolution-worker listening",
		zap.String("addr", apiSrv.Addr),
		zap.Strings("sports", cfg.Sports),
		zap.Duration("pass_interval", cfg.PassInterval),
	)
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api server", zap.Error(err))
	}
	log.Info("resolution-worker stopped")
}
