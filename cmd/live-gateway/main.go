package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pronotracker/resolution-engine/internal/livegate/ws"
	sharedcache "github.com/pronotracker/resolution-engine/internal/shared/cache"
	"github.com/pronotracker/resolution-engine/internal/shared/config"
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

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// POC: libera qualquer origem; apertar em produção
	hub := ws.NewHub(func(r *http.Request) bool { return true })

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Repassa os broadcasts do resolution-worker para os clientes conectados
	ws.StartRedisSubscriber(ctx, log, redisClient, cfg.RedisPubSubChannel, hub)

	r := chi.NewRouter()
	r.Get("/v1/live", hub.HandleWS)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: r,
	}

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	})

	go func() {
		<-ctx.Done()
		shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shCancel()
		_ = srv.Shutdown(shCtx)
	}()

	log.Info("live-gateway listening", zap.String("addr", srv.Addr), zap.String("channel", cfg.RedisPubSubChannel))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("ws server", zap.Error(err))
	}
	log.Info("live-gateway stopped")
}
