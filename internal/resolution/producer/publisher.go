package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/pronotracker/resolution-engine/pkg/contracts/events"
)

// Publisher publica os eventos do motor no Kafka (consumidores duráveis:
// estatísticas, notificações) e replica no Redis Pub/Sub pro fanout
// WebSocket do live-gateway.
type Publisher struct {
	log            *zap.Logger
	liveWriter     *kafkago.Writer
	resolvedWriter *kafkago.Writer
	rdb            *redis.Client
	channel        string
}

func NewPublisher(log *zap.Logger, liveWriter, resolvedWriter *kafkago.Writer, rdb *redis.Client, channel string) *Publisher {
	return &Publisher{
		log:            log,
		liveWriter:     liveWriter,
		resolvedWriter: resolvedWriter,
		rdb:            rdb,
		channel:        channel,
	}
}

// WSUpdate é o payload padrão consumido pelo live-gateway
type WSUpdate struct {
	PredictionID string      `json:"predictionId"`
	Type         string      `json:"type"` // "live" | "resolved"
	Payload      interface{} `json:"payload"`
}

func (p *Publisher) PublishLive(ctx context.Context, e events.PredictionLive) error {
	e.Ts = time.Now()
	b, _ := json.Marshal(e)
	if err := p.liveWriter.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(e.PredictionID),
		Value: b,
		Time:  e.Ts,
	}); err != nil {
		return err
	}
	p.broadcast(WSUpdate{PredictionID: e.PredictionID, Type: "live", Payload: e})
	return nil
}

func (p *Publisher) PublishResolved(ctx context.Context, e events.PredictionResolved) error {
	e.Ts = time.Now()
	b, _ := json.Marshal(e)
	if err := p.resolvedWriter.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(e.PredictionID),
		Value: b,
		Time:  e.Ts,
	}); err != nil {
		return err
	}
	p.broadcast(WSUpdate{PredictionID: e.PredictionID, Type: "resolved", Payload: e})
	return nil
}

// broadcast replica no Redis Pub/Sub; falha aqui não bloqueia o passe,
// o WebSocket é melhor-esforço
func (p *Publisher) broadcast(upd WSUpdate) {
	if p.rdb == nil {
		return
	}
	b, _ := json.Marshal(upd)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	if err := p.rdb.Publish(ctx, p.channel, b).Err(); err != nil {
		p.log.Warn("ws broadcast publish failed", zap.Error(err))
	}
}
