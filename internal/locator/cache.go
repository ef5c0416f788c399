package locator

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pronotracker/resolution-engine/internal/fixtures"
)

// DateCache guarda o download completo de um dia de fixtures por provedor,
// evitando repetir a chamada cara dentro de um passe de resolução
type DateCache interface {
	Get(ctx context.Context, provider string, date time.Time, dst *[]fixtures.RawFixture) (bool, error)
	Set(ctx context.Context, provider string, date time.Time, fx []fixtures.RawFixture) error
}

// RedisDateCache implementa DateCache sobre Redis com TTL curto
// Client: cliente Redis
// TTL: tempo de expiração dos registros (ordem de minutos)
type RedisDateCache struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewRedisDateCache cria uma instância de cache Redis com TTL configurável
func NewRedisDateCache(c *redis.Client, ttl time.Duration) *RedisDateCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisDateCache{Client: c, TTL: ttl}
}

// key gera a chave Redis para o dia de fixtures de um provedor
func key(provider string, date time.Time) string {
	return "fixtures:" + provider + ":" + date.Format("2006-01-02")
}

func (r *RedisDateCache) Get(ctx context.Context, provider string, date time.Time, dst *[]fixtures.RawFixture) (bool, error) {
	b, err := r.Client.Get(ctx, key(provider, date)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

func (r *RedisDateCache) Set(ctx context.Context, provider string, date time.Time, fx []fixtures.RawFixture) error {
	b, err := json.Marshal(fx)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, key(provider, date), b, r.TTL).Err()
}
