package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// NewRedis abre el cliente que respalda el cache de mesas y las colas de
// jobs (cocina, recibos). El ping corto hace que una REDIS_URL rota falle
// en el arranque y no en el primer pedido.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("REDIS_URL: %w", err)
	}
	// Mismo criterio de pool que NewDatabase: el trafico de cache y colas
	// es liviano comparado con postgres.
	opts.PoolSize = 20
	opts.MinIdleConns = 2

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping a redis: %w", err)
	}

	log.Info().Str("addr", opts.Addr).Msg("redis conectado")
	return rdb, nil
}
