package database

import (
	"context"
	"fmt"
	"time"

	"github.com/ifb/ocorrencias-backend/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	redisConnectAttempts = 5
	redisRetryDelay      = 2 * time.Second
)

// NewRedisClient connects to Redis, retrying while the server comes up.
// Redis holds the delivery queue, the realtime channels, revoked tokens and
// the photo cache, so the service does not start without it.
func NewRedisClient(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opt.ClientName = "ocorrencias-backend"

	rdb := redis.NewClient(opt)

	for attempt := 1; ; attempt++ {
		err = rdb.Ping(ctx).Err()
		if err == nil {
			break
		}
		if attempt == redisConnectAttempts {
			_ = rdb.Close()
			return nil, fmt.Errorf("ping redis after %d attempts: %w", attempt, err)
		}
		log.Warn().Err(err).Int("attempt", attempt).Msg("Redis not ready, retrying")
		select {
		case <-ctx.Done():
			_ = rdb.Close()
			return nil, ctx.Err()
		case <-time.After(redisRetryDelay):
		}
	}

	log.Info().
		Str("addr", opt.Addr).
		Int("db", opt.DB).
		Msg("Redis connected")

	return rdb, nil
}
