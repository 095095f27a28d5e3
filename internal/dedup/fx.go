package dedup

import (
	"context"

	"github.com/balfaz610/report-week/internal/clock"
	"github.com/balfaz610/report-week/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("dedup",
	fx.Provide(provideStore),
)

func provideStore(lc fx.Lifecycle, cfg config.Config, clk clock.Clock, log *zap.Logger) Store {
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				_ = ctx
				return client.Close()
			},
		})
		log.Info("dedup store backed by redis", zap.String("addr", cfg.RedisAddr))
		return NewRedisStore(client, TTL, log)
	}

	store := NewMemoryStore(clk, TTL)
	sweepCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			_ = ctx
			go store.Run(sweepCtx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			_ = ctx
			cancel()
			return nil
		},
	})
	return store
}
