package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/diewo77/go-crm/internal/clock"
	"github.com/diewo77/go-crm/internal/config"
	"github.com/diewo77/go-crm/internal/mail"
	"github.com/diewo77/go-crm/internal/metrics"
	"github.com/diewo77/go-crm/internal/middleware"
	"github.com/diewo77/go-crm/internal/server"
	"github.com/diewo77/go-crm/logging"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// App is the assembled HTTP application and the connections it owns.
type App struct {
	Handler http.Handler
	redis   *redis.Client
}

// NewApp wires the mailer, rate limiter and metrics into the router.
func NewApp(cfg *config.Config, gdb *gorm.DB, clk clock.Clock, log *logging.Logger) (*App, error) {
	app := &App{}
	limiter, err := app.limiter(cfg, log)
	if err != nil {
		return nil, err
	}
	app.Handler = server.New(server.Options{
		DB:      gdb,
		Config:  cfg,
		Clock:   clk,
		Logger:  log,
		Metrics: metrics.New(nil),
		Mailer:  mail.FromConfig(cfg.Mail, log),
		Limiter: limiter,
	})
	return app, nil
}

// limiter picks the Redis fixed window when REDIS_ADDR is set, otherwise a
// per-process bucket.
func (a *App) limiter(cfg *config.Config, log *logging.Logger) (middleware.Limiter, error) {
	perMinute := cfg.Redis.LeadsPerMinute
	if cfg.Redis.Addr == "" {
		log.Info("rate limiter using memory store", "per_minute", perMinute)
		return middleware.NewMemoryLimiter(perMinute, time.Minute), nil
	}
	a.redis = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := a.redis.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
	}
	log.Info("rate limiter using redis", "addr", cfg.Redis.Addr, "per_minute", perMinute)
	return middleware.NewRedisLimiter(a.redis, "leads", perMinute, time.Minute), nil
}

func (a *App) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
