// Package server exposes the HTTP surface: the webhook endpoint, the cron
// trigger and health/metrics.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/balfaz610/report-week/internal/cardaction"
	"github.com/balfaz610/report-week/internal/clock"
	"github.com/balfaz610/report-week/internal/config"
	"github.com/balfaz610/report-week/internal/dedup"
	"github.com/balfaz610/report-week/internal/distribution"
	"github.com/balfaz610/report-week/internal/messageflow"
	"github.com/balfaz610/report-week/internal/observability"
	obslogger "github.com/balfaz610/report-week/internal/observability/logger"
	obsmetrics "github.com/balfaz610/report-week/internal/observability/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Provide(NewServer),
	fx.Invoke(registerRoutes),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug: obsCfg.Debug(),
	}))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	clock       clock.Clock
	log         *zap.Logger
	metrics     *obsmetrics.Metrics
	dedup       dedup.Store
	processor   *cardaction.Processor
	messages    *messageflow.Handler
	distributor *distribution.Distributor
}

type Params struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	Clock       clock.Clock
	Log         *zap.Logger
	Metrics     *obsmetrics.Metrics `optional:"true"`
	Dedup       dedup.Store
	Processor   *cardaction.Processor
	Messages    *messageflow.Handler
	Distributor *distribution.Distributor
}

func NewServer(p Params) *Server {
	return &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		clock:       p.Clock,
		log:         p.Log.Named("server"),
		metrics:     p.Metrics,
		dedup:       p.Dedup,
		processor:   p.Processor,
		messages:    p.Messages,
		distributor: p.Distributor,
	}
}

// RegisterRoutes mounts the bot's endpoints on the engine.
func (s *Server) RegisterRoutes() {
	s.engine.GET("/", s.HandleRoot)
	s.engine.GET("/api/cron/send-reports", s.HandleCron)
	s.engine.POST("/webhook/event", s.HandleWebhookEvent)
}

func registerRoutes(s *Server) {
	s.RegisterRoutes()
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			_ = ctx
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
