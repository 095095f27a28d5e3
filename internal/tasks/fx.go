package tasks

import (
	"context"

	obsmetrics "github.com/balfaz610/report-week/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("tasks",
	fx.Provide(provideRunner),
)

func provideRunner(lc fx.Lifecycle, log *zap.Logger, m *obsmetrics.Metrics) *Runner {
	runner := NewRunner(defaultQueueSize, log, m)
	workerCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			_ = ctx
			go runner.Start(workerCtx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			err := runner.Shutdown(ctx)
			cancel()
			return err
		},
	})
	return runner
}
