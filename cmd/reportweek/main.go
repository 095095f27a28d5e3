package main

import (
	"github.com/balfaz610/report-week/internal/cardaction"
	"github.com/balfaz610/report-week/internal/clock"
	"github.com/balfaz610/report-week/internal/config"
	"github.com/balfaz610/report-week/internal/dedup"
	"github.com/balfaz610/report-week/internal/distribution"
	"github.com/balfaz610/report-week/internal/lark"
	"github.com/balfaz610/report-week/internal/messageflow"
	"github.com/balfaz610/report-week/internal/notify"
	"github.com/balfaz610/report-week/internal/observability"
	"github.com/balfaz610/report-week/internal/report"
	"github.com/balfaz610/report-week/internal/server"
	"github.com/balfaz610/report-week/internal/tasks"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		clock.Module,

		// Platform clients and shared state
		lark.Module,
		dedup.Module,
		tasks.Module,

		// Functional domains
		report.Module,
		notify.Module,
		cardaction.Module,
		messageflow.Module,
		distribution.Module,

		server.Module,
	)
	app.Run()
}
