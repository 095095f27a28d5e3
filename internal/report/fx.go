package report

import (
	"github.com/balfaz610/report-week/internal/lark"
	"go.uber.org/fx"
)

var Module = fx.Module("report.service",
	fx.Provide(
		func(c *lark.Client) TableClient { return c },
		NewService,
	),
)
