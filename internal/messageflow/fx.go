package messageflow

import (
	"github.com/balfaz610/report-week/internal/lark"
	"github.com/balfaz610/report-week/internal/report"
	"go.uber.org/fx"
)

var Module = fx.Module("messageflow",
	fx.Provide(
		func(c *lark.Client) Directory { return c },
		func(s *report.Service) Reports { return s },
		NewHandler,
	),
)
