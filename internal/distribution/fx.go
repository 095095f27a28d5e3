package distribution

import (
	"github.com/balfaz610/report-week/internal/report"
	"go.uber.org/fx"
)

var Module = fx.Module("distribution",
	fx.Provide(
		func(s *report.Service) Reports { return s },
		NewDistributor,
	),
)
