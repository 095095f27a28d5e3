package cardaction

import (
	"github.com/balfaz610/report-week/internal/notify"
	"github.com/balfaz610/report-week/internal/report"
	"go.uber.org/fx"
)

var Module = fx.Module("cardaction",
	fx.Provide(
		func(s *report.Service) StoreUpdater { return s },
		func(d notify.Dispatcher) CardUpdater { return d },
		func(r *notify.Renderer) ResultRenderer { return r },
		NewProcessor,
	),
)
