package notify

import (
	"github.com/balfaz610/report-week/internal/lark"
	"go.uber.org/fx"
)

var Module = fx.Module("notify",
	fx.Provide(
		func(c *lark.Client) Messenger { return c },
		NewRenderer,
		NewDispatcher,
	),
)
