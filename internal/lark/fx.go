package lark

import "go.uber.org/fx"

var Module = fx.Module("lark.client",
	fx.Provide(NewFromConfig),
)
