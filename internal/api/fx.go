package api

import (
	"go.uber.org/fx"
)

var Module = fx.Module("api_client",
	fx.Provide(
		fx.Annotate(
			New,
			fx.As(new(Client)),
		),
	),
)
