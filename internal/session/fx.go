package session

import (
	"go.uber.org/fx"
)

var Module = fx.Module("session_store",
	fx.Provide(
		New,
		fx.Annotate(
			func(impl *Impl) Store {
				return impl
			},
			fx.As(new(Store)),
		),
	),
)
