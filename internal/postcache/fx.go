package postcache

import (
	"go.uber.org/fx"
)

var Module = fx.Module("post_cache",
	fx.Provide(
		New,
		fx.Annotate(
			func(impl *Impl) Cache {
				return impl
			},
			fx.As(new(Cache)),
		),
	),
)
