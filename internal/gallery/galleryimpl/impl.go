package galleryimpl

import (
	"time"

	"github.com/cha-revelacao/guest-sync/internal/api"
	"github.com/cha-revelacao/guest-sync/internal/gallery"
	"github.com/cha-revelacao/guest-sync/internal/media"
	"github.com/cha-revelacao/guest-sync/internal/postcache"
	"github.com/cha-revelacao/guest-sync/internal/ratelimit"
	"github.com/cha-revelacao/guest-sync/internal/session"
	"github.com/cha-revelacao/guest-sync/pkg/config"
	"github.com/cha-revelacao/guest-sync/pkg/logger"
	"go.uber.org/fx"
)

// Defaults for guests that never identified themselves.
const (
	anonymousName   = "Convidado"
	anonymousAvatar = "assets/avatar-1.jpg"
)

type Opts struct {
	fx.In

	Api      api.Client
	Cache    postcache.Cache
	Sessions session.Store
	Media    *media.Processor
	Logger   logger.Logger
	Config   *config.Config
}

type GalleryImpl struct {
	Api      api.Client
	Cache    postcache.Cache
	Sessions session.Store
	Media    *media.Processor
	Logger   logger.Logger
	Config   *config.Config

	limiter ratelimit.Limiter
	now     func() time.Time
}

func New(opts Opts) *GalleryImpl {
	return &GalleryImpl{
		Api:      opts.Api,
		Cache:    opts.Cache,
		Sessions: opts.Sessions,
		Media:    opts.Media,
		Logger:   opts.Logger.WithComponent("Gallery"),
		Config:   opts.Config,
		limiter: ratelimit.NewInMemoryLimiter(
			opts.Config.Sync.SubmitPerMinute,
			time.Minute,
			opts.Config.Sync.SubmitBurst,
		),
		now: time.Now,
	}
}

var _ gallery.Controller = (*GalleryImpl)(nil)
