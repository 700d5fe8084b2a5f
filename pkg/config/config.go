package config

import (
	"log"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App struct {
		Env       string `env:"APP_ENV" env-default:"development"`
		Port      int    `env:"APP_PORT" env-default:"8080"`
		SentryUrl string `env:"SENTRY_URL"`
	}
	Api struct {
		BaseURL string        `env:"API_BASE_URL" env-default:"http://localhost:3000"`
		Timeout time.Duration `env:"API_TIMEOUT" env-default:"15s"`
	}
	Storage struct {
		Path       string `env:"STORAGE_PATH" env-default:"./guest-sync.db"`
		QuotaBytes int64  `env:"STORAGE_QUOTA_BYTES" env-default:"5242880"`
	}
	Session struct {
		LifetimeHours int `env:"SESSION_LIFETIME_HOURS" env-default:"4"`
	}
	Event struct {
		CanonicalTitle string `env:"EVENT_CANONICAL_TITLE" env-default:"Chá Revelação"`
	}
	Media struct {
		MaxDimension   int `env:"MEDIA_MAX_DIMENSION" env-default:"600"`
		GalleryQuality int `env:"MEDIA_GALLERY_QUALITY" env-default:"50"`
		ProfileQuality int `env:"MEDIA_PROFILE_QUALITY" env-default:"70"`
	}
	Sync struct {
		SweepInterval   time.Duration `env:"SYNC_SWEEP_INTERVAL" env-default:"5m"`
		SubmitPerMinute int           `env:"SYNC_SUBMIT_PER_MINUTE" env-default:"6"`
		SubmitBurst     int           `env:"SYNC_SUBMIT_BURST" env-default:"3"`
	}
}

var (
	once sync.Once
	cfg  *Config
)

func New() (*Config, error) {
	once.Do(func() {
		cfg = &Config{}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			help, _ := cleanenv.GetDescription(cfg, nil)
			log.Fatalf("Failed to read configuration: %v\n%v", err, help)
		}
	})
	return cfg, nil
}
