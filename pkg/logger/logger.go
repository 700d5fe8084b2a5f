package logger

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
	slogzerolog "github.com/samber/slog-zerolog/v2"
)

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	WithComponent(name string) Logger
}

type Opts struct {
	Env       string
	SentryUrl string
}

type Impl struct {
	slog *slog.Logger
}

var _ Logger = (*Impl)(nil)

func New(opts Opts) *Impl {
	level := slog.LevelInfo
	if opts.Env == "development" || opts.Env == "" {
		level = slog.LevelDebug
	}

	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger()

	handlers := []slog.Handler{
		slogzerolog.Option{Level: level, Logger: &zl}.NewZerologHandler(),
	}

	if opts.SentryUrl != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         opts.SentryUrl,
			Environment: opts.Env,
		})
		if err != nil {
			zl.Warn().Err(err).Msg("Failed to initialize sentry, continuing without it")
		} else {
			handlers = append(handlers, slogsentry.Option{Level: slog.LevelError}.NewSentryHandler())
		}
	}

	return &Impl{slog: slog.New(slogmulti.Fanout(handlers...))}
}

func (i *Impl) Debug(msg string, args ...any) { i.slog.Debug(msg, args...) }
func (i *Impl) Info(msg string, args ...any)  { i.slog.Info(msg, args...) }
func (i *Impl) Warn(msg string, args ...any)  { i.slog.Warn(msg, args...) }
func (i *Impl) Error(msg string, args ...any) { i.slog.Error(msg, args...) }

func (i *Impl) WithComponent(name string) Logger {
	return &Impl{slog: i.slog.With("component", name)}
}

// Printf makes Impl usable as an fx.Printer for DI event logging.
func (i *Impl) Printf(format string, args ...interface{}) {
	i.slog.Debug(fmt.Sprintf(format, args...))
}
