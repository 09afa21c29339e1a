// Package logger provides the storefront's structured, levelled logger built
// on log/slog.
//
// WithCtx returns the per-request logger injected by the HTTP middleware, so
// every line written while serving a request carries its request_id:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("product added", "product_id", p.ID)
//	// → time=... level=INFO msg="product added" request_id=5f0c... product_id=1794...
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/shashiranjanraj/furnivision/config"
)

var L *slog.Logger

// closers holds sinks that must be flushed on shutdown.
var closers []func()

func init() {
	L = slog.New(newConsoleHandler(os.Stdout))
	slog.SetDefault(L)
}

func newConsoleHandler(w io.Writer) slog.Handler {
	switch config.AppEnv() {
	case "production", "prod":
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	case "testing", "test":
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelWarn})
	default:
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
}

// Boot attaches the optional sinks configured by LOG_FILE and LOG_MONGO_URI.
// A sink that fails to open is reported on the console logger and skipped.
func Boot() {
	handlers := []slog.Handler{newConsoleHandler(os.Stdout)}

	if path := config.LogFile(); path != "" {
		rotator := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     14, // days
			Compress:   true,
		}
		handlers = append(handlers, slog.NewJSONHandler(rotator, &slog.HandlerOptions{Level: slog.LevelInfo}))
		closers = append(closers, func() { _ = rotator.Close() })
	}

	if uri := config.LogMongoURI(); uri != "" {
		mh, err := NewMongoHandler(uri, config.LogMongoDB(), config.LogMongoCollection())
		if err != nil {
			L.Warn("logger: mongo sink disabled", "error", err)
		} else {
			handlers = append(handlers, mh)
			closers = append(closers, mh.Close)
		}
	}

	if len(handlers) == 1 {
		return
	}

	L = slog.New(NewMultiHandler(handlers...))
	slog.SetDefault(L)
}

// Close flushes and releases every sink attached by Boot.
func Close() {
	for _, c := range closers {
		c()
	}
	closers = nil
}

// ctxKey is the unexported key used to store a per-request *slog.Logger.
type ctxKey struct{}

// WithCtx returns the logger stored in ctx by InjectLogger, or the base logger.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores log into ctx. Called by the request logging middleware.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }

func Info(msg string, args ...any) { L.Info(msg, args...) }

func Warn(msg string, args ...any) { L.Warn(msg, args...) }

func Error(msg string, args ...any) { L.Error(msg, args...) }
