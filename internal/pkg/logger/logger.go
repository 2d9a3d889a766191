package logger

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/go-chi/httplog/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process-wide zap logger. Production uses JSON output; anything else uses the
// development console encoder.
func New(env, level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}

	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	return cfg.Build(zap.Fields(zap.String("env", env)))
}

// Named returns base.Named(name), falling back to the global logger when base is nil.
func Named(base *zap.Logger, name string) *zap.Logger {
	if base == nil {
		base = zap.L()
	}
	return base.Named(name)
}

// NewRequestLogger returns the slog logger used by the HTTP access log.
func NewRequestLogger(app, version, env string) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(env != "production")
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", app),
		slog.String("version", version),
		slog.String("env", env),
	)
}
