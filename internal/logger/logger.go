package logger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// dualHandler sends every record to core and additionally copies records at
// Error level and above to errs.
type dualHandler struct {
	core slog.Handler
	errs slog.Handler
}

func (h *dualHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.core.Enabled(ctx, lvl) || h.errs.Enabled(ctx, lvl)
}

func (h *dualHandler) Handle(ctx context.Context, r slog.Record) error {
	var coreErr, errsErr error

	if h.core.Enabled(ctx, r.Level) {
		coreErr = h.core.Handle(ctx, r)
	}

	if r.Level >= slog.LevelError && h.errs.Enabled(ctx, r.Level) {
		errsErr = h.errs.Handle(ctx, r.Clone())
	}

	return errors.Join(coreErr, errsErr)
}

func (h *dualHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &dualHandler{
		core: h.core.WithAttrs(attrs),
		errs: h.errs.WithAttrs(attrs),
	}
}

func (h *dualHandler) WithGroup(name string) slog.Handler {
	return &dualHandler{
		core: h.core.WithGroup(name),
		errs: h.errs.WithGroup(name),
	}
}

// Setup builds the process logger: text on stdout for local and prod, JSON
// for dev, debug level everywhere except prod. When errorLog is set, errors
// are also appended to that file; the returned closer releases it.
func Setup(env, errorLog string) (*slog.Logger, io.Closer) {
	return New(os.Stdout, env, errorLog)
}

func New(out io.Writer, env, errorLog string) (*slog.Logger, io.Closer) {
	level := slog.LevelDebug
	if env == EnvProd {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var core slog.Handler
	switch env {
	case EnvDev:
		core = slog.NewJSONHandler(out, opts)
	default:
		core = slog.NewTextHandler(out, opts)
	}

	if errorLog == "" {
		return slog.New(core), nopCloser{}
	}

	f, err := os.OpenFile(errorLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log := slog.New(core)
		log.Warn("cannot open error log file", slog.String("path", errorLog), slog.String("error", err.Error()))
		return log, nopCloser{}
	}

	errs := slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelError})

	return slog.New(&dualHandler{core: core, errs: errs}), f
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
