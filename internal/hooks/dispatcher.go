// Package hooks runs one host hook invocation: parse the payload, load the
// coordination state, apply the event's handler, persist, and answer.
//
// The dispatcher fails open. Any error or panic in the pipeline becomes a
// non-blocking system message, so a broken hook never stops the host.
package hooks

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/Iron-Ham/laneguard/internal/config"
	"github.com/Iron-Ham/laneguard/internal/coordination"
	"github.com/Iron-Ham/laneguard/internal/errors"
	"github.com/Iron-Ham/laneguard/internal/event"
	"github.com/Iron-Ham/laneguard/internal/logging"
	"github.com/Iron-Ham/laneguard/internal/session"
)

// LoggerFactory opens the logger for an invocation once the state path is
// known. The dispatcher closes what it returns.
type LoggerFactory func(cfg *config.Config, statePath string) *logging.Logger

// Dispatcher routes hook events to their handlers.
type Dispatcher struct {
	store     session.StateStore
	cfg       *config.Config
	newLogger LoggerFactory
	now       func() time.Time
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLoggerFactory replaces the file logger built from the configuration.
func WithLoggerFactory(f LoggerFactory) Option {
	return func(d *Dispatcher) {
		if f != nil {
			d.newLogger = f
		}
	}
}

// WithLogger sends every invocation's logs to l.
func WithLogger(l *logging.Logger) Option {
	return WithLoggerFactory(func(*config.Config, string) *logging.Logger { return l })
}

// WithClock overrides the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// NewDispatcher creates a Dispatcher. A nil cfg means config.Default().
func NewDispatcher(store session.StateStore, cfg *config.Config, opts ...Option) *Dispatcher {
	if cfg == nil {
		cfg = config.Default()
	}
	d := &Dispatcher{
		store:     store,
		cfg:       cfg,
		newLogger: FileLogger,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// FileLogger is the default LoggerFactory: a rotating JSON log next to the
// state file, or a no-op logger when logging is disabled or the file
// cannot be opened.
func FileLogger(cfg *config.Config, statePath string) *logging.Logger {
	if !cfg.Logging.Enabled {
		return logging.NopLogger()
	}
	logger, err := logging.NewLogger(
		config.ResolveLogPath(cfg, statePath),
		cfg.Logging.Level,
		logging.RotationConfig{
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
		},
	)
	if err != nil {
		return logging.NopLogger()
	}
	return logger
}

// Run handles one raw hook payload and returns the decision for the host.
// It never fails: errors and panics become FailOpen outputs. The state file
// is loaded once and saved once, after the handler, for every event.
func (d *Dispatcher) Run(ctx context.Context, payload []byte) (out Output) {
	ev := event.Parse(payload)
	log := logging.NopLogger()

	defer func() {
		if r := recover(); r != nil {
			err := errors.NewHookError(ev.Name, "dispatch",
				fmt.Errorf("%w: %v", errors.ErrHandlerPanic, r))
			log.Error("hook panicked", "error", err.Error(), "stack", string(debug.Stack()))
			out = FailOpen(err)
		}
		_ = log.Close()
	}()

	statePath, err := config.ResolveStatePath(d.cfg, ev.CWD)
	if err != nil {
		return FailOpen(errors.NewHookError(ev.Name, "resolve", err))
	}

	log = d.newLogger(d.cfg, statePath).
		WithSession(coordination.SessionKey(ev)).
		WithAgent(strings.TrimSpace(ev.AgentID)).
		WithEvent(ev.Name)
	if ev.ParseError != "" {
		log.Warn("malformed hook payload", "error", ev.ParseError)
	}

	st, err := d.store.Load(ctx, statePath)
	if err != nil {
		return d.fail(log, errors.NewHookError(ev.Name, "load", err))
	}

	out = lookupHandler(ev)(&call{
		ev:       ev,
		state:    st,
		override: d.cfg.Coordination.Mode,
		now:      d.now(),
		log:      log,
	})

	if err := d.store.Save(ctx, statePath, st); err != nil {
		return d.fail(log, errors.NewHookError(ev.Name, "save", err))
	}

	log.Info("handled hook event", "state_path", statePath, "denied", out.Denied())
	return out
}

func (d *Dispatcher) fail(log *logging.Logger, err error) Output {
	log.Error("hook failed open", "error", err.Error())
	return FailOpen(err)
}
