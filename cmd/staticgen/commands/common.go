package commands

import (
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/staticgen/internal/config"
	"git.home.luguber.info/inful/staticgen/internal/eventstore"
	"git.home.luguber.info/inful/staticgen/internal/generator"
	"git.home.luguber.info/inful/staticgen/internal/logfields"
	"git.home.luguber.info/inful/staticgen/internal/metrics"
	"git.home.luguber.info/inful/staticgen/internal/notify"
)

// LogLevelEnv overrides the log level when --verbose is not given.
const LogLevelEnv = "STATICGEN_LOG_LEVEL"

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"staticgen.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Run one generation pass"`
	Watch   WatchCmd   `cmd:"" help:"Regenerate the site whenever the source tree changes"`
	Serve   ServeCmd   `cmd:"" help:"Serve the output directory and regenerate on change"`
	Init    InitCmd    `cmd:"" help:"Write an example configuration file"`
	History HistoryCmd `cmd:"" help:"List recent generation passes from the history store"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(c.Verbose, os.Getenv(LogLevelEnv)),
	}))
	slog.SetDefault(logger)
	return nil
}

func logLevel(verbose bool, env string) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// session is a Generator plus the optional collaborators configured for it.
type session struct {
	gen      *generator.Generator
	registry *prometheus.Registry
	store    *eventstore.SQLiteStore
	notifier notify.Notifier
}

// openSession wires metrics, the history store and the notifier from cfg.
// An unreachable NATS server only disables notifications.
func openSession(cfg *config.Config) (*session, error) {
	s := &session{registry: prometheus.NewRegistry(), notifier: notify.NoopNotifier{}}
	opts := []generator.Option{generator.WithRecorder(metrics.NewPrometheusRecorder(s.registry))}

	if cfg.History.Path != "" {
		store, err := eventstore.NewSQLiteStore(cfg.History.Path)
		if err != nil {
			return nil, err
		}
		s.store = store
		opts = append(opts, generator.WithEventStore(store))
	}

	if cfg.Notify.NATSURL != "" {
		n, err := notify.NewNATSNotifier(cfg.Notify.NATSURL, cfg.Notify.Subject)
		if err != nil {
			slog.Warn("Pass notifications disabled", logfields.Error(err))
		} else {
			s.notifier = n
			opts = append(opts, generator.WithNotifier(n))
		}
	}

	s.gen = generator.New(opts...)
	return s, nil
}

func (s *session) Close() {
	s.gen.Close()
	if err := s.notifier.Close(); err != nil {
		slog.Warn("Failed to close notifier", logfields.Error(err))
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			slog.Warn("Failed to close history store", logfields.Error(err))
		}
	}
}
