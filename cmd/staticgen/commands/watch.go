package commands

import (
	"context"
	stderrors "errors"
	"log/slog"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/staticgen/internal/config"
	"git.home.luguber.info/inful/staticgen/internal/foundation/errors"
	"git.home.luguber.info/inful/staticgen/internal/generator"
	"git.home.luguber.info/inful/staticgen/internal/logfields"
	"git.home.luguber.info/inful/staticgen/internal/schedule"
	"git.home.luguber.info/inful/staticgen/internal/server"
	"git.home.luguber.info/inful/staticgen/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Output string `short:"o" help:"Override the configured output directory"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig(root.Config, w.Output)
	if err != nil {
		return err
	}
	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	rb := &rebuilder{configPath: root.Config, output: w.Output, sess: s}
	stop, err := startWatching(ctx, cfg, rb)
	if err != nil {
		return err
	}
	defer stop()

	slog.Info("Watching for changes; press Ctrl+C to stop", logfields.Dir(cfg.Build.SourceDir))
	<-ctx.Done()
	return nil
}

// rebuilder reloads the configuration and schedules a pass per trigger.
type rebuilder struct {
	configPath string
	output     string
	sess       *session
	status     *server.BuildStatus
}

func (r *rebuilder) trigger(ctx context.Context, source string) {
	cfg, err := loadConfig(r.configPath, r.output)
	if err != nil {
		slog.Error("Failed to reload configuration", logfields.ConfigFile(r.configPath), logfields.Error(err))
		if r.status != nil {
			r.status.SetError(err)
		}
		return
	}
	run := r.sess.gen.Generate(generator.WithTrigger(ctx, source), cfg)
	go r.await(ctx, run)
}

func (r *rebuilder) await(ctx context.Context, run *generator.Run) {
	_, err := run.Wait(ctx)
	switch {
	case ctx.Err() != nil:
	case stderrors.Is(err, errors.ErrSuperseded):
		slog.Debug("Pass superseded", logfields.PassID(run.ID()))
	case err != nil:
		if r.status != nil {
			r.status.SetError(err)
		}
	default:
		if r.status != nil {
			r.status.SetSuccess()
		}
	}
}

// startWatching runs an initial pass, then regenerates on file changes and,
// when configured, on a fixed interval. The returned func stops both.
func startWatching(ctx context.Context, cfg *config.Config, rb *rebuilder) (func(), error) {
	rb.trigger(ctx, "initial")

	w, err := watch.New(watch.Options{
		SourceDir:  cfg.Build.SourceDir,
		ConfigFile: cfg.File(),
		IgnoreDirs: []string{cfg.Build.OutputDir},
		Debounce:   cfg.Watch.Debounce,
	}, func(ctx context.Context) { rb.trigger(ctx, "watch") })
	if err != nil {
		return nil, err
	}
	go func() {
		if err := w.Run(ctx); err != nil {
			slog.Error("Watcher stopped", logfields.Error(err))
		}
	}()

	var sched *schedule.Scheduler
	if cfg.Watch.Schedule > 0 {
		sched, err = schedule.Regenerate(ctx, cfg.Watch.Schedule, func(ctx context.Context) { rb.trigger(ctx, "schedule") })
		if err != nil {
			_ = w.Close()
			return nil, err
		}
		slog.Info("Periodic regeneration enabled", logfields.Schedule(cfg.Watch.Schedule.String()))
	}

	return func() {
		if err := w.Close(); err != nil {
			slog.Warn("Failed to close watcher", logfields.Error(err))
		}
		if sched != nil {
			if err := sched.Stop(); err != nil {
				slog.Warn("Failed to stop scheduler", logfields.Error(err))
			}
		}
	}, nil
}
