package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/staticgen/internal/logfields"
	"git.home.luguber.info/inful/staticgen/internal/metrics"
	"git.home.luguber.info/inful/staticgen/internal/server"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Output string `short:"o" help:"Override the configured output directory"`
	Port   int    `short:"p" help:"Override the configured port"`
}

func (c *ServeCmd) Run(_ *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig(root.Config, c.Output)
	if err != nil {
		return err
	}
	if c.Port > 0 {
		cfg.Serve.Port = c.Port
	}
	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	status := &server.BuildStatus{}
	opts := server.Options{Port: cfg.Serve.Port, Status: status}
	if cfg.Serve.MetricsEnabled() {
		opts.Metrics = metrics.HTTPHandler(s.registry)
	}
	srv := server.New(cfg.Build.OutputDir, opts)
	if err := srv.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		if err := srv.Stop(stopCtx); err != nil {
			slog.Warn("Failed to stop preview server", logfields.Error(err))
		}
	}()

	rb := &rebuilder{configPath: root.Config, output: c.Output, sess: s, status: status}
	stop, err := startWatching(ctx, cfg, rb)
	if err != nil {
		return err
	}
	defer stop()

	slog.Info("Serving site; press Ctrl+C to stop", logfields.Addr(srv.Addr()))
	<-ctx.Done()
	return nil
}
