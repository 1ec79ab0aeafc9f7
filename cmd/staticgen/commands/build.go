package commands

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"git.home.luguber.info/inful/staticgen/internal/config"
	"git.home.luguber.info/inful/staticgen/internal/foundation/errors"
	"git.home.luguber.info/inful/staticgen/internal/generator"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output string `short:"o" help:"Override the configured output directory"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig(root.Config, b.Output)
	if err != nil {
		return err
	}
	report, err := RunBuild(ctx, cfg)
	if report != nil {
		fmt.Printf("Generated %d pages into %s (%d files written, %d copied, %d failed) in %s\n",
			len(report.Pages), cfg.Build.OutputDir, report.Written, report.Copied,
			report.FailedWrites, report.Duration().Round(time.Millisecond))
	}
	return err
}

// RunBuild runs a single pass with the collaborators configured in cfg.
func RunBuild(ctx context.Context, cfg *config.Config) (*generator.Report, error) {
	s, err := openSession(cfg)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	ctx = generator.WithTrigger(ctx, "build")
	return s.gen.Generate(ctx, cfg).Wait(ctx)
}

// loadConfig loads the configuration file and applies a CLI output override,
// which is resolved against the working directory.
func loadConfig(path, output string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if output != "" {
		abs, err := filepath.Abs(output)
		if err != nil {
			return nil, errors.ConfigError("invalid output directory").
				WithPath(output).
				WithCause(err).
				Build()
		}
		cfg.Build.OutputDir = abs
	}
	return cfg, nil
}
