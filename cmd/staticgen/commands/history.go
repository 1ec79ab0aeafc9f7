package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"git.home.luguber.info/inful/staticgen/internal/eventstore"
	"git.home.luguber.info/inful/staticgen/internal/foundation/errors"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int `short:"n" help:"Number of passes to show" default:"20"`
}

func (h *HistoryCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config, "")
	if err != nil {
		return err
	}
	if cfg.History.Path == "" {
		return errors.ConfigError("history store not configured (set history.path)").
			WithPath(root.Config).
			Build()
	}
	store, err := eventstore.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	return PrintHistory(context.Background(), os.Stdout, store, h.Limit)
}

// PrintHistory writes one line per recorded pass, newest first.
func PrintHistory(ctx context.Context, w io.Writer, store eventstore.Store, limit int) error {
	projection := eventstore.NewPassHistoryProjection(store, limit)
	if err := projection.Rebuild(ctx); err != nil {
		return err
	}
	history := projection.History()
	if len(history) == 0 {
		_, err := fmt.Fprintln(w, "no passes recorded")
		return err
	}
	for _, p := range history {
		line := fmt.Sprintf("%s  %s  %-10s trigger=%s", p.StartedAt.Format(time.RFC3339), p.PassID, p.Status, p.Trigger)
		if p.Result != nil {
			line += fmt.Sprintf(" pages=%d written=%d copied=%d failed=%d duration=%dms",
				p.Result.Pages, p.Result.Written, p.Result.Copied, p.Result.FailedWrites, p.Result.DurationMS)
		}
		if n := len(p.Failures); n > 0 {
			line += fmt.Sprintf(" page_failures=%d", n)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
