package generator

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/staticgen/internal/barrier"
	"git.home.luguber.info/inful/staticgen/internal/config"
	"git.home.luguber.info/inful/staticgen/internal/eventloop"
	"git.home.luguber.info/inful/staticgen/internal/eventstore"
	"git.home.luguber.info/inful/staticgen/internal/foundation/errors"
	"git.home.luguber.info/inful/staticgen/internal/logfields"
	"git.home.luguber.info/inful/staticgen/internal/markdown"
	"git.home.luguber.info/inful/staticgen/internal/metrics"
	"git.home.luguber.info/inful/staticgen/internal/notify"
	"git.home.luguber.info/inful/staticgen/internal/output"
	"git.home.luguber.info/inful/staticgen/internal/template"
)

// Generator owns the event loop, the completion barrier and the output writer
// shared by all passes. It holds no per-pass state.
type Generator struct {
	loop     *eventloop.Loop
	barrier  *barrier.Barrier
	writer   *output.Writer
	markdown *markdown.Converter

	recorder metrics.Recorder
	store    eventstore.Store
	notifier notify.Notifier
	hooks    *template.Hooks
	helpers  map[string]any
	policy   *barrier.Policy
}

// New starts a Generator. Call Close to stop its event loop.
func New(opts ...Option) *Generator {
	g := &Generator{
		recorder: metrics.NoopRecorder{},
		notifier: notify.NoopNotifier{},
		markdown: markdown.New(markdown.Options{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	policy := barrier.PolicyOverwrite
	if g.policy != nil {
		policy = *g.policy
	}
	g.loop = eventloop.New()
	g.barrier = barrier.New(policy)
	g.writer = output.NewWriter(g.loop, g.barrier, g.recorder)
	return g
}

// Close waits for queued loop work and stops the loop. Passes still waiting
// on outstanding writes at that point never finish.
func (g *Generator) Close() {
	g.loop.Close()
}

// Run is a handle on a scheduled generation pass.
type Run struct {
	id     string
	done   chan struct{}
	report *Report
	err    error
}

func newRun() *Run {
	return &Run{id: uuid.NewString(), done: make(chan struct{})}
}

// ID returns the pass identifier.
func (r *Run) ID() string { return r.id }

// Done is closed once the pass has finished.
func (r *Run) Done() <-chan struct{} { return r.done }

// Wait blocks until the pass finishes or ctx is done. The error is the fatal
// error that aborted the pass, errors.ErrSuperseded when a newer pass replaced
// it, or nil. Page-local failures are only listed in the report.
func (r *Run) Wait(ctx context.Context) (*Report, error) {
	select {
	case <-r.done:
		return r.report, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *Run) finish(report *Report, err error) {
	r.report = report
	r.err = err
	close(r.done)
}

// Generate schedules a generation pass for cfg. The pass starts once every
// write of the previous pass has settled. ctx is checked between directory
// batches; cancelling it aborts the pass.
func (g *Generator) Generate(ctx context.Context, cfg *config.Config) *Run {
	run := newRun()
	posted := g.loop.Post(func() {
		g.applyPolicy(cfg)
		g.barrier.BeginWithDrop(
			func() { g.startPass(ctx, cfg, run) },
			func() { g.supersededBeforeStart(run) },
		)
	})
	if !posted {
		run.finish(nil, eventloop.ErrClosed)
	}
	return run
}

func (g *Generator) applyPolicy(cfg *config.Config) {
	if g.policy != nil {
		return
	}
	switch cfg.Build.BarrierPolicy {
	case config.BarrierQueue:
		g.barrier.SetPolicy(barrier.PolicyQueue)
	default:
		g.barrier.SetPolicy(barrier.PolicyOverwrite)
	}
}

// supersededBeforeStart finishes a run whose start was replaced by a newer
// Generate call under the overwrite policy.
func (g *Generator) supersededBeforeStart(run *Run) {
	report := newReport(run.id)
	report.End = report.Start
	report.Outcome = OutcomeSuperseded
	g.recorder.IncPassOutcome(report.Outcome.label())
	slog.Info("Generation pass superseded before start", logfields.PassID(run.id))
	run.finish(report, errors.ErrSuperseded)
}

// startPass runs on the loop once the barrier is idle.
func (g *Generator) startPass(ctx context.Context, cfg *config.Config, run *Run) {
	gc, err := g.newContext(ctx, cfg, run)
	if err != nil {
		report := newReport(run.id)
		g.complete(ctx, &GenerationContext{Config: cfg, Report: report, run: run, fatal: err}, false)
		return
	}

	slog.Info("Generation pass started",
		logfields.PassID(run.id),
		logfields.Source(gc.Mapper.SourceRoot),
		logfields.Output(gc.Mapper.OutputRoot))
	g.record(ctx, gc, func() (eventstore.Event, error) {
		return eventstore.NewPassStarted(run.id, eventstore.PassStartedMeta{
			SourceDir: cfg.Build.SourceDir,
			OutputDir: cfg.Build.OutputDir,
			Trigger:   TriggerFrom(ctx),
		})
	})

	if err := output.Reset(gc.Mapper.OutputRoot); err != nil {
		gc.fatal = errors.WrapError(err, errors.CategoryFileSystem, "failed to reset output directory").
			WithPath(gc.Mapper.OutputRoot).
			Fatal().
			Build()
		g.complete(ctx, gc, false)
		return
	}

	phase := time.Now()
	gc.generateContent()
	if gc.fatal == nil {
		gc.copyThemeAssets()
	}
	g.recorder.ObservePhaseDuration("content", time.Since(phase))

	if gc.fatal != nil {
		g.barrier.BeginWithDrop(
			func() { g.complete(ctx, gc, false) },
			func() { g.complete(ctx, gc, true) },
		)
		return
	}

	g.barrier.BeginWithDrop(
		func() {
			phase := time.Now()
			gc.postProcess()
			g.recorder.ObservePhaseDuration("post_process", time.Since(phase))
			g.barrier.BeginWithDrop(
				func() { g.complete(ctx, gc, false) },
				func() { g.complete(ctx, gc, true) },
			)
		},
		func() { g.complete(ctx, gc, true) },
	)
}

// complete settles a pass exactly once: it derives the outcome, records
// metrics and history, notifies listeners, and releases Wait.
func (g *Generator) complete(ctx context.Context, gc *GenerationContext, superseded bool) {
	if gc.settled {
		return
	}
	gc.settled = true
	report := gc.Report
	report.End = time.Now()
	report.deriveOutcome(gc.fatal, superseded)

	g.recorder.ObservePassDuration(report.Duration())
	g.recorder.IncPassOutcome(report.Outcome.label())

	attrs := []any{
		logfields.PassID(report.PassID),
		logfields.Outcome(string(report.Outcome)),
		logfields.Count(len(report.Pages)),
		logfields.DurationMS(float64(report.Duration().Microseconds()) / 1000),
	}
	switch report.Outcome {
	case OutcomeFailed:
		slog.Error("Generation pass failed", append(attrs, logfields.Error(gc.fatal))...)
	case OutcomeWarning:
		slog.Warn("Generation pass completed with errors", append(attrs, slog.Int("errors", len(report.Errors)))...)
	default:
		slog.Info("Generation pass completed", attrs...)
	}

	g.record(ctx, gc, func() (eventstore.Event, error) {
		return eventstore.NewPassCompleted(report.PassID, eventstore.PassResult{
			Outcome:      string(report.Outcome),
			Pages:        len(report.Pages),
			Written:      report.Written,
			Copied:       report.Copied,
			FailedWrites: report.FailedWrites,
			Errors:       len(report.Errors),
			DurationMS:   report.Duration().Milliseconds(),
		})
	})
	g.notify(ctx, gc)

	err := gc.fatal
	if err == nil && superseded {
		err = errors.ErrSuperseded
	}
	gc.run.finish(report, err)
}

// record appends an event to the history store. Store failures are logged
// and never affect the pass.
func (g *Generator) record(ctx context.Context, gc *GenerationContext, build func() (eventstore.Event, error)) {
	if g.store == nil {
		return
	}
	e, err := build()
	if err == nil {
		err = eventstore.Record(context.WithoutCancel(ctx), g.store, e)
	}
	if err != nil {
		slog.Warn("Failed to record pass event", logfields.PassID(gc.run.id), logfields.Error(err))
	}
}

func (g *Generator) notify(ctx context.Context, gc *GenerationContext) {
	report := gc.Report
	msg := notify.Message{
		PassID:       report.PassID,
		Outcome:      string(report.Outcome),
		OutputDir:    gc.Config.Build.OutputDir,
		Pages:        len(report.Pages),
		Written:      report.Written,
		Copied:       report.Copied,
		FailedWrites: report.FailedWrites,
		StartedAt:    report.Start,
		CompletedAt:  report.End,
	}
	for _, err := range report.Errors {
		msg.Errors = append(msg.Errors, err.Error())
	}
	if gc.fatal != nil {
		msg.Errors = append(msg.Errors, gc.fatal.Error())
	}
	if err := g.notifier.PassCompleted(context.WithoutCancel(ctx), msg); err != nil {
		slog.Warn("Failed to publish pass notification", logfields.PassID(report.PassID), logfields.Error(err))
	}
}
