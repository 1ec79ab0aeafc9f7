package generator

import (
	"git.home.luguber.info/inful/staticgen/internal/barrier"
	"git.home.luguber.info/inful/staticgen/internal/eventstore"
	"git.home.luguber.info/inful/staticgen/internal/metrics"
	"git.home.luguber.info/inful/staticgen/internal/notify"
	"git.home.luguber.info/inful/staticgen/internal/template"
)

// Option configures a Generator.
type Option func(*Generator)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(g *Generator) {
		if r != nil {
			g.recorder = r
		}
	}
}

// WithEventStore records pass history in store.
func WithEventStore(store eventstore.Store) Option {
	return func(g *Generator) { g.store = store }
}

// WithNotifier announces settled passes through n.
func WithNotifier(n notify.Notifier) Option {
	return func(g *Generator) {
		if n != nil {
			g.notifier = n
		}
	}
}

// WithHooks sets the pre-render hook registry handed to every pass.
func WithHooks(h *template.Hooks) Option {
	return func(g *Generator) { g.hooks = h }
}

// WithHelpers adds handlebars helpers to every pass.
func WithHelpers(helpers map[string]any) Option {
	return func(g *Generator) { g.helpers = helpers }
}

// WithBarrierPolicy fixes the barrier policy, ignoring build.barrier_policy.
func WithBarrierPolicy(p barrier.Policy) Option {
	return func(g *Generator) { g.policy = &p }
}
