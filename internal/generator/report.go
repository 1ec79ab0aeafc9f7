package generator

import (
	"time"

	"git.home.luguber.info/inful/staticgen/internal/metrics"
)

// Outcome is the final state of a generation pass.
type Outcome string

const (
	OutcomeSuccess    Outcome = "success"
	OutcomeWarning    Outcome = "warning"
	OutcomeFailed     Outcome = "failed"
	OutcomeSuperseded Outcome = "superseded"
)

func (o Outcome) label() metrics.OutcomeLabel { return metrics.OutcomeLabel(o) }

// PageEntry describes one page rendered by a pass.
type PageEntry struct {
	URL         string `json:"url"`
	Source      string `json:"source"`
	Output      string `json:"output"`
	Fingerprint string `json:"fingerprint"`
}

// Report captures the result of a generation pass.
type Report struct {
	PassID       string
	Start        time.Time
	End          time.Time
	Pages        []PageEntry
	Written      int     // files written successfully, site map included
	Copied       int     // copies completed successfully
	FailedWrites int     // writes and copies that failed
	Errors       []error // page-local and I/O failures; a fatal error is also returned by Wait
	Outcome      Outcome
}

func newReport(passID string) *Report {
	return &Report{PassID: passID, Start: time.Now()}
}

// Duration returns the wall time of the pass.
func (r *Report) Duration() time.Duration {
	if r.End.IsZero() {
		return time.Since(r.Start)
	}
	return r.End.Sub(r.Start)
}

// deriveOutcome picks the outcome from the collected results. fatal is the
// error that aborted the pass, if any.
func (r *Report) deriveOutcome(fatal error, superseded bool) {
	switch {
	case fatal != nil:
		r.Outcome = OutcomeFailed
	case superseded:
		r.Outcome = OutcomeSuperseded
	case len(r.Errors) > 0 || r.FailedWrites > 0:
		r.Outcome = OutcomeWarning
	default:
		r.Outcome = OutcomeSuccess
	}
}
