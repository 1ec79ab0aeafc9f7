// Package eventstore records generation pass history in SQLite and projects it
// into per-pass summaries.
package eventstore

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"
)

const statusRunning = "running"

// PassSummary is a read model summarizing a completed or in-progress pass.
type PassSummary struct {
	PassID      string        `json:"pass_id"`
	Status      string        `json:"status"` // "running" or the pass outcome
	Trigger     string        `json:"trigger,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	Duration    time.Duration `json:"duration,omitempty"`
	Result      *PassResult   `json:"result,omitempty"`
	Failures    []PageFailure `json:"failures,omitempty"`
}

// PassHistoryProjection maintains an in-memory view of pass history,
// reconstructed from events stored in the event store.
type PassHistoryProjection struct {
	mu       sync.RWMutex
	store    Store
	passes   map[string]*PassSummary
	history  []*PassSummary // newest first
	maxSize  int
	lastSync time.Time
}

// NewPassHistoryProjection creates a new projection backed by the given store.
func NewPassHistoryProjection(store Store, maxHistorySize int) *PassHistoryProjection {
	if maxHistorySize <= 0 {
		maxHistorySize = 100
	}
	return &PassHistoryProjection{
		store:   store,
		passes:  make(map[string]*PassSummary),
		history: make([]*PassSummary, 0, maxHistorySize),
		maxSize: maxHistorySize,
	}
}

// Rebuild reconstructs the projection from all events in the store.
func (p *PassHistoryProjection) Rebuild(ctx context.Context) error {
	events, err := p.store.GetRange(ctx, time.Time{}, time.Now().Add(time.Hour))
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.passes = make(map[string]*PassSummary)
	p.history = make([]*PassSummary, 0, p.maxSize)
	for _, event := range events {
		p.applyEventLocked(event)
	}

	slices.SortStableFunc(p.history, func(a, b *PassSummary) int {
		return b.StartedAt.Compare(a.StartedAt)
	})
	if len(p.history) > p.maxSize {
		p.history = p.history[:p.maxSize]
	}
	p.pruneLocked()

	p.lastSync = time.Now()
	return nil
}

// Apply processes a single event and updates the projection.
func (p *PassHistoryProjection) Apply(event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applyEventLocked(event)
}

func (p *PassHistoryProjection) applyEventLocked(event Event) {
	passID := event.PassID()
	if passID == "" {
		return
	}

	summary, exists := p.passes[passID]
	if !exists {
		summary = &PassSummary{
			PassID:    passID,
			Status:    statusRunning,
			StartedAt: event.Timestamp(),
		}
		p.passes[passID] = summary
	}

	switch event.Type() {
	case TypePassStarted:
		summary.StartedAt = event.Timestamp()
		summary.Status = statusRunning
		var meta PassStartedMeta
		if err := json.Unmarshal(event.Payload(), &meta); err == nil {
			summary.Trigger = meta.Trigger
		}

	case TypePageFailed:
		var failure PageFailure
		if err := json.Unmarshal(event.Payload(), &failure); err == nil {
			summary.Failures = append(summary.Failures, failure)
		}

	case TypePassCompleted:
		now := event.Timestamp()
		summary.CompletedAt = &now
		summary.Duration = now.Sub(summary.StartedAt)
		var result PassResult
		if err := json.Unmarshal(event.Payload(), &result); err == nil {
			summary.Result = &result
			summary.Status = result.Outcome
		}
		p.addToHistoryLocked(summary)
	}
}

func (p *PassHistoryProjection) addToHistoryLocked(summary *PassSummary) {
	for _, h := range p.history {
		if h.PassID == summary.PassID {
			return
		}
	}

	p.history = append([]*PassSummary{summary}, p.history...)
	if len(p.history) > p.maxSize {
		p.history = p.history[:p.maxSize]
	}
	p.pruneLocked()
}

// pruneLocked drops completed passes that fell out of the bounded history.
// Caller must hold p.mu (write lock).
func (p *PassHistoryProjection) pruneLocked() {
	keep := make(map[string]struct{}, len(p.history))
	for _, h := range p.history {
		keep[h.PassID] = struct{}{}
	}
	for id, summary := range p.passes {
		if summary.Status == statusRunning {
			continue
		}
		if _, ok := keep[id]; !ok {
			delete(p.passes, id)
		}
	}
}

// History returns the completed passes, newest first.
func (p *PassHistoryProjection) History() []*PassSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.history)
}

// Pass returns a copy of the summary for a specific pass.
func (p *PassHistoryProjection) Pass(passID string) (*PassSummary, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	summary, exists := p.passes[passID]
	if !exists {
		return nil, false
	}
	cp := *summary
	cp.Failures = slices.Clone(summary.Failures)
	return &cp, true
}

// LastCompleted returns the most recently completed pass.
func (p *PassHistoryProjection) LastCompleted() *PassSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if len(p.history) == 0 {
		return nil
	}
	cp := *p.history[0]
	return &cp
}

// LastSyncTime returns when the projection was last rebuilt.
func (p *PassHistoryProjection) LastSyncTime() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastSync
}
