// Package notify announces settled generation passes to external listeners.
package notify

import (
	"context"
	"time"
)

// Message is the JSON body published when a generation pass settles.
type Message struct {
	PassID       string    `json:"pass_id"`
	Outcome      string    `json:"outcome"`
	OutputDir    string    `json:"output_dir"`
	Pages        int       `json:"pages"`
	Written      int       `json:"written"`
	Copied       int       `json:"copied"`
	FailedWrites int       `json:"failed_writes"`
	Errors       []string  `json:"errors,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	CompletedAt  time.Time `json:"completed_at"`
}

// Notifier publishes pass completion messages.
type Notifier interface {
	PassCompleted(ctx context.Context, msg Message) error
	Close() error
}

// NoopNotifier discards every message (default when no broker is configured).
type NoopNotifier struct{}

func (NoopNotifier) PassCompleted(context.Context, Message) error { return nil }
func (NoopNotifier) Close() error                                 { return nil }
