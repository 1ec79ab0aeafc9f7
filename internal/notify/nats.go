package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/staticgen/internal/foundation/errors"
	"git.home.luguber.info/inful/staticgen/internal/logfields"
)

const (
	connectTimeout = 5 * time.Second
	publishTimeout = 5 * time.Second
)

// publisher is the subset of *nats.Conn used by NATSNotifier.
type publisher interface {
	Publish(subj string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// NATSNotifier publishes pass completion messages on a NATS subject.
type NATSNotifier struct {
	conn    publisher
	subject string
}

// NewNATSNotifier connects to the NATS server at url.
func NewNATSNotifier(url, subject string) (*NATSNotifier, error) {
	if subject == "" {
		return nil, errors.ConfigError("notify subject is required").Build()
	}

	conn, err := nats.Connect(url,
		nats.Name("staticgen"),
		nats.Timeout(connectTimeout),
	)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryNetwork, "failed to connect to NATS").
			WithContext("url", url).
			Retryable().
			Build()
	}

	slog.Info("NATS notifier connected", logfields.URL(url), logfields.Subject(subject))
	return newNATSNotifier(conn, subject), nil
}

func newNATSNotifier(conn publisher, subject string) *NATSNotifier {
	return &NATSNotifier{conn: conn, subject: subject}
}

// PassCompleted publishes msg and waits for the server to acknowledge the flush.
func (n *NATSNotifier) PassCompleted(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal pass notification").Build()
	}

	if err := n.conn.Publish(n.subject, data); err != nil {
		return errors.WrapError(err, errors.CategoryNetwork, "failed to publish pass notification").
			WithContext("subject", n.subject).
			Retryable().
			Build()
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := n.conn.FlushWithContext(ctx); err != nil {
		return errors.WrapError(err, errors.CategoryNetwork, "failed to flush pass notification").
			WithContext("subject", n.subject).
			Retryable().
			Build()
	}

	slog.Debug("Published pass notification",
		logfields.PassID(msg.PassID),
		logfields.Subject(n.subject),
		logfields.Outcome(msg.Outcome))
	return nil
}

// Close closes the NATS connection.
func (n *NATSNotifier) Close() error {
	if n.conn != nil {
		n.conn.Close()
	}
	return nil
}
