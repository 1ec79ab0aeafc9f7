package eventstore

import "time"

// Event is one entry of a pass's history.
type Event interface {
	ID() int64 // store-assigned sequence, zero until persisted
	PassID() string
	Type() string
	Timestamp() time.Time
	Payload() []byte // JSON
	Metadata() map[string]string
}

// StoredEvent is the concrete Event read from and appended to a Store.
type StoredEvent struct {
	Seq  int64
	Pass string
	Kind string
	At   time.Time
	Data []byte
	Meta map[string]string
}

func (e *StoredEvent) ID() int64                   { return e.Seq }
func (e *StoredEvent) PassID() string              { return e.Pass }
func (e *StoredEvent) Type() string                { return e.Kind }
func (e *StoredEvent) Timestamp() time.Time        { return e.At }
func (e *StoredEvent) Payload() []byte             { return e.Data }
func (e *StoredEvent) Metadata() map[string]string { return e.Meta }
