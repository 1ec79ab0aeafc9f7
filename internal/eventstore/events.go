package eventstore

import (
	"encoding/json"
	"time"

	"git.home.luguber.info/inful/staticgen/internal/foundation/errors"
)

// Event type names.
const (
	TypePassStarted   = "PassStarted"
	TypePageFailed    = "PageFailed"
	TypePassCompleted = "PassCompleted"
)

// PassStartedMeta describes the pass being started.
type PassStartedMeta struct {
	SourceDir string `json:"source_dir"`
	OutputDir string `json:"output_dir"`
	Trigger   string `json:"trigger,omitempty"` // "cli", "watch", "schedule"
}

// PassStarted is emitted when a generation pass begins.
type PassStarted struct {
	StoredEvent
	Start PassStartedMeta
}

// NewPassStarted creates a PassStarted event.
func NewPassStarted(passID string, meta PassStartedMeta) (*PassStarted, error) {
	payload, err := marshalPayload(TypePassStarted, passID, meta)
	if err != nil {
		return nil, err
	}
	return &PassStarted{
		StoredEvent: newBase(passID, TypePassStarted, payload),
		Start:       meta,
	}, nil
}

// PageFailure describes a single page that produced no output.
type PageFailure struct {
	Path     string `json:"path"`
	Category string `json:"category"`
	Error    string `json:"error"`
}

// PageFailed is emitted for each page whose parse or render failed.
type PageFailed struct {
	StoredEvent
	Failure PageFailure
}

// NewPageFailed creates a PageFailed event.
func NewPageFailed(passID string, failure PageFailure) (*PageFailed, error) {
	payload, err := marshalPayload(TypePageFailed, passID, failure)
	if err != nil {
		return nil, err
	}
	return &PageFailed{
		StoredEvent: newBase(passID, TypePageFailed, payload),
		Failure:     failure,
	}, nil
}

// PassResult carries the counters of a settled pass.
type PassResult struct {
	Outcome      string `json:"outcome"`
	Pages        int    `json:"pages"`
	Written      int    `json:"written"`
	Copied       int    `json:"copied"`
	FailedWrites int    `json:"failed_writes"`
	Errors       int    `json:"errors"`
	DurationMS   int64  `json:"duration_ms"`
}

// PassCompleted is emitted once all operations of a pass have settled, or when
// the pass was aborted or superseded.
type PassCompleted struct {
	StoredEvent
	Result PassResult
}

// NewPassCompleted creates a PassCompleted event.
func NewPassCompleted(passID string, result PassResult) (*PassCompleted, error) {
	payload, err := marshalPayload(TypePassCompleted, passID, result)
	if err != nil {
		return nil, err
	}
	return &PassCompleted{
		StoredEvent: newBase(passID, TypePassCompleted, payload),
		Result:      result,
	}, nil
}

func newBase(passID, eventType string, payload []byte) StoredEvent {
	return StoredEvent{
		Pass: passID,
		Kind: eventType,
		At:   time.Now(),
		Data: payload,
	}
}

func marshalPayload(eventType, passID string, v any) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryEventStore, ErrMarshalPayloadFailed.Message()).
			WithContext("event", eventType).
			WithContext("pass_id", passID).
			Build()
	}
	return payload, nil
}
