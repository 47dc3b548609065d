// Package events defines the events a scan session emits. Every event is
// JSON serializable so it can be streamed to a file or an observer.
package events

import "time"

// EventType represents the type of session event.
type EventType string

const (
	// EventTypeStart indicates a session accepted a URL.
	EventTypeStart EventType = "start"
	// EventTypeProgress indicates a progress announcement.
	EventTypeProgress EventType = "progress"
	// EventTypeComplete indicates a classified result is available.
	EventTypeComplete EventType = "complete"
	// EventTypeError indicates the scan failed.
	EventTypeError EventType = "error"
)

// AllTypes returns every event type in emission order.
func AllTypes() []EventType {
	return []EventType{EventTypeStart, EventTypeProgress, EventTypeComplete, EventTypeError}
}

// NoticeClass is the presentation class of a user-facing notice.
type NoticeClass string

const (
	NoticeSuccess NoticeClass = "success"
	NoticeWarning NoticeClass = "warning"
	NoticeAlarm   NoticeClass = "alarm"
	NoticeError   NoticeClass = "error"
)

// Notice is a short user-facing message with a presentation class.
type Notice struct {
	Class   NoticeClass `json:"class"`
	Title   string      `json:"title"`
	Message string      `json:"message,omitempty"`
}

// Event is the base interface for all events.
type Event interface {
	EventType() EventType
	Timestamp() time.Time
	ScanID() string
}

// BaseEvent contains common fields for all events.
// It is designed to be embedded in specific event types.
type BaseEvent struct {
	Type EventType `json:"type"`
	Time time.Time `json:"timestamp"`
	Scan string    `json:"scan_id"`
}

// NewBase returns a BaseEvent stamped with the current time.
func NewBase(t EventType, scanID string) BaseEvent {
	return BaseEvent{Type: t, Time: time.Now().UTC(), Scan: scanID}
}

// EventType returns the type of this event.
func (e BaseEvent) EventType() EventType { return e.Type }

// Timestamp returns when this event occurred.
func (e BaseEvent) Timestamp() time.Time { return e.Time }

// ScanID returns the unique identifier for the scan that produced this event.
func (e BaseEvent) ScanID() string { return e.Scan }
