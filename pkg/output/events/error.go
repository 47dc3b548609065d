package events

import "time"

// ErrorEvent is emitted when a scan fails. Message is safe to show to the
// user; Cause holds the underlying error text for logs.
type ErrorEvent struct {
	BaseEvent
	Target   string  `json:"target"`
	Message  string  `json:"message"`
	Kind     string  `json:"kind,omitempty"`
	Cause    string  `json:"cause,omitempty"`
	Notice   Notice  `json:"notice"`
	Duration float64 `json:"duration_sec"`
}

// NewError creates an ErrorEvent.
func NewError(scanID, target string, notice Notice, kind string, cause error, elapsed time.Duration) *ErrorEvent {
	e := &ErrorEvent{
		BaseEvent: NewBase(EventTypeError, scanID),
		Target:    target,
		Message:   notice.Title,
		Kind:      kind,
		Notice:    notice,
		Duration:  elapsed.Seconds(),
	}
	if cause != nil {
		e.Cause = cause.Error()
	}
	return e
}
