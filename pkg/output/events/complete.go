package events

import (
	"time"

	"github.com/phishguard/phishguard/pkg/scan"
)

// CompleteEvent is emitted when a scan produced a classified result.
type CompleteEvent struct {
	BaseEvent
	Result   *scan.Result `json:"result"`
	Notice   Notice       `json:"notice"`
	Duration float64      `json:"duration_sec"`
}

// NewComplete creates a CompleteEvent.
func NewComplete(res *scan.Result, notice Notice, elapsed time.Duration) *CompleteEvent {
	return &CompleteEvent{
		BaseEvent: NewBase(EventTypeComplete, string(res.ID)),
		Result:    res,
		Notice:    notice,
		Duration:  elapsed.Seconds(),
	}
}
